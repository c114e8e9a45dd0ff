package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"realmlog/internal/game"
	"realmlog/internal/realm"
	"realmlog/internal/store"
	"realmlog/internal/timer"
)

type mockGame struct {
	state       game.State
	logResult   game.LogResult
	logErr      error
	spendResult game.SpendResult
	spendErr    error
	targetErr   error
	sessions    []realm.Session
	sessionsErr error

	lastLog           game.LogInput
	lastSpendTile     string
	lastSpendResource string
	lastSpendMinutes  int
	lastTarget        string
	lastFilter        store.SessionFilter
	lastSearchQuery   string
	lastSearchLimit   int
}

func (m *mockGame) State() game.State { return m.state }

func (m *mockGame) InvestMode() game.InvestMode { return game.InvestPool }

func (m *mockGame) LogSession(ctx context.Context, in game.LogInput) (game.LogResult, error) {
	m.lastLog = in
	return m.logResult, m.logErr
}

func (m *mockGame) SpendResourceOnTile(ctx context.Context, tileID, resource string, minutes int) (game.SpendResult, error) {
	m.lastSpendTile = tileID
	m.lastSpendResource = resource
	m.lastSpendMinutes = minutes
	return m.spendResult, m.spendErr
}

func (m *mockGame) SetTargetTile(ctx context.Context, tileID string) error {
	m.lastTarget = tileID
	if m.targetErr != nil {
		return m.targetErr
	}
	m.state.Player.TargetTileID = tileID
	return nil
}

func (m *mockGame) Sessions(ctx context.Context, filter store.SessionFilter) ([]realm.Session, error) {
	m.lastFilter = filter
	return m.sessions, m.sessionsErr
}

func (m *mockGame) SearchSessions(ctx context.Context, query string, limit int) ([]realm.Session, error) {
	m.lastSearchQuery = query
	m.lastSearchLimit = limit
	return m.sessions, m.sessionsErr
}

type mockTimers struct {
	current   *realm.TimerSession
	startErr  error
	commit    timer.CommitResult
	commitErr error
	discarded bool
	lastStart timer.StartInput
}

func (m *mockTimers) Current(ctx context.Context) (*realm.TimerSession, error) {
	return m.current, nil
}

func (m *mockTimers) Start(ctx context.Context, in timer.StartInput) (realm.TimerSession, error) {
	m.lastStart = in
	if m.startErr != nil {
		return realm.TimerSession{}, m.startErr
	}
	return realm.TimerSession{ID: "t1", Activity: realm.Activity(in.Activity), Mode: in.Mode, Status: realm.TimerRunning, StartedAt: testNow}, nil
}

func (m *mockTimers) Stop(ctx context.Context) (realm.TimerSession, error) {
	if m.current == nil {
		return realm.TimerSession{}, timer.ErrNoTimer
	}
	return *m.current, nil
}

func (m *mockTimers) Resume(ctx context.Context) (realm.TimerSession, error) {
	if m.current == nil {
		return realm.TimerSession{}, timer.ErrNoTimer
	}
	return *m.current, nil
}

func (m *mockTimers) Commit(ctx context.Context) (timer.CommitResult, error) {
	return m.commit, m.commitErr
}

func (m *mockTimers) Discard(ctx context.Context) error {
	m.discarded = true
	return nil
}

var testNow = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func testState() game.State {
	return game.State{
		Player: realm.Player{XP: 90, Craft: 30, TargetTileID: "r0c1"},
		Tiles: []realm.Tile{
			{ID: "r0c0", Row: 0, Col: 0, Region: realm.Heartlands, Level: 1, Progress: 60},
			{ID: "r0c1", Row: 0, Col: 1, Region: realm.Heartlands},
			{ID: "r0c2", Row: 0, Col: 2, Region: realm.Heartlands},
			{ID: "r1c0", Row: 1, Col: 0, Region: realm.GreatDepths, Locked: true},
		},
	}
}

func newTestServer(g *mockGame, timers *mockTimers) *Server {
	server := NewServer(g, timers, "test")
	server.now = func() time.Time { return testNow }
	return server
}

func TestGetStatus(t *testing.T) {
	server := newTestServer(&mockGame{state: testState()}, &mockTimers{})

	_, output, err := server.handleGetStatus(context.Background(), nil, GetStatusInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Conquered != 1 || output.Tiles != 4 || output.InvestMode != "pool" {
		t.Fatalf("unexpected status: %+v", output)
	}
	if len(output.Frontier) != 1 || output.Frontier[0].ID != "r0c1" {
		t.Fatalf("unexpected frontier: %+v", output.Frontier)
	}
	if output.Target == nil || output.Target.Reachability != string(realm.Frontier) {
		t.Fatalf("unexpected target: %+v", output.Target)
	}
}

func TestListTiles(t *testing.T) {
	server := newTestServer(&mockGame{state: testState()}, &mockTimers{})

	tests := []struct {
		name  string
		input ListTilesInput
		want  []string
	}{
		{name: "all", input: ListTilesInput{}, want: []string{"r0c0", "r0c1", "r0c2", "r1c0"}},
		{name: "conquered", input: ListTilesInput{Reachability: "conquered"}, want: []string{"r0c0"}},
		{name: "hard locked", input: ListTilesInput{Reachability: "hard_locked"}, want: []string{"r1c0"}},
		{name: "unreachable", input: ListTilesInput{Reachability: "unreachable"}, want: []string{"r0c2"}},
		{name: "region", input: ListTilesInput{Region: "great_depths"}, want: []string{"r1c0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleListTiles(context.Background(), nil, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var got []string
			for _, tile := range output.Tiles {
				got = append(got, tile.ID)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Fatalf("tiles = %v, want %v", got, tt.want)
			}
		})
	}

	if _, _, err := server.handleListTiles(context.Background(), nil, ListTilesInput{Reachability: "nearby"}); err == nil {
		t.Fatalf("expected error for unknown reachability")
	}
}

func TestLogSession(t *testing.T) {
	invested := realm.Tile{ID: "r0c1", Row: 0, Col: 1, Region: realm.Heartlands, Level: 1, Progress: 60}
	g := &mockGame{
		state: testState(),
		logResult: game.LogResult{
			Session:        realm.Session{ID: "s1", CreatedAt: testNow, Activity: realm.ActivityWork, Minutes: 60, TileID: "r0c1"},
			Reward:         realm.Reward{Resource: realm.ResourceCraft, Amount: 60, XP: 60},
			Invested:       &invested,
			NewlyConquered: true,
		},
	}
	server := newTestServer(g, &mockTimers{})

	_, output, err := server.handleLogSession(context.Background(), nil, LogSessionInput{Activity: "work", Minutes: 60.4, Note: "deploy", TileID: "r0c1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.lastLog.Activity != "work" || g.lastLog.Minutes != 60.4 || g.lastLog.Note != "deploy" || g.lastLog.TileID != "r0c1" {
		t.Fatalf("unexpected log params: %+v", g.lastLog)
	}
	if output.Session.ID != "s1" || output.Session.CreatedAt != "2026-05-04T09:00:00Z" {
		t.Fatalf("unexpected session output: %+v", output.Session)
	}
	if output.Invested == nil || output.Invested.ID != "r0c1" || !output.NewlyConquered || output.XP != 60 {
		t.Fatalf("unexpected log output: %+v", output)
	}
}

func TestRejectionsKeepReason(t *testing.T) {
	g := &mockGame{
		state:    testState(),
		spendErr: &game.Rejection{Reason: game.ReasonInsufficientResources, Message: "Not enough craft: have 30, need 45."},
	}
	server := newTestServer(g, &mockTimers{})

	_, _, err := server.handleSpendResource(context.Background(), nil, SpendResourceInput{TileID: "r0c1", Resource: "craft", Minutes: 45})
	if err == nil || !strings.HasPrefix(err.Error(), "insufficient_resources: ") {
		t.Fatalf("expected reason prefix, got %v", err)
	}
	if g.lastSpendTile != "r0c1" || g.lastSpendResource != "craft" || g.lastSpendMinutes != 45 {
		t.Fatalf("unexpected spend params")
	}

	if _, _, err := server.handleSpendResource(context.Background(), nil, SpendResourceInput{Resource: "craft", Minutes: 5}); err == nil {
		t.Fatalf("expected error without tile_id")
	}
}

func TestSetTarget(t *testing.T) {
	g := &mockGame{state: testState()}
	server := newTestServer(g, &mockTimers{})

	_, output, err := server.handleSetTarget(context.Background(), nil, SetTargetInput{TileID: "r0c2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Target == nil || output.Target.ID != "r0c2" {
		t.Fatalf("unexpected target output: %+v", output)
	}

	_, output, err = server.handleSetTarget(context.Background(), nil, SetTargetInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Target != nil {
		t.Fatalf("expected cleared target, got %+v", output.Target)
	}
}

func TestListSessions(t *testing.T) {
	g := &mockGame{sessions: []realm.Session{{ID: "s1", CreatedAt: testNow, Activity: realm.ActivityStudy, Minutes: 30, Note: "graph theory"}}}
	server := newTestServer(g, &mockTimers{})

	_, output, err := server.handleListSessions(context.Background(), nil, ListSessionsInput{Activity: "study", Since: "2026-05-01T00:00:00Z", Limit: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Sessions) != 1 || output.Sessions[0].Note != "graph theory" {
		t.Fatalf("unexpected sessions: %+v", output)
	}
	if g.lastFilter.Activity != "study" || g.lastFilter.Limit != 5 || !g.lastFilter.Since.Equal(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected filter: %+v", g.lastFilter)
	}

	if _, _, err := server.handleListSessions(context.Background(), nil, ListSessionsInput{Query: "graph", Limit: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.lastSearchQuery != "graph" || g.lastSearchLimit != 3 {
		t.Fatalf("unexpected search params")
	}

	if _, _, err := server.handleListSessions(context.Background(), nil, ListSessionsInput{Since: "yesterday"}); err == nil {
		t.Fatalf("expected error for bad since")
	}
}

func TestTimerTools(t *testing.T) {
	timers := &mockTimers{}
	server := newTestServer(&mockGame{state: testState()}, timers)
	ctx := context.Background()

	_, status, err := server.handleTimerStatus(ctx, nil, TimerInput{})
	if err != nil || status.Active {
		t.Fatalf("expected no active timer, got %+v, %v", status, err)
	}

	started, err := func() (TimerOutput, error) {
		_, out, err := server.handleTimerStart(ctx, nil, TimerStartInput{Activity: "study", Mode: "countdown", DurationMinutes: 25})
		return out, err
	}()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if timers.lastStart.Duration != 25*time.Minute || timers.lastStart.Mode != realm.TimerCountdown || started.ID != "t1" {
		t.Fatalf("unexpected start: %+v / %+v", timers.lastStart, started)
	}

	endsAt := testNow.Add(15 * time.Minute)
	timers.current = &realm.TimerSession{
		ID: "t1", Activity: realm.ActivityStudy, Mode: realm.TimerCountdown, Status: realm.TimerRunning,
		StartedAt: testNow.Add(-10 * time.Minute), EndsAt: &endsAt,
	}
	_, status, err = server.handleTimerStatus(ctx, nil, TimerInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.Active || status.Timer.ElapsedSeconds != 600 || status.Timer.RemainingSeconds != 900 || status.Timer.Finished {
		t.Fatalf("unexpected status: %+v", status.Timer)
	}

	timers.commit = timer.CommitResult{
		Timer:   realm.TimerSession{ID: "t1", Status: realm.TimerCommitted, StartedAt: testNow},
		Minutes: 25,
		Logged:  game.LogResult{Session: realm.Session{ID: "s9", CreatedAt: testNow, Minutes: 25}},
	}
	_, committed, err := server.handleTimerCommit(ctx, nil, TimerInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if committed.Minutes != 25 || committed.Session.ID != "s9" || committed.Timer.Status != "committed" {
		t.Fatalf("unexpected commit output: %+v", committed)
	}

	if _, out, err := server.handleTimerDiscard(ctx, nil, TimerInput{}); err != nil || !out.Discarded || !timers.discarded {
		t.Fatalf("discard failed: %+v, %v", out, err)
	}
}

func TestTimerErrorsPassThrough(t *testing.T) {
	timers := &mockTimers{startErr: timer.ErrActive}
	server := newTestServer(&mockGame{}, timers)

	if _, _, err := server.handleTimerStart(context.Background(), nil, TimerStartInput{Activity: "work"}); !errors.Is(err, timer.ErrActive) {
		t.Fatalf("expected ErrActive, got %v", err)
	}
	if _, _, err := server.handleTimerStart(context.Background(), nil, TimerStartInput{}); err == nil {
		t.Fatalf("expected error without activity")
	}
	if _, _, err := server.handleTimerStop(context.Background(), nil, TimerInput{}); !errors.Is(err, timer.ErrNoTimer) {
		t.Fatalf("expected ErrNoTimer, got %v", err)
	}
}
