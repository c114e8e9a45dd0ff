package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"realmlog/internal/game"
	"realmlog/internal/realm"
	"realmlog/internal/store"
	"realmlog/internal/timer"
)

const timeLayout = time.RFC3339

type GetStatusInput struct{}

type ListTilesInput struct {
	Reachability string `json:"reachability,omitempty" jsonschema:"conquered, frontier, unreachable, or hard_locked"`
	Region       string `json:"region,omitempty" jsonschema:"region id filter"`
}

type LogSessionInput struct {
	Activity string  `json:"activity" jsonschema:"work, study, sport, mindfulness, income, or a custom name"`
	Minutes  float64 `json:"minutes,omitempty" jsonschema:"minutes spent; required except for income"`
	Amount   int     `json:"amount,omitempty" jsonschema:"income amount in gold"`
	Subtype  string  `json:"subtype,omitempty" jsonschema:"free-form subtype"`
	Note     string  `json:"note,omitempty" jsonschema:"free-form note"`
	TileID   string  `json:"tile_id,omitempty" jsonschema:"invest the minutes into this tile instead of the pool"`
}

type SpendResourceInput struct {
	TileID   string `json:"tile_id" jsonschema:"tile to invest in"`
	Resource string `json:"resource" jsonschema:"craft, lore, vigor, or clarity"`
	Minutes  int    `json:"minutes" jsonschema:"minutes to move from the pool into the tile"`
}

type SetTargetInput struct {
	TileID string `json:"tile_id,omitempty" jsonschema:"tile to pin; empty clears the target"`
}

type ListSessionsInput struct {
	Query    string `json:"query,omitempty" jsonschema:"full-text search over activity, subtype and note"`
	Activity string `json:"activity,omitempty" jsonschema:"activity filter"`
	Since    string `json:"since,omitempty" jsonschema:"RFC 3339 lower bound on created_at"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of sessions"`
}

type TimerStartInput struct {
	Activity        string `json:"activity" jsonschema:"activity the timer will log"`
	Mode            string `json:"mode,omitempty" jsonschema:"countup (default) or countdown"`
	DurationMinutes int    `json:"duration_minutes,omitempty" jsonschema:"countdown length in minutes"`
	Note            string `json:"note,omitempty" jsonschema:"note for the logged session"`
	Subtype         string `json:"subtype,omitempty" jsonschema:"subtype for the logged session"`
}

type TimerInput struct{}

type PlayerOutput struct {
	XP           int    `json:"xp"`
	Craft        int    `json:"craft"`
	Lore         int    `json:"lore"`
	Vigor        int    `json:"vigor"`
	Clarity      int    `json:"clarity"`
	Gold         int    `json:"gold"`
	TargetTileID string `json:"target_tile_id,omitempty"`
}

type TileOutput struct {
	ID            string  `json:"id"`
	Row           int     `json:"row"`
	Col           int     `json:"col"`
	Region        string  `json:"region"`
	Feature       string  `json:"feature,omitempty"`
	Level         int     `json:"level"`
	Progress      int     `json:"progress"`
	Locked        bool    `json:"locked"`
	Reachability  string  `json:"reachability"`
	ProgressRatio float64 `json:"progress_ratio"`
	MinutesToNext int     `json:"minutes_to_next"`
	Reason        string  `json:"reason"`
}

type StatusOutput struct {
	Player     PlayerOutput `json:"player"`
	InvestMode string       `json:"invest_mode"`
	Tiles      int          `json:"tiles"`
	Conquered  int          `json:"conquered"`
	Frontier   []TileOutput `json:"frontier"`
	Target     *TileOutput  `json:"target,omitempty"`
	GateOpen   bool         `json:"gate_open"`
}

type ListTilesOutput struct {
	Tiles []TileOutput `json:"tiles"`
}

type SessionOutput struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
	Activity  string `json:"activity"`
	Minutes   int    `json:"minutes"`
	Amount    *int   `json:"amount,omitempty"`
	Subtype   string `json:"subtype,omitempty"`
	Note      string `json:"note,omitempty"`
	TileID    string `json:"tile_id,omitempty"`
}

type LogSessionOutput struct {
	Session        SessionOutput `json:"session"`
	Resource       string        `json:"resource,omitempty"`
	Amount         int           `json:"amount"`
	XP             int           `json:"xp"`
	Invested       *TileOutput   `json:"invested,omitempty"`
	NewlyConquered bool          `json:"newly_conquered"`
	Unlocked       []string      `json:"unlocked,omitempty"`
	Player         PlayerOutput  `json:"player"`
}

type SpendResourceOutput struct {
	Tile           TileOutput   `json:"tile"`
	Player         PlayerOutput `json:"player"`
	NewlyConquered bool         `json:"newly_conquered"`
	Unlocked       []string     `json:"unlocked,omitempty"`
}

type SetTargetOutput struct {
	Target *TileOutput `json:"target,omitempty"`
}

type ListSessionsOutput struct {
	Sessions []SessionOutput `json:"sessions"`
}

type TimerOutput struct {
	ID               string `json:"id"`
	Activity         string `json:"activity"`
	Mode             string `json:"mode"`
	Status           string `json:"status"`
	StartedAt        string `json:"started_at"`
	EndsAt           string `json:"ends_at,omitempty"`
	StoppedAt        string `json:"stopped_at,omitempty"`
	Note             string `json:"note,omitempty"`
	Subtype          string `json:"subtype,omitempty"`
	ElapsedSeconds   int64  `json:"elapsed_seconds"`
	RemainingSeconds int64  `json:"remaining_seconds,omitempty"`
	Finished         bool   `json:"finished"`
}

type TimerStatusOutput struct {
	Active bool         `json:"active"`
	Timer  *TimerOutput `json:"timer,omitempty"`
}

type TimerCommitOutput struct {
	Timer   TimerOutput   `json:"timer"`
	Minutes int           `json:"minutes"`
	Session SessionOutput `json:"session"`
}

type TimerDiscardOutput struct {
	Discarded bool `json:"discarded"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_status",
		Description: "Player pools, conquered count, frontier and pinned target",
	}, s.handleGetStatus)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_tiles",
		Description: "List realm tiles with their reachability",
	}, s.handleListTiles)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "log_session",
		Description: "Log an activity session and grant its reward",
	}, s.handleLogSession)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "spend_resource",
		Description: "Invest pooled minutes into a tile",
	}, s.handleSpendResource)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "set_target",
		Description: "Pin or clear the auto-invest target tile",
	}, s.handleSetTarget)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_sessions",
		Description: "List or search logged sessions, newest first",
	}, s.handleListSessions)

	if s.timers == nil {
		return
	}

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "timer_status",
		Description: "Show the open timer, if any",
	}, s.handleTimerStatus)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "timer_start",
		Description: "Start a countup or countdown timer",
	}, s.handleTimerStart)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "timer_stop",
		Description: "Pause the running timer",
	}, s.handleTimerStop)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "timer_resume",
		Description: "Resume a stopped timer",
	}, s.handleTimerResume)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "timer_commit",
		Description: "Stop the timer and log its minutes as a session",
	}, s.handleTimerCommit)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "timer_discard",
		Description: "Throw the open timer away without logging",
	}, s.handleTimerDiscard)
}

func (s *Server) handleGetStatus(ctx context.Context, req *sdk.CallToolRequest, input GetStatusInput) (*sdk.CallToolResult, StatusOutput, error) {
	state := s.game.State()
	idx := state.Index()

	output := StatusOutput{
		Player:     playerOutput(state.Player),
		InvestMode: string(s.game.InvestMode()),
		Tiles:      len(state.Tiles),
		Frontier:   make([]TileOutput, 0),
		GateOpen:   realm.GateOpen(state.Tiles),
	}
	for _, t := range state.Tiles {
		if realm.IsConquered(t) {
			output.Conquered++
		}
	}
	for _, t := range idx.Frontier(state.Tiles) {
		output.Frontier = append(output.Frontier, tileOutput(idx, t))
	}
	if target, ok := state.Tile(state.Player.TargetTileID); ok {
		out := tileOutput(idx, target)
		output.Target = &out
	}
	return nil, output, nil
}

func (s *Server) handleListTiles(ctx context.Context, req *sdk.CallToolRequest, input ListTilesInput) (*sdk.CallToolResult, ListTilesOutput, error) {
	if input.Reachability != "" && !validReachability(input.Reachability) {
		return nil, ListTilesOutput{}, fmt.Errorf("unknown reachability %q", input.Reachability)
	}
	state := s.game.State()
	idx := state.Index()

	output := make([]TileOutput, 0, len(state.Tiles))
	for _, t := range state.Tiles {
		if input.Region != "" && string(t.Region) != input.Region {
			continue
		}
		if input.Reachability != "" && string(idx.Reachability(t)) != input.Reachability {
			continue
		}
		output = append(output, tileOutput(idx, t))
	}
	return nil, ListTilesOutput{Tiles: output}, nil
}

func (s *Server) handleLogSession(ctx context.Context, req *sdk.CallToolRequest, input LogSessionInput) (*sdk.CallToolResult, LogSessionOutput, error) {
	res, err := s.game.LogSession(ctx, game.LogInput{
		Activity: input.Activity,
		Minutes:  input.Minutes,
		Amount:   input.Amount,
		Subtype:  input.Subtype,
		Note:     input.Note,
		TileID:   input.TileID,
	})
	if err != nil {
		return nil, LogSessionOutput{}, toolError(err)
	}

	state := s.game.State()
	output := LogSessionOutput{
		Session:        sessionOutput(res.Session),
		Resource:       string(res.Reward.Resource),
		Amount:         res.Reward.Amount,
		XP:             res.Reward.XP,
		NewlyConquered: res.NewlyConquered,
		Unlocked:       tileIDs(res.UnlockedTiles),
		Player:         playerOutput(state.Player),
	}
	if res.Invested != nil {
		out := tileOutput(state.Index(), *res.Invested)
		output.Invested = &out
	}
	return nil, output, nil
}

func (s *Server) handleSpendResource(ctx context.Context, req *sdk.CallToolRequest, input SpendResourceInput) (*sdk.CallToolResult, SpendResourceOutput, error) {
	if input.TileID == "" {
		return nil, SpendResourceOutput{}, fmt.Errorf("tile_id is required")
	}
	res, err := s.game.SpendResourceOnTile(ctx, input.TileID, input.Resource, input.Minutes)
	if err != nil {
		return nil, SpendResourceOutput{}, toolError(err)
	}
	idx := s.game.State().Index()
	return nil, SpendResourceOutput{
		Tile:           tileOutput(idx, res.Tile),
		Player:         playerOutput(res.Player),
		NewlyConquered: res.NewlyConquered,
		Unlocked:       tileIDs(res.UnlockedTiles),
	}, nil
}

func (s *Server) handleSetTarget(ctx context.Context, req *sdk.CallToolRequest, input SetTargetInput) (*sdk.CallToolResult, SetTargetOutput, error) {
	if err := s.game.SetTargetTile(ctx, input.TileID); err != nil {
		return nil, SetTargetOutput{}, toolError(err)
	}
	state := s.game.State()
	target, ok := state.Tile(state.Player.TargetTileID)
	if !ok {
		return nil, SetTargetOutput{}, nil
	}
	out := tileOutput(state.Index(), target)
	return nil, SetTargetOutput{Target: &out}, nil
}

func (s *Server) handleListSessions(ctx context.Context, req *sdk.CallToolRequest, input ListSessionsInput) (*sdk.CallToolResult, ListSessionsOutput, error) {
	var (
		sessions []realm.Session
		err      error
	)
	if strings.TrimSpace(input.Query) != "" {
		sessions, err = s.game.SearchSessions(ctx, input.Query, input.Limit)
	} else {
		filter := store.SessionFilter{Activity: input.Activity, Limit: input.Limit}
		if input.Since != "" {
			since, perr := time.Parse(timeLayout, input.Since)
			if perr != nil {
				return nil, ListSessionsOutput{}, fmt.Errorf("since: %w", perr)
			}
			filter.Since = since
		}
		sessions, err = s.game.Sessions(ctx, filter)
	}
	if err != nil {
		return nil, ListSessionsOutput{}, err
	}

	output := make([]SessionOutput, 0, len(sessions))
	for _, session := range sessions {
		output = append(output, sessionOutput(session))
	}
	return nil, ListSessionsOutput{Sessions: output}, nil
}

func (s *Server) handleTimerStatus(ctx context.Context, req *sdk.CallToolRequest, input TimerInput) (*sdk.CallToolResult, TimerStatusOutput, error) {
	current, err := s.timers.Current(ctx)
	if err != nil {
		return nil, TimerStatusOutput{}, err
	}
	if current == nil {
		return nil, TimerStatusOutput{}, nil
	}
	out := s.timerOutput(*current)
	return nil, TimerStatusOutput{Active: true, Timer: &out}, nil
}

func (s *Server) handleTimerStart(ctx context.Context, req *sdk.CallToolRequest, input TimerStartInput) (*sdk.CallToolResult, TimerOutput, error) {
	if input.Activity == "" {
		return nil, TimerOutput{}, fmt.Errorf("activity is required")
	}
	started, err := s.timers.Start(ctx, timer.StartInput{
		Activity: input.Activity,
		Mode:     realm.TimerMode(input.Mode),
		Duration: time.Duration(input.DurationMinutes) * time.Minute,
		Note:     input.Note,
		Subtype:  input.Subtype,
	})
	if err != nil {
		return nil, TimerOutput{}, err
	}
	return nil, s.timerOutput(started), nil
}

func (s *Server) handleTimerStop(ctx context.Context, req *sdk.CallToolRequest, input TimerInput) (*sdk.CallToolResult, TimerOutput, error) {
	stopped, err := s.timers.Stop(ctx)
	if err != nil {
		return nil, TimerOutput{}, err
	}
	return nil, s.timerOutput(stopped), nil
}

func (s *Server) handleTimerResume(ctx context.Context, req *sdk.CallToolRequest, input TimerInput) (*sdk.CallToolResult, TimerOutput, error) {
	resumed, err := s.timers.Resume(ctx)
	if err != nil {
		return nil, TimerOutput{}, err
	}
	return nil, s.timerOutput(resumed), nil
}

func (s *Server) handleTimerCommit(ctx context.Context, req *sdk.CallToolRequest, input TimerInput) (*sdk.CallToolResult, TimerCommitOutput, error) {
	res, err := s.timers.Commit(ctx)
	if err != nil {
		return nil, TimerCommitOutput{}, toolError(err)
	}
	return nil, TimerCommitOutput{
		Timer:   s.timerOutput(res.Timer),
		Minutes: res.Minutes,
		Session: sessionOutput(res.Logged.Session),
	}, nil
}

func (s *Server) handleTimerDiscard(ctx context.Context, req *sdk.CallToolRequest, input TimerInput) (*sdk.CallToolResult, TimerDiscardOutput, error) {
	if err := s.timers.Discard(ctx); err != nil {
		return nil, TimerDiscardOutput{}, err
	}
	return nil, TimerDiscardOutput{Discarded: true}, nil
}

// toolError keeps the rejection reason in front of the message so agents
// can branch on it.
func toolError(err error) error {
	var rej *game.Rejection
	if errors.As(err, &rej) {
		return fmt.Errorf("%s: %s", rej.Reason, rej.Message)
	}
	return err
}

func validReachability(r string) bool {
	switch realm.Reachability(r) {
	case realm.HardLocked, realm.Unreachable, realm.Frontier, realm.Conquered:
		return true
	}
	return false
}

func playerOutput(p realm.Player) PlayerOutput {
	return PlayerOutput{
		XP:           p.XP,
		Craft:        p.Craft,
		Lore:         p.Lore,
		Vigor:        p.Vigor,
		Clarity:      p.Clarity,
		Gold:         p.Gold,
		TargetTileID: p.TargetTileID,
	}
}

func tileOutput(idx *realm.Index, t realm.Tile) TileOutput {
	return TileOutput{
		ID:            t.ID,
		Row:           t.Row,
		Col:           t.Col,
		Region:        string(t.Region),
		Feature:       string(t.Feature),
		Level:         t.Level,
		Progress:      t.Progress,
		Locked:        t.Locked,
		Reachability:  string(idx.Reachability(t)),
		ProgressRatio: realm.ProgressRatio(t),
		MinutesToNext: realm.MinutesToNextLevel(t),
		Reason:        idx.Reason(t),
	}
}

func tileIDs(tiles []realm.Tile) []string {
	if len(tiles) == 0 {
		return nil
	}
	ids := make([]string, 0, len(tiles))
	for _, t := range tiles {
		ids = append(ids, t.ID)
	}
	return ids
}

func sessionOutput(session realm.Session) SessionOutput {
	out := SessionOutput{
		ID:       session.ID,
		Activity: string(session.Activity),
		Minutes:  session.Minutes,
		Amount:   session.Amount,
		Subtype:  session.Subtype,
		Note:     session.Note,
		TileID:   session.TileID,
	}
	if !session.CreatedAt.IsZero() {
		out.CreatedAt = session.CreatedAt.UTC().Format(timeLayout)
	}
	return out
}

func (s *Server) timerOutput(t realm.TimerSession) TimerOutput {
	now := s.now()
	out := TimerOutput{
		ID:             t.ID,
		Activity:       string(t.Activity),
		Mode:           string(t.Mode),
		Status:         string(t.Status),
		StartedAt:      t.StartedAt.UTC().Format(timeLayout),
		Note:           t.Note,
		Subtype:        t.Subtype,
		ElapsedSeconds: int64(timer.Elapsed(t, now) / time.Second),
		Finished:       timer.Finished(t, now),
	}
	if t.EndsAt != nil {
		out.EndsAt = t.EndsAt.UTC().Format(timeLayout)
		out.RemainingSeconds = int64(timer.Remaining(t, now) / time.Second)
	}
	if t.StoppedAt != nil {
		out.StoppedAt = t.StoppedAt.UTC().Format(timeLayout)
	}
	return out
}
