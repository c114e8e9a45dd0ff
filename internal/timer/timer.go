// Package timer runs the focus timer. A timer is persisted on every
// transition so it survives restarts; remaining and elapsed time are always
// derived from the stored timestamps.
package timer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"realmlog/internal/game"
	"realmlog/internal/realm"
)

var (
	ErrActive          = errors.New("a timer is already active")
	ErrNoTimer         = errors.New("no active timer")
	ErrInvalidState    = errors.New("timer is not in a state that allows this")
	ErrInvalidDuration = errors.New("countdown needs a positive duration")
	ErrUntimed         = errors.New("activity is not measured in minutes")
)

type Repository interface {
	GetOpenTimer(ctx context.Context) (*realm.TimerSession, error)
	InsertTimer(ctx context.Context, t realm.TimerSession) error
	UpdateTimer(ctx context.Context, t realm.TimerSession) error
	DeleteTimer(ctx context.Context, id string) error
}

type SessionLogger interface {
	LogSession(ctx context.Context, in game.LogInput) (game.LogResult, error)
}

type Options struct {
	Now    func() time.Time
	NewID  func() (string, error)
	Logger *slog.Logger
}

type Store struct {
	mu       sync.Mutex
	repo     Repository
	sessions SessionLogger
	now      func() time.Time
	newID    func() (string, error)
	log      *slog.Logger
}

func New(repo Repository, sessions SessionLogger, opts Options) *Store {
	s := &Store{
		repo:     repo,
		sessions: sessions,
		now:      opts.Now,
		newID:    opts.NewID,
		log:      opts.Logger,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = func() (string, error) {
			id, err := uuid.NewV7()
			if err != nil {
				return "", fmt.Errorf("generating id: %w", err)
			}
			return id.String(), nil
		}
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

type StartInput struct {
	Activity string
	Mode     realm.TimerMode
	Duration time.Duration
	Note     string
	Subtype  string
}

type CommitResult struct {
	Timer   realm.TimerSession `json:"timer"`
	Minutes int                `json:"minutes"`
	Logged  game.LogResult     `json:"logged"`
}

// Current returns the non-committed timer, or nil when there is none.
func (s *Store) Current(ctx context.Context) (*realm.TimerSession, error) {
	return s.repo.GetOpenTimer(ctx)
}

func (s *Store) Start(ctx context.Context, in StartInput) (realm.TimerSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	activity := realm.NormalizeActivity(in.Activity)
	if activity == "" {
		return realm.TimerSession{}, fmt.Errorf("timer needs an activity")
	}
	if activity == realm.ActivityIncome {
		return realm.TimerSession{}, fmt.Errorf("%w: %s", ErrUntimed, activity)
	}
	mode := in.Mode
	if mode == "" {
		mode = realm.TimerCountup
	}
	if mode != realm.TimerCountdown && mode != realm.TimerCountup {
		return realm.TimerSession{}, fmt.Errorf("unknown timer mode %q", mode)
	}
	if mode == realm.TimerCountdown && in.Duration <= 0 {
		return realm.TimerSession{}, ErrInvalidDuration
	}

	open, err := s.repo.GetOpenTimer(ctx)
	if err != nil {
		return realm.TimerSession{}, err
	}
	if open != nil {
		return realm.TimerSession{}, ErrActive
	}

	id, err := s.newID()
	if err != nil {
		return realm.TimerSession{}, err
	}
	now := s.now().UTC()
	t := realm.TimerSession{
		ID:        id,
		Activity:  activity,
		Mode:      mode,
		StartedAt: now,
		Status:    realm.TimerRunning,
		Note:      strings.TrimSpace(in.Note),
		Subtype:   strings.TrimSpace(in.Subtype),
	}
	if mode == realm.TimerCountdown {
		ends := now.Add(in.Duration)
		t.EndsAt = &ends
	}
	if err := s.repo.InsertTimer(ctx, t); err != nil {
		return realm.TimerSession{}, err
	}
	s.log.Info("timer started", slog.String("timer", t.ID), slog.String("activity", string(activity)), slog.String("mode", string(mode)))
	return t, nil
}

func (s *Store) Stop(ctx context.Context) (realm.TimerSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.open(ctx)
	if err != nil {
		return realm.TimerSession{}, err
	}
	if t.Status != realm.TimerRunning {
		return realm.TimerSession{}, ErrInvalidState
	}
	stop(&t, s.now().UTC())
	if err := s.repo.UpdateTimer(ctx, t); err != nil {
		return realm.TimerSession{}, err
	}
	s.log.Info("timer stopped", slog.String("timer", t.ID))
	return t, nil
}

// Resume restarts a stopped timer. The paused interval is added to both the
// start and the end so elapsed and remaining time pick up where they were.
func (s *Store) Resume(ctx context.Context) (realm.TimerSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.open(ctx)
	if err != nil {
		return realm.TimerSession{}, err
	}
	if t.Status != realm.TimerStopped || t.StoppedAt == nil {
		return realm.TimerSession{}, ErrInvalidState
	}

	paused := s.now().UTC().Sub(*t.StoppedAt)
	if paused < 0 {
		paused = 0
	}
	t.StartedAt = t.StartedAt.Add(paused)
	if t.EndsAt != nil {
		ends := t.EndsAt.Add(paused)
		t.EndsAt = &ends
	}
	t.StoppedAt = nil
	t.Status = realm.TimerRunning

	if err := s.repo.UpdateTimer(ctx, t); err != nil {
		return realm.TimerSession{}, err
	}
	s.log.Info("timer resumed", slog.String("timer", t.ID), slog.Duration("paused", paused))
	return t, nil
}

// Commit stops the timer if it is running, then logs its minutes as a
// session and marks it committed in one transaction. If that fails the timer
// stays stopped and the commit can be retried.
func (s *Store) Commit(ctx context.Context) (CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.open(ctx)
	if err != nil {
		return CommitResult{}, err
	}
	if t.Status == realm.TimerRunning {
		stop(&t, s.now().UTC())
		if err := s.repo.UpdateTimer(ctx, t); err != nil {
			return CommitResult{}, err
		}
	}
	if t.Status != realm.TimerStopped {
		return CommitResult{}, ErrInvalidState
	}

	minutes := CommitMinutes(t)
	committed := t
	committed.Status = realm.TimerCommitted
	logged, err := s.sessions.LogSession(ctx, game.LogInput{
		Activity: string(t.Activity),
		Minutes:  float64(minutes),
		Subtype:  t.Subtype,
		Note:     t.Note,
		Timer:    &committed,
	})
	if err != nil {
		return CommitResult{}, fmt.Errorf("logging timer session: %w", err)
	}
	t = committed

	s.log.Info("timer committed", slog.String("timer", t.ID), slog.Int("minutes", minutes))
	return CommitResult{Timer: t, Minutes: minutes, Logged: logged}, nil
}

// Discard drops the open timer without logging anything.
func (s *Store) Discard(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.open(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTimer(ctx, t.ID); err != nil {
		return err
	}
	s.log.Info("timer discarded", slog.String("timer", t.ID))
	return nil
}

func (s *Store) open(ctx context.Context) (realm.TimerSession, error) {
	t, err := s.repo.GetOpenTimer(ctx)
	if err != nil {
		return realm.TimerSession{}, err
	}
	if t == nil {
		return realm.TimerSession{}, ErrNoTimer
	}
	return *t, nil
}

func stop(t *realm.TimerSession, now time.Time) {
	if now.Before(t.StartedAt) {
		now = t.StartedAt
	}
	t.StoppedAt = &now
	t.Status = realm.TimerStopped
}

// Elapsed is the running time up to now, or up to the stop for a stopped
// timer.
func Elapsed(t realm.TimerSession, now time.Time) time.Duration {
	ref := now
	if t.StoppedAt != nil {
		ref = *t.StoppedAt
	}
	d := ref.Sub(t.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}

// Remaining is the countdown time left, never negative. Count-up timers have
// none.
func Remaining(t realm.TimerSession, now time.Time) time.Duration {
	if t.Mode != realm.TimerCountdown || t.EndsAt == nil {
		return 0
	}
	ref := now
	if t.StoppedAt != nil {
		ref = *t.StoppedAt
	}
	d := t.EndsAt.Sub(ref)
	if d < 0 {
		return 0
	}
	return d
}

// Finished reports whether a countdown has run out.
func Finished(t realm.TimerSession, now time.Time) bool {
	return t.Mode == realm.TimerCountdown && t.EndsAt != nil && Remaining(t, now) == 0
}

// CommitMinutes is the whole minutes a stopped timer logs, at least one.
func CommitMinutes(t realm.TimerSession) int {
	if t.StoppedAt == nil {
		return 1
	}
	m := int(math.Round(float64(t.StoppedAt.Sub(t.StartedAt).Milliseconds()) / 60000))
	if m < 1 {
		return 1
	}
	return m
}
