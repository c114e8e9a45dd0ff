package mcp

import (
	"context"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"realmlog/internal/game"
	"realmlog/internal/realm"
	"realmlog/internal/store"
	"realmlog/internal/timer"
)

// Game is the part of *game.Store the tools drive.
type Game interface {
	State() game.State
	InvestMode() game.InvestMode
	LogSession(ctx context.Context, in game.LogInput) (game.LogResult, error)
	SpendResourceOnTile(ctx context.Context, tileID, resource string, minutes int) (game.SpendResult, error)
	SetTargetTile(ctx context.Context, tileID string) error
	Sessions(ctx context.Context, filter store.SessionFilter) ([]realm.Session, error)
	SearchSessions(ctx context.Context, query string, limit int) ([]realm.Session, error)
}

// Timers is the part of *timer.Store the tools drive.
type Timers interface {
	Current(ctx context.Context) (*realm.TimerSession, error)
	Start(ctx context.Context, in timer.StartInput) (realm.TimerSession, error)
	Stop(ctx context.Context) (realm.TimerSession, error)
	Resume(ctx context.Context) (realm.TimerSession, error)
	Commit(ctx context.Context) (timer.CommitResult, error)
	Discard(ctx context.Context) error
}

type Server struct {
	game   Game
	timers Timers
	now    func() time.Time
	mcp    *sdk.Server
}

func NewServer(g Game, timers Timers, version string) *Server {
	s := &Server{
		game:   g,
		timers: timers,
		now:    time.Now,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "realmlog",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
