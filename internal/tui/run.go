package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Veraticus/kroner/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// Subscriber is implemented by identities that announce session changes.
type Subscriber interface {
	Subscribe(fn func(*model.Session)) func()
}

// Run starts the dashboard and blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts ...Option) error {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(cfg.Missing) == 0 {
		if cfg.Gateway == nil {
			return fmt.Errorf("gateway is required")
		}
		if cfg.Identity == nil {
			return fmt.Errorf("identity is required")
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(ctx, cfg), tea.WithAltScreen(), tea.WithContext(ctx))

	live := &liveRefresh{ctx: ctx, source: cfg.Changes, send: p.Send}
	defer live.stop()

	if sub, ok := cfg.Identity.(Subscriber); ok {
		unsubscribe := sub.Subscribe(func(s *model.Session) {
			live.follow(s)
			go p.Send(SessionChangedMsg{Session: s})
		})
		defer unsubscribe()
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// liveRefresh keeps one change consumer running for the signed-in owner
// and forwards its events into the program.
type liveRefresh struct {
	ctx    context.Context
	source ChangeSource
	send   func(tea.Msg)
	cancel context.CancelFunc
	owner  string
	mu     sync.Mutex
}

func (l *liveRefresh) follow(s *model.Session) {
	if l.source == nil {
		return
	}

	owner := ""
	if s != nil {
		owner = s.UserID
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if owner == l.owner {
		return
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.owner = owner
	if owner == "" {
		return
	}

	ctx, cancel := context.WithCancel(l.ctx)
	l.cancel = cancel
	go func() {
		err := l.source.Consume(ctx, owner, func(event model.ChangeEvent) {
			l.send(ChangeEventMsg{Event: event})
		})
		if err != nil && ctx.Err() == nil {
			slog.Warn("live refresh stopped", "error", err)
		}
	}()
}

func (l *liveRefresh) stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}
