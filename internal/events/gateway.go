package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/Veraticus/kroner/internal/model"
	"github.com/Veraticus/kroner/internal/service"
)

// PublishingGateway announces every successful write made through the
// wrapped gateway. Publish failures are logged; the write still counts.
type PublishingGateway struct {
	service.Gateway
	publisher service.EventPublisher
	now       func() time.Time
}

// NewPublishingGateway wraps gateway.
func NewPublishingGateway(gateway service.Gateway, publisher service.EventPublisher) *PublishingGateway {
	return &PublishingGateway{Gateway: gateway, publisher: publisher, now: time.Now}
}

// InsertExpense implements service.Gateway.
func (g *PublishingGateway) InsertExpense(ctx context.Context, owner string, input model.NewExpense) (*model.Expense, error) {
	e, err := g.Gateway.InsertExpense(ctx, owner, input)
	if err != nil {
		return nil, err
	}
	event := model.ChangeEvent{Kind: model.ChangeExpenseCreated, Owner: owner, ID: e.ID}
	if t, perr := time.Parse(model.DateLayout, e.Date); perr == nil {
		event.Year, event.Month = t.Year(), int(t.Month())
	}
	g.publish(ctx, event)
	return e, nil
}

// DeleteExpense implements service.Gateway.
func (g *PublishingGateway) DeleteExpense(ctx context.Context, id int64, owner string) error {
	if err := g.Gateway.DeleteExpense(ctx, id, owner); err != nil {
		return err
	}
	g.publish(ctx, model.ChangeEvent{Kind: model.ChangeExpenseDeleted, Owner: owner, ID: id})
	return nil
}

// UpsertBudget implements service.Gateway.
func (g *PublishingGateway) UpsertBudget(ctx context.Context, owner string, input model.BudgetInput) (*model.BudgetEntry, error) {
	entry, err := g.Gateway.UpsertBudget(ctx, owner, input)
	if err != nil {
		return nil, err
	}
	g.publish(ctx, model.ChangeEvent{
		Kind:  model.ChangeBudgetSaved,
		Owner: owner,
		ID:    entry.ID,
		Year:  entry.Year,
		Month: entry.Month,
	})
	return entry, nil
}

// CreateCategory implements service.Gateway.
func (g *PublishingGateway) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	c, err := g.Gateway.CreateCategory(ctx, name)
	if err != nil {
		return nil, err
	}
	g.publish(ctx, model.ChangeEvent{Kind: model.ChangeCategoryAdded, ID: c.ID})
	return c, nil
}

// Close closes the publisher and the wrapped gateway.
func (g *PublishingGateway) Close() error {
	if err := g.publisher.Close(); err != nil {
		slog.Warn("failed to close event publisher", "error", err)
	}
	return g.Gateway.Close()
}

func (g *PublishingGateway) publish(ctx context.Context, event model.ChangeEvent) {
	event.At = g.now().UTC()
	if err := g.publisher.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish change event", "kind", event.Kind, "id", event.ID, "error", err)
	}
}

// Noop discards events. It stands in when no broker is configured.
type Noop struct{}

// Publish implements service.EventPublisher.
func (Noop) Publish(context.Context, model.ChangeEvent) error { return nil }

// Close implements service.EventPublisher.
func (Noop) Close() error { return nil }
