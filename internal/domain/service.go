// Package domain defines the activity ledger: validated inserts priced by the
// emission estimator, newest-first listings and per-user aggregates.
package domain

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/carbon/internal/emission"
	"example.com/carbon/internal/observability"
)

// ActivityRepository captures persistence operations. Implementations must only
// ever return records owned by the requested user.
type ActivityRepository interface {
	Create(ctx context.Context, activity Activity) error
	ListByUser(ctx context.Context, userID string, page Page) ([]Activity, *Cursor, error)
	SummaryByUser(ctx context.Context, userID string) (Stats, error)
}

// Option configures optional behaviour for the Ledger.
type Option func(*Ledger)

// WithClock overrides the time source used for createdAt.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// WithIDGenerator overrides how record ids are minted.
func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) {
		l.newID = newID
	}
}

// Ledger orchestrates activity workflows.
type Ledger struct {
	repo      ActivityRepository
	estimator *emission.Estimator
	now       func() time.Time
	newID     func() string
}

// NewLedger constructs a Ledger.
func NewLedger(repo ActivityRepository, estimator *emission.Estimator, opts ...Option) *Ledger {
	l := &Ledger{
		repo:      repo,
		estimator: estimator,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// InsertActivityInput captures the payload from the API layer. UserID must come
// from the authenticated principal.
type InsertActivityInput struct {
	UserID   string
	Category string
	Type     string
	Value    string
}

// Insert validates the input, prices it and persists a new record.
func (l *Ledger) Insert(ctx context.Context, input InsertActivityInput) (*Activity, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, &ValidationError{Field: "userId", Reason: "is required"}
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, &ValidationError{Field: "category", Reason: "is required"}
	}
	if strings.TrimSpace(input.Value) == "" {
		return nil, &ValidationError{Field: "value", Reason: "is required"}
	}
	quantity, ok := emission.ParseQuantity(input.Value)
	if !ok {
		return nil, &ValidationError{Field: "value", Reason: "must be a finite number"}
	}
	if quantity < 0 {
		return nil, &ValidationError{Field: "value", Reason: "must not be negative"}
	}
	if quantity > emission.MaxQuantity {
		return nil, &ValidationError{Field: "value", Reason: "must not exceed 1e9"}
	}

	kind := input.Type
	if strings.TrimSpace(kind) == "" {
		kind = emission.DefaultType
	}

	kilograms := l.estimator.EstimateQuantity(category, kind, quantity)
	if math.IsInf(kilograms, 0) || math.IsNaN(kilograms) {
		return nil, &ValidationError{Field: "value", Reason: "is too large to price"}
	}

	activity := Activity{
		ID:             l.newID(),
		UserID:         input.UserID,
		Category:       category,
		Type:           kind,
		Value:          quantity,
		CarbonEmission: kilograms,
		// Postgres keeps microseconds; truncating keeps both stores in agreement.
		CreatedAt: l.now().UTC().Truncate(time.Microsecond),
	}

	if err := l.repo.Create(ctx, activity); err != nil {
		return nil, &StorageError{Op: "create activity", Err: err}
	}

	observability.RecordActivityLogged(activity.Category, activity.CarbonEmission, activity.CreatedAt)
	return &activity, nil
}

// ListByUser returns the user's records newest first. The returned cursor is
// non-nil when a limited page was filled.
func (l *Ledger) ListByUser(ctx context.Context, userID string, page Page) ([]Activity, *Cursor, error) {
	activities, next, err := l.repo.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, nil, &StorageError{Op: "list activities", Err: err}
	}
	if activities == nil {
		activities = []Activity{}
	}
	return activities, next, nil
}

// AggregateByUser sums the user's emissions overall and per category.
func (l *Ledger) AggregateByUser(ctx context.Context, userID string) (Stats, error) {
	stats, err := l.repo.SummaryByUser(ctx, userID)
	if err != nil {
		return Stats{}, &StorageError{Op: "aggregate activities", Err: err}
	}
	if stats.ByCategory == nil {
		stats.ByCategory = map[string]float64{}
	}
	return stats, nil
}

// Estimator exposes the pricing table used for inserts.
func (l *Ledger) Estimator() *emission.Estimator {
	return l.estimator
}
