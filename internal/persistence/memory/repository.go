// Package memory keeps activities in process memory for local development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"example.com/carbon/internal/domain"
)

// Repository stores activities per user.
type Repository struct {
	mu         sync.RWMutex
	activities map[string][]domain.Activity
	ids        map[string]struct{}
}

// NewRepository constructs an empty Repository.
func NewRepository() *Repository {
	return &Repository{
		activities: make(map[string][]domain.Activity),
		ids:        make(map[string]struct{}),
	}
}

// Create implements domain.ActivityRepository.
func (r *Repository) Create(ctx context.Context, activity domain.Activity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ids[activity.ID]; exists {
		return fmt.Errorf("duplicate activity id %s", activity.ID)
	}
	r.ids[activity.ID] = struct{}{}
	r.activities[activity.UserID] = append(r.activities[activity.UserID], activity)
	return nil
}

// ListByUser implements domain.ActivityRepository.
func (r *Repository) ListByUser(ctx context.Context, userID string, page domain.Page) ([]domain.Activity, *domain.Cursor, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	r.mu.RLock()
	owned := append([]domain.Activity(nil), r.activities[userID]...)
	r.mu.RUnlock()

	sort.Slice(owned, func(i, j int) bool {
		if owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].ID > owned[j].ID
		}
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})

	results := make([]domain.Activity, 0, len(owned))
	for _, activity := range owned {
		if page.Cursor != nil && !page.Cursor.Before(activity) {
			continue
		}
		results = append(results, activity)
		if page.Limit > 0 && len(results) == page.Limit {
			break
		}
	}

	var next *domain.Cursor
	if page.Limit > 0 && len(results) == page.Limit {
		last := results[len(results)-1]
		next = &domain.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return results, next, nil
}

// SummaryByUser implements domain.ActivityRepository.
func (r *Repository) SummaryByUser(ctx context.Context, userID string) (domain.Stats, error) {
	if err := ctx.Err(); err != nil {
		return domain.Stats{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := domain.Stats{ByCategory: make(map[string]float64)}
	for _, activity := range r.activities[userID] {
		stats.Total += activity.CarbonEmission
		stats.ByCategory[activity.Category] += activity.CarbonEmission
	}
	return stats, nil
}
