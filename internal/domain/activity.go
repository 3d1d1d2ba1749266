package domain

import "time"

// Activity is one logged action with the emission computed when it was recorded.
type Activity struct {
	ID             string
	UserID         string
	Category       string
	Type           string
	Value          float64
	CarbonEmission float64
	CreatedAt      time.Time
}

// Stats aggregates a user's emissions.
type Stats struct {
	Total      float64
	ByCategory map[string]float64
}

// Cursor models the pagination token for newest-first listings.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// Page restricts a listing. A zero Limit returns every remaining record.
type Page struct {
	Cursor *Cursor
	Limit  int
}

// Before reports whether a sorts after the cursor position in newest-first order.
func (c Cursor) Before(a Activity) bool {
	if a.CreatedAt.Equal(c.CreatedAt) {
		return a.ID < c.ID
	}
	return a.CreatedAt.Before(c.CreatedAt)
}
