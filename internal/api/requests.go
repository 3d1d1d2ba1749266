package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"example.com/carbon/internal/domain"
)

// Quantity accepts either a JSON number or a numeric string, since form
// inputs post their values as strings.
type Quantity string

// UnmarshalJSON implements json.Unmarshaler.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = Quantity(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("value must be a number or a numeric string")
	}
	*q = Quantity(n.String())
	return nil
}

// CreateActivityRequest is the payload for POST /api/activities. The owner is
// always taken from the bearer token.
type CreateActivityRequest struct {
	Category string    `json:"category" validate:"required,max=64"`
	Type     string    `json:"type" validate:"max=64"`
	Value    *Quantity `json:"value" validate:"required"`
}

// ActivityView exposes full details about an activity.
type ActivityView struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Category       string    `json:"category"`
	Type           string    `json:"type"`
	Value          float64   `json:"value"`
	CarbonEmission float64   `json:"carbonEmission"`
	CreatedAt      time.Time `json:"createdAt"`
}

// StatsResponse is the body of GET /api/stats.
type StatsResponse struct {
	Total      float64            `json:"total"`
	ByCategory map[string]float64 `json:"byCategory"`
}

// EstimateResponse previews the emission an activity would be recorded with.
type EstimateResponse struct {
	Category       string   `json:"category"`
	Type           string   `json:"type"`
	Value          string   `json:"value"`
	CarbonEmission float64  `json:"carbonEmission"`
	Recognized     bool     `json:"recognized"`
	Rate           *float64 `json:"rate,omitempty"`
	Unit           string   `json:"unit,omitempty"`
}

func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

// describeViolations renders validator errors as a single readable sentence.
func describeViolations(err error) string {
	var violations validator.ValidationErrors
	if !errors.As(err, &violations) {
		return err.Error()
	}
	messages := lo.Map(violations, func(fe validator.FieldError, _ int) string {
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", fe.Field())
		case "max":
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		default:
			return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
		}
	})
	return strings.Join(messages, "; ")
}

func toActivityView(activity domain.Activity) ActivityView {
	return ActivityView{
		ID:             activity.ID,
		UserID:         activity.UserID,
		Category:       activity.Category,
		Type:           activity.Type,
		Value:          activity.Value,
		CarbonEmission: activity.CarbonEmission,
		CreatedAt:      activity.CreatedAt,
	}
}
