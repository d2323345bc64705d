package evaluation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Item is one scored indicator of an evaluation. Weight is in percentage
// points of the evaluation total.
type Item struct {
	ID           uuid.UUID       `json:"id"`
	EvaluationID uuid.UUID       `json:"evaluation_id"`
	Name         string          `json:"name"`
	Type         ItemType        `json:"item_type"`
	Weight       decimal.Decimal `json:"weight"`
	Score        decimal.Decimal `json:"score"`
	MaxScore     decimal.Decimal `json:"max_score"`
	Unit         string          `json:"unit,omitempty"`
	Remark       string          `json:"remark,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ItemInput carries the fields of a new item.
type ItemInput struct {
	Name     string          `json:"name"`
	Type     ItemType        `json:"item_type"`
	Weight   decimal.Decimal `json:"weight"`
	Score    decimal.Decimal `json:"score"`
	MaxScore decimal.Decimal `json:"max_score"`
	Unit     string          `json:"unit,omitempty"`
	Remark   string          `json:"remark,omitempty"`
}

func (in ItemInput) check() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: item name is required", ErrValidation)
	case !in.Type.Valid():
		return fmt.Errorf("%w: unknown item_type %q", ErrValidation, in.Type)
	case in.Weight.IsNegative() || in.Weight.GreaterThan(hundred):
		return fmt.Errorf("%w: weight must be between 0 and 100", ErrValidation)
	case in.MaxScore.IsNegative():
		return fmt.Errorf("%w: max_score must not be negative", ErrValidation)
	case in.Score.IsNegative():
		return fmt.Errorf("%w: score must not be negative", ErrValidation)
	case in.MaxScore.IsPositive() && in.Score.GreaterThan(in.MaxScore):
		return fmt.Errorf("%w: score exceeds max_score", ErrValidation)
	}
	return nil
}

// WeightedScore is score / maxScore × weight, or zero when maxScore is zero.
func (i Item) WeightedScore() decimal.Decimal {
	if i.MaxScore.IsZero() {
		return decimal.Zero
	}
	return i.Score.Mul(i.Weight).Div(i.MaxScore)
}

func (i Item) MarshalJSON() ([]byte, error) {
	type alias Item
	return json.Marshal(struct {
		alias
		TypeLabel     string          `json:"item_type_label"`
		WeightedScore decimal.Decimal `json:"weighted_score"`
	}{alias(i), i.Type.Label(), i.WeightedScore().Round(2)})
}

// TotalWeightedScore sums the weighted scores of items.
func TotalWeightedScore(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, i := range items {
		total = total.Add(i.WeightedScore())
	}
	return total
}

// TotalWeight sums item weights. Items of one evaluation conventionally
// add up to 100.
func TotalWeight(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, i := range items {
		total = total.Add(i.Weight)
	}
	return total
}
