package dto

import "github.com/shopspring/decimal"

// AggregateTotal is the rolled-up consumption of one material across a whole
// assembly: each BOM line's quantity multiplied by the product of
// amount_in_parent values along its path to the root, summed per material.
type AggregateTotal struct {
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit"`
}

// AggregatedBomResponse maps material id → rolled-up total for one root.
type AggregatedBomResponse struct {
	RootID string                    `json:"root_id"`
	Totals map[string]AggregateTotal `json:"totals"`
}
