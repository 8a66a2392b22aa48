// Package expense summarises laboratory spending by department, expense
// type and commodity group.
package expense

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrUnknownDepartment is returned when a filter names a department that
// is not on the allowed list.
var ErrUnknownDepartment = errors.New("expense: unknown department")

// AllowedDepartments is the whitelist of laboratory departments the
// report covers. Rows outside the list are ignored.
func AllowedDepartments() []string {
	return []string{"HCMCHEM", "HCMPEST", "HCMMICR", "HCMMYCO", "HCMOTH"}
}

// Record is one expense line. Money columns are exact decimals.
type Record struct {
	CreatedDate string          `json:"createdDate"`
	Month       int             `json:"month"`
	Type        string          `json:"type"`
	Department  string          `json:"department"`
	Commodity   string          `json:"commodity"`
	ItemNumber  string          `json:"itemNumber"`
	Item        string          `json:"item"`
	Quantity    float64         `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Total       decimal.Decimal `json:"total"`
}

// Filter narrows a summary. Zero values select everything.
type Filter struct {
	Department string
	Commodity  string
	Month      int
}

// Share is one slice of a spending breakdown with its percentage of the
// filtered total.
type Share struct {
	Name       string          `json:"name"`
	Total      decimal.Decimal `json:"total"`
	Percentage float64         `json:"percentage"`
}

// Summary is the expense dashboard payload.
type Summary struct {
	ItemCount    int             `json:"itemCount"`
	TotalSpend   decimal.Decimal `json:"totalSpend"`
	Spread       decimal.Decimal `json:"spread"`
	ByDepartment []Share         `json:"byDepartment"`
	ByType       []Share         `json:"byType"`
	ByCommodity  []Share         `json:"byCommodity"`
}
