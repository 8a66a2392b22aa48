package stock

import "errors"

// InventoryRecord is one stock-on-hand observation for an item in a
// department in a month. Records are immutable once inside a snapshot.
type InventoryRecord struct {
	Month      int     `json:"month"`
	ItemNumber string  `json:"itemNumber"`
	Item       string  `json:"item"`
	Department string  `json:"department"`
	Quantity   float64 `json:"quantity"`
	UOM        string  `json:"uom"`
	Price      float64 `json:"price"`
	Total      float64 `json:"total"`
	Commodity  string  `json:"commodity"`
}

// OutboundRecord is one withdrawal transaction for an item in a month.
type OutboundRecord struct {
	Month      int     `json:"month"`
	Account    string  `json:"account"`
	ItemNumber string  `json:"itemNumber"`
	Item       string  `json:"item"`
	Quantity   float64 `json:"quantity"`
	UOM        string  `json:"uom"`
	Price      float64 `json:"price"`
	Total      float64 `json:"total"`
	Currency   string  `json:"currency"`
	Receiver   string  `json:"receiver"`
	Commodity  string  `json:"commodity"`
}

// Snapshot is an immutable view over both tables. Readers hold it for the
// duration of a query; the store swaps the whole pair on replace.
type Snapshot struct {
	Version   int64
	Inventory []InventoryRecord
	Outbound  []OutboundRecord
}

// TableKind distinguishes the two staged tables.
type TableKind string

const (
	// TableInventory identifies the stock-on-hand table.
	TableInventory TableKind = "inventory"
	// TableOutbound identifies the withdrawal table.
	TableOutbound TableKind = "outbound"
)

// ErrStagingNotFound indicates an unknown or expired staging id.
var ErrStagingNotFound = errors.New("stock: staging not found")

// ErrStagingIncomplete indicates apply was requested before both tables
// were staged.
var ErrStagingIncomplete = errors.New("stock: both inventory and outbound must be staged before apply")

// ErrUnknownTable indicates an unsupported table kind.
var ErrUnknownTable = errors.New("stock: unknown table kind")
