// internal/fienta/types.go
package fienta

import (
	"strings"
	"time"
)

// DiscountUnit describes how the discount magnitude is applied.
type DiscountUnit string

const (
	UnitPercent  DiscountUnit = "percent"
	UnitAbsolute DiscountUnit = "absolute"
)

// Usage holds the counters parsed from a listing row's usage cell.
type Usage struct {
	OrdersUsed  int `json:"ordersUsed"`
	OrderLimit  int `json:"orderLimit"`
	TicketsUsed int `json:"ticketsUsed"`
	TicketLimit int `json:"ticketLimit"`
}

// DiscountCode is the remote entity managed by this engine. The code string
// is the only externally visible key; DiscountID is assigned by Fienta and
// discovered from edit-link hrefs, never chosen by us.
type DiscountCode struct {
	Code       string `json:"code"`
	DiscountID string `json:"discountId,omitempty"`
	EditURL    string `json:"editUrl,omitempty"`

	Amount float64      `json:"amount,omitempty"`
	Unit   DiscountUnit `json:"unit,omitempty"`

	Usage Usage `json:"usage"`

	ValidFrom  *time.Time `json:"validFrom,omitempty"`
	ValidUntil *time.Time `json:"validUntil,omitempty"`

	TicketTypes []string `json:"ticketTypes,omitempty"`
	Description string   `json:"description,omitempty"`
	Disabled    bool     `json:"disabled,omitempty"`

	// NeedsReview marks rows whose usage cell matched none of the known
	// text patterns. The row is still emitted with zeroed counters.
	NeedsReview bool `json:"needsReview,omitempty"`

	Orders []Order `json:"orders,omitempty"`
}

// Order is a transaction that referenced a discount code.
type Order struct {
	OrderID       string         `json:"orderId"`
	Date          string         `json:"orderDate"`
	CustomerEmail string         `json:"customerEmail"`
	CustomerName  string         `json:"customerName,omitempty"`
	CustomerPhone string         `json:"customerPhone,omitempty"`
	TicketCount   int            `json:"ticketCount"`
	TotalAmount   string         `json:"totalAmount"`
	Currency      string         `json:"currency,omitempty"`
	Status        string         `json:"status"`
	DiscountCode  string         `json:"discountCode,omitempty"`
	Tickets       []TicketDetail `json:"ticketDetails,omitempty"`
}

// TicketDetail is one ticket line inside an order.
type TicketDetail struct {
	TicketID      string `json:"ticketId,omitempty"`
	TicketType    string `json:"ticketType,omitempty"`
	AttendeeName  string `json:"attendeeName,omitempty"`
	AttendeeEmail string `json:"attendeeEmail,omitempty"`
	Price         string `json:"price,omitempty"`
}

// OrderDateLayout is the date format Fienta renders on order rows,
// e.g. "12.09.2025 10:45".
const OrderDateLayout = "02.01.2006 15:04"

// RenamePair is one unit of batch-rename input.
type RenamePair struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// Valid reports whether both sides of the pair are non-empty.
func (p RenamePair) Valid() bool {
	return strings.TrimSpace(p.Old) != "" && strings.TrimSpace(p.New) != ""
}

// NoOp reports whether old and new normalize to the same code. Such pairs
// must be skipped before any network interaction.
func (p RenamePair) NoOp() bool {
	return strings.EqualFold(Normalize(p.Old), Normalize(p.New))
}

// Normalize canonicalizes a code for comparison. Fienta treats codes
// case-insensitively and strips surrounding whitespace.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CreateSpec carries the parameters for creating a new discount code.
type CreateSpec struct {
	Code        string
	Amount      float64
	Unit        DiscountUnit
	OrderLimit  int
	TicketLimit int
	Description string
}

// UpdateSpec carries the parameters for updating magnitude and description.
type UpdateSpec struct {
	Code        string
	Amount      float64
	Unit        DiscountUnit
	Description string
	// SetDescription distinguishes "clear it" from "leave it alone".
	SetDescription bool
}

// RenameOptions tunes the rename state machine.
type RenameOptions struct {
	// LimitsOnly skips the code field and only touches the caps.
	LimitsOnly  bool
	OrderLimit  int
	TicketLimit int
	// SetLimits enables writing the caps above.
	SetLimits bool
}
