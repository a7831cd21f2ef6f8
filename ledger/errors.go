package ledger

import "fmt"

// NotFoundError signals that an entity could not be resolved inside the
// owner's aggregate (or the owner itself is unknown).
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ConflictError signals a uniqueness violation within one owner's
// collections (invoice number, sku, phone number).
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Field, e.Value)
}

// InsufficientStockError names the short item and the available vs
// required quantities.
type InsufficientStockError struct {
	ItemID    string
	Name      string
	Available int
	Required  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %s. Available: %d, Required: %d",
		e.Name, e.Available, e.Required)
}

// InvalidQuantityError signals an adjustment that would leave a stock
// quantity negative.
type InvalidQuantityError struct {
	Attempted int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity cannot be negative (attempted %d)", e.Attempted)
}

// ValidationError reports a request-local field problem detected inside
// the ledger itself (the HTTP boundary does most field validation).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
