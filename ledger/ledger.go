// Package ledger implements the invoice lifecycle and its cascading
// effects on stock quantities and customer balances. Every operation is
// a request-scoped read-modify-write over one owner's aggregate: all
// preconditions are checked before any mutation, so a failed operation
// leaves the aggregate untouched.
package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence collaborator. LoadOwner returns the owner's
// full aggregate (or a NotFoundError for an unknown owner); Save persists
// the aggregate's recorded changes atomically.
type Store interface {
	LoadOwner(ctx context.Context, ownerID string) (*Aggregate, error)
	Save(ctx context.Context, agg *Aggregate) error
}

// Service is the invoice ledger domain service.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateInvoiceInput carries the fields of a new invoice. Status defaults
// to pending when empty.
type CreateInvoiceInput struct {
	CustomerID    string
	InvoiceNumber string
	Items         []LineItem
	TotalAmount   float64
	Status        Status
}

// CreateInvoiceResult is the created invoice plus the customer's balance
// after the create.
type CreateInvoiceResult struct {
	Invoice         *Invoice `json:"invoice"`
	CustomerBalance float64  `json:"customer_balance"`
}

// CreateInvoice appends a new invoice, decrements each referenced stock
// item by its line quantity and, for a pending invoice, increases the
// customer's balance by the total amount. All checks run before any
// mutation; on failure nothing changes.
func (s *Service) CreateInvoice(ctx context.Context, ownerID string, in CreateInvoiceInput) (*CreateInvoiceResult, error) {
	status := in.Status
	if status == "" {
		status = StatusPending
	}
	if _, ok := ParseStatus(string(status)); !ok {
		return nil, &ValidationError{Field: "status", Reason: "must be pending, paid, or cancelled"}
	}
	if len(in.Items) == 0 {
		return nil, &ValidationError{Field: "items", Reason: "must contain at least one item"}
	}

	agg, err := s.store.LoadOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	customer, ok := agg.Customers[in.CustomerID]
	if !ok {
		return nil, &NotFoundError{Entity: "customer", ID: in.CustomerID}
	}
	if agg.invoiceNumberTaken(in.InvoiceNumber, "") {
		return nil, &ConflictError{Field: "invoice_number", Value: in.InvoiceNumber}
	}
	// Required quantities are summed per stock item so that two lines
	// referencing the same item can't drive its quantity negative.
	required := make(map[string]int, len(in.Items))
	for _, item := range in.Items {
		stock, ok := agg.StockItems[item.ItemID]
		if !ok {
			return nil, &NotFoundError{Entity: "stock item", ID: item.ItemID}
		}
		required[item.ItemID] += item.Quantity
		if stock.Quantity < required[item.ItemID] {
			return nil, &InsufficientStockError{
				ItemID:    stock.ID,
				Name:      stock.Name,
				Available: stock.Quantity,
				Required:  required[item.ItemID],
			}
		}
	}

	invoice := &Invoice{
		ID:            uuid.NewString(),
		InvoiceNumber: in.InvoiceNumber,
		CustomerID:    in.CustomerID,
		Items:         append([]LineItem(nil), in.Items...),
		TotalAmount:   in.TotalAmount,
		Status:        status,
		CreatedAt:     time.Now().UTC(),
	}
	agg.Invoices[invoice.ID] = invoice
	agg.markInvoiceNew(invoice.ID)

	for _, item := range in.Items {
		stock := agg.StockItems[item.ItemID]
		stock.Quantity -= item.Quantity
		agg.markStockItem(stock.ID)
	}

	if status == StatusPending {
		customer.Balance += in.TotalAmount
		agg.markCustomer(customer.ID)
	}

	if err := s.store.Save(ctx, agg); err != nil {
		return nil, err
	}
	return &CreateInvoiceResult{Invoice: invoice, CustomerBalance: customer.Balance}, nil
}

// StatusChangeResult is the updated invoice, the status it moved from,
// and the customer's balance after the transition.
type StatusChangeResult struct {
	Invoice         *Invoice `json:"invoice"`
	PreviousStatus  Status   `json:"previous_status"`
	CustomerBalance float64  `json:"customer_balance"`
}

// ChangeInvoiceStatus moves an invoice to next and applies the balance
// transition table to its customer.
func (s *Service) ChangeInvoiceStatus(ctx context.Context, ownerID, invoiceID string, next Status) (*StatusChangeResult, error) {
	if _, ok := ParseStatus(string(next)); !ok {
		return nil, &ValidationError{Field: "status", Reason: "must be pending, paid, or cancelled"}
	}

	agg, err := s.store.LoadOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	invoice, ok := agg.Invoices[invoiceID]
	if !ok {
		return nil, &NotFoundError{Entity: "invoice", ID: invoiceID}
	}
	customer, ok := agg.Customers[invoice.CustomerID]
	if !ok {
		return nil, &NotFoundError{Entity: "customer", ID: invoice.CustomerID}
	}

	prev := invoice.Status
	if delta := balanceDelta(prev, next, invoice.TotalAmount); delta != 0 {
		customer.Balance += delta
		agg.markCustomer(customer.ID)
	}
	invoice.Status = next
	agg.markInvoice(invoice.ID)

	if err := s.store.Save(ctx, agg); err != nil {
		return nil, err
	}
	return &StatusChangeResult{Invoice: invoice, PreviousStatus: prev, CustomerBalance: customer.Balance}, nil
}

// InvoicePatch is a partial invoice update. Nil fields are absent; set
// fields replace the invoice field as-is. A Status set here is written
// raw, without the balance transition table — that path exists only on
// ChangeInvoiceStatus. Items and TotalAmount changes likewise do not
// recompute stock or balance.
type InvoicePatch struct {
	InvoiceNumber *string
	CustomerID    *string
	Items         []LineItem
	TotalAmount   *float64
	Status        *Status
}

// UpdateInvoice applies a field-replacement patch to an invoice.
// Duplicate invoice numbers and unknown customers are rejected the same
// way CreateInvoice rejects them.
func (s *Service) UpdateInvoice(ctx context.Context, ownerID, invoiceID string, patch InvoicePatch) (*Invoice, error) {
	agg, err := s.store.LoadOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	invoice, ok := agg.Invoices[invoiceID]
	if !ok {
		return nil, &NotFoundError{Entity: "invoice", ID: invoiceID}
	}

	if patch.InvoiceNumber != nil && *patch.InvoiceNumber != invoice.InvoiceNumber {
		if agg.invoiceNumberTaken(*patch.InvoiceNumber, invoiceID) {
			return nil, &ConflictError{Field: "invoice_number", Value: *patch.InvoiceNumber}
		}
	}
	if patch.CustomerID != nil && *patch.CustomerID != invoice.CustomerID {
		if _, ok := agg.Customers[*patch.CustomerID]; !ok {
			return nil, &NotFoundError{Entity: "customer", ID: *patch.CustomerID}
		}
	}
	if patch.Status != nil {
		if _, ok := ParseStatus(string(*patch.Status)); !ok {
			return nil, &ValidationError{Field: "status", Reason: "must be pending, paid, or cancelled"}
		}
	}

	if patch.InvoiceNumber != nil {
		invoice.InvoiceNumber = *patch.InvoiceNumber
	}
	if patch.CustomerID != nil {
		invoice.CustomerID = *patch.CustomerID
	}
	if patch.Items != nil {
		invoice.Items = append([]LineItem(nil), patch.Items...)
	}
	if patch.TotalAmount != nil {
		invoice.TotalAmount = *patch.TotalAmount
	}
	if patch.Status != nil {
		invoice.Status = *patch.Status
	}
	agg.markInvoice(invoice.ID)

	if err := s.store.Save(ctx, agg); err != nil {
		return nil, err
	}
	return invoice, nil
}

// DeleteInvoice removes an invoice, reversing the owed amount for a
// pending invoice and restocking every line item regardless of status.
// A customer or stock item that no longer resolves is skipped: the
// invoice must still be removable. The returned balance is nil when the
// customer is gone.
func (s *Service) DeleteInvoice(ctx context.Context, ownerID, invoiceID string) (*float64, error) {
	agg, err := s.store.LoadOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	invoice, ok := agg.Invoices[invoiceID]
	if !ok {
		return nil, &NotFoundError{Entity: "invoice", ID: invoiceID}
	}

	var remaining *float64
	if customer, ok := agg.Customers[invoice.CustomerID]; ok {
		if invoice.Status == StatusPending {
			customer.Balance -= invoice.TotalAmount
			agg.markCustomer(customer.ID)
		}
		remaining = &customer.Balance
	}

	for _, item := range invoice.Items {
		if stock, ok := agg.StockItems[item.ItemID]; ok {
			stock.Quantity += item.Quantity
			agg.markStockItem(stock.ID)
		}
	}

	delete(agg.Invoices, invoiceID)
	agg.markInvoiceRemoved(invoiceID)

	if err := s.store.Save(ctx, agg); err != nil {
		return nil, err
	}
	return remaining, nil
}

// Operation selects how AdjustStockQuantity combines the amount with the
// current quantity.
type Operation string

const (
	OpSet      Operation = "set"
	OpAdd      Operation = "add"
	OpSubtract Operation = "subtract"
)

// ParseOperation returns the Operation for s. Empty defaults to set.
func ParseOperation(s string) (Operation, bool) {
	switch Operation(s) {
	case OpSet, OpAdd, OpSubtract:
		return Operation(s), true
	case "":
		return OpSet, true
	}
	return "", false
}

// AdjustResult is the updated item plus, for add/subtract, the quantity
// before the adjustment (nil for set).
type AdjustResult struct {
	Item             *StockItem `json:"stock_item"`
	PreviousQuantity *int       `json:"previous_quantity"`
	Operation        Operation  `json:"operation"`
}

// AdjustStockQuantity applies a set/add/subtract adjustment, rejecting
// any result below zero.
func (s *Service) AdjustStockQuantity(ctx context.Context, ownerID, itemID string, amount int, op Operation) (*AdjustResult, error) {
	agg, err := s.store.LoadOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	item, ok := agg.StockItems[itemID]
	if !ok {
		return nil, &NotFoundError{Entity: "stock item", ID: itemID}
	}

	newQuantity := amount
	switch op {
	case OpAdd:
		newQuantity = item.Quantity + amount
	case OpSubtract:
		newQuantity = item.Quantity - amount
	}
	if newQuantity < 0 {
		return nil, &InvalidQuantityError{Attempted: newQuantity}
	}

	var previous *int
	if op == OpAdd || op == OpSubtract {
		prev := item.Quantity
		previous = &prev
	}

	item.Quantity = newQuantity
	agg.markStockItem(item.ID)

	if err := s.store.Save(ctx, agg); err != nil {
		return nil, err
	}
	return &AdjustResult{Item: item, PreviousQuantity: previous, Operation: op}, nil
}

// InvoiceFilter narrows ListInvoices. Empty fields match everything.
type InvoiceFilter struct {
	Status     string
	CustomerID string
}

// ListInvoices returns the owner's invoices, oldest first, optionally
// filtered by status and customer.
func (s *Service) ListInvoices(ctx context.Context, ownerID string, f InvoiceFilter) ([]*Invoice, error) {
	agg, err := s.store.LoadOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	out := make([]*Invoice, 0, len(agg.Invoices))
	for _, inv := range agg.Invoices {
		if f.Status != "" && string(inv.Status) != f.Status {
			continue
		}
		if f.CustomerID != "" && inv.CustomerID != f.CustomerID {
			continue
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].InvoiceNumber < out[j].InvoiceNumber
	})
	return out, nil
}

// GetInvoice returns one invoice and its customer (nil when the customer
// no longer resolves).
func (s *Service) GetInvoice(ctx context.Context, ownerID, invoiceID string) (*Invoice, *Customer, error) {
	agg, err := s.store.LoadOwner(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}

	invoice, ok := agg.Invoices[invoiceID]
	if !ok {
		return nil, nil, &NotFoundError{Entity: "invoice", ID: invoiceID}
	}
	return invoice, agg.Customers[invoice.CustomerID], nil
}
