package ledger

import (
	"sort"
	"time"
)

// Customer is a buyer tracked by one owner. Balance is the amount the
// customer currently owes (positive = owed to the business).
type Customer struct {
	ID          string  `json:"id"`
	FullName    string  `json:"full_name"`
	PhoneNumber string  `json:"phone_number"`
	Balance     float64 `json:"balance"`
}

// StockItem is a sellable item with a non-negative on-hand quantity.
type StockItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Category    string  `json:"category,omitempty"`
	SKU         string  `json:"sku,omitempty"`
}

// LineItem is one invoice line. Name and Price are snapshots taken at
// invoice creation; ItemID references the owner's stock item.
type LineItem struct {
	ItemID   string  `json:"item_id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Invoice references one customer and an ordered sequence of line items.
type Invoice struct {
	ID            string     `json:"id"`
	InvoiceNumber string     `json:"invoice_number"`
	CustomerID    string     `json:"customer_id"`
	Items         []LineItem `json:"items"`
	TotalAmount   float64    `json:"total_amount"`
	Status        Status     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Aggregate is one owner's full set of collections, loaded as an arena:
// maps keyed by entity id, with invoices holding ids of customers and
// stock items rather than embedded copies. Uniqueness and lookups never
// cross owner boundaries.
//
// Mutations record which entities changed so a store can persist only
// the touched part of the aggregate.
type Aggregate struct {
	OwnerID    string
	Customers  map[string]*Customer
	StockItems map[string]*StockItem
	Invoices   map[string]*Invoice

	touchedCustomers map[string]bool
	touchedStock     map[string]bool
	newInvoices      map[string]bool
	touchedInvoices  map[string]bool
	removedInvoices  []string
}

// NewAggregate returns an empty aggregate for ownerID.
func NewAggregate(ownerID string) *Aggregate {
	return &Aggregate{
		OwnerID:          ownerID,
		Customers:        make(map[string]*Customer),
		StockItems:       make(map[string]*StockItem),
		Invoices:         make(map[string]*Invoice),
		touchedCustomers: make(map[string]bool),
		touchedStock:     make(map[string]bool),
		newInvoices:      make(map[string]bool),
		touchedInvoices:  make(map[string]bool),
	}
}

// invoiceNumberTaken reports whether another invoice (excluding excludeID)
// already carries number.
func (a *Aggregate) invoiceNumberTaken(number, excludeID string) bool {
	for _, inv := range a.Invoices {
		if inv.InvoiceNumber == number && inv.ID != excludeID {
			return true
		}
	}
	return false
}

func (a *Aggregate) markCustomer(id string)  { a.touchedCustomers[id] = true }
func (a *Aggregate) markStockItem(id string) { a.touchedStock[id] = true }

func (a *Aggregate) markInvoiceNew(id string) { a.newInvoices[id] = true }

func (a *Aggregate) markInvoice(id string) {
	if !a.newInvoices[id] {
		a.touchedInvoices[id] = true
	}
}

func (a *Aggregate) markInvoiceRemoved(id string) {
	if a.newInvoices[id] {
		delete(a.newInvoices, id)
		return
	}
	delete(a.touchedInvoices, id)
	a.removedInvoices = append(a.removedInvoices, id)
}

// ChangedCustomers returns the customers mutated since load, in id order.
func (a *Aggregate) ChangedCustomers() []*Customer {
	out := make([]*Customer, 0, len(a.touchedCustomers))
	for id := range a.touchedCustomers {
		if c, ok := a.Customers[id]; ok {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ChangedStockItems returns the stock items mutated since load, in id order.
func (a *Aggregate) ChangedStockItems() []*StockItem {
	out := make([]*StockItem, 0, len(a.touchedStock))
	for id := range a.touchedStock {
		if s, ok := a.StockItems[id]; ok {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NewInvoices returns the invoices created since load, in id order.
func (a *Aggregate) NewInvoices() []*Invoice {
	out := make([]*Invoice, 0, len(a.newInvoices))
	for id := range a.newInvoices {
		if inv, ok := a.Invoices[id]; ok {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ChangedInvoices returns pre-existing invoices mutated since load, in id order.
func (a *Aggregate) ChangedInvoices() []*Invoice {
	out := make([]*Invoice, 0, len(a.touchedInvoices))
	for id := range a.touchedInvoices {
		if inv, ok := a.Invoices[id]; ok {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RemovedInvoiceIDs returns the ids of invoices deleted since load.
func (a *Aggregate) RemovedInvoiceIDs() []string {
	return append([]string(nil), a.removedInvoices...)
}
