package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateTracksOnlyTouchedEntities(t *testing.T) {
	store := newTestStore()
	svc := NewService(store)

	_, err := svc.CreateInvoice(context.Background(), testOwner, CreateInvoiceInput{
		CustomerID:    "cust-1",
		InvoiceNumber: "INV-1",
		Items:         []LineItem{{ItemID: "item-1", Name: "Widget", Quantity: 1, Price: 10}},
		TotalAmount:   10,
	})
	require.NoError(t, err)

	agg := store.agg
	require.Len(t, agg.ChangedCustomers(), 1)
	assert.Equal(t, "cust-1", agg.ChangedCustomers()[0].ID)

	require.Len(t, agg.ChangedStockItems(), 1)
	assert.Equal(t, "item-1", agg.ChangedStockItems()[0].ID)

	assert.Len(t, agg.NewInvoices(), 1)
	assert.Empty(t, agg.ChangedInvoices())
	assert.Empty(t, agg.RemovedInvoiceIDs())
}

func TestAggregateRemovingNewInvoiceLeavesNoTrace(t *testing.T) {
	agg := NewAggregate(testOwner)
	agg.Invoices["inv-1"] = &Invoice{ID: "inv-1", InvoiceNumber: "INV-1"}

	agg.markInvoiceNew("inv-1")
	delete(agg.Invoices, "inv-1")
	agg.markInvoiceRemoved("inv-1")

	// Never persisted, so nothing to delete downstream.
	assert.Empty(t, agg.NewInvoices())
	assert.Empty(t, agg.RemovedInvoiceIDs())
}

func TestAggregateMarkInvoiceOnNewStaysNew(t *testing.T) {
	agg := NewAggregate(testOwner)
	agg.Invoices["inv-1"] = &Invoice{ID: "inv-1", InvoiceNumber: "INV-1"}

	agg.markInvoiceNew("inv-1")
	agg.markInvoice("inv-1")

	assert.Len(t, agg.NewInvoices(), 1)
	assert.Empty(t, agg.ChangedInvoices())
}

func TestInvoiceNumberTakenExcludesSelf(t *testing.T) {
	agg := NewAggregate(testOwner)
	agg.Invoices["inv-1"] = &Invoice{ID: "inv-1", InvoiceNumber: "INV-1"}

	assert.True(t, agg.invoiceNumberTaken("INV-1", ""))
	assert.False(t, agg.invoiceNumberTaken("INV-1", "inv-1"))
	assert.False(t, agg.invoiceNumberTaken("INV-2", ""))
}
