package database

import (
	"context"
	"errors"

	"github.com/i4rcu/magazam-inventory-system/ledger"
	"github.com/i4rcu/magazam-inventory-system/models"

	"gorm.io/gorm"
)

// OwnerStore implements ledger.Store on top of GORM. One owner's
// customers, stock items and invoices live as user_id-scoped rows;
// LoadOwner assembles them into an aggregate and Save writes back only
// what an operation touched, inside a single transaction.
type OwnerStore struct {
	db *gorm.DB
}

func NewOwnerStore(db *gorm.DB) *OwnerStore {
	return &OwnerStore{db: db}
}

func (s *OwnerStore) LoadOwner(ctx context.Context, ownerID string) (*ledger.Aggregate, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, "id = ?", ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ledger.NotFoundError{Entity: "user", ID: ownerID}
		}
		return nil, err
	}

	agg := ledger.NewAggregate(ownerID)

	var customers []models.Customer
	if err := db.Where("user_id = ?", ownerID).Find(&customers).Error; err != nil {
		return nil, err
	}
	for i := range customers {
		c := customers[i]
		agg.Customers[c.Id] = &ledger.Customer{
			ID:          c.Id,
			FullName:    c.FullName,
			PhoneNumber: c.PhoneNumber,
			Balance:     c.Balance,
		}
	}

	var items []models.StockItem
	if err := db.Where("user_id = ?", ownerID).Find(&items).Error; err != nil {
		return nil, err
	}
	for i := range items {
		it := items[i]
		sku := ""
		if it.Sku != nil {
			sku = *it.Sku
		}
		agg.StockItems[it.Id] = &ledger.StockItem{
			ID:          it.Id,
			Name:        it.Name,
			Description: it.Description,
			Price:       it.Price,
			Quantity:    it.Quantity,
			Category:    it.Category,
			SKU:         sku,
		}
	}

	var invoices []models.Invoice
	if err := db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position ASC")
	}).Where("user_id = ?", ownerID).Find(&invoices).Error; err != nil {
		return nil, err
	}
	for i := range invoices {
		inv := invoices[i]
		lines := make([]ledger.LineItem, 0, len(inv.Items))
		for _, li := range inv.Items {
			lines = append(lines, ledger.LineItem{
				ItemID:   li.ItemId,
				Name:     li.Name,
				Quantity: li.Quantity,
				Price:    li.Price,
			})
		}
		agg.Invoices[inv.Id] = &ledger.Invoice{
			ID:            inv.Id,
			InvoiceNumber: inv.InvoiceNumber,
			CustomerID:    inv.CustomerId,
			Items:         lines,
			TotalAmount:   inv.TotalAmount,
			Status:        ledger.Status(inv.Status),
			CreatedAt:     inv.CreatedAt,
		}
	}

	return agg, nil
}

func (s *OwnerStore) Save(ctx context.Context, agg *ledger.Aggregate) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range agg.ChangedCustomers() {
			if err := tx.Model(&models.Customer{}).
				Where("id = ? AND user_id = ?", c.ID, agg.OwnerID).
				Update("balance", c.Balance).Error; err != nil {
				return err
			}
		}

		for _, it := range agg.ChangedStockItems() {
			if err := tx.Model(&models.StockItem{}).
				Where("id = ? AND user_id = ?", it.ID, agg.OwnerID).
				Update("quantity", it.Quantity).Error; err != nil {
				return err
			}
		}

		if removed := agg.RemovedInvoiceIDs(); len(removed) > 0 {
			if err := tx.Where("invoice_id IN ?", removed).
				Delete(&models.InvoiceLineItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ? AND user_id = ?", removed, agg.OwnerID).
				Delete(&models.Invoice{}).Error; err != nil {
				return err
			}
		}

		for _, inv := range agg.NewInvoices() {
			if err := tx.Create(invoiceModel(agg.OwnerID, inv)).Error; err != nil {
				return err
			}
		}

		for _, inv := range agg.ChangedInvoices() {
			if err := tx.Model(&models.Invoice{}).
				Where("id = ? AND user_id = ?", inv.ID, agg.OwnerID).
				Updates(map[string]any{
					"invoice_number": inv.InvoiceNumber,
					"customer_id":    inv.CustomerID,
					"total_amount":   inv.TotalAmount,
					"status":         string(inv.Status),
				}).Error; err != nil {
				return err
			}
			// Line items are replaced wholesale; patches carry the full sequence.
			if err := tx.Where("invoice_id = ?", inv.ID).
				Delete(&models.InvoiceLineItem{}).Error; err != nil {
				return err
			}
			if lines := lineItemModels(inv); len(lines) > 0 {
				if err := tx.Create(&lines).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
}

func invoiceModel(ownerID string, inv *ledger.Invoice) *models.Invoice {
	return &models.Invoice{
		Id:            inv.ID,
		UserId:        ownerID,
		InvoiceNumber: inv.InvoiceNumber,
		CustomerId:    inv.CustomerID,
		Items:         lineItemModels(inv),
		TotalAmount:   inv.TotalAmount,
		Status:        string(inv.Status),
		CreatedAt:     inv.CreatedAt,
	}
}

func lineItemModels(inv *ledger.Invoice) []models.InvoiceLineItem {
	out := make([]models.InvoiceLineItem, 0, len(inv.Items))
	for i, li := range inv.Items {
		out = append(out, models.InvoiceLineItem{
			InvoiceId: inv.ID,
			Position:  i,
			ItemId:    li.ItemID,
			Name:      li.Name,
			Quantity:  li.Quantity,
			Price:     li.Price,
		})
	}
	return out
}
