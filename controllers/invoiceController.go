package controllers

import (
	"github.com/i4rcu/magazam-inventory-system/database"
	"github.com/i4rcu/magazam-inventory-system/ledger"
	"github.com/i4rcu/magazam-inventory-system/middlewares"
	"github.com/i4rcu/magazam-inventory-system/utils"

	"github.com/gofiber/fiber/v2"
)

type LineItemDTO struct {
	ItemId   string  `json:"item_id" validate:"required,min=1"`
	Name     string  `json:"name" validate:"required,min=1"`
	Quantity int     `json:"quantity" validate:"gt=0"`
	Price    float64 `json:"price" validate:"gte=0"`
}

type InvoiceCreateDTO struct {
	CustomerId    string        `json:"customer_id" validate:"required,min=1"`
	InvoiceNumber string        `json:"invoice_number" validate:"required,min=1"`
	Items         []LineItemDTO `json:"items" validate:"required,min=1,dive"`
	TotalAmount   float64       `json:"total_amount" validate:"gte=0"`
	Status        string        `json:"status" validate:"omitempty,oneof=pending paid cancelled"`
}

// InvoiceUpdateDTO is a field-replacement patch: nil means "leave as is",
// a set field overwrites the raw value. A status set here deliberately
// bypasses the balance transition applied by the status endpoint.
type InvoiceUpdateDTO struct {
	InvoiceNumber *string       `json:"invoice_number" validate:"omitempty,min=1"`
	CustomerId    *string       `json:"customer_id" validate:"omitempty,min=1"`
	Items         []LineItemDTO `json:"items" validate:"omitempty,min=1,dive"`
	TotalAmount   *float64      `json:"total_amount" validate:"omitempty,gte=0"`
	Status        *string       `json:"status" validate:"omitempty,oneof=pending paid cancelled"`
}

type InvoiceStatusDTO struct {
	Status string `json:"status" validate:"required,oneof=pending paid cancelled"`
}

func lineItems(in []LineItemDTO) []ledger.LineItem {
	out := make([]ledger.LineItem, 0, len(in))
	for _, li := range in {
		out = append(out, ledger.LineItem{
			ItemID:   li.ItemId,
			Name:     li.Name,
			Quantity: li.Quantity,
			Price:    utils.Round2(li.Price),
		})
	}
	return out
}

func ledgerService(c *fiber.Ctx) (*ledger.Service, error) {
	db, err := database.FromCtx(c)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}
	return ledger.NewService(database.NewOwnerStore(db)), nil
}

// POST /api/invoice
func CreateInvoice(c *fiber.Ctx) error {
	userID, err := ownerID(c)
	if err != nil {
		return err
	}

	var in InvoiceCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	svc, err := ledgerService(c)
	if err != nil {
		return err
	}

	result, err := svc.CreateInvoice(c.UserContext(), userID, ledger.CreateInvoiceInput{
		CustomerID:    in.CustomerId,
		InvoiceNumber: in.InvoiceNumber,
		Items:         lineItems(in.Items),
		TotalAmount:   utils.Round2(in.TotalAmount),
		Status:        ledger.Status(in.Status),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// GET /api/invoices?status=&customer_id=
func GetInvoices(c *fiber.Ctx) error {
	userID, err := ownerID(c)
	if err != nil {
		return err
	}

	svc, err := ledgerService(c)
	if err != nil {
		return err
	}

	invoices, err := svc.ListInvoices(c.UserContext(), userID, ledger.InvoiceFilter{
		Status:     c.Query("status"),
		CustomerID: c.Query("customer_id"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"invoices": invoices})
}

// GET /api/invoice/:id
func GetInvoice(c *fiber.Ctx) error {
	userID, err := ownerID(c)
	if err != nil {
		return err
	}

	svc, err := ledgerService(c)
	if err != nil {
		return err
	}

	invoice, customer, err := svc.GetInvoice(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"invoice":  invoice,
		"customer": customer,
	})
}

// PUT /api/invoice/:id
func UpdateInvoice(c *fiber.Ctx) error {
	userID, err := ownerID(c)
	if err != nil {
		return err
	}

	var in InvoiceUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	svc, err := ledgerService(c)
	if err != nil {
		return err
	}

	patch := ledger.InvoicePatch{
		InvoiceNumber: in.InvoiceNumber,
		CustomerID:    in.CustomerId,
	}
	if in.Items != nil {
		patch.Items = lineItems(in.Items)
	}
	if in.Status != nil {
		st := ledger.Status(*in.Status)
		patch.Status = &st
	}
	if in.TotalAmount != nil {
		rounded := utils.Round2(*in.TotalAmount)
		patch.TotalAmount = &rounded
	}

	invoice, err := svc.UpdateInvoice(c.UserContext(), userID, c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(invoice)
}

// PATCH /api/invoice/:id/status
func UpdateInvoiceStatus(c *fiber.Ctx) error {
	userID, err := ownerID(c)
	if err != nil {
		return err
	}

	var in InvoiceStatusDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	svc, err := ledgerService(c)
	if err != nil {
		return err
	}

	result, err := svc.ChangeInvoiceStatus(c.UserContext(), userID, c.Params("id"), ledger.Status(in.Status))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// DELETE /api/invoice/:id
func DeleteInvoice(c *fiber.Ctx) error {
	userID, err := ownerID(c)
	if err != nil {
		return err
	}

	svc, err := ledgerService(c)
	if err != nil {
		return err
	}

	balance, err := svc.DeleteInvoice(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":          "invoice deleted",
		"customer_balance": balance,
	})
}
