package controllers

import (
	"errors"

	"github.com/i4rcu/magazam-inventory-system/database"
	"github.com/i4rcu/magazam-inventory-system/ledger"
	"github.com/i4rcu/magazam-inventory-system/middlewares"
	"github.com/i4rcu/magazam-inventory-system/models"
	"github.com/i4rcu/magazam-inventory-system/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type StockItemCreateDTO struct {
	Name        string  `json:"name" validate:"required,min=1"`
	Description string  `json:"description" validate:"omitempty"`
	Price       float64 `json:"price" validate:"gte=0"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
	Category    string  `json:"category" validate:"omitempty"`
	Sku         *string `json:"sku" validate:"omitempty,min=1"`
}

type StockItemUpdateDTO struct {
	Name        *string  `json:"name" validate:"omitempty,min=1"`
	Description *string  `json:"description" validate:"omitempty"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Quantity    *int     `json:"quantity" validate:"omitempty,gte=0"`
	Category    *string  `json:"category" validate:"omitempty"`
	Sku         *string  `json:"sku" validate:"omitempty,min=1"`
}

type QuantityAdjustDTO struct {
	Quantity  int    `json:"quantity" validate:"gte=0"`
	Operation string `json:"operation" validate:"omitempty,oneof=set add subtract"`
}

// POST /api/stock
func CreateStockItem(c *fiber.Ctx) error {
	userID, err := ownerID(c)
	if err != nil {
		return err
	}

	var in StockItemCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	if in.Sku != nil && *in.Sku != "" {
		var count int64
		db.Model(&models.StockItem{}).
			Where("user_id = ? AND sku = ?", userID, *in.Sku).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "item with this SKU already exists")
		}
	}

	item := models.StockItem{
		UserId:      userID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Category:    in.Category,
		Sku:         in.Sku,
	}

	if err := db.Create(&item).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create stock item")
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// GET /api/stock
func GetStockItems(c *fiber.Ctx) error {
	userID, err := ownerID(c)
	if err != nil {
		return err
	}

	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var items []models.StockItem
	if err := db.Where("user_id = ?", userID).Order("created_at ASC").Find(&items).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(fiber.Map{"stock_items": items})
}

// GET /api/stock/:id
func GetStockItem(c *fiber.Ctx) error {
	userID, err := ownerID(c)
	if err != nil {
		return err
	}

	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var item models.StockItem
	if err := db.First(&item, "id = ? AND user_id = ?", c.Params("id"), userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "stock item not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(item)
}

// PUT /api/stock/:id
func UpdateStockItem(c *fiber.Ctx) error {
	userID, err := ownerID(c)
	if err != nil {
		return err
	}

	var in StockItemUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var existing models.StockItem
	if err := db.First(&existing, "id = ? AND user_id = ?", c.Params("id"), userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "stock item not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	if in.Sku != nil && (existing.Sku == nil || *in.Sku != *existing.Sku) {
		var count int64
		db.Model(&models.StockItem{}).
			Where("user_id = ? AND sku = ? AND id <> ?", userID, *in.Sku, existing.Id).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "another item with this SKU already exists")
		}
	}

	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if len(updates) > 0 {
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not update stock item")
		}
	}

	var out models.StockItem
	if err := db.First(&out, "id = ?", existing.Id).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reload stock item")
	}
	return c.JSON(out)
}

// PATCH /api/stock/:id/quantity
func AdjustStockQuantity(c *fiber.Ctx) error {
	userID, err := ownerID(c)
	if err != nil {
		return err
	}

	var in QuantityAdjustDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	op, ok := ledger.ParseOperation(in.Operation)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "operation must be set, add, or subtract")
	}

	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	svc := ledger.NewService(database.NewOwnerStore(db))
	result, err := svc.AdjustStockQuantity(c.UserContext(), userID, c.Params("id"), in.Quantity, op)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// DELETE /api/stock/:id
func DeleteStockItem(c *fiber.Ctx) error {
	userID, err := ownerID(c)
	if err != nil {
		return err
	}

	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	res := db.Where("id = ? AND user_id = ?", c.Params("id"), userID).Delete(&models.StockItem{})
	if res.Error != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "stock item not found")
	}
	return c.JSON(fiber.Map{"message": "stock item deleted"})
}
