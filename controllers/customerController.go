package controllers

import (
	"errors"
	"strings"

	"github.com/i4rcu/magazam-inventory-system/database"
	"github.com/i4rcu/magazam-inventory-system/middlewares"
	"github.com/i4rcu/magazam-inventory-system/models"
	"github.com/i4rcu/magazam-inventory-system/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ownerID returns the authenticated user's id stashed by the auth middleware.
func ownerID(c *fiber.Ctx) (string, error) {
	id, _ := c.Locals("userID").(string)
	if strings.TrimSpace(id) == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "auth context missing")
	}
	return id, nil
}

type CustomerCreateDTO struct {
	FullName    string   `json:"full_name" validate:"required,min=1"`
	PhoneNumber string   `json:"phone_number" validate:"required,min=1"`
	Balance     *float64 `json:"balance" validate:"omitempty"`
}

type CustomerUpdateDTO struct {
	FullName    *string  `json:"full_name" validate:"omitempty,min=1"`
	PhoneNumber *string  `json:"phone_number" validate:"omitempty,min=1"`
	Balance     *float64 `json:"balance" validate:"omitempty"`
}

// POST /api/customer
func CreateCustomer(c *fiber.Ctx) error {
	userID, err := ownerID(c)
	if err != nil {
		return err
	}

	var in CustomerCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var count int64
	db.Model(&models.Customer{}).
		Where("user_id = ? AND phone_number = ?", userID, in.PhoneNumber).
		Count(&count)
	if count > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "customer with this phone number already exists")
	}

	customer := models.Customer{
		UserId:      userID,
		FullName:    in.FullName,
		PhoneNumber: in.PhoneNumber,
	}
	if in.Balance != nil {
		customer.Balance = *in.Balance
	}

	if err := db.Create(&customer).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create customer")
	}
	return c.Status(fiber.StatusCreated).JSON(customer)
}

// GET /api/customers
func GetCustomers(c *fiber.Ctx) error {
	userID, err := ownerID(c)
	if err != nil {
		return err
	}

	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var customers []models.Customer
	if err := db.Where("user_id = ?", userID).Order("created_at ASC").Find(&customers).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(fiber.Map{"customers": customers})
}

// GET /api/customer/:id
func GetCustomer(c *fiber.Ctx) error {
	userID, err := ownerID(c)
	if err != nil {
		return err
	}

	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var customer models.Customer
	if err := db.First(&customer, "id = ? AND user_id = ?", c.Params("id"), userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(customer)
}

// PUT /api/customer/:id
func UpdateCustomer(c *fiber.Ctx) error {
	userID, err := ownerID(c)
	if err != nil {
		return err
	}

	var in CustomerUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var existing models.Customer
	if err := db.First(&existing, "id = ? AND user_id = ?", c.Params("id"), userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	if in.PhoneNumber != nil && *in.PhoneNumber != existing.PhoneNumber {
		var count int64
		db.Model(&models.Customer{}).
			Where("user_id = ? AND phone_number = ? AND id <> ?", userID, *in.PhoneNumber, existing.Id).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "another customer with this phone number already exists")
		}
	}

	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if len(updates) > 0 {
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not update customer")
		}
	}

	var out models.Customer
	if err := db.First(&out, "id = ?", existing.Id).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reload customer")
	}
	return c.JSON(out)
}

// DELETE /api/customer/:id
func DeleteCustomer(c *fiber.Ctx) error {
	userID, err := ownerID(c)
	if err != nil {
		return err
	}

	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	res := db.Where("id = ? AND user_id = ?", c.Params("id"), userID).Delete(&models.Customer{})
	if res.Error != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "customer not found")
	}
	return c.JSON(fiber.Map{"message": "customer deleted"})
}
