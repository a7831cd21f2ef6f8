package controllers

import (
	"net/mail"
	"strings"
	"time"

	"github.com/i4rcu/magazam-inventory-system/database"
	"github.com/i4rcu/magazam-inventory-system/middlewares"
	"github.com/i4rcu/magazam-inventory-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func Register(c *fiber.Ctx) error {
	var data map[string]string
	if err := c.BodyParser(&data); err != nil {
		return err
	}

	if strings.TrimSpace(data["full_name"]) == "" {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{"message": "full name is required"})
	}
	if _, err := mail.ParseAddress(data["email"]); err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{"message": "invalid email format"})
	}
	if len(data["password"]) < 6 {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{"message": "password must be at least 6 characters"})
	}
	if data["password"] != data["password_confirm"] {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{"message": "passwords do not match"})
	}

	var mailExist models.User
	database.DB.Where("email = ?", strings.ToLower(data["email"])).First(&mailExist)
	if mailExist.Email != "" {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{"message": "email already exists"})
	}

	user := models.User{
		FullName: strings.TrimSpace(data["full_name"]),
		Email:    strings.ToLower(strings.TrimSpace(data["email"])),
	}
	user.SetPassword(data["password"])
	if err := database.DB.Create(&user).Error; err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "could not create user",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

func Login(c *fiber.Ctx) error {
	var data map[string]string
	if err := c.BodyParser(&data); err != nil {
		return err
	}

	if _, err := mail.ParseAddress(data["email"]); err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{"message": "invalid email format"})
	}

	var user models.User
	database.DB.Where("email = ?", strings.ToLower(data["email"])).First(&user)

	if _, err := uuid.Parse(user.Id); err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{"message": "invalid credentials"})
	}
	if err := user.ComparePassword(data["password"]); err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{"message": "invalid credentials"})
	}

	token, err := middlewares.GenerateJWT(user.Id)
	if err != nil {
		c.Status(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{"message": "could not issue token"})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":    user.Id,
			"name":  user.FullName,
			"email": user.Email,
		},
	})
}

func Logout(c *fiber.Ctx) error {
	cookie := fiber.Cookie{
		Name:     "jwt",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	}
	c.Cookie(&cookie)
	return c.JSON(fiber.Map{
		"message": "success",
	})
}
