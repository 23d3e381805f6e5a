package auth

import (
	"strings"

	"firin-backend/internal/config"
	"firin-backend/internal/database"
	"firin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterCustomerRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func RegisterAdminHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterAdminRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		if body.Email == "" || body.Password == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim, email ve şifre zorunlu")
		}

		// İlk admin kurulumdan sonra kapalı
		var count int64
		database.DB.Model(&models.User{}).
			Where("role = ?", models.RoleAdmin).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "Zaten bir admin var")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		})
	}
}

// POST /api/auth/register
// Müşteri kaydı: user + customer + boş cüzdan birlikte oluşturulur.
func RegisterCustomerHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterCustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		body.Phone = strings.TrimSpace(body.Phone)

		if body.Email == "" || body.Password == "" || body.Name == "" || body.Phone == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim, telefon, email ve şifre zorunlu")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
		}

		var user models.User
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			customer := models.Customer{
				Name:  body.Name,
				Phone: body.Phone,
				Email: body.Email,
			}
			if err := tx.Create(&customer).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.Wallet{CustomerID: customer.ID}).Error; err != nil {
				return err
			}
			user = models.User{
				CustomerID:   &customer.ID,
				Name:         body.Name,
				Email:        body.Email,
				PasswordHash: string(hash),
				Role:         models.RoleCustomer,
			}
			return tx.Create(&user).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Kayıt oluşturulamadı (email veya telefon kullanımda olabilir)")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":          user.ID,
			"customer_id": user.CustomerID,
			"email":       user.Email,
			"role":        user.Role,
		})
	}
}

func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		var user models.User
		if err := database.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Email veya şifre hatalı")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Email veya şifre hatalı")
		}

		token, err := GenerateToken(cfg.JWTSecret, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Token oluşturulamadı")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":          user.ID,
				"name":        user.Name,
				"email":       user.Email,
				"role":        user.Role,
				"customer_id": user.CustomerID,
			},
		})
	}
}

func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userIDVal := c.Locals(CtxUserIDKey)

		var user models.User
		if userID, ok := userIDVal.(uint); ok {
			if err := database.DB.First(&user, userID).Error; err == nil {
				response := fiber.Map{
					"user_id":     user.ID,
					"name":        user.Name,
					"email":       user.Email,
					"role":        user.Role,
					"customer_id": user.CustomerID,
				}

				if user.CustomerID != nil {
					var customer models.Customer
					if err := database.DB.First(&customer, *user.CustomerID).Error; err == nil {
						response["customer"] = fiber.Map{
							"id":    customer.ID,
							"name":  customer.Name,
							"phone": customer.Phone,
						}
					}
				}

				return c.JSON(response)
			}
		}

		return c.JSON(fiber.Map{
			"user_id": userIDVal,
			"role":    c.Locals(CtxUserRoleKey),
		})
	}
}
