package catalog

import (
	"firin-backend/internal/auth"
	"firin-backend/internal/database"
	"firin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Yardımcı: audit log için kullanıcı bilgilerini al
func getUserInfo(c *fiber.Ctx) (uint, string, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı bulunamadı")
	}

	return userID, user.Name, nil
}
