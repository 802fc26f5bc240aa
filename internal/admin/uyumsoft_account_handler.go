package admin

import (
	"strings"

	"istasyon-backend/internal/database"
	"istasyon-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type UyumsoftAccountRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	TestMode *bool  `json:"test_mode"`
}

type UyumsoftAccountResponse struct {
	ID        uint   `json:"id"`
	StationID uint   `json:"station_id"`
	Username  string `json:"username"`
	TestMode  bool   `json:"test_mode"`
	UpdatedAt string `json:"updated_at"`
}

// ----------------------------------------
// UYUMSOFT HESAP TANIMI (yalnızca super_admin)
// İstasyon başına tek hesap; varsa üzerine yazılır
// ----------------------------------------

// PUT /api/admin/stations/:id/uyumsoft-account
func UpsertUyumsoftAccountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		stationID := c.Params("id")

		var station models.Station
		if err := database.DB.First(&station, "id = ?", stationID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "İstasyon bulunamadı")
		}

		var body UyumsoftAccountRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Username = strings.TrimSpace(body.Username)
		if body.Username == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Kullanıcı adı ve şifre zorunlu")
		}

		var acc models.UyumsoftAccount
		err := database.DB.Where("station_id = ?", station.ID).First(&acc).Error
		if err != nil {
			acc = models.UyumsoftAccount{StationID: station.ID}
		}

		acc.Username = body.Username
		acc.Password = body.Password
		if body.TestMode != nil {
			acc.TestMode = *body.TestMode
		}

		if err := database.DB.Save(&acc).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Uyumsoft hesabı kaydedilemedi")
		}

		// Şifre yanıtta dönmez
		return c.JSON(UyumsoftAccountResponse{
			ID:        acc.ID,
			StationID: acc.StationID,
			Username:  acc.Username,
			TestMode:  acc.TestMode,
			UpdatedAt: acc.UpdatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// GET /api/admin/stations/:id/uyumsoft-account
func GetUyumsoftAccountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		stationID := c.Params("id")

		var acc models.UyumsoftAccount
		if err := database.DB.Where("station_id = ?", stationID).First(&acc).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Uyumsoft hesabı tanımlı değil")
		}

		return c.JSON(UyumsoftAccountResponse{
			ID:        acc.ID,
			StationID: acc.StationID,
			Username:  acc.Username,
			TestMode:  acc.TestMode,
			UpdatedAt: acc.UpdatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}
