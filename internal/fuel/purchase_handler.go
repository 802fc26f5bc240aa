package fuel

import (
	"fmt"
	"time"

	"istasyon-backend/internal/audit"
	"istasyon-backend/internal/auth"
	"istasyon-backend/internal/database"
	"istasyon-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreatePurchaseRequest struct {
	FuelType      models.FuelType `json:"fuel_type"`
	Liters        float64         `json:"liters"`
	PricePerLiter float64         `json:"price_per_liter"`
	Date          string          `json:"date"` // "2025-12-09"
	Supplier      string          `json:"supplier"`
	StationID     *uint           `json:"station_id"` // super_admin için
}

type PurchaseResponse struct {
	ID            uint            `json:"id"`
	StationID     uint            `json:"station_id"`
	FuelType      models.FuelType `json:"fuel_type"`
	Liters        float64         `json:"liters"`
	PricePerLiter float64         `json:"price_per_liter"`
	TotalAmount   float64         `json:"total_amount"`
	Date          string          `json:"date"`
	Supplier      string          `json:"supplier"`
	CreatedAt     string          `json:"created_at"`
}

// Yardımcı: Kullanıcı bilgilerini al
func getUserInfo(c *fiber.Ctx) (uint, string, *uint, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", nil, fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", nil, fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı bulunamadı")
	}

	var stationID *uint
	sVal := c.Locals(auth.CtxStationIDKey)
	if sPtr, ok := sVal.(*uint); ok && sPtr != nil {
		stationID = sPtr
	}

	return userID, user.Name, stationID, nil
}

// body'den gelen station_id + role
func resolveStationIDFromBodyOrRole(c *fiber.Ctx, bodyStationID *uint) (uint, error) {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
	}

	if role == models.RoleStationAdmin {
		sVal := c.Locals(auth.CtxStationIDKey)
		sPtr, ok := sVal.(*uint)
		if !ok || sPtr == nil {
			return 0, fiber.NewError(fiber.StatusForbidden, "İstasyon bilgisi bulunamadı")
		}
		return *sPtr, nil
	}

	// super_admin
	if bodyStationID == nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "station_id zorunlu")
	}
	return *bodyStationID, nil
}

// query'den gelen station_id + role
func resolveStationIDFromQueryOrRole(c *fiber.Ctx) (uint, error) {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
	}

	if role == models.RoleStationAdmin {
		sVal := c.Locals(auth.CtxStationIDKey)
		sPtr, ok := sVal.(*uint)
		if !ok || sPtr == nil {
			return 0, fiber.NewError(fiber.StatusForbidden, "İstasyon bilgisi bulunamadı")
		}
		return *sPtr, nil
	}

	// super_admin
	sidStr := c.Query("station_id")
	if sidStr == "" {
		return 0, fiber.NewError(fiber.StatusBadRequest, "station_id zorunlu")
	}
	var sid uint
	if _, err := fmt.Sscan(sidStr, &sid); err != nil || sid == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "station_id geçersiz")
	}
	return sid, nil
}

func toPurchaseResponse(p models.FuelPurchase) PurchaseResponse {
	return PurchaseResponse{
		ID:            p.ID,
		StationID:     p.StationID,
		FuelType:      p.FuelType,
		Liters:        p.Liters,
		PricePerLiter: p.PricePerLiter,
		TotalAmount:   p.TotalAmount,
		Date:          p.PurchaseDate.Format("2006-01-02"),
		Supplier:      p.Supplier,
		CreatedAt:     p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// -------------------------------------------------
// POST /api/fuel-purchases
// -------------------------------------------------
func CreatePurchaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePurchaseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if !body.FuelType.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz fuel_type (benzin|motorin|motorin_extra|lpg)")
		}
		if body.Liters <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "liters 0'dan büyük olmalı")
		}
		if body.PricePerLiter <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "price_per_liter 0'dan büyük olmalı")
		}

		stationID, err := resolveStationIDFromBodyOrRole(c, body.StationID)
		if err != nil {
			return err
		}

		d, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		p := models.FuelPurchase{
			StationID:     stationID,
			FuelType:      body.FuelType,
			Liters:        body.Liters,
			PricePerLiter: body.PricePerLiter,
			// Toplam tutar burada bir kez hesaplanır, sonradan türetilmez
			TotalAmount:  body.Liters * body.PricePerLiter,
			PurchaseDate: d,
			Supplier:     body.Supplier,
		}

		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Alım kaydedilemedi")
		}

		// Defter değişti, stok önbelleğini aynı istek içinde tazele
		if err := RecalculateStock(stationID); err != nil {
			fmt.Printf("Stok yeniden hesaplanamadı: %v\n", err)
		}

		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				StationID:   &p.StationID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "fuel_purchase",
				EntityID:    p.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Yakıt alımı: %s - %.2f L", p.FuelType, p.Liters),
				Before:      nil,
				After:       p, // undo model üzerinden çalışır, DTO değil
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toPurchaseResponse(p))
	}
}

// -------------------------------------------------
// GET /api/fuel-purchases?from=&to=&fuel_type=
// -------------------------------------------------
func ListPurchasesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		stationID, err := resolveStationIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.FuelPurchase{}).Where("station_id = ?", stationID)

		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from tarihi geçersiz")
			}
			dbq = dbq.Where("purchase_date >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to tarihi geçersiz")
			}
			dbq = dbq.Where("purchase_date <= ?", to)
		}
		if ft := c.Query("fuel_type"); ft != "" {
			dbq = dbq.Where("fuel_type = ?", ft)
		}

		var purchases []models.FuelPurchase
		if err := dbq.Order("purchase_date asc, id asc").Find(&purchases).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Alımlar listelenemedi")
		}

		resp := make([]PurchaseResponse, 0, len(purchases))
		for _, p := range purchases {
			resp = append(resp, toPurchaseResponse(p))
		}

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// DELETE /api/fuel-purchases/:id
// Silme de defteri değiştirir, aynı yeniden hesaplama tetiklenir
// -------------------------------------------------
func DeletePurchaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.FuelPurchase
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Alım kaydı bulunamadı")
		}

		stationID, err := resolveStationIDFromQueryOrRole(c)
		if err != nil {
			return err
		}
		if p.StationID != stationID {
			return fiber.NewError(fiber.StatusForbidden, "Bu kayıt başka bir istasyona ait")
		}

		if err := database.DB.Delete(&models.FuelPurchase{}, "id = ?", p.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Alım silinemedi")
		}

		if err := RecalculateStock(stationID); err != nil {
			fmt.Printf("Stok yeniden hesaplanamadı: %v\n", err)
		}

		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				StationID:   &p.StationID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "fuel_purchase",
				EntityID:    p.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Yakıt alımı silindi: %s - %.2f L", p.FuelType, p.Liters),
				Before:      p,
				After:       p, // undo için tam kayıt
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
