package fuel

import (
	"fmt"
	"time"

	"istasyon-backend/internal/audit"
	"istasyon-backend/internal/database"
	"istasyon-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateSaleRequest struct {
	FuelType      models.FuelType `json:"fuel_type"`
	Liters        float64         `json:"liters"`
	PricePerLiter float64         `json:"price_per_liter"`
	TotalAmount   *float64        `json:"total_amount"` // boşsa litre × fiyat
	SaleTime      string          `json:"sale_time"`    // "2025-12-09 14:30", boşsa şimdi
	StationID     *uint           `json:"station_id"`   // super_admin için
}

type SaleResponse struct {
	ID            uint            `json:"id"`
	StationID     uint            `json:"station_id"`
	FuelType      models.FuelType `json:"fuel_type"`
	Liters        float64         `json:"liters"`
	PricePerLiter float64         `json:"price_per_liter"`
	TotalAmount   float64         `json:"total_amount"`
	SaleTime      string          `json:"sale_time"`
}

func toSaleResponse(s models.FuelSale) SaleResponse {
	return SaleResponse{
		ID:            s.ID,
		StationID:     s.StationID,
		FuelType:      s.FuelType,
		Liters:        s.Liters,
		PricePerLiter: s.PricePerLiter,
		TotalAmount:   s.TotalAmount,
		SaleTime:      s.SaleTime.Format("2006-01-02 15:04"),
	}
}

// -------------------------------------------------
// POST /api/fuel-sales
// -------------------------------------------------
func CreateSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSaleRequest
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

		var saleTime time.Time
		if body.SaleTime == "" {
			saleTime = time.Now()
		} else {
			saleTime, err = time.Parse("2006-01-02 15:04", body.SaleTime)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "sale_time formatı 'YYYY-MM-DD HH:MM' olmalı")
			}
		}

		total := body.Liters * body.PricePerLiter
		if body.TotalAmount != nil {
			// Pompa fişindeki tutar yuvarlamadan dolayı litre × fiyattan
			// sapabilir, istemcinin gönderdiği değer esas alınır
			total = *body.TotalAmount
		}

		s := models.FuelSale{
			StationID:     stationID,
			FuelType:      body.FuelType,
			Liters:        body.Liters,
			PricePerLiter: body.PricePerLiter,
			TotalAmount:   total,
			SaleTime:      saleTime,
		}

		if err := database.DB.Create(&s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satış kaydedilemedi")
		}

		// Defter değişti, stok önbelleğini aynı istek içinde tazele
		if err := RecalculateStock(stationID); err != nil {
			fmt.Printf("Stok yeniden hesaplanamadı: %v\n", err)
		}

		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				StationID:   &s.StationID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "fuel_sale",
				EntityID:    s.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Yakıt satışı: %s - %.2f L", s.FuelType, s.Liters),
				Before:      nil,
				After:       s, // undo model üzerinden çalışır, DTO değil
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toSaleResponse(s))
	}
}

// -------------------------------------------------
// GET /api/fuel-sales?from=&to=&fuel_type=
// -------------------------------------------------
func ListSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		stationID, err := resolveStationIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.FuelSale{}).Where("station_id = ?", stationID)

		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from tarihi geçersiz")
			}
			dbq = dbq.Where("sale_time >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to tarihi geçersiz")
			}
			dbq = dbq.Where("sale_time < ?", to.AddDate(0, 0, 1))
		}
		if ft := c.Query("fuel_type"); ft != "" {
			dbq = dbq.Where("fuel_type = ?", ft)
		}

		var sales []models.FuelSale
		if err := dbq.Order("sale_time asc, id asc").Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satışlar listelenemedi")
		}

		resp := make([]SaleResponse, 0, len(sales))
		for _, s := range sales {
			resp = append(resp, toSaleResponse(s))
		}

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// DELETE /api/fuel-sales/:id
// -------------------------------------------------
func DeleteSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var s models.FuelSale
		if err := database.DB.First(&s, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Satış kaydı bulunamadı")
		}

		stationID, err := resolveStationIDFromQueryOrRole(c)
		if err != nil {
			return err
		}
		if s.StationID != stationID {
			return fiber.NewError(fiber.StatusForbidden, "Bu kayıt başka bir istasyona ait")
		}

		if err := database.DB.Delete(&models.FuelSale{}, "id = ?", s.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satış silinemedi")
		}

		if err := RecalculateStock(stationID); err != nil {
			fmt.Printf("Stok yeniden hesaplanamadı: %v\n", err)
		}

		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				StationID:   &s.StationID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "fuel_sale",
				EntityID:    s.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Yakıt satışı silindi: %s - %.2f L", s.FuelType, s.Liters),
				Before:      s,
				After:       s, // undo için tam kayıt
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
