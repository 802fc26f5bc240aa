package fuel

import (
	"fmt"

	"istasyon-backend/internal/config"
	"istasyon-backend/internal/database"
	"istasyon-backend/internal/ledger"
	"istasyon-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type StockResponse struct {
	FuelType     models.FuelType `json:"fuel_type"`
	CurrentStock float64         `json:"current_stock"`
	Warning      bool            `json:"warning"` // negatif veya eşiğin altı
	LastUpdate   string          `json:"last_update"`
}

// RecalculateStock: Bir istasyonun dört yakıt türü için tam geçmiş taraması.
// Tüm alım ve satış litrelerini defterden okur, ledger.Stock ile toplar ve
// önbellek satırlarını tek transaction içinde KOMPLE değiştirir (merge yok).
// Satır bazında artımlı güncelleme bilinçli olarak yapılmıyor: doğruluk,
// defterden yeniden hesaplamayla garanti ediliyor.
func RecalculateStock(stationID uint) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		for _, ft := range models.AllFuelTypes {
			var purchaseLiters []float64
			if err := tx.Model(&models.FuelPurchase{}).
				Where("station_id = ? AND fuel_type = ?", stationID, ft).
				Pluck("liters", &purchaseLiters).Error; err != nil {
				return fmt.Errorf("alım litreleri okunamadı (%s): %w", ft, err)
			}

			var saleLiters []float64
			if err := tx.Model(&models.FuelSale{}).
				Where("station_id = ? AND fuel_type = ?", stationID, ft).
				Pluck("liters", &saleLiters).Error; err != nil {
				return fmt.Errorf("satış litreleri okunamadı (%s): %w", ft, err)
			}

			current := ledger.Stock(purchaseLiters, saleLiters)

			var row models.FuelStock
			err := tx.Where("station_id = ? AND fuel_type = ?", stationID, ft).First(&row).Error
			if err == gorm.ErrRecordNotFound {
				row = models.FuelStock{StationID: stationID, FuelType: ft, CurrentStock: current}
				if err := tx.Create(&row).Error; err != nil {
					return fmt.Errorf("stok satırı oluşturulamadı (%s): %w", ft, err)
				}
				continue
			}
			if err != nil {
				return fmt.Errorf("stok satırı okunamadı (%s): %w", ft, err)
			}

			row.CurrentStock = current
			if err := tx.Save(&row).Error; err != nil {
				return fmt.Errorf("stok satırı güncellenemedi (%s): %w", ft, err)
			}
		}
		return nil
	})
}

// -------------------------------------------------
// GET /api/fuel-stock
// Önbellekteki stok satırlarını döner; negatif veya eşik altı stok uyarı
// olarak işaretlenir ama değer asla kırpılmaz
// -------------------------------------------------
func GetStockHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stationID, err := resolveStationIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var rows []models.FuelStock
		if err := database.DB.
			Where("station_id = ?", stationID).
			Order("fuel_type asc").
			Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok bilgisi okunamadı")
		}

		resp := make([]StockResponse, 0, len(rows))
		for _, r := range rows {
			resp = append(resp, StockResponse{
				FuelType:     r.FuelType,
				CurrentStock: r.CurrentStock,
				Warning:      r.CurrentStock < cfg.StockWarnLevel,
				LastUpdate:   r.UpdatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// POST /api/fuel-stock/recalculate
// Kullanıcının elle tetiklediği tam yeniden hesaplama
// -------------------------------------------------
func RecalculateStockHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stationID, err := resolveStationIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		if err := RecalculateStock(stationID); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok yeniden hesaplanamadı")
		}

		var rows []models.FuelStock
		if err := database.DB.
			Where("station_id = ?", stationID).
			Order("fuel_type asc").
			Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok bilgisi okunamadı")
		}

		resp := make([]StockResponse, 0, len(rows))
		for _, r := range rows {
			resp = append(resp, StockResponse{
				FuelType:     r.FuelType,
				CurrentStock: r.CurrentStock,
				Warning:      r.CurrentStock < cfg.StockWarnLevel,
				LastUpdate:   r.UpdatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		return c.JSON(fiber.Map{
			"message": "Stok yeniden hesaplandı",
			"stocks":  resp,
		})
	}
}
