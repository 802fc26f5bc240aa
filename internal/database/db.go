package database

import (
	"log"

	"istasyon-backend/internal/config"
	"istasyon-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	err = DB.AutoMigrate(
		&models.Station{},
		&models.User{},
		&models.Shift{},
		&models.FuelPurchase{},
		&models.FuelSale{},
		&models.FuelStock{},
		&models.Customer{},
		&models.CustomerTransaction{},
		&models.Invoice{},
		&models.UyumsoftAccount{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	// Her istasyon için dört yakıt türünün stok satırı baştan var olsun,
	// yeniden hesaplama satır yaratmakla uğraşmasın
	seedFuelStockRows()

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// seedFuelStockRows: Eksik (istasyon, yakıt türü) stok satırlarını 0 ile açar.
func seedFuelStockRows() {
	var stations []models.Station
	if err := DB.Find(&stations).Error; err != nil {
		log.Printf("Stok satırları kontrol edilemedi: %v", err)
		return
	}

	for _, st := range stations {
		for _, ft := range models.AllFuelTypes {
			var count int64
			DB.Model(&models.FuelStock{}).
				Where("station_id = ? AND fuel_type = ?", st.ID, ft).
				Count(&count)
			if count == 0 {
				row := models.FuelStock{StationID: st.ID, FuelType: ft, CurrentStock: 0}
				if err := DB.Create(&row).Error; err != nil {
					log.Printf("Stok satırı açılamadı (istasyon %d, %s): %v", st.ID, ft, err)
				}
			}
		}
	}
}
