package models

import "time"

// FuelType: İstasyonun sattığı dört sabit yakıt türü.
type FuelType string

const (
	FuelTypeBenzin       FuelType = "benzin"        // Kurşunsuz 95
	FuelTypeMotorin      FuelType = "motorin"       // Motorin
	FuelTypeMotorinExtra FuelType = "motorin_extra" // Katkılı motorin
	FuelTypeLPG          FuelType = "lpg"           // LPG
)

// AllFuelTypes: Stok yeniden hesaplamasında taranan tam liste.
var AllFuelTypes = []FuelType{
	FuelTypeBenzin,
	FuelTypeMotorin,
	FuelTypeMotorinExtra,
	FuelTypeLPG,
}

func (f FuelType) Valid() bool {
	switch f {
	case FuelTypeBenzin, FuelTypeMotorin, FuelTypeMotorinExtra, FuelTypeLPG:
		return true
	}
	return false
}

// FuelPurchase: Tedarikçiden yakıt alımı. TotalAmount oluşturma anında
// litre × birim fiyat olarak bir kez hesaplanır, sonradan türetilmez.
type FuelPurchase struct {
	ID            uint `gorm:"primaryKey"`
	StationID     uint `gorm:"index;not null"`
	Station       Station
	FuelType      FuelType  `gorm:"size:20;not null;index"`
	Liters        float64   `gorm:"not null"`
	PricePerLiter float64   `gorm:"not null"`
	TotalAmount   float64   `gorm:"not null"` // = Liters * PricePerLiter
	PurchaseDate  time.Time `gorm:"index;not null"`
	Supplier      string    `gorm:"size:100"` // Opsiyonel tedarikçi adı
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FuelSale: Pompa satışı.
type FuelSale struct {
	ID            uint `gorm:"primaryKey"`
	StationID     uint `gorm:"index;not null"`
	Station       Station
	FuelType      FuelType  `gorm:"size:20;not null;index"`
	Liters        float64   `gorm:"not null"`
	PricePerLiter float64   `gorm:"not null"`
	TotalAmount   float64   `gorm:"not null"`
	SaleTime      time.Time `gorm:"index;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FuelStock: Yakıt türü başına önbelleklenmiş güncel stok (litre).
// "Yeniden hesapla" işlemi tüm alım/satış geçmişini tarar ve bu satırı
// komple değiştirir. Negatif olabilir (fazla satış), asla kırpılmaz.
type FuelStock struct {
	ID           uint `gorm:"primaryKey"`
	StationID    uint `gorm:"uniqueIndex:idx_fuel_stocks_station_type;not null"`
	Station      Station
	FuelType     FuelType `gorm:"size:20;uniqueIndex:idx_fuel_stocks_station_type;not null"`
	CurrentStock float64  `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
