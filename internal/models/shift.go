package models

import "time"

type ShiftNo string

const (
	ShiftNoDay   ShiftNo = "1" // gündüz vardiyası
	ShiftNoNight ShiftNo = "2" // gece vardiyası
)

// Shift: Bir personelin bir vardiya kapanışı. Tüm tutarlar kapanış anında
// topluca girilir, alan alan biriktirilmez. OverShort her create/update'te
// sunucu tarafında baştan hesaplanır, istemciden asla alınmaz.
type Shift struct {
	ID            uint `gorm:"primaryKey"`
	StationID     uint `gorm:"index;not null"`
	Station       Station
	PersonnelName string    `gorm:"size:100;not null"`
	ShiftNo       ShiftNo   `gorm:"size:5;not null"` // "1" / "2"
	StartTime     time.Time `gorm:"index;not null"`
	EndTime       time.Time `gorm:"not null"`

	CashSales       float64 `gorm:"not null"` // nakit satış
	CardSales       float64 `gorm:"not null"` // kredi kartı satış
	Veresiye        float64 `gorm:"not null"` // veresiye (cari hesaba yazılan)
	BankTransfers   float64 `gorm:"not null"` // havale/EFT
	LoyaltyCard     float64 `gorm:"not null"` // sadakat kartı tahsilatı
	AutomationTotal float64 `gorm:"not null"` // otomasyon satış (pompa sisteminin beklediği toplam)
	OverShort       float64 `gorm:"not null"` // fazla(+) / açık(-), türetilmiş

	CreatedAt time.Time
	UpdatedAt time.Time
}
