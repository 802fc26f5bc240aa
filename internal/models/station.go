package models

import "time"

type Station struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;unique"`
	Address   string `gorm:"size:255"`
	Phone     string `gorm:"size:50"`  // Opsiyonel telefon
	TaxNumber string `gorm:"size:20"`  // Vergi numarası (e-fatura için)
	TaxOffice string `gorm:"size:100"` // Vergi dairesi
	CreatedAt time.Time
	UpdatedAt time.Time

	Users []User
}
