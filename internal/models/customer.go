package models

import "time"

// Customer: Veresiye müşterisi (cari hesap). Bakiye alanı YOK; bakiye her
// zaman işlem geçmişinin tamamı üzerinden türetilir.
type Customer struct {
	ID        uint `gorm:"primaryKey"`
	StationID uint `gorm:"index;not null"`
	Station   Station
	Name      string `gorm:"size:100;not null"`
	Phone     string `gorm:"size:50"`
	TaxNumber string `gorm:"size:20"` // e-fatura kesilecekse
	Address   string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Transactions []CustomerTransaction `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
}

type CustomerTransactionType string

const (
	TransactionTypeDebt    CustomerTransactionType = "debt"    // Borç (veresiye satış)
	TransactionTypePayment CustomerTransactionType = "payment" // Ödeme (tahsilat)
)

// CustomerTransaction: Cari hesaba yazılan borç veya ödeme.
type CustomerTransaction struct {
	ID          uint `gorm:"primaryKey"`
	StationID   uint `gorm:"index;not null"`
	Station     Station
	CustomerID  uint `gorm:"index;not null"`
	Customer    Customer
	Type        CustomerTransactionType `gorm:"size:20;not null;index"` // "debt" / "payment"
	Amount      float64                 `gorm:"not null"`
	Description string                  `gorm:"size:500"`
	Date        time.Time               `gorm:"index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
