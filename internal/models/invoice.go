package models

import "time"

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"       // taslak, henüz gönderilmedi
	InvoiceStatusSent      InvoiceStatus = "sent"        // Uyumsoft'a gönderildi
	InvoiceStatusSentToGIB InvoiceStatus = "sent_to_gib" // GİB'e iletildi
	InvoiceStatusError     InvoiceStatus = "error"       // gönderim hatası
)

// Invoice: E-fatura kaydı. Gönderim sonucu Uyumsoft'un döndürdüğü belge
// numarası UyumsoftID alanında saklanır.
type Invoice struct {
	ID            uint `gorm:"primaryKey"`
	StationID     uint `gorm:"index;not null"`
	Station       Station
	CustomerID    *uint // Opsiyonel: veresiye müşterisine kesilen fatura
	Customer      *Customer
	InvoiceNumber string        `gorm:"size:50;not null;index"`
	TotalAmount   float64       `gorm:"not null"`
	IssueDate     time.Time     `gorm:"index;not null"`
	Status        InvoiceStatus `gorm:"size:20;not null;default:draft"`
	UyumsoftID    string        `gorm:"size:100"` // Uyumsoft belge kimliği
	ErrorMessage  string        `gorm:"size:500"` // son gönderim hatası
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UyumsoftAccount: İstasyonun Uyumsoft e-fatura hesap bilgileri.
type UyumsoftAccount struct {
	ID        uint `gorm:"primaryKey"`
	StationID uint `gorm:"uniqueIndex;not null"`
	Station   Station
	Username  string `gorm:"size:100;not null"`
	Password  string `gorm:"size:255;not null"`
	TestMode  bool   `gorm:"default:true"` // test ortamı mı
	CreatedAt time.Time
	UpdatedAt time.Time
}
