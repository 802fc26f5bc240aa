package customer

import (
	"testing"
	"time"

	"istasyon-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImportRowsBasic(t *testing.T) {
	rows := [][]string{
		{"MÜŞTERİ ADI", "TUTAR", "TARİH"},
		{"Ahmet Yılmaz", "1.234,56", "2025-12-09"},
		{"Mehmet Kaya", "500", "09.12.2025"},
	}

	result := ParseImportRows(rows)

	require.Len(t, result.Rows, 2)
	assert.Equal(t, 0, result.SkippedCount)

	assert.Equal(t, "Ahmet Yılmaz", result.Rows[0].CustomerName)
	assert.Equal(t, 1234.56, result.Rows[0].Amount)
	assert.Equal(t, models.TransactionTypeDebt, result.Rows[0].Type)
	assert.Equal(t, time.Date(2025, 12, 9, 0, 0, 0, 0, time.UTC), result.Rows[0].Date)

	assert.Equal(t, "Mehmet Kaya", result.Rows[1].CustomerName)
	assert.Equal(t, 500.0, result.Rows[1].Amount)
	assert.Equal(t, time.Date(2025, 12, 9, 0, 0, 0, 0, time.UTC), result.Rows[1].Date)
}

func TestParseImportRowsPaymentColumn(t *testing.T) {
	rows := [][]string{
		{"Ahmet Yılmaz", "100,00", "2025-12-09", "borç"},
		{"Ahmet Yılmaz", "40,00", "2025-12-10", "ödeme"},
		{"Mehmet Kaya", "75,50", "2025-12-10", "payment"},
	}

	result := ParseImportRows(rows)

	require.Len(t, result.Rows, 3)
	assert.Equal(t, models.TransactionTypeDebt, result.Rows[0].Type)
	assert.Equal(t, models.TransactionTypePayment, result.Rows[1].Type)
	assert.Equal(t, models.TransactionTypePayment, result.Rows[2].Type)
}

func TestParseImportRowsMalformedRowsSkippedNotFatal(t *testing.T) {
	rows := [][]string{
		{"MÜŞTERİ", "TUTAR", "TARİH"},
		{"Ahmet Yılmaz", "100,00", "2025-12-09"},
		{"", "50,00", "2025-12-09"},           // isim yok
		{"Mehmet Kaya", "abc", "2025-12-09"},  // tutar bozuk
		{"Ali Demir", "-25,00", "2025-12-09"}, // negatif tutar
		{"Veli Can", "80,00", "dün"},          // tarih bozuk
		{"Ayşe Öz", "60,00"},                  // tarih yok: bugüne yazılır
	}

	result := ParseImportRows(rows)

	require.Len(t, result.Rows, 2)
	assert.Equal(t, 4, result.SkippedCount)
	assert.Equal(t, []int{3, 4, 5, 6}, result.SkippedRows)

	assert.Equal(t, "Ahmet Yılmaz", result.Rows[0].CustomerName)
	assert.Equal(t, "Ayşe Öz", result.Rows[1].CustomerName)
}

func TestParseImportRowsEmptyRowsIgnored(t *testing.T) {
	rows := [][]string{
		{"Ahmet Yılmaz", "100,00", "2025-12-09"},
		{},
		{"", "", ""},
		{"Mehmet Kaya", "200,00", "2025-12-09"},
	}

	result := ParseImportRows(rows)

	require.Len(t, result.Rows, 2)
	assert.Equal(t, 0, result.SkippedCount)
}

func TestParseImportRowsNoHeader(t *testing.T) {
	// İlk satır başlığa benzemiyorsa veri olarak işlenir
	rows := [][]string{
		{"Zeynep Acar", "300,00", "2025-12-09"},
	}

	result := ParseImportRows(rows)

	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Zeynep Acar", result.Rows[0].CustomerName)
}
