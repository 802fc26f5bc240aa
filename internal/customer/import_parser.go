package customer

import (
	"strings"
	"time"

	"istasyon-backend/internal/ledger"
	"istasyon-backend/internal/models"
)

// ImportedRow: XLSX dosyasından çözülmüş tek bir veresiye satırı.
type ImportedRow struct {
	CustomerName string
	Amount       float64
	Type         models.CustomerTransactionType
	Date         time.Time
}

// ImportResult: Ayrıştırma özeti. Bozuk satırlar işlemi durdurmaz,
// sayılır ve atlanır.
type ImportResult struct {
	Rows         []ImportedRow
	SkippedCount int
	SkippedRows  []int // 1 tabanlı satır numaraları (Excel'deki gibi)
}

// Başlık satırı algılama: ilk hücrede "MÜŞTERİ", "AD", "CUSTOMER" veya
// "NAME" geçiyorsa başlıktır
func isHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	firstCell := strings.ToUpper(strings.TrimSpace(row[0]))
	return strings.Contains(firstCell, "MÜŞTERİ") ||
		strings.Contains(firstCell, "CUSTOMER") ||
		strings.Contains(firstCell, "NAME") ||
		firstCell == "AD" || firstCell == "ADI" || firstCell == "AD SOYAD"
}

func parseImportDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	// Excel'den hem ISO hem Türkçe tarih formatı gelebiliyor
	for _, layout := range []string{"2006-01-02", "02.01.2006", "2.1.2006", "01/02/06"} {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, &time.ParseError{Layout: "2006-01-02", Value: s}
}

// ParseImportRows: GetRows çıktısını veresiye hareketlerine çevirir.
// Beklenen kolonlar: [müşteri adı, tutar, tarih(opsiyonel), tür(opsiyonel)].
// Tutar Türkçe biçimde gelebilir ("1.234,56"). Tür kolonu boşsa veya
// tanınmazsa satır borç kabul edilir; "odeme"/"ödeme"/"payment" ödeme sayılır.
func ParseImportRows(rows [][]string) ImportResult {
	result := ImportResult{Rows: make([]ImportedRow, 0, len(rows))}

	startIndex := 0
	if len(rows) > 0 && isHeaderRow(rows[0]) {
		startIndex = 1
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for i := startIndex; i < len(rows); i++ {
		row := rows[i]
		rowNo := i + 1 // Excel satır numarası

		// Tamamen boş satırlar hata sayılmaz
		empty := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}

		if len(row) < 2 {
			result.SkippedCount++
			result.SkippedRows = append(result.SkippedRows, rowNo)
			continue
		}

		name := strings.TrimSpace(row[0])
		if name == "" {
			result.SkippedCount++
			result.SkippedRows = append(result.SkippedRows, rowNo)
			continue
		}

		amount, err := ledger.ParseAmount(row[1])
		if err != nil || amount <= 0 {
			result.SkippedCount++
			result.SkippedRows = append(result.SkippedRows, rowNo)
			continue
		}

		date := today
		if len(row) > 2 && strings.TrimSpace(row[2]) != "" {
			d, err := parseImportDate(row[2])
			if err != nil {
				result.SkippedCount++
				result.SkippedRows = append(result.SkippedRows, rowNo)
				continue
			}
			date = d
		}

		txType := models.TransactionTypeDebt
		if len(row) > 3 {
			switch strings.ToLower(strings.TrimSpace(row[3])) {
			case "ödeme", "odeme", "payment", "tahsilat":
				txType = models.TransactionTypePayment
			}
		}

		result.Rows = append(result.Rows, ImportedRow{
			CustomerName: name,
			Amount:       amount,
			Type:         txType,
			Date:         date,
		})
	}

	return result
}
