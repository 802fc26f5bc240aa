package customer

import (
	"fmt"
	"strings"

	"istasyon-backend/internal/audit"
	"istasyon-backend/internal/database"
	"istasyon-backend/internal/ledger"
	"istasyon-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ImportResponse struct {
	ImportedCount int    `json:"imported_count"`
	CreatedCount  int    `json:"created_count"` // yeni açılan müşteri kartı sayısı
	SkippedCount  int    `json:"skipped_count"`
	SkippedRows   []int  `json:"skipped_rows"`
	Message       string `json:"message"`
}

// POST /api/customers/import
// XLSX dosyasından toplu veresiye aktarımı. Kolonlar:
// müşteri adı | tutar | tarih (ops.) | tür (ops.)
// Dosyada adı geçen ama kayıtlı olmayan müşteriler otomatik açılır.
func ImportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		stationID, err := resolveStationIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya yüklenemedi: "+err.Error())
		}

		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Sadece .xlsx dosyaları yüklenebilir")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dosya açılamadı: "+err.Error())
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası okunamadı: "+err.Error())
		}
		defer excelFile.Close()

		sheetList := excelFile.GetSheetList()
		if len(sheetList) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyasında sheet bulunamadı")
		}

		rows, err := excelFile.GetRows(sheetList[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Sheet okunamadı: "+err.Error())
		}
		if len(rows) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası boş")
		}

		parsed := ParseImportRows(rows)

		createdCount := 0
		importedCount := 0

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			for _, row := range parsed.Rows {
				var cu models.Customer
				err := tx.Where("station_id = ? AND name = ?", stationID, row.CustomerName).
					First(&cu).Error
				if err == gorm.ErrRecordNotFound {
					cu = models.Customer{StationID: stationID, Name: row.CustomerName}
					if err := tx.Create(&cu).Error; err != nil {
						return fmt.Errorf("müşteri oluşturulamadı (%s): %w", row.CustomerName, err)
					}
					createdCount++
				} else if err != nil {
					return fmt.Errorf("müşteri sorgulanamadı (%s): %w", row.CustomerName, err)
				}

				txRow := models.CustomerTransaction{
					StationID:   stationID,
					CustomerID:  cu.ID,
					Type:        row.Type,
					Amount:      row.Amount,
					Description: "Excel aktarımı: " + fileHeader.Filename,
					Date:        row.Date,
				}
				if err := tx.Create(&txRow).Error; err != nil {
					return fmt.Errorf("hareket kaydedilemedi (%s): %w", row.CustomerName, err)
				}
				importedCount++
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Aktarım başarısız: "+err.Error())
		}

		userID, userName, _, uerr := getUserInfo(c)
		if uerr == nil {
			total := 0.0
			for _, r := range parsed.Rows {
				if r.Type == models.TransactionTypeDebt {
					total += r.Amount
				} else {
					total -= r.Amount
				}
			}
			_ = audit.WriteLog(audit.LogOptions{
				StationID:   &stationID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "customer_transaction",
				EntityID:    0,
				Action:      models.AuditActionImport,
				Description: fmt.Sprintf("Excel aktarımı: %d hareket, net %s TL (%s)", importedCount, ledger.FormatAmount(total), fileHeader.Filename),
				Before:      nil,
				After:       nil,
			})
		}

		return c.JSON(ImportResponse{
			ImportedCount: importedCount,
			CreatedCount:  createdCount,
			SkippedCount:  parsed.SkippedCount,
			SkippedRows:   parsed.SkippedRows,
			Message:       fmt.Sprintf("%d hareket aktarıldı, %d satır atlandı", importedCount, parsed.SkippedCount),
		})
	}
}
