package invoice

import (
	"fmt"
	"strings"
	"time"

	"istasyon-backend/internal/audit"
	"istasyon-backend/internal/auth"
	"istasyon-backend/internal/database"
	"istasyon-backend/internal/ledger"
	"istasyon-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// -------------------------
// Request/Response Types
// -------------------------

type CreateInvoiceRequest struct {
	InvoiceNumber string  `json:"invoice_number"`
	TotalAmount   float64 `json:"total_amount"`
	IssueDate     string  `json:"issue_date"` // "2025-12-09"
	CustomerID    *uint   `json:"customer_id"`
	StationID     *uint   `json:"station_id"` // super_admin için
}

type UpdateInvoiceRequest struct {
	InvoiceNumber *string  `json:"invoice_number"`
	TotalAmount   *float64 `json:"total_amount"`
	IssueDate     *string  `json:"issue_date"`
	CustomerID    *uint    `json:"customer_id"`
}

type SubmitRequest struct {
	Action string `json:"action"` // "send" | "send-to-gib"
}

type InvoiceResponse struct {
	ID            uint                 `json:"id"`
	StationID     uint                 `json:"station_id"`
	CustomerID    *uint                `json:"customer_id"`
	InvoiceNumber string               `json:"invoice_number"`
	TotalAmount   float64              `json:"total_amount"`
	TotalText     string               `json:"total_text"`
	IssueDate     string               `json:"issue_date"`
	Status        models.InvoiceStatus `json:"status"`
	UyumsoftID    string               `json:"uyumsoft_id,omitempty"`
	ErrorMessage  string               `json:"error_message,omitempty"`
}

// -------------------------
// Yardımcı: Kullanıcı bilgilerini al
// -------------------------
func getUserInfo(c *fiber.Ctx) (uint, string, *uint, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", nil, fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", nil, fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı bulunamadı")
	}

	var stationID *uint
	sVal := c.Locals(auth.CtxStationIDKey)
	if sPtr, ok := sVal.(*uint); ok && sPtr != nil {
		stationID = sPtr
	}

	return userID, user.Name, stationID, nil
}

func resolveStationIDFromBodyOrRole(c *fiber.Ctx, bodyStationID *uint) (uint, error) {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
	}

	if role == models.RoleStationAdmin {
		sVal := c.Locals(auth.CtxStationIDKey)
		sPtr, ok := sVal.(*uint)
		if !ok || sPtr == nil {
			return 0, fiber.NewError(fiber.StatusForbidden, "İstasyon bilgisi bulunamadı")
		}
		return *sPtr, nil
	}

	// super_admin
	if bodyStationID == nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "station_id zorunlu")
	}
	return *bodyStationID, nil
}

func resolveStationIDFromQueryOrRole(c *fiber.Ctx) (uint, error) {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
	}

	if role == models.RoleStationAdmin {
		sVal := c.Locals(auth.CtxStationIDKey)
		sPtr, ok := sVal.(*uint)
		if !ok || sPtr == nil {
			return 0, fiber.NewError(fiber.StatusForbidden, "İstasyon bilgisi bulunamadı")
		}
		return *sPtr, nil
	}

	// super_admin
	sidStr := c.Query("station_id")
	if sidStr == "" {
		return 0, fiber.NewError(fiber.StatusBadRequest, "station_id zorunlu")
	}
	var sid uint
	if _, err := fmt.Sscan(sidStr, &sid); err != nil || sid == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "station_id geçersiz")
	}
	return sid, nil
}

func toInvoiceResponse(inv models.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            inv.ID,
		StationID:     inv.StationID,
		CustomerID:    inv.CustomerID,
		InvoiceNumber: inv.InvoiceNumber,
		TotalAmount:   inv.TotalAmount,
		TotalText:     ledger.FormatAmount(inv.TotalAmount),
		IssueDate:     inv.IssueDate.Format("2006-01-02"),
		Status:        inv.Status,
		UyumsoftID:    inv.UyumsoftID,
		ErrorMessage:  inv.ErrorMessage,
	}
}

func loadScopedInvoice(c *fiber.Ctx) (*models.Invoice, error) {
	id := c.Params("id")

	var inv models.Invoice
	if err := database.DB.First(&inv, "id = ?", id).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Fatura bulunamadı")
	}

	stationID, err := resolveStationIDFromQueryOrRole(c)
	if err != nil {
		return nil, err
	}
	if inv.StationID != stationID {
		return nil, fiber.NewError(fiber.StatusForbidden, "Bu fatura başka bir istasyona ait")
	}

	return &inv, nil
}

// -------------------------
// Fatura CRUD
// -------------------------

// POST /api/invoices
func CreateInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateInvoiceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		body.InvoiceNumber = strings.TrimSpace(body.InvoiceNumber)
		if body.InvoiceNumber == "" {
			return fiber.NewError(fiber.StatusBadRequest, "invoice_number boş olamaz")
		}
		if body.TotalAmount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "total_amount 0'dan büyük olmalı")
		}

		stationID, err := resolveStationIDFromBodyOrRole(c, body.StationID)
		if err != nil {
			return err
		}

		issueDate, err := time.Parse("2006-01-02", body.IssueDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "issue_date formatı 'YYYY-MM-DD' olmalı")
		}

		if body.CustomerID != nil {
			var cu models.Customer
			if err := database.DB.First(&cu, "id = ? AND station_id = ?", *body.CustomerID, stationID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "customer_id bu istasyonda bulunamadı")
			}
		}

		inv := models.Invoice{
			StationID:     stationID,
			CustomerID:    body.CustomerID,
			InvoiceNumber: body.InvoiceNumber,
			TotalAmount:   body.TotalAmount,
			IssueDate:     issueDate,
			Status:        models.InvoiceStatusDraft,
		}

		if err := database.DB.Create(&inv).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Fatura oluşturulamadı")
		}

		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				StationID:   &inv.StationID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "invoice",
				EntityID:    inv.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Fatura oluşturuldu: %s - %s TL", inv.InvoiceNumber, ledger.FormatAmount(inv.TotalAmount)),
				Before:      nil,
				After:       inv, // undo model üzerinden çalışır, DTO değil
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toInvoiceResponse(inv))
	}
}

// GET /api/invoices?status=&from=&to=
func ListInvoicesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		stationID, err := resolveStationIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.Invoice{}).Where("station_id = ?", stationID)

		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}
		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from tarihi geçersiz")
			}
			dbq = dbq.Where("issue_date >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to tarihi geçersiz")
			}
			dbq = dbq.Where("issue_date <= ?", to)
		}

		var invoices []models.Invoice
		if err := dbq.Order("issue_date asc, id asc").Find(&invoices).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Faturalar listelenemedi")
		}

		resp := make([]InvoiceResponse, 0, len(invoices))
		for _, inv := range invoices {
			resp = append(resp, toInvoiceResponse(inv))
		}

		return c.JSON(resp)
	}
}

// GET /api/invoices/:id
func GetInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		inv, err := loadScopedInvoice(c)
		if err != nil {
			return err
		}
		return c.JSON(toInvoiceResponse(*inv))
	}
}

// PUT /api/invoices/:id
// Yalnızca taslak faturalar düzenlenebilir, gönderilmiş belge değişmez
func UpdateInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		inv, err := loadScopedInvoice(c)
		if err != nil {
			return err
		}

		if inv.Status != models.InvoiceStatusDraft && inv.Status != models.InvoiceStatusError {
			return fiber.NewError(fiber.StatusConflict, "Gönderilmiş fatura düzenlenemez")
		}

		before := *inv

		var body UpdateInvoiceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.InvoiceNumber != nil {
			num := strings.TrimSpace(*body.InvoiceNumber)
			if num == "" {
				return fiber.NewError(fiber.StatusBadRequest, "invoice_number boş olamaz")
			}
			inv.InvoiceNumber = num
		}
		if body.TotalAmount != nil {
			if *body.TotalAmount <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "total_amount 0'dan büyük olmalı")
			}
			inv.TotalAmount = *body.TotalAmount
		}
		if body.IssueDate != nil {
			d, err := time.Parse("2006-01-02", *body.IssueDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "issue_date formatı 'YYYY-MM-DD' olmalı")
			}
			inv.IssueDate = d
		}
		if body.CustomerID != nil {
			var cu models.Customer
			if err := database.DB.First(&cu, "id = ? AND station_id = ?", *body.CustomerID, inv.StationID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "customer_id bu istasyonda bulunamadı")
			}
			inv.CustomerID = body.CustomerID
		}

		// Hatalı gönderimden sonra düzenleme taslağa döndürür
		if inv.Status == models.InvoiceStatusError {
			inv.Status = models.InvoiceStatusDraft
			inv.ErrorMessage = ""
		}

		if err := database.DB.Save(inv).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Fatura güncellenemedi")
		}

		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				StationID:   &inv.StationID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "invoice",
				EntityID:    inv.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Fatura güncellendi: %s", inv.InvoiceNumber),
				Before:      before,
				After:       *inv,
			})
		}

		return c.JSON(toInvoiceResponse(*inv))
	}
}

// DELETE /api/invoices/:id
func DeleteInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		inv, err := loadScopedInvoice(c)
		if err != nil {
			return err
		}

		if inv.Status == models.InvoiceStatusSentToGIB {
			return fiber.NewError(fiber.StatusConflict, "GİB'e iletilmiş fatura silinemez")
		}

		if err := database.DB.Delete(&models.Invoice{}, "id = ?", inv.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Fatura silinemedi")
		}

		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				StationID:   &inv.StationID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "invoice",
				EntityID:    inv.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Fatura silindi: %s", inv.InvoiceNumber),
				Before:      *inv,
				After:       *inv, // undo için tam kayıt
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -------------------------
// Gönderim ve durum
// -------------------------

// POST /api/invoices/:id/submit  {"action": "send" | "send-to-gib"}
// Gönderim hatası faturayı error durumuna düşürür, mesaj kayda yazılır;
// istek yine de 200 dışı bir kodla döner ki istemci ayrımı görebilsin.
func SubmitInvoiceHandler(client *UyumsoftClient) fiber.Handler {
	return func(c *fiber.Ctx) error {
		inv, err := loadScopedInvoice(c)
		if err != nil {
			return err
		}

		var body SubmitRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		var acc models.UyumsoftAccount
		if err := database.DB.First(&acc, "station_id = ?", inv.StationID).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "Bu istasyon için Uyumsoft hesabı tanımlı değil")
		}

		var result *SubmitResult
		var submitErr error

		switch body.Action {
		case "send":
			if inv.Status != models.InvoiceStatusDraft && inv.Status != models.InvoiceStatusError {
				return fiber.NewError(fiber.StatusConflict, "Fatura zaten gönderilmiş")
			}
			result, submitErr = client.SendInvoice(acc, *inv)
		case "send-to-gib":
			if inv.Status != models.InvoiceStatusSent {
				return fiber.NewError(fiber.StatusConflict, "GİB'e iletim için fatura önce Uyumsoft'a gönderilmiş olmalı")
			}
			result, submitErr = client.SendToGIB(acc, *inv)
		default:
			return fiber.NewError(fiber.StatusBadRequest, "action 'send' veya 'send-to-gib' olmalı")
		}

		before := *inv

		if submitErr != nil {
			inv.Status = models.InvoiceStatusError
			inv.ErrorMessage = submitErr.Error()
			if err := database.DB.Save(inv).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Fatura durumu güncellenemedi")
			}
			return fiber.NewError(fiber.StatusBadGateway, "Gönderim başarısız: "+submitErr.Error())
		}

		inv.Status = result.Status
		inv.UyumsoftID = result.DocumentID
		inv.ErrorMessage = ""
		if err := database.DB.Save(inv).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Fatura durumu güncellenemedi")
		}

		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				StationID:   &inv.StationID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "invoice",
				EntityID:    inv.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Fatura gönderildi (%s): %s", body.Action, inv.InvoiceNumber),
				Before:      before,
				After:       *inv,
			})
		}

		return c.JSON(toInvoiceResponse(*inv))
	}
}

// GET /api/invoices/:id/status
// Uyumsoft'tan güncel durumu çeker ve kayda işler
func InvoiceStatusHandler(client *UyumsoftClient) fiber.Handler {
	return func(c *fiber.Ctx) error {
		inv, err := loadScopedInvoice(c)
		if err != nil {
			return err
		}

		if inv.Status == models.InvoiceStatusDraft {
			return c.JSON(toInvoiceResponse(*inv))
		}

		var acc models.UyumsoftAccount
		if err := database.DB.First(&acc, "station_id = ?", inv.StationID).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "Bu istasyon için Uyumsoft hesabı tanımlı değil")
		}

		result, err := client.QueryStatus(acc, *inv)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "Durum sorgulanamadı: "+err.Error())
		}

		if result.Status != "" && result.Status != inv.Status {
			inv.Status = result.Status
			if err := database.DB.Save(inv).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Fatura durumu güncellenemedi")
			}
		}

		return c.JSON(toInvoiceResponse(*inv))
	}
}
