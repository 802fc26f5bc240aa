package customer

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

type CreateCustomerRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	TaxNumber string `json:"tax_number"`
	Address   string `json:"address"`
	StationID *uint  `json:"station_id"` // super_admin için opsiyonel
}

type UpdateCustomerRequest struct {
	Name      *string `json:"name"`
	Phone     *string `json:"phone"`
	TaxNumber *string `json:"tax_number"`
	Address   *string `json:"address"`
}

type CustomerResponse struct {
	ID        uint   `json:"id"`
	StationID uint   `json:"station_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	TaxNumber string `json:"tax_number"`
	Address   string `json:"address"`
	CreatedAt string `json:"created_at"`
}

type CreateTransactionRequest struct {
	Type        models.CustomerTransactionType `json:"type"` // "debt" | "payment"
	Amount      float64                        `json:"amount"`
	Description string                         `json:"description"`
	Date        string                         `json:"date"` // "2025-12-09", boşsa bugün
}

type TransactionResponse struct {
	ID          uint                           `json:"id"`
	CustomerID  uint                           `json:"customer_id"`
	Type        models.CustomerTransactionType `json:"type"`
	Amount      float64                        `json:"amount"`
	Description string                         `json:"description"`
	Date        string                         `json:"date"`
}

type BalanceResponse struct {
	CustomerID   uint    `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	Balance      float64 `json:"balance"`      // pozitif = borçlu
	BalanceText  string  `json:"balance_text"` // gösterim: "1.234,56"
	TxCount      int     `json:"tx_count"`
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

func toCustomerResponse(cu models.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        cu.ID,
		StationID: cu.StationID,
		Name:      cu.Name,
		Phone:     cu.Phone,
		TaxNumber: cu.TaxNumber,
		Address:   cu.Address,
		CreatedAt: cu.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func toTransactionResponse(tx models.CustomerTransaction) TransactionResponse {
	return TransactionResponse{
		ID:          tx.ID,
		CustomerID:  tx.CustomerID,
		Type:        tx.Type,
		Amount:      tx.Amount,
		Description: tx.Description,
		Date:        tx.Date.Format("2006-01-02"),
	}
}

// -------------------------
// Müşteri CRUD
// -------------------------

// POST /api/customers
func CreateCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Müşteri adı boş olamaz")
		}

		stationID, err := resolveStationIDFromBodyOrRole(c, body.StationID)
		if err != nil {
			return err
		}

		cu := models.Customer{
			StationID: stationID,
			Name:      body.Name,
			Phone:     strings.TrimSpace(body.Phone),
			TaxNumber: strings.TrimSpace(body.TaxNumber),
			Address:   strings.TrimSpace(body.Address),
		}

		if err := database.DB.Create(&cu).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteri oluşturulamadı")
		}

		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				StationID:   &cu.StationID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "customer",
				EntityID:    cu.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Müşteri eklendi: %s", cu.Name),
				Before:      nil,
				After:       cu, // undo model üzerinden çalışır, DTO değil
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toCustomerResponse(cu))
	}
}

// GET /api/customers
func ListCustomersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		stationID, err := resolveStationIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var customers []models.Customer
		if err := database.DB.
			Where("station_id = ?", stationID).
			Order("name asc").
			Find(&customers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteriler listelenemedi")
		}

		resp := make([]CustomerResponse, 0, len(customers))
		for _, cu := range customers {
			resp = append(resp, toCustomerResponse(cu))
		}

		return c.JSON(resp)
	}
}

// PUT /api/customers/:id
func UpdateCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var cu models.Customer
		if err := database.DB.First(&cu, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Müşteri bulunamadı")
		}

		stationID, err := resolveStationIDFromQueryOrRole(c)
		if err != nil {
			return err
		}
		if cu.StationID != stationID {
			return fiber.NewError(fiber.StatusForbidden, "Bu müşteri başka bir istasyona ait")
		}

		before := cu

		var body UpdateCustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Müşteri adı boş olamaz")
			}
			cu.Name = name
		}
		if body.Phone != nil {
			cu.Phone = strings.TrimSpace(*body.Phone)
		}
		if body.TaxNumber != nil {
			cu.TaxNumber = strings.TrimSpace(*body.TaxNumber)
		}
		if body.Address != nil {
			cu.Address = strings.TrimSpace(*body.Address)
		}

		if err := database.DB.Save(&cu).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteri güncellenemedi")
		}

		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				StationID:   &cu.StationID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "customer",
				EntityID:    cu.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Müşteri güncellendi: %s", cu.Name),
				Before:      before,
				After:       cu,
			})
		}

		return c.JSON(toCustomerResponse(cu))
	}
}

// DELETE /api/customers/:id
func DeleteCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		// Cascade hareketleri de sileceği için snapshot'a hareketler dahil
		// edilir; undo müşteriyi geçmişiyle birlikte geri oluşturur
		var cu models.Customer
		if err := database.DB.Preload("Transactions").First(&cu, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Müşteri bulunamadı")
		}

		stationID, err := resolveStationIDFromQueryOrRole(c)
		if err != nil {
			return err
		}
		if cu.StationID != stationID {
			return fiber.NewError(fiber.StatusForbidden, "Bu müşteri başka bir istasyona ait")
		}

		if err := database.DB.Delete(&models.Customer{}, "id = ?", cu.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteri silinemedi")
		}

		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				StationID:   &cu.StationID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "customer",
				EntityID:    cu.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Müşteri silindi: %s", cu.Name),
				Before:      cu,
				After:       cu, // undo için tam kayıt
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -------------------------
// Cari hareketler
// -------------------------

// POST /api/customers/:id/transactions
func CreateTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		customerID := c.Params("id")

		var cu models.Customer
		if err := database.DB.First(&cu, "id = ?", customerID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Müşteri bulunamadı")
		}

		stationID, err := resolveStationIDFromQueryOrRole(c)
		if err != nil {
			return err
		}
		if cu.StationID != stationID {
			return fiber.NewError(fiber.StatusForbidden, "Bu müşteri başka bir istasyona ait")
		}

		var body CreateTransactionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.Type != models.TransactionTypeDebt && body.Type != models.TransactionTypePayment {
			return fiber.NewError(fiber.StatusBadRequest, "type 'debt' veya 'payment' olmalı")
		}
		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount 0'dan büyük olmalı")
		}

		var date time.Time
		if body.Date == "" {
			now := time.Now()
			date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		} else {
			d, err := time.Parse("2006-01-02", body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			date = d
		}

		tx := models.CustomerTransaction{
			StationID:   stationID,
			CustomerID:  cu.ID,
			Type:        body.Type,
			Amount:      body.Amount,
			Description: strings.TrimSpace(body.Description),
			Date:        date,
		}

		if err := database.DB.Create(&tx).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hareket kaydedilemedi")
		}

		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			typeLabel := "Borç"
			if tx.Type == models.TransactionTypePayment {
				typeLabel = "Ödeme"
			}
			_ = audit.WriteLog(audit.LogOptions{
				StationID:   &tx.StationID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "customer_transaction",
				EntityID:    tx.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("%s eklendi: %s - %s TL", typeLabel, cu.Name, ledger.FormatAmount(tx.Amount)),
				Before:      nil,
				After:       tx,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(tx))
	}
}

// GET /api/customers/:id/transactions
func ListTransactionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		customerID := c.Params("id")

		var cu models.Customer
		if err := database.DB.First(&cu, "id = ?", customerID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Müşteri bulunamadı")
		}

		stationID, err := resolveStationIDFromQueryOrRole(c)
		if err != nil {
			return err
		}
		if cu.StationID != stationID {
			return fiber.NewError(fiber.StatusForbidden, "Bu müşteri başka bir istasyona ait")
		}

		var txs []models.CustomerTransaction
		if err := database.DB.
			Where("customer_id = ?", cu.ID).
			Order("date asc, id asc").
			Find(&txs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hareketler listelenemedi")
		}

		resp := make([]TransactionResponse, 0, len(txs))
		for _, tx := range txs {
			resp = append(resp, toTransactionResponse(tx))
		}

		return c.JSON(resp)
	}
}

// DELETE /api/customer-transactions/:id
func DeleteTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var tx models.CustomerTransaction
		if err := database.DB.First(&tx, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Hareket bulunamadı")
		}

		stationID, err := resolveStationIDFromQueryOrRole(c)
		if err != nil {
			return err
		}
		if tx.StationID != stationID {
			return fiber.NewError(fiber.StatusForbidden, "Bu hareket başka bir istasyona ait")
		}

		if err := database.DB.Delete(&models.CustomerTransaction{}, "id = ?", tx.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hareket silinemedi")
		}

		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				StationID:   &tx.StationID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "customer_transaction",
				EntityID:    tx.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Cari hareket silindi: %s TL", ledger.FormatAmount(tx.Amount)),
				Before:      tx,
				After:       tx, // undo için tam kayıt
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -------------------------
// Bakiye (her seferinde tam geçmişten türetilir)
// -------------------------

// GET /api/customers/:id/balance
func GetBalanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		customerID := c.Params("id")

		var cu models.Customer
		if err := database.DB.First(&cu, "id = ?", customerID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Müşteri bulunamadı")
		}

		stationID, err := resolveStationIDFromQueryOrRole(c)
		if err != nil {
			return err
		}
		if cu.StationID != stationID {
			return fiber.NewError(fiber.StatusForbidden, "Bu müşteri başka bir istasyona ait")
		}

		var txs []models.CustomerTransaction
		if err := database.DB.
			Where("customer_id = ?", cu.ID).
			Find(&txs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hareketler okunamadı")
		}

		balance := ledger.BalanceOf(txs)

		return c.JSON(BalanceResponse{
			CustomerID:   cu.ID,
			CustomerName: cu.Name,
			Balance:      balance,
			BalanceText:  ledger.FormatAmount(balance),
			TxCount:      len(txs),
		})
	}
}

// GET /api/customers/debtors
// Bakiyesi pozitif (borçlu) müşteriler; bakiye her müşteri için tam
// geçmişten hesaplanır, hiçbir yerde kalıcı tutulmaz
func ListDebtorsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		stationID, err := resolveStationIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var customers []models.Customer
		if err := database.DB.
			Where("station_id = ?", stationID).
			Order("name asc").
			Find(&customers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteriler listelenemedi")
		}

		resp := make([]BalanceResponse, 0)
		for _, cu := range customers {
			var txs []models.CustomerTransaction
			if err := database.DB.
				Where("customer_id = ?", cu.ID).
				Find(&txs).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Hareketler okunamadı")
			}

			balance := ledger.BalanceOf(txs)
			if balance <= 0 {
				continue
			}

			resp = append(resp, BalanceResponse{
				CustomerID:   cu.ID,
				CustomerName: cu.Name,
				Balance:      balance,
				BalanceText:  ledger.FormatAmount(balance),
				TxCount:      len(txs),
			})
		}

		return c.JSON(resp)
	}
}
