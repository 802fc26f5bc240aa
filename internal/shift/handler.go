package shift

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

type CreateShiftRequest struct {
	Date          string         `json:"date"`       // "2025-12-09"
	ShiftNo       models.ShiftNo `json:"shift_no"`   // "1" | "2"
	PersonnelName string         `json:"personnel_name"`
	StartTime     string         `json:"start_time"` // "08:00"
	EndTime       string         `json:"end_time"`   // "20:00"

	// Tahsilat alanları; gönderilmeyen alan 0 kabul edilir
	CashSales       float64 `json:"cash_sales"`
	CardSales       float64 `json:"card_sales"`
	Veresiye        float64 `json:"veresiye"`
	BankTransfers   float64 `json:"bank_transfers"`
	LoyaltyCard     float64 `json:"loyalty_card"`
	AutomationTotal float64 `json:"otomasyon_satis"`

	// super_admin için opsiyonel:
	StationID *uint `json:"station_id"`
}

type UpdateShiftRequest struct {
	Date          *string         `json:"date"`
	ShiftNo       *models.ShiftNo `json:"shift_no"`
	PersonnelName *string         `json:"personnel_name"`
	StartTime     *string         `json:"start_time"`
	EndTime       *string         `json:"end_time"`

	CashSales       *float64 `json:"cash_sales"`
	CardSales       *float64 `json:"card_sales"`
	Veresiye        *float64 `json:"veresiye"`
	BankTransfers   *float64 `json:"bank_transfers"`
	LoyaltyCard     *float64 `json:"loyalty_card"`
	AutomationTotal *float64 `json:"otomasyon_satis"`
}

type ShiftResponse struct {
	ID            uint           `json:"id"`
	StationID     uint           `json:"station_id"`
	ShiftNo       models.ShiftNo `json:"shift_no"`
	PersonnelName string         `json:"personnel_name"`
	StartTime     string         `json:"start_time"`
	EndTime       string         `json:"end_time"`

	CashSales       float64 `json:"cash_sales"`
	CardSales       float64 `json:"card_sales"`
	Veresiye        float64 `json:"veresiye"`
	BankTransfers   float64 `json:"bank_transfers"`
	LoyaltyCard     float64 `json:"loyalty_card"`
	AutomationTotal float64 `json:"otomasyon_satis"`
	OverShort       float64 `json:"over_short"`
	OverShortText   string  `json:"over_short_text"` // gösterim: "1.234,56"
}

// Yardımcı: Kullanıcı bilgilerini al
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

// body'den gelen station_id + role
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

// query'den gelen station_id + role
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

// parseShiftWindow: "2025-12-09" + "20:00"-"08:00" girişini zaman aralığına
// çevirir. Bitiş başlangıçtan önceyse vardiya gece yarısını aşıyor demektir,
// bitiş ertesi güne kayar.
func parseShiftWindow(date, start, end string) (time.Time, time.Time, error) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("tarih formatı 'YYYY-MM-DD' olmalı")
	}

	st, err := time.Parse("15:04", start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start_time formatı 'HH:MM' olmalı")
	}

	et, err := time.Parse("15:04", end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end_time formatı 'HH:MM' olmalı")
	}

	startAt := time.Date(d.Year(), d.Month(), d.Day(), st.Hour(), st.Minute(), 0, 0, d.Location())
	endAt := time.Date(d.Year(), d.Month(), d.Day(), et.Hour(), et.Minute(), 0, 0, d.Location())
	if !endAt.After(startAt) {
		endAt = endAt.AddDate(0, 0, 1)
	}

	return startAt, endAt, nil
}

func toShiftResponse(s models.Shift) ShiftResponse {
	return ShiftResponse{
		ID:              s.ID,
		StationID:       s.StationID,
		ShiftNo:         s.ShiftNo,
		PersonnelName:   s.PersonnelName,
		StartTime:       s.StartTime.Format("2006-01-02 15:04"),
		EndTime:         s.EndTime.Format("2006-01-02 15:04"),
		CashSales:       s.CashSales,
		CardSales:       s.CardSales,
		Veresiye:        s.Veresiye,
		BankTransfers:   s.BankTransfers,
		LoyaltyCard:     s.LoyaltyCard,
		AutomationTotal: s.AutomationTotal,
		OverShort:       s.OverShort,
		OverShortText:   ledger.FormatAmount(s.OverShort),
	}
}

// -------------------------------------------------
// POST /api/shifts
// Vardiya kapanışı: tüm tutarlar tek seferde girilir, over_short burada
// hesaplanır
// -------------------------------------------------
func CreateShiftHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateShiftRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.ShiftNo != models.ShiftNoDay && body.ShiftNo != models.ShiftNoNight {
			return fiber.NewError(fiber.StatusBadRequest, "shift_no '1' veya '2' olmalı")
		}
		if strings.TrimSpace(body.PersonnelName) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "personnel_name boş olamaz")
		}

		stationID, err := resolveStationIDFromBodyOrRole(c, body.StationID)
		if err != nil {
			return err
		}

		startAt, endAt, err := parseShiftWindow(body.Date, body.StartTime, body.EndTime)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		s := models.Shift{
			StationID:       stationID,
			ShiftNo:         body.ShiftNo,
			PersonnelName:   strings.TrimSpace(body.PersonnelName),
			StartTime:       startAt,
			EndTime:         endAt,
			CashSales:       body.CashSales,
			CardSales:       body.CardSales,
			Veresiye:        body.Veresiye,
			BankTransfers:   body.BankTransfers,
			LoyaltyCard:     body.LoyaltyCard,
			AutomationTotal: body.AutomationTotal,
			OverShort: ledger.OverShort(
				body.CashSales, body.CardSales, body.Veresiye,
				body.BankTransfers, body.LoyaltyCard, body.AutomationTotal,
			),
		}

		if err := database.DB.Create(&s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Vardiya kaydedilemedi")
		}

		// Audit log yaz
		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				StationID:   &s.StationID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "shift",
				EntityID:    s.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Vardiya kapatıldı: %s - açık/fazla %s TL", s.PersonnelName, ledger.FormatAmount(s.OverShort)),
				Before:      nil,
				After:       s, // undo model üzerinden çalışır, DTO değil
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(toShiftResponse(s))
	}
}

// -------------------------------------------------
// GET /api/shifts?from=2025-12-01&to=2025-12-31&shift_no=1
// -------------------------------------------------
func ListShiftsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		stationID, err := resolveStationIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		fromStr := c.Query("from")
		toStr := c.Query("to")
		shiftNoStr := c.Query("shift_no")

		dbq := database.DB.Model(&models.Shift{}).Where("station_id = ?", stationID)

		if fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from tarihi geçersiz")
			}
			dbq = dbq.Where("start_time >= ?", from)
		}

		if toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to tarihi geçersiz")
			}
			// to gününün sonuna kadar
			dbq = dbq.Where("start_time < ?", to.AddDate(0, 0, 1))
		}

		if shiftNoStr != "" {
			dbq = dbq.Where("shift_no = ?", shiftNoStr)
		}

		var shifts []models.Shift
		if err := dbq.Order("start_time asc, id asc").Find(&shifts).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Vardiyalar listelenemedi")
		}

		resp := make([]ShiftResponse, 0, len(shifts))
		for _, s := range shifts {
			resp = append(resp, toShiftResponse(s))
		}

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// PUT /api/shifts/:id
// Rakamlar toplu güncellenir; over_short sıfırdan hesaplanır, istemciden
// gelen değere bakılmaz
// -------------------------------------------------
func UpdateShiftHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var s models.Shift
		if err := database.DB.First(&s, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Vardiya bulunamadı")
		}

		stationID, err := resolveStationIDFromQueryOrRole(c)
		if err != nil {
			return err
		}
		if s.StationID != stationID {
			return fiber.NewError(fiber.StatusForbidden, "Bu vardiya başka bir istasyona ait")
		}

		before := s

		var body UpdateShiftRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.ShiftNo != nil {
			if *body.ShiftNo != models.ShiftNoDay && *body.ShiftNo != models.ShiftNoNight {
				return fiber.NewError(fiber.StatusBadRequest, "shift_no '1' veya '2' olmalı")
			}
			s.ShiftNo = *body.ShiftNo
		}
		if body.PersonnelName != nil {
			name := strings.TrimSpace(*body.PersonnelName)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "personnel_name boş olamaz")
			}
			s.PersonnelName = name
		}

		if body.Date != nil || body.StartTime != nil || body.EndTime != nil {
			date := s.StartTime.Format("2006-01-02")
			start := s.StartTime.Format("15:04")
			end := s.EndTime.Format("15:04")
			if body.Date != nil {
				date = *body.Date
			}
			if body.StartTime != nil {
				start = *body.StartTime
			}
			if body.EndTime != nil {
				end = *body.EndTime
			}
			startAt, endAt, err := parseShiftWindow(date, start, end)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			s.StartTime = startAt
			s.EndTime = endAt
		}

		if body.CashSales != nil {
			s.CashSales = *body.CashSales
		}
		if body.CardSales != nil {
			s.CardSales = *body.CardSales
		}
		if body.Veresiye != nil {
			s.Veresiye = *body.Veresiye
		}
		if body.BankTransfers != nil {
			s.BankTransfers = *body.BankTransfers
		}
		if body.LoyaltyCard != nil {
			s.LoyaltyCard = *body.LoyaltyCard
		}
		if body.AutomationTotal != nil {
			s.AutomationTotal = *body.AutomationTotal
		}

		// Hangi alan değişirse değişsin over_short baştan hesaplanır
		s.OverShort = ledger.OverShort(
			s.CashSales, s.CardSales, s.Veresiye,
			s.BankTransfers, s.LoyaltyCard, s.AutomationTotal,
		)

		if err := database.DB.Save(&s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Vardiya güncellenemedi")
		}

		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				StationID:   &s.StationID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "shift",
				EntityID:    s.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Vardiya güncellendi: %s - açık/fazla %s TL", s.PersonnelName, ledger.FormatAmount(s.OverShort)),
				Before:      before,
				After:       s,
			})
		}

		return c.JSON(toShiftResponse(s))
	}
}

// -------------------------------------------------
// DELETE /api/shifts/:id
// -------------------------------------------------
func DeleteShiftHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var s models.Shift
		if err := database.DB.First(&s, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Vardiya bulunamadı")
		}

		stationID, err := resolveStationIDFromQueryOrRole(c)
		if err != nil {
			return err
		}
		if s.StationID != stationID {
			return fiber.NewError(fiber.StatusForbidden, "Bu vardiya başka bir istasyona ait")
		}

		if err := database.DB.Delete(&models.Shift{}, "id = ?", s.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Vardiya silinemedi")
		}

		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				StationID:   &s.StationID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "shift",
				EntityID:    s.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Vardiya silindi: %s (%s)", s.PersonnelName, s.StartTime.Format("2006-01-02")),
				Before:      s,
				After:       s, // undo için tam kayıt
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -------------------------------------------------
// GET /api/shifts/summary/monthly?year=2025&month=12&station_id=1
// -------------------------------------------------

type MonthlySummaryResponse struct {
	StationID     uint    `json:"station_id"`
	Year          int     `json:"year"`
	Month         int     `json:"month"`
	CashSales     float64 `json:"cash_sales"`
	CardSales     float64 `json:"card_sales"`
	Veresiye      float64 `json:"veresiye"`
	BankTransfers float64 `json:"bank_transfers"`
	LoyaltyCard   float64 `json:"loyalty_card"`
	Automation    float64 `json:"otomasyon_satis"`
	OverShort     float64 `json:"over_short"`
	ShiftCount    int64   `json:"shift_count"`
}

func MonthlySummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		stationID, err := resolveStationIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		yearStr := c.Query("year")
		monthStr := c.Query("month")
		if yearStr == "" || monthStr == "" {
			return fiber.NewError(fiber.StatusBadRequest, "year ve month zorunlu")
		}

		var year, month int
		if _, err := fmt.Sscan(yearStr, &year); err != nil || year < 2000 {
			return fiber.NewError(fiber.StatusBadRequest, "year geçersiz")
		}
		if _, err := fmt.Sscan(monthStr, &month); err != nil || month < 1 || month > 12 {
			return fiber.NewError(fiber.StatusBadRequest, "month geçersiz")
		}

		loc := time.Now().Location()
		start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
		end := start.AddDate(0, 1, 0)

		type row struct {
			CashSales     float64 `gorm:"column:cash_sales"`
			CardSales     float64 `gorm:"column:card_sales"`
			Veresiye      float64 `gorm:"column:veresiye"`
			BankTransfers float64 `gorm:"column:bank_transfers"`
			LoyaltyCard   float64 `gorm:"column:loyalty_card"`
			Automation    float64 `gorm:"column:automation"`
			OverShort     float64 `gorm:"column:over_short"`
			ShiftCount    int64   `gorm:"column:shift_count"`
		}
		var r row

		if err := database.DB.Model(&models.Shift{}).
			Select(`COALESCE(SUM(cash_sales),0) as cash_sales,
				COALESCE(SUM(card_sales),0) as card_sales,
				COALESCE(SUM(veresiye),0) as veresiye,
				COALESCE(SUM(bank_transfers),0) as bank_transfers,
				COALESCE(SUM(loyalty_card),0) as loyalty_card,
				COALESCE(SUM(automation_total),0) as automation,
				COALESCE(SUM(over_short),0) as over_short,
				COUNT(*) as shift_count`).
			Where("station_id = ? AND start_time >= ? AND start_time < ?", stationID, start, end).
			Scan(&r).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Özet hesaplanamadı")
		}

		return c.JSON(MonthlySummaryResponse{
			StationID:     stationID,
			Year:          year,
			Month:         month,
			CashSales:     r.CashSales,
			CardSales:     r.CardSales,
			Veresiye:      r.Veresiye,
			BankTransfers: r.BankTransfers,
			LoyaltyCard:   r.LoyaltyCard,
			Automation:    r.Automation,
			OverShort:     r.OverShort,
			ShiftCount:    r.ShiftCount,
		})
	}
}
