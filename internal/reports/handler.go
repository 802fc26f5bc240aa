package reports

import (
	"fmt"
	"time"

	"istasyon-backend/internal/auth"
	"istasyon-backend/internal/database"
	"istasyon-backend/internal/ledger"
	"istasyon-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ChannelTotals struct {
	Cash         float64 `json:"cash"`
	Card         float64 `json:"card"`
	Veresiye     float64 `json:"veresiye"`
	BankTransfer float64 `json:"bank_transfer"`
	Loyalty      float64 `json:"loyalty"`
	Total        float64 `json:"total"`
}

type FuelTypeSummary struct {
	FuelType       models.FuelType `json:"fuel_type"`
	PurchaseLiters float64         `json:"purchase_liters"`
	PurchaseCost   float64         `json:"purchase_cost"`
	SaleLiters     float64         `json:"sale_liters"`
	SaleRevenue    float64         `json:"sale_revenue"`
}

type MonthlySummaryResponse struct {
	StationID uint `json:"station_id"`
	Year      int  `json:"year"`
	Month     int  `json:"month"`

	ShiftCount    int           `json:"shift_count"`
	Channels      ChannelTotals `json:"channels"`
	OverShortSum  float64       `json:"over_short_sum"`
	OverShortText string        `json:"over_short_text"`

	Fuel []FuelTypeSummary `json:"fuel"`

	OutstandingDebt     float64 `json:"outstanding_debt"` // istasyon geneli açık veresiye
	OutstandingDebtText string  `json:"outstanding_debt_text"`

	InvoiceCount     int     `json:"invoice_count"`
	InvoiceTotal     float64 `json:"invoice_total"`
	InvoiceSentCount int     `json:"invoice_sent_count"` // Uyumsoft veya GİB'e iletilmiş
}

// -----------------------------------
// Yardımcı: station_id'yi çöz
// -----------------------------------

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

// -----------------------------------
// GET /api/reports/monthly
// ?year=2025&month=12[&station_id=1]
// -----------------------------------
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
		firstDay := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
		nextMonth := firstDay.AddDate(0, 1, 0)
		lastDay := nextMonth.AddDate(0, 0, -1)

		// ---------------------------
		// 1) Vardiya kanalları ve açık/fazla
		// ---------------------------

		type shiftRow struct {
			Count        int     `gorm:"column:count"`
			Cash         float64 `gorm:"column:cash"`
			Card         float64 `gorm:"column:card"`
			Veresiye     float64 `gorm:"column:veresiye"`
			BankTransfer float64 `gorm:"column:bank_transfer"`
			Loyalty      float64 `gorm:"column:loyalty"`
			OverShort    float64 `gorm:"column:over_short"`
		}
		var sr shiftRow

		if err := database.DB.
			Model(&models.Shift{}).
			Select(`COUNT(*) as count,
				COALESCE(SUM(cash_sales), 0) as cash,
				COALESCE(SUM(card_sales), 0) as card,
				COALESCE(SUM(veresiye), 0) as veresiye,
				COALESCE(SUM(bank_transfers), 0) as bank_transfer,
				COALESCE(SUM(loyalty_card), 0) as loyalty,
				COALESCE(SUM(over_short), 0) as over_short`).
			Where("station_id = ? AND start_time >= ? AND start_time < ?", stationID, firstDay, nextMonth).
			Scan(&sr).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Vardiya toplamları hesaplanamadı")
		}

		channels := ChannelTotals{
			Cash:         sr.Cash,
			Card:         sr.Card,
			Veresiye:     sr.Veresiye,
			BankTransfer: sr.BankTransfer,
			Loyalty:      sr.Loyalty,
			Total:        sr.Cash + sr.Card + sr.Veresiye + sr.BankTransfer + sr.Loyalty,
		}

		// ---------------------------
		// 2) Yakıt alım/satış özetleri (tür bazlı)
		// ---------------------------

		type fuelRow struct {
			FuelType string  `gorm:"column:fuel_type"`
			Liters   float64 `gorm:"column:liters"`
			Amount   float64 `gorm:"column:amount"`
		}

		var purchaseRows []fuelRow
		if err := database.DB.
			Model(&models.FuelPurchase{}).
			Select("fuel_type, COALESCE(SUM(liters), 0) as liters, COALESCE(SUM(total_amount), 0) as amount").
			Where("station_id = ? AND purchase_date >= ? AND purchase_date <= ?", stationID, firstDay, lastDay).
			Group("fuel_type").
			Scan(&purchaseRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Alım toplamları hesaplanamadı")
		}

		var saleRows []fuelRow
		if err := database.DB.
			Model(&models.FuelSale{}).
			Select("fuel_type, COALESCE(SUM(liters), 0) as liters, COALESCE(SUM(total_amount), 0) as amount").
			Where("station_id = ? AND sale_time >= ? AND sale_time < ?", stationID, firstDay, nextMonth).
			Group("fuel_type").
			Scan(&saleRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satış toplamları hesaplanamadı")
		}

		fuelMap := make(map[models.FuelType]*FuelTypeSummary)
		for _, ft := range models.AllFuelTypes {
			fuelMap[ft] = &FuelTypeSummary{FuelType: ft}
		}
		for _, r := range purchaseRows {
			if agg, ok := fuelMap[models.FuelType(r.FuelType)]; ok {
				agg.PurchaseLiters = r.Liters
				agg.PurchaseCost = r.Amount
			}
		}
		for _, r := range saleRows {
			if agg, ok := fuelMap[models.FuelType(r.FuelType)]; ok {
				agg.SaleLiters = r.Liters
				agg.SaleRevenue = r.Amount
			}
		}

		fuel := make([]FuelTypeSummary, 0, len(models.AllFuelTypes))
		for _, ft := range models.AllFuelTypes {
			fuel = append(fuel, *fuelMap[ft])
		}

		// ---------------------------
		// 3) Açık veresiye (tüm geçmiş, ay filtresi yok:
		//    bakiye tanımı gereği tam geçmişten türetilir)
		// ---------------------------

		type debtRow struct {
			Type  string  `gorm:"column:type"`
			Total float64 `gorm:"column:total"`
		}
		var debtRows []debtRow

		if err := database.DB.
			Model(&models.CustomerTransaction{}).
			Select("type, COALESCE(SUM(amount), 0) as total").
			Where("station_id = ?", stationID).
			Group("type").
			Scan(&debtRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Veresiye toplamı hesaplanamadı")
		}

		var outstanding float64
		for _, r := range debtRows {
			switch models.CustomerTransactionType(r.Type) {
			case models.TransactionTypeDebt:
				outstanding += r.Total
			case models.TransactionTypePayment:
				outstanding -= r.Total
			}
		}

		// ---------------------------
		// 4) Fatura sayıları
		// ---------------------------

		type invRow struct {
			Count     int     `gorm:"column:count"`
			Total     float64 `gorm:"column:total"`
			SentCount int     `gorm:"column:sent_count"`
		}
		var ir invRow

		if err := database.DB.
			Model(&models.Invoice{}).
			Select(`COUNT(*) as count,
				COALESCE(SUM(total_amount), 0) as total,
				COUNT(*) FILTER (WHERE status IN ('sent', 'sent_to_gib')) as sent_count`).
			Where("station_id = ? AND issue_date >= ? AND issue_date <= ?", stationID, firstDay, lastDay).
			Scan(&ir).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Fatura toplamları hesaplanamadı")
		}

		resp := MonthlySummaryResponse{
			StationID: stationID,
			Year:      year,
			Month:     month,

			ShiftCount:    sr.Count,
			Channels:      channels,
			OverShortSum:  sr.OverShort,
			OverShortText: ledger.FormatAmount(sr.OverShort),

			Fuel: fuel,

			OutstandingDebt:     outstanding,
			OutstandingDebtText: ledger.FormatAmount(outstanding),

			InvoiceCount:     ir.Count,
			InvoiceTotal:     ir.Total,
			InvoiceSentCount: ir.SentCount,
		}

		return c.JSON(resp)
	}
}
