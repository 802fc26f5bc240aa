package dashboard

import (
	"fmt"
	"sort"
	"time"

	"istasyon-backend/internal/auth"
	"istasyon-backend/internal/database"
	"istasyon-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SalesChartPoint struct {
	Label        string  `json:"label"` // tarih / hafta başlangıcı / ay başlangıcı
	Cash         float64 `json:"cash"`
	Card         float64 `json:"card"`
	Veresiye     float64 `json:"veresiye"`
	BankTransfer float64 `json:"bank_transfer"`
	Loyalty      float64 `json:"loyalty"`
	OverShort    float64 `json:"over_short"`
	Total        float64 `json:"total"`
}

type SalesChartGrandTotals struct {
	Cash         float64 `json:"cash"`
	Card         float64 `json:"card"`
	Veresiye     float64 `json:"veresiye"`
	BankTransfer float64 `json:"bank_transfer"`
	Loyalty      float64 `json:"loyalty"`
	OverShort    float64 `json:"over_short"`
	Total        float64 `json:"total"`
}

type SalesChartResponse struct {
	StationID   uint                  `json:"station_id"`
	Period      string                `json:"period"` // daily | weekly | monthly
	From        string                `json:"from"`
	To          string                `json:"to"`
	Points      []SalesChartPoint     `json:"points"`
	GrandTotals SalesChartGrandTotals `json:"grand_totals"`
}

// context'ten istasyon id çıkar (station_admin için JWT, super_admin için query param)
// super_admin için ?station_id=1 zorunlu
func getStationIDFromContext(c *fiber.Ctx) (uint, error) {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
	}

	if role == models.RoleStationAdmin {
		stationIDVal := c.Locals(auth.CtxStationIDKey)
		stationIDPtr, ok := stationIDVal.(*uint)
		if !ok || stationIDPtr == nil {
			return 0, fiber.NewError(fiber.StatusForbidden, "İstasyon bilgisi bulunamadı")
		}
		return *stationIDPtr, nil
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

// GET /api/dashboard/sales-chart?period=daily&count=7&station_id=1
// Vardiya satış kanallarının (nakit, kart, veresiye, havale, sadakat)
// zaman serisini döner; açık/fazla toplamı da noktaya eklenir
func SalesChartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		stationID, err := getStationIDFromContext(c)
		if err != nil {
			return err
		}

		period := c.Query("period", "daily") // daily | weekly | monthly
		countStr := c.Query("count", "")

		var count int
		if countStr == "" {
			switch period {
			case "weekly":
				count = 8
			case "monthly":
				count = 12
			default:
				period = "daily"
				count = 7
			}
		} else {
			if _, err := fmt.Sscan(countStr, &count); err != nil || count <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "count geçersiz")
			}
		}

		now := time.Now()
		loc := now.Location()
		// bugünün 00:00'ı
		end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		var start time.Time

		switch period {
		case "weekly":
			days := 7 * (count - 1)
			start = end.AddDate(0, 0, -days)
		case "monthly":
			end = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
			start = end.AddDate(0, -(count - 1), 0)
		default:
			period = "daily"
			start = end.AddDate(0, 0, -(count - 1))
		}

		// aggregation sonucu satır yapısı
		type row struct {
			Bucket       time.Time `gorm:"column:bucket"`
			Cash         float64   `gorm:"column:cash"`
			Card         float64   `gorm:"column:card"`
			Veresiye     float64   `gorm:"column:veresiye"`
			BankTransfer float64   `gorm:"column:bank_transfer"`
			Loyalty      float64   `gorm:"column:loyalty"`
			OverShort    float64   `gorm:"column:over_short"`
		}
		var rows []row

		var trunc string
		switch period {
		case "weekly":
			trunc = "date_trunc('week', start_time)::date"
		case "monthly":
			trunc = "date_trunc('month', start_time)::date"
			// monthly için end = start + count ay sonrası
			end = start.AddDate(0, count, 0).AddDate(0, 0, -1)
		default:
			trunc = "start_time::date"
		}

		sql := fmt.Sprintf(`
			SELECT %s AS bucket,
				   SUM(cash_sales) AS cash,
				   SUM(card_sales) AS card,
				   SUM(veresiye) AS veresiye,
				   SUM(bank_transfers) AS bank_transfer,
				   SUM(loyalty_card) AS loyalty,
				   SUM(over_short) AS over_short
			FROM shifts
			WHERE station_id = ? AND start_time >= ? AND start_time < ?
			GROUP BY bucket
			ORDER BY bucket ASC;
		`, trunc)

		if err := database.DB.Raw(sql, stationID, start, end.AddDate(0, 0, 1)).Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Veri toplanırken hata oluştu")
		}

		sort.Slice(rows, func(i, j int) bool { return rows[i].Bucket.Before(rows[j].Bucket) })

		points := make([]SalesChartPoint, 0, len(rows))
		grand := SalesChartGrandTotals{}

		for _, r := range rows {
			total := r.Cash + r.Card + r.Veresiye + r.BankTransfer + r.Loyalty
			points = append(points, SalesChartPoint{
				Label:        r.Bucket.Format("2006-01-02"),
				Cash:         r.Cash,
				Card:         r.Card,
				Veresiye:     r.Veresiye,
				BankTransfer: r.BankTransfer,
				Loyalty:      r.Loyalty,
				OverShort:    r.OverShort,
				Total:        total,
			})

			grand.Cash += r.Cash
			grand.Card += r.Card
			grand.Veresiye += r.Veresiye
			grand.BankTransfer += r.BankTransfer
			grand.Loyalty += r.Loyalty
			grand.OverShort += r.OverShort
			grand.Total += total
		}

		resp := SalesChartResponse{
			StationID:   stationID,
			Period:      period,
			From:        start.Format("2006-01-02"),
			To:          end.Format("2006-01-02"),
			Points:      points,
			GrandTotals: grand,
		}

		return c.JSON(resp)
	}
}
