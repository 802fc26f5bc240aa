package admin

import (
	"strings"

	"istasyon-backend/internal/database"
	"istasyon-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type StationResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	TaxNumber string `json:"tax_number"`
	TaxOffice string `json:"tax_office"`
	CreatedAt string `json:"created_at"`
}

type CreateStationRequest struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Phone     *string `json:"phone"` // Opsiyonel
	TaxNumber string  `json:"tax_number"`
	TaxOffice string  `json:"tax_office"`
}

type UpdateStationRequest struct {
	Name      *string `json:"name"`
	Address   *string `json:"address"`
	Phone     *string `json:"phone"`
	TaxNumber *string `json:"tax_number"`
	TaxOffice *string `json:"tax_office"`
}

type CreateStationAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type StationAdminResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	StationID *uint  `json:"station_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toStationResponse(s models.Station) StationResponse {
	return StationResponse{
		ID:        s.ID,
		Name:      s.Name,
		Address:   s.Address,
		Phone:     s.Phone,
		TaxNumber: s.TaxNumber,
		TaxOffice: s.TaxOffice,
		CreatedAt: s.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ----------------------------------------
// İSTASYON CRUD (yalnızca super_admin)
// ----------------------------------------

func CreateStationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateStationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İstasyon adı boş olamaz")
		}

		station := models.Station{
			Name:      body.Name,
			Address:   body.Address,
			TaxNumber: strings.TrimSpace(body.TaxNumber),
			TaxOffice: strings.TrimSpace(body.TaxOffice),
		}
		if body.Phone != nil {
			station.Phone = strings.TrimSpace(*body.Phone)
		}

		if err := database.DB.Create(&station).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İstasyon oluşturulamadı")
		}

		// Yeni istasyonun dört yakıt türü için sıfır stok satırları açılır
		for _, ft := range models.AllFuelTypes {
			row := models.FuelStock{StationID: station.ID, FuelType: ft, CurrentStock: 0}
			if err := database.DB.Create(&row).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Stok satırları oluşturulamadı")
			}
		}

		return c.Status(fiber.StatusCreated).JSON(toStationResponse(station))
	}
}

func ListStationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {

		var stations []models.Station
		if err := database.DB.Find(&stations).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İstasyonlar listelenemedi")
		}

		res := make([]StationResponse, 0, len(stations))
		for _, s := range stations {
			res = append(res, toStationResponse(s))
		}

		return c.JSON(res)
	}
}

func GetStationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var station models.Station
		if err := database.DB.First(&station, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "İstasyon bulunamadı")
		}

		return c.JSON(toStationResponse(station))
	}
}

func UpdateStationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var station models.Station
		if err := database.DB.First(&station, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "İstasyon bulunamadı")
		}

		var body UpdateStationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "İstasyon adı boş olamaz")
			}
			station.Name = name
		}

		if body.Address != nil {
			station.Address = *body.Address
		}
		if body.Phone != nil {
			station.Phone = strings.TrimSpace(*body.Phone)
		}
		if body.TaxNumber != nil {
			station.TaxNumber = strings.TrimSpace(*body.TaxNumber)
		}
		if body.TaxOffice != nil {
			station.TaxOffice = strings.TrimSpace(*body.TaxOffice)
		}

		if err := database.DB.Save(&station).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İstasyon güncellenemedi")
		}

		return c.JSON(toStationResponse(station))
	}
}

func DeleteStationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {

		id := c.Params("id")

		if err := database.DB.Delete(&models.Station{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İstasyon silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ----------------------------------------
// İSTASYON ADMİNİ OLUŞTURMA
// ----------------------------------------

func CreateStationAdminHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {

		stationID := c.Params("id")

		// İstasyon kontrolü
		var station models.Station
		if err := database.DB.First(&station, "id = ?", stationID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "İstasyon bulunamadı")
		}

		var body CreateStationAdminRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Email = strings.ToLower(strings.TrimSpace(body.Email))
		body.Name = strings.TrimSpace(body.Name)

		if body.Name == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim, email ve şifre zorunlu")
		}

		// Email kontrolü
		var exist models.User
		if err := database.DB.Where("email = ?", body.Email).First(&exist).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bu email zaten kayıtlı")
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         models.RoleStationAdmin,
			StationID:    &station.ID,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İstasyon admini oluşturulamadı")
		}

		// NOT: Şifre sadece oluşturma sırasında bir kez döndürülür (güvenlik)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":         user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"role":       user.Role,
			"station_id": user.StationID,
			"password":   body.Password, // Sadece oluşturma sırasında (bir kez)
		})
	}
}

// ----------------------------------------
// İSTASYON ADMİNLERİNİ LİSTELE
// GET /api/admin/stations/:id/admins
// ----------------------------------------

func ListStationAdminsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		stationID := c.Params("id")

		var users []models.User
		if err := database.DB.
			Where("station_id = ? AND role = ?", stationID, models.RoleStationAdmin).
			Order("created_at DESC").
			Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Adminler listelenemedi")
		}

		res := make([]StationAdminResponse, 0, len(users))
		for _, u := range users {
			res = append(res, StationAdminResponse{
				ID:        u.ID,
				Name:      u.Name,
				Email:     u.Email,
				Role:      string(u.Role),
				StationID: u.StationID,
				CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
				UpdatedAt: u.UpdatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		return c.JSON(res)
	}
}
