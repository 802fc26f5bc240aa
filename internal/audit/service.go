package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"istasyon-backend/internal/database"
	"istasyon-backend/internal/models"
)

// OnFuelLedgerChange: Yakıt defterine dokunan bir undo sonrası stok
// önbelleğini tazelemek için main tarafından bağlanır (import döngüsünü
// kırmak için fonksiyon değişkeni).
var OnFuelLedgerChange func(stationID uint) error

type LogOptions struct {
	StationID   *uint
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(opts LogOptions) error {
	// PostgreSQL jsonb için boş string yerine "null" JSON string'i kullanmalıyız
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		StationID:   opts.StationID,
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
		Undone:      false,
		IsUndone:    false,
	}

	if err := database.DB.Create(&log).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}

	return nil
}

// CheckUndoable - Log geri alınabilir mi? Toplu import özetleri ve undo
// kayıtları tek bir entity'ye bağlı olmadığından geri alınamaz; EntityID 0
// olan bir kaydı silmeye çalışmak sessizce hiçbir satırı etkilemezdi.
func CheckUndoable(log models.AuditLog) error {
	if log.IsUndone {
		return fmt.Errorf("bu işlem zaten geri alınmış")
	}
	switch log.Action {
	case models.AuditActionCreate, models.AuditActionUpdate, models.AuditActionDelete:
	default:
		return fmt.Errorf("bu işlem türü geri alınamaz")
	}
	if log.EntityID == 0 {
		return fmt.Errorf("bu işlem geri alınamaz")
	}
	return nil
}

// UndoLog - Bir audit log'u undo et
func UndoLog(logID uint, userID uint, userName string) error {
	var log models.AuditLog
	if err := database.DB.First(&log, "id = ?", logID).Error; err != nil {
		return fmt.Errorf("log bulunamadı: %w", err)
	}

	if err := CheckUndoable(log); err != nil {
		return err
	}

	// Undo işlemini gerçekleştir
	switch log.Action {
	case models.AuditActionCreate:
		// Create ise entity'yi sil
		if err := deleteEntity(log.EntityType, log.EntityID); err != nil {
			return fmt.Errorf("entity silinemedi: %w", err)
		}

	case models.AuditActionUpdate:
		// Update ise önceki haline geri döndür
		if err := restoreEntity(log.EntityType, log.EntityID, log.BeforeData); err != nil {
			return fmt.Errorf("entity geri yüklenemedi: %w", err)
		}

	case models.AuditActionDelete:
		// Delete ise entity'yi geri oluştur (create)
		if err := recreateEntity(log.EntityType, log.AfterData); err != nil {
			return fmt.Errorf("entity geri oluşturulamadı: %w", err)
		}

	default:
		return fmt.Errorf("bu işlem türü geri alınamaz")
	}

	// Yakıt defteri değiştiyse stok önbelleği de tazelenmeli
	if (log.EntityType == "fuel_purchase" || log.EntityType == "fuel_sale") &&
		log.StationID != nil && OnFuelLedgerChange != nil {
		if err := OnFuelLedgerChange(*log.StationID); err != nil {
			fmt.Printf("Stok yeniden hesaplanamadı: %v\n", err)
		}
	}

	// Log'u işaretle
	now := time.Now()
	log.IsUndone = true
	log.UndoneBy = &userID
	log.UndoneAt = &now

	if err := database.DB.Save(&log).Error; err != nil {
		return fmt.Errorf("log güncellenemedi: %w", err)
	}

	// Undo işlemi için yeni bir log oluştur
	undoLog := models.AuditLog{
		StationID:   log.StationID,
		UserID:      userID,
		UserName:    userName,
		EntityType:  log.EntityType,
		EntityID:    log.EntityID,
		Action:      models.AuditActionUndo,
		Description: fmt.Sprintf("Geri alındı: %s", log.Description),
		BeforeData:  log.AfterData,
		AfterData:   log.BeforeData,
		Undone:      true,
		IsUndone:    false,
	}

	if err := database.DB.Create(&undoLog).Error; err != nil {
		return fmt.Errorf("undo log kaydedilemedi: %w", err)
	}

	return nil
}

// deleteEntity - Entity'yi sil
func deleteEntity(entityType string, entityID uint) error {
	switch entityType {
	case "shift":
		return database.DB.Delete(&models.Shift{}, "id = ?", entityID).Error
	case "fuel_purchase":
		return database.DB.Delete(&models.FuelPurchase{}, "id = ?", entityID).Error
	case "fuel_sale":
		return database.DB.Delete(&models.FuelSale{}, "id = ?", entityID).Error
	case "customer":
		return database.DB.Delete(&models.Customer{}, "id = ?", entityID).Error
	case "customer_transaction":
		return database.DB.Delete(&models.CustomerTransaction{}, "id = ?", entityID).Error
	case "invoice":
		return database.DB.Delete(&models.Invoice{}, "id = ?", entityID).Error
	default:
		return fmt.Errorf("bilinmeyen entity tipi: %s", entityType)
	}
}

// recreateEntity - Silinen entity'yi geri oluştur
func recreateEntity(entityType string, dataJSON string) error {
	switch entityType {
	case "shift":
		var shift models.Shift
		if err := json.Unmarshal([]byte(dataJSON), &shift); err != nil {
			return err
		}
		shift.ID = 0 // Yeni entity oluştur
		return database.DB.Create(&shift).Error

	case "fuel_purchase":
		var purchase models.FuelPurchase
		if err := json.Unmarshal([]byte(dataJSON), &purchase); err != nil {
			return err
		}
		purchase.ID = 0
		return database.DB.Create(&purchase).Error

	case "fuel_sale":
		var sale models.FuelSale
		if err := json.Unmarshal([]byte(dataJSON), &sale); err != nil {
			return err
		}
		sale.ID = 0
		return database.DB.Create(&sale).Error

	case "customer":
		var customer models.Customer
		if err := json.Unmarshal([]byte(dataJSON), &customer); err != nil {
			return err
		}
		// Silme cascade ile hareketleri de götürdüğünden snapshot'taki
		// hareketler müşteriyle birlikte geri oluşturulur
		resetCustomerIDs(&customer)
		return database.DB.Create(&customer).Error

	case "customer_transaction":
		var tx models.CustomerTransaction
		if err := json.Unmarshal([]byte(dataJSON), &tx); err != nil {
			return err
		}
		tx.ID = 0
		return database.DB.Create(&tx).Error

	case "invoice":
		var invoice models.Invoice
		if err := json.Unmarshal([]byte(dataJSON), &invoice); err != nil {
			return err
		}
		invoice.ID = 0
		return database.DB.Create(&invoice).Error

	default:
		return fmt.Errorf("bilinmeyen entity tipi: %s", entityType)
	}
}

// resetCustomerIDs - Snapshot'tan dönen müşteri ve hareketlerinin ID'lerini
// sıfırlar; GORM Create müşteriyi ve bağlı hareketleri yeni ID'lerle birlikte
// oluşturur (CustomerID'yi yeni kayda kendisi bağlar).
func resetCustomerIDs(customer *models.Customer) {
	customer.ID = 0
	for i := range customer.Transactions {
		customer.Transactions[i].ID = 0
		customer.Transactions[i].CustomerID = 0
	}
}

// restoreEntity - Entity'yi geri yükle (update)
func restoreEntity(entityType string, entityID uint, dataJSON string) error {
	switch entityType {
	case "shift":
		var shift models.Shift
		if err := json.Unmarshal([]byte(dataJSON), &shift); err != nil {
			return err
		}
		return database.DB.Model(&models.Shift{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"station_id":       shift.StationID,
			"personnel_name":   shift.PersonnelName,
			"shift_no":         shift.ShiftNo,
			"start_time":       shift.StartTime,
			"end_time":         shift.EndTime,
			"cash_sales":       shift.CashSales,
			"card_sales":       shift.CardSales,
			"veresiye":         shift.Veresiye,
			"bank_transfers":   shift.BankTransfers,
			"loyalty_card":     shift.LoyaltyCard,
			"automation_total": shift.AutomationTotal,
			"over_short":       shift.OverShort,
		}).Error

	case "fuel_purchase":
		var purchase models.FuelPurchase
		if err := json.Unmarshal([]byte(dataJSON), &purchase); err != nil {
			return err
		}
		return database.DB.Model(&models.FuelPurchase{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"station_id":      purchase.StationID,
			"fuel_type":       purchase.FuelType,
			"liters":          purchase.Liters,
			"price_per_liter": purchase.PricePerLiter,
			"total_amount":    purchase.TotalAmount,
			"purchase_date":   purchase.PurchaseDate,
			"supplier":        purchase.Supplier,
		}).Error

	case "fuel_sale":
		var sale models.FuelSale
		if err := json.Unmarshal([]byte(dataJSON), &sale); err != nil {
			return err
		}
		return database.DB.Model(&models.FuelSale{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"station_id":      sale.StationID,
			"fuel_type":       sale.FuelType,
			"liters":          sale.Liters,
			"price_per_liter": sale.PricePerLiter,
			"total_amount":    sale.TotalAmount,
			"sale_time":       sale.SaleTime,
		}).Error

	case "customer":
		var customer models.Customer
		if err := json.Unmarshal([]byte(dataJSON), &customer); err != nil {
			return err
		}
		return database.DB.Model(&models.Customer{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"station_id": customer.StationID,
			"name":       customer.Name,
			"phone":      customer.Phone,
			"tax_number": customer.TaxNumber,
			"address":    customer.Address,
		}).Error

	case "customer_transaction":
		var tx models.CustomerTransaction
		if err := json.Unmarshal([]byte(dataJSON), &tx); err != nil {
			return err
		}
		return database.DB.Model(&models.CustomerTransaction{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"station_id":  tx.StationID,
			"customer_id": tx.CustomerID,
			"type":        tx.Type,
			"amount":      tx.Amount,
			"description": tx.Description,
			"date":        tx.Date,
		}).Error

	case "invoice":
		var invoice models.Invoice
		if err := json.Unmarshal([]byte(dataJSON), &invoice); err != nil {
			return err
		}
		return database.DB.Model(&models.Invoice{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"station_id":     invoice.StationID,
			"customer_id":    invoice.CustomerID,
			"invoice_number": invoice.InvoiceNumber,
			"total_amount":   invoice.TotalAmount,
			"issue_date":     invoice.IssueDate,
			"status":         invoice.Status,
			"uyumsoft_id":    invoice.UyumsoftID,
			"error_message":  invoice.ErrorMessage,
		}).Error

	default:
		return fmt.Errorf("bilinmeyen entity tipi: %s", entityType)
	}
}
