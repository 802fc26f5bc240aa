package audit

import (
	"encoding/json"
	"testing"
	"time"

	"istasyon-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckUndoableNormalActions(t *testing.T) {
	for _, action := range []models.AuditAction{
		models.AuditActionCreate,
		models.AuditActionUpdate,
		models.AuditActionDelete,
	} {
		log := models.AuditLog{EntityType: "shift", EntityID: 42, Action: action}
		assert.NoError(t, CheckUndoable(log), "action %s", action)
	}
}

func TestCheckUndoableRejectsAlreadyUndone(t *testing.T) {
	log := models.AuditLog{
		EntityType: "shift",
		EntityID:   42,
		Action:     models.AuditActionCreate,
		IsUndone:   true,
	}
	err := CheckUndoable(log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zaten geri alınmış")
}

func TestCheckUndoableRejectsImportSummary(t *testing.T) {
	// Excel aktarım özeti tek bir entity'ye bağlı değildir; undo edilmeye
	// çalışılırsa açık bir hata dönmeli, sessizce "başarılı" olmamalı
	log := models.AuditLog{
		EntityType: "customer_transaction",
		EntityID:   0,
		Action:     models.AuditActionImport,
	}
	err := CheckUndoable(log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geri alınamaz")
}

func TestCheckUndoableRejectsUndoLogs(t *testing.T) {
	log := models.AuditLog{
		EntityType: "shift",
		EntityID:   42,
		Action:     models.AuditActionUndo,
	}
	err := CheckUndoable(log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geri alınamaz")
}

func TestCheckUndoableRejectsZeroEntityID(t *testing.T) {
	// EntityID 0 ile silme denemesi hiçbir satırı etkilemeden başarılı
	// görünürdü; bu kayıtlar geri alınamaz sayılır
	log := models.AuditLog{
		EntityType: "customer_transaction",
		EntityID:   0,
		Action:     models.AuditActionCreate,
	}
	err := CheckUndoable(log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geri alınamaz")
}

func TestResetCustomerIDsClearsAssociations(t *testing.T) {
	// Silinen müşterinin snapshot'ı cascade ile giden hareketleri de taşır;
	// geri oluşturmadan önce tüm ID'ler sıfırlanır ki GORM müşteriyi ve
	// hareketlerini yeni kayıtlar olarak, doğru CustomerID ile bağlasın
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	original := models.Customer{
		ID:        7,
		StationID: 3,
		Name:      "Yılmaz Nakliyat",
		Transactions: []models.CustomerTransaction{
			{ID: 100, StationID: 3, CustomerID: 7, Type: models.TransactionTypeDebt, Amount: 1500, Date: date},
			{ID: 101, StationID: 3, CustomerID: 7, Type: models.TransactionTypePayment, Amount: 500, Date: date},
		},
	}

	// Audit akışındaki gibi JSON üzerinden gidip gelir
	data, err := json.Marshal(original)
	require.NoError(t, err)

	var restored models.Customer
	require.NoError(t, json.Unmarshal(data, &restored))
	require.Len(t, restored.Transactions, 2)

	resetCustomerIDs(&restored)

	assert.Equal(t, uint(0), restored.ID)
	for i, tx := range restored.Transactions {
		assert.Equal(t, uint(0), tx.ID, "hareket %d", i)
		assert.Equal(t, uint(0), tx.CustomerID, "hareket %d", i)
	}

	// Hareket içerikleri korunur
	assert.Equal(t, 1500.0, restored.Transactions[0].Amount)
	assert.Equal(t, models.TransactionTypePayment, restored.Transactions[1].Type)
	assert.Equal(t, uint(3), restored.Transactions[0].StationID)
}
