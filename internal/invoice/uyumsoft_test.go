package invoice

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"istasyon-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInvoice() models.Invoice {
	return models.Invoice{
		StationID:     3,
		InvoiceNumber: "FTR-2025-0001",
		TotalAmount:   1234.56,
		IssueDate:     time.Date(2025, 12, 9, 0, 0, 0, 0, time.UTC),
		Status:        models.InvoiceStatusDraft,
	}
}

func testAccount() models.UyumsoftAccount {
	return models.UyumsoftAccount{
		StationID: 3,
		Username:  "istasyon3",
		Password:  "gizli",
		TestMode:  true,
	}
}

func TestSendInvoiceMockMode(t *testing.T) {
	// Mock modunda ağa çıkılmaz, sentetik belge numarası döner
	uc := &UyumsoftClient{Mock: true}

	result, err := uc.SendInvoice(testAccount(), testInvoice())
	require.NoError(t, err)

	assert.Equal(t, "MOCK-UYM-3-FTR-2025-0001", result.DocumentID)
	assert.Equal(t, models.InvoiceStatusSent, result.Status)
}

func TestSendToGIBMockMode(t *testing.T) {
	uc := &UyumsoftClient{Mock: true}

	result, err := uc.SendToGIB(testAccount(), testInvoice())
	require.NoError(t, err)

	assert.Equal(t, "MOCK-GIB-3-FTR-2025-0001", result.DocumentID)
	assert.Equal(t, models.InvoiceStatusSentToGIB, result.Status)
}

func TestQueryStatusMockModeReflectsStoredStatus(t *testing.T) {
	uc := &UyumsoftClient{Mock: true}

	inv := testInvoice()
	inv.Status = models.InvoiceStatusSent
	inv.UyumsoftID = "MOCK-UYM-3-FTR-2025-0001"

	result, err := uc.QueryStatus(testAccount(), inv)
	require.NoError(t, err)

	assert.Equal(t, inv.UyumsoftID, result.DocumentID)
	assert.Equal(t, models.InvoiceStatusSent, result.Status)
}

func TestSendInvoiceRealModePostsPayload(t *testing.T) {
	var gotPath string
	var gotBody submitRequest
	var gotUser, gotPass string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		_ = json.NewEncoder(w).Encode(submitResponse{
			DocumentID: "UYM-12345",
			Status:     string(models.InvoiceStatusSent),
		})
	}))
	defer srv.Close()

	uc := &UyumsoftClient{
		BaseURL: srv.URL,
		Mock:    false,
		HTTP:    srv.Client(),
	}

	result, err := uc.SendInvoice(testAccount(), testInvoice())
	require.NoError(t, err)

	assert.Equal(t, "/api/invoices/send", gotPath)
	assert.Equal(t, "istasyon3", gotUser)
	assert.Equal(t, "gizli", gotPass)
	assert.Equal(t, "FTR-2025-0001", gotBody.InvoiceNumber)
	assert.Equal(t, 1234.56, gotBody.TotalAmount)
	assert.Equal(t, "2025-12-09", gotBody.IssueDate)
	assert.True(t, gotBody.TestMode)

	assert.Equal(t, "UYM-12345", result.DocumentID)
	assert.Equal(t, models.InvoiceStatusSent, result.Status)
}

func TestSendInvoiceRealModeServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(submitResponse{
			Error: "fatura numarası mükerrer",
		})
	}))
	defer srv.Close()

	uc := &UyumsoftClient{
		BaseURL: srv.URL,
		Mock:    false,
		HTTP:    srv.Client(),
	}

	_, err := uc.SendInvoice(testAccount(), testInvoice())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fatura numarası mükerrer")
}

func TestQueryStatusRealMode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/invoices/status/UYM-12345", r.URL.Path)
		_ = json.NewEncoder(w).Encode(submitResponse{
			DocumentID: "UYM-12345",
			Status:     string(models.InvoiceStatusSentToGIB),
		})
	}))
	defer srv.Close()

	uc := &UyumsoftClient{
		BaseURL: srv.URL,
		Mock:    false,
		HTTP:    srv.Client(),
	}

	inv := testInvoice()
	inv.UyumsoftID = "UYM-12345"
	inv.Status = models.InvoiceStatusSent

	result, err := uc.QueryStatus(testAccount(), inv)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusSentToGIB, result.Status)
}
