package invoice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"istasyon-backend/internal/config"
	"istasyon-backend/internal/models"
)

// UyumsoftClient: Uyumsoft e-fatura servisi istemcisi. Mock modunda ağa
// hiç çıkmaz, sahte belge numaralarıyla başarılı yanıt döner; entegrasyon
// hesabı olmadan tüm akış uçtan uca çalıştırılabilir.
type UyumsoftClient struct {
	BaseURL string
	Mock    bool
	HTTP    *http.Client
}

func NewUyumsoftClient(cfg *config.Config) *UyumsoftClient {
	return &UyumsoftClient{
		BaseURL: cfg.UyumsoftBaseURL,
		Mock:    cfg.UyumsoftMock,
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SubmitResult: Gönderim veya durum sorgusunun sonucu.
type SubmitResult struct {
	DocumentID string
	Status     models.InvoiceStatus
}

type submitRequest struct {
	InvoiceNumber string  `json:"invoice_number"`
	TotalAmount   float64 `json:"total_amount"`
	IssueDate     string  `json:"issue_date"`
	TestMode      bool    `json:"test_mode"`
}

type submitResponse struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	Error      string `json:"error"`
}

func (uc *UyumsoftClient) post(path string, acc models.UyumsoftAccount, inv models.Invoice) (*SubmitResult, error) {
	payload := submitRequest{
		InvoiceNumber: inv.InvoiceNumber,
		TotalAmount:   inv.TotalAmount,
		IssueDate:     inv.IssueDate.Format("2006-01-02"),
		TestMode:      acc.TestMode,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("istek gövdesi oluşturulamadı: %w", err)
	}

	req, err := http.NewRequest("POST", uc.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("istek oluşturulamadı: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(acc.Username, acc.Password)

	resp, err := uc.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Uyumsoft servisine ulaşılamadı: %w", err)
	}
	defer resp.Body.Close()

	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("Uyumsoft yanıtı çözülemedi: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := out.Error
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("Uyumsoft gönderimi reddetti: %s", msg)
	}

	return &SubmitResult{
		DocumentID: out.DocumentID,
		Status:     models.InvoiceStatus(out.Status),
	}, nil
}

// SendInvoice: Faturayı Uyumsoft'a iletir (status: sent).
func (uc *UyumsoftClient) SendInvoice(acc models.UyumsoftAccount, inv models.Invoice) (*SubmitResult, error) {
	if uc.Mock {
		return &SubmitResult{
			DocumentID: fmt.Sprintf("MOCK-UYM-%d-%s", inv.StationID, inv.InvoiceNumber),
			Status:     models.InvoiceStatusSent,
		}, nil
	}
	return uc.post("/api/invoices/send", acc, inv)
}

// SendToGIB: Uyumsoft üzerinden GİB'e iletir (status: sent_to_gib).
// Önce Uyumsoft'a gönderilmiş olması gerekir, bu kontrol handler'da yapılır.
func (uc *UyumsoftClient) SendToGIB(acc models.UyumsoftAccount, inv models.Invoice) (*SubmitResult, error) {
	if uc.Mock {
		return &SubmitResult{
			DocumentID: fmt.Sprintf("MOCK-GIB-%d-%s", inv.StationID, inv.InvoiceNumber),
			Status:     models.InvoiceStatusSentToGIB,
		}, nil
	}
	return uc.post("/api/invoices/send-to-gib", acc, inv)
}

// QueryStatus: Belge durumunu Uyumsoft'tan sorgular. Mock modunda kayıtlı
// durumu aynen yansıtır.
func (uc *UyumsoftClient) QueryStatus(acc models.UyumsoftAccount, inv models.Invoice) (*SubmitResult, error) {
	if uc.Mock {
		return &SubmitResult{DocumentID: inv.UyumsoftID, Status: inv.Status}, nil
	}

	req, err := http.NewRequest("GET", uc.BaseURL+"/api/invoices/status/"+inv.UyumsoftID, nil)
	if err != nil {
		return nil, fmt.Errorf("istek oluşturulamadı: %w", err)
	}
	req.SetBasicAuth(acc.Username, acc.Password)

	resp, err := uc.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Uyumsoft servisine ulaşılamadı: %w", err)
	}
	defer resp.Body.Close()

	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("Uyumsoft yanıtı çözülemedi: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("durum sorgusu başarısız: %s", resp.Status)
	}

	return &SubmitResult{
		DocumentID: out.DocumentID,
		Status:     models.InvoiceStatus(out.Status),
	}, nil
}
