package config

import (
	"log"
	"os"
)

type Config struct {
	HTTPPort        string
	DatabaseDSN     string
	JWTSecret       string
	CORSOrigins     string
	UyumsoftBaseURL string // Uyumsoft e-fatura servis adresi
	UyumsoftMock    bool   // true ise gerçek servis yerine sahte yanıt döner
	StockWarnLevel  float64 // bu litrenin altındaki stoklar uyarı olarak işaretlenir
}

func Load() *Config {
	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:     getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=istasyon port=5432 sslmode=disable"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		CORSOrigins:     getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		UyumsoftBaseURL: getEnv("UYUMSOFT_BASE_URL", "https://efatura-test.uyumsoft.com.tr"),
		UyumsoftMock:    getEnv("UYUMSOFT_MOCK", "true") == "true",
		StockWarnLevel:  1000, // litre
	}

	// Production güvenlik kontrolleri
	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET environment değişkeni tanımlanmamış! Production için zorunludur.")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET en az 32 karakter olmalıdır! Güvenlik riski.")
	}
	if cfg.DatabaseDSN == "host=localhost user=postgres password=postgres dbname=istasyon port=5432 sslmode=disable" {
		log.Println("[WARN] DATABASE_DSN varsayılan değer kullanılıyor, production için mutlaka kendi Postgres bağlantı bilgisini tanımla.")
	}
	if cfg.UyumsoftMock {
		log.Println("[WARN] UYUMSOFT_MOCK aktif, e-fatura gönderimleri sahte yanıtlarla dönecek.")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
