package ledger

import (
	"math/rand"
	"testing"

	"istasyon-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverShortExactReconciliation(t *testing.T) {
	// 1500 nakit + 2500 kart = otomasyonun beklediği 4000
	got := OverShort(1500, 2500, 0, 0, 0, 4000)
	assert.Equal(t, 0.0, got)
}

func TestOverShortShortage(t *testing.T) {
	// 300 TL açık
	got := OverShort(1200, 2500, 0, 0, 0, 4000)
	assert.Equal(t, -300.0, got)
}

func TestOverShortSurplus(t *testing.T) {
	got := OverShort(2000, 2500, 0, 0, 0, 4000)
	assert.Equal(t, 500.0, got)
}

func TestOverShortAllChannels(t *testing.T) {
	got := OverShort(100, 200, 300, 400, 500, 1000)
	assert.Equal(t, 500.0, got)
}

func TestOverShortAcceptsNegativeInputs(t *testing.T) {
	// Saf aritmetik dönüşüm, validasyon değil: negatif girdi reddedilmez
	got := OverShort(-100, 0, 0, 0, 0, 0)
	assert.Equal(t, -100.0, got)
}

func TestOverShortCommutativeInCollectedFields(t *testing.T) {
	// Beş tahsilat alanı toplama girdiği için permütasyon sonucu değiştirmez
	vals := []float64{123.45, 67.89, 1000, 0.01, 42}
	expected := OverShort(vals[0], vals[1], vals[2], vals[3], vals[4], 500)

	perms := [][]float64{
		{vals[1], vals[0], vals[2], vals[3], vals[4]},
		{vals[4], vals[3], vals[2], vals[1], vals[0]},
		{vals[2], vals[4], vals[0], vals[1], vals[3]},
	}
	for _, p := range perms {
		// Float toplamada sıra bit düzeyinde fark yaratabilir, matematiksel
		// eşitlik tolerans ile doğrulanır
		assert.InDelta(t, expected, OverShort(p[0], p[1], p[2], p[3], p[4], 500), 1e-9)
	}
}

func TestOverShortLinearInEachField(t *testing.T) {
	base := OverShort(100, 200, 300, 400, 500, 1000)
	assert.Equal(t, base+50, OverShort(150, 200, 300, 400, 500, 1000))
	assert.Equal(t, base+50, OverShort(100, 250, 300, 400, 500, 1000))
	assert.Equal(t, base-50, OverShort(100, 200, 300, 400, 500, 1050))
}

func TestStockEmptyLists(t *testing.T) {
	assert.Equal(t, 0.0, Stock(nil, nil))
	assert.Equal(t, 0.0, Stock([]float64{}, []float64{}))
}

func TestStockMotorinScenario(t *testing.T) {
	// 1000L + 500L alım, 800L satış -> 700L stok
	got := Stock([]float64{1000, 500}, []float64{800})
	assert.Equal(t, 700.0, got)
}

func TestStockCanGoNegative(t *testing.T) {
	// Fazla satış kırpılmaz
	got := Stock([]float64{100}, []float64{150})
	assert.Equal(t, -50.0, got)
}

func TestStockOrderIndependent(t *testing.T) {
	purchases := []float64{10, 250.5, 3, 99.9, 1000}
	sales := []float64{500, 0.4, 62}

	expected := Stock(purchases, sales)

	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		p := append([]float64(nil), purchases...)
		s := append([]float64(nil), sales...)
		rnd.Shuffle(len(p), func(a, b int) { p[a], p[b] = p[b], p[a] })
		rnd.Shuffle(len(s), func(a, b int) { s[a], s[b] = s[b], s[a] })
		assert.InDelta(t, expected, Stock(p, s), 1e-9)
	}
}

func TestBalanceEmptyHistory(t *testing.T) {
	assert.Equal(t, 0.0, Balance(nil))
}

func TestBalanceDebtThenPayments(t *testing.T) {
	entries := []BalanceEntry{
		{Type: models.TransactionTypeDebt, Amount: 100},
		{Type: models.TransactionTypePayment, Amount: 40},
	}
	assert.Equal(t, 60.0, Balance(entries))

	// 100 TL daha ödeme: bakiye eksiye düşer (borç yok)
	entries = append(entries, BalanceEntry{Type: models.TransactionTypePayment, Amount: 100})
	assert.Equal(t, -40.0, Balance(entries))
}

func TestBalanceOfTransactions(t *testing.T) {
	txs := []models.CustomerTransaction{
		{Type: models.TransactionTypeDebt, Amount: 250.75},
		{Type: models.TransactionTypeDebt, Amount: 100},
		{Type: models.TransactionTypePayment, Amount: 50.75},
	}
	assert.Equal(t, 300.0, BalanceOf(txs))
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0,00"},
		{1234.56, "1.234,56"},
		{1234567.891, "1.234.567,89"},
		{-300, "-300,00"},
		{-1234.5, "-1.234,50"},
		{0.005, "0,01"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatAmount(tc.in), "FormatAmount(%v)", tc.in)
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1.234,56", 1234.56},
		{"1.234,56 TL", 1234.56},
		{"0,00", 0},
		{"-300,00", -300},
		{"700", 700},
		// Virgülsüz girişlerde nokta: arkasında 3 hane varsa binlik,
		// yoksa ondalık ayırıcı
		{"700.5", 700.5},
		{"700.50", 700.5},
		{"1.234", 1234},
		{"1.234.567", 1234567},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		require.NoError(t, err, "ParseAmount(%q)", tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestParseAmountInvalid(t *testing.T) {
	for _, in := range []string{"abc", "1,2,3"} {
		_, err := ParseAmount(in)
		assert.Error(t, err, "ParseAmount(%q)", in)
	}
}

func TestDisplayRoundingDoesNotContaminateStoredValue(t *testing.T) {
	// Saklanan değer yuvarlanmadan taşınır; gösterim için format/parse
	// turu saklanan değeri değiştirmemeli
	stored := OverShort(0.1, 0.2, 0, 0, 0, 0) // 0.30000000000000004

	display := FormatAmount(stored)
	assert.Equal(t, "0,30", display)

	parsed, err := ParseAmount(display)
	require.NoError(t, err)
	assert.Equal(t, Round2(stored), parsed)

	// Sonraki hesaplar yuvarlanmış gösterim değerinden değil, saklanan
	// değerden devam eder. Beklenti de çalışma zamanı float'larıyla kurulur,
	// sabit ifadeyle değil (derleyici sabitleri tam hesaplar)
	next := OverShort(stored, 0, 0, 0, 0, 0.1)
	assert.Equal(t, stored-0.1, next)
	assert.InDelta(t, 0.2, next, 1e-9)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.3, Round2(0.1+0.2))
	assert.Equal(t, -12.35, Round2(-12.346))
	assert.Equal(t, 100.0, Round2(100))
}
