// Package ledger: vardiya mutabakatı, yakıt stoğu ve cari bakiye
// hesaplarının saf çekirdeği. Veritabanına veya HTTP katmanına hiçbir
// bağımlılığı yoktur; handler'lar satırları çekip buraya verir.
package ledger

import (
	"math"
	"strconv"
	"strings"

	"istasyon-backend/internal/models"
)

// OverShort: Vardiya açık/fazla hesabı.
//
//	(nakit + kart + veresiye + havale + sadakat) - otomasyon
//
// Pozitif sonuç fazla, negatif sonuç açık demektir. Bu bir validasyon değil
// saf aritmetik dönüşümdür; negatif girdiler de aynen hesaba girer.
// Sonuç yuvarlanmadan saklanır, iki haneye yuvarlama sadece gösterimde yapılır.
func OverShort(cash, card, credit, bankTransfer, loyalty, automationExpected float64) float64 {
	return (cash + card + credit + bankTransfer + loyalty) - automationExpected
}

// Stock: Tam geçmiş üzerinden stok hesabı, litre cinsinden.
// Toplam alınan - toplam satılan; sıralamadan bağımsız, boş listelerde 0.
// Negatif dönebilir (fazla satış), kırpılmaz.
func Stock(purchaseLiters, saleLiters []float64) float64 {
	var purchased, sold float64
	for _, l := range purchaseLiters {
		purchased += l
	}
	for _, l := range saleLiters {
		sold += l
	}
	return purchased - sold
}

// BalanceEntry: Cari hesaptaki tek bir hareket.
type BalanceEntry struct {
	Type   models.CustomerTransactionType
	Amount float64
}

// Balance: Cari bakiye = toplam borç - toplam ödeme.
// Pozitif bakiye müşterinin borcu var demektir; sıfır veya negatif bakiyede
// borç yoktur. Kalıcı bakiye alanı olmadığından her çağrıda tam geçmiş verilir.
func Balance(entries []BalanceEntry) float64 {
	var debt, payment float64
	for _, e := range entries {
		switch e.Type {
		case models.TransactionTypeDebt:
			debt += e.Amount
		case models.TransactionTypePayment:
			payment += e.Amount
		}
	}
	return debt - payment
}

// BalanceOf: CustomerTransaction satırlarından bakiye hesaplar.
func BalanceOf(txs []models.CustomerTransaction) float64 {
	entries := make([]BalanceEntry, 0, len(txs))
	for _, tx := range txs {
		entries = append(entries, BalanceEntry{Type: tx.Type, Amount: tx.Amount})
	}
	return Balance(entries)
}

// Round2: İki haneye yuvarlama. Sadece gösterim katmanı içindir; saklanan
// tutarlar yuvarlanmadan taşınır.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatAmount: Türkçe para gösterimi (1.234,56). Gösterim içindir,
// sonucu geri parse edip saklanan değerin üzerine yazmak yanlıştır.
func FormatAmount(v float64) string {
	s := strconv.FormatFloat(Round2(v), 'f', 2, 64)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}

	out := b.String() + "," + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

// ParseAmount: Türkçe formatındaki tutarı float'a çevirir (1.234,56 -> 1234.56).
// "TL" eki ve boşluklar temizlenir. Virgül varsa noktalar binlik ayırıcıdır.
// Virgül yoksa tek nokta ancak arkasında tam 3 hane varsa binlik sayılır;
// "700.5" gibi girişler ondalık nokta olarak okunur, 7005'e dönüşmez.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "TL", "")
	s = strings.TrimSpace(s)

	switch {
	case strings.Contains(s, ","):
		// Ondalık ayırıcı virgül, noktalar binlik
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
		// Birden fazla virgül varsa kalanı ParseFloat'a takılır
	case strings.Count(s, ".") == 1:
		if _, frac, _ := strings.Cut(s, "."); len(frac) == 3 {
			// "1.234" binlik gruplama
			s = strings.ReplaceAll(s, ".", "")
		}
		// "700.5", "700.50" ondalık nokta olarak kalır
	case strings.Count(s, ".") > 1:
		// "1.234.567" binlik gruplama
		s = strings.ReplaceAll(s, ".", "")
	}

	return strconv.ParseFloat(s, 64)
}
