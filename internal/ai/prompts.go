package ai

import (
	"fmt"
	"strings"

	"github.com/iamgilwell/hemat/internal/power"
)

const (
	defaultCategory = "umum"
	defaultStyle    = "informatif dan mudah dipahami"
)

const advisorSystem = `Kamu adalah asisten hemat energi untuk rumah tangga di Indonesia. Jawab dalam bahasa Indonesia.`

const writerSystem = `Kamu adalah penulis artikel edukasi hemat energi untuk pembaca Indonesia.`

var fallbackEnergyTips = []string{
	"Gunakan lampu LED untuk menghemat energi hingga 80%",
	"Atur suhu AC pada 24-26°C untuk efisiensi optimal",
	"Matikan perangkat elektronik saat tidak digunakan",
	"Gunakan timer untuk perangkat yang sering lupa dimatikan",
	"Pertimbangkan penggunaan panel surya untuk energi terbarukan",
}

var fallbackEnvironmentalTips = []string{
	"Kurangi penggunaan AC dengan ventilasi alami",
	"Pilih perangkat dengan label Energy Star",
	"Gunakan air dingin untuk mencuci pakaian",
	"Manfaatkan cahaya alami di siang hari",
	"Lakukan audit energi rumah secara berkala",
}

func buildAnalysisPrompt(req AnalysisRequest, monthlyCost float64) string {
	var sb strings.Builder
	sb.WriteString("Analisis konsumsi listrik rumah tangga berikut:\n\n")
	sb.WriteString("PERANGKAT:\n")
	for _, d := range req.Devices {
		sb.WriteString(fmt.Sprintf("%s: %gW, %gh/hari, %d unit, %.2f kWh/bulan (kategori: %s)\n",
			d.Name, d.PowerWatts, d.DailyUsageHours, d.Quantity, d.MonthlyKWh, power.Classify(d.Name)))
	}

	sb.WriteString(fmt.Sprintf("\nTOTAL KONSUMSI: %.2f kWh/bulan\n", req.MonthlyTotalKWh))
	sb.WriteString(fmt.Sprintf("ESTIMASI BIAYA: %s/bulan\n\n", power.FormatRupiah(monthlyCost)))

	sb.WriteString(`Berikan analisis dalam format JSON dengan struktur berikut:
{
  "energySavingTips": [
    "tip hemat energi 1",
    "tip hemat energi 2",
    "tip hemat energi 3",
    "tip hemat energi 4",
    "tip hemat energi 5"
  ],
  "environmentalTips": [
    "tip ramah lingkungan 1",
    "tip ramah lingkungan 2",
    "tip ramah lingkungan 3",
    "tip ramah lingkungan 4",
    "tip ramah lingkungan 5"
  ]
}

Tips harus spesifik, praktis, dan relevan dengan perangkat yang digunakan. Fokus pada:
- Pengaturan suhu AC yang optimal
- Penggunaan lampu LED
- Mematikan perangkat standby
- Waktu penggunaan yang efisien
- Alternatif energi terbarukan
- Dampak lingkungan dan cara menguranginya

PENTING: Berikan hanya JSON murni tanpa markdown formatting, tanpa backticks, tanpa penjelasan tambahan.
`)
	return sb.String()
}

func buildDraftPrompt(req DraftRequest) string {
	return fmt.Sprintf(`Buatlah artikel edukasi tentang hemat energi dengan topik: "%s".

Kategori: %s
Gaya penulisan: %s

Artikel harus:
1. Ditulis dalam bahasa Indonesia yang baik dan benar
2. Fokus pada tips praktis dan actionable
3. Menggunakan contoh yang relevan dengan kehidupan sehari-hari di Indonesia
4. Panjang artikel sekitar 500-800 kata
5. Menggunakan format yang mudah dibaca dengan poin-poin dan subjudul
6. Menyertakan manfaat lingkungan dan ekonomi
7. Memberikan tips yang dapat diterapkan langsung

Format output:
- Judul yang menarik
- Ringkasan singkat (1-2 kalimat)
- Konten artikel lengkap dengan subjudul dan poin-poin
- 3-5 tags yang relevan (pisahkan dengan koma)

Pastikan informasi akurat dan bermanfaat untuk pembaca Indonesia.`, req.Topic, req.Category, req.Style)
}
