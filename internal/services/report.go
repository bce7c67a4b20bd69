package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"medsosmon-backend-go/internal/models"
)

const (
	BucketSudah     = "sudah"
	BucketBelum     = "belum"
	BucketAkumulasi = "akumulasi"
)

// ReportMeta carries the header fields of a rendered report.
type ReportMeta struct {
	UnitName      string
	PlatformLabel string // e.g. "likes Instagram", "komentar TikTok"
	Window        TimeRange
	GeneratedAt   time.Time
	ContentCount  int
	Threshold     int
	Warnings      []string
}

var indonesianDays = []string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

var indonesianMonths = []string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// FormatIndonesianDate renders "Senin, 2 Januari 2006" in Jakarta time.
func FormatIndonesianDate(t time.Time) string {
	local := t.In(jakarta)
	return fmt.Sprintf("%s, %d %s %d",
		indonesianDays[int(local.Weekday())],
		local.Day(),
		indonesianMonths[int(local.Month())-1],
		local.Year(),
	)
}

func FormatIndonesianClock(t time.Time) string {
	return t.In(jakarta).Format("15:04") + " WIB"
}

// RenderTextReport produces the fixed WhatsApp-style text for one bucket
// variant. Pure formatting: both the text and JSON paths share one
// classification result.
func RenderTextReport(class Classification, meta ReportMeta, bucket string) (string, error) {
	bucket = strings.ToLower(strings.TrimSpace(bucket))
	switch bucket {
	case BucketSudah, BucketBelum, BucketAkumulasi:
	default:
		return "", ErrValidation("jenis laporan tidak dikenal: " + bucket)
	}

	totalUsers := len(class.Done) + len(class.Partial) + class.BelumTotal()

	var b strings.Builder
	b.WriteString("*Laporan Kepatuhan Engagement*\n")
	if meta.PlatformLabel != "" {
		b.WriteString("*" + meta.PlatformLabel + "*\n")
	}
	b.WriteString(strings.ToUpper(meta.UnitName) + "\n")
	b.WriteString(FormatIndonesianDate(meta.GeneratedAt) + "\n")
	b.WriteString("Pukul " + FormatIndonesianClock(meta.GeneratedAt) + "\n\n")
	fmt.Fprintf(&b, "Jumlah konten: %d\n", meta.ContentCount)
	fmt.Fprintf(&b, "Jumlah personil: %d\n", totalUsers)
	fmt.Fprintf(&b, "Sudah: %d, Kurang: %d, Belum: %d (belum mengisi data: %d)\n",
		len(class.Done), len(class.Partial), class.BelumTotal(), len(class.NoUsername))

	if bucket == BucketSudah || bucket == BucketAkumulasi {
		writeBucketSection(&b, "Sudah melaksanakan", class.Done)
	}
	if bucket == BucketAkumulasi {
		writeBucketSection(&b, "Kurang melaksanakan", class.Partial)
	}
	if bucket == BucketBelum || bucket == BucketAkumulasi {
		if bucket == BucketBelum {
			writeBucketSection(&b, "Kurang melaksanakan", class.Partial)
		}
		writeBucketSection(&b, "Belum melaksanakan", class.None)
		writeNoUsernameSection(&b, class.NoUsername)
	}
	if len(meta.Warnings) > 0 {
		b.WriteString("\nCatatan:\n")
		for _, warning := range meta.Warnings {
			b.WriteString("- " + warning + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n", nil
}

func writeBucketSection(b *strings.Builder, title string, bucket []ClassifiedPerson) {
	fmt.Fprintf(b, "\n*%s (%d)*\n", title, len(bucket))
	if len(bucket) == 0 {
		b.WriteString("-\n")
		return
	}
	currentDivision := "\x00"
	for _, entry := range bucket {
		division := personDivision(entry.Person)
		if division != currentDivision {
			label := division
			if label == "" {
				label = "LAINNYA"
			}
			b.WriteString(strings.ToUpper(label) + "\n")
			currentDivision = division
		}
		fmt.Fprintf(b, "- %s : %s (%d konten)\n", FormattedName(entry.Person), entry.Username, entry.Count)
	}
}

func writeNoUsernameSection(b *strings.Builder, bucket []ClassifiedPerson) {
	fmt.Fprintf(b, "\n*Belum mengisi data username (%d)*\n", len(bucket))
	if len(bucket) == 0 {
		b.WriteString("-\n")
		return
	}
	currentDivision := "\x00"
	for _, entry := range bucket {
		division := personDivision(entry.Person)
		if division != currentDivision {
			label := division
			if label == "" {
				label = "LAINNYA"
			}
			b.WriteString(strings.ToUpper(label) + "\n")
			currentDivision = division
		}
		fmt.Fprintf(b, "- %s : belum mengisi data\n", FormattedName(entry.Person))
	}
}

// StructuredSummary is the JSON shape the dashboard consumes.
type StructuredSummary struct {
	Totals                 SummaryTotals      `json:"totals"`
	Aggregates             SummaryAggregates  `json:"aggregates"`
	CompliancePerPelaksana []PersonCompliance `json:"compliance_per_pelaksana"`
	Warnings               []string           `json:"warnings,omitempty"`
}

type SummaryTotals struct {
	Users      int `json:"users"`
	Done       int `json:"done"`
	Partial    int `json:"partial"`
	None       int `json:"none"`
	NoUsername int `json:"noUsername"`
	Belum      int `json:"belum"`
}

type SummaryAggregates struct {
	InstagramPosts int `json:"instagramPosts"`
	TiktokPosts    int `json:"tiktokPosts"`
	Likes          int `json:"likes"`
	Comments       int `json:"comments"`
}

type PersonCompliance struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Division       string  `json:"division"`
	Unit           string  `json:"unit"`
	Likes          int     `json:"likes"`
	Comments       int     `json:"comments"`
	TotalActions   int     `json:"totalActions"`
	CompletionRate float64 `json:"completionRate"`
}

// BuildStructuredSummary reduces both platform aggregates against the person
// directory. Buckets here are cross-platform: the expected action count is
// the window's post count over both platforms and the threshold is half of
// it, rounded up.
func BuildStructuredSummary(persons []models.Person, unitName string, instagram, tiktok AggregateResult, warnings []string) StructuredSummary {
	expected := instagram.PostCount + tiktok.PostCount
	threshold := ComplianceThreshold(expected, DefaultThresholdRatio)

	summary := StructuredSummary{
		Aggregates: SummaryAggregates{
			InstagramPosts: instagram.PostCount,
			TiktokPosts:    tiktok.PostCount,
			Likes:          instagram.Total,
			Comments:       tiktok.Total,
		},
		CompliancePerPelaksana: []PersonCompliance{},
		Warnings:               warnings,
	}

	ordered := make([]models.Person, 0, len(persons))
	for _, person := range persons {
		if person.Active {
			ordered = append(ordered, person)
		}
	}
	entries := make([]ClassifiedPerson, 0, len(ordered))
	for _, person := range ordered {
		entries = append(entries, ClassifiedPerson{Person: person})
	}
	sortBucket(entries)

	for _, entry := range entries {
		person := entry.Person
		igUsername := platformUsername(person, PlatformInstagram)
		ttUsername := platformUsername(person, PlatformTiktok)
		likes := 0
		if igUsername != "" {
			likes = instagram.ByUsername[igUsername]
		}
		comments := 0
		if ttUsername != "" {
			comments = tiktok.ByUsername[ttUsername]
		}
		totalActions := likes + comments
		rate := 0.0
		if expected > 0 {
			rate = roundRate(float64(totalActions) / float64(expected))
		}

		summary.Totals.Users++
		switch {
		case person.Exception:
			summary.Totals.Done++
		case igUsername == "" && ttUsername == "":
			summary.Totals.NoUsername++
		case totalActions >= threshold:
			summary.Totals.Done++
		case totalActions > 0:
			summary.Totals.Partial++
		default:
			summary.Totals.None++
		}

		unit := unitName
		if person.UnitID != nil && *person.UnitID != "" {
			unit = *person.UnitID
		}
		summary.CompliancePerPelaksana = append(summary.CompliancePerPelaksana, PersonCompliance{
			ID:             person.ID,
			Name:           FormattedName(person),
			Division:       personDivision(person),
			Unit:           unit,
			Likes:          likes,
			Comments:       comments,
			TotalActions:   totalActions,
			CompletionRate: rate,
		})
	}
	summary.Totals.Belum = summary.Totals.None + summary.Totals.NoUsername
	return summary
}

func roundRate(rate float64) float64 {
	return math.Round(rate*10000) / 10000
}
