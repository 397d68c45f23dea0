package billing

import (
	"math"
	"sort"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mamadbah2/hostel/internal/domain/models"
)

const labelLayout = "January 2006"

var amountPrinter = message.NewPrinter(language.English)

// DisplayEntry is a billing history line ready for a client.
type DisplayEntry struct {
	Date         time.Time `json:"date"`
	Label        string    `json:"label"`
	PresentDays  int       `json:"presentDays"`
	Amount       float64   `json:"amount"`
	StudentShare string    `json:"studentShare"`
	RatePerDay   string    `json:"ratePerDay"`
	TotalExpense string    `json:"totalExpense"`
}

// FormatHistory drops unusable entries, orders the rest most recent first and
// renders amounts with currency. It returns nil when nothing is left.
func FormatHistory(entries []models.BillingEntry, currency string) []DisplayEntry {
	valid := make([]models.BillingEntry, 0, len(entries))
	for _, entry := range entries {
		if isDisplayable(entry) {
			valid = append(valid, entry)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Date.After(valid[j].Date)
	})

	out := make([]DisplayEntry, 0, len(valid))
	for _, entry := range valid {
		out = append(out, DisplayEntry{
			Date:         entry.Date,
			Label:        entry.Date.UTC().Format(labelLayout),
			PresentDays:  entry.PresentDays,
			Amount:       entry.StudentShare,
			StudentShare: FormatAmount(currency, entry.StudentShare),
			RatePerDay:   FormatAmount(currency, finiteOrZero(entry.RatePerDay)),
			TotalExpense: FormatAmount(currency, finiteOrZero(entry.TotalExpense)),
		})
	}
	return out
}

func isDisplayable(entry models.BillingEntry) bool {
	if entry.Date.IsZero() {
		return false
	}
	share := entry.StudentShare
	return !math.IsNaN(share) && !math.IsInf(share, 0) && share >= 0
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// FormatAmount renders v with two decimals and thousands separators.
func FormatAmount(currency string, v float64) string {
	return currency + amountPrinter.Sprintf("%.2f", v)
}
