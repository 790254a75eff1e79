package pipeline

import "github.com/jengzang/epidash-backend-go/internal/models"

// FatalityRate returns deaths as a percentage of cases.
// The rate is undefined (nil) when cases is zero or negative.
func FatalityRate(deaths, cases float64) *float64 {
	if cases <= 0 {
		return nil
	}
	rate := deaths / cases * 100
	return &rate
}

// OutbreakFatality returns a copy of records with FatalityRate filled in
func OutbreakFatality(records []models.OutbreakRecord) []models.OutbreakRecord {
	out := make([]models.OutbreakRecord, len(records))
	for i, r := range records {
		r.FatalityRate = FatalityRate(r.Deaths, r.Cases)
		out[i] = r
	}
	return out
}
