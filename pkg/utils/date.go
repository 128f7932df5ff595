package utils

import "time"

const DateLayout = "2006-01-02"

// LookbackWindow retorna [hoje-days, ontem] no fuso informado. O dia corrente
// fica de fora porque os relatórios ainda não estão consolidados.
func LookbackWindow(now time.Time, days int, loc *time.Location) (start, end time.Time) {
	if loc == nil {
		loc = time.UTC
	}

	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	end = today.AddDate(0, 0, -1)
	start = today.AddDate(0, 0, -days)
	return start, end
}
