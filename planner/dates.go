package planner

import "time"

const isoDate = "2006-01-02"

// TripDateRange returns every calendar date in the inclusive range
// [startDate, endDate] as ISO dates. Callers guarantee endDate >= startDate;
// unparseable input yields an empty range.
func TripDateRange(startDate, endDate string) []string {
	start, err := time.Parse(isoDate, startDate)
	if err != nil {
		return nil
	}
	end, err := time.Parse(isoDate, endDate)
	if err != nil {
		return nil
	}

	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(isoDate))
	}
	return days
}
