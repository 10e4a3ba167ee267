package services

import (
	"strings"

	"github/itish2003/medassist/models"
)

// ParseTimes splits the comma-separated times field and trims each entry.
// Empty entries are kept; nothing checks the time format.
func ParseTimes(raw string) []string {
	parts := strings.Split(raw, ",")
	times := make([]string, len(parts))
	for i, p := range parts {
		times[i] = strings.TrimSpace(p)
	}
	return times
}

// BuildReminder packages the fields as given.
func BuildReminder(medicine, dose, frequency string, times []string) models.ReminderRecord {
	return models.ReminderRecord{
		Medicine:      medicine,
		Dose:          dose,
		Frequency:     frequency,
		ReminderTimes: times,
	}
}
