package calendar

import (
	"fmt"
	"time"

	"github.com/RaikyD/studio-booking-service/internal/domain"
)

const (
	workStart    = 10
	workEnd      = 18
	slotDuration = 2
)

// FreeSlots lists the two hour windows starting on each full hour between
// 10:00 and 16:00 of day that do not overlap any busy period.
func FreeSlots(day time.Time, busy []domain.BusyPeriod) []domain.TimeSlot {
	y, m, d := day.Date()
	loc := day.Location()

	slots := []domain.TimeSlot{}
	for hour := workStart; hour <= workEnd-slotDuration; hour++ {
		start := time.Date(y, m, d, hour, 0, 0, 0, loc)
		end := start.Add(slotDuration * time.Hour)
		if overlaps(start, end, busy) {
			continue
		}
		slots = append(slots, domain.TimeSlot{
			Start:   fmt.Sprintf("%02d:00", hour),
			End:     fmt.Sprintf("%02d:00", hour+slotDuration),
			Display: fmt.Sprintf("%d:00 - %d:00", hour, hour+slotDuration),
		})
	}
	return slots
}

func overlaps(start, end time.Time, busy []domain.BusyPeriod) bool {
	for _, b := range busy {
		if start.Before(b.End) && end.After(b.Start) {
			return true
		}
	}
	return false
}
