package domain

import "time"

// TimeSlot is a bookable window inside one day, in studio local time.
type TimeSlot struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Display string `json:"display"`
}

type Appointment struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	Date      string   `json:"date"`
	TimeSlot  TimeSlot `json:"timeSlot"`
	Deposit   string   `json:"deposit"`
	Gender    string   `json:"gender"`
	Comments  string   `json:"comments"`
	PhotoAuth bool     `json:"photoAuth"`
}

// BusyPeriod is an occupied interval on the studio calendar.
type BusyPeriod struct {
	Start time.Time
	End   time.Time
}
