package models

import "time"

// Visit is one recorded resolution of a dynamic code. Rows are append-only:
// nothing in the application updates or deletes them.
type Visit struct {
	ID uint `gorm:"primaryKey"`

	// CodeID references the Code that was scanned. Indexed because
	// analytics reads the full visit history of a single code.
	CodeID uint `gorm:"index;not null"`
	Code   Code `gorm:"foreignKey:CodeID"`

	// Timestamp is assigned server-side when the resolution happens,
	// never taken from the client.
	Timestamp time.Time

	IPAddress string `gorm:"size:50"`

	// Location is "City, CC" from the geo lookup, or "Unknown".
	Location string `gorm:"size:120"`

	Device   string `gorm:"size:20"`
	Platform string `gorm:"size:20"`

	// TargetURL is the target that was active when the visit happened.
	// A dynamic code's target can change later; the visit keeps the old one.
	TargetURL string
}

// VisitEvent is the lightweight form of a Visit passed through the telemetry
// channel between the resolver and the worker pool.
type VisitEvent struct {
	CodeID    uint
	Timestamp time.Time
	IPAddress string
	Location  string
	Device    string
	Platform  string
	TargetURL string
}
