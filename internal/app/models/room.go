package models

import "time"

// Room is a bookable teaching space referenced by weekly slots and events
type Room struct {
	ID        int64     `json:"id" db:"id"`
	Code      string    `json:"code" db:"code"`
	Building  string    `json:"building" db:"building"`
	Capacity  int       `json:"capacity" db:"capacity"`
	Features  []string  `json:"features" db:"features"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
