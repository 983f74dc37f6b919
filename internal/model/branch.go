package model

import (
	"time"

	"github.com/google/uuid"
)

type Branch struct {
	Base
	Name      string  `db:"name" json:"name"`
	Address   string  `db:"address" json:"address"`
	City      string  `db:"city" json:"city"`
	Phone     string  `db:"phone" json:"phone,omitempty"`
	Latitude  float64 `db:"latitude" json:"latitude,omitempty"`
	Longitude float64 `db:"longitude" json:"longitude,omitempty"`
	Active    bool    `db:"active" json:"active"`
}

// BusinessHours describes one weekday's schedule for a branch. At most one
// row exists per (branch, weekday); a missing row means the branch does not
// open on that day.
type BusinessHours struct {
	ID         uuid.UUID `db:"id" json:"id"`
	BranchID   uuid.UUID `db:"branch_id" json:"branch_id"`
	DayOfWeek  int       `db:"day_of_week" json:"day_of_week"` // time.Weekday, Sunday = 0
	OpenTime   string    `db:"open_time" json:"open_time"`     // "15:04"
	CloseTime  string    `db:"close_time" json:"close_time"`
	Closed     bool      `db:"closed" json:"closed"`
	LunchStart *string   `db:"lunch_start" json:"lunch_start,omitempty"`
	LunchEnd   *string   `db:"lunch_end" json:"lunch_end,omitempty"`
}

// Holiday closes a branch on an exact date. Optional holidays are
// informational only and do not force closure.
type Holiday struct {
	ID       uuid.UUID `db:"id" json:"id"`
	BranchID uuid.UUID `db:"branch_id" json:"branch_id"`
	Date     time.Time `db:"date" json:"date"`
	Name     string    `db:"name" json:"name"`
	Optional bool      `db:"optional" json:"optional"`
}

type CreateBranchRequest struct {
	Name      string  `json:"name" validate:"required,max=120"`
	Address   string  `json:"address" validate:"required,max=255"`
	City      string  `json:"city" validate:"required,max=80"`
	Phone     string  `json:"phone" validate:"max=20"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type UpsertBusinessHoursRequest struct {
	DayOfWeek  int     `json:"day_of_week" validate:"min=0,max=6"`
	OpenTime   string  `json:"open_time" validate:"required_unless=Closed true"`
	CloseTime  string  `json:"close_time" validate:"required_unless=Closed true"`
	Closed     bool    `json:"closed"`
	LunchStart *string `json:"lunch_start"`
	LunchEnd   *string `json:"lunch_end"`
}

type CreateHolidayRequest struct {
	Date     time.Time `json:"date" validate:"required"`
	Name     string    `json:"name" validate:"required,max=120"`
	Optional bool      `json:"optional"`
}
