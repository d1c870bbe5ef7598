package models

import (
	"strings"
	"time"
)

// Appointment statuses as stored upstream.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// anyoneSentinels are staff-name values that mean "no specific employee".
// Includes the localized form used by upstream booking forms.
var anyoneSentinels = []string{"anyone", "bất kì", "bất kỳ"}

// Appointment is one booked service on the day view. StartMinutes is the
// clock start in minutes since midnight; it need not be slot-aligned.
type Appointment struct {
	ID              int64     `json:"id"`
	Date            time.Time `json:"date"`
	StartMinutes    int       `json:"start_minutes"`
	DurationMinutes int       `json:"duration_minutes"`
	ExtraMinutes    int       `json:"extra_minutes"`
	StaffName       string    `json:"staff_name"`
	Status          string    `json:"status"`
	Customer        string    `json:"customer"`
	Service         string    `json:"service"`
	Version         int64     `json:"version"`
}

// EffectiveDuration is the base duration plus any additive extra time.
func (a *Appointment) EffectiveDuration() int {
	extra := a.ExtraMinutes
	if extra < 0 {
		extra = 0
	}
	return a.DurationMinutes + extra
}

// EndMinutes is the exclusive end of the occupied interval.
func (a *Appointment) EndMinutes() int {
	return a.StartMinutes + a.EffectiveDuration()
}

// OverlapsSlot reports whether [start, end) intersects [slot, slot+grid).
func (a *Appointment) OverlapsSlot(slotMinutes, gridMinutes int) bool {
	return a.StartMinutes < slotMinutes+gridMinutes && a.EndMinutes() > slotMinutes
}

// StartsInSlot reports whether the appointment's start falls within
// [slot, slot+grid). Exactly one grid slot satisfies this; it is the slot
// where the appointment is rendered.
func (a *Appointment) StartsInSlot(slotMinutes, gridMinutes int) bool {
	return a.StartMinutes >= slotMinutes && a.StartMinutes < slotMinutes+gridMinutes
}

// IsUnassigned reports whether the appointment belongs to the
// anyone/unassigned bucket rather than a specific employee's column.
func (a *Appointment) IsUnassigned() bool {
	name := strings.TrimSpace(a.StaffName)
	if name == "" {
		return true
	}
	for _, sentinel := range anyoneSentinels {
		if strings.EqualFold(name, sentinel) {
			return true
		}
	}
	return false
}

// AvailabilityEntry is the schedule-rules verdict for one
// (employee, date, slot) triple.
type AvailabilityEntry struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// ScheduleStatus summarizes an employee's day for column-header badges.
type ScheduleStatus string

const (
	ScheduleOff     ScheduleStatus = "off"
	SchedulePartial ScheduleStatus = "partial"
	ScheduleFull    ScheduleStatus = "full"
)

// DayStatus is the header badge for one employee on one date.
type DayStatus struct {
	Status  ScheduleStatus `json:"status"`
	Details string         `json:"details,omitempty"`
}
