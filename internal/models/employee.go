package models

import "time"

// Role classifies an employee for roster selection.
type Role string

const (
	RolePrimaryTechnician Role = "primary_technician"
	RoleTechnician        Role = "technician"
	RoleAssistant         Role = "assistant"
	RoleReceptionist      Role = "receptionist"
	RoleManager           Role = "manager"
)

// PerformsServices reports whether the role takes appointments and
// therefore qualifies for a day-view column.
func (r Role) PerformsServices() bool {
	switch r {
	case RolePrimaryTechnician, RoleTechnician, RoleAssistant:
		return true
	}
	return false
}

// WorkType describes the shape of an employee's working day.
type WorkType string

const (
	WorkOff     WorkType = "off"
	WorkFull    WorkType = "full"
	WorkHalf    WorkType = "half"
	WorkQuarter WorkType = "quarter"
	WorkCustom  WorkType = "custom"
)

// DaySchedule is one day's working window. StartTime/EndTime are "HH:mm",
// inclusive start, exclusive end. full/half/quarter imply conventional
// spans unless explicitly overridden.
type DaySchedule struct {
	WorkType  WorkType `yaml:"work_type" json:"work_type"`
	StartTime string   `yaml:"start_time,omitempty" json:"start_time,omitempty"`
	EndTime   string   `yaml:"end_time,omitempty" json:"end_time,omitempty"`
}

// ScheduleOverride replaces the weekly default for one calendar date.
type ScheduleOverride struct {
	Date     time.Time   `json:"date"`
	Schedule DaySchedule `json:"schedule"`
	Reason   string      `json:"reason,omitempty"`
}

// Employee is a roster member. Virtual employees are synthesized for
// orphaned staff names found on appointments so those appointments are
// never silently dropped; they expose the same shape as real ones.
type Employee struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Role        Role               `json:"role"`
	Specialties []string           `json:"specialties,omitempty"`
	Weekly      [7]DaySchedule     `json:"weekly"` // index 0 = Sunday
	Overrides   []ScheduleOverride `json:"overrides,omitempty"`
	Virtual     bool               `json:"virtual,omitempty"`
}

// NewVirtualEmployee builds a placeholder column for a staff name that
// does not correspond to any roster id.
func NewVirtualEmployee(name string) Employee {
	return Employee{
		ID:      0,
		Name:    name,
		Role:    RoleTechnician,
		Virtual: true,
	}
}

// SetOverride inserts or replaces the override for its calendar date.
// At most one override exists per date; last write wins.
func (e *Employee) SetOverride(o ScheduleOverride) {
	for i := range e.Overrides {
		if sameDate(e.Overrides[i].Date, o.Date) {
			e.Overrides[i] = o
			return
		}
	}
	e.Overrides = append(e.Overrides, o)
}

// OverrideFor returns the override for a date, if any.
func (e *Employee) OverrideFor(date time.Time) (ScheduleOverride, bool) {
	for _, o := range e.Overrides {
		if sameDate(o.Date, date) {
			return o, true
		}
	}
	return ScheduleOverride{}, false
}

// WeeklyFor returns the weekly default schedule for a date's weekday.
func (e *Employee) WeeklyFor(date time.Time) DaySchedule {
	return e.Weekly[int(date.Weekday())]
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DateKey normalizes a date to its cache/storage key form.
func DateKey(date time.Time) string {
	return date.Format("2006-01-02")
}
