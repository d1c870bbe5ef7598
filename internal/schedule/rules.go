// Package schedule defines the availability contract consulted by the
// day-view engine, plus the standard in-process implementation of it.
package schedule

import (
	"fmt"
	"time"

	"salondesk/internal/models"
	"salondesk/internal/timeutil"
)

// Rules is the scheduling-rules collaborator. Implementations must be
// pure with respect to (employee schedule state, date, slot) so results
// can be memoized by the caller.
type Rules interface {
	// IsAvailable decides whether the employee can take work at the given
	// slot on the given date. Unavailable verdicts carry a human-readable
	// reason.
	IsAvailable(emp *models.Employee, date time.Time, slotMinutes int) models.AvailabilityEntry

	// StatusForDate summarizes the employee's day for column-header
	// decoration; it plays no part in occupancy math.
	StatusForDate(emp *models.Employee, date time.Time) models.DayStatus
}

// Conventional spans implied by work types when no explicit times are set.
var defaultSpans = map[models.WorkType][2]string{
	models.WorkFull:    {"08:00", "18:00"},
	models.WorkHalf:    {"08:00", "13:00"},
	models.WorkQuarter: {"08:00", "10:30"},
}

// StandardRules resolves availability from weekly defaults and per-date
// overrides. An override is authoritative for its entire date: an "off"
// override means the whole day is off even when it carries a time span
// (the span is treated as descriptive only).
type StandardRules struct{}

// NewStandardRules returns the standard rules implementation.
func NewStandardRules() *StandardRules {
	return &StandardRules{}
}

// IsAvailable implements Rules.
func (r *StandardRules) IsAvailable(emp *models.Employee, date time.Time, slotMinutes int) models.AvailabilityEntry {
	if emp == nil {
		return models.AvailabilityEntry{Available: false, Reason: "unknown employee"}
	}
	if emp.Virtual {
		// No schedule on file; never block their appointments.
		return models.AvailabilityEntry{Available: true}
	}

	day, reason := resolveDay(emp, date)
	start, end, working := workingSpan(day)
	if !working {
		if reason == "" {
			reason = "day off"
		}
		return models.AvailabilityEntry{Available: false, Reason: reason}
	}
	if slotMinutes < start {
		return models.AvailabilityEntry{
			Available: false,
			Reason:    fmt.Sprintf("starts at %s", timeutil.FormatClock(start)),
		}
	}
	if slotMinutes >= end {
		return models.AvailabilityEntry{
			Available: false,
			Reason:    fmt.Sprintf("finished at %s", timeutil.FormatClock(end)),
		}
	}
	return models.AvailabilityEntry{Available: true}
}

// StatusForDate implements Rules.
func (r *StandardRules) StatusForDate(emp *models.Employee, date time.Time) models.DayStatus {
	if emp == nil {
		return models.DayStatus{Status: models.ScheduleOff}
	}
	if emp.Virtual {
		return models.DayStatus{Status: models.SchedulePartial, Details: "no schedule on file"}
	}

	day, reason := resolveDay(emp, date)
	start, end, working := workingSpan(day)
	if !working {
		return models.DayStatus{Status: models.ScheduleOff, Details: reason}
	}

	span := fmt.Sprintf("%s–%s", timeutil.FormatClock(start), timeutil.FormatClock(end))
	if day.WorkType == models.WorkFull {
		return models.DayStatus{Status: models.ScheduleFull, Details: span}
	}
	return models.DayStatus{Status: models.SchedulePartial, Details: span}
}

// resolveDay returns the effective schedule for the date: the override if
// one exists, otherwise the weekly default. The second return is the
// override reason when an override applies.
func resolveDay(emp *models.Employee, date time.Time) (models.DaySchedule, string) {
	if o, ok := emp.OverrideFor(date); ok {
		return o.Schedule, o.Reason
	}
	return emp.WeeklyFor(date), ""
}

// workingSpan resolves a day schedule to a [start, end) minute span.
// Returns working=false for off days and unset schedules.
func workingSpan(day models.DaySchedule) (start, end int, working bool) {
	switch day.WorkType {
	case models.WorkOff, "":
		return 0, 0, false
	}

	startText, endText := day.StartTime, day.EndTime
	if startText == "" || endText == "" {
		span, ok := defaultSpans[day.WorkType]
		if !ok {
			// Custom with no explicit times: assume the full-day span.
			span = defaultSpans[models.WorkFull]
		}
		if startText == "" {
			startText = span[0]
		}
		if endText == "" {
			endText = span[1]
		}
	}

	start = timeutil.ParseClock(startText)
	end = timeutil.ParseClock(endText)
	if end <= start {
		return 0, 0, false
	}
	return start, end, true
}
