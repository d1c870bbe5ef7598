package schedule

import (
	"testing"
	"time"

	"salondesk/internal/models"
)

// tuesday is a fixed Tuesday used across the tests.
var tuesday = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func fullWeekEmployee(name string) models.Employee {
	emp := models.Employee{ID: 1, Name: name, Role: models.RolePrimaryTechnician}
	for weekday := 1; weekday <= 5; weekday++ { // Mon–Fri
		emp.Weekly[weekday] = models.DaySchedule{WorkType: models.WorkFull}
	}
	emp.Weekly[0] = models.DaySchedule{WorkType: models.WorkOff}
	emp.Weekly[6] = models.DaySchedule{WorkType: models.WorkOff}
	return emp
}

func TestStandardRules_WeeklyDefaults(t *testing.T) {
	rules := NewStandardRules()
	emp := fullWeekEmployee("Mai")

	tests := []struct {
		name      string
		slot      int
		available bool
	}{
		{"before shift", 7 * 60, false},
		{"shift start", 8 * 60, true},
		{"mid-day", 12 * 60, true},
		{"last working slot", 17*60 + 45, true},
		{"shift end is exclusive", 18 * 60, false},
		{"evening", 22 * 60, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := rules.IsAvailable(&emp, tuesday, tt.slot)
			if entry.Available != tt.available {
				t.Errorf("slot %d: expected available=%v, got %v (%s)",
					tt.slot, tt.available, entry.Available, entry.Reason)
			}
			if !entry.Available && entry.Reason == "" {
				t.Errorf("slot %d: unavailable entry must carry a reason", tt.slot)
			}
		})
	}

	if status := rules.StatusForDate(&emp, tuesday); status.Status != models.ScheduleFull {
		t.Errorf("expected full status on Tuesday, got %s", status.Status)
	}
	sunday := tuesday.AddDate(0, 0, -2)
	if status := rules.StatusForDate(&emp, sunday); status.Status != models.ScheduleOff {
		t.Errorf("expected off status on Sunday, got %s", status.Status)
	}
}

func TestStandardRules_WorkTypeSpans(t *testing.T) {
	rules := NewStandardRules()

	tests := []struct {
		workType models.WorkType
		slot     int
		expected bool
	}{
		{models.WorkHalf, 8 * 60, true},
		{models.WorkHalf, 12*60 + 45, true},
		{models.WorkHalf, 13 * 60, false},
		{models.WorkQuarter, 10 * 60, true},
		{models.WorkQuarter, 10*60 + 15, true},
		{models.WorkQuarter, 10*60 + 30, false},
	}

	for _, tt := range tests {
		emp := models.Employee{ID: 2, Name: "Lan", Role: models.RoleAssistant}
		emp.Weekly[int(tuesday.Weekday())] = models.DaySchedule{WorkType: tt.workType}

		entry := rules.IsAvailable(&emp, tuesday, tt.slot)
		if entry.Available != tt.expected {
			t.Errorf("%s at %d: expected %v, got %v", tt.workType, tt.slot, tt.expected, entry.Available)
		}
	}
}

func TestStandardRules_CustomSpan(t *testing.T) {
	rules := NewStandardRules()
	emp := models.Employee{ID: 3, Name: "Thu", Role: models.RoleTechnician}
	emp.Weekly[int(tuesday.Weekday())] = models.DaySchedule{
		WorkType:  models.WorkCustom,
		StartTime: "10:00",
		EndTime:   "14:30",
	}

	if entry := rules.IsAvailable(&emp, tuesday, 9*60+45); entry.Available {
		t.Error("expected unavailable before custom start")
	}
	if entry := rules.IsAvailable(&emp, tuesday, 10*60); !entry.Available {
		t.Error("expected available at custom start")
	}
	if entry := rules.IsAvailable(&emp, tuesday, 14*60+30); entry.Available {
		t.Error("expected unavailable at custom end")
	}

	if status := rules.StatusForDate(&emp, tuesday); status.Status != models.SchedulePartial {
		t.Errorf("expected partial status, got %s", status.Status)
	}
}

func TestStandardRules_OverrideWins(t *testing.T) {
	rules := NewStandardRules()
	emp := fullWeekEmployee("Mai")
	emp.SetOverride(models.ScheduleOverride{
		Date:     tuesday,
		Schedule: models.DaySchedule{WorkType: models.WorkHalf},
		Reason:   "training",
	})

	if entry := rules.IsAvailable(&emp, tuesday, 14*60); entry.Available {
		t.Error("override half day: 14:00 should be unavailable")
	}
	if entry := rules.IsAvailable(&emp, tuesday, 9*60); !entry.Available {
		t.Error("override half day: 09:00 should be available")
	}

	// The weekly default still applies to other dates.
	wednesday := tuesday.AddDate(0, 0, 1)
	if entry := rules.IsAvailable(&emp, wednesday, 14*60); !entry.Available {
		t.Error("Wednesday keeps the weekly full-day default")
	}
}

func TestStandardRules_OffOverrideIsWholeDay(t *testing.T) {
	// An "off" override carrying a time span still means the whole day is
	// off; the span is descriptive only.
	rules := NewStandardRules()
	emp := fullWeekEmployee("Mai")
	emp.SetOverride(models.ScheduleOverride{
		Date: tuesday,
		Schedule: models.DaySchedule{
			WorkType:  models.WorkOff,
			StartTime: "10:00",
			EndTime:   "12:00",
		},
		Reason: "doctor visit",
	})

	for _, slot := range []int{8 * 60, 10 * 60, 11 * 60, 15 * 60} {
		entry := rules.IsAvailable(&emp, tuesday, slot)
		if entry.Available {
			t.Errorf("slot %d: expected whole day off", slot)
		}
		if entry.Reason != "doctor visit" {
			t.Errorf("slot %d: expected override reason, got %q", slot, entry.Reason)
		}
	}

	if status := rules.StatusForDate(&emp, tuesday); status.Status != models.ScheduleOff {
		t.Errorf("expected off status, got %s", status.Status)
	}
}

func TestStandardRules_VirtualAlwaysAvailable(t *testing.T) {
	rules := NewStandardRules()
	emp := models.NewVirtualEmployee("Ghost")

	if entry := rules.IsAvailable(&emp, tuesday, 22*60); !entry.Available {
		t.Error("virtual employees must never block their appointments")
	}
	if status := rules.StatusForDate(&emp, tuesday); status.Status == models.ScheduleOff {
		t.Error("virtual employees are not badged as off")
	}
}

func TestStandardRules_NilAndUnsetSchedules(t *testing.T) {
	rules := NewStandardRules()

	if entry := rules.IsAvailable(nil, tuesday, 9*60); entry.Available {
		t.Error("nil employee must be unavailable")
	}

	emp := models.Employee{ID: 9, Name: "New Hire", Role: models.RoleAssistant}
	if entry := rules.IsAvailable(&emp, tuesday, 9*60); entry.Available {
		t.Error("employee with no schedule set must be unavailable")
	}
}
