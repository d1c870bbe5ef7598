// Package grid builds the day-view slot axis and resolves which
// appointments occupy which slots.
package grid

import (
	"sort"

	"salondesk/internal/models"
)

// Operating window of the day view. Fixed business-hours constants, not
// derived from any employee schedule.
const (
	OpenMinutes  = 7 * 60     // 07:00
	CloseMinutes = 23*60 + 45 // 23:45, inclusive last slot
	SlotMinutes  = 15
)

// Slots returns all 15-minute-aligned slot starts from 07:00 through
// 23:45 inclusive (68 slots).
func Slots() []int {
	slots := make([]int, 0, (CloseMinutes-OpenMinutes)/SlotMinutes+1)
	for s := OpenMinutes; s <= CloseMinutes; s += SlotMinutes {
		slots = append(slots, s)
	}
	return slots
}

// CompactSlots returns only the slots overlapped by at least one of the
// given appointments, assigned or not. Used to avoid rendering
// mostly-empty grids when filters are active.
func CompactSlots(appointments []models.Appointment) []int {
	var slots []int
	for _, s := range Slots() {
		for i := range appointments {
			if appointments[i].OverlapsSlot(s, SlotMinutes) {
				slots = append(slots, s)
				break
			}
		}
	}
	return slots
}

// Overlapping returns the appointments whose [start, end) interval
// intersects [slot, slot+15).
func Overlapping(appointments []models.Appointment, slotMinutes int) []models.Appointment {
	var out []models.Appointment
	for i := range appointments {
		if appointments[i].OverlapsSlot(slotMinutes, SlotMinutes) {
			out = append(out, appointments[i])
		}
	}
	return out
}

// StartingAt returns the appointments whose start falls within
// [slot, slot+15). A multi-slot appointment emits a render unit only at
// this slot; every other slot it overlaps renders nothing for it.
func StartingAt(appointments []models.Appointment, slotMinutes int) []models.Appointment {
	var out []models.Appointment
	for i := range appointments {
		if appointments[i].StartsInSlot(slotMinutes, SlotMinutes) {
			out = append(out, appointments[i])
		}
	}
	return out
}

// SlotOccupancy is the primary-view rendering of one unassigned-bucket
// slot: one primary appointment plus an overflow count, with the full
// list available on demand.
type SlotOccupancy struct {
	Primary        *models.Appointment
	RemainingCount int
	All            []models.Appointment
}

// UnassignedAt resolves the unassigned bucket at a slot. When several
// unassigned appointments start in the same slot, the earliest by start
// time is primary (stable on ties) and the rest are counted as overflow.
func UnassignedAt(appointments []models.Appointment, slotMinutes int) SlotOccupancy {
	starting := StartingAt(appointments, slotMinutes)
	if len(starting) == 0 {
		return SlotOccupancy{}
	}

	sort.SliceStable(starting, func(i, j int) bool {
		return starting[i].StartMinutes < starting[j].StartMinutes
	})

	return SlotOccupancy{
		Primary:        &starting[0],
		RemainingCount: len(starting) - 1,
		All:            starting,
	}
}
