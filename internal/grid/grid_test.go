package grid

import (
	"testing"

	"salondesk/internal/models"
)

func TestSlots(t *testing.T) {
	slots := Slots()

	if len(slots) != 68 {
		t.Fatalf("expected 68 slots, got %d", len(slots))
	}
	if slots[0] != 420 { // 07:00
		t.Errorf("first slot: expected 420, got %d", slots[0])
	}
	if slots[len(slots)-1] != 1425 { // 23:45
		t.Errorf("last slot: expected 1425, got %d", slots[len(slots)-1])
	}
	for i := 1; i < len(slots); i++ {
		if slots[i]-slots[i-1] != SlotMinutes {
			t.Fatalf("slots not evenly spaced at index %d", i)
		}
	}
}

func TestCompactSlots(t *testing.T) {
	apts := []models.Appointment{
		{ID: 1, StartMinutes: 510, DurationMinutes: 120}, // 08:30–10:30
		{ID: 2, StartMinutes: 1200, DurationMinutes: 30}, // 20:00–20:30
	}

	slots := CompactSlots(apts)

	expected := []int{510, 525, 540, 555, 570, 585, 600, 615, 1200, 1215}
	if len(slots) != len(expected) {
		t.Fatalf("expected %d slots, got %d: %v", len(expected), len(slots), slots)
	}
	for i, s := range expected {
		if slots[i] != s {
			t.Errorf("slot %d: expected %d, got %d", i, s, slots[i])
		}
	}

	if got := CompactSlots(nil); len(got) != 0 {
		t.Errorf("no appointments: expected no slots, got %v", got)
	}
}

func TestOverlappingAndStartingAt(t *testing.T) {
	apts := []models.Appointment{
		{ID: 1, StartMinutes: 548, DurationMinutes: 60, ExtraMinutes: 15}, // 09:08–10:23
		{ID: 2, StartMinutes: 600, DurationMinutes: 30},                   // 10:00–10:30
	}

	tests := []struct {
		slot             int
		overlapIDs       []int64
		startIDs         []int64
	}{
		{525, nil, nil},              // 08:45
		{540, []int64{1}, []int64{1}}, // 09:00: apt 1 starts here
		{555, []int64{1}, nil},        // 09:15: overlap only
		{600, []int64{1, 2}, []int64{2}},
		{615, []int64{1, 2}, nil},
		{630, nil, nil}, // 10:30: both ended (exclusive end)
	}

	for _, tt := range tests {
		overlapping := Overlapping(apts, tt.slot)
		if !sameIDs(overlapping, tt.overlapIDs) {
			t.Errorf("slot %d overlapping: expected %v, got %v", tt.slot, tt.overlapIDs, ids(overlapping))
		}
		starting := StartingAt(apts, tt.slot)
		if !sameIDs(starting, tt.startIDs) {
			t.Errorf("slot %d starting: expected %v, got %v", tt.slot, tt.startIDs, ids(starting))
		}
	}
}

func TestUnassignedAt_PrimaryAndOverflow(t *testing.T) {
	apts := []models.Appointment{
		{ID: 1, StartMinutes: 512, DurationMinutes: 120}, // 08:32
		{ID: 2, StartMinutes: 510, DurationMinutes: 60},  // 08:30
		{ID: 3, StartMinutes: 540, DurationMinutes: 30},  // 09:00
	}

	occ := UnassignedAt(apts, 510)
	if occ.Primary == nil {
		t.Fatal("expected a primary occupant at 08:30")
	}
	// Earliest start wins the primary position.
	if occ.Primary.ID != 2 {
		t.Errorf("expected appointment 2 primary, got %d", occ.Primary.ID)
	}
	if occ.RemainingCount != 1 {
		t.Errorf("expected remainingCount 1, got %d", occ.RemainingCount)
	}
	if len(occ.All) != 2 {
		t.Errorf("expected 2 occupants in overflow list, got %d", len(occ.All))
	}

	if occ := UnassignedAt(apts, 525); occ.Primary != nil {
		t.Error("08:45: nothing starts here, primary must be nil")
	}
	if occ := UnassignedAt(apts, 540); occ.Primary == nil || occ.Primary.ID != 3 || occ.RemainingCount != 0 {
		t.Error("09:00: expected appointment 3 alone")
	}
}

func TestUnassignedAt_StableTieBreak(t *testing.T) {
	// Same start time: list order decides, stably.
	apts := []models.Appointment{
		{ID: 5, StartMinutes: 510, DurationMinutes: 30},
		{ID: 6, StartMinutes: 510, DurationMinutes: 45},
	}

	for i := 0; i < 5; i++ {
		occ := UnassignedAt(apts, 510)
		if occ.Primary.ID != 5 {
			t.Fatalf("run %d: tie-break not stable, got %d", i, occ.Primary.ID)
		}
	}
}

func ids(apts []models.Appointment) []int64 {
	var out []int64
	for _, a := range apts {
		out = append(out, a.ID)
	}
	return out
}

func sameIDs(apts []models.Appointment, expected []int64) bool {
	if len(apts) != len(expected) {
		return false
	}
	for i, a := range apts {
		if a.ID != expected[i] {
			return false
		}
	}
	return true
}
