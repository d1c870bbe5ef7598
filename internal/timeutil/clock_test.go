package timeutil

import "testing"

func TestParseClock(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"00:00", 0},
		{"07:00", 420},
		{"09:08", 548},
		{"23:45", 1425},
		{"9:05", 545},
		{"9:05 AM", 545},
		{"9:05 am", 545},
		{"12:00 AM", 0},
		{"12:30 PM", 750},
		{"1:00 PM", 780},
		{"11:59 pm", 1439},
		// Parse failures fall back to 0, never panic.
		{"", 0},
		{"garbage", 0},
		{"25:00", 0},
		{"10:99", 0},
		{"10", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseClock(tt.input)
			if got != tt.expected {
				t.Errorf("ParseClock(%q): expected %d, got %d", tt.input, tt.expected, got)
			}
		})
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		minutes  int
		expected string
	}{
		{0, "00:00"},
		{420, "07:00"},
		{548, "09:08"},
		{1425, "23:45"},
		{-5, "00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := FormatClock(tt.minutes)
			if got != tt.expected {
				t.Errorf("FormatClock(%d): expected %q, got %q", tt.minutes, tt.expected, got)
			}
		})
	}
}

func TestParseDurationText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		extra    int
		expected int
	}{
		{"vietnamese minutes", "60 phút", 0, 60},
		{"with extra time", "60 phút", 15, 75},
		{"plain number", "120", 0, 120},
		{"trailing text", "90 min deep tissue", 0, 90},
		{"no number defaults to 30", "quick trim", 0, 30},
		{"empty defaults to 30", "", 10, 40},
		{"negative extra ignored", "45", -5, 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDurationText(tt.input, tt.extra)
			if got != tt.expected {
				t.Errorf("ParseDurationText(%q, %d): expected %d, got %d",
					tt.input, tt.extra, tt.expected, got)
			}
		})
	}
}

func TestSnapToGrid(t *testing.T) {
	tests := []struct {
		minutes  int
		grid     int
		expected int
	}{
		{547, 15, 540}, // 09:07 snaps down to 09:00
		{548, 15, 555}, // 09:08 snaps up to 09:15
		{540, 15, 540},
		{0, 15, 0},
		{7, 15, 0},
		{8, 15, 15},
		{-3, 15, 0},
		{47, 0, 45}, // non-positive grid falls back to 15
	}

	for _, tt := range tests {
		t.Run(FormatClock(tt.minutes), func(t *testing.T) {
			got := SnapToGrid(tt.minutes, tt.grid)
			if got != tt.expected {
				t.Errorf("SnapToGrid(%d, %d): expected %d, got %d",
					tt.minutes, tt.grid, tt.expected, got)
			}
		})
	}

	// Snapped values are always grid-aligned and within half a grid step.
	for m := 0; m < 1440; m++ {
		snapped := SnapToGrid(m, 15)
		if snapped%15 != 0 {
			t.Fatalf("SnapToGrid(%d) = %d, not a multiple of 15", m, snapped)
		}
		diff := snapped - m
		if diff < 0 {
			diff = -diff
		}
		if diff > 7 {
			t.Fatalf("SnapToGrid(%d) = %d, moved by %d minutes", m, snapped, diff)
		}
	}
}

func TestAddMinutes(t *testing.T) {
	if got := AddMinutes(548, 75); got != 623 {
		t.Errorf("expected 623, got %d", got)
	}
	if FormatClock(AddMinutes(548, 75)) != "10:23" {
		t.Errorf("expected 10:23, got %s", FormatClock(AddMinutes(548, 75)))
	}
}
