package availability

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"salondesk/internal/grid"
	"salondesk/internal/models"
)

// spyRules counts calls so cache idempotence can be verified.
type spyRules struct {
	calls int
}

func (s *spyRules) IsAvailable(emp *models.Employee, date time.Time, slotMinutes int) models.AvailabilityEntry {
	s.calls++
	// Available 09:00–17:00 regardless of employee.
	if slotMinutes >= 9*60 && slotMinutes < 17*60 {
		return models.AvailabilityEntry{Available: true}
	}
	return models.AvailabilityEntry{Available: false, Reason: "off shift"}
}

func (s *spyRules) StatusForDate(emp *models.Employee, date time.Time) models.DayStatus {
	return models.DayStatus{Status: models.ScheduleFull}
}

func TestCache_ComputesOncePerKey(t *testing.T) {
	rules := &spyRules{}
	cache := NewCache(rules, grid.Slots())
	emp := models.Employee{ID: 7, Name: "Mai"}
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	first := cache.Lookup(&emp, date, 1)
	assert.Equal(t, len(grid.Slots()), rules.calls, "one rules call per slot on a miss")
	assert.Len(t, first, 68)

	second := cache.Lookup(&emp, date, 1)
	assert.Equal(t, len(grid.Slots()), rules.calls, "a hit must not consult the rules")

	// Identical map, not just equal contents.
	assert.Equal(t,
		reflect.ValueOf(first).Pointer(),
		reflect.ValueOf(second).Pointer(),
		"repeated lookups return the same map")

	assert.True(t, first[9*60].Available)
	assert.False(t, first[7*60].Available)
	assert.NotEmpty(t, first[7*60].Reason)
}

func TestCache_RevisionInvalidates(t *testing.T) {
	rules := &spyRules{}
	cache := NewCache(rules, grid.Slots())
	emp := models.Employee{ID: 7, Name: "Mai"}
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	cache.Lookup(&emp, date, 1)
	callsAfterFirst := rules.calls

	cache.Lookup(&emp, date, 2)
	assert.Equal(t, 2*callsAfterFirst, rules.calls, "a revision bump recomputes the day")
	assert.Equal(t, 2, cache.Len())
}

func TestCache_KeysAreIndependent(t *testing.T) {
	rules := &spyRules{}
	cache := NewCache(rules, grid.Slots())
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	mai := models.Employee{ID: 7, Name: "Mai"}
	lan := models.Employee{ID: 8, Name: "Lan"}

	cache.Lookup(&mai, date, 1)
	cache.Lookup(&lan, date, 1)
	cache.Lookup(&mai, date.AddDate(0, 0, 1), 1)
	assert.Equal(t, 3, cache.Len())

	// Virtual employees share id 0 but must not collide by name.
	ghost := models.NewVirtualEmployee("Ghost")
	shade := models.NewVirtualEmployee("Shade")
	cache.Lookup(&ghost, date, 1)
	cache.Lookup(&shade, date, 1)
	assert.Equal(t, 5, cache.Len())
}

func TestCache_PurgeBelow(t *testing.T) {
	rules := &spyRules{}
	cache := NewCache(rules, grid.Slots())
	emp := models.Employee{ID: 7, Name: "Mai"}
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	cache.Lookup(&emp, date, 1)
	cache.Lookup(&emp, date, 2)
	cache.Lookup(&emp, date, 3)

	removed := cache.PurgeBelow(3)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, cache.Len())
}
