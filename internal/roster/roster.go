// Package roster decides which employees appear as day-view columns, in
// what order, and which appointments each column carries.
package roster

import (
	"sort"
	"strings"
	"time"

	"salondesk/internal/models"
	"salondesk/internal/schedule"
)

// Buckets partitions one day's appointments. Every appointment lands in
// exactly one place: the unassigned bucket, or the bucket of the staff
// name it carries. Assignment is by exact display-name equality; no fuzzy
// matching, no merged columns.
type Buckets struct {
	Unassigned []models.Appointment
	ByStaff    map[string][]models.Appointment
}

// Bucketize splits appointments into unassigned vs per-staff buckets.
func Bucketize(appointments []models.Appointment) Buckets {
	b := Buckets{ByStaff: make(map[string][]models.Appointment)}
	for i := range appointments {
		apt := appointments[i]
		if apt.IsUnassigned() {
			b.Unassigned = append(b.Unassigned, apt)
			continue
		}
		b.ByStaff[apt.StaffName] = append(b.ByStaff[apt.StaffName], apt)
	}
	return b
}

// Column is one employee column of the day view.
type Column struct {
	Employee     models.Employee
	Status       models.DayStatus
	Appointments []models.Appointment // sorted by start time
}

// Count is the number of appointments booked on the column.
func (c *Column) Count() int {
	return len(c.Appointments)
}

// EarliestStart is the start of the column's first appointment in minutes
// since midnight, or -1 when the column is idle.
func (c *Column) EarliestStart() int {
	if len(c.Appointments) == 0 {
		return -1
	}
	return c.Appointments[0].StartMinutes
}

// Resolve determines the ordered employee columns for a date.
//
// Columns come from three sources: placeholder employees synthesized for
// staff names that match no roster member (stale or demo data must not
// drop appointments), roster members booked on the date regardless of
// role or schedule, and service-performing roster members scheduled to
// work that date. Booked columns sort first by descending appointment
// count, then ascending earliest start; idle columns follow
// alphabetically so the grid stays scannable.
func Resolve(employees []models.Employee, buckets Buckets, date time.Time, rules schedule.Rules, search string) []Column {
	byName := make(map[string]*models.Employee, len(employees))
	for i := range employees {
		byName[employees[i].Name] = &employees[i]
	}

	var columns []Column
	seen := make(map[string]bool)

	appendColumn := func(emp models.Employee) {
		if seen[emp.Name] {
			return
		}
		seen[emp.Name] = true

		apts := append([]models.Appointment(nil), buckets.ByStaff[emp.Name]...)
		sort.SliceStable(apts, func(i, j int) bool {
			return apts[i].StartMinutes < apts[j].StartMinutes
		})
		columns = append(columns, Column{
			Employee:     emp,
			Status:       rules.StatusForDate(&emp, date),
			Appointments: apts,
		})
	}

	// Orphaned staff names become virtual columns, in stable name order.
	var orphans []string
	for name := range buckets.ByStaff {
		if _, ok := byName[name]; !ok {
			orphans = append(orphans, name)
		}
	}
	sort.Strings(orphans)
	for _, name := range orphans {
		appendColumn(models.NewVirtualEmployee(name))
	}

	for i := range employees {
		emp := employees[i]
		booked := len(buckets.ByStaff[emp.Name]) > 0
		scheduled := emp.Role.PerformsServices() &&
			rules.StatusForDate(&emp, date).Status != models.ScheduleOff
		if booked || scheduled {
			appendColumn(emp)
		}
	}

	sort.SliceStable(columns, func(i, j int) bool {
		ci, cj := columns[i].Count(), columns[j].Count()
		if ci != cj {
			return ci > cj
		}
		if ci > 0 {
			return columns[i].EarliestStart() < columns[j].EarliestStart()
		}
		return strings.ToLower(columns[i].Employee.Name) < strings.ToLower(columns[j].Employee.Name)
	})

	if search = strings.TrimSpace(search); search != "" {
		needle := strings.ToLower(search)
		filtered := columns[:0]
		for _, col := range columns {
			if strings.Contains(strings.ToLower(col.Employee.Name), needle) {
				filtered = append(filtered, col)
			}
		}
		columns = filtered
	}

	return columns
}
