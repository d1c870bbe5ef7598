package store

import (
	"context"
	"sync"
	"time"

	"salondesk/internal/events"
	"salondesk/internal/models"
)

// Memory is an in-memory store for local/offline mode and tests. It
// satisfies the same source and persister contracts as the SQLite store;
// a reschedule applied here is durable for the life of the process.
type Memory struct {
	mu           sync.Mutex
	employees    []models.Employee
	appointments []models.Appointment
	revision     int64
	nextID       int64
	bus          *events.Bus
}

// NewMemory creates an empty in-memory store. bus may be nil.
func NewMemory(bus *events.Bus) *Memory {
	return &Memory{nextID: 1, bus: bus}
}

// SetEmployees replaces the roster.
func (m *Memory) SetEmployees(emps []models.Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees = append([]models.Employee(nil), emps...)
}

// AddAppointment stores an appointment, assigning an id if absent.
func (m *Memory) AddAppointment(apt models.Appointment) models.Appointment {
	m.mu.Lock()
	if apt.ID == 0 {
		apt.ID = m.nextID
		m.nextID++
	} else if apt.ID >= m.nextID {
		m.nextID = apt.ID + 1
	}
	if apt.Version == 0 {
		apt.Version = 1
	}
	m.appointments = append(m.appointments, apt)
	m.mu.Unlock()

	if m.bus != nil {
		m.bus.Publish(events.Event{Type: events.TypeAppointmentsChanged, Date: apt.Date})
	}
	return apt
}

// Employees implements dayview.EmployeeSource.
func (m *Memory) Employees(ctx context.Context) ([]models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Employee(nil), m.employees...), nil
}

// AppointmentsForDate implements dayview.AppointmentSource.
func (m *Memory) AppointmentsForDate(ctx context.Context, date time.Time) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Appointment
	key := models.DateKey(date)
	for _, apt := range m.appointments {
		if models.DateKey(apt.Date) == key {
			out = append(out, apt)
		}
	}
	return out, nil
}

// ApplyReschedule implements reschedule.Persister.
func (m *Memory) ApplyReschedule(ctx context.Context, appointmentID int64, startMinutes int, staffName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.appointments {
		if m.appointments[i].ID == appointmentID {
			m.appointments[i].StartMinutes = startMinutes
			m.appointments[i].StaffName = staffName
			m.appointments[i].Version++
			return nil
		}
	}
	return ErrNotFound
}

// ScheduleRevision implements dayview.RevisionSource.
func (m *Memory) ScheduleRevision() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revision
}

// BumpRevision simulates a schedule edit.
func (m *Memory) BumpRevision() {
	m.mu.Lock()
	m.revision++
	m.mu.Unlock()

	if m.bus != nil {
		m.bus.Publish(events.Event{Type: events.TypeScheduleChanged})
	}
}

// UpdateEmployee replaces a roster member by name, for schedule edits in
// offline mode.
func (m *Memory) UpdateEmployee(emp models.Employee) {
	m.mu.Lock()
	for i := range m.employees {
		if m.employees[i].Name == emp.Name {
			m.employees[i] = emp
			break
		}
	}
	m.revision++
	m.mu.Unlock()

	if m.bus != nil {
		m.bus.Publish(events.Event{Type: events.TypeScheduleChanged})
	}
}
