// Package dayview orchestrates the scheduling grid: roster resolution,
// appointment bucketing, the slot axis, availability and occupancy are
// recomputed together from a single appointment snapshot.
package dayview

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"salondesk/internal/availability"
	"salondesk/internal/events"
	"salondesk/internal/grid"
	"salondesk/internal/metrics"
	"salondesk/internal/models"
	"salondesk/internal/reschedule"
	"salondesk/internal/roster"
	"salondesk/internal/schedule"
)

// AppointmentSource supplies the day's appointment snapshot. The engine
// never fetches data on its own schedule; the caller decides when.
type AppointmentSource interface {
	AppointmentsForDate(ctx context.Context, date time.Time) ([]models.Appointment, error)
}

// EmployeeSource supplies the employee roster with schedules attached.
type EmployeeSource interface {
	Employees(ctx context.Context) ([]models.Employee, error)
}

// RevisionSource exposes the externally-owned schedule revision counter.
// It is bumped exclusively by schedule-editing flows.
type RevisionSource interface {
	ScheduleRevision() int64
}

// Options tune a snapshot computation.
type Options struct {
	Search  string // case-insensitive substring filter on column names
	Compact bool   // only slots overlapped by at least one appointment
}

// Snapshot is one fully-computed day view. All fields are derived from
// the same appointment list; it is safe to read while newer data is in
// flight, since it never mutates after Compute.
type Snapshot struct {
	Date         time.Time
	Revision     int64
	Slots        []int
	Columns      []roster.Column
	Unassigned   []models.Appointment
	Appointments []models.Appointment

	availability map[string]map[int]models.AvailabilityEntry
}

// Availability returns the cached verdict for a column and slot.
func (s *Snapshot) Availability(staffName string, slotMinutes int) models.AvailabilityEntry {
	if bySlot, ok := s.availability[staffName]; ok {
		return bySlot[slotMinutes]
	}
	return models.AvailabilityEntry{Available: false, Reason: "not on roster"}
}

// OccupantsOverlapping returns the column's appointments intersecting the
// slot interval.
func (s *Snapshot) OccupantsOverlapping(staffName string, slotMinutes int) []models.Appointment {
	return grid.Overlapping(s.columnAppointments(staffName), slotMinutes)
}

// OccupantsStartingAt returns the column's appointments rendered at the
// slot; multi-slot appointments appear here only at their start slot.
func (s *Snapshot) OccupantsStartingAt(staffName string, slotMinutes int) []models.Appointment {
	return grid.StartingAt(s.columnAppointments(staffName), slotMinutes)
}

// UnassignedAt resolves the anyone bucket at a slot: one primary
// appointment plus an overflow count.
func (s *Snapshot) UnassignedAt(slotMinutes int) grid.SlotOccupancy {
	return grid.UnassignedAt(s.Unassigned, slotMinutes)
}

func (s *Snapshot) columnAppointments(staffName string) []models.Appointment {
	for i := range s.Columns {
		if s.Columns[i].Employee.Name == staffName {
			return s.Columns[i].Appointments
		}
	}
	return nil
}

// Service computes and caches the current day-view snapshot and hosts the
// drag-reschedule engine over it.
type Service struct {
	appointments AppointmentSource
	employees    EmployeeSource
	rules        schedule.Rules
	cache        *availability.Cache
	revisions    RevisionSource
	logger       *zerolog.Logger

	mu      sync.Mutex
	current *Snapshot

	engine *reschedule.Engine
}

// NewService wires a day-view service. persister may be nil for offline
// mode; bus may be nil when no external invalidation signals exist.
func NewService(
	appointments AppointmentSource,
	employees EmployeeSource,
	rules schedule.Rules,
	cache *availability.Cache,
	revisions RevisionSource,
	persister reschedule.Persister,
	bus *events.Bus,
	logger *zerolog.Logger,
) *Service {
	s := &Service{
		appointments: appointments,
		employees:    employees,
		rules:        rules,
		cache:        cache,
		revisions:    revisions,
		logger:       logger,
	}
	s.engine = reschedule.NewEngine(s, s, persister, logger)

	if bus != nil {
		refresh := func(ev events.Event) {
			s.mu.Lock()
			cur := s.current
			s.mu.Unlock()
			if cur == nil {
				return
			}
			date := ev.Date
			if date.IsZero() {
				date = cur.Date
			}
			if _, err := s.ComputeSnapshot(context.Background(), date, Options{}); err != nil {
				logger.Error().Err(err).Str("trigger", ev.Type).Msg("snapshot refresh failed")
			}
			metrics.IncSnapshotRecomputed(ev.Type)
		}
		bus.Subscribe(events.TypeAppointmentsChanged, refresh)
		bus.Subscribe(events.TypeScheduleChanged, refresh)
		bus.Subscribe(events.TypeDateSelected, refresh)
	}
	return s
}

// ComputeSnapshot recomputes the full day view for a date and makes it
// current. Roster, buckets and occupancy are all derived from the same
// appointment snapshot; no interleaving with newer data can occur within
// one pass.
func (s *Service) ComputeSnapshot(ctx context.Context, date time.Time, opts Options) (*Snapshot, error) {
	apts, err := s.appointments.AppointmentsForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}
	emps, err := s.employees.Employees(ctx)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	revision := int64(0)
	if s.revisions != nil {
		revision = s.revisions.ScheduleRevision()
	}

	buckets := roster.Bucketize(apts)
	columns := roster.Resolve(emps, buckets, date, s.rules, opts.Search)

	slots := grid.Slots()
	if opts.Compact {
		slots = grid.CompactSlots(apts)
	}

	avail := make(map[string]map[int]models.AvailabilityEntry, len(columns))
	for i := range columns {
		emp := columns[i].Employee
		avail[emp.Name] = s.cache.Lookup(&emp, date, revision)
	}

	snap := &Snapshot{
		Date:         date,
		Revision:     revision,
		Slots:        slots,
		Columns:      columns,
		Unassigned:   buckets.Unassigned,
		Appointments: apts,
		availability: avail,
	}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()

	metrics.SetRosterColumns(len(columns))
	return snap, nil
}

// Current returns the last computed snapshot, or nil.
func (s *Service) Current() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// ByID implements reschedule.Appointments over the current snapshot.
func (s *Service) ByID(id int64) (*models.Appointment, bool) {
	s.mu.Lock()
	snap := s.current
	s.mu.Unlock()
	if snap == nil {
		return nil, false
	}
	for i := range snap.Appointments {
		if snap.Appointments[i].ID == id {
			return &snap.Appointments[i], true
		}
	}
	return nil, false
}

// CanDrop implements reschedule.TargetChecker: an employee cell is a
// legal target only when the cached availability says so.
func (s *Service) CanDrop(staffName string, slotMinutes int) bool {
	s.mu.Lock()
	snap := s.current
	s.mu.Unlock()
	if snap == nil {
		return false
	}
	return snap.Availability(staffName, slotMinutes).Available
}

// DragStart begins a drag for an appointment on the current snapshot.
func (s *Service) DragStart(appointmentID int64) *reschedule.Session {
	return s.engine.DragStart(appointmentID)
}

// DragOver validates a candidate drop cell.
func (s *Service) DragOver(session *reschedule.Session, cell reschedule.Cell) bool {
	return s.engine.DragOver(session, cell)
}

// CancelDrag aborts a drag with no mutation.
func (s *Service) CancelDrag(session *reschedule.Session) {
	s.engine.Cancel(session)
}

// Drop completes a drag and, if the appointment moved, recomputes the
// affected day so roster ordering and buckets reflect the new assignment.
func (s *Service) Drop(ctx context.Context, session *reschedule.Session, cell reschedule.Cell) (*reschedule.Result, error) {
	result, err := s.engine.Drop(ctx, session, cell)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	s.mu.Lock()
	date := time.Time{}
	if s.current != nil {
		date = s.current.Date
	}
	s.mu.Unlock()

	if !date.IsZero() {
		if _, err := s.ComputeSnapshot(ctx, date, Options{}); err != nil {
			return result, fmt.Errorf("recompute after drop: %w", err)
		}
		metrics.IncSnapshotRecomputed("reschedule")
	}
	return result, nil
}
