// Package reschedule implements the drag-to-reschedule state machine.
// The host UI translates pointer events into DragStart/DragOver/Drop/
// Cancel calls; all transition logic lives here.
package reschedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"salondesk/internal/metrics"
	"salondesk/internal/models"
	"salondesk/internal/timeutil"
)

// State represents the current state of an in-flight drag operation.
type State string

const (
	StateIdle     State = "idle"
	StateDragging State = "dragging"
	StateHover    State = "hover"
	StateDropped  State = "dropped"
)

var (
	// ErrPersistFailed wraps a connected-mode persistence rejection. The
	// optimistic local mutation has already been rolled back when this is
	// returned.
	ErrPersistFailed = errors.New("reschedule: persist failed")
)

// Cell identifies a drop target: one (slot, column) cell of the grid.
// An empty StaffName with Unassigned set means the anyone bucket, which
// is always a legal target.
type Cell struct {
	SlotMinutes int
	StaffName   string
	Unassigned  bool
}

// TargetChecker decides whether an employee cell is a legal drop target,
// normally backed by the availability cache.
type TargetChecker interface {
	CanDrop(staffName string, slotMinutes int) bool
}

// Appointments gives the engine access to the live day snapshot.
type Appointments interface {
	ByID(id int64) (*models.Appointment, bool)
}

// Persister persists a completed reschedule in connected mode. A nil
// persister means local/offline mode: the mutation is durable as-is.
type Persister interface {
	ApplyReschedule(ctx context.Context, appointmentID int64, startMinutes int, staffName string) error
}

// Session is one in-flight drag operation.
type Session struct {
	ID            string
	AppointmentID int64

	mu        sync.Mutex
	state     State
	hover     Cell
	startedAt time.Time
}

// GetState returns the session's current state.
func (s *Session) GetState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HoverCell returns the last validated hover target.
func (s *Session) HoverCell() Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hover
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// Result describes a completed drop.
type Result struct {
	AppointmentID int64
	StartMinutes  int
	EndMinutes    int
	StaffName     string
	PreviousStart int
	PreviousStaff string
}

// Engine runs drag sessions against a day snapshot.
type Engine struct {
	appointments Appointments
	checker      TargetChecker
	persister    Persister
	logger       *zerolog.Logger

	transitions map[State][]State
}

// NewEngine creates a drag engine. persister may be nil for offline mode.
func NewEngine(appointments Appointments, checker TargetChecker, persister Persister, logger *zerolog.Logger) *Engine {
	return &Engine{
		appointments: appointments,
		checker:      checker,
		persister:    persister,
		logger:       logger,
		transitions: map[State][]State{
			StateIdle:     {StateDragging},
			StateDragging: {StateHover, StateIdle},
			StateHover:    {StateHover, StateDropped, StateDragging, StateIdle},
			StateDropped:  {StateIdle},
		},
	}
}

// CanTransition checks if a transition is allowed.
func (e *Engine) CanTransition(from, to State) bool {
	for _, s := range e.transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// DragStart begins a drag for an appointment.
func (e *Engine) DragStart(appointmentID int64) *Session {
	return &Session{
		ID:            uuid.NewString(),
		AppointmentID: appointmentID,
		state:         StateDragging,
		startedAt:     time.Now(),
	}
}

// DragOver reports whether the cell is a valid drop target, and if so,
// moves the session into (or keeps it in) the hover state. Hovering an
// unavailable cell is not an error; the transition simply does not
// happen.
func (e *Engine) DragOver(session *Session, cell Cell) bool {
	if !e.validTarget(cell) {
		return false
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if !e.CanTransition(session.state, StateHover) {
		return false
	}
	session.state = StateHover
	session.hover = cell
	return true
}

// Cancel aborts the drag with no mutation.
func (e *Engine) Cancel(session *Session) {
	session.setState(StateIdle)
	metrics.IncReschedule("cancelled")
}

// Drop completes the drag onto the given cell.
//
// The dragged appointment keeps its stored effective duration; only its
// start time and staff assignment change. The new start is snapped to the
// 15-minute grid. A drop from a non-hover state, or onto an invalid cell,
// cancels the drag. A drop whose appointment id no longer resolves is a
// logged no-op (it signals a race with a concurrent deletion). In
// connected mode a persistence failure rolls the local mutation back and
// returns ErrPersistFailed.
func (e *Engine) Drop(ctx context.Context, session *Session, cell Cell) (*Result, error) {
	if session.GetState() != StateHover || !e.validTarget(cell) {
		e.Cancel(session)
		return nil, nil
	}
	session.setState(StateDropped)
	defer session.setState(StateIdle)

	apt, ok := e.appointments.ByID(session.AppointmentID)
	if !ok {
		e.logger.Warn().
			Int64("appointment_id", session.AppointmentID).
			Msg("dropped appointment no longer exists, ignoring")
		metrics.IncReschedule("missing")
		return nil, nil
	}

	effective := apt.EffectiveDuration()
	snapped := timeutil.SnapToGrid(cell.SlotMinutes, timeutil.DefaultGridMinutes)
	staffName := ""
	if !cell.Unassigned {
		staffName = cell.StaffName
	}

	prevStart, prevStaff := apt.StartMinutes, apt.StaffName

	// Optimistic local apply; time and staff are the only attributes a
	// reschedule may touch.
	apt.StartMinutes = snapped
	apt.StaffName = staffName

	if e.persister != nil {
		if err := e.persister.ApplyReschedule(ctx, apt.ID, snapped, staffName); err != nil {
			apt.StartMinutes = prevStart
			apt.StaffName = prevStaff
			e.logger.Error().Err(err).
				Int64("appointment_id", apt.ID).
				Msg("could not move appointment, rolled back")
			metrics.IncReschedule("persist_failed")
			return nil, fmt.Errorf("%w: %v", ErrPersistFailed, err)
		}
	}

	metrics.IncReschedule("moved")
	return &Result{
		AppointmentID: apt.ID,
		StartMinutes:  snapped,
		EndMinutes:    snapped + effective,
		StaffName:     staffName,
		PreviousStart: prevStart,
		PreviousStaff: prevStaff,
	}, nil
}

func (e *Engine) validTarget(cell Cell) bool {
	if cell.Unassigned {
		return true
	}
	if e.checker == nil {
		return false
	}
	return e.checker.CanDrop(cell.StaffName, cell.SlotMinutes)
}
