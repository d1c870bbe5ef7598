package dayview

import (
	"salondesk/internal/grid"
	"salondesk/internal/models"
	"salondesk/internal/timeutil"
)

// RenderCell is one (column, slot) cell prepared for a UI layer. Starting
// holds only the appointments rendered at this slot; an appointment
// spanning several slots appears once, with SpanSlots sizing its height.
type RenderCell struct {
	Slot      int          `json:"slot"`
	Clock     string       `json:"clock"`
	Starting  []RenderUnit `json:"starting,omitempty"`
	Occupied  bool         `json:"occupied"`
	Available bool         `json:"available"`
	Reason    string       `json:"reason,omitempty"`
}

// RenderUnit is one rendered appointment block.
type RenderUnit struct {
	Appointment models.Appointment `json:"appointment"`
	SpanSlots   int                `json:"span_slots"`
	EndClock    string             `json:"end_clock"`
}

// RenderColumn is one employee column with its cells.
type RenderColumn struct {
	Name    string           `json:"name"`
	Virtual bool             `json:"virtual,omitempty"`
	Status  models.DayStatus `json:"status"`
	Cells   []RenderCell     `json:"cells"`
}

// RenderAnyoneCell is one unassigned-bucket cell: a single primary
// appointment plus an overflow count, with the full list for the
// overflow affordance.
type RenderAnyoneCell struct {
	Slot           int                  `json:"slot"`
	Clock          string               `json:"clock"`
	Primary        *RenderUnit          `json:"primary,omitempty"`
	RemainingCount int                  `json:"remaining_count"`
	All            []models.Appointment `json:"all,omitempty"`
}

// RenderModel is the full day view prepared for rendering.
type RenderModel struct {
	Date     string             `json:"date"`
	Revision int64              `json:"revision"`
	Slots    []int              `json:"slots"`
	Anyone   []RenderAnyoneCell `json:"anyone"`
	Columns  []RenderColumn     `json:"columns"`
}

// Render flattens the snapshot into a UI-ready model.
func (s *Snapshot) Render() RenderModel {
	model := RenderModel{
		Date:     models.DateKey(s.Date),
		Revision: s.Revision,
		Slots:    s.Slots,
	}

	for _, slot := range s.Slots {
		cell := RenderAnyoneCell{Slot: slot, Clock: timeutil.FormatClock(slot)}
		occ := s.UnassignedAt(slot)
		if occ.Primary != nil {
			unit := renderUnit(*occ.Primary)
			cell.Primary = &unit
			cell.RemainingCount = occ.RemainingCount
			cell.All = occ.All
		}
		model.Anyone = append(model.Anyone, cell)
	}

	for i := range s.Columns {
		col := &s.Columns[i]
		rc := RenderColumn{
			Name:    col.Employee.Name,
			Virtual: col.Employee.Virtual,
			Status:  col.Status,
		}
		for _, slot := range s.Slots {
			entry := s.Availability(col.Employee.Name, slot)
			cell := RenderCell{
				Slot:      slot,
				Clock:     timeutil.FormatClock(slot),
				Occupied:  len(grid.Overlapping(col.Appointments, slot)) > 0,
				Available: entry.Available,
				Reason:    entry.Reason,
			}
			for _, apt := range grid.StartingAt(col.Appointments, slot) {
				cell.Starting = append(cell.Starting, renderUnit(apt))
			}
			rc.Cells = append(rc.Cells, cell)
		}
		model.Columns = append(model.Columns, rc)
	}
	return model
}

func renderUnit(apt models.Appointment) RenderUnit {
	span := (apt.EffectiveDuration() + grid.SlotMinutes - 1) / grid.SlotMinutes
	if span < 1 {
		span = 1
	}
	return RenderUnit{
		Appointment: apt,
		SpanSlots:   span,
		EndClock:    timeutil.FormatClock(apt.EndMinutes()),
	}
}
