// Package export renders a computed day-view snapshot as a printable
// Excel day sheet for the front desk.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"salondesk/internal/dayview"
	"salondesk/internal/grid"
	"salondesk/internal/models"
	"salondesk/internal/roster"
	"salondesk/internal/timeutil"
)

// DaySheet writes one sheet: a row per slot, a column per roster column,
// plus the anyone bucket. Appointments appear once, at their start slot;
// continuation slots are marked, unavailable slots are greyed with the
// rules reason.
func DaySheet(snap *dayview.Snapshot, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := models.DateKey(snap.Date)
	f.SetSheetName("Sheet1", sheet)

	header := []interface{}{"Time", "Anyone"}
	for i := range snap.Columns {
		col := &snap.Columns[i]
		label := col.Employee.Name
		if col.Status.Status != models.ScheduleFull {
			label = fmt.Sprintf("%s (%s)", label, col.Status.Status)
		}
		header = append(header, label)
	}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return err
	}
	if err := boldRow(f, sheet, len(header)); err != nil {
		return err
	}

	for rowIdx, slot := range snap.Slots {
		row := []interface{}{timeutil.FormatClock(slot)}
		row = append(row, unassignedCell(snap, slot))
		for i := range snap.Columns {
			row = append(row, columnCell(snap, &snap.Columns[i], slot))
		}
		if err := writeRow(f, sheet, rowIdx+2, row); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func unassignedCell(snap *dayview.Snapshot, slot int) string {
	occ := snap.UnassignedAt(slot)
	if occ.Primary == nil {
		if len(grid.Overlapping(snap.Unassigned, slot)) > 0 {
			return "↑"
		}
		return ""
	}
	text := appointmentText(occ.Primary)
	if occ.RemainingCount > 0 {
		text = fmt.Sprintf("%s (+%d more)", text, occ.RemainingCount)
	}
	return text
}

func columnCell(snap *dayview.Snapshot, col *roster.Column, slot int) string {
	starting := snap.OccupantsStartingAt(col.Employee.Name, slot)
	if len(starting) > 0 {
		return appointmentText(&starting[0])
	}
	if len(snap.OccupantsOverlapping(col.Employee.Name, slot)) > 0 {
		return "↑"
	}
	if entry := snap.Availability(col.Employee.Name, slot); !entry.Available {
		return "×"
	}
	return ""
}

func appointmentText(apt *models.Appointment) string {
	return fmt.Sprintf("%s – %s (%s–%s)",
		apt.Customer, apt.Service,
		timeutil.FormatClock(apt.StartMinutes),
		timeutil.FormatClock(apt.EndMinutes()))
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, val := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, val); err != nil {
			return err
		}
	}
	return nil
}

func boldRow(f *excelize.File, sheet string, width int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	start, _ := excelize.CoordinatesToCellName(1, 1)
	end, _ := excelize.CoordinatesToCellName(width, 1)
	return f.SetCellStyle(sheet, start, end, style)
}
