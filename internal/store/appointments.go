package store

import (
	"context"
	"fmt"
	"time"

	"salondesk/internal/models"
)

// CreateAppointment inserts an appointment and signals the change.
func (s *Store) CreateAppointment(ctx context.Context, apt *models.Appointment) error {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO appointments (
			date, start_minutes, duration_minutes, extra_minutes,
			staff_name, status, customer, service, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		models.DateKey(apt.Date), apt.StartMinutes, apt.DurationMinutes, apt.ExtraMinutes,
		apt.StaffName, apt.Status, apt.Customer, apt.Service, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("appointment id: %w", err)
	}
	apt.ID = id
	apt.Version = 1

	s.notifyAppointments(apt.Date)
	return nil
}

// AppointmentsForDate returns the day's appointments ordered by start.
func (s *Store) AppointmentsForDate(ctx context.Context, date time.Time) ([]models.Appointment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, start_minutes, duration_minutes, extra_minutes,
		       staff_name, status, customer, service, version
		FROM appointments
		WHERE date = ?
		ORDER BY start_minutes, id`,
		models.DateKey(date),
	)
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	defer rows.Close()

	var apts []models.Appointment
	for rows.Next() {
		var apt models.Appointment
		var dateText string
		if err := rows.Scan(&apt.ID, &dateText, &apt.StartMinutes, &apt.DurationMinutes,
			&apt.ExtraMinutes, &apt.StaffName, &apt.Status, &apt.Customer,
			&apt.Service, &apt.Version); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		parsed, err := time.Parse("2006-01-02", dateText)
		if err != nil {
			return nil, fmt.Errorf("parse appointment date %q: %w", dateText, err)
		}
		apt.Date = parsed
		apts = append(apts, apt)
	}
	return apts, rows.Err()
}

// ApplyReschedule moves an appointment to a new start slot and staff
// assignment. It is the landing point of a drag-drop in connected mode
// and touches nothing besides time and staff.
func (s *Store) ApplyReschedule(ctx context.Context, appointmentID int64, startMinutes int, staffName string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE appointments
		SET start_minutes = ?, staff_name = ?, version = version + 1, updated_at = ?
		WHERE id = ?`,
		startMinutes, staffName, time.Now(), appointmentID,
	)
	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	var dateText string
	if err := s.db.QueryRowContext(ctx,
		"SELECT date FROM appointments WHERE id = ?", appointmentID,
	).Scan(&dateText); err == nil {
		if date, perr := time.Parse("2006-01-02", dateText); perr == nil {
			s.notifyAppointments(date)
		}
	}
	return nil
}

// UpdateAppointmentStatus transitions an appointment's status with
// optimistic concurrency on the version column.
func (s *Store) UpdateAppointmentStatus(ctx context.Context, appointmentID, version int64, status string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE appointments
		SET status = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		status, time.Now(), appointmentID, version,
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	return nil
}

// DeleteAppointment removes an appointment and signals the change.
func (s *Store) DeleteAppointment(ctx context.Context, appointmentID int64) error {
	var dateText string
	err := s.db.QueryRowContext(ctx,
		"SELECT date FROM appointments WHERE id = ?", appointmentID,
	).Scan(&dateText)
	if err != nil {
		return ErrNotFound
	}

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM appointments WHERE id = ?", appointmentID); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}

	if date, perr := time.Parse("2006-01-02", dateText); perr == nil {
		s.notifyAppointments(date)
	}
	return nil
}
