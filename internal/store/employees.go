package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"salondesk/internal/models"
)

// CreateEmployee inserts a roster member and its weekly schedule.
func (s *Store) CreateEmployee(ctx context.Context, emp *models.Employee) error {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (name, role, specialties, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		emp.Name, string(emp.Role), strings.Join(emp.Specialties, ","), now, now,
	)
	if err != nil {
		return fmt.Errorf("insert employee: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("employee id: %w", err)
	}
	emp.ID = id

	for weekday, day := range emp.Weekly {
		if err := s.setWeeklyDay(ctx, id, weekday, day); err != nil {
			return err
		}
	}
	return nil
}

// SetWeeklySchedule replaces one weekday of an employee's default
// schedule and bumps the schedule revision.
func (s *Store) SetWeeklySchedule(ctx context.Context, employeeID int64, weekday int, day models.DaySchedule) error {
	if weekday < 0 || weekday > 6 {
		return fmt.Errorf("weekday %d out of range", weekday)
	}
	if err := s.setWeeklyDay(ctx, employeeID, weekday, day); err != nil {
		return err
	}
	return s.bumpRevision(ctx)
}

func (s *Store) setWeeklyDay(ctx context.Context, employeeID int64, weekday int, day models.DaySchedule) error {
	workType := day.WorkType
	if workType == "" {
		workType = models.WorkOff
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO weekly_schedules (employee_id, weekday, work_type, start_time, end_time)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, weekday) DO UPDATE SET
			work_type = excluded.work_type,
			start_time = excluded.start_time,
			end_time = excluded.end_time`,
		employeeID, weekday, string(workType), day.StartTime, day.EndTime,
	)
	if err != nil {
		return fmt.Errorf("upsert weekly schedule: %w", err)
	}
	return nil
}

// UpsertScheduleOverride creates or replaces the override for the given
// date (last write wins) and bumps the schedule revision.
func (s *Store) UpsertScheduleOverride(ctx context.Context, employeeID int64, o models.ScheduleOverride) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schedule_overrides (employee_id, date, work_type, start_time, end_time, reason, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, date) DO UPDATE SET
			work_type = excluded.work_type,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			reason = excluded.reason,
			updated_at = excluded.updated_at`,
		employeeID, models.DateKey(o.Date), string(o.Schedule.WorkType),
		o.Schedule.StartTime, o.Schedule.EndTime, o.Reason, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("upsert override: %w", err)
	}
	return s.bumpRevision(ctx)
}

// DeleteScheduleOverride removes the override for a date and bumps the
// schedule revision.
func (s *Store) DeleteScheduleOverride(ctx context.Context, employeeID int64, date time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM schedule_overrides WHERE employee_id = ? AND date = ?",
		employeeID, models.DateKey(date),
	); err != nil {
		return fmt.Errorf("delete override: %w", err)
	}
	return s.bumpRevision(ctx)
}

// OverridesInRange returns one employee's overrides with dates in
// [from, to], ordered by date. Used by schedule-editing screens.
func (s *Store) OverridesInRange(ctx context.Context, employeeID int64, from, to time.Time) ([]models.ScheduleOverride, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, work_type, start_time, end_time, reason
		FROM schedule_overrides
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date`,
		employeeID, models.DateKey(from), models.DateKey(to),
	)
	if err != nil {
		return nil, fmt.Errorf("query overrides: %w", err)
	}
	defer rows.Close()

	var out []models.ScheduleOverride
	for rows.Next() {
		var dateText string
		var o models.ScheduleOverride
		if err := rows.Scan(&dateText, &o.Schedule.WorkType,
			&o.Schedule.StartTime, &o.Schedule.EndTime, &o.Reason); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		date, err := time.Parse("2006-01-02", dateText)
		if err != nil {
			return nil, fmt.Errorf("parse override date %q: %w", dateText, err)
		}
		o.Date = date
		out = append(out, o)
	}
	return out, rows.Err()
}

// Employees returns the full roster with weekly schedules and overrides
// attached.
func (s *Store) Employees(ctx context.Context) ([]models.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, role, specialties FROM employees ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()

	var emps []models.Employee
	index := make(map[int64]int)
	for rows.Next() {
		var emp models.Employee
		var specialties string
		if err := rows.Scan(&emp.ID, &emp.Name, &emp.Role, &specialties); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		if specialties != "" {
			emp.Specialties = strings.Split(specialties, ",")
		}
		index[emp.ID] = len(emps)
		emps = append(emps, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachWeekly(ctx, emps, index); err != nil {
		return nil, err
	}
	if err := s.attachOverrides(ctx, emps, index); err != nil {
		return nil, err
	}
	return emps, nil
}

func (s *Store) attachWeekly(ctx context.Context, emps []models.Employee, index map[int64]int) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT employee_id, weekday, work_type, start_time, end_time FROM weekly_schedules")
	if err != nil {
		return fmt.Errorf("query weekly schedules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var employeeID int64
		var weekday int
		var day models.DaySchedule
		if err := rows.Scan(&employeeID, &weekday, &day.WorkType, &day.StartTime, &day.EndTime); err != nil {
			return fmt.Errorf("scan weekly schedule: %w", err)
		}
		if i, ok := index[employeeID]; ok && weekday >= 0 && weekday <= 6 {
			emps[i].Weekly[weekday] = day
		}
	}
	return rows.Err()
}

func (s *Store) attachOverrides(ctx context.Context, emps []models.Employee, index map[int64]int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, date, work_type, start_time, end_time, reason
		FROM schedule_overrides ORDER BY date`)
	if err != nil {
		return fmt.Errorf("query overrides: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var employeeID int64
		var dateText string
		var o models.ScheduleOverride
		if err := rows.Scan(&employeeID, &dateText, &o.Schedule.WorkType,
			&o.Schedule.StartTime, &o.Schedule.EndTime, &o.Reason); err != nil {
			return fmt.Errorf("scan override: %w", err)
		}
		date, err := time.Parse("2006-01-02", dateText)
		if err != nil {
			return fmt.Errorf("parse override date %q: %w", dateText, err)
		}
		o.Date = date
		if i, ok := index[employeeID]; ok {
			emps[i].SetOverride(o)
		}
	}
	return rows.Err()
}

// EmployeeByName returns one roster member, or ErrNotFound.
func (s *Store) EmployeeByName(ctx context.Context, name string) (*models.Employee, error) {
	var emp models.Employee
	var specialties string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, role, specialties FROM employees WHERE name = ?", name,
	).Scan(&emp.ID, &emp.Name, &emp.Role, &specialties)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query employee: %w", err)
	}
	if specialties != "" {
		emp.Specialties = strings.Split(specialties, ",")
	}
	return &emp, nil
}
