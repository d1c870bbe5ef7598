package rulesapi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"salondesk/internal/models"
)

// Revisions exposes the schedule revision counter owned by the caller.
type Revisions interface {
	ScheduleRevision() int64
}

// RemoteRules adapts the HTTP client to the in-process rules contract.
// Verdicts fail closed when the service is unreachable: nothing renders
// as bookable that the rules service did not confirm.
type RemoteRules struct {
	client    *Client
	revisions Revisions
	logger    *zerolog.Logger
	timeout   time.Duration

	mu   sync.Mutex
	days map[string]map[int]models.AvailabilityEntry
}

// NewRemoteRules wraps the client. One day's verdicts are fetched in a
// single round-trip and reused for every slot of that day.
func NewRemoteRules(client *Client, revisions Revisions, logger *zerolog.Logger) *RemoteRules {
	return &RemoteRules{
		client:    client,
		revisions: revisions,
		logger:    logger,
		timeout:   10 * time.Second,
		days:      make(map[string]map[int]models.AvailabilityEntry),
	}
}

// IsAvailable implements schedule.Rules.
func (r *RemoteRules) IsAvailable(emp *models.Employee, date time.Time, slotMinutes int) models.AvailabilityEntry {
	if emp == nil {
		return models.AvailabilityEntry{Available: false, Reason: "unknown employee"}
	}
	if emp.Virtual {
		return models.AvailabilityEntry{Available: true}
	}

	day, ok := r.dayFor(emp.Name, date)
	if !ok {
		return models.AvailabilityEntry{Available: false, Reason: "rules service unavailable"}
	}
	return day[slotMinutes]
}

// StatusForDate implements schedule.Rules.
func (r *RemoteRules) StatusForDate(emp *models.Employee, date time.Time) models.DayStatus {
	if emp == nil {
		return models.DayStatus{Status: models.ScheduleOff}
	}
	if emp.Virtual {
		return models.DayStatus{Status: models.SchedulePartial, Details: "no schedule on file"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	status, err := r.client.StatusForDate(ctx, emp.Name, date, r.revision())
	if err != nil {
		r.logger.Warn().Err(err).Str("employee", emp.Name).Msg("schedule status fetch failed")
		return models.DayStatus{Status: models.ScheduleOff, Details: "rules service unavailable"}
	}
	return status
}

func (r *RemoteRules) dayFor(name string, date time.Time) (map[int]models.AvailabilityEntry, bool) {
	revision := r.revision()
	key := fmt.Sprintf("%s|%s|%d", name, models.DateKey(date), revision)

	r.mu.Lock()
	day, ok := r.days[key]
	r.mu.Unlock()
	if ok {
		return day, true
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	day, err := r.client.DayAvailability(ctx, name, date, revision)
	if err != nil {
		r.logger.Warn().Err(err).Str("employee", name).Msg("availability fetch failed")
		return nil, false
	}

	r.mu.Lock()
	r.days[key] = day
	r.mu.Unlock()
	return day, true
}

func (r *RemoteRules) revision() int64 {
	if r.revisions == nil {
		return 0
	}
	return r.revisions.ScheduleRevision()
}
