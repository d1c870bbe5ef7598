// Package rulesapi talks to a remote schedule-rules service implementing
// the availability contract over HTTP, the connected-mode alternative to
// the in-process standard rules.
package rulesapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"salondesk/internal/models"
)

// Client is an HTTP client for the schedule-rules service. Verdicts are
// pure per (employee, date, slot, revision), so an optional Redis
// read-through cache is safe; the revision in the key handles
// invalidation.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	redis    *redis.Client
	cacheTTL time.Duration
}

// NewClient constructs a client for the given base URL.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// UseRedisCache configures optional Redis caching for rules lookups.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// availabilityResponse is the wire form of one day's verdicts.
type availabilityResponse struct {
	Entries map[int]models.AvailabilityEntry `json:"entries"` // keyed by slot minutes
}

type statusResponse struct {
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
}

// DayAvailability fetches all slot verdicts for an employee and date in
// one round-trip. revision participates in the cache key only.
func (c *Client) DayAvailability(ctx context.Context, employeeName string, date time.Time, revision int64) (map[int]models.AvailabilityEntry, error) {
	dateKey := models.DateKey(date)
	endpoint := fmt.Sprintf("%s/api/v1/availability/%s?date=%s",
		c.baseURL, url.PathEscape(employeeName), url.QueryEscape(dateKey))
	cacheKey := fmt.Sprintf("rules:availability:%s:%s:%d", employeeName, dateKey, revision)

	var resp availabilityResponse
	if c.readCache(ctx, cacheKey, &resp) {
		return resp.Entries, nil
	}
	if err := c.doGet(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, resp)
	return resp.Entries, nil
}

// StatusForDate fetches the day-status badge for an employee and date.
func (c *Client) StatusForDate(ctx context.Context, employeeName string, date time.Time, revision int64) (models.DayStatus, error) {
	dateKey := models.DateKey(date)
	endpoint := fmt.Sprintf("%s/api/v1/schedule-status/%s?date=%s",
		c.baseURL, url.PathEscape(employeeName), url.QueryEscape(dateKey))
	cacheKey := fmt.Sprintf("rules:status:%s:%s:%d", employeeName, dateKey, revision)

	var resp statusResponse
	if !c.readCache(ctx, cacheKey, &resp) {
		if err := c.doGet(ctx, endpoint, &resp); err != nil {
			return models.DayStatus{}, err
		}
		c.writeCache(ctx, cacheKey, resp)
	}
	return models.DayStatus{
		Status:  models.ScheduleStatus(resp.Status),
		Details: resp.Details,
	}, nil
}

// HealthCheck checks if the rules service is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), out) == nil
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.cacheTTL).Err()
}

func (c *Client) doGet(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
