// Package health provides health checking functionality for the drug info service.
package health

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/giygas/druginfo/interfaces"
)

// Health statuses
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// staleProbeFactor is how many probe intervals may pass without a probe
// before the result is no longer trusted
const staleProbeFactor = 3

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	cache         interfaces.ResultStore
	prober        interfaces.Prober
	probeInterval time.Duration
	startTime     time.Time
	now           func() time.Time
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(cache interfaces.ResultStore, prober interfaces.Prober, probeInterval time.Duration) *HealthCheckerImpl {
	return &HealthCheckerImpl{
		cache:         cache,
		prober:        prober,
		probeInterval: probeInterval,
		startTime:     time.Now(),
		now:           time.Now,
	}
}

// HealthCheck reports the service healthy while the backend answered its
// last probe. A failed probe makes it unhealthy (503); a missing or stale
// probe only degrades it, since the backend may still answer lookups.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	now := h.now()
	at, ok, probeErr := h.prober.LastProbe()

	switch {
	case at.IsZero():
		status, httpStatus = StatusDegraded, http.StatusOK
	case !ok:
		status, httpStatus = StatusUnhealthy, http.StatusServiceUnavailable
	case now.Sub(at) > staleProbeFactor*h.probeInterval:
		status, httpStatus = StatusDegraded, http.StatusOK
	default:
		status, httpStatus = StatusHealthy, http.StatusOK
	}

	uptime := now.Sub(h.startTime)
	data = map[string]any{
		"uptime":            formatUptimeHuman(uptime),
		"uptime_seconds":    math.Round(uptime.Seconds()),
		"cache_entries":     h.cache.Len(),
		"backend_reachable": ok,
	}
	if !at.IsZero() {
		data["last_probe"] = at.Format(time.RFC3339)
		data["probe_age_seconds"] = math.Round(now.Sub(at).Seconds()*10) / 10
	}
	if probeErr != nil {
		data["backend_error"] = probeErr.Error()
	}

	return status, data, httpStatus
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}
