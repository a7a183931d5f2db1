package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/giygas/druginfo/interfaces"
	"github.com/giygas/druginfo/logging"
)

var _ interfaces.Prober = (*ProbeState)(nil)

type probeResult struct {
	at  time.Time
	err error
}

// ProbeState pings the backend and keeps the latest outcome for health checks
type ProbeState struct {
	backend interfaces.Backend
	timeout time.Duration
	last    atomic.Pointer[probeResult]
}

// NewProbeState returns a prober whose pings are bounded by timeout
func NewProbeState(backend interfaces.Backend, timeout time.Duration) *ProbeState {
	return &ProbeState{backend: backend, timeout: timeout}
}

// Probe pings the backend once and records the outcome. Only changes of
// reachability are logged above debug level.
func (p *ProbeState) Probe(ctx context.Context) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	err := p.backend.Ping(ctx)
	prev := p.last.Swap(&probeResult{at: time.Now(), err: err})

	wasUp := prev == nil || prev.err == nil
	switch {
	case err != nil && wasUp:
		logging.Warn("Inference backend unreachable", "error", err)
	case err == nil && !wasUp:
		logging.Info("Inference backend reachable again", "duration_ms", time.Since(start).Milliseconds())
	default:
		logging.Debug("Backend probe", "ok", err == nil, "duration_ms", time.Since(start).Milliseconds())
	}

	return err
}

// LastProbe returns the time and outcome of the latest probe. A zero time means never.
func (p *ProbeState) LastProbe() (time.Time, bool, error) {
	r := p.last.Load()
	if r == nil {
		return time.Time{}, false, nil
	}
	return r.at, r.err == nil, r.err
}
