// FilePath: internal/coordinator/coordinator.go

// Package coordinator drives the upload cycle: on a timer (or a manual
// refresh) it gates on source availability, collects and converts current
// readings, pushes them to openSenseMap and records the outcome. Failures
// never escape a cycle; the timer keeps running until shutdown.
package coordinator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/blitt001/ha-opensensemap/internal/collector"
	"github.com/blitt001/ha-opensensemap/internal/config"
	"github.com/blitt001/ha-opensensemap/internal/models"
	"github.com/blitt001/ha-opensensemap/internal/monitoring"
	"github.com/blitt001/ha-opensensemap/internal/osem"
	"github.com/blitt001/ha-opensensemap/internal/source"
)

// Cycle events emitted after each run.
const (
	EventCycleSuccess = "cycle.success"
	EventCycleError   = "cycle.error"
	EventCycleSkipped = "cycle.skipped"
)

// Coordinator owns the upload loop and all upload status state.
type Coordinator struct {
	cfg    *config.Provider
	source source.Provider
	client *osem.Client
	events *nuts.EventEmitter

	// cycleMu serializes cycles: a tick or manual refresh that arrives
	// while one is in flight is dropped, never queued.
	cycleMu sync.Mutex

	// runCtx is the loop context set by Run; manual refreshes inherit it
	// so shutdown cancels them too.
	ctxMu  sync.RWMutex
	runCtx context.Context

	statusMu sync.RWMutex
	status   models.UploadStatus
}

// New creates a coordinator. Configuration is re-read from the provider
// at the start of every cycle, so reconfiguration takes effect live.
func New(cfg *config.Provider, src source.Provider, client *osem.Client) *Coordinator {
	return &Coordinator{
		cfg:    cfg,
		source: src,
		client: client,
		events: nuts.NewEventEmitter(),
	}
}

// OnCycle registers a callback for a cycle event. The argument is the
// outcome message: the error text for error/skipped events, empty for
// success.
func (c *Coordinator) OnCycle(event string, handler func(msg string)) {
	c.events.On(event, "cycle_handler", func(args ...interface{}) {
		if len(args) > 0 {
			if msg, ok := args[0].(string); ok {
				handler(msg)
			}
		}
	})
}

// Run blocks, executing one cycle per update interval until ctx is done.
// The interval is re-read after every cycle, so a reconfigured period
// takes effect on the next tick.
func (c *Coordinator) Run(ctx context.Context) {
	c.setRunContext(ctx)
	nuts.L.Infof("[Coordinator] Starting upload loop for box %s", c.cfg.Current().Box.BoxID)

	// First upload happens right away; "pending" should not linger for a
	// full interval after startup.
	c.RunCycle(ctx)

	for {
		interval := time.Duration(c.cfg.Current().Box.UpdateInterval) * time.Second
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			c.client.Close()
			nuts.L.Infof("[Coordinator] Upload loop stopped")
			return
		case <-timer.C:
			c.RunCycle(ctx)
		}
	}
}

// RunCycle executes one cycle unless another is already in flight.
// It reports whether the cycle ran.
func (c *Coordinator) RunCycle(ctx context.Context) bool {
	if !c.cycleMu.TryLock() {
		nuts.L.Warnf("[Coordinator] Skipping cycle, previous one still running")
		return false
	}
	defer c.cycleMu.Unlock()

	c.cycle(ctx)
	return true
}

// Refresh starts a manual cycle, serialized with timer-driven ones.
// It returns false without side effects when a cycle is already running.
func (c *Coordinator) Refresh() bool {
	if !c.cycleMu.TryLock() {
		return false
	}
	ctx := c.refreshContext()
	go func() {
		defer c.cycleMu.Unlock()
		c.cycle(ctx)
	}()
	return true
}

func (c *Coordinator) setRunContext(ctx context.Context) {
	c.ctxMu.Lock()
	c.runCtx = ctx
	c.ctxMu.Unlock()
}

// refreshContext returns the loop context once Run has started, so a
// manual cycle cannot outlive shutdown.
func (c *Coordinator) refreshContext() context.Context {
	c.ctxMu.RLock()
	defer c.ctxMu.RUnlock()
	if c.runCtx != nil {
		return c.runCtx
	}
	return context.Background()
}

// cycle runs availability-check, collect and upload, then updates status.
// The caller must hold cycleMu.
func (c *Coordinator) cycle(ctx context.Context) {
	start := time.Now()
	defer func() {
		monitoring.CycleDuration.Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			// Absorb the panic into status so the loop survives.
			nuts.L.Errorf("[Coordinator] Cycle panicked: %v", r)
			c.recordFailure(fmt.Sprintf("%v", r))
			monitoring.UploadCycles.WithLabelValues("error").Inc()
			monitoring.UploadErrors.WithLabelValues("panic").Inc()
		}
	}()

	cfg := c.cfg.Current()
	mapping := cfg.Sensors.Mapping()

	unavailable := collector.CheckAvailability(ctx, mapping, c.source)
	if len(unavailable) > 0 {
		msg := "Sensors unavailable: " + strings.Join(unavailable, ", ")
		nuts.L.Warnf("[Coordinator] Skipping upload - %s", msg)
		c.recordFailure(msg)
		monitoring.UploadCycles.WithLabelValues("skipped").Inc()
		monitoring.UploadErrors.WithLabelValues("availability").Inc()
		c.events.Emit(EventCycleSkipped, msg)
		return
	}

	payload := collector.Collect(ctx, mapping, c.source)
	monitoring.PayloadSize.Observe(float64(len(payload)))

	snapshot, err := c.client.Push(ctx, cfg.Box.BoxID, cfg.Box.AccessToken, payload, cfg.Box.DebugMode)

	c.statusMu.Lock()
	if snapshot != nil {
		c.status.LastRequest = snapshot
	}
	if err != nil {
		c.status.LastError = err.Error()
	} else {
		now := time.Now()
		c.status.LastUpload = &now
		c.status.UploadCount++
		c.status.LastError = ""
		if len(payload) == 0 {
			c.status.EmptyUploads++
		}
	}
	c.statusMu.Unlock()

	if err != nil {
		nuts.L.Errorf("[Coordinator] Upload failed: %v", err)
		monitoring.UploadCycles.WithLabelValues("error").Inc()
		monitoring.UploadErrors.WithLabelValues(errorKind(err.Error())).Inc()
		c.events.Emit(EventCycleError, err.Error())
		return
	}

	nuts.L.Infof("[Coordinator] Upload cycle completed, %d values", len(payload))
	monitoring.UploadCycles.WithLabelValues("success").Inc()
	monitoring.Uploads.Inc()
	c.events.Emit(EventCycleSuccess, "")
}

// errorKind buckets an upload failure message for metrics.
func errorKind(msg string) string {
	switch {
	case msg == "Request timeout":
		return "timeout"
	case strings.HasPrefix(msg, "HTTP "):
		return "http"
	default:
		return "transport"
	}
}

// recordFailure sets last_error, leaving upload count and timestamp alone.
func (c *Coordinator) recordFailure(msg string) {
	c.statusMu.Lock()
	c.status.LastError = msg
	c.statusMu.Unlock()
}

// Status returns a read-only snapshot of the coordinator state.
func (c *Coordinator) Status() models.StatusSnapshot {
	cfg := c.cfg.Current()
	interval := time.Duration(cfg.Box.UpdateInterval) * time.Second

	c.statusMu.RLock()
	defer c.statusMu.RUnlock()

	snapshot := models.StatusSnapshot{
		State:        models.StatePending,
		BoxID:        cfg.Box.BoxID,
		LastError:    c.status.LastError,
		UploadCount:  c.status.UploadCount,
		EmptyUploads: c.status.EmptyUploads,
	}

	if c.status.LastUpload != nil {
		last := *c.status.LastUpload
		next := last.Add(interval)
		snapshot.LastUpload = &last
		snapshot.NextUpload = &next
		snapshot.State = models.StateOK
	}
	if c.status.LastError != "" {
		snapshot.State = models.StateError
	}
	if cfg.Box.DebugMode && c.status.LastRequest != nil {
		snapshot.LastRequest = c.status.LastRequest
	}

	return snapshot
}
