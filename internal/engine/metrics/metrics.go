// Package metrics exposes simulation counters through Prometheus.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Faultbox/strider/internal/logger"
)

// Collector bundles the frame loop metrics. A nil *Collector is a valid no-op.
type Collector struct {
	gatherer prometheus.Gatherer

	FrameSeconds prometheus.Histogram
	StepsStarted *prometheus.CounterVec
	StepsLanded  *prometheus.CounterVec
	GaitSwitches *prometheus.CounterVec
	Entities     prometheus.Gauge
}

// New registers the collector's metrics against reg, defaulting to the
// global registry when nil. Metrics already registered by an earlier
// collector are reused.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	frame, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "strider_frame_seconds",
		Help:    "Simulated frame delta in seconds after clamping.",
		Buckets: []float64{0.004, 0.008, 0.016, 0.033, 0.05, 0.066, 0.1, 0.25},
	}), "strider_frame_seconds")
	if err != nil {
		return nil, err
	}
	started, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "strider_steps_started_total",
		Help: "Steps started, labeled by leg entity.",
	}, []string{"leg"}), "strider_steps_started_total")
	if err != nil {
		return nil, err
	}
	landed, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "strider_steps_landed_total",
		Help: "Steps completed, labeled by leg entity.",
	}, []string{"leg"}), "strider_steps_landed_total")
	if err != nil {
		return nil, err
	}
	switches, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "strider_gait_switches_total",
		Help: "Gait state changes, labeled by the new state and whether the stall valve forced it.",
	}, []string{"state", "forced"}), "strider_gait_switches_total")
	if err != nil {
		return nil, err
	}
	entities, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "strider_entities",
		Help: "Entities registered in the world.",
	}), "strider_entities")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:     gatherer,
		FrameSeconds: frame,
		StepsStarted: started,
		StepsLanded:  landed,
		GaitSwitches: switches,
		Entities:     entities,
	}, nil
}

// ObserveFrame records one frame delta.
func (c *Collector) ObserveFrame(dt float64) {
	if c == nil {
		return
	}
	c.FrameSeconds.Observe(dt)
}

// StepStarted counts a lift-off for leg.
func (c *Collector) StepStarted(leg string) {
	if c == nil {
		return
	}
	c.StepsStarted.WithLabelValues(leg).Inc()
}

// StepLanded counts a touchdown for leg.
func (c *Collector) StepLanded(leg string) {
	if c == nil {
		return
	}
	c.StepsLanded.WithLabelValues(leg).Inc()
}

// GaitSwitched counts a transition into state.
func (c *Collector) GaitSwitched(state string, forced bool) {
	if c == nil {
		return
	}
	c.GaitSwitches.WithLabelValues(state, strconv.FormatBool(forced)).Inc()
}

// SetEntities updates the entity gauge.
func (c *Collector) SetEntities(n int) {
	if c == nil {
		return
	}
	c.Entities.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Serve runs a /metrics endpoint on addr until ctx is cancelled.
func (c *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics endpoint listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown metrics server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	}
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return c, nil
}
