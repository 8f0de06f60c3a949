package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"callboard/clock"
	"callboard/dispatcher"
	"callboard/ticket"
)

// Metrics exposes dispatcher outcomes as Prometheus series. It implements
// dispatcher.Listener.
type Metrics struct {
	Registry *prometheus.Registry
	clock    clock.Clock

	TicketsSubmitted *prometheus.CounterVec
	TicketsRejected  *prometheus.CounterVec
	TicketsServed    *prometheus.CounterVec
	QueueLength      *prometheus.GaugeVec
	WaitSeconds      *prometheus.HistogramVec
	AlertEnabled     prometheus.Gauge
	EdgesDropped     prometheus.Gauge
}

func New(clk clock.Clock) *Metrics {
	if clk == nil {
		clk = clock.Real()
	}
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		clock:    clk,
		TicketsSubmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callboard_tickets_submitted_total",
				Help: "Total number of tickets issued",
			},
			[]string{"class"},
		),
		TicketsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callboard_tickets_rejected_total",
				Help: "Total number of submissions dropped because the class queue was full",
			},
			[]string{"class"},
		),
		TicketsServed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callboard_tickets_served_total",
				Help: "Total number of tickets called",
			},
			[]string{"class"},
		),
		QueueLength: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "callboard_queue_length",
				Help: "Tickets currently waiting per class",
			},
			[]string{"class"},
		),
		WaitSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "callboard_ticket_wait_seconds",
				Help:    "Time from issue to call",
				Buckets: []float64{30, 60, 120, 300, 600, 1200, 1800, 3600},
			},
			[]string{"class"},
		),
		AlertEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "callboard_alert_enabled",
			Help: "1 when the call alert is armed",
		}),
		EdgesDropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "callboard_button_edges_dropped",
			Help: "Button edges lost because the control loop was behind",
		}),
	}

	m.Registry.MustRegister(
		m.TicketsSubmitted,
		m.TicketsRejected,
		m.TicketsServed,
		m.QueueLength,
		m.WaitSeconds,
		m.AlertEnabled,
		m.EdgesDropped,
	)

	for _, class := range ticket.Classes {
		m.QueueLength.WithLabelValues(class.String())
	}

	return m
}

func (m *Metrics) Submitted(t ticket.Ticket) {
	m.TicketsSubmitted.WithLabelValues(t.Class.String()).Inc()
	m.QueueLength.WithLabelValues(t.Class.String()).Inc()
}

func (m *Metrics) Rejected(class ticket.Class, _ error) {
	m.TicketsRejected.WithLabelValues(class.String()).Inc()
}

func (m *Metrics) Served(ev dispatcher.AdvanceEvent) {
	class := ev.Served.Class.String()
	m.TicketsServed.WithLabelValues(class).Inc()
	m.QueueLength.WithLabelValues(class).Dec()
	if !ev.Served.IssuedAt.IsZero() {
		m.WaitSeconds.WithLabelValues(class).Observe(m.clock.Now().Sub(ev.Served.IssuedAt).Seconds())
	}
}

func (m *Metrics) AlertChanged(enabled bool) {
	if enabled {
		m.AlertEnabled.Set(1)
	} else {
		m.AlertEnabled.Set(0)
	}
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
