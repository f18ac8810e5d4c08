package service

import (
	"time"

	"go.opentelemetry.io/otel"

	"courseportal/internal/logger"
	"courseportal/internal/metrics"
)

var tracer = otel.Tracer("courseportal/internal/service")

// Option customizes the collaborators shared by all services.
type Option func(*deps)

type deps struct {
	log      *logger.Logger
	metrics  *metrics.Recorder
	notifier Notifier
	guard    *Guard
	now      func() time.Time
}

func WithLogger(l *logger.Logger) Option { return func(d *deps) { d.log = l } }

func WithMetrics(m *metrics.Recorder) Option { return func(d *deps) { d.metrics = m } }

func WithNotifier(n Notifier) Option { return func(d *deps) { d.notifier = n } }

func WithGuard(g *Guard) Option { return func(d *deps) { d.guard = g } }

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option { return func(d *deps) { d.now = now } }

func newDeps(opts []Option) deps {
	d := deps{
		log:      logger.Default(),
		notifier: disabledNotifier{},
		guard:    NewGuard(nil),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
