// Package metrics exposes domain counters for the course portal.
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Recorder struct {
	uploads   *prometheus.CounterVec
	published prometheus.Counter
	logins    *prometheus.CounterVec
}

// New registers the domain collectors on reg.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courseportal_uploads_total",
				Help: "Uploaded files by outcome (accepted or the rejection code).",
			},
			[]string{"outcome"},
		),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courseportal_files_published_total",
			Help: "Files moved from draft to published.",
		}),
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courseportal_logins_total",
				Help: "Login attempts by outcome.",
			},
			[]string{"outcome"},
		),
	}

	for _, c := range []prometheus.Collector{r.uploads, r.published, r.logins} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) UploadAccepted() {
	if r == nil {
		return
	}
	r.uploads.WithLabelValues("accepted").Inc()
}

func (r *Recorder) UploadRejected(code string) {
	if r == nil {
		return
	}
	r.uploads.WithLabelValues(code).Inc()
}

func (r *Recorder) FilesPublished(n int64) {
	if r == nil || n <= 0 {
		return
	}
	r.published.Add(float64(n))
}

// Login counts an attempt; outcome is "success" or an error code.
func (r *Recorder) Login(outcome string) {
	if r == nil {
		return
	}
	r.logins.WithLabelValues(outcome).Inc()
}
