package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for dashboard section syncs and review
// submissions. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Section sync completions by section and outcome (success, failure)
	SectionSyncs *prometheus.CounterVec

	// Review submissions by outcome (accepted, rejected, failed)
	ReviewSubmissions *prometheus.CounterVec

	// Operator updates by section
	OperatorUpdates *prometheus.CounterVec
}

// New creates the dashboard metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics on reg.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SectionSyncs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cosurvival_dashboard_section_syncs_total",
			Help: "Completed dashboard section syncs by section and outcome",
		}, []string{"section", "outcome"}),

		ReviewSubmissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cosurvival_dashboard_review_submissions_total",
			Help: "Review submissions by outcome",
		}, []string{"outcome"}),

		OperatorUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cosurvival_dashboard_operator_updates_total",
			Help: "Operator-supplied section updates by section",
		}, []string{"section"}),
	}
}

// IncrementSectionSync records a finished section sync.
func (m *Metrics) IncrementSectionSync(section string, ok bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.SectionSyncs.WithLabelValues(section, outcome).Inc()
}

// IncrementReviewSubmission records a submission outcome.
func (m *Metrics) IncrementReviewSubmission(outcome string) {
	if m != nil {
		m.ReviewSubmissions.WithLabelValues(outcome).Inc()
	}
}

// IncrementOperatorUpdate records an operator-supplied section update.
func (m *Metrics) IncrementOperatorUpdate(section string) {
	if m != nil {
		m.OperatorUpdates.WithLabelValues(section).Inc()
	}
}
