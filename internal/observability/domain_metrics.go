package observability

import "github.com/prometheus/client_golang/prometheus"

const (
	OutcomeValid    = "valid"
	OutcomeEmpty    = "empty"
	OutcomeRejected = "rejected"
)

var (
	sqlValidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enginemock_sql_validations_total",
			Help: "Dry-run and dry-plan checks by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)
	sampleRowsReturnedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enginemock_sample_rows_returned_total",
			Help: "Sample rows returned by query and preview endpoints.",
		},
		[]string{"endpoint"},
	)
	manifestUpdatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "enginemock_manifest_updates_total",
			Help: "Total number of manifest replacements.",
		},
	)
	manifestKeys = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "enginemock_manifest_keys",
			Help: "Top-level key count of the current manifest.",
		},
	)
	bootstrapLoadFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "enginemock_bootstrap_load_failures_total",
			Help: "Startup config files that could not be loaded.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		sqlValidationsTotal,
		sampleRowsReturnedTotal,
		manifestUpdatesTotal,
		manifestKeys,
		bootstrapLoadFailuresTotal,
	)
}

func ObserveValidation(endpoint, outcome string) {
	sqlValidationsTotal.WithLabelValues(endpoint, outcome).Inc()
}

func ObserveSampleRows(endpoint string, rows int) {
	if rows <= 0 {
		return
	}
	sampleRowsReturnedTotal.WithLabelValues(endpoint).Add(float64(rows))
}

func ObserveManifestUpdate(keys int) {
	manifestUpdatesTotal.Inc()
	SetManifestKeys(keys)
}

func SetManifestKeys(keys int) {
	if keys < 0 {
		keys = 0
	}
	manifestKeys.Set(float64(keys))
}

func IncrementBootstrapFailure() {
	bootstrapLoadFailuresTotal.Inc()
}
