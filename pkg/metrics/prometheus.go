package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	RowsRead       prometheus.Counter
	RowsDropped    *prometheus.CounterVec
	RecordsSynced  prometheus.Counter
	ImportsTotal   *prometheus.CounterVec
	ImportDuration prometheus.Histogram
	ReportsServed  prometheus.Counter
	ErrorsCount    *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics registered on reg
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RowsRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "The total number of spreadsheet data rows read",
		}),
		RowsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "The total number of rows dropped by normalization rules",
		}, []string{"reason"}),
		RecordsSynced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_synced_total",
			Help:      "The total number of ticket records upserted into the store",
		}),
		ImportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "The total number of file imports",
		}, []string{"status"}),
		ImportDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Time taken to import a file",
			Buckets:   prometheus.DefBuckets,
		}),
		ReportsServed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_served_total",
			Help:      "The total number of report queries answered",
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
