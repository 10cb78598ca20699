// Package metrics exposes audit counters on a private Prometheus registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vbonduro/rbaudit/internal/persist"
)

const namespace = "rbaudit"

type Metrics struct {
	registry *prometheus.Registry

	persistWrites *prometheus.CounterVec
	imports       *prometheus.CounterVec
	importedRows  *prometheus.CounterVec
	exports       prometheus.Counter
	photos        *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		persistWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_writes_total",
			Help:      "Durable writes by collection and outcome.",
		}, []string{"key", "outcome"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Spreadsheet imports by kind and outcome.",
		}, []string{"kind", "outcome"}),
		importedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imported_rows_total",
			Help:      "Rows accepted from imports by collection.",
		}, []string{"collection"}),
		exports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Workbooks exported.",
		}),
		photos: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photo_uploads_total",
			Help:      "Photo attachments by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.persistWrites, m.imports, m.importedRows, m.exports, m.photos,
	)
	return m
}

// PersistWrite records a mirrored write. Photo keys share one label value.
func (m *Metrics) PersistWrite(key string, err error) {
	if persist.IsPhotoKey(key) {
		key = "photo"
	}
	m.persistWrites.WithLabelValues(key, outcome(err)).Inc()
}

// Import records an import of kind "csv" or "workbook".
func (m *Metrics) Import(kind string, err error) {
	m.imports.WithLabelValues(kind, outcome(err)).Inc()
}

func (m *Metrics) ImportedRows(collection string, n int) {
	m.importedRows.WithLabelValues(collection).Add(float64(n))
}

func (m *Metrics) Export() {
	m.exports.Inc()
}

func (m *Metrics) PhotoUpload(err error) {
	m.photos.WithLabelValues(outcome(err)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
