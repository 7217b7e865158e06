package collector

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/runtime/options"
	"github.com/iotaledger/hive.go/runtime/syncutils"
)

var ErrLabelMismatch = ierrors.New("label values do not match the labels of the metric")

type MetricType uint8

const (
	// Gauge is a metric that represents a single numerical value that can arbitrarily go up and down.
	// During collection the value is set, thus the previous value is overwritten.
	Gauge MetricType = iota
	// Counter is a cumulative metric that only ever goes up.
	// The collect function of a counter returns the running total; only the increase since the previous
	// collection is added.
	Counter
)

// Metric is a single metric that is registered to the prometheus registry and collected with its collect function.
type Metric struct {
	Name          string
	Type          MetricType
	Namespace     string
	help          string
	labels        []string
	collectFunc   func() (value float64, labelValues []string)
	initValueFunc func() (value float64, labelValues []string)

	promMetric prometheus.Collector

	// lastTotals holds the last collected total of a counter per label set.
	lastTotals      map[string]float64
	lastTotalsMutex syncutils.Mutex

	once sync.Once
}

// NewMetric creates a new metric with given name and options.
func NewMetric(name string, opts ...options.Option[Metric]) *Metric {
	return options.Apply(&Metric{
		Name:       name,
		lastTotals: make(map[string]float64),
	}, opts)
}

func (m *Metric) initPromMetric() {
	m.once.Do(func() {
		switch m.Type {
		case Gauge:
			opts := prometheus.GaugeOpts{Name: m.Name, Namespace: m.Namespace, Help: m.help}
			if len(m.labels) > 0 {
				m.promMetric = prometheus.NewGaugeVec(opts, m.labels)

				return
			}
			m.promMetric = prometheus.NewGauge(opts)
		case Counter:
			opts := prometheus.CounterOpts{Name: m.Name, Namespace: m.Namespace, Help: m.help}
			if len(m.labels) > 0 {
				m.promMetric = prometheus.NewCounterVec(opts, m.labels)

				return
			}
			m.promMetric = prometheus.NewCounter(opts)
		default:
			panic(ierrors.Errorf("unknown metric type %d", m.Type))
		}
	})
}

func (m *Metric) collect() {
	if m.collectFunc == nil {
		return
	}

	value, labelValues := m.collectFunc()
	if m.Type == Counter {
		value = m.increase(value, labelValues)
	}

	// a mismatch is a programming error of the collect function, the scrape still succeeds
	_ = m.update(value, labelValues...)
}

func (m *Metric) increase(total float64, labelValues []string) float64 {
	m.lastTotalsMutex.Lock()
	defer m.lastTotalsMutex.Unlock()

	key := strings.Join(labelValues, "\x00")
	increase := total - m.lastTotals[key]
	if increase < 0 {
		increase = 0
	}
	m.lastTotals[key] = total

	return increase
}

func (m *Metric) update(value float64, labelValues ...string) error {
	if len(labelValues) != len(m.labels) {
		return ierrors.Wrapf(ErrLabelMismatch, "metric %s expects %d labels, got %d", m.Name, len(m.labels), len(labelValues))
	}

	switch metric := m.promMetric.(type) {
	case prometheus.Gauge:
		metric.Set(value)
	case *prometheus.GaugeVec:
		metric.WithLabelValues(labelValues...).Set(value)
	case prometheus.Counter:
		metric.Add(value)
	case *prometheus.CounterVec:
		metric.WithLabelValues(labelValues...).Add(value)
	}

	return nil
}

func (m *Metric) increment(labelValues ...string) error {
	return m.update(1, labelValues...)
}

// WithType sets the metric type: Gauge or Counter.
func WithType(t MetricType) options.Option[Metric] {
	return func(m *Metric) {
		m.Type = t
	}
}

// WithHelp sets the help text for the metric.
func WithHelp(help string) options.Option[Metric] {
	return func(m *Metric) {
		m.help = help
	}
}

// WithLabels defines the labels of the metric, their values need to be passed in the same order on update.
func WithLabels(labels ...string) options.Option[Metric] {
	return func(m *Metric) {
		m.labels = labels
	}
}

// WithCollectFunc defines a function that is called each time prometheus scrapes the data.
func WithCollectFunc(collectFunc func() (metricValue float64, labelValues []string)) options.Option[Metric] {
	return func(m *Metric) {
		m.collectFunc = collectFunc
	}
}

// WithInitValueFunc sets a function that provides the initial value of a metric.
func WithInitValueFunc(initValueFunc func() (metricValue float64, labelValues []string)) options.Option[Metric] {
	return func(m *Metric) {
		m.initValueFunc = initValueFunc
	}
}
