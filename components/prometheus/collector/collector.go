package collector

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iotaledger/hive.go/ierrors"
)

var ErrUnknownMetric = ierrors.New("unknown metric")

// Collector is responsible for creation and collection of metrics for prometheus.
type Collector struct {
	Registry    *prometheus.Registry
	collections map[string]*Collection
}

// New creates a Collector with its own prometheus registry.
func New() *Collector {
	return &Collector{
		Registry:    prometheus.NewRegistry(),
		collections: make(map[string]*Collection),
	}
}

func (c *Collector) RegisterCollection(coll *Collection) error {
	c.collections[coll.CollectionName] = coll
	for _, m := range coll.metrics {
		if err := c.Registry.Register(m.promMetric); err != nil {
			return ierrors.Wrapf(err, "failed to register metric %s_%s", coll.CollectionName, m.Name)
		}

		if m.initValueFunc != nil {
			metricValue, labelValues := m.initValueFunc()
			if err := m.update(metricValue, labelValues...); err != nil {
				return err
			}
		}
	}

	return nil
}

// Collect collects all metrics from the registered collections.
func (c *Collector) Collect() {
	for _, collection := range c.collections {
		for _, metric := range collection.metrics {
			metric.collect()
		}
	}
}

// Update updates the value of the metric defined by namespace and metricName.
// The label values must be passed in the order they were defined in the metric.
func (c *Collector) Update(namespace string, metricName string, metricValue float64, labelValues ...string) error {
	m, err := c.metric(namespace, metricName)
	if err != nil {
		return err
	}

	return m.update(metricValue, labelValues...)
}

// Increment increments the value of the metric defined by namespace and metricName.
func (c *Collector) Increment(namespace string, metricName string, labelValues ...string) error {
	m, err := c.metric(namespace, metricName)
	if err != nil {
		return err
	}

	return m.increment(labelValues...)
}

func (c *Collector) metric(namespace string, metricName string) (*Metric, error) {
	if collection, exists := c.collections[namespace]; exists {
		if m := collection.GetMetric(metricName); m != nil {
			return m, nil
		}
	}

	return nil, ierrors.Wrapf(ErrUnknownMetric, "%s_%s", namespace, metricName)
}
