package restindex

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "rest_index"

var (
	checkpointsIndexed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "checkpoints_indexed",
		Help:      "Number of checkpoints applied to the index",
	})

	transactionsIndexed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "transactions_indexed",
		Help:      "Number of transaction digests written to the transactions table",
	})

	transactionsPruned = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "transactions_pruned",
		Help:      "Number of transaction digests deleted from the transactions table",
	})

	ownerEntryOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "owner_entry_operations",
		Help:      "Number of owner table writes by operation",
	}, []string{"op"})

	bootstrapObjects = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "bootstrap_objects",
		Help:      "Number of live objects written to the owner table during bootstrap",
	})

	operationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "operation_duration_seconds",
		Help:      "Duration of index mutations",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
	}, []string{"operation"})
)

const (
	ownerEntryOpUpsert = "upsert"
	ownerEntryOpDelete = "delete"
)

const (
	operationBootstrap       = "bootstrap"
	operationIndexCheckpoint = "index_checkpoint"
	operationPrune           = "prune"
)

// Collectors returns every metric collector of the index
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		checkpointsIndexed,
		transactionsIndexed,
		transactionsPruned,
		ownerEntryOperations,
		bootstrapObjects,
		operationDuration,
	}
}

// RegisterMetrics registers the index metrics with the given registerer.
// Registering the same metrics twice with a registerer is not an error.
func RegisterMetrics(registerer prometheus.Registerer) error {
	for _, collector := range Collectors() {
		err := registerer.Register(collector)
		if err != nil {
			var alreadyRegisteredErr prometheus.AlreadyRegisteredError
			if errors.As(err, &alreadyRegisteredErr) {
				continue
			}
			return errors.Wrap(err, "failed registering REST index metrics")
		}
	}
	return nil
}

func observeDuration(operation string, start time.Time) {
	operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

var tableEntriesDesc = prometheus.NewDesc(
	prometheus.BuildFQName(metricsNamespace, "", "table_entries"),
	"Number of entries in each table of the index",
	[]string{"table"}, nil,
)

// statsCollector exports the table sizes of an index. Counting walks
// the whole table, so it's meant for inspection rather than scraping.
type statsCollector struct {
	restIndex *RESTIndex
}

// NewStatsCollector returns a collector exporting the number of entries
// in each table of the given index
func NewStatsCollector(restIndex *RESTIndex) prometheus.Collector {
	return &statsCollector{restIndex: restIndex}
}

func (sc *statsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- tableEntriesDesc
}

func (sc *statsCollector) Collect(ch chan<- prometheus.Metric) {
	tables := sc.restIndex.tables
	for _, table := range tables.all() {
		count, err := table.count(tables.database)
		if err != nil {
			ch <- prometheus.NewInvalidMetric(tableEntriesDesc, err)
			continue
		}
		ch <- prometheus.MustNewConstMetric(tableEntriesDesc, prometheus.GaugeValue, float64(count), table.name)
	}
}
