package pebbledb

import (
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

// collector exports the engine metrics of a pebble instance
type collector struct {
	db *pebble.DB

	compactionCount         *prometheus.Desc
	compactionEstimatedDebt *prometheus.Desc

	memtableSize  *prometheus.Desc
	memtableCount *prometheus.Desc

	walFiles        *prometheus.Desc
	walSize         *prometheus.Desc
	walBytesIn      *prometheus.Desc
	walBytesWritten *prometheus.Desc
}

func newCollector(db *pebble.DB, namespace string) *collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "pebble", name), help, nil, nil)
	}
	return &collector{
		db: db,

		compactionCount: desc("compaction_count_total",
			"Total number of compactions performed"),
		compactionEstimatedDebt: desc("compaction_estimated_debt_bytes",
			"Estimated number of bytes that need to be compacted to reach a stable state"),

		memtableSize: desc("memtable_size_bytes",
			"Current size of the memtable in bytes"),
		memtableCount: desc("memtable_count",
			"Current count of memtables"),

		walFiles: desc("wal_files",
			"Number of live WAL files"),
		walSize: desc("wal_size_bytes",
			"Size of live WAL data in bytes"),
		walBytesIn: desc("wal_bytes_in_total",
			"Total logical bytes written to the WAL"),
		walBytesWritten: desc("wal_bytes_written_total",
			"Total physical bytes written to the WAL"),
	}
}

// Describe implements prometheus.Collector
func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.compactionCount
	ch <- c.compactionEstimatedDebt
	ch <- c.memtableSize
	ch <- c.memtableCount
	ch <- c.walFiles
	ch <- c.walSize
	ch <- c.walBytesIn
	ch <- c.walBytesWritten
}

// Collect implements prometheus.Collector
func (c *collector) Collect(ch chan<- prometheus.Metric) {
	metrics := c.db.Metrics()

	ch <- prometheus.MustNewConstMetric(c.compactionCount, prometheus.CounterValue,
		float64(metrics.Compact.Count))
	ch <- prometheus.MustNewConstMetric(c.compactionEstimatedDebt, prometheus.GaugeValue,
		float64(metrics.Compact.EstimatedDebt))

	ch <- prometheus.MustNewConstMetric(c.memtableSize, prometheus.GaugeValue,
		float64(metrics.MemTable.Size))
	ch <- prometheus.MustNewConstMetric(c.memtableCount, prometheus.GaugeValue,
		float64(metrics.MemTable.Count))

	ch <- prometheus.MustNewConstMetric(c.walFiles, prometheus.GaugeValue,
		float64(metrics.WAL.Files))
	ch <- prometheus.MustNewConstMetric(c.walSize, prometheus.GaugeValue,
		float64(metrics.WAL.Size))
	ch <- prometheus.MustNewConstMetric(c.walBytesIn, prometheus.CounterValue,
		float64(metrics.WAL.BytesIn))
	ch <- prometheus.MustNewConstMetric(c.walBytesWritten, prometheus.CounterValue,
		float64(metrics.WAL.BytesWritten))
}
