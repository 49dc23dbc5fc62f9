package ldb

import (
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/syndtr/goleveldb/leveldb"
)

// collector exports the engine metrics of a leveldb instance, read
// from its numeric properties
type collector struct {
	ldb        *leveldb.DB
	properties []*propertyMetric
}

type propertyMetric struct {
	property string
	desc     *prometheus.Desc
}

func newCollector(ldb *leveldb.DB, namespace string) *collector {
	metric := func(property, name, help string) *propertyMetric {
		return &propertyMetric{
			property: property,
			desc:     prometheus.NewDesc(prometheus.BuildFQName(namespace, "leveldb", name), help, nil, nil),
		}
	}
	return &collector{
		ldb: ldb,
		properties: []*propertyMetric{
			metric("leveldb.num-files-at-level0", "level0_files",
				"Number of tables in level 0"),
			metric("leveldb.cachedblock", "cached_block_bytes",
				"Size of the block cache in bytes"),
			metric("leveldb.openedtables", "opened_tables",
				"Number of opened tables"),
			metric("leveldb.alivesnaps", "alive_snapshots",
				"Number of alive snapshots"),
			metric("leveldb.aliveiters", "alive_iterators",
				"Number of alive iterators"),
		},
	}
}

// Describe implements prometheus.Collector
func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	for _, property := range c.properties {
		ch <- property.desc
	}
}

// Collect implements prometheus.Collector. Properties that can't be
// read are skipped.
func (c *collector) Collect(ch chan<- prometheus.Metric) {
	for _, property := range c.properties {
		value, err := c.ldb.GetProperty(property.property)
		if err != nil {
			log.Debugf("Failed reading leveldb property %s: %s", property.property, err)
			continue
		}
		number, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			log.Debugf("Leveldb property %s is not numeric: %q", property.property, value)
			continue
		}
		ch <- prometheus.MustNewConstMetric(property.desc, prometheus.GaugeValue, number)
	}
}
