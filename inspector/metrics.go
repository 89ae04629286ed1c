// Copyright 2026 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package inspector

import (
	gosql "database/sql"
	"fmt"
	"net"
	"os"

	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	namespace = "schema"
	subsystem = "inspector"
)

var (
	queryHistogramVec = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "query_duration_seconds",
			Help:      "Bucketed histogram of processing time (s) of a catalog query.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 18),
		}, []string{"query"})

	toolCallCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tool_calls_total",
			Help:      "the count of tool calls by tool and result(ok, error).",
		}, []string{"tool", "result"})
)

// Registry is the metrics registry of server
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	Registry.MustRegister(prometheus.NewGoCollector())

	Registry.MustRegister(queryHistogramVec)
	Registry.MustRegister(toolCallCounter)
}

func observeToolCall(tool string, res *ToolResult) {
	if tool != ToolListTables && tool != ToolGetSchema {
		tool = "unknown"
	}
	result := "ok"
	if res.IsError {
		result = "error"
	}
	toolCallCounter.WithLabelValues(tool, result).Inc()
}

var (
	poolOpenDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, subsystem, "pool_open_connections"),
		"the number of established connections, in use and idle.", nil, nil)
	poolInUseDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, subsystem, "pool_in_use"),
		"the number of connections currently in use.", nil, nil)
	poolWaitCountDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, subsystem, "pool_wait_count"),
		"the total number of requests that waited for a connection.", nil, nil)
	poolWaitSecondsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, subsystem, "pool_wait_seconds"),
		"the total time blocked waiting for a connection.", nil, nil)
)

var _ prometheus.Collector = &poolCollector{}

// poolCollector exports the statistics of a connection pool at scrape time.
type poolCollector struct {
	stats func() gosql.DBStats
}

func newPoolCollector(stats func() gosql.DBStats) *poolCollector {
	return &poolCollector{stats: stats}
}

// Describe implements prometheus.Collector.
func (p *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- poolOpenDesc
	ch <- poolInUseDesc
	ch <- poolWaitCountDesc
	ch <- poolWaitSecondsDesc
}

// Collect implements prometheus.Collector.
func (p *poolCollector) Collect(ch chan<- prometheus.Metric) {
	st := p.stats()
	ch <- prometheus.MustNewConstMetric(poolOpenDesc, prometheus.GaugeValue, float64(st.OpenConnections))
	ch <- prometheus.MustNewConstMetric(poolInUseDesc, prometheus.GaugeValue, float64(st.InUse))
	ch <- prometheus.MustNewConstMetric(poolWaitCountDesc, prometheus.CounterValue, float64(st.WaitCount))
	ch <- prometheus.MustNewConstMetric(poolWaitSecondsDesc, prometheus.CounterValue, st.WaitDuration.Seconds())
}

var getHostname = os.Hostname

func instanceName(addr string) string {
	hostname, err := getHostname()
	if err != nil {
		log.Error("Failed to get hostname", zap.Error(err))
		return "unknown"
	}
	if _, port, err := net.SplitHostPort(addr); err == nil {
		addr = port
	}
	return fmt.Sprintf("%s_%s", hostname, addr)
}
