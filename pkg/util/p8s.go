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

package util

import (
	"context"
	"time"

	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"
)

var pushMetrics = addFromGatherer

// MetricClient pushes a gatherer to a Prometheus Pushgateway under one job
// and grouping.
type MetricClient struct {
	addr     string
	job      string
	interval time.Duration
	grouping map[string]string
	gatherer prometheus.Gatherer
}

// NewMetricClient returns a pointer to a MetricClient.
func NewMetricClient(addr, job string, interval time.Duration, grouping map[string]string, g prometheus.Gatherer) *MetricClient {
	return &MetricClient{
		addr:     addr,
		job:      job,
		interval: interval,
		grouping: grouping,
		gatherer: g,
	}
}

// Start pushes every interval until ctx is done, then pushes once more so the
// last values reach the gateway.
func (mc *MetricClient) Start(ctx context.Context) {
	log.Debug("start prometheus metrics client",
		zap.String("addr", mc.addr),
		zap.String("job", mc.job),
		zap.Any("grouping", mc.grouping),
		zap.Duration("interval", mc.interval),
	)
	ticker := time.NewTicker(mc.interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			if err := pushMetrics(mc.job, mc.grouping, mc.addr, mc.gatherer); err != nil {
				log.Warn("final push to Prometheus Pushgateway failed", zap.Error(err))
			}
			return
		case <-ticker.C:
			err := pushMetrics(mc.job, mc.grouping, mc.addr, mc.gatherer)
			switch {
			case err != nil && failures == 0:
				log.Error("push metrics to Prometheus Pushgateway failed", zap.Error(err))
				failures++
			case err != nil:
				failures++
			case failures > 0:
				log.Info("push metrics to Prometheus Pushgateway recovered", zap.Int("failed pushes", failures))
				failures = 0
			}
		}
	}
}

func addFromGatherer(job string, grouping map[string]string, url string, g prometheus.Gatherer) error {
	pusher := push.New(url, job)
	for k, v := range grouping {
		pusher = pusher.Grouping(k, v)
	}
	return pusher.Gatherer(g).Add()
}
