// Tencent is pleased to support the open source community by making
// 蓝鲸智云 - 监控平台 (BlueKing - Monitor) available.
// Copyright (C) 2022 THL A29 Limited, a Tencent company. All rights reserved.
// Licensed under the MIT License (the "License"); you may not use this file except in compliance with the License.
// You may obtain a copy of the License at http://opensource.org/licenses/MIT
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package metric

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/log"
)

const (
	ActionCompile  = "compile"
	ActionDispatch = "dispatch"
	ActionBatch    = "batch"

	TypeDSL = "dsl"
	TypeRaw = "raw"

	StatusReceived = "received"
	StatusSuccess  = "success"
	StatusFailed   = "failed"

	ErrorSyntax = "syntax"
	ErrorRange  = "range"
	ErrorOther  = "other"
)

var (
	requestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nlquery",
			Name:      "request_count_total",
			Help:      "request handled count",
		},
		[]string{"action", "type", "status"},
	)

	requestHandleSecondHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nlquery",
			Name:      "request_handle_seconds",
			Help:      "request handle seconds",
			Buckets:   []float64{0, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"url"},
	)

	compileCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nlquery",
			Name:      "compile_count_total",
			Help:      "query string compile count",
		},
		[]string{"status", "error"},
	)

	compileSecondHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nlquery",
			Name:      "compile_seconds",
			Help:      "query string compile seconds",
			Buckets:   []float64{0, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"status"},
	)
)

// RequestCountInc http 访问指标
func RequestCountInc(ctx context.Context, params ...string) {
	metric, err := requestCount.GetMetricWithLabelValues(params...)
	counterInc(ctx, metric, err, params...)
}

func RequestSecond(ctx context.Context, duration time.Duration, params ...string) {
	metric, err := requestHandleSecondHistogram.GetMetricWithLabelValues(params...)
	observe(ctx, metric, err, duration, params...)
}

// CompileCountInc 编译次数，params: status, error
func CompileCountInc(ctx context.Context, params ...string) {
	metric, err := compileCount.GetMetricWithLabelValues(params...)
	counterInc(ctx, metric, err, params...)
}

func CompileSecond(ctx context.Context, duration time.Duration, params ...string) {
	metric, err := compileSecondHistogram.GetMetricWithLabelValues(params...)
	observe(ctx, metric, err, duration, params...)
}

func counterInc(
	ctx context.Context, metric prometheus.Counter, err error, params ...string,
) {
	if err != nil {
		log.Warnf(ctx, "metric counter:%v failed,error:%s", params, err)
		return
	}

	sp := trace.SpanFromContext(ctx).SpanContext()
	if sp.IsSampled() {
		exemplarAdder, ok := metric.(prometheus.ExemplarAdder)
		if ok {
			exemplarAdder.AddWithExemplar(1, prometheus.Labels{
				"traceID": sp.TraceID().String(),
				"spanID":  sp.SpanID().String(),
			})
			return
		}
		log.Errorf(ctx, "metric type is wrong: %T, %v", metric, metric)
	}
	metric.Inc()
}

func observe(
	ctx context.Context, metric prometheus.Observer, err error, duration time.Duration, params ...string,
) {
	if err != nil {
		log.Warnf(ctx, "metric histogram:%v failed,error:%s", params, err)
		return
	}

	sp := trace.SpanFromContext(ctx).SpanContext()
	if sp.IsSampled() {
		// exemplar 只支持 histogram
		exemplarObserve, ok := metric.(prometheus.ExemplarObserver)
		if ok {
			exemplarObserve.ObserveWithExemplar(duration.Seconds(), prometheus.Labels{
				"traceID": sp.TraceID().String(),
				"spanID":  sp.SpanID().String(),
			})
			return
		}
		log.Errorf(ctx, "metric type is wrong: %T, %v", metric, metric)
	}
	metric.Observe(duration.Seconds())
}

func init() {
	prometheus.MustRegister(
		requestCount, requestHandleSecondHistogram, compileCount, compileSecondHistogram,
	)
}
