// Tencent is pleased to support the open source community by making
// 蓝鲸智云 - 监控平台 (BlueKing - Monitor) available.
// Copyright (C) 2022 THL A29 Limited, a Tencent company. All rights reserved.
// Licensed under the MIT License (the "License"); you may not use this file except in compliance with the License.
// You may obtain a copy of the License at http://opensource.org/licenses/MIT
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package trace

import (
	"context"
	"net"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/errno"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/log"
)

// Service 管理全局 tracer provider，关闭时 compile 和 http 的 span 不会导出
type Service struct {
	tracerProvider *sdktrace.TracerProvider

	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
}

// Type
func (s *Service) Type() string {
	return "trace"
}

func endpoint() string {
	return net.JoinHostPort(otlpHost, otlpPort)
}

// newClient 按 otlp 类型创建导出客户端，未知类型返回 nil
func (s *Service) newClient() otlptrace.Client {
	switch OtlpType {
	case "http":
		return otlptracehttp.NewClient(
			otlptracehttp.WithEndpoint(endpoint()),
			otlptracehttp.WithInsecure(),
		)
	case "grpc":
		return otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(endpoint()),
			otlptracegrpc.WithInsecure(),
		)
	default:
		return nil
	}
}

func (s *Service) newResource() *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(ServiceName),
		attribute.Key("bk.data.token").String(otlpToken),
	)
}

// Start
func (s *Service) Start(ctx context.Context) {
	if !Enable {
		return
	}

	client := s.newClient()
	if client == nil {
		codedErr := errno.ErrTraceExporterFailed().
			WithComponent("trace").
			WithOperation("创建 OTLP 客户端").
			WithContext("otlp_type", OtlpType).
			WithSolution("trace.otlp.type 可选值为 http 或 grpc")
		log.ErrorWithCodef(ctx, codedErr)
		return
	}

	exporter, err := otlptrace.New(ctx, client)
	if err != nil {
		codedErr := errno.ErrTraceExporterFailed().
			WithComponent("trace").
			WithOperation("创建 OTLP 导出器").
			WithContext("otlp_type", OtlpType).
			WithContext("endpoint", endpoint()).
			WithError(err).
			WithSolution("检查 OTLP 服务地址和配置")
		log.ErrorWithCodef(ctx, codedErr)
		return
	}

	// 这里的 wg 不是用于 goroutine 运行判断，对应 Close 中的异步关闭
	s.wg.Add(1)

	s.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(s.newResource()),
	)
	otel.SetTracerProvider(s.tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	s.ctx, s.cancelFunc = context.WithCancel(ctx)
	log.Infof(ctx, "trace service started, otlp:%s://%s", OtlpType, endpoint())
}

// Reload
func (s *Service) Reload(ctx context.Context) {
	s.Close()
	s.Wait()
	s.Start(ctx)
}

// Close
func (s *Service) Close() {
	if s.tracerProvider == nil {
		return
	}

	go func(tracerProvider *sdktrace.TracerProvider, ctx context.Context, cancel context.CancelFunc) {
		defer s.wg.Done()
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Warnf(context.TODO(), "trace provider shutdown failed:%s", err)
		}
		log.Infof(context.TODO(), "trace service closed")
	}(s.tracerProvider, s.ctx, s.cancelFunc)
	s.tracerProvider = nil
}

// Wait
func (s *Service) Wait() {
	s.wg.Wait()
}
