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
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const (
	TracerName  = "bk-monitorv3/nlquery"
	ServiceName = "nlquery"
)

type Span struct {
	name string
	span oteltrace.Span
}

// NewSpan 新建一个 span
func NewSpan(ctx context.Context, name string) (context.Context, *Span) {
	ctx, span := otel.Tracer(TracerName).Start(ctx, name)
	return ctx, &Span{
		name: name,
		span: span,
	}
}

// TraceID 获取 traceid，未采样时为空
func (s *Span) TraceID() string {
	if s.span == nil || !s.span.SpanContext().HasTraceID() {
		return ""
	}
	return s.span.SpanContext().TraceID().String()
}

// TraceIDFromContext 读取 ctx 中 span 的 traceid，没有时为空
func TraceIDFromContext(ctx context.Context) string {
	sc := oteltrace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// Set attribute 打点
func (s *Span) Set(key string, value any) {
	if s.span == nil {
		return
	}

	var attr attribute.KeyValue
	switch v := value.(type) {
	case bool:
		attr = attribute.Bool(key, v)
	case int:
		attr = attribute.Int(key, v)
	case int64:
		attr = attribute.Int64(key, v)
	case float64:
		attr = attribute.Float64(key, v)
	case string:
		attr = attribute.String(key, v)
	case []string:
		attr = attribute.StringSlice(key, v)
	case time.Time:
		attr = attribute.String(key, v.Format(time.RFC3339))
	case time.Duration:
		attr = attribute.String(key, v.String())
	default:
		attr = attribute.String(key, fmt.Sprintf("%+v", value))
	}

	s.span.SetAttributes(attr)
}

// End span end 增加错误异常判断
func (s *Span) End(errPoint *error) {
	if errPoint != nil && *errPoint != nil {
		s.span.SetStatus(codes.Error, fmt.Sprintf("%v", *errPoint))
		s.span.RecordError(*errPoint)
	}
	s.span.End()
}
