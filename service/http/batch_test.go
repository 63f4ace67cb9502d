// Tencent is pleased to support the open source community by making
// 蓝鲸智云 - 监控平台 (BlueKing - Monitor) available.
// Copyright (C) 2022 THL A29 Limited, a Tencent company. All rights reserved.
// Licensed under the MIT License (the "License"); you may not use this file except in compliance with the License.
// You may obtain a copy of the License at http://opensource.org/licenses/MIT
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/trace"
)

func TestHandlerCompileBatch(t *testing.T) {
	g := newTestRouter(t)

	w := post(g, "/query/compile/batch", `{"queries": ["name:Ian", "name:\"unterminated", "ts:[banana split TO now]", "a:[1 TO 10}"], "tree": true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 4)

	assert.Equal(t, "name:Ian", resp.Results[0].Query)
	assert.Equal(t, `match_all(filter=text(name="ian"))`, resp.Results[0].Tree)
	assert.JSONEq(t, `{"bool":{"filter":{"match":{"name":{"query":"ian"}}},"must":{"match_all":{}}}}`, string(resp.Results[0].Body))
	assert.Nil(t, resp.Results[0].Error)

	require.NotNil(t, resp.Results[1].Error)
	assert.Equal(t, "QP001", resp.Results[1].Error.Code)
	assert.Empty(t, resp.Results[1].Body)

	require.NotNil(t, resp.Results[2].Error)
	assert.Equal(t, "QP002", resp.Results[2].Error.Code)
	assert.Equal(t, "lower", resp.Results[2].Error.Context["bound"])

	assert.Equal(t, `match_all(filter=range(a=[1 TO 10}))`, resp.Results[3].Tree)
	assert.Nil(t, resp.Results[3].Error)
}

func TestHandlerCompileBatchOrder(t *testing.T) {
	g := newTestRouter(t)

	queries := make([]string, 50)
	for i := range queries {
		queries[i] = fmt.Sprintf(`"n:%d"`, i)
	}
	w := post(g, "/query/compile/batch", `{"queries": [`+strings.Join(queries, ",")+`]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, len(queries))
	for i, res := range resp.Results {
		assert.Equal(t, fmt.Sprintf("n:%d", i), res.Query)
		assert.NotEmpty(t, res.Body)
	}
}

func TestHandlerCompileBatchError(t *testing.T) {
	g := newTestRouter(t)

	w := post(g, "/query/compile/batch", `{"queries": "a"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp ErrResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "BL001", resp.Code)

	BatchMaxQueries = 1
	defer func() { BatchMaxQueries = 100 }()

	w = post(g, "/query/compile/batch", `{"queries": ["a", "b"]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp = ErrResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "BL001", resp.Code)
	assert.Equal(t, "1", resp.Context["limit"])
	assert.Equal(t, "2", resp.Context["count"])
}

func TestCompileOneKeepsTraceContext(t *testing.T) {
	newTestRouter(t)

	old := otel.GetTracerProvider()
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	defer func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(old)
	}()

	ctx, span := trace.NewSpan(context.Background(), "compile-batch")
	defer span.End(nil)
	require.NotEmpty(t, span.TraceID())

	res := compileOne(ctx, `name:"unterminated`, false)
	require.NotNil(t, res.Error)
	assert.Equal(t, "QP001", res.Error.Code)
	assert.Equal(t, span.TraceID(), res.Error.TraceID)

	res = compileOne(context.Background(), `name:"unterminated`, false)
	require.NotNil(t, res.Error)
	assert.Empty(t, res.Error.TraceID)
}

func TestHandlerCompileBatchRouting(t *testing.T) {
	g := newTestRouter(t)
	defer func() { BatchMaxRouting = 8 }()

	for _, routing := range []int{1, 0, -1} {
		BatchMaxRouting = routing
		w := post(g, "/query/compile/batch", `{"queries": ["a", "b:[1 TO 2]", "c"]}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp BatchResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Results, 3)
		for i, q := range []string{"a", "b:[1 TO 2]", "c"} {
			assert.Equal(t, q, resp.Results[i].Query)
			assert.Nil(t, resp.Results[i].Error)
		}
	}
}
