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
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	ants "github.com/panjf2000/ants/v2"

	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/compiler"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/errno"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/es"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/log"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/metric"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/trace"
)

// BatchRequest 批量编译请求
type BatchRequest struct {
	Queries []string `json:"queries"`
	Tree    bool     `json:"tree,omitempty"`
}

// BatchResult 单条语句的编译结果，失败时只有 Error
type BatchResult struct {
	Query string          `json:"query"`
	Tree  string          `json:"tree,omitempty"`
	Body  json.RawMessage `json:"body,omitempty"`
	Error *ErrResponse    `json:"error,omitempty"`
}

// BatchResponse 结果顺序与请求中的 queries 一致
type BatchResponse struct {
	Results []*BatchResult `json:"results"`
}

func compileOne(ctx context.Context, query string, tree bool) *BatchResult {
	res := &BatchResult{Query: query}

	root, err := compiler.CompileQuery(ctx, query)
	if err == nil {
		res.Body, err = es.Marshal(root)
	}
	if err != nil {
		codedErr := toErrCode(err)
		res.Error = &ErrResponse{
			TraceID: trace.TraceIDFromContext(ctx),
			Err:     err.Error(),
			Code:    codedErr.Code,
			Context: codedErr.Context,
		}
		return res
	}

	if tree {
		res.Tree = root.String()
	}
	return res
}

// HandlerCompileBatch 并发编译多条语句，单条失败不影响其它语句
// @Summary  compile query strings to es queries
// @ID       compile_query_string_batch
// @Produce  json
// @Param    data  body      BatchRequest   true  "json data"
// @Success  200   {object}  BatchResponse
// @Failure  400   {object}  ErrResponse
// @Router   /query/compile/batch [post]
func HandlerCompileBatch(c *gin.Context) {
	var (
		ctx   = c.Request.Context()
		start = time.Now()
		resp  = &response{
			c:      c,
			action: metric.ActionBatch,
			typ:    metric.TypeDSL,
		}

		err error
	)

	ctx, span := trace.NewSpan(ctx, "handle-compile-batch")
	defer span.End(&err)
	defer func() {
		metric.RequestSecond(ctx, time.Since(start), c.Request.URL.Path)
	}()
	metric.RequestCountInc(ctx, metric.ActionBatch, metric.TypeDSL, metric.StatusReceived)

	req := &BatchRequest{}
	if err = c.ShouldBindJSON(req); err != nil {
		resp.failed(ctx, errno.ErrBusinessParamInvalid().
			WithComponent("HTTP").
			WithOperation("请求体解析").
			WithError(err).
			WithSolution(`请求体格式为 {"queries": ["..."]}`))
		return
	}
	if BatchMaxQueries > 0 && len(req.Queries) > BatchMaxQueries {
		err = errno.ErrBusinessParamInvalid().
			WithComponent("HTTP").
			WithOperation("批量编译").
			WithContext("count", len(req.Queries)).
			WithContext("limit", BatchMaxQueries).
			WithSolution("拆分成多个请求")
		resp.failed(ctx, err)
		return
	}
	span.Set("query-count", len(req.Queries))

	var (
		wg      sync.WaitGroup
		results = make([]*BatchResult, len(req.Queries))
	)

	p, poolErr := ants.NewPool(BatchMaxRouting)
	if poolErr != nil {
		// 协程池不可用时顺序编译
		log.Warnf(ctx, "create compile pool failed:%s", poolErr)
		for i, query := range req.Queries {
			results[i] = compileOne(ctx, query, req.Tree)
		}
		resp.success(ctx, &BatchResponse{Results: results})
		return
	}
	defer p.Release()

	for i, query := range req.Queries {
		i, query := i, query
		wg.Add(1)
		submitErr := p.Submit(func() {
			defer wg.Done()
			results[i] = compileOne(ctx, query, req.Tree)
		})
		if submitErr != nil {
			log.Warnf(ctx, "submit compile task failed:%s", submitErr)
			results[i] = compileOne(ctx, query, req.Tree)
			wg.Done()
		}
	}
	wg.Wait()

	resp.success(ctx, &BatchResponse{Results: results})
}
