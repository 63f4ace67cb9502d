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
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/compiler"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/errno"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/es"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/metric"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/trace"
)

// QueryRequest 请求体
type QueryRequest struct {
	Query string `json:"query"`
	// Tree 为 true 时额外返回过滤树的文本形式
	Tree bool `json:"tree,omitempty"`
}

// CompileResponse query/compile 的返回
type CompileResponse struct {
	Query string          `json:"query"`
	Tree  string          `json:"tree,omitempty"`
	Body  json.RawMessage `json:"body"`
}

func bindQuery(c *gin.Context) (*QueryRequest, error) {
	req := &QueryRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		return nil, errno.ErrBusinessParamInvalid().
			WithComponent("HTTP").
			WithOperation("请求体解析").
			WithError(err).
			WithSolution(`请求体格式为 {"query": "..."}`)
	}
	return req, nil
}

// HandlerCompile
// @Summary  compile query string to es query
// @ID       compile_query_string
// @Produce  json
// @Param    data  body      QueryRequest     true  "json data"
// @Success  200   {object}  CompileResponse
// @Failure  400   {object}  ErrResponse
// @Router   /query/compile [post]
func HandlerCompile(c *gin.Context) {
	var (
		ctx   = c.Request.Context()
		start = time.Now()
		resp  = &response{
			c:      c,
			action: metric.ActionCompile,
			typ:    metric.TypeDSL,
		}

		err error
	)

	ctx, span := trace.NewSpan(ctx, "handle-compile")
	defer span.End(&err)
	defer func() {
		metric.RequestSecond(ctx, time.Since(start), c.Request.URL.Path)
	}()
	metric.RequestCountInc(ctx, metric.ActionCompile, metric.TypeDSL, metric.StatusReceived)

	req, err := bindQuery(c)
	if err != nil {
		resp.failed(ctx, err)
		return
	}
	span.Set("query", req.Query)

	root, err := compiler.CompileQuery(ctx, req.Query)
	if err != nil {
		resp.failed(ctx, err)
		return
	}

	body, err := es.Marshal(root)
	if err != nil {
		resp.failed(ctx, err)
		return
	}

	data := &CompileResponse{
		Query: req.Query,
		Body:  body,
	}
	if req.Tree {
		data.Tree = root.String()
	}
	resp.success(ctx, data)
}

// HandlerDispatch 原生 es json 原样返回，查询语句编译后返回
// @Summary  dispatch raw es json or query string
// @ID       dispatch_query
// @Produce  json
// @Param    data  body      QueryRequest  true  "json data"
// @Success  200   {object}  es.Request
// @Failure  400   {object}  ErrResponse
// @Router   /query/dispatch [post]
func HandlerDispatch(c *gin.Context) {
	var (
		ctx   = c.Request.Context()
		start = time.Now()
		resp  = &response{
			c:      c,
			action: metric.ActionDispatch,
			typ:    metric.TypeDSL,
		}

		err error
	)

	ctx, span := trace.NewSpan(ctx, "handle-dispatch")
	defer span.End(&err)
	defer func() {
		metric.RequestSecond(ctx, time.Since(start), c.Request.URL.Path)
	}()
	metric.RequestCountInc(ctx, metric.ActionDispatch, metric.TypeDSL, metric.StatusReceived)

	req, err := bindQuery(c)
	if err != nil {
		resp.failed(ctx, err)
		return
	}
	span.Set("query", req.Query)

	request, err := es.NewDispatcher(nil).Dispatch(ctx, req.Query)
	if err != nil {
		resp.failed(ctx, err)
		return
	}
	span.Set("raw", request.Raw)
	if request.Raw {
		resp.typ = metric.TypeRaw
	}
	resp.success(ctx, request)
}
