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
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/compiler"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/errno"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/internal/querystring"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/log"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/metric"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/trace"
)

// ErrResponse 失败时的返回
type ErrResponse struct {
	TraceID string            `json:"trace_id,omitempty"`
	Err     string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Context map[string]string `json:"context,omitempty"`
}

type response struct {
	c      *gin.Context
	action string
	typ    string
}

// toErrCode 按错误类型转换成带错误码的错误
func toErrCode(err error) *errno.ErrCode {
	var (
		codeErr *errno.ErrCode
		pe      *querystring.ParseError
		re      *compiler.RangeError
	)

	switch {
	case errors.As(err, &codeErr):
		return codeErr
	case errors.As(err, &pe):
		return errno.ErrQueryParseInvalidSyntax().
			WithComponent("querystring").
			WithOperation("解析查询语句").
			WithContext("position", pe.Pos).
			WithContext("expected", pe.Expected).
			WithContext("found", pe.Found).
			WithError(err).
			WithSolution("检查引号、括号和运算符是否成对出现")
	case errors.As(err, &re):
		return errno.ErrQueryParseInvalidRange().
			WithComponent("resolver").
			WithOperation("解析范围边界").
			WithContext("field", re.Field).
			WithContext("bound", re.Bound).
			WithContext("raw", re.Raw).
			WithError(err).
			WithSolution("使用数字、日期或 yesterday、5 days ago 这类相对时间")
	default:
		return errno.ErrDataProcessSerialize().
			WithComponent("es").
			WithOperation("生成查询").
			WithError(err)
	}
}

func (r *response) failed(ctx context.Context, err error) {
	codedErr := toErrCode(err)
	log.WarnWithCodef(ctx, codedErr)
	metric.RequestCountInc(ctx, r.action, r.typ, metric.StatusFailed)

	_, span := trace.NewSpan(ctx, "response-failed")
	defer span.End(&err)

	r.c.JSON(http.StatusBadRequest, ErrResponse{
		TraceID: span.TraceID(),
		Err:     err.Error(),
		Code:    codedErr.Code,
		Context: codedErr.Context,
	})
}

func (r *response) success(ctx context.Context, data any) {
	metric.RequestCountInc(ctx, r.action, r.typ, metric.StatusSuccess)
	r.c.JSON(http.StatusOK, data)
}
