// Tencent is pleased to support the open source community by making
// 蓝鲸智云 - 监控平台 (BlueKing - Monitor) available.
// Copyright (C) 2022 THL A29 Limited, a Tencent company. All rights reserved.
// Licensed under the MIT License (the "License"); you may not use this file except in compliance with the License.
// You may obtain a copy of the License at http://opensource.org/licenses/MIT
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package errno

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorDefinition 错误定义结构
type ErrorDefinition struct {
	Code     string // 错误代码，如 "QP001"
	Message  string // 错误消息
	Category string // 错误分类
}

var errorDefinitions = map[string]ErrorDefinition{
	// 查询解析类错误 (Query Parse - QP)
	"ErrQueryParseInvalidSyntax": {"QP001", "查询语句语法错误", "查询解析"},
	"ErrQueryParseInvalidRange":  {"QP002", "范围查询取值无法解析", "查询解析"},

	// 数据处理类错误 (Data Processing - DP)
	"ErrDataProcessSerialize": {"DP001", "数据序列化失败", "数据处理"},

	// 配置管理类错误 (Configuration - CF)
	"ErrConfigReloadFailed": {"CF001", "配置重载失败", "配置管理"},

	// 链路追踪类错误 (Trace - TR)
	"ErrTraceExporterFailed": {"TR001", "链路导出器创建失败", "链路追踪"},

	// 业务逻辑类错误 (Business Logic - BL)
	"ErrBusinessParamInvalid": {"BL001", "业务参数无效", "业务逻辑"},
}

func newError(name string) *ErrCode {
	def, exists := errorDefinitions[name]
	if !exists {
		return NewErrCode("UNKNOWN", "未知错误", "未知")
	}

	return NewErrCode(def.Code, def.Message, def.Category)
}

func ErrQueryParseInvalidSyntax() *ErrCode { return newError("ErrQueryParseInvalidSyntax") }
func ErrQueryParseInvalidRange() *ErrCode  { return newError("ErrQueryParseInvalidRange") }
func ErrDataProcessSerialize() *ErrCode    { return newError("ErrDataProcessSerialize") }
func ErrConfigReloadFailed() *ErrCode      { return newError("ErrConfigReloadFailed") }
func ErrTraceExporterFailed() *ErrCode     { return newError("ErrTraceExporterFailed") }
func ErrBusinessParamInvalid() *ErrCode    { return newError("ErrBusinessParamInvalid") }

// ErrCode 带错误码的结构化错误，通过链式调用补充上下文
type ErrCode struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Category  string            `json:"category"`
	Component string            `json:"component,omitempty"`
	Operation string            `json:"operation,omitempty"`
	Context   map[string]string `json:"context,omitempty"`
	Solution  string            `json:"solution,omitempty"`

	err error
}

func NewErrCode(code, message, category string) *ErrCode {
	return &ErrCode{
		Code:     code,
		Message:  message,
		Category: category,
	}
}

func (e *ErrCode) WithComponent(component string) *ErrCode {
	e.Component = component
	return e
}

func (e *ErrCode) WithOperation(operation string) *ErrCode {
	e.Operation = operation
	return e
}

func (e *ErrCode) WithContext(key string, value any) *ErrCode {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = fmt.Sprintf("%v", value)
	return e
}

func (e *ErrCode) WithError(err error) *ErrCode {
	e.err = err
	if err != nil {
		e.WithContext("error", err.Error())
	}
	return e
}

func (e *ErrCode) WithSolution(solution string) *ErrCode {
	e.Solution = solution
	return e
}

// Unwrap 返回原始错误
func (e *ErrCode) Unwrap() error {
	return e.err
}

func (e *ErrCode) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Component != "" {
		fmt.Fprintf(&b, " | 组件: %s", e.Component)
	}
	if e.Operation != "" {
		fmt.Fprintf(&b, " | 操作: %s", e.Operation)
	}
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " | %s: %s", k, e.Context[k])
		}
	}
	if e.Solution != "" {
		fmt.Fprintf(&b, " | 解决: %s", e.Solution)
	}
	return b.String()
}
