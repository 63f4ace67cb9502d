// Tencent is pleased to support the open source community by making
// 蓝鲸智云 - 监控平台 (BlueKing - Monitor) available.
// Copyright (C) 2022 THL A29 Limited, a Tencent company. All rights reserved.
// Licensed under the MIT License (the "License"); you may not use this file except in compliance with the License.
// You may obtain a copy of the License at http://opensource.org/licenses/MIT
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package es

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/compiler"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/log"
)

// Request 发往 es 的查询体
type Request struct {
	// Raw 为 true 表示调用方直接传入了 es json，原样透传
	Raw  bool            `json:"raw"`
	Body json.RawMessage `json:"body"`
}

// Dispatcher 区分原生 es json 和查询语句，查询语句编译后再序列化
type Dispatcher struct {
	compiler *compiler.Compiler
}

// NewDispatcher c 为空时使用默认编译器
func NewDispatcher(c *compiler.Compiler) *Dispatcher {
	return &Dispatcher{compiler: c}
}

func (d *Dispatcher) getCompiler() *compiler.Compiler {
	if d.compiler != nil {
		return d.compiler
	}
	return compiler.Default()
}

// IsRawQuery 能解析成 json 对象的请求视为 es 原生查询
func IsRawQuery(request string) bool {
	request = strings.TrimSpace(request)
	if !strings.HasPrefix(request, "{") {
		return false
	}
	var m map[string]interface{}
	return sonicAPI.UnmarshalFromString(request, &m) == nil
}

func (d *Dispatcher) Dispatch(ctx context.Context, request string) (*Request, error) {
	if IsRawQuery(request) {
		return &Request{Raw: true, Body: json.RawMessage(strings.TrimSpace(request))}, nil
	}

	root, err := d.getCompiler().CompileQuery(ctx, request)
	if err != nil {
		return nil, err
	}

	source, err := Source(root)
	if err != nil {
		return nil, err
	}

	body, err := sonicAPI.Marshal(map[string]interface{}{"query": source})
	if err != nil {
		return nil, errors.Wrap(err, "marshal es request")
	}

	log.Debugf(ctx, "dispatch query %q as %s", request, body)
	return &Request{Body: body}, nil
}
