// Tencent is pleased to support the open source community by making
// 蓝鲸智云 - 监控平台 (BlueKing - Monitor) available.
// Copyright (C) 2022 THL A29 Limited, a Tencent company. All rights reserved.
// Licensed under the MIT License (the "License"); you may not use this file except in compliance with the License.
// You may obtain a copy of the License at http://opensource.org/licenses/MIT
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package compiler

import (
	"context"
	"time"

	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/compiler"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/errno"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/internal/resolver"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/log"
)

// Service 根据配置构建进程级默认编译器
type Service struct {
}

// Type
func (s *Service) Type() string {
	return "compiler"
}

// Start
func (s *Service) Start(ctx context.Context) {
	compiler.SetDefault(NewCompiler(ctx))
	log.Infof(ctx, "compiler service started, default field:%s, prefix mode:%s", DefaultField, PrefixMode)
}

// Reload
func (s *Service) Reload(ctx context.Context) {
	s.Close()
	s.Wait()
	s.Start(ctx)
}

// Wait
func (s *Service) Wait() {
}

// Close
func (s *Service) Close() {
	log.Infof(context.TODO(), "compiler service context canceled")
}

func loadLocation(ctx context.Context) *time.Location {
	if Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(Timezone)
	if err != nil {
		codedErr := errno.ErrConfigReloadFailed().
			WithComponent("compiler").
			WithOperation("加载时区").
			WithContext("timezone", Timezone).
			WithError(err).
			WithSolution("使用 IANA 时区名，例如 Asia/Shanghai，当前使用本地时区")
		log.WarnWithCodef(ctx, codedErr)
		return time.Local
	}
	return loc
}

// NewCompiler 按当前配置构建编译器，opts 追加在时区之后，可以覆盖时钟
func NewCompiler(ctx context.Context, opts ...resolver.Option) *compiler.Compiler {
	prefixMode, ok := compiler.ParsePrefixMode(PrefixMode)
	if !ok {
		codedErr := errno.ErrConfigReloadFailed().
			WithComponent("compiler").
			WithOperation("加载前缀匹配方式").
			WithContext("prefix_mode", PrefixMode).
			WithSolution("可选值为 phrase_prefix 或 prefix，当前使用 phrase_prefix")
		log.WarnWithCodef(ctx, codedErr)
	}

	r := resolver.New(append([]resolver.Option{resolver.WithLocation(loadLocation(ctx))}, opts...)...)
	return compiler.New(r, compiler.Option{
		DefaultField:  DefaultField,
		PrefixMode:    prefixMode,
		KeywordFields: KeywordFields,
		FieldAlias:    FieldAlias,
		MaxDepth:      MaxDepth,
	})
}
