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
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/compiler"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/filter"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/internal/resolver"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/log"
)

func TestServiceReload(t *testing.T) {
	log.InitTestLogger()
	viper.Reset()
	setDefaultConfig()
	LoadConfig()

	ctx := context.Background()
	old := compiler.Default()
	defer compiler.SetDefault(old)

	s := &Service{}
	assert.Equal(t, "compiler", s.Type())
	s.Start(ctx)

	opt := compiler.Default().Option()
	assert.Equal(t, filter.AllField, opt.DefaultField)
	assert.Equal(t, compiler.PrefixModePhrasePrefix, opt.PrefixMode)
	assert.Equal(t, 64, opt.MaxDepth)

	viper.Set(DefaultFieldConfigPath, "message")
	viper.Set(PrefixModeConfigPath, "prefix")
	viper.Set(KeywordFieldsConfigPath, "status level")
	viper.Set(FieldAliasConfigPath, map[string]string{"ip": "server.ip"})
	LoadConfig()
	s.Reload(ctx)

	opt = compiler.Default().Option()
	assert.Equal(t, "message", opt.DefaultField)
	assert.Equal(t, compiler.PrefixModePrefix, opt.PrefixMode)
	assert.Equal(t, []string{"status", "level"}, opt.KeywordFields)
	assert.Equal(t, map[string]string{"ip": "server.ip"}, opt.FieldAlias)

	root, err := compiler.CompileQuery(ctx, `status:open ip:1.2.3.4 web*`)
	require.NoError(t, err)
	assert.Equal(t, &filter.Or{Filters: []filter.Node{
		&filter.Term{Field: "status", Value: "open"},
		&filter.Phrase{Field: "server.ip", Text: "1.2.3.4", Mode: filter.ModeText},
		&filter.Prefix{Field: "message", Prefix: "web", Boost: 1},
	}}, root.Filter)
}

func TestNewCompilerTimezone(t *testing.T) {
	log.InitTestLogger()
	viper.Reset()
	setDefaultConfig()

	now := time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)
	clock := resolver.WithClock(func() time.Time { return now })

	viper.Set(TimezoneConfigPath, "Asia/Shanghai")
	LoadConfig()
	root, err := NewCompiler(context.Background(), clock).CompileQuery(context.Background(), `ts:[midnight TO *]`)
	require.NoError(t, err)
	r := root.Filter.(*filter.Range)
	// 上海已经是 16 日
	assert.Equal(t, "2024-03-16T00:00:00+08:00", r.Lower.Time.Format(time.RFC3339))

	viper.Set(TimezoneConfigPath, "Mars/Olympus")
	viper.Set(PrefixModeConfigPath, "regexp")
	LoadConfig()
	c := NewCompiler(context.Background(), clock)
	assert.Equal(t, compiler.PrefixModePhrasePrefix, c.Option().PrefixMode)
}
