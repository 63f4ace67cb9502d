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
	"strings"

	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/filter"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/internal/querystring"
)

// PrefixMode 末尾带 * 的词编译成哪种查询
type PrefixMode string

const (
	// PrefixModePhrasePrefix 短语前缀匹配，适用于分词字段
	PrefixModePhrasePrefix PrefixMode = "phrase_prefix"
	// PrefixModePrefix 前缀匹配，适用于 keyword 字段
	PrefixModePrefix PrefixMode = "prefix"
)

type Option struct {
	// DefaultField 未指定字段时使用，默认 _all
	DefaultField string
	PrefixMode   PrefixMode
	// KeywordFields 这些字段上的普通词编译成 term
	KeywordFields []string
	// FieldAlias 查询字段到真实字段的映射
	FieldAlias map[string]string
	// MaxDepth 括号和前缀运算符的最大嵌套层数
	MaxDepth int
}

func (o Option) withDefault() Option {
	if o.DefaultField == "" {
		o.DefaultField = filter.AllField
	}
	if o.PrefixMode != PrefixModePrefix {
		o.PrefixMode = PrefixModePhrasePrefix
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = querystring.DefaultMaxDepth
	}
	return o
}

// ParsePrefixMode 配置值转换，不认识的值返回 false
func ParsePrefixMode(s string) (PrefixMode, bool) {
	switch PrefixMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", PrefixModePhrasePrefix:
		return PrefixModePhrasePrefix, true
	case PrefixModePrefix:
		return PrefixModePrefix, true
	}
	return PrefixModePhrasePrefix, false
}
