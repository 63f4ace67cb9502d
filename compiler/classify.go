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
)

// WildcardKind 通配符分类
type WildcardKind int

const (
	// Exact 不含通配符
	Exact WildcardKind = iota
	// Prefix 只有一个 * 且在末尾
	Prefix
	// General 其余带 * 或 ? 的情况
	General
)

func (k WildcardKind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Prefix:
		return "prefix"
	default:
		return "general"
	}
}

// Classify 判断词的通配符类型，单独一个 * 没有可用前缀，按 General 处理
func Classify(value string) WildcardKind {
	stars := strings.Count(value, "*")
	marks := strings.Count(value, "?")

	switch {
	case stars == 0 && marks == 0:
		return Exact
	case stars == 1 && marks == 0 && len(value) > 1 && strings.HasSuffix(value, "*"):
		return Prefix
	default:
		return General
	}
}
