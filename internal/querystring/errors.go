// Tencent is pleased to support the open source community by making
// 蓝鲸智云 - 监控平台 (BlueKing - Monitor) available.
// Copyright (C) 2022 THL A29 Limited, a Tencent company. All rights reserved.
// Licensed under the MIT License (the "License"); you may not use this file except in compliance with the License.
// You may obtain a copy of the License at http://opensource.org/licenses/MIT
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package querystring

import (
	"fmt"
)

// ParseError 词法或语法错误，Pos 为出错位置在原查询中的字节偏移
type ParseError struct {
	Query    string
	Pos      int
	Msg      string
	Expected string
	Found    string
}

func (e *ParseError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = "syntax error"
	}

	s := fmt.Sprintf("%s at position %d", msg, e.Pos)
	if e.Expected != "" {
		s += fmt.Sprintf(": expected %s", e.Expected)
		if e.Found != "" {
			s += fmt.Sprintf(", found %s", e.Found)
		}
	} else if e.Found != "" {
		s += fmt.Sprintf(": found %s", e.Found)
	}
	return s
}
