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
	"strconv"
	"strings"
)

const (
	// DefaultBoost 未指定 ^ 时的权重
	DefaultBoost = 1.0
	// DefaultFuzzy 只写 ~ 不带数值时的模糊度
	DefaultFuzzy = 0.5
)

// Expr 解析树节点，取值只有本文件中定义的几种
type Expr interface {
	fmt.Stringer
	expr()
}

// Body 子句主体：Word / Phrase / Range / Subquery 四选一
type Body interface {
	fmt.Stringer
	body()
}

// Clause 单个检索条件，Field 为空表示未指定字段
type Clause struct {
	Field    string
	Contains bool
	Body     Body
	Boost    *float64
}

// Word 普通词，已转小写并去除转义
type Word struct {
	Text  string
	Fuzzy *float64
}

// Phrase 双引号短语
type Phrase struct {
	Text      string
	Proximity *int
}

// Range 范围，上下界保留原始文本
type Range struct {
	Lower     string
	Upper     string
	InclLower bool
	InclUpper bool
}

// Subquery 括号内的子表达式
type Subquery struct {
	Expr Expr
}

// NotExpr NOT / !
type NotExpr struct {
	Expr Expr
}

// RequiredExpr + 前缀，只作用于紧跟的一项
type RequiredExpr struct {
	Expr Expr
}

// ProhibitedExpr - 前缀，只作用于紧跟的一项
type ProhibitedExpr struct {
	Expr Expr
}

// AndExpr AND / && 连接的多项
type AndExpr struct {
	Exprs []Expr
}

// OrExpr OR / || 以及无运算符相邻的多项
type OrExpr struct {
	Exprs []Expr
}

func (*Clause) expr()         {}
func (*NotExpr) expr()        {}
func (*RequiredExpr) expr()   {}
func (*ProhibitedExpr) expr() {}
func (*AndExpr) expr()        {}
func (*OrExpr) expr()         {}

func (*Word) body()     {}
func (*Phrase) body()   {}
func (*Range) body()    {}
func (*Subquery) body() {}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (c *Clause) String() string {
	var b strings.Builder
	if c.Field != "" {
		b.WriteString(c.Field)
		b.WriteString(":")
		if c.Contains {
			b.WriteString(":")
		}
	}
	b.WriteString(c.Body.String())
	if c.Boost != nil {
		b.WriteString("^")
		b.WriteString(formatFloat(*c.Boost))
	}
	return b.String()
}

func (w *Word) String() string {
	if w.Fuzzy != nil {
		return w.Text + "~" + formatFloat(*w.Fuzzy)
	}
	return w.Text
}

func (p *Phrase) String() string {
	s := strconv.Quote(p.Text)
	if p.Proximity != nil {
		s += "~" + strconv.Itoa(*p.Proximity)
	}
	return s
}

func (r *Range) String() string {
	open, end := "{", "}"
	if r.InclLower {
		open = "["
	}
	if r.InclUpper {
		end = "]"
	}
	return fmt.Sprintf("%s%s TO %s%s", open, r.Lower, r.Upper, end)
}

func (s *Subquery) String() string {
	return "(" + s.Expr.String() + ")"
}

func (e *NotExpr) String() string {
	return "NOT " + e.Expr.String()
}

func (e *RequiredExpr) String() string {
	return "+" + e.Expr.String()
}

func (e *ProhibitedExpr) String() string {
	return "-" + e.Expr.String()
}

func joinExprs(exprs []Expr, sep string) string {
	s := make([]string, 0, len(exprs))
	for _, e := range exprs {
		s = append(s, e.String())
	}
	return strings.Join(s, sep)
}

func (e *AndExpr) String() string {
	return joinExprs(e.Exprs, " AND ")
}

func (e *OrExpr) String() string {
	return joinExprs(e.Exprs, " OR ")
}
