// Tencent is pleased to support the open source community by making
// 蓝鲸智云 - 监控平台 (BlueKing - Monitor) available.
// Copyright (C) 2022 THL A29 Limited, a Tencent company. All rights reserved.
// Licensed under the MIT License (the "License"); you may not use this file except in compliance with the License.
// You may obtain a copy of the License at http://opensource.org/licenses/MIT
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// AllField 未指定字段时检索的全字段
	AllField = "_all"
	// IdsField 主键检索字段
	IdsField = "_ids"
)

// Node 过滤树节点，只能是本包内定义的类型
type Node interface {
	fmt.Stringer
	node()
}

// PhraseMode 文本匹配方式
type PhraseMode int

const (
	// ModeText 分词后的普通文本匹配
	ModeText PhraseMode = iota
	// ModePhrase 短语匹配，要求词序
	ModePhrase
	// ModePhrasePrefix 短语前缀匹配，最后一个词做前缀
	ModePhrasePrefix
)

var phraseModeNames = map[PhraseMode]string{
	ModeText:         "text",
	ModePhrase:       "phrase",
	ModePhrasePrefix: "phrase_prefix",
}

func (m PhraseMode) String() string {
	if name, ok := phraseModeNames[m]; ok {
		return name
	}
	return "mode(" + strconv.Itoa(int(m)) + ")"
}

// ValueKind 范围边界值类型
type ValueKind int

const (
	Integer ValueKind = iota
	Float
	Instant
)

// Value 范围边界，nil 表示开区间 *
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Time  time.Time
}

func IntegerValue(i int64) *Value {
	return &Value{Kind: Integer, Int: i}
}

func FloatValue(f float64) *Value {
	return &Value{Kind: Float, Float: f}
}

func InstantValue(t time.Time) *Value {
	return &Value{Kind: Instant, Time: t}
}

// Interface 返回边界的 Go 原生值，供序列化使用
func (v *Value) Interface() interface{} {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case Integer:
		return v.Int
	case Float:
		return v.Float
	default:
		return v.Time.Format(time.RFC3339Nano)
	}
}

func (v *Value) String() string {
	if v == nil {
		return "*"
	}
	switch v.Kind {
	case Integer:
		return strconv.FormatInt(v.Int, 10)
	case Float:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	default:
		return v.Time.Format(time.RFC3339Nano)
	}
}

type Term struct {
	Field string
	Value string
}

type Terms struct {
	Field  string
	Values []string
}

type Ids struct {
	Values []string
}

type Prefix struct {
	Field  string
	Prefix string
	Boost  float64
}

type Wildcard struct {
	Field   string
	Pattern string
	Boost   float64
}

type Phrase struct {
	Field     string
	Text      string
	Mode      PhraseMode
	Proximity *int
	Fuzziness *float64
}

type Range struct {
	Field     string
	Lower     *Value
	Upper     *Value
	InclLower bool
	InclUpper bool
}

// And 所有子条件都满足
type And struct {
	Filters []Node
}

// Or 任一子条件满足
type Or struct {
	Filters []Node
}

type Not struct {
	Filter Node
}

// Bool 带 +/- 修饰的组合，Must 全满足、MustNot 全不满足
type Bool struct {
	Must    []Node
	Should  []Node
	MustNot []Node
}

// MatchAll 根节点：匹配全部文档后再用 Filter 过滤
type MatchAll struct {
	Filter Node
}

func (*Term) node()     {}
func (*Terms) node()    {}
func (*Ids) node()      {}
func (*Prefix) node()   {}
func (*Wildcard) node() {}
func (*Phrase) node()   {}
func (*Range) node()    {}
func (*And) node()      {}
func (*Or) node()       {}
func (*Not) node()      {}
func (*Bool) node()     {}
func (*MatchAll) node() {}

func formatBoost(b float64) string {
	return strconv.FormatFloat(b, 'f', -1, 64)
}

func joinNodes(nodes []Node) string {
	s := make([]string, 0, len(nodes))
	for _, n := range nodes {
		s = append(s, n.String())
	}
	return strings.Join(s, ", ")
}

func (n *Term) String() string {
	return fmt.Sprintf("term(%s=%q)", n.Field, n.Value)
}

func (n *Terms) String() string {
	return fmt.Sprintf("terms(%s=%q)", n.Field, n.Values)
}

func (n *Ids) String() string {
	return fmt.Sprintf("ids(%q)", n.Values)
}

func (n *Prefix) String() string {
	return fmt.Sprintf("prefix(%s=%q^%s)", n.Field, n.Prefix, formatBoost(n.Boost))
}

func (n *Wildcard) String() string {
	return fmt.Sprintf("wildcard(%s=%q^%s)", n.Field, n.Pattern, formatBoost(n.Boost))
}

func (n *Phrase) String() string {
	s := fmt.Sprintf("%s(%s=%q", n.Mode, n.Field, n.Text)
	if n.Proximity != nil {
		s += fmt.Sprintf(" slop=%d", *n.Proximity)
	}
	if n.Fuzziness != nil {
		s += " fuzziness=" + formatBoost(*n.Fuzziness)
	}
	return s + ")"
}

func (n *Range) String() string {
	open, end := "{", "}"
	if n.InclLower {
		open = "["
	}
	if n.InclUpper {
		end = "]"
	}
	return fmt.Sprintf("range(%s=%s%s TO %s%s)", n.Field, open, n.Lower, n.Upper, end)
}

func (n *And) String() string {
	return "and(" + joinNodes(n.Filters) + ")"
}

func (n *Or) String() string {
	return "or(" + joinNodes(n.Filters) + ")"
}

func (n *Not) String() string {
	return "not(" + n.Filter.String() + ")"
}

func (n *Bool) String() string {
	return fmt.Sprintf("bool(must=[%s], should=[%s], must_not=[%s])",
		joinNodes(n.Must), joinNodes(n.Should), joinNodes(n.MustNot))
}

func (n *MatchAll) String() string {
	return "match_all(filter=" + n.Filter.String() + ")"
}
