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
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/filter"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/internal/querystring"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/internal/resolver"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/log"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/metric"
)

var (
	defaultCompiler *Compiler
	defaultLock     = new(sync.RWMutex)
)

func init() {
	defaultCompiler = New(resolver.New(), Option{})
}

// SetDefault 替换进程级默认编译器，配置重载时调用
func SetDefault(c *Compiler) {
	if c == nil {
		return
	}
	defaultLock.Lock()
	defer defaultLock.Unlock()
	defaultCompiler = c
}

func Default() *Compiler {
	defaultLock.RLock()
	defer defaultLock.RUnlock()
	return defaultCompiler
}

// CompileQuery 使用默认编译器编译查询语句
func CompileQuery(ctx context.Context, query string) (*filter.MatchAll, error) {
	return Default().CompileQuery(ctx, query)
}

// Compiler 把查询语句的语法树编译成过滤树。
// 构造后只读，可并发使用。
type Compiler struct {
	resolver *resolver.Resolver
	parser   *querystring.Parser
	opt      Option
	keywords map[string]struct{}
}

func New(r *resolver.Resolver, opt Option) *Compiler {
	if r == nil {
		r = resolver.New()
	}
	opt = opt.withDefault()

	keywords := make(map[string]struct{}, len(opt.KeywordFields))
	for _, f := range opt.KeywordFields {
		keywords[f] = struct{}{}
	}

	return &Compiler{
		resolver: r,
		parser:   &querystring.Parser{MaxDepth: opt.MaxDepth},
		opt:      opt,
		keywords: keywords,
	}
}

func (c *Compiler) Option() Option {
	return c.opt
}

// Parse 只做语法解析
func (c *Compiler) Parse(query string) (querystring.Expr, error) {
	return c.parser.Parse(query)
}

// CompileQuery 解析并编译查询语句，结果包在 MatchAll 里。
// 同一次调用中所有相对时间都基于同一个 now。
func (c *Compiler) CompileQuery(ctx context.Context, query string) (*filter.MatchAll, error) {
	var (
		start  = time.Now()
		status = metric.StatusSuccess
		reason = ""
		err    error
	)
	defer func() {
		if err != nil {
			status = metric.StatusFailed
			reason = errorKind(err)
		}
		metric.CompileCountInc(ctx, status, reason)
		metric.CompileSecond(ctx, time.Since(start), status)
	}()

	expr, err := c.parser.Parse(query)
	if err != nil {
		log.Debugf(ctx, "parse query %q failed: %s", query, err)
		return nil, err
	}

	node, err := c.compile(ctx, expr, c.resolver.Now())
	if err != nil {
		log.Debugf(ctx, "compile query %q failed: %s", query, err)
		return nil, err
	}

	root := &filter.MatchAll{Filter: node}
	log.Debugf(ctx, "compile query %q to %s", query, root)
	return root, nil
}

// Compile 编译语法树，now 作为相对时间的基准
func (c *Compiler) Compile(expr querystring.Expr, now time.Time) (filter.Node, error) {
	return c.compile(context.Background(), expr, now)
}

func (c *Compiler) compile(ctx context.Context, expr querystring.Expr, now time.Time) (filter.Node, error) {
	w := &walkCompile{ctx: ctx, c: c, now: now}
	return w.walk(expr, "")
}

func errorKind(err error) string {
	var (
		pe *querystring.ParseError
		re *RangeError
	)
	switch {
	case errors.As(err, &pe):
		return metric.ErrorSyntax
	case errors.As(err, &re):
		return metric.ErrorRange
	default:
		return metric.ErrorOther
	}
}

type walkCompile struct {
	ctx context.Context
	c   *Compiler
	now time.Time
}

// walk inherited 为外层子查询上的字段，作为内部未指定字段的默认值
func (w *walkCompile) walk(expr querystring.Expr, inherited string) (filter.Node, error) {
	switch e := expr.(type) {
	case *querystring.Clause:
		return w.walkClause(e, inherited)
	case *querystring.NotExpr:
		inner, err := w.walk(e.Expr, inherited)
		if err != nil {
			return nil, err
		}
		return &filter.Not{Filter: inner}, nil
	case *querystring.RequiredExpr:
		return w.walk(e.Expr, inherited)
	case *querystring.ProhibitedExpr:
		inner, err := w.walk(e.Expr, inherited)
		if err != nil {
			return nil, err
		}
		return &filter.Not{Filter: inner}, nil
	case *querystring.AndExpr:
		return w.walkGroup(e.Exprs, true, inherited)
	case *querystring.OrExpr:
		return w.walkGroup(e.Exprs, false, inherited)
	default:
		return nil, errors.Errorf("unknown expression type %T", expr)
	}
}

func hasModifier(exprs []querystring.Expr) bool {
	for _, e := range exprs {
		switch e.(type) {
		case *querystring.RequiredExpr, *querystring.ProhibitedExpr:
			return true
		}
	}
	return false
}

// walkGroup 组内有 +/- 修饰时编译成 Bool，否则按原运算符编译成 And / Or
func (w *walkCompile) walkGroup(exprs []querystring.Expr, and bool, inherited string) (filter.Node, error) {
	if !hasModifier(exprs) {
		filters := make([]filter.Node, 0, len(exprs))
		for _, e := range exprs {
			node, err := w.walk(e, inherited)
			if err != nil {
				return nil, err
			}
			filters = append(filters, node)
		}
		if and {
			return &filter.And{Filters: filters}, nil
		}
		return &filter.Or{Filters: filters}, nil
	}

	b := &filter.Bool{}
	for _, e := range exprs {
		var (
			inner querystring.Expr
			dst   *[]filter.Node
		)
		switch m := e.(type) {
		case *querystring.RequiredExpr:
			inner, dst = m.Expr, &b.Must
		case *querystring.ProhibitedExpr:
			inner, dst = m.Expr, &b.MustNot
		case *querystring.NotExpr:
			inner, dst = m.Expr, &b.MustNot
		default:
			inner, dst = e, &b.Should
		}

		node, err := w.walk(inner, inherited)
		if err != nil {
			return nil, err
		}
		*dst = append(*dst, node)
	}
	return b, nil
}

func (w *walkCompile) walkClause(e *querystring.Clause, inherited string) (filter.Node, error) {
	field := e.Field
	if field == "" {
		field = inherited
	}

	switch body := e.Body.(type) {
	case *querystring.Subquery:
		if e.Boost != nil {
			log.Debugf(w.ctx, "boost %v on subquery %s is ignored in filter context", *e.Boost, body)
		}
		return w.walk(body.Expr, field)
	case *querystring.Range:
		return w.walkRange(field, body)
	case *querystring.Phrase:
		return w.walkText(e, field, body.Text, body)
	case *querystring.Word:
		return w.walkText(e, field, body.Text, body)
	default:
		return nil, errors.Errorf("unknown clause body type %T", e.Body)
	}
}

// field 补全默认字段并做别名转换
func (w *walkCompile) field(name string) string {
	if name == "" {
		name = w.c.opt.DefaultField
	}
	if alias, ok := w.c.opt.FieldAlias[name]; ok && alias != "" {
		return alias
	}
	return name
}

func splitValues(text string) []string {
	parts := strings.Split(text, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			values = append(values, p)
		}
	}
	return values
}

func (w *walkCompile) walkText(e *querystring.Clause, name, text string, body querystring.Body) (filter.Node, error) {
	if name == filter.IdsField {
		return &filter.Ids{Values: splitValues(text)}, nil
	}

	field := w.field(name)
	if e.Contains {
		return &filter.Terms{Field: field, Values: splitValues(text)}, nil
	}

	boost := querystring.DefaultBoost
	if e.Boost != nil {
		boost = *e.Boost
	}

	switch b := body.(type) {
	case *querystring.Phrase:
		return &filter.Phrase{Field: field, Text: text, Mode: filter.ModePhrase, Proximity: b.Proximity}, nil
	case *querystring.Word:
		switch Classify(text) {
		case Prefix:
			prefix := strings.TrimSuffix(text, "*")
			if w.c.opt.PrefixMode == PrefixModePrefix {
				return &filter.Prefix{Field: field, Prefix: prefix, Boost: boost}, nil
			}
			return &filter.Phrase{Field: field, Text: prefix, Mode: filter.ModePhrasePrefix}, nil
		case General:
			return &filter.Wildcard{Field: field, Pattern: text, Boost: boost}, nil
		default:
			if _, ok := w.c.keywords[field]; ok {
				return &filter.Term{Field: field, Value: text}, nil
			}
			return &filter.Phrase{Field: field, Text: text, Mode: filter.ModeText, Fuzziness: b.Fuzzy}, nil
		}
	}
	return nil, errors.Errorf("unknown text body type %T", body)
}

func (w *walkCompile) walkRange(name string, r *querystring.Range) (filter.Node, error) {
	field := w.field(name)

	lower, err := w.c.resolver.Resolve(r.Lower, w.now)
	if err != nil {
		return nil, &RangeError{Field: field, Bound: "lower", Raw: r.Lower, Err: err}
	}
	upper, err := w.c.resolver.Resolve(r.Upper, w.now)
	if err != nil {
		return nil, &RangeError{Field: field, Bound: "upper", Raw: r.Upper, Err: err}
	}

	return &filter.Range{
		Field:     field,
		Lower:     lower,
		Upper:     upper,
		InclLower: r.InclLower,
		InclUpper: r.InclUpper,
	}, nil
}
