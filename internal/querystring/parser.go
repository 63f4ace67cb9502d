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
	"regexp"
	"strconv"
)

// DefaultMaxDepth 括号与前缀运算符允许的最大嵌套层数
const DefaultMaxDepth = 64

var (
	decimalRe = regexp.MustCompile(`^\d+(\.\d+)?$`)
	integerRe = regexp.MustCompile(`^\d+$`)
)

// Parser 查询语句解析器，零值可用
type Parser struct {
	MaxDepth int
}

// Parse 使用默认配置解析查询语句
func Parse(query string) (Expr, error) {
	return (&Parser{}).Parse(query)
}

// Parse 解析查询语句并返回解析树，失败时返回 *ParseError，不返回部分结果
func (p *Parser) Parse(query string) (Expr, error) {
	tokens, err := lex(query)
	if err != nil {
		return nil, err
	}

	maxDepth := p.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	w := &walkParse{query: query, tokens: tokens, maxDepth: maxDepth}
	if w.peek().typ == tEOF {
		return nil, w.errorf(w.peek(), "empty query", "term")
	}

	expr, err := w.parseOr()
	if err != nil {
		return nil, err
	}

	if tok := w.peek(); tok.typ != tEOF {
		if tok.typ == tRPAREN {
			return nil, w.errorf(tok, "unbalanced parenthesis", "end of input")
		}
		return nil, w.errorf(tok, "unexpected token", "end of input")
	}
	return expr, nil
}

type walkParse struct {
	query    string
	tokens   []token
	pos      int
	depth    int
	maxDepth int
}

func (w *walkParse) peek() token {
	return w.tokens[w.pos]
}

func (w *walkParse) peekAt(offset int) token {
	if w.pos+offset >= len(w.tokens) {
		return w.tokens[len(w.tokens)-1]
	}
	return w.tokens[w.pos+offset]
}

func (w *walkParse) next() token {
	tok := w.tokens[w.pos]
	if tok.typ != tEOF {
		w.pos++
	}
	return tok
}

func (w *walkParse) errorf(tok token, msg, expected string) *ParseError {
	return &ParseError{
		Query:    w.query,
		Pos:      tok.pos,
		Msg:      msg,
		Expected: expected,
		Found:    tok.describe(),
	}
}

func (w *walkParse) enter(tok token) error {
	w.depth++
	if w.depth > w.maxDepth {
		return w.errorf(tok, fmt.Sprintf("query nesting exceeds max depth %d", w.maxDepth), "")
	}
	return nil
}

func (w *walkParse) leave() {
	w.depth--
}

// startsOperand 无运算符相邻时，下一个 token 能否开始一个新的操作数
func startsOperand(typ tokenType) bool {
	switch typ {
	case tWORD, tPHRASE, tRANGE, tLPAREN, tPLUS, tMINUS, tNOT:
		return true
	}
	return false
}

// parseOr OR / || / 相邻，优先级最低
func (w *walkParse) parseOr() (Expr, error) {
	first, err := w.parseAnd()
	if err != nil {
		return nil, err
	}

	exprs := []Expr{first}
	for {
		tok := w.peek()
		if tok.typ == tOR {
			w.next()
		} else if !startsOperand(tok.typ) {
			break
		}

		e, err := w.parseAnd()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}

	if len(exprs) == 1 {
		return first, nil
	}
	return &OrExpr{Exprs: exprs}, nil
}

// parseAnd AND / &&，左结合，连续出现时合并为一个节点
func (w *walkParse) parseAnd() (Expr, error) {
	first, err := w.parseNot()
	if err != nil {
		return nil, err
	}

	exprs := []Expr{first}
	for w.peek().typ == tAND {
		w.next()
		e, err := w.parseNot()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}

	if len(exprs) == 1 {
		return first, nil
	}
	return &AndExpr{Exprs: exprs}, nil
}

func (w *walkParse) parseNot() (Expr, error) {
	tok := w.peek()
	if tok.typ != tNOT {
		return w.parseModifier()
	}

	w.next()
	if err := w.enter(tok); err != nil {
		return nil, err
	}
	defer w.leave()

	e, err := w.parseNot()
	if err != nil {
		return nil, err
	}
	return &NotExpr{Expr: e}, nil
}

func (w *walkParse) parseModifier() (Expr, error) {
	tok := w.peek()
	if tok.typ != tPLUS && tok.typ != tMINUS {
		return w.parseClause()
	}

	w.next()
	if err := w.enter(tok); err != nil {
		return nil, err
	}
	defer w.leave()

	e, err := w.parseModifier()
	if err != nil {
		return nil, err
	}
	if tok.typ == tPLUS {
		return &RequiredExpr{Expr: e}, nil
	}
	return &ProhibitedExpr{Expr: e}, nil
}

func (w *walkParse) parseClause() (Expr, error) {
	clause := &Clause{}

	if tok := w.peek(); tok.typ == tWORD {
		if sep := w.peekAt(1).typ; sep == tCOLON || sep == tDCOLON {
			clause.Field = tok.val
			clause.Contains = sep == tDCOLON
			w.next()
			w.next()
		}
	}

	tok := w.next()
	switch tok.typ {
	case tWORD:
		word := &Word{Text: tok.val}
		if w.peek().typ == tTILDE {
			tilde := w.next()
			fuzzy := DefaultFuzzy
			// 只有紧跟在 ~ 后面的词才是模糊度，roam~ foam 是两个词
			if n := w.peek(); n.typ == tWORD && n.pos == tilde.end {
				if !decimalRe.MatchString(n.val) {
					return nil, w.errorf(n, "invalid fuzziness", "number")
				}
				w.next()
				fuzzy, _ = strconv.ParseFloat(n.val, 64)
			}
			word.Fuzzy = &fuzzy
		}
		clause.Body = word
	case tPHRASE:
		phrase := &Phrase{Text: tok.val}
		if w.peek().typ == tTILDE {
			w.next()
			n := w.next()
			if n.typ != tWORD || !integerRe.MatchString(n.val) {
				return nil, w.errorf(n, "invalid proximity", "integer")
			}
			proximity, err := strconv.Atoi(n.val)
			if err != nil {
				return nil, w.errorf(n, "invalid proximity", "integer")
			}
			phrase.Proximity = &proximity
		}
		clause.Body = phrase
	case tRANGE:
		clause.Body = tok.rng
	case tLPAREN:
		if err := w.enter(tok); err != nil {
			return nil, err
		}
		e, err := w.parseOr()
		w.leave()
		if err != nil {
			return nil, err
		}
		if end := w.next(); end.typ != tRPAREN {
			return nil, w.errorf(end, "unbalanced parenthesis", "')'")
		}
		clause.Body = &Subquery{Expr: e}
	case tAND, tOR, tNOT, tTO:
		return nil, w.errorf(tok, fmt.Sprintf("reserved keyword %s", tok.typ), "term")
	default:
		return nil, w.errorf(tok, "unexpected token", "term")
	}

	if w.peek().typ == tCARAT {
		w.next()
		n := w.next()
		if n.typ != tWORD || !decimalRe.MatchString(n.val) {
			return nil, w.errorf(n, "invalid boost", "number")
		}
		boost, _ := strconv.ParseFloat(n.val, 64)
		clause.Boost = &boost
	}

	return clause, nil
}
