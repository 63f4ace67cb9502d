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
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenType int

const (
	tEOF tokenType = iota
	tWORD
	tPHRASE
	tRANGE
	tCOLON
	tDCOLON
	tTILDE
	tCARAT
	tLPAREN
	tRPAREN
	tPLUS
	tMINUS
	tAND
	tOR
	tNOT
	tTO
)

var tokenNames = map[tokenType]string{
	tEOF:    "end of input",
	tWORD:   "word",
	tPHRASE: "phrase",
	tRANGE:  "range",
	tCOLON:  "':'",
	tDCOLON: "'::'",
	tTILDE:  "'~'",
	tCARAT:  "'^'",
	tLPAREN: "'('",
	tRPAREN: "')'",
	tPLUS:   "'+'",
	tMINUS:  "'-'",
	tAND:    "AND",
	tOR:     "OR",
	tNOT:    "NOT",
	tTO:     "TO",
}

func (t tokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// escapable 反斜杠后允许出现的字符
const escapable = `!(){}[]^"~*?\:`

var keywords = map[string]tokenType{
	"and": tAND,
	"or":  tOR,
	"not": tNOT,
	"to":  tTO,
}

type token struct {
	typ tokenType
	val string
	pos int
	end int

	rng *Range
}

func (t token) describe() string {
	switch t.typ {
	case tWORD:
		return fmt.Sprintf("word %q", t.val)
	case tPHRASE:
		return fmt.Sprintf("phrase %q", t.val)
	}
	return t.typ.String()
}

type lexState func(l *queryStringLex) lexState

type queryStringLex struct {
	input string
	start int
	pos   int
	buf   strings.Builder

	tokens []token
	err    *ParseError
}

// lex 将查询语句一次性切分为 token 序列，末尾总是 tEOF
func lex(input string) ([]token, error) {
	l := &queryStringLex{input: input}
	for state := startState; state != nil; {
		state = state(l)
	}
	if l.err != nil {
		return nil, l.err
	}
	l.tokens = append(l.tokens, token{typ: tEOF, pos: len(input), end: len(input)})
	return l.tokens, nil
}

func (l *queryStringLex) peekRune(offset int) (rune, int) {
	if offset >= len(l.input) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(l.input[offset:])
}

func (l *queryStringLex) emit(typ tokenType, val string) {
	l.tokens = append(l.tokens, token{typ: typ, val: val, pos: l.start, end: l.pos})
	l.buf.Reset()
}

func (l *queryStringLex) fail(pos int, msg, expected, found string) lexState {
	l.err = &ParseError{
		Query:    l.input,
		Pos:      pos,
		Msg:      msg,
		Expected: expected,
		Found:    found,
	}
	return nil
}

// signStartsWord 紧跟在 `:` / `::` 之后的 +/- 属于值本身，例如 a:-5
func (l *queryStringLex) signStartsWord() bool {
	if len(l.tokens) == 0 {
		return false
	}
	last := l.tokens[len(l.tokens)-1]
	return (last.typ == tCOLON || last.typ == tDCOLON) && last.end == l.pos
}

func isWordRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	return strings.ContainsRune("*_+/.,?-", r)
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$'
}

func startState(l *queryStringLex) lexState {
	if l.pos >= len(l.input) {
		return nil
	}

	l.start = l.pos
	next, size := l.peekRune(l.pos)

	if unicode.IsSpace(next) {
		l.pos += size
		return startState
	}

	switch next {
	case '"':
		l.pos += size
		return inPhraseState
	case '[', '{':
		return inRangeState
	case '(':
		l.pos += size
		l.emit(tLPAREN, "(")
		return startState
	case ')':
		l.pos += size
		l.emit(tRPAREN, ")")
		return startState
	case '~':
		l.pos += size
		l.emit(tTILDE, "~")
		return startState
	case '^':
		l.pos += size
		l.emit(tCARAT, "^")
		return startState
	case '!':
		l.pos += size
		l.emit(tNOT, "!")
		return startState
	case ':':
		l.pos += size
		if r, n := l.peekRune(l.pos); r == ':' {
			l.pos += n
			l.emit(tDCOLON, "::")
			return startState
		}
		l.emit(tCOLON, ":")
		return startState
	case '&', '|':
		if r, n := l.peekRune(l.pos + size); r == next {
			l.pos += size + n
			if next == '&' {
				l.emit(tAND, "&&")
			} else {
				l.emit(tOR, "||")
			}
			return startState
		}
		return l.fail(l.pos, "unexpected character", fmt.Sprintf("'%c%c'", next, next), fmt.Sprintf("'%c'", next))
	case '+', '-':
		if l.signStartsWord() {
			return inWordState
		}
		l.pos += size
		if next == '+' {
			l.emit(tPLUS, "+")
		} else {
			l.emit(tMINUS, "-")
		}
		return startState
	}

	if next == '\\' || isWordRune(next) {
		return inWordState
	}

	return l.fail(l.pos, "unexpected character", "term", fmt.Sprintf("%q", next))
}

func inWordState(l *queryStringLex) lexState {
	escaped := false
	for l.pos < len(l.input) {
		r, size := l.peekRune(l.pos)
		if r == '\\' {
			e, n := l.peekRune(l.pos + size)
			if n == 0 {
				return l.fail(l.pos, "unterminated escape", "escaped character", "end of input")
			}
			if !strings.ContainsRune(escapable, e) {
				return l.fail(l.pos, "invalid escape", "one of "+escapable, fmt.Sprintf("%q", e))
			}
			l.buf.WriteRune(e)
			l.pos += size + n
			escaped = true
			continue
		}
		if !isWordRune(r) {
			break
		}
		l.buf.WriteRune(r)
		l.pos += size
	}

	raw := l.input[l.start:l.pos]
	if !escaped {
		if typ, ok := keywords[strings.ToLower(raw)]; ok {
			l.emit(typ, raw)
			return startState
		}
	}

	l.emit(tWORD, strings.ToLower(l.buf.String()))
	return startState
}

func inPhraseState(l *queryStringLex) lexState {
	for l.pos < len(l.input) {
		r, size := l.peekRune(l.pos)
		switch r {
		case '"':
			l.pos += size
			l.emit(tPHRASE, l.buf.String())
			return startState
		case '\\':
			e, n := l.peekRune(l.pos + size)
			if e == '"' || e == '\\' {
				l.buf.WriteRune(e)
				l.pos += size + n
				continue
			}
		}
		l.buf.WriteRune(r)
		l.pos += size
	}

	// 未闭合的引号，整个查询作废
	return l.fail(l.start, "unterminated quote", `closing '"'`, "end of input")
}

// keywordTOAt 判断 offset 处是否为独立的 TO 关键字
func (l *queryStringLex) keywordTOAt(offset, bodyStart int) bool {
	if offset+2 > len(l.input) || !strings.EqualFold(l.input[offset:offset+2], "to") {
		return false
	}
	if offset > bodyStart {
		prev, _ := utf8.DecodeLastRuneInString(l.input[:offset])
		if isIdentRune(prev) {
			return false
		}
	}
	if next, n := l.peekRune(offset + 2); n > 0 && isIdentRune(next) {
		return false
	}
	return true
}

func inRangeState(l *queryStringLex) lexState {
	open, size := l.peekRune(l.pos)
	l.pos += size
	bodyStart := l.pos

	to := -1
	for i := bodyStart; i < len(l.input); {
		r, n := l.peekRune(i)
		if r == ']' || r == '}' {
			return l.fail(i, "malformed range", "TO", fmt.Sprintf("'%c'", r))
		}
		if l.keywordTOAt(i, bodyStart) {
			to = i
			break
		}
		i += n
	}
	if to < 0 {
		return l.fail(l.start, "unterminated range", "TO", "end of input")
	}

	closeAt := -1
	for i := to + 2; i < len(l.input); {
		r, n := l.peekRune(i)
		if r == ']' || r == '}' {
			closeAt = i
			break
		}
		i += n
	}
	if closeAt < 0 {
		return l.fail(l.start, "unterminated range", "']' or '}'", "end of input")
	}

	lower := strings.TrimSpace(l.input[bodyStart:to])
	upper := strings.TrimSpace(l.input[to+2 : closeAt])
	if lower == "" {
		return l.fail(bodyStart, "malformed range", "lower bound", "TO")
	}
	if upper == "" {
		return l.fail(to+2, "malformed range", "upper bound", fmt.Sprintf("'%c'", l.input[closeAt]))
	}

	l.pos = closeAt + 1
	l.tokens = append(l.tokens, token{
		typ: tRANGE,
		val: l.input[l.start:l.pos],
		pos: l.start,
		end: l.pos,
		rng: &Range{
			Lower:     lower,
			Upper:     upper,
			InclLower: open == '[',
			InclUpper: l.input[closeAt] == ']',
		},
	})
	return startState
}
