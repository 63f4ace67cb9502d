// Tencent is pleased to support the open source community by making
// 蓝鲸智云 - 监控平台 (BlueKing - Monitor) available.
// Copyright (C) 2022 THL A29 Limited, a Tencent company. All rights reserved.
// Licensed under the MIT License (the "License"); you may not use this file except in compliance with the License.
// You may obtain a copy of the License at http://opensource.org/licenses/MIT
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package es

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/compiler"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/filter"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/internal/querystring"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/internal/resolver"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/log"
)

var testNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func init() {
	log.InitTestLogger()
}

func newTestCompiler() *compiler.Compiler {
	r := resolver.New(resolver.WithLocation(time.UTC), resolver.WithClock(func() time.Time { return testNow }))
	return compiler.New(r, compiler.Option{})
}

func match(field, text string) filter.Node {
	return &filter.Phrase{Field: field, Text: text, Mode: filter.ModeText}
}

func TestMarshal(t *testing.T) {
	slop := 5
	low, high := 0.8, 3.0

	testCases := map[string]struct {
		node filter.Node
		json string
	}{
		"match_all_envelope": {
			node: &filter.MatchAll{Filter: match("name", "ian")},
			json: `{"bool":{"filter":{"match":{"name":{"query":"ian"}}},"must":{"match_all":{}}}}`,
		},
		"term": {
			node: &filter.Term{Field: "status", Value: "open"},
			json: `{"term":{"status":"open"}}`,
		},
		"terms": {
			node: &filter.Terms{Field: "name", Values: []string{"x", "y", "z"}},
			json: `{"terms":{"name":["x","y","z"]}}`,
		},
		"ids": {
			node: &filter.Ids{Values: []string{"1", "2", "3"}},
			json: `{"ids":{"values":["1","2","3"]}}`,
		},
		"prefix": {
			node: &filter.Prefix{Field: "name", Prefix: "ian", Boost: 2},
			json: `{"prefix":{"name":{"boost":2,"value":"ian"}}}`,
		},
		"wildcard": {
			node: &filter.Wildcard{Field: "name", Pattern: "*mac*", Boost: 1},
			json: `{"wildcard":{"name":{"boost":1,"value":"*mac*"}}}`,
		},
		"phrase": {
			node: &filter.Phrase{Field: "log", Text: "hello world", Mode: filter.ModePhrase, Proximity: &slop},
			json: `{"match_phrase":{"log":{"query":"hello world","slop":5}}}`,
		},
		"phrase_prefix": {
			node: &filter.Phrase{Field: "name", Text: "ian", Mode: filter.ModePhrasePrefix},
			json: `{"match_phrase_prefix":{"name":{"query":"ian"}}}`,
		},
		"fuzzy_auto": {
			node: &filter.Phrase{Field: "name", Text: "roam", Mode: filter.ModeText, Fuzziness: &low},
			json: `{"match":{"name":{"fuzziness":"AUTO","query":"roam"}}}`,
		},
		"fuzzy_edit_distance_capped": {
			node: &filter.Phrase{Field: "name", Text: "roam", Mode: filter.ModeText, Fuzziness: &high},
			json: `{"match":{"name":{"fuzziness":"2","query":"roam"}}}`,
		},
		"range": {
			node: &filter.Range{Field: "a", Lower: filter.IntegerValue(1), Upper: filter.IntegerValue(10), InclLower: true},
			json: `{"range":{"a":{"from":1,"include_lower":true,"include_upper":false,"to":10}}}`,
		},
		"range_open_instant": {
			node: &filter.Range{Field: "ts", Lower: filter.InstantValue(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)), InclLower: true, InclUpper: true},
			json: `{"range":{"ts":{"from":"2024-01-02T00:00:00Z","include_lower":true,"include_upper":true,"to":null}}}`,
		},
		"and": {
			node: &filter.And{Filters: []filter.Node{match("a", "x"), match("b", "y")}},
			json: `{"bool":{"filter":[{"match":{"a":{"query":"x"}}},{"match":{"b":{"query":"y"}}}]}}`,
		},
		"or": {
			node: &filter.Or{Filters: []filter.Node{match("a", "x"), match("b", "y")}},
			json: `{"bool":{"minimum_should_match":"1","should":[{"match":{"a":{"query":"x"}}},{"match":{"b":{"query":"y"}}}]}}`,
		},
		"not": {
			node: &filter.Not{Filter: match("a", "x")},
			json: `{"bool":{"must_not":{"match":{"a":{"query":"x"}}}}}`,
		},
		"bool": {
			node: &filter.Bool{
				Must:    []filter.Node{match("a", "x")},
				Should:  []filter.Node{match("c", "z")},
				MustNot: []filter.Node{match("b", "y")},
			},
			json: `{"bool":{"must":{"match":{"a":{"query":"x"}}},"must_not":{"match":{"b":{"query":"y"}}},"should":{"match":{"c":{"query":"z"}}}}}`,
		},
	}

	for name, c := range testCases {
		t.Run(name, func(t *testing.T) {
			body, err := Marshal(c.node)
			require.NoError(t, err)
			assert.JSONEq(t, c.json, string(body))
		})
	}
}

func TestMarshalAllField(t *testing.T) {
	slop := 2

	type multiMatch struct {
		MultiMatch struct {
			Query     string   `json:"query"`
			Type      string   `json:"type"`
			Fields    []string `json:"fields"`
			Lenient   bool     `json:"lenient"`
			Slop      int      `json:"slop"`
			Fuzziness string   `json:"fuzziness"`
		} `json:"multi_match"`
	}

	body, err := Marshal(&filter.Phrase{Field: filter.AllField, Text: "hello world", Mode: filter.ModePhrase, Proximity: &slop})
	require.NoError(t, err)
	var mm multiMatch
	require.NoError(t, json.Unmarshal(body, &mm))
	assert.Equal(t, "hello world", mm.MultiMatch.Query)
	assert.Equal(t, "phrase", mm.MultiMatch.Type)
	assert.Equal(t, AllFields, mm.MultiMatch.Fields)
	assert.True(t, mm.MultiMatch.Lenient)
	assert.Equal(t, 2, mm.MultiMatch.Slop)

	body, err = Marshal(&filter.Phrase{Field: filter.AllField, Text: "ian", Mode: filter.ModePhrasePrefix})
	require.NoError(t, err)
	mm = multiMatch{}
	require.NoError(t, json.Unmarshal(body, &mm))
	assert.Equal(t, "phrase_prefix", mm.MultiMatch.Type)

	fuzzy := 0.5
	body, err = Marshal(&filter.Phrase{Field: filter.AllField, Text: "roam", Mode: filter.ModeText, Fuzziness: &fuzzy})
	require.NoError(t, err)
	mm = multiMatch{}
	require.NoError(t, json.Unmarshal(body, &mm))
	assert.Equal(t, "roam", mm.MultiMatch.Query)
	assert.Equal(t, FuzzinessAuto, mm.MultiMatch.Fuzziness)

	var qs struct {
		QueryString struct {
			Query           string   `json:"query"`
			AnalyzeWildcard bool     `json:"analyze_wildcard"`
			Fields          []string `json:"fields"`
			Lenient         bool     `json:"lenient"`
			Boost           float64  `json:"boost"`
		} `json:"query_string"`
	}
	body, err = Marshal(&filter.Wildcard{Field: filter.AllField, Pattern: "*mac*", Boost: 2})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &qs))
	assert.Equal(t, "*mac*", qs.QueryString.Query)
	assert.True(t, qs.QueryString.AnalyzeWildcard)
	assert.Equal(t, AllFields, qs.QueryString.Fields)
	assert.Equal(t, 2.0, qs.QueryString.Boost)

	body, err = Marshal(&filter.Prefix{Field: filter.AllField, Prefix: "ian", Boost: 1})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &qs))
	assert.Equal(t, "ian*", qs.QueryString.Query)
}

func TestMarshalError(t *testing.T) {
	_, err := Marshal(nil)
	assert.Error(t, err)

	_, err = Marshal(&filter.Not{})
	assert.Error(t, err)
}

func TestCompileAndMarshal(t *testing.T) {
	root, err := newTestCompiler().CompileQuery(context.Background(), `+name:ian* -status:closed title:(a OR b)`)
	require.NoError(t, err)

	body, err := Marshal(root)
	require.NoError(t, err)
	assert.JSONEq(t, `{"bool":{
		"must":{"match_all":{}},
		"filter":{"bool":{
			"must":{"match_phrase_prefix":{"name":{"query":"ian"}}},
			"must_not":{"match":{"status":{"query":"closed"}}},
			"should":{"bool":{"minimum_should_match":"1","should":[
				{"match":{"title":{"query":"a"}}},
				{"match":{"title":{"query":"b"}}}
			]}}
		}}
	}}`, string(body))
}

func TestDispatch(t *testing.T) {
	d := NewDispatcher(newTestCompiler())
	ctx := context.Background()

	testCases := map[string]struct {
		request string
		raw     bool
		body    string
	}{
		"raw_json": {
			request: `{"query":{"match_all":{}}}`,
			raw:     true,
			body:    `{"query":{"match_all":{}}}`,
		},
		"raw_json_with_spaces": {
			request: "  {\"size\": 0}\n",
			raw:     true,
			body:    `{"size":0}`,
		},
		"query_string": {
			request: `name:ian`,
			body:    `{"query":{"bool":{"filter":{"match":{"name":{"query":"ian"}}},"must":{"match_all":{}}}}}`,
		},
		"range": {
			request: `a:[1 TO 10}`,
			body:    `{"query":{"bool":{"filter":{"range":{"a":{"from":1,"include_lower":true,"include_upper":false,"to":10}}},"must":{"match_all":{}}}}}`,
		},
	}

	for name, c := range testCases {
		t.Run(name, func(t *testing.T) {
			req, err := d.Dispatch(ctx, c.request)
			require.NoError(t, err)
			assert.Equal(t, c.raw, req.Raw)
			assert.JSONEq(t, c.body, string(req.Body))
		})
	}
}

func TestDispatchError(t *testing.T) {
	d := NewDispatcher(newTestCompiler())
	ctx := context.Background()

	req, err := d.Dispatch(ctx, `{not json`)
	assert.Nil(t, req)
	var pe *querystring.ParseError
	require.ErrorAs(t, err, &pe)

	_, err = d.Dispatch(ctx, `ts:[banana split TO now]`)
	var re *compiler.RangeError
	require.ErrorAs(t, err, &re)
}

func TestDispatchDefaultCompiler(t *testing.T) {
	req, err := NewDispatcher(nil).Dispatch(context.Background(), `a:1`)
	require.NoError(t, err)
	assert.False(t, req.Raw)
	assert.JSONEq(t, `{"query":{"bool":{"filter":{"match":{"a":{"query":"1"}}},"must":{"match_all":{}}}}}`, string(req.Body))
}

func TestIsRawQuery(t *testing.T) {
	assert.True(t, IsRawQuery(`{}`))
	assert.False(t, IsRawQuery(`[1, 2]`))
	assert.False(t, IsRawQuery(`{a TO b}`))
	assert.False(t, IsRawQuery(`name:ian`))
}
