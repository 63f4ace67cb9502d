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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValue(t *testing.T) {
	instant := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	testCases := map[string]struct {
		v *Value
		i interface{}
		s string
	}{
		"open": {
			v: nil,
			i: nil,
			s: "*",
		},
		"integer": {
			v: IntegerValue(-5),
			i: int64(-5),
			s: "-5",
		},
		"float": {
			v: FloatValue(2.5),
			i: 2.5,
			s: "2.5",
		},
		"instant": {
			v: InstantValue(instant),
			i: "2024-01-02T03:04:05Z",
			s: "2024-01-02T03:04:05Z",
		},
		"instant_sub_second": {
			v: InstantValue(instant.Add(123 * time.Millisecond)),
			i: "2024-01-02T03:04:05.123Z",
			s: "2024-01-02T03:04:05.123Z",
		},
	}

	for name, c := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, c.i, c.v.Interface())
			assert.Equal(t, c.s, c.v.String())
		})
	}
}

func TestNodeString(t *testing.T) {
	slop := 2
	tree := &MatchAll{Filter: &Bool{
		Must: []Node{&Phrase{Field: "name", Text: "ian", Mode: ModePhrasePrefix}},
		Should: []Node{
			&Wildcard{Field: "title", Pattern: "*mac*", Boost: 1},
			&Or{Filters: []Node{&Term{Field: "status", Value: "open"}, &Ids{Values: []string{"1", "2"}}}},
		},
		MustNot: []Node{&Range{Field: "age", Lower: IntegerValue(1), InclLower: true}},
	}}
	assert.Equal(t,
		`match_all(filter=bool(must=[phrase_prefix(name="ian")], `+
			`should=[wildcard(title="*mac*"^1), or(term(status="open"), ids(["1" "2"]))], `+
			`must_not=[range(age=[1 TO *})]))`,
		tree.String())

	p := &Phrase{Field: "_all", Text: "hello world", Mode: ModePhrase, Proximity: &slop}
	assert.Equal(t, `phrase(_all="hello world" slop=2)`, p.String())
	assert.Equal(t, "mode(9)", PhraseMode(9).String())
}
