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
	"math"

	"github.com/bytedance/sonic"
	elastic "github.com/olivere/elastic/v7"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/filter"
)

const (
	MinimumShouldMatch = "1"
	FuzzinessAuto      = "AUTO"
	// MaxEditDistance es 模糊匹配最多支持 2 个编辑距离
	MaxEditDistance = 2
)

// AllFields _all 在 es7 里已经废弃，用通配字段列表代替
var AllFields = []string{"*", "__*"}

var sonicAPI = sonic.Config{
	EscapeHTML:       true,
	SortMapKeys:      true,
	CompactMarshaler: true,
}.Froze()

// ToQuery 把过滤树转换成 es 查询
func ToQuery(node filter.Node) (elastic.Query, error) {
	if node == nil {
		return nil, errors.New("empty filter node")
	}

	switch n := node.(type) {
	case *filter.MatchAll:
		inner, err := ToQuery(n.Filter)
		if err != nil {
			return nil, err
		}
		return elastic.NewBoolQuery().Must(elastic.NewMatchAllQuery()).Filter(inner), nil
	case *filter.Term:
		return elastic.NewTermQuery(n.Field, n.Value), nil
	case *filter.Terms:
		values := make([]interface{}, 0, len(n.Values))
		for _, v := range n.Values {
			values = append(values, v)
		}
		return elastic.NewTermsQuery(n.Field, values...), nil
	case *filter.Ids:
		return elastic.NewIdsQuery().Ids(n.Values...), nil
	case *filter.Prefix:
		if n.Field == filter.AllField {
			return queryString(n.Prefix+"*", n.Boost), nil
		}
		return elastic.NewPrefixQuery(n.Field, n.Prefix).Boost(n.Boost), nil
	case *filter.Wildcard:
		if n.Field == filter.AllField {
			return queryString(n.Pattern, n.Boost), nil
		}
		return elastic.NewWildcardQuery(n.Field, n.Pattern).Boost(n.Boost), nil
	case *filter.Phrase:
		return phraseQuery(n), nil
	case *filter.Range:
		return elastic.NewRangeQuery(n.Field).
			From(n.Lower.Interface()).
			To(n.Upper.Interface()).
			IncludeLower(n.InclLower).
			IncludeUpper(n.InclUpper), nil
	case *filter.And:
		q := elastic.NewBoolQuery()
		for _, f := range n.Filters {
			sub, err := ToQuery(f)
			if err != nil {
				return nil, err
			}
			q.Filter(sub)
		}
		return q, nil
	case *filter.Or:
		q := elastic.NewBoolQuery().MinimumShouldMatch(MinimumShouldMatch)
		for _, f := range n.Filters {
			sub, err := ToQuery(f)
			if err != nil {
				return nil, err
			}
			q.Should(sub)
		}
		return q, nil
	case *filter.Not:
		inner, err := ToQuery(n.Filter)
		if err != nil {
			return nil, err
		}
		return elastic.NewBoolQuery().MustNot(inner), nil
	case *filter.Bool:
		return boolQuery(n)
	default:
		return nil, errors.Errorf("unsupported filter node %T", node)
	}
}

func boolQuery(n *filter.Bool) (elastic.Query, error) {
	q := elastic.NewBoolQuery()
	for _, f := range n.Must {
		sub, err := ToQuery(f)
		if err != nil {
			return nil, err
		}
		q.Must(sub)
	}
	for _, f := range n.Should {
		sub, err := ToQuery(f)
		if err != nil {
			return nil, err
		}
		q.Should(sub)
	}
	for _, f := range n.MustNot {
		sub, err := ToQuery(f)
		if err != nil {
			return nil, err
		}
		q.MustNot(sub)
	}
	return q, nil
}

func queryString(q string, boost float64) elastic.Query {
	qs := elastic.NewQueryStringQuery(q).AnalyzeWildcard(true).Lenient(true).Boost(boost)
	for _, f := range AllFields {
		qs.Field(f)
	}
	return qs
}

// fuzziness 解析出来的模糊度小于 1 时交给 es 自动判断，否则作为编辑距离
func fuzziness(f float64) string {
	if f < 1 {
		return FuzzinessAuto
	}
	return cast.ToString(int(math.Min(f, MaxEditDistance)))
}

func phraseQuery(n *filter.Phrase) elastic.Query {
	if n.Field == filter.AllField {
		q := elastic.NewMultiMatchQuery(n.Text, AllFields...).Lenient(true)
		switch n.Mode {
		case filter.ModePhrase:
			q.Type("phrase")
			if n.Proximity != nil {
				q.Slop(*n.Proximity)
			}
		case filter.ModePhrasePrefix:
			q.Type("phrase_prefix")
		default:
			if n.Fuzziness != nil {
				q.Fuzziness(fuzziness(*n.Fuzziness))
			}
		}
		return q
	}

	switch n.Mode {
	case filter.ModePhrase:
		q := elastic.NewMatchPhraseQuery(n.Field, n.Text)
		if n.Proximity != nil {
			q.Slop(*n.Proximity)
		}
		return q
	case filter.ModePhrasePrefix:
		return elastic.NewMatchPhrasePrefixQuery(n.Field, n.Text)
	default:
		q := elastic.NewMatchQuery(n.Field, n.Text)
		if n.Fuzziness != nil {
			q.Fuzziness(fuzziness(*n.Fuzziness))
		}
		return q
	}
}

// Source 转换成 es 查询的 map 结构
func Source(node filter.Node) (interface{}, error) {
	q, err := ToQuery(node)
	if err != nil {
		return nil, err
	}
	return q.Source()
}

// Marshal 转换成 es 查询 json
func Marshal(node filter.Node) ([]byte, error) {
	source, err := Source(node)
	if err != nil {
		return nil, err
	}
	body, err := sonicAPI.Marshal(source)
	if err != nil {
		return nil, errors.Wrap(err, "marshal es query")
	}
	return body, nil
}
