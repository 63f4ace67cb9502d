// Tencent is pleased to support the open source community by making
// 蓝鲸智云 - 监控平台 (BlueKing - Monitor) available.
// Copyright (C) 2022 THL A29 Limited, a Tencent company. All rights reserved.
// Licensed under the MIT License (the "License"); you may not use this file except in compliance with the License.
// You may obtain a copy of the License at http://opensource.org/licenses/MIT
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package resolver

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/jinzhu/now"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/pkg/errors"

	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/filter"
)

// OpenBound 开区间边界
const OpenBound = "*"

// ErrUnparseable 范围边界既不是数字也不是可识别的时间
var ErrUnparseable = errors.New("unparseable range value")

var (
	spaceRe  = regexp.MustCompile(`\s+`)
	anchorRe = regexp.MustCompile(`\b(midnight|noon)\b`)

	// when 的英文规则不认识这两个说法，先换成天数偏移
	dayShifts = []struct {
		phrase string
		days   int
	}{
		{phrase: "day after tomorrow", days: 2},
		{phrase: "day before yesterday", days: -2},
	}
)

type Option func(*Resolver)

// WithLocation 解析不带时区的时间时使用的时区
func WithLocation(loc *time.Location) Option {
	return func(r *Resolver) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// WithClock 替换默认时钟，测试用
func WithClock(clock func() time.Time) Option {
	return func(r *Resolver) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// Resolver 把范围边界文本解析成整数、浮点数或时间点。
// 构造后无可变状态，可并发使用。
type Resolver struct {
	loc   *time.Location
	clock func() time.Time
	when  *when.Parser
}

func New(opts ...Option) *Resolver {
	r := &Resolver{
		loc:   time.Local,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.when = when.New(nil)
	r.when.Add(en.All...)
	r.when.Add(common.All...)
	return r
}

func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Now 当前时间，调用方没有指定 now 时使用
func (r *Resolver) Now() time.Time {
	return r.clock().In(r.loc)
}

// Resolve 解析单个边界，依次尝试整数、浮点数、绝对时间、相对时间。
// 返回 nil, nil 表示开区间。
func (r *Resolver) Resolve(raw string, now time.Time) (*filter.Value, error) {
	text := strings.TrimSpace(raw)
	if text == OpenBound {
		return nil, nil
	}
	if text == "" {
		return nil, errors.Wrap(ErrUnparseable, "empty value")
	}

	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return filter.IntegerValue(i), nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return filter.FloatValue(f), nil
	}
	if t, err := dateparse.ParseIn(text, r.loc); err == nil && t.Year() != 0 {
		return filter.InstantValue(t), nil
	}
	if t, ok := r.natural(text, now.In(r.loc)); ok {
		return filter.InstantValue(t), nil
	}

	return nil, errors.Wrapf(ErrUnparseable, "%q", raw)
}

func (r *Resolver) natural(text string, base time.Time) (time.Time, bool) {
	text = spaceRe.ReplaceAllString(strings.ToLower(text), " ")

	anchor := anchorRe.FindString(text)
	if anchor != "" {
		text = anchorRe.ReplaceAllString(text, "")
	}

	shifted := false
	for _, s := range dayShifts {
		if strings.Contains(text, s.phrase) {
			text = strings.Replace(text, s.phrase, "", 1)
			base = base.AddDate(0, 0, s.days)
			shifted = true
			break
		}
	}

	text = strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
	t := base
	switch {
	case text == "" || text == "at":
		if anchor == "" && !shifted {
			return time.Time{}, false
		}
	default:
		res, err := r.when.Parse(text, base)
		if err != nil || res == nil || !covers(text, res) {
			return time.Time{}, false
		}
		t = res.Time
	}

	switch anchor {
	case "midnight":
		t = now.With(t).BeginningOfDay()
	case "noon":
		t = now.With(t).BeginningOfDay().Add(12 * time.Hour)
	}
	return t, true
}

// covers 匹配结果必须覆盖整段文本，剩余部分只允许空白、逗号、句点和 at
func covers(text string, res *when.Result) bool {
	idx := res.Index
	if idx < 0 || idx+len(res.Text) > len(text) || text[idx:idx+len(res.Text)] != res.Text {
		if idx = strings.Index(text, res.Text); idx < 0 || res.Text == "" {
			return false
		}
	}

	rest := text[:idx] + " " + text[idx+len(res.Text):]
	for _, word := range strings.FieldsFunc(rest, func(c rune) bool {
		return c == ' ' || c == ',' || c == '.'
	}) {
		if word != "at" {
			return false
		}
	}
	return true
}
