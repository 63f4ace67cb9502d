// Tencent is pleased to support the open source community by making
// 蓝鲸智云 - 监控平台 (BlueKing - Monitor) available.
// Copyright (C) 2022 THL A29 Limited, a Tencent company. All rights reserved.
// Licensed under the MIT License (the "License"); you may not use this file except in compliance with the License.
// You may obtain a copy of the License at http://opensource.org/licenses/MIT
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package metric

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCompileCountInc(t *testing.T) {
	ctx := context.Background()
	before := testutil.ToFloat64(compileCount.WithLabelValues(StatusFailed, ErrorSyntax))

	CompileCountInc(ctx, StatusFailed, ErrorSyntax)
	CompileCountInc(ctx, StatusFailed, ErrorSyntax)

	assert.Equal(t, before+2, testutil.ToFloat64(compileCount.WithLabelValues(StatusFailed, ErrorSyntax)))
}

func TestLabelMismatch(t *testing.T) {
	ctx := context.Background()
	// 标签数量不对只打日志，不 panic
	assert.NotPanics(t, func() {
		CompileCountInc(ctx, StatusSuccess)
		RequestSecond(ctx, time.Millisecond, "/a", "/b")
	})
}

func TestRequestSecond(t *testing.T) {
	ctx := context.Background()
	RequestSecond(ctx, 10*time.Millisecond, "/query/compile")
	assert.Equal(t, 1, testutil.CollectAndCount(requestHandleSecondHistogram, "nlquery_request_handle_seconds"))
}
