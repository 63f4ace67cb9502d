// Tencent is pleased to support the open source community by making
// 蓝鲸智云 - 监控平台 (BlueKing - Monitor) available.
// Copyright (C) 2022 THL A29 Limited, a Tencent company. All rights reserved.
// Licensed under the MIT License (the "License"); you may not use this file except in compliance with the License.
// You may obtain a copy of the License at http://opensource.org/licenses/MIT
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	var got []string
	pre := func() { got = append(got, EventSignalConfigPreParse) }
	post := func() { got = append(got, EventSignalConfigPostParse) }

	require.NoError(t, EventBus.Subscribe(EventSignalConfigPreParse, pre))
	require.NoError(t, EventBus.Subscribe(EventSignalConfigPostParse, post))
	defer func() {
		_ = EventBus.Unsubscribe(EventSignalConfigPreParse, pre)
		_ = EventBus.Unsubscribe(EventSignalConfigPostParse, post)
	}()

	EventBus.Publish(EventSignalConfigPreParse)
	EventBus.Publish(EventSignalConfigPostParse)
	assert.Equal(t, []string{EventSignalConfigPreParse, EventSignalConfigPostParse}, got)
}
