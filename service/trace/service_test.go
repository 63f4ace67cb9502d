// Tencent is pleased to support the open source community by making
// 蓝鲸智云 - 监控平台 (BlueKing - Monitor) available.
// Copyright (C) 2022 THL A29 Limited, a Tencent company. All rights reserved.
// Licensed under the MIT License (the "License"); you may not use this file except in compliance with the License.
// You may obtain a copy of the License at http://opensource.org/licenses/MIT
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package trace

import (
	"context"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/eventbus"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/log"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/trace"
)

func reload(t *testing.T, settings map[string]any) {
	t.Helper()
	viper.Reset()
	eventbus.EventBus.Publish(eventbus.EventSignalConfigPreParse)
	for k, v := range settings {
		viper.Set(k, v)
	}
	eventbus.EventBus.Publish(eventbus.EventSignalConfigPostParse)
}

func TestServiceDisabled(t *testing.T) {
	log.InitTestLogger()
	reload(t, nil)

	assert.False(t, Enable)
	assert.Equal(t, trace.ServiceName, ServiceName)
	assert.Equal(t, "127.0.0.1:4318", endpoint())

	s := &Service{}
	s.Start(context.Background())
	assert.Nil(t, s.tracerProvider)
	s.Close()
	s.Wait()
}

func TestServiceLifecycle(t *testing.T) {
	log.InitTestLogger()
	ctx := context.Background()

	testCases := map[string]struct {
		otlpType string
		started  bool
	}{
		"http": {
			otlpType: "http",
			started:  true,
		},
		"grpc": {
			otlpType: "grpc",
			started:  true,
		},
		"unknown": {
			otlpType: "kafka",
			started:  false,
		},
	}

	for name, c := range testCases {
		t.Run(name, func(t *testing.T) {
			reload(t, map[string]any{
				EnableConfigPath:   true,
				OtlpTypeConfigPath: c.otlpType,
				OtlpPortConfigPath: "1",
			})

			s := &Service{}
			s.Start(ctx)
			assert.Equal(t, c.started, s.tracerProvider != nil)

			s.Reload(ctx)
			assert.Equal(t, c.started, s.tracerProvider != nil)

			s.Close()
			s.Wait()
			assert.Nil(t, s.tracerProvider)

			// 重复关闭不能让 wg 变成负数
			s.Close()
			s.Wait()
		})
	}
}
