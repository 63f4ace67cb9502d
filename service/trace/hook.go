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
	"fmt"

	"github.com/spf13/viper"

	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/eventbus"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/log"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/trace"
)

// setDefaultConfig
func setDefaultConfig() {
	viper.SetDefault(EnableConfigPath, false)
	viper.SetDefault(ServiceNameConfigPath, trace.ServiceName)
	viper.SetDefault(OtlpTypeConfigPath, "http")
	viper.SetDefault(OtlpHostConfigPath, "127.0.0.1")
	viper.SetDefault(OtlpPortConfigPath, "4318")
	viper.SetDefault(OtlpTokenConfigPath, "")
}

// LoadConfig
func LoadConfig() {
	Enable = viper.GetBool(EnableConfigPath)
	ServiceName = viper.GetString(ServiceNameConfigPath)
	OtlpType = viper.GetString(OtlpTypeConfigPath)
	otlpHost = viper.GetString(OtlpHostConfigPath)
	otlpPort = viper.GetString(OtlpPortConfigPath)
	otlpToken = viper.GetString(OtlpTokenConfigPath)

	log.Debugf(context.TODO(), "reload success new config: enable:%t,otlp:%s://%s:%s", Enable, OtlpType, otlpHost, otlpPort)
}

// init
func init() {
	if err := eventbus.EventBus.Subscribe(eventbus.EventSignalConfigPreParse, setDefaultConfig); err != nil {
		fmt.Printf(
			"failed to subscribe event->[%s] for trace module for default config, maybe trace module won't working.",
			eventbus.EventSignalConfigPreParse,
		)
	}

	if err := eventbus.EventBus.Subscribe(eventbus.EventSignalConfigPostParse, LoadConfig); err != nil {
		fmt.Printf(
			"failed to subscribe event->[%s] for trace module for new config, maybe trace module won't working.",
			eventbus.EventSignalConfigPostParse,
		)
	}
}
