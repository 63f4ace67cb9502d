// Tencent is pleased to support the open source community by making
// 蓝鲸智云 - 监控平台 (BlueKing - Monitor) available.
// Copyright (C) 2022 THL A29 Limited, a Tencent company. All rights reserved.
// Licensed under the MIT License (the "License"); you may not use this file except in compliance with the License.
// You may obtain a copy of the License at http://opensource.org/licenses/MIT
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package http

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/eventbus"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/log"
)

// setDefaultConfig
func setDefaultConfig() {
	viper.SetDefault(IPAddressConfigPath, "127.0.0.1")
	viper.SetDefault(PortConfigPath, 10215)
	viper.SetDefault(WriteTimeOutConfigPath, "30s")
	viper.SetDefault(ReadTimeOutConfigPath, "3s")

	viper.SetDefault(EnablePrometheusConfigPath, true)
	viper.SetDefault(PrometheusPathConfigPath, "/metrics")

	viper.SetDefault(CompilePathConfigPath, "/query/compile")
	viper.SetDefault(CompileBatchPathConfigPath, "/query/compile/batch")
	viper.SetDefault(DispatchPathConfigPath, "/query/dispatch")

	viper.SetDefault(BatchMaxRoutingConfigPath, 8)
	viper.SetDefault(BatchMaxQueriesConfigPath, 100)
}

// LoadConfig
func LoadConfig() {
	IPAddress = viper.GetString(IPAddressConfigPath)
	Port = viper.GetInt(PortConfigPath)
	WriteTimeout = viper.GetDuration(WriteTimeOutConfigPath)
	ReadTimeout = viper.GetDuration(ReadTimeOutConfigPath)
	BatchMaxRouting = viper.GetInt(BatchMaxRoutingConfigPath)
	BatchMaxQueries = viper.GetInt(BatchMaxQueriesConfigPath)

	log.Debugf(context.TODO(),
		"reload success new config: address:%s,port:%d,read_timeout:%s,write_timeout:%s",
		IPAddress, Port, ReadTimeout, WriteTimeout,
	)
}

// init
func init() {
	if err := eventbus.EventBus.Subscribe(eventbus.EventSignalConfigPreParse, setDefaultConfig); err != nil {
		fmt.Printf(
			"failed to subscribe event->[%s] for http module for default config, maybe http module won't working.",
			eventbus.EventSignalConfigPreParse,
		)
	}

	if err := eventbus.EventBus.Subscribe(eventbus.EventSignalConfigPostParse, LoadConfig); err != nil {
		fmt.Printf(
			"failed to subscribe event->[%s] for http module for new config, maybe http module won't working.",
			eventbus.EventSignalConfigPostParse,
		)
	}
}
