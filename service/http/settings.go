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
	"time"
)

const (
	IPAddressConfigPath    = "http.address"
	PortConfigPath         = "http.port"
	WriteTimeOutConfigPath = "http.write_timeout"
	ReadTimeOutConfigPath  = "http.read_timeout"

	// 服务配置
	EnablePrometheusConfigPath = "http.prometheus.enable"
	PrometheusPathConfigPath   = "http.prometheus.path"

	CompilePathConfigPath      = "http.path.compile"
	CompileBatchPathConfigPath = "http.path.compile_batch"
	DispatchPathConfigPath     = "http.path.dispatch"

	// 批量编译
	BatchMaxRoutingConfigPath = "http.batch.max_routing"
	BatchMaxQueriesConfigPath = "http.batch.max_queries"
)

var (
	IPAddress string
	Port      int

	WriteTimeout time.Duration
	ReadTimeout  time.Duration

	BatchMaxRouting int
	BatchMaxQueries int
)
