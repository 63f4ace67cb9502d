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
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
)

type RegisterHandlers struct {
	ctx     context.Context
	g       *gin.RouterGroup
	entries []HandlerEntry
}

type HandlerEntry struct {
	Method      string
	HandlerPath string
	HandlerFunc []gin.HandlerFunc
}

func (r *RegisterHandlers) register(method, handlerPath string, handler ...gin.HandlerFunc) {
	r.entries = append(r.entries, HandlerEntry{
		Method:      method,
		HandlerPath: handlerPath,
		HandlerFunc: handler,
	})
}

func (r *RegisterHandlers) do() {
	for _, entry := range r.entries {
		if len(entry.HandlerFunc) == 0 || entry.HandlerPath == "" {
			continue
		}

		switch entry.Method {
		case http.MethodGet:
			r.g.GET(entry.HandlerPath, entry.HandlerFunc...)
		case http.MethodPost:
			r.g.POST(entry.HandlerPath, entry.HandlerFunc...)
		default:
			r.g.Handle(entry.Method, entry.HandlerPath, entry.HandlerFunc...)
		}
	}
}

func getRegisterHandlers(ctx context.Context, g *gin.RouterGroup) *RegisterHandlers {
	return &RegisterHandlers{
		ctx: ctx,
		g:   g,
	}
}

func registerDefaultHandlers(ctx context.Context, g *gin.RouterGroup) {
	registerHandler := getRegisterHandlers(ctx, g)

	// query/compile
	registerHandler.register(http.MethodPost, viper.GetString(CompilePathConfigPath), HandlerCompile)

	// query/compile/batch
	registerHandler.register(http.MethodPost, viper.GetString(CompileBatchPathConfigPath), HandlerCompileBatch)

	// query/dispatch
	registerHandler.register(http.MethodPost, viper.GetString(DispatchPathConfigPath), HandlerDispatch)

	registerHandler.do()
}

func registerOtherHandlers(ctx context.Context, g *gin.RouterGroup) {
	registerHandler := getRegisterHandlers(ctx, g)

	// register prometheus metrics
	if viper.GetBool(EnablePrometheusConfigPath) {
		registerHandler.register(http.MethodGet, viper.GetString(PrometheusPathConfigPath), gin.WrapH(
			promhttp.HandlerFor(
				prometheus.DefaultGatherer,
				promhttp.HandlerOpts{
					EnableOpenMetrics: true,
				},
			),
		))
	}

	registerHandler.do()
}
