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
	gohttp "net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/log"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/trace"
)

// Service
type Service struct {
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc

	// 全局唯一的http服务
	server *gohttp.Server
	g      *gin.Engine
}

// Type
func (s *Service) Type() string {
	return "http"
}

// Start
func (s *Service) Start(ctx context.Context) {
	s.Reload(ctx)
}

// newRouter 注册中间件和路由，中间件必须在路由之前注册
func newRouter(ctx context.Context) *gin.Engine {
	g := gin.New()

	public := g.Group("/")
	public.Use(
		gin.Recovery(),
		otelgin.Middleware(trace.ServiceName),
	)
	registerDefaultHandlers(ctx, public)

	private := g.Group("/")
	registerOtherHandlers(ctx, private)
	return g
}

// Reload
func (s *Service) Reload(ctx context.Context) {
	var err error

	// 先关闭当前的服务
	if s.server != nil {
		tempCtx, cancelFunc := context.WithTimeout(ctx, WriteTimeout)
		defer cancelFunc()
		if err = s.server.Shutdown(tempCtx); err != nil {
			log.Errorf(ctx, "failed to shutdown http server for->[%s]", err)
		}
	}

	if s.cancelFunc != nil {
		s.cancelFunc()
	}

	log.Debugf(ctx, "waiting for http service close")
	s.Wait()

	gin.SetMode(gin.ReleaseMode)
	s.g = newRouter(ctx)

	// 构造新的http服务
	s.server = &gohttp.Server{
		Addr:         strings.Join([]string{IPAddress, strconv.Itoa(Port)}, ":"),
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		Handler:      s.g,
	}

	s.wg.Add(1)
	go func(server *gohttp.Server) {
		defer s.wg.Done()
		if err := server.ListenAndServe(); err != nil && err != gohttp.ErrServerClosed {
			log.Panicf(ctx, "failed to start server for->[%s]", err)
			return
		}
	}(s.server)
	// 更新上下文控制方法
	s.ctx, s.cancelFunc = context.WithCancel(ctx)
	log.Debugf(ctx, "http service context update success.")
	// ctx 关闭时 server 也关闭
	s.wg.Add(1)
	go func(server *gohttp.Server) {
		defer s.wg.Done()
		<-s.ctx.Done()
		if err := server.Close(); err != nil {
			log.Errorf(ctx, "failed to close http server for->[%s]", err)
		}
	}(s.server)
}

// Wait
func (s *Service) Wait() {
	s.wg.Wait()
}

// Close
func (s *Service) Close() {
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
}
