// Tencent is pleased to support the open source community by making
// 蓝鲸智云 - 监控平台 (BlueKing - Monitor) available.
// Copyright (C) 2022 THL A29 Limited, a Tencent company. All rights reserved.
// Licensed under the MIT License (the "License"); you may not use this file except in compliance with the License.
// You may obtain a copy of the License at http://opensource.org/licenses/MIT
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/gops/agent"
	"github.com/spf13/cobra"

	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/config"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/define"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/log"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/service/compiler"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/service/http"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/service/trace"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "start nlquery http service",
	Long:  `start nlquery http service, SIGUSR1 reloads config, SIGTERM or SIGINT stops it`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			serviceList     []define.Service
			ctx, cancelFunc = context.WithCancel(context.Background())
			sc              = make(chan os.Signal, 1)
		)
		config.InitConfig()

		// 启动 gops
		if err := agent.Listen(agent.Options{}); err != nil {
			log.Warnf(ctx, err.Error())
		}

		// 编译器要先于 http 服务加载
		serviceList = []define.Service{
			&trace.Service{},
			&compiler.Service{},
			&http.Service{},
		}

		// 注册信号（重载配置文件 & 停止）
		signal.Notify(sc, syscall.SIGUSR1, syscall.SIGTERM, syscall.SIGINT)
	LOOP:
		for {
			for _, service := range serviceList {
				service.Reload(ctx)
			}
			log.Infof(ctx, "reload done")
			switch <-sc {
			case syscall.SIGUSR1:
				// 触发配置重载动作
				config.InitConfig()
				log.Debugf(ctx, "SIGUSR1 signal got, will reload server")
			case syscall.SIGTERM, syscall.SIGINT:
				log.Debugf(ctx, "shutdown signal got, will shutdown server")
				cancelFunc()
				log.Warnf(ctx, "shutdown signal process done")
				break LOOP
			}
		}
		log.Debugf(ctx, "loop break, wait for all service exit.")
		for _, service := range serviceList {
			log.Warnf(ctx, "close service:%s", service.Type())
			service.Close()
			log.Warnf(ctx, "waiting for service:%s", service.Type())

			service.Wait()
			log.Warnf(ctx, "waiting for service:%s done", service.Type())
		}

		agent.Close()
		log.Debugf(ctx, "all service exit, server exit now.")
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
