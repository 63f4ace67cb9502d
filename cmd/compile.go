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
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/config"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/es"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/internal/resolver"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/service/compiler"
)

var (
	compileNow      string
	compileTree     bool
	compileDispatch bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [query]",
	Short: "compile a query string and print the elasticsearch query",
	Example: `  nlquery compile 'name:ian* AND -status:closed'
  nlquery compile --tree '+a -b c'
  nlquery compile --now 2024-03-15T10:30:00Z 'ts:[midnight yesterday TO now]'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config.InitConfig()
		ctx := context.Background()

		var opts []resolver.Option
		if compileNow != "" {
			now, err := time.Parse(time.RFC3339, compileNow)
			if err != nil {
				return errors.Wrapf(err, "invalid --now %q", compileNow)
			}
			opts = append(opts, resolver.WithClock(func() time.Time { return now }))
		}
		c := compiler.NewCompiler(ctx, opts...)
		out := cmd.OutOrStdout()

		if compileDispatch {
			req, err := es.NewDispatcher(c).Dispatch(ctx, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, string(req.Body))
			return err
		}

		root, err := c.CompileQuery(ctx, args[0])
		if err != nil {
			return err
		}
		if compileTree {
			_, err = fmt.Fprintln(out, root.String())
			return err
		}

		body, err := es.Marshal(root)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(body))
		return err
	},
}

func init() {
	compileCmd.Flags().StringVar(&compileNow, "now", "", "pin the current time for relative dates (RFC3339)")
	compileCmd.Flags().BoolVar(&compileTree, "tree", false, "print the filter tree instead of the elasticsearch query")
	compileCmd.Flags().BoolVar(&compileDispatch, "dispatch", false, "pass raw elasticsearch json through and wrap compiled queries in {\"query\": ...}")
	rootCmd.AddCommand(compileCmd)
}
