// Tencent is pleased to support the open source community by making
// 蓝鲸智云 - 监控平台 (BlueKing - Monitor) available.
// Copyright (C) 2022 THL A29 Limited, a Tencent company. All rights reserved.
// Licensed under the MIT License (the "License"); you may not use this file except in compliance with the License.
// You may obtain a copy of the License at http://opensource.org/licenses/MIT
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/eventbus"
)

func TestInitConfig(t *testing.T) {
	defer viper.Reset()

	dir := t.TempDir()
	path := filepath.Join(dir, "nlquery.yaml")
	require.NoError(t, os.WriteFile(path, []byte("compile:\n  default_field: message\n"), 0o644))

	var pre, post int
	preHook := func() { pre++ }
	postHook := func() { post++ }
	require.NoError(t, eventbus.EventBus.Subscribe(eventbus.EventSignalConfigPreParse, preHook))
	require.NoError(t, eventbus.EventBus.Subscribe(eventbus.EventSignalConfigPostParse, postHook))
	defer func() {
		_ = eventbus.EventBus.Unsubscribe(eventbus.EventSignalConfigPreParse, preHook)
		_ = eventbus.EventBus.Unsubscribe(eventbus.EventSignalConfigPostParse, postHook)
	}()

	CustomConfigFilePath = path
	defer func() { CustomConfigFilePath = "" }()
	InitConfig()

	assert.Equal(t, 1, pre)
	assert.Equal(t, 1, post)
	assert.Equal(t, "message", viper.GetString("compile.default_field"))

	// 环境变量覆盖，`.` 替换为 `_`
	t.Setenv("NLQUERY_COMPILE_MAX_DEPTH", "12")
	assert.Equal(t, 12, viper.GetInt("compile.max_depth"))
}
