// Tencent is pleased to support the open source community by making
// 蓝鲸智云 - 监控平台 (BlueKing - Monitor) available.
// Copyright (C) 2022 THL A29 Limited, a Tencent company. All rights reserved.
// Licensed under the MIT License (the "License"); you may not use this file except in compliance with the License.
// You may obtain a copy of the License at http://opensource.org/licenses/MIT
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package compiler

import (
	"context"
	"fmt"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/eventbus"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/filter"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/internal/querystring"
	"github.com/TencentBlueKing/bkmonitor-datalink/pkg/nlquery/log"
)

// setDefaultConfig
func setDefaultConfig() {
	viper.SetDefault(DefaultFieldConfigPath, filter.AllField)
	viper.SetDefault(PrefixModeConfigPath, "phrase_prefix")
	viper.SetDefault(MaxDepthConfigPath, querystring.DefaultMaxDepth)
	viper.SetDefault(KeywordFieldsConfigPath, []string{})
	viper.SetDefault(FieldAliasConfigPath, map[string]string{})
	viper.SetDefault(TimezoneConfigPath, "Local")
}

// LoadConfig
func LoadConfig() {
	DefaultField = viper.GetString(DefaultFieldConfigPath)
	PrefixMode = viper.GetString(PrefixModeConfigPath)
	MaxDepth = viper.GetInt(MaxDepthConfigPath)
	// 环境变量传入时是空格分隔的字符串
	KeywordFields = cast.ToStringSlice(viper.Get(KeywordFieldsConfigPath))
	FieldAlias = viper.GetStringMapString(FieldAliasConfigPath)
	Timezone = viper.GetString(TimezoneConfigPath)

	log.Debugf(context.TODO(),
		"reload success new config: default_field:%s,prefix_mode:%s,max_depth:%d,keyword_fields:%v,timezone:%s",
		DefaultField, PrefixMode, MaxDepth, KeywordFields, Timezone,
	)
}

// init
func init() {
	if err := eventbus.EventBus.Subscribe(eventbus.EventSignalConfigPreParse, setDefaultConfig); err != nil {
		fmt.Printf(
			"failed to subscribe event->[%s] for compiler module for default config, maybe compiler module won't working.",
			eventbus.EventSignalConfigPreParse,
		)
	}

	if err := eventbus.EventBus.Subscribe(eventbus.EventSignalConfigPostParse, LoadConfig); err != nil {
		fmt.Printf(
			"failed to subscribe event->[%s] for compiler module for new config, maybe compiler module won't working.",
			eventbus.EventSignalConfigPostParse,
		)
	}
}
