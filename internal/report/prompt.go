// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package report 由图像描述生成灾情报告：固定提示词、一次 chat completion、去除 ** 标记
package report

import "strings"

const captionPlaceholder = "{caption}"

// promptTemplate 字段行末尾的两个空格是 Markdown 换行，需保留
const promptTemplate = "\n📋 Disaster Report:\n" +
	"You are a disaster response analyst. Based on the following image description, extract structured disaster information.\n" +
	"\n" +
	"Image Caption: \"{caption}\"\n" +
	"\n" +
	"Return the following:\n" +
	"\n" +
	"Disaster Type  \n" +
	"Human Presence  \n" +
	"Animal Presence  \n" +
	"Casualties or Injured  \n" +
	"Environmental Conditions (CO2, O2, smoke, water, fire, debris, vegetation)  \n" +
	"Infrastructure Damage  \n" +
	"Visibility  \n" +
	"\n" +
	"End with a 3-line summary. Use \"No Info\" if uncertain.\n"

// Fields 报告要求的字段，顺序与提示词一致
var Fields = []string{
	"Disaster Type",
	"Human Presence",
	"Animal Presence",
	"Casualties or Injured",
	"Environmental Conditions (CO2, O2, smoke, water, fire, debris, vegetation)",
	"Infrastructure Damage",
	"Visibility",
}

// BuildPrompt 将描述原样插入模板，不做转义
func BuildPrompt(caption string) string {
	return strings.Replace(promptTemplate, captionPlaceholder, caption, 1)
}
