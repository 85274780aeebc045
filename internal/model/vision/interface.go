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

package vision

import (
	"context"
	"image"
)

// DefaultStubCaption stub 描述器默认返回的描述
const DefaultStubCaption = "a photograph"

// Client 图像描述模型接口；实现须可并发调用
type Client interface {
	// Describe 为已解码的 RGB 图像生成一句英文描述
	Describe(ctx context.Context, img image.Image) (string, error)
	// Name 返回模型名称
	Name() string
}

// Loader 需要在启动时加载/校验模型的 Client 额外实现此接口
type Loader interface {
	Load(ctx context.Context) error
}

// StubClient 返回固定描述，用于本地开发与测试
type StubClient struct {
	Caption string
}

// NewStubClient caption 为空时使用 DefaultStubCaption
func NewStubClient(caption string) *StubClient {
	if caption == "" {
		caption = DefaultStubCaption
	}
	return &StubClient{Caption: caption}
}

// Describe 忽略图像内容
func (s *StubClient) Describe(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.Caption, nil
}

func (s *StubClient) Name() string {
	return "stub"
}
