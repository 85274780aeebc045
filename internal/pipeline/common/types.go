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

package common

import (
	"context"
	"time"
)

// PipelineContext 单次分析的执行上下文
type PipelineContext struct {
	Context   context.Context
	ID        string
	StartTime time.Time
	Stage     string
}

// NewPipelineContext 创建新的 Pipeline 上下文；id 通常为请求 ID
func NewPipelineContext(ctx context.Context, id string) *PipelineContext {
	return &PipelineContext{
		Context:   ctx,
		ID:        id,
		StartTime: time.Now(),
		Stage:     StageDecode,
	}
}

// Enter 进入下一阶段
func (p *PipelineContext) Enter(stage string) {
	p.Stage = stage
}

// Elapsed 自开始以来的耗时
func (p *PipelineContext) Elapsed() time.Duration {
	return time.Since(p.StartTime)
}

type requestIDKey struct{}

// WithRequestID 将请求 ID 放入 ctx
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID 从 ctx 读取请求 ID，没有时返回空串
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
