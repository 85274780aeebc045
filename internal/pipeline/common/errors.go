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
	"errors"
	"fmt"
)

// 分析流水线阶段
const (
	StageDecode  = "decode"
	StageCaption = "caption"
	StageReport  = "report"
)

// 定义 Pipeline 相关错误
var (
	ErrInvalidInput  = errors.New("无效的输入")
	ErrDecodeFailed  = errors.New("图像解码失败")
	ErrCaptionFailed = errors.New("图像描述失败")
)

// PipelineError Pipeline 错误结构体
type PipelineError struct {
	Stage   string
	Message string
	Err     error
}

// Error 实现 error 接口
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[Pipeline] %s 阶段错误: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("[Pipeline] %s 阶段错误: %s", e.Stage, e.Message)
}

// Unwrap 实现 errors.Unwrap 接口
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrDecodeFailed) 等按阶段匹配
func (e *PipelineError) Is(target error) bool {
	switch target {
	case ErrDecodeFailed:
		return e.Stage == StageDecode
	case ErrCaptionFailed:
		return e.Stage == StageCaption
	}
	return false
}

// NewPipelineError 创建新的 Pipeline 错误
func NewPipelineError(stage string, message string, err error) *PipelineError {
	return &PipelineError{
		Stage:   stage,
		Message: message,
		Err:     err,
	}
}

// GetPipelineError 获取 Pipeline 错误
func GetPipelineError(err error) (*PipelineError, bool) {
	var pipelineErr *PipelineError
	if errors.As(err, &pipelineErr) {
		return pipelineErr, true
	}
	return nil, false
}

// ValidationError 请求字段校验错误
type ValidationError struct {
	Location []string // 如 body, file
	Type     string   // 如 missing
	Message  string
}

// Error 实现 error 接口
func (e *ValidationError) Error() string {
	return fmt.Sprintf("验证错误: %v: %s", e.Location, e.Message)
}

// NewMissingFieldError 必填字段缺失
func NewMissingFieldError(location ...string) *ValidationError {
	return &ValidationError{
		Location: location,
		Type:     "missing",
		Message:  "Field required",
	}
}

// GetValidationError 获取验证错误
func GetValidationError(err error) (*ValidationError, bool) {
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr, true
	}
	return nil, false
}
