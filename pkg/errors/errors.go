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

// Package errors 提供统一错误辅助：哨兵错误、Wrap，以及带分类的 Error（远程调用失败时区分网络/响应格式等）
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// 常用哨兵错误
var (
	ErrNotFound   = errors.New("not found")
	ErrInvalidArg = errors.New("invalid argument")
)

// Kind 错误类别
type Kind string

const (
	KindNetwork   Kind = "network"   // 连接失败、DNS、连接被重置等
	KindTimeout   Kind = "timeout"   // 超时（含 ctx deadline）
	KindCanceled  Kind = "canceled"  // 调用方取消
	KindStatus    Kind = "status"    // 远端返回非 2xx
	KindMalformed Kind = "malformed" // 响应无法解析
	KindEmpty     Kind = "empty"     // 响应中没有可用结果（如 choices 为空）
	KindUnknown   Kind = "unknown"
)

// Error 带类别的错误；Message 面向用户展示，Err 保留原始错误链
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New 创建指定类别的错误
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithKind 以指定类别包装 err；err 为 nil 时返回 nil
func WithKind(kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: err.Error(), Err: err}
}

// KindOf 返回 err 链上第一个 *Error 的类别；没有则按 ctx/net 错误推断
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Classify(err).Kind
}

// Classify 将任意错误归类为 *Error；已是 *Error 时原样返回
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	switch {
	case errors.Is(err, context.Canceled):
		return WithKind(KindCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return WithKind(KindTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return WithKind(KindTimeout, err)
		}
		return WithKind(KindNetwork, err)
	}
	return WithKind(KindUnknown, err)
}

// Wrap 包装错误并附加消息
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf 带格式的 Wrap
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is / As 转发标准库，避免调用方同时导入两个 errors 包
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target interface{}) bool { return errors.As(err, target) }
