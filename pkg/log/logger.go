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

package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Logger 简单封装，供 internal 使用
type Logger struct {
	*slog.Logger

	level  *slog.LevelVar
	output io.Writer
	closer io.Closer
}

// Config 日志配置（可与 config 包对接）
type Config struct {
	Level  string `mapstructure:"level"`  // debug | info | warn | error
	Format string `mapstructure:"format"` // json | text | console
	File   string `mapstructure:"file"`   // 为空时输出到 stdout
}

// ParseLevel 解析日志级别，未知值按 info 处理
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger 根据配置创建 Logger，cfg 可为 nil 使用默认
func NewLogger(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	var (
		out    io.Writer = os.Stdout
		closer io.Closer
	)
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("打开日志文件失败: %w", err)
		}
		out, closer = f, f
	}
	return newLogger(out, cfg, closer), nil
}

// NewWithWriter 输出到指定 writer（测试用）
func NewWithWriter(w io.Writer, cfg *Config) *Logger {
	if cfg == nil {
		cfg = &Config{}
	}
	return newLogger(w, cfg, nil)
}

func newLogger(out io.Writer, cfg *Config, closer io.Closer) *Logger {
	level := &slog.LevelVar{}
	level.Set(ParseLevel(cfg.Level))

	var h slog.Handler
	switch cfg.Format {
	case "text":
		h = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	case "console":
		h = tint.NewHandler(out, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
			NoColor:    cfg.File != "",
		})
	default:
		h = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	}
	return &Logger{Logger: slog.New(h), level: level, output: out, closer: closer}
}

// Level 返回可动态调整的级别，hertz 日志与之共享
func (l *Logger) Level() *slog.LevelVar { return l.level }

// Output 返回底层输出
func (l *Logger) Output() io.Writer { return l.output }

// With 返回附加了字段的子 Logger
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), level: l.level, output: l.output}
}

// Close 关闭日志文件（如有）
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
