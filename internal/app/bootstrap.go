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

package app

import (
	"context"
	"fmt"

	"disaster-report/internal/model/llm"
	"disaster-report/internal/model/vision"
	"disaster-report/internal/pipeline/analyze"
	"disaster-report/internal/report"
	"disaster-report/pkg/config"
	"disaster-report/pkg/errors"
	"disaster-report/pkg/log"
	"disaster-report/pkg/secrets"
)

// Bootstrap 统一初始化：配置 → 日志 → 凭据 → 图像描述模型（加载一次）→ LLM → 报告生成 → Analyzer。
// 构建完成后各字段只读。
type Bootstrap struct {
	Config    *config.Config
	Logger    *log.Logger
	Secrets   secrets.Store
	Captioner vision.Client
	LLM       llm.Client
	Reporter  *report.Generator
	Analyzer  *analyze.Analyzer
}

// NewBootstrap 根据配置创建 Bootstrap；任一步失败则返回错误，进程不应继续启动
func NewBootstrap(ctx context.Context, cfg *config.Config) (*Bootstrap, error) {
	if cfg == nil {
		return nil, errors.Wrap(errors.ErrInvalidArg, "config 为空")
	}
	logger, err := log.NewLogger(&log.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化日志failed: %w", err)
	}
	b, err := newBootstrap(ctx, cfg, logger)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	return b, nil
}

func newBootstrap(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Bootstrap, error) {
	store, err := secrets.NewStore(secrets.Config{
		Provider: cfg.Secrets.Provider,
		Vault: secrets.VaultConfig{
			Address:    cfg.Secrets.Vault.Address,
			Token:      cfg.Secrets.Vault.Token,
			PathPrefix: cfg.Secrets.Vault.PathPrefix,
		},
		K8s: secrets.K8sConfig{SecretsPath: cfg.Secrets.K8s.SecretsPath},
	})
	if err != nil {
		return nil, fmt.Errorf("初始化凭据存储failed: %w", err)
	}
	token, err := resolveToken(ctx, store, cfg.Secrets.TokenKey)
	if err != nil {
		return nil, err
	}
	if token == "" {
		logger.Warn("未找到访问令牌，远端调用将以匿名方式发出", "key", cfg.Secrets.TokenKey)
	}

	captioner, err := NewCaptionerFromConfig(ctx, cfg.Model.Caption, token)
	if err != nil {
		return nil, fmt.Errorf("初始化图像描述模型failed: %w", err)
	}
	if loader, ok := captioner.(vision.Loader); ok && cfg.Model.Caption.PreloadEnabled() {
		if err := loader.Load(ctx); err != nil {
			return nil, fmt.Errorf("加载图像描述模型 %s failed: %w", captioner.Name(), err)
		}
	}
	logger.Info("图像描述模型已就绪", "provider", cfg.Model.Caption.Provider, "model", captioner.Name())

	client, mi, err := NewLLMClientFromConfig(ctx, cfg, token)
	if err != nil {
		return nil, fmt.Errorf("初始化 LLM failed: %w", err)
	}
	reporter := report.NewGenerator(client, report.Options{
		Temperature: mi.TemperatureOrDefault(),
		MaxTokens:   mi.MaxTokens,
		Logger:      logger,
	})
	logger.Info("报告模型已就绪", "client", client.Provider(), "model", client.Model())

	return &Bootstrap{
		Config:    cfg,
		Logger:    logger,
		Secrets:   store,
		Captioner: captioner,
		LLM:       client,
		Reporter:  reporter,
		Analyzer:  analyze.New(captioner, reporter, logger),
	}, nil
}

// resolveToken 令牌缺失不是错误；凭据后端不可用才是
func resolveToken(ctx context.Context, store secrets.Store, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	token, err := secrets.Resolve(ctx, store, key)
	if errors.Is(err, errors.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("读取凭据 %s failed: %w", key, err)
	}
	return token, nil
}

// Close 释放日志文件等资源
func (b *Bootstrap) Close() error {
	if b.Logger != nil {
		return b.Logger.Close()
	}
	return nil
}
