// Copyright 2026 fanjia1024
// Secret management abstraction

package secrets

import (
	"context"
	"fmt"
	"strings"

	"disaster-report/pkg/errors"
)

// Store Secret 存储接口
type Store interface {
	// Get 获取 secret 值；不存在时返回包装了 errors.ErrNotFound 的错误
	Get(ctx context.Context, key string) (string, error)

	// Set 设置 secret 值
	Set(ctx context.Context, key string, value string) error

	// Delete 删除 secret
	Delete(ctx context.Context, key string) error

	// List 列出所有 secret keys
	List(ctx context.Context, prefix string) ([]string, error)
}

// Config Secret Store 配置
type Config struct {
	Provider string // env | vault | k8s | memory
	Vault    VaultConfig
	K8s      K8sConfig
}

// NewStore 创建 Secret Store；Provider 为空时使用 env
func NewStore(config Config) (Store, error) {
	switch config.Provider {
	case "", "env":
		return NewEnvStore(), nil
	case "memory":
		return NewMemoryStore(), nil
	case "vault":
		return NewVaultStore(config.Vault)
	case "k8s":
		return NewK8sStore(config.K8s)
	default:
		return nil, fmt.Errorf("unsupported secret provider: %s", config.Provider)
	}
}

// Resolve 读取 key 并去掉首尾空白（挂载文件通常带换行）；值为空视为不存在
func Resolve(ctx context.Context, store Store, key string) (string, error) {
	val, err := store.Get(ctx, key)
	if err != nil {
		return "", err
	}
	val = strings.TrimSpace(val)
	if val == "" {
		return "", errors.Wrapf(errors.ErrNotFound, "secret %s is empty", key)
	}
	return val, nil
}

func notFound(key string) error {
	return errors.Wrapf(errors.ErrNotFound, "secret %s", key)
}
