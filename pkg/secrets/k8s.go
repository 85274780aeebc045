// Copyright 2026 fanjia1024
// Kubernetes mounted-secret store

package secrets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// K8sConfig Kubernetes 配置
type K8sConfig struct {
	// SecretsPath 是 secret volume 挂载目录，每个 key 对应一个文件；默认 /etc/secrets
	SecretsPath string
}

type k8sStore struct {
	secretsPath string
	mu          sync.RWMutex
	cache       map[string]string
}

// NewK8sStore 创建 Kubernetes secret store，从挂载目录按文件名读取
func NewK8sStore(config K8sConfig) (Store, error) {
	secretsPath := "/etc/secrets"
	if config.SecretsPath != "" {
		secretsPath = config.SecretsPath
	}
	st, err := os.Stat(secretsPath)
	if err != nil {
		return nil, fmt.Errorf("kubernetes secrets path not found: %s (not running in Kubernetes?): %w", secretsPath, err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("kubernetes secrets path is not a directory: %s", secretsPath)
	}

	return &k8sStore{
		secretsPath: secretsPath,
		cache:       make(map[string]string),
	}, nil
}

func (k *k8sStore) Get(ctx context.Context, key string) (string, error) {
	k.mu.RLock()
	if val, ok := k.cache[key]; ok {
		k.mu.RUnlock()
		return val, nil
	}
	k.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(k.secretsPath, filepath.Base(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return "", notFound(key)
		}
		return "", fmt.Errorf("read secret %s: %w", key, err)
	}
	val := strings.TrimRight(string(data), "\r\n")

	k.mu.Lock()
	k.cache[key] = val
	k.mu.Unlock()
	return val, nil
}

// Set 挂载的 secret 在 pod 内只读，这里只写入缓存
func (k *k8sStore) Set(ctx context.Context, key string, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.cache[key] = value
	return nil
}

func (k *k8sStore) Delete(ctx context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.cache, key)
	return nil
}

func (k *k8sStore) List(ctx context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(k.secretsPath)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		// 挂载目录中的 ..data 等为 kubelet 维护的软链接
		if e.IsDir() || strings.HasPrefix(e.Name(), "..") {
			continue
		}
		if strings.HasPrefix(e.Name(), prefix) {
			keys = append(keys, e.Name())
		}
	}
	sort.Strings(keys)
	return keys, nil
}
