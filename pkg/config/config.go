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

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置结构体
type Config struct {
	API        APIConfig        `mapstructure:"api"`
	Model      ModelConfig      `mapstructure:"model"`
	Log        LogConfig        `mapstructure:"log"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Secrets    SecretsConfig    `mapstructure:"secrets"`
}

// APIConfig API 服务配置
type APIConfig struct {
	Port      int        `mapstructure:"port"`
	Host      string     `mapstructure:"host"`
	MaxBodyMB int        `mapstructure:"max_body_mb"` // hertz 必须设置请求体上限，这里给一个足够大的值
	ExitWait  string     `mapstructure:"exit_wait"`   // 优雅关闭等待时间，如 "5s"
	CORS      CORSConfig `mapstructure:"cors"`
	Grpc      GrpcConfig `mapstructure:"grpc"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	Enable           bool     `mapstructure:"enable"`
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

// GrpcConfig gRPC 健康检查服务配置
type GrpcConfig struct {
	Enable bool `mapstructure:"enable"`
	Port   int  `mapstructure:"port"`
}

// ModelConfig 模型配置
type ModelConfig struct {
	Caption  CaptionConfig  `mapstructure:"caption"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
}

// CaptionConfig 图像描述模型配置
type CaptionConfig struct {
	Provider     string `mapstructure:"provider"` // huggingface | openai | stub
	Model        string `mapstructure:"model"`
	APIKey       string `mapstructure:"api_key"` // 为空时从 secrets 取
	BaseURL      string `mapstructure:"base_url"`
	HubURL       string `mapstructure:"hub_url"`
	Timeout      string `mapstructure:"timeout"`        // 为空表示不设超时
	MaxNewTokens int    `mapstructure:"max_new_tokens"` // <=0 时使用模型自身的生成配置
	MaxSide      int    `mapstructure:"max_side"`       // >0 时上传前等比缩小到最长边不超过该值
	Preload      *bool  `mapstructure:"preload"`        // 启动时校验模型；未配置时默认 true
	Prompt       string `mapstructure:"prompt"`         // 仅 openai 视觉模型使用
	StubCaption  string `mapstructure:"stub_caption"`
}

// LLMConfig LLM 模型配置
type LLMConfig struct {
	Providers map[string]ProviderConfig `mapstructure:"providers"`
}

// ProviderConfig 模型提供商配置
type ProviderConfig struct {
	Client  string               `mapstructure:"client"` // openai（resty，默认）| eino
	APIKey  string               `mapstructure:"api_key"`
	BaseURL string               `mapstructure:"base_url"`
	Timeout string               `mapstructure:"timeout"`
	Models  map[string]ModelInfo `mapstructure:"models"`
}

// ModelInfo 模型信息
type ModelInfo struct {
	Name        string   `mapstructure:"name"`
	Route       string   `mapstructure:"route"` // 推理路由的后端，如 groq；非空时请求模型名为 name:route
	Temperature *float64 `mapstructure:"temperature"`
	MaxTokens   int      `mapstructure:"max_tokens"`
}

// DefaultsConfig 默认模型配置
type DefaultsConfig struct {
	LLM string `mapstructure:"llm"` // provider.model_key
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// MonitoringConfig 监控配置
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

// PrometheusConfig Prometheus 配置；启用时在 API 端口暴露 /metrics
type PrometheusConfig struct {
	Enable bool `mapstructure:"enable"`
}

// TracingConfig 链路追踪配置（OpenTelemetry）
type TracingConfig struct {
	Enable         bool   `mapstructure:"enable"`
	ServiceName    string `mapstructure:"service_name"`
	ExportEndpoint string `mapstructure:"export_endpoint"`
	Insecure       bool   `mapstructure:"insecure"`
	Protocol       string `mapstructure:"protocol"` // grpc（hertz-contrib provider，默认）| http（OTLP/HTTP）
}

// SecretsConfig 凭据来源
type SecretsConfig struct {
	Provider string      `mapstructure:"provider"`  // env | vault | k8s | memory
	TokenKey string      `mapstructure:"token_key"` // 默认 HF_TOKEN
	Vault    VaultConfig `mapstructure:"vault"`
	K8s      K8sConfig   `mapstructure:"k8s"`
}

// VaultConfig Vault 配置
type VaultConfig struct {
	Address    string `mapstructure:"address"`
	Token      string `mapstructure:"token"`
	PathPrefix string `mapstructure:"path_prefix"`
}

// K8sConfig 挂载 secret 目录配置
type K8sConfig struct {
	SecretsPath string `mapstructure:"secrets_path"`
}

const (
	DefaultCaptionModel = "Salesforce/blip-image-captioning-base"
	DefaultLLMKey       = "hf.gpt_oss_120b"
	DefaultTemperature  = 0.7
)

// setDefaults 注册默认值，同时声明可由环境变量覆盖的 key
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8000)
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.max_body_mb", 64)
	v.SetDefault("api.exit_wait", "5s")
	v.SetDefault("api.cors.enable", true)
	v.SetDefault("api.cors.allow_origins", []string{"*"})
	v.SetDefault("api.cors.allow_credentials", true)
	v.SetDefault("api.grpc.enable", false)
	v.SetDefault("api.grpc.port", 9090)

	v.SetDefault("model.caption.provider", "huggingface")
	v.SetDefault("model.caption.model", DefaultCaptionModel)
	v.SetDefault("model.caption.api_key", "")
	v.SetDefault("model.caption.base_url", "https://router.huggingface.co/hf-inference")
	v.SetDefault("model.caption.hub_url", "https://huggingface.co")
	v.SetDefault("model.caption.timeout", "")
	v.SetDefault("model.caption.max_new_tokens", 0)
	v.SetDefault("model.caption.max_side", 0)
	v.SetDefault("model.defaults.llm", DefaultLLMKey)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")

	v.SetDefault("monitoring.prometheus.enable", true)
	v.SetDefault("monitoring.tracing.enable", false)
	v.SetDefault("monitoring.tracing.service_name", "disaster-report")
	v.SetDefault("monitoring.tracing.export_endpoint", "")
	v.SetDefault("monitoring.tracing.protocol", "grpc")

	v.SetDefault("secrets.provider", "env")
	v.SetDefault("secrets.token_key", "HF_TOKEN")
	v.SetDefault("secrets.vault.address", "")
	v.SetDefault("secrets.vault.token", "")
	v.SetDefault("secrets.vault.path_prefix", "secret")
	v.SetDefault("secrets.k8s.secrets_path", "")
}

// DefaultLLMProviders 未配置 model.llm.providers 时使用：Hugging Face 推理路由（OpenAI 兼容），groq 后端
func DefaultLLMProviders() map[string]ProviderConfig {
	temp := DefaultTemperature
	return map[string]ProviderConfig{
		"hf": {
			Client:  "openai",
			BaseURL: "https://router.huggingface.co/v1",
			Models: map[string]ModelInfo{
				"gpt_oss_120b": {
					Name:        "openai/gpt-oss-120b",
					Route:       "groq",
					Temperature: &temp,
				},
			},
		},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return v
}

// LoadConfig 加载配置文件
func LoadConfig(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("无法读取配置文件: %w", err)
	}
	return decode(v)
}

// Default 不读取任何文件，仅由默认值与环境变量构成的配置
func Default() (*Config, error) {
	return decode(newViper())
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("无法解析配置文件: %w", err)
	}
	if len(config.Model.LLM.Providers) == 0 {
		config.Model.LLM.Providers = DefaultLLMProviders()
	}

	// 替换环境变量
	if err := replaceEnvVars(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// replaceEnvVars 替换配置中 ${VAR} 形式的 API Key
func replaceEnvVars(config *Config) error {
	for provider, providerConfig := range config.Model.LLM.Providers {
		providerConfig.APIKey = expandEnv(providerConfig.APIKey)
		config.Model.LLM.Providers[provider] = providerConfig
	}
	config.Model.Caption.APIKey = expandEnv(config.Model.Caption.APIKey)
	config.Secrets.Vault.Token = expandEnv(config.Secrets.Vault.Token)
	return nil
}

func expandEnv(s string) string {
	if !strings.HasPrefix(s, "$") {
		return s
	}
	envVar := strings.TrimPrefix(strings.TrimSuffix(s, "}"), "${")
	envVar = strings.TrimPrefix(envVar, "$")
	return os.Getenv(envVar)
}

// LoadDotEnv 将本地 settings 文件（KEY=VALUE）载入进程环境；文件不存在时忽略，已存在的环境变量不覆盖
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("无法读取 %s: %w", path, err)
	}
	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, ok := os.LookupEnv(name); ok {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return err
		}
	}
	return nil
}

// LoadAPIConfigWithModel 加载 api.yaml 并合并 model.yaml 的 model 段；
// 目录默认 configs/，可由 CONFIG_DIR 覆盖；文件缺失时使用默认值
func LoadAPIConfigWithModel() (*Config, error) {
	dir := os.Getenv("CONFIG_DIR")
	if dir == "" {
		dir = "configs"
	}
	return LoadFromDir(dir)
}

// LoadFromDir 见 LoadAPIConfigWithModel
func LoadFromDir(dir string) (*Config, error) {
	apiPath := filepath.Join(dir, "api.yaml")
	var (
		cfg *Config
		err error
	)
	if fileExists(apiPath) {
		cfg, err = LoadConfig(apiPath)
	} else {
		cfg, err = Default()
	}
	if err != nil {
		return nil, err
	}

	modelPath := filepath.Join(dir, "model.yaml")
	if fileExists(modelPath) {
		modelCfg, err := LoadConfig(modelPath)
		if err != nil {
			return nil, err
		}
		cfg.Model = modelCfg.Model
	}
	return cfg, nil
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

// ParseDuration 解析时长字符串，无效或空时返回 defaultVal
func ParseDuration(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// ParseDefaultKey 拆分 provider.model_key
func ParseDefaultKey(key string) (provider, modelKey string, err error) {
	parts := strings.SplitN(key, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("default key 格式应为 provider.model_key，如 hf.gpt_oss_120b，当前: %q", key)
	}
	return parts[0], parts[1], nil
}

// PreloadEnabled 未配置时默认 true
func (c CaptionConfig) PreloadEnabled() bool {
	return c.Preload == nil || *c.Preload
}

// RequestModel 发往远端的模型名（含路由后缀）
func (m ModelInfo) RequestModel() string {
	if m.Route == "" {
		return m.Name
	}
	return m.Name + ":" + m.Route
}

// TemperatureOrDefault 未配置时为 0.7
func (m ModelInfo) TemperatureOrDefault() float64 {
	if m.Temperature == nil {
		return DefaultTemperature
	}
	return *m.Temperature
}
