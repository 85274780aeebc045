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

package api

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzslog "github.com/hertz-contrib/logger/slog"
	"github.com/hertz-contrib/obs-opentelemetry/provider"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"

	apigrpc "disaster-report/internal/api/grpc"
	"disaster-report/internal/api/http"
	"disaster-report/internal/api/http/middleware"
	"disaster-report/internal/app"
	appconfig "disaster-report/pkg/config"
	"disaster-report/pkg/tracing"
)

// otelProviderShutdown 用于优雅关闭时关闭 OpenTelemetry provider
type otelProviderShutdown interface {
	Shutdown(ctx context.Context) error
}

// App API 应用（装配 HTTP Router、Handler、Middleware 与可选的 gRPC 健康检查）
type App struct {
	bootstrap    *app.Bootstrap
	router       *http.Router
	hertz        *server.Hertz
	health       *apigrpc.Server
	grpcServer   *apigrpc.Run
	otelProvider otelProviderShutdown
}

// NewApp 创建 API 应用；gRPC 健康检查在此启动并保持 NOT_SERVING，直到 HTTP 服务开始运行
func NewApp(bootstrap *app.Bootstrap) (*App, error) {
	cfg := bootstrap.Config
	handler := http.NewHandler(bootstrap.Analyzer)
	mw := middleware.NewMiddleware(middleware.CORSOptions{
		Enable:           cfg.API.CORS.Enable,
		AllowOrigins:     cfg.API.CORS.AllowOrigins,
		AllowCredentials: cfg.API.CORS.AllowCredentials,
	})
	router := http.NewRouter(handler, mw)
	router.SetMaxBodyMB(cfg.API.MaxBodyMB)
	router.SetMetricsEnabled(cfg.Monitoring.Prometheus.Enable)

	a := &App{bootstrap: bootstrap, router: router}
	if cfg.API.Grpc.Enable {
		a.health = apigrpc.NewServer()
		run, err := apigrpc.Start(a.health, fmt.Sprintf(":%d", cfg.API.Grpc.Port))
		if err != nil {
			return nil, fmt.Errorf("启动 gRPC 健康检查失败: %w", err)
		}
		a.grpcServer = run
		bootstrap.Logger.Info("gRPC 健康检查已启动", "addr", run.Addr().String())
	}
	return a, nil
}

// Run 启动 HTTP 服务（阻塞）
func (a *App) Run(addr string) error {
	a.setupHertzLogger()

	opts, err := a.tracingOptions()
	if err != nil {
		return err
	}
	a.hertz = a.build(addr, opts...)
	a.bootstrap.Logger.Info("API 服务启动", "addr", addr)
	return a.hertz.Run()
}

// build 创建 Hertz 服务并挂上健康状态回调
func (a *App) build(addr string, opts ...config.Option) *server.Hertz {
	exitWait := appconfig.ParseDuration(a.bootstrap.Config.API.ExitWait, 5*time.Second)
	opts = append(opts, server.WithExitWaitTime(exitWait))
	h := a.router.Build(addr, opts...)
	if a.health != nil {
		h.OnRun = append(h.OnRun, func(ctx context.Context) error {
			a.health.SetServing(true)
			return nil
		})
		h.OnShutdown = append(h.OnShutdown, func(ctx context.Context) {
			a.health.SetServing(false)
		})
	}
	return h
}

// setupHertzLogger hertz 内部与访问日志走 slog，级别与应用日志共享
func (a *App) setupHertzLogger() {
	logger := a.bootstrap.Logger
	hertzLogger := hertzslog.NewLogger(
		hertzslog.WithOutput(logger.Output()),
		hertzslog.WithLevel(logger.Level()),
	)
	hlog.SetLogger(hertzLogger)
}

// tracingOptions 可选：启用链路追踪（OpenTelemetry）。
// protocol=grpc 使用 hertz-contrib provider；protocol=http 使用 OTLP/HTTP exporter。
func (a *App) tracingOptions() ([]config.Option, error) {
	tc := a.bootstrap.Config.Monitoring.Tracing
	if !tc.Enable {
		return nil, nil
	}
	serviceName := tc.ServiceName
	if serviceName == "" {
		serviceName = "disaster-report"
	}
	exportEndpoint := tc.ExportEndpoint
	if exportEndpoint == "" {
		exportEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}
	if exportEndpoint == "" {
		a.bootstrap.Logger.Warn("已启用链路追踪但未配置 export_endpoint，跳过")
		return nil, nil
	}

	switch tc.Protocol {
	case "http":
		tp, err := tracing.InitTracer(tracing.OTelConfig{
			ServiceName:    serviceName,
			ExportEndpoint: exportEndpoint,
			Insecure:       tc.Insecure,
		})
		if err != nil {
			return nil, fmt.Errorf("初始化链路追踪失败: %w", err)
		}
		a.otelProvider = tp
	default:
		opts := []provider.Option{
			provider.WithServiceName(serviceName),
			provider.WithExportEndpoint(exportEndpoint),
			provider.WithEnableMetrics(false),
		}
		if tc.Insecure {
			opts = append(opts, provider.WithInsecure())
		}
		a.otelProvider = provider.NewOpenTelemetryProvider(opts...)
	}

	tracerOpt, cfg := hertztracing.NewServerTracer()
	a.router.Use(hertztracing.ServerMiddleware(cfg))
	a.bootstrap.Logger.Info("链路追踪已启用", "service_name", serviceName, "endpoint", exportEndpoint, "protocol", tc.Protocol)
	return []config.Option{tracerOpt}, nil
}

// Shutdown 优雅关闭（传入 ctx 以支持超时，如 cmd 层 WithTimeout）
func (a *App) Shutdown(ctx context.Context) error {
	if a.grpcServer != nil {
		a.grpcServer.GracefulStop()
	}
	if a.hertz != nil {
		if err := a.hertz.Shutdown(ctx); err != nil {
			return err
		}
	}
	if a.otelProvider != nil {
		_ = a.otelProvider.Shutdown(ctx)
	}
	return nil
}
