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

package http

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/middlewares/server/recovery"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"disaster-report/internal/api/http/middleware"
)

// DefaultMaxBodyMB 默认最大请求体（MB）
const DefaultMaxBodyMB = 64

// Router HTTP 路由器
type Router struct {
	handler        *Handler
	middleware     *middleware.Middleware
	maxBodyMB      int
	metricsEnabled bool
	pre            []app.HandlerFunc
}

// NewRouter 创建新的 HTTP 路由器
func NewRouter(handler *Handler, middleware *middleware.Middleware) *Router {
	return &Router{
		handler:        handler,
		middleware:     middleware,
		maxBodyMB:      DefaultMaxBodyMB,
		metricsEnabled: true,
	}
}

// SetMaxBodyMB 设置最大请求体；<= 0 时保持默认
func (r *Router) SetMaxBodyMB(mb int) {
	if mb > 0 {
		r.maxBodyMB = mb
	}
}

// SetMetricsEnabled 是否暴露 /metrics
func (r *Router) SetMetricsEnabled(enabled bool) {
	r.metricsEnabled = enabled
}

// Use 追加在内置中间件之前执行的中间件（如链路追踪），须在 Build 前调用
func (r *Router) Use(mw ...app.HandlerFunc) {
	r.pre = append(r.pre, mw...)
}

// Build 创建 Hertz 服务并注册路由；opts 追加在默认选项之后（如链路追踪）。
// 客户端断开时取消请求 context，进行中的远端调用随之中止。
func (r *Router) Build(addr string, opts ...config.Option) *server.Hertz {
	options := append([]config.Option{
		server.WithHostPorts(addr),
		server.WithMaxRequestBodySize(r.maxBodyMB << 20),
		server.WithDisablePrintRoute(true),
		server.WithSenseClientDisconnection(true),
	}, opts...)
	h := server.New(options...)

	if len(r.pre) > 0 {
		h.Use(r.pre...)
	}
	h.Use(recovery.Recovery(recovery.WithRecoveryHandler(recoverInternalError)), r.middleware.RequestID(), r.middleware.AccessLog(), r.middleware.CORS())

	h.POST("/analyze/", r.handler.Analyze)
	h.OPTIONS("/analyze/", r.handler.Preflight)
	h.GET("/health", r.handler.HealthCheck)
	if r.metricsEnabled {
		h.GET("/metrics", r.handler.Metrics)
	}
	return h
}

// recoverInternalError panic 时返回与其他 500 一致的 JSON
func recoverInternalError(c context.Context, ctx *app.RequestContext, err interface{}, stack []byte) {
	hlog.CtxErrorf(c, "panic recovered: %v\n%s", err, stack)
	ctx.AbortWithStatusJSON(consts.StatusInternalServerError, internalError)
}
