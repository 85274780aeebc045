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

package middleware

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"

	"disaster-report/internal/pipeline/common"
)

// HeaderRequestID 请求 ID 头
const HeaderRequestID = "X-Request-ID"

const (
	allowMethods = "DELETE, GET, HEAD, OPTIONS, PATCH, POST, PUT"
	corsMaxAge   = "600"
)

// CORSOptions 跨域配置
type CORSOptions struct {
	Enable           bool
	AllowOrigins     []string // 含 "*" 表示任意来源
	AllowCredentials bool
}

// Middleware 中间件管理器
type Middleware struct {
	cors CORSOptions
}

// NewMiddleware 创建新的中间件管理器
func NewMiddleware(cors CORSOptions) *Middleware {
	return &Middleware{cors: cors}
}

func (m *Middleware) originAllowed(origin string) bool {
	return slices.Contains(m.cors.AllowOrigins, "*") || slices.Contains(m.cors.AllowOrigins, origin)
}

// CORS 跨域中间件：允许凭据时回显 Origin（浏览器拒绝 "*" 与凭据同时出现），预检请求直接返回 204
func (m *Middleware) CORS() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		if !m.cors.Enable {
			ctx.Next(c)
			return
		}
		origin := string(ctx.GetHeader("Origin"))
		if origin == "" {
			ctx.Next(c)
			return
		}
		preflight := string(ctx.Method()) == consts.MethodOptions && len(ctx.GetHeader("Access-Control-Request-Method")) > 0
		if !m.originAllowed(origin) {
			if preflight {
				ctx.AbortWithMsg("Disallowed CORS origin", consts.StatusBadRequest)
				return
			}
			ctx.Next(c)
			return
		}

		h := &ctx.Response.Header
		if m.cors.AllowCredentials || !slices.Contains(m.cors.AllowOrigins, "*") {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
		} else {
			h.Set("Access-Control-Allow-Origin", "*")
		}
		if m.cors.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		if preflight {
			h.Set("Access-Control-Allow-Methods", allowMethods)
			if reqHeaders := strings.TrimSpace(string(ctx.GetHeader("Access-Control-Request-Headers"))); reqHeaders != "" {
				h.Set("Access-Control-Allow-Headers", reqHeaders)
			}
			h.Set("Access-Control-Max-Age", corsMaxAge)
			ctx.AbortWithStatus(consts.StatusNoContent)
			return
		}
		ctx.Next(c)
	}
}

// RequestID 读取或生成 X-Request-ID，写入响应头并放入 context
func (m *Middleware) RequestID() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		id := strings.TrimSpace(string(ctx.GetHeader(HeaderRequestID)))
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Response.Header.Set(HeaderRequestID, id)
		ctx.Set("request_id", id)
		ctx.Next(common.WithRequestID(c, id))
	}
}

// AccessLog 访问日志
func (m *Middleware) AccessLog() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c)
		hlog.CtxInfof(c, "%s %s %d %s request_id=%s",
			ctx.Method(), ctx.Path(), ctx.Response.StatusCode(), time.Since(start), ctx.GetString("request_id"))
	}
}
