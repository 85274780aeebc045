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
	"bytes"
	"context"
	"io"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/prometheus/common/expfmt"

	"disaster-report/internal/pipeline/analyze"
	"disaster-report/internal/pipeline/common"
	"disaster-report/pkg/metrics"
)

// UploadField multipart 中图像字段名
const UploadField = "file"

// Analyzer 分析流水线（*analyze.Analyzer 实现）
type Analyzer interface {
	Analyze(ctx context.Context, data []byte) (*analyze.Analysis, error)
	Captioner() string
	ReportModel() string
}

// Handler HTTP 处理器
type Handler struct {
	analyzer Analyzer
}

// NewHandler 创建新的 HTTP 处理器
func NewHandler(analyzer Analyzer) *Handler {
	return &Handler{analyzer: analyzer}
}

// AnalyzeResponse POST /analyze/ 成功响应
type AnalyzeResponse struct {
	Caption string `json:"caption"`
	Report  string `json:"report"`
}

// ValidationDetail 422 响应中的单条错误
type ValidationDetail struct {
	Type  string   `json:"type"`
	Loc   []string `json:"loc"`
	Msg   string   `json:"msg"`
	Input any      `json:"input"`
}

// ValidationResponse 422 响应
type ValidationResponse struct {
	Detail []ValidationDetail `json:"detail"`
}

// ErrorResponse 500 响应；具体错误只写日志
type ErrorResponse struct {
	Detail string `json:"detail"`
}

var internalError = ErrorResponse{Detail: "Internal Server Error"}

func writeValidationError(ctx *app.RequestContext, errs ...*common.ValidationError) {
	resp := ValidationResponse{Detail: make([]ValidationDetail, 0, len(errs))}
	for _, e := range errs {
		resp.Detail = append(resp.Detail, ValidationDetail{Type: e.Type, Loc: e.Location, Msg: e.Message})
	}
	ctx.JSON(consts.StatusUnprocessableEntity, resp)
}

// Analyze 上传图像并返回描述与灾情报告
// POST /analyze/ (multipart/form-data, field "file")
func (h *Handler) Analyze(c context.Context, ctx *app.RequestContext) {
	fh, err := ctx.FormFile(UploadField)
	if err != nil {
		writeValidationError(ctx, common.NewMissingFieldError("body", UploadField))
		return
	}
	f, err := fh.Open()
	if err != nil {
		hlog.CtxErrorf(c, "open upload %q failed: %v", fh.Filename, err)
		ctx.JSON(consts.StatusInternalServerError, internalError)
		return
	}
	data, err := io.ReadAll(f)
	_ = f.Close()
	if err != nil {
		hlog.CtxErrorf(c, "read upload %q failed: %v", fh.Filename, err)
		ctx.JSON(consts.StatusInternalServerError, internalError)
		return
	}

	res, err := h.analyzer.Analyze(c, data)
	if err != nil {
		hlog.CtxErrorf(c, "analyze %q (%d bytes) failed: %v", fh.Filename, len(data), err)
		ctx.JSON(consts.StatusInternalServerError, internalError)
		return
	}
	ctx.JSON(consts.StatusOK, AnalyzeResponse{Caption: res.Caption, Report: res.Report.Render()})
}

// Preflight 非跨域的 OPTIONS 请求；跨域预检已由 CORS 中间件应答
func (h *Handler) Preflight(c context.Context, ctx *app.RequestContext) {
	ctx.Response.Header.Set("Allow", "OPTIONS, POST")
	ctx.SetStatusCode(consts.StatusNoContent)
}

// HealthCheck 健康检查
// GET /health
func (h *Handler) HealthCheck(c context.Context, ctx *app.RequestContext) {
	body := map[string]string{"status": "ok"}
	if h.analyzer != nil {
		body["captioner"] = h.analyzer.Captioner()
		body["report_model"] = h.analyzer.ReportModel()
	}
	ctx.JSON(consts.StatusOK, body)
}

// Metrics Prometheus 文本格式
// GET /metrics
func (h *Handler) Metrics(c context.Context, ctx *app.RequestContext) {
	var buf bytes.Buffer
	if err := metrics.WritePrometheus(&buf); err != nil {
		hlog.CtxErrorf(c, "gather metrics failed: %v", err)
		ctx.JSON(consts.StatusInternalServerError, internalError)
		return
	}
	ctx.Data(consts.StatusOK, string(expfmt.NewFormat(expfmt.TypeTextPlain)), buf.Bytes())
}
