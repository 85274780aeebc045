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

// Package analyze 串联一次分析：解码 → 图像描述 → 报告生成
package analyze

import (
	"context"
	"time"

	"disaster-report/internal/model/vision"
	"disaster-report/internal/pipeline/common"
	"disaster-report/internal/report"
	"disaster-report/pkg/log"
	"disaster-report/pkg/metrics"
	"disaster-report/pkg/tracing"
)

// Reporter 报告生成（*report.Generator 实现）
type Reporter interface {
	Generate(ctx context.Context, caption string) report.Result
	Model() string
}

// Analysis 一次分析的结果
type Analysis struct {
	Caption string
	Report  report.Result
}

// Analyzer 持有启动时构建的描述器与报告生成器，只读，可并发调用
type Analyzer struct {
	captioner vision.Client
	reporter  Reporter
	logger    *log.Logger
}

// New 创建 Analyzer；logger 可为 nil
func New(captioner vision.Client, reporter Reporter, logger *log.Logger) *Analyzer {
	return &Analyzer{captioner: captioner, reporter: reporter, logger: logger}
}

// Captioner 返回描述器名称
func (a *Analyzer) Captioner() string { return a.captioner.Name() }

// ReportModel 返回报告模型 id
func (a *Analyzer) ReportModel() string { return a.reporter.Model() }

// Analyze 对上传的图像字节执行完整流程。
// 解码或描述失败返回 *common.PipelineError；报告失败不返回 error，记录在 Analysis.Report 中。
func (a *Analyzer) Analyze(ctx context.Context, data []byte) (*Analysis, error) {
	pc := common.NewPipelineContext(ctx, common.RequestID(ctx))

	img, err := vision.DecodeRGB(data)
	if err != nil {
		metrics.AnalyzeTotal.WithLabelValues("bad_image").Inc()
		return nil, a.abort(pc, "无法解码上传的图像", err)
	}

	pc.Enter(common.StageCaption)
	b := img.Bounds()
	cctx, span := tracing.StartCaptionSpan(ctx, a.captioner.Name(), b.Dx(), b.Dy())
	start := time.Now()
	caption, err := a.captioner.Describe(cctx, img)
	metrics.CaptionDuration.WithLabelValues(a.captioner.Name()).Observe(time.Since(start).Seconds())
	tracing.EndSpan(span, err)
	if err != nil {
		metrics.AnalyzeTotal.WithLabelValues("caption_failed").Inc()
		return nil, a.abort(pc, a.captioner.Name(), err)
	}
	a.debug(ctx, "图像描述完成", "request_id", pc.ID, "stage", pc.Stage, "caption", caption, "latency_ms", time.Since(start).Milliseconds())

	pc.Enter(common.StageReport)
	res := a.reporter.Generate(ctx, caption)
	status := "ok"
	if !res.OK() {
		status = "report_failed"
	}
	metrics.AnalyzeTotal.WithLabelValues(status).Inc()
	a.debug(ctx, "分析完成", "request_id", pc.ID, "stage", pc.Stage, "status", status, "elapsed_ms", pc.Elapsed().Milliseconds())

	return &Analysis{Caption: caption, Report: res}, nil
}

// abort 以当前阶段构造 PipelineError 并记录
func (a *Analyzer) abort(pc *common.PipelineContext, msg string, err error) error {
	a.debug(pc.Context, "分析中止", "request_id", pc.ID, "stage", pc.Stage, "error", err)
	return common.NewPipelineError(pc.Stage, msg, err)
}

func (a *Analyzer) debug(ctx context.Context, msg string, args ...any) {
	if a.logger != nil {
		a.logger.DebugContext(ctx, msg, args...)
	}
}
