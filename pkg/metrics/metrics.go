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

package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// 全局 Registry，供 /metrics 暴露
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(
		AnalyzeTotal,
		CaptionDuration,
		ReportDuration, ReportFailTotal,
	)
}

// AnalyzeTotal /analyze/ 请求总数（按结果）
var AnalyzeTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "disaster_analyze_total",
		Help: "分析请求总数（按结果）",
	},
	[]string{"status"}, // ok | report_failed | bad_image | caption_failed
)

// CaptionDuration 图像描述耗时（秒）
var CaptionDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "disaster_caption_duration_seconds",
		Help:    "图像描述耗时（秒）",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"captioner"},
)

// ReportDuration 报告生成耗时（秒），含失败调用
var ReportDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "disaster_report_duration_seconds",
		Help:    "报告生成耗时（秒）",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
	},
	[]string{"model"},
)

// ReportFailTotal 报告生成失败数（按错误类别）
var ReportFailTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "disaster_report_fail_total",
		Help: "报告生成失败总数",
	},
	[]string{"kind"}, // network | timeout | status | malformed | empty | ...
)

// WritePrometheus 将 Prometheus 文本格式写入 w（供 Hertz 等复用）
func WritePrometheus(w io.Writer) error {
	metrics, err := DefaultRegistry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range metrics {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
