// Package tracing 封装 OpenTelemetry：Provider 初始化与分析链路上的 span（不依赖 internal）
package tracing

import (
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName         = "disaster-report"
	defaultServiceName = "disaster-report-api"
)

// EndSpan 结束 span；err 非空时记录错误并标记状态
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
