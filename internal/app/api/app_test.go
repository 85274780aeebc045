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
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"disaster-report/internal/app"
	"disaster-report/pkg/config"
)

func newTestBootstrap(t *testing.T) *app.Bootstrap {
	t.Helper()
	t.Setenv("HF_TOKEN", "")
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Log.Level = "error"
	cfg.Model.Caption.Provider = app.CaptionStub
	b, err := app.NewBootstrap(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestApp_Routes(t *testing.T) {
	b := newTestBootstrap(t)
	a, err := NewApp(b)
	require.NoError(t, err)

	h := a.build(":0")
	w := ut.PerformRequest(h.Engine, "GET", "/health", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	require.Equal(t, 200, w.Result().StatusCode())
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Result().Body(), &body))
	assert.Equal(t, "stub", body["captioner"])

	w = ut.PerformRequest(h.Engine, "GET", "/metrics", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	assert.Equal(t, 200, w.Result().StatusCode())
	require.NoError(t, a.Shutdown(context.Background()))
}

func TestApp_MetricsDisabled(t *testing.T) {
	b := newTestBootstrap(t)
	b.Config.Monitoring.Prometheus.Enable = false
	a, err := NewApp(b)
	require.NoError(t, err)

	h := a.build(":0")
	w := ut.PerformRequest(h.Engine, "GET", "/metrics", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	assert.Equal(t, 404, w.Result().StatusCode())
}

func TestApp_GrpcHealthFollowsHTTP(t *testing.T) {
	b := newTestBootstrap(t)
	b.Config.API.Grpc.Enable = true
	b.Config.API.Grpc.Port = 0
	a, err := NewApp(b)
	require.NoError(t, err)
	require.NotNil(t, a.grpcServer)
	defer a.Shutdown(context.Background())

	h := a.build(":0")
	require.NotEmpty(t, h.OnRun)
	require.NotEmpty(t, h.OnShutdown)
	require.NoError(t, h.OnRun[len(h.OnRun)-1](context.Background()))
}

func TestApp_TracingWithoutEndpointIsSkipped(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	b := newTestBootstrap(t)
	b.Config.Monitoring.Tracing.Enable = true
	b.Config.Monitoring.Tracing.ExportEndpoint = ""
	a, err := NewApp(b)
	require.NoError(t, err)

	opts, err := a.tracingOptions()
	require.NoError(t, err)
	assert.Empty(t, opts)
	assert.Nil(t, a.otelProvider)
}
