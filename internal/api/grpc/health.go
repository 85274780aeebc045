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

// Package grpc 提供 gRPC 健康检查服务（grpc.health.v1），供负载均衡与编排系统探活
package grpc

import (
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName 分析服务在健康检查中的名称；空串表示整体状态
const ServiceName = "disaster.Analyzer"

// Server 健康检查服务端，初始为 NOT_SERVING
type Server struct {
	health *health.Server
}

// NewServer 创建健康检查服务
func NewServer() *Server {
	s := &Server{health: health.NewServer()}
	s.SetServing(false)
	return s
}

// Register 注册到 grpc.Server
func (s *Server) Register(grpcServer *grpc.Server) {
	healthpb.RegisterHealthServer(grpcServer, s.health)
}

// SetServing 同时设置整体与分析服务的状态
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// Shutdown 将所有服务置为 NOT_SERVING，此后状态不再变化
func (s *Server) Shutdown() {
	s.health.Shutdown()
}

// Run 运行中的 gRPC 服务
type Run struct {
	srv    *grpc.Server
	lis    net.Listener
	health *Server
}

// Start 在 addr 上监听并在 goroutine 中 Serve
func Start(health *Server, addr string) (*Run, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	srv := grpc.NewServer()
	health.Register(srv)
	go func() {
		_ = srv.Serve(lis)
	}()
	return &Run{srv: srv, lis: lis, health: health}, nil
}

// Addr 实际监听地址
func (r *Run) Addr() net.Addr {
	return r.lis.Addr()
}

// GracefulStop 先置为 NOT_SERVING 再停止
func (r *Run) GracefulStop() {
	r.health.Shutdown()
	r.srv.GracefulStop()
}
