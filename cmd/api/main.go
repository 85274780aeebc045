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

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"disaster-report/internal/app"
	"disaster-report/internal/app/api"
	"disaster-report/pkg/config"
)

func main() {
	os.Exit(run())
}

// run 返回进程退出码；defer 在返回前执行，日志文件得以关闭
func run() int {
	// 本地 settings 文件先于一切载入（HF_TOKEN 等）
	if err := config.LoadDotEnv(os.Getenv("DOTENV_PATH")); err != nil {
		log.Printf("加载 .env 失败: %v", err)
		return 1
	}

	cfg, err := config.LoadAPIConfigWithModel()
	if err != nil {
		log.Printf("加载配置失败: %v", err)
		return 1
	}

	ctx := context.Background()
	bootstrap, err := app.NewBootstrap(ctx, cfg)
	if err != nil {
		log.Printf("初始化失败: %v", err)
		return 1
	}
	defer bootstrap.Close()

	application, err := api.NewApp(bootstrap)
	if err != nil {
		bootstrap.Logger.Error("创建 API 应用失败", "error", err)
		return 1
	}

	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)

	runErr := make(chan error, 1)
	go func() {
		runErr <- application.Run(addr)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	code := 0
	select {
	case err := <-runErr:
		// 未收到信号而 Run 返回，视为异常退出
		bootstrap.Logger.Error("API 服务异常退出", "error", err)
		code = 1
	case sig := <-sigChan:
		bootstrap.Logger.Info("收到退出信号", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ParseDuration(cfg.API.ExitWait, 5*time.Second)+5*time.Second)
	defer cancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		bootstrap.Logger.Error("关闭失败", "error", err)
		code = 1
	}
	bootstrap.Logger.Info("API 服务已关闭")
	return code
}
