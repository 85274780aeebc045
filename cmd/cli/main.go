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
	"fmt"
	"io"
	"os"

	"disaster-report/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(0)
	}
	cmd := os.Args[1]
	args := os.Args[2:]
	switch cmd {
	case "version":
		fmt.Println("disaster-report cli 0.1.0")
	case "health":
		os.Exit(runHealth(apiBaseURL(), os.Stdout, os.Stderr))
	case "config":
		runConfig()
	case "analyze":
		if len(args) < 1 {
			fmt.Fprintf(os.Stderr, "Usage: disaster analyze <image> [--json]\n")
			os.Exit(1)
		}
		asJSON := len(args) > 1 && args[1] == "--json"
		os.Exit(runAnalyze(apiBaseURL(), args[0], asJSON, os.Stdout, os.Stderr))
	default:
		printUsage(os.Stdout)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: disaster <command> [args]")
	fmt.Fprintln(w, "  version                 - 显示版本")
	fmt.Fprintln(w, "  health                  - 查询 API 健康状态（DISASTER_API_URL，默认 http://localhost:8000）")
	fmt.Fprintln(w, "  config                  - 显示配置概要")
	fmt.Fprintln(w, "  analyze <image> [--json] - 上传图像，输出描述与灾情报告")
}

func runConfig() {
	cfg, err := config.LoadAPIConfigWithModel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("api.host=%s\n", cfg.API.Host)
	fmt.Printf("api.port=%d\n", cfg.API.Port)
	fmt.Printf("model.caption.provider=%s\n", cfg.Model.Caption.Provider)
	fmt.Printf("model.caption.model=%s\n", cfg.Model.Caption.Model)
	fmt.Printf("model.defaults.llm=%s\n", cfg.Model.Defaults.LLM)
}

func runHealth(baseURL string, stdout, stderr io.Writer) int {
	out, err := getHealth(newClient(baseURL))
	if err != nil {
		fmt.Fprintf(stderr, "health: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, prettyJSON(out))
	return 0
}

func runAnalyze(baseURL, path string, asJSON bool, stdout, stderr io.Writer) int {
	res, err := analyzeFile(newClient(baseURL), path)
	if err != nil {
		fmt.Fprintf(stderr, "analyze: %v\n", err)
		return 1
	}
	if asJSON {
		fmt.Fprintln(stdout, prettyJSON(res))
		return 0
	}
	fmt.Fprintf(stdout, "Caption: %s\n\n%s\n", res.Caption, res.Report)
	return 0
}
