// trackademy 运维控制台：通过 REST 接口完成级联选课、点名、模板下载与导入
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"trackademy/backend/config"
	"trackademy/backend/pkg/client"
	applogger "trackademy/backend/pkg/logger"
)

// app 各子命令共享的运行时依赖
type app struct {
	v      *viper.Viper
	logger *zap.Logger
	api    *client.Client
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "trackademy",
		Short:         "Trackademy 点名控制台",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.String("server", "http://localhost:8080", "服务端地址")
	pf.String("token", "", "访问令牌（Bearer）")
	pf.Duration("timeout", 15*time.Second, "单次请求超时")
	pf.String("log-level", "warn", "日志级别")

	// 环境变量 TRACKADEMY_CONSOLE_SERVER / TRACKADEMY_CONSOLE_TOKEN 等同于对应参数
	a.v.SetEnvPrefix("TRACKADEMY_CONSOLE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	_ = a.v.BindPFlags(pf)

	root.AddCommand(
		newTokenCmd(a),
		newFiltersCmd(a),
		newDraftCmd(a),
		newMarkCmd(a),
		newTemplateCmd(a),
		newImportCmd(a),
	)
	return root
}

func (a *app) init() error {
	logger, err := applogger.NewLogger(&config.LogConfig{Level: a.v.GetString("log-level"), Format: "console"})
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	a.logger = logger
	a.api = client.New(a.v.GetString("server"), a.v.GetString("token"), a.v.GetDuration("timeout"), logger)
	return nil
}
