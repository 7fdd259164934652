package cli

import (
	"fmt"

	"squashclub/internal/adapter"
	"squashclub/internal/config"
	"squashclub/internal/logging"
	"squashclub/internal/service"

	// 注册文档库后端
	_ "squashclub/internal/adapter/firestore"
	_ "squashclub/internal/adapter/memory"
	_ "squashclub/internal/adapter/postgres"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RootOptions 全局参数
type RootOptions struct {
	ConfigPath string
	Driver     string
}

// NewRootCommand 壁球队管理后端命令行入口
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "squashclub",
		Short:         "學校壁球隊管理系統後端",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "配置文件路径（默认 ./config/config.yaml）")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "覆盖 store.driver（firestore/postgres/memory/none）")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewPasswdCommand(opts))
	return cmd
}

// env 命令共用的运行环境
type env struct {
	cfg    *config.Config
	logger *logrus.Logger
	tables *service.TableStore
	close  func()
}

// setup 加载配置、初始化日志并连接文档库。
// 连接失败时 strict 为 false 则降级为本地模式继续运行
func setup(opts *RootOptions, strict bool) (*env, error) {
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Driver != "" {
		cfg.Store.Driver = opts.Driver
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	store, err := adapter.Open(cfg, logger)
	if err != nil {
		if strict {
			return nil, err
		}
		logger.WithError(err).Warn("连接文档库失败，以本地模式运行")
		store = nil
	}

	e := &env{cfg: cfg, logger: logger, tables: service.NewTableStore(store, cfg.Store.AppID, logger), close: func() {}}
	if store != nil {
		e.close = func() {
			if err := store.Close(); err != nil {
				logger.WithError(err).Warn("关闭文档库连接失败")
			}
		}
	}
	return e, nil
}

// requireConnected 离线命令必须连接文档库，否则写入没有意义
func requireConnected(e *env) error {
	if !e.tables.Connected() {
		return fmt.Errorf("store.driver=%q 未连接文档库", e.cfg.Store.Driver)
	}
	return nil
}
