package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"squashclub/internal/api"
	"squashclub/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand 启动 HTTP 服务
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "啟動 HTTP 服務",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts, port)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "覆盖 server.port")
	return cmd
}

func runServe(ctx context.Context, opts *RootOptions, port int) error {
	e, err := setup(opts, false)
	if err != nil {
		return err
	}
	defer e.close()
	if port > 0 {
		e.cfg.Server.Port = port
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(e.cfg.Server.Mode)
	manager := session.NewManager(e.logger)
	if idle := e.cfg.Session.IdleTimeout; idle > 0 {
		go manager.RunSweeper(idle/4, idle, ctx.Done())
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", e.cfg.Server.Port),
		Handler:           api.NewRouter(e.cfg, e.tables, manager, e.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		e.logger.Infof("服务启动成功，端口：%d，Gin运行模式：%s", e.cfg.Server.Port, e.cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("启动服务失败: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	e.logger.Info("收到退出信号，正在关闭服务")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭服务失败: %w", err)
	}
	return nil
}
