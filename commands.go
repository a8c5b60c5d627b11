package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"portal-backend/internal/platform/auth"
	"portal-backend/internal/platform/config"
	"portal-backend/internal/platform/logger"
	"portal-backend/internal/portal/sheets"
)

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "portal",
		Short:         "社内ポータル backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "設定ファイル")

	root.AddCommand(newServeCmd(&configPath), newInitCmd(&configPath), newExportCmd(&configPath))
	return root
}

// bootstrap は設定・ロガー・app をまとめて作る。呼び出し側で Close すること。
func bootstrap(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Mode, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	log.Info("config loaded", zap.String("mode", cfg.Mode), zap.String("backend", cfg.Storage.Backend))
	return newApp(ctx, cfg, log)
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "HTTP サーバーを起動する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			defer a.log.Sync() //nolint:errcheck

			sub, err := fs.Sub(embedded, "public")
			if err != nil {
				return err
			}
			return serve(ctx, a, sub)
		},
	}
}

func serve(ctx context.Context, a *app, static fs.FS) error {
	cfg := a.cfg
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           a.router(static),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if cfg.Server.TLS {
			// 証明書は config/tls/<mode>/ 以下
			dir := filepath.Join("config", "tls", cfg.Mode)
			a.log.Info("listening (TLS)", zap.String("addr", srv.Addr))
			err = srv.ListenAndServeTLS(filepath.Join(dir, cfg.Certificate.Cert), filepath.Join(dir, cfg.Certificate.Key))
		} else {
			a.log.Info("listening", zap.String("addr", srv.Addr))
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown
	a.log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newInitCmd(configPath *string) *cobra.Command {
	var adminID, adminPassword string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "全シートを作成してヘッダー行を書く",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			done, err := a.sheets.Init(ctx)
			if err != nil {
				return err
			}
			for _, name := range done {
				fmt.Fprintf(cmd.OutOrStdout(), "✅ %s\n", name)
			}

			if adminID == "" {
				return nil
			}
			if a.auth == nil {
				return errors.New("auth.enabled が false のため管理者を作成できません")
			}
			err = a.auth.Register(ctx, adminID, adminPassword, auth.RoleAdmin)
			if errors.Is(err, auth.ErrAlreadyExists) {
				fmt.Fprintf(cmd.OutOrStdout(), "admin %q already exists\n", adminID)
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&adminID, "admin-id", "", "作成する管理者のログインID")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "", "管理者のパスワード")
	cmd.MarkFlagsRequiredTogether("admin-id", "admin-password")
	return cmd
}

func newExportCmd(configPath *string) *cobra.Command {
	var (
		sjis bool
		out  string
	)
	cmd := &cobra.Command{
		Use:   "export <sheet>",
		Short: "シートを CSV で書き出す",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			enc := sheets.EncodingUTF8
			if sjis {
				enc = sheets.EncodingShiftJIS
			}
			b, err := a.sheets.Export(ctx, args[0], enc)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(b)
				return err
			}
			return os.WriteFile(out, b, 0o644)
		},
	}
	cmd.Flags().BoolVar(&sjis, "sjis", false, "Shift_JIS (CP932) で書き出す")
	cmd.Flags().StringVarP(&out, "out", "o", "", "出力先（省略時は標準出力）")
	return cmd
}
