package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"library-backend/internal/docs"
	"library-backend/internal/platform/config"
	"library-backend/internal/platform/db"
	"library-backend/internal/platform/observability"
	"library-backend/internal/server"
)

const shutdownTimeout = 10 * time.Second

func defaultConfigPath() string {
	if p := os.Getenv("LIBRARY_CONFIG"); p != "" {
		return p
	}
	return config.DefaultPath
}

// bootstrap loads .env and the config file, then opens the database.
func bootstrap() (*config.Config, *logrus.Logger, *sql.DB, error) {
	// .env は無くてもよい
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.Version == "" {
		cfg.Version = version
	}
	log := observability.NewLogger(cfg.LogLevel, cfg.IsRelease())

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, nil, nil, err
	}
	log.WithFields(logrus.Fields{"mode": cfg.Mode, "db": cfg.DB.DBName}).Info("connected to database")
	return cfg, log, conn, nil
}

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, conn, err := bootstrap()
			if err != nil {
				return err
			}
			defer conn.Close()

			if migrate {
				if err := db.Migrate(cmd.Context(), conn); err != nil {
					return err
				}
				log.Info("schema up to date")
			}
			return serve(cfg, log, conn)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "create missing tables before serving")
	return cmd
}

func serve(cfg *config.Config, log *logrus.Logger, conn *sql.DB) error {
	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}
	docs.SwaggerInfo.Version = cfg.Version

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.New(cfg, log, conn),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// TLS設定（証明書未指定なら平文HTTP）
	certFile, keyFile := certPaths(cfg)
	errCh := make(chan error, 1)
	go func() {
		var err error
		if certFile != "" {
			log.WithField("addr", srv.Addr).Info("listening (tls)")
			err = srv.ListenAndServeTLS(certFile, keyFile)
		} else {
			log.WithField("addr", srv.Addr).Info("listening")
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

// certPaths resolves certificate files under config/tls/<mode>/. Empty names
// mean plain HTTP, typically behind a TLS-terminating proxy.
func certPaths(cfg *config.Config) (string, string) {
	if cfg.Certificate.Cert == "" || cfg.Certificate.Key == "" {
		return "", ""
	}
	dir := filepath.Join("config", "tls", cfg.Mode)
	return filepath.Join(dir, cfg.Certificate.Cert), filepath.Join(dir, cfg.Certificate.Key)
}
