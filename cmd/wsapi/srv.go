package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spitzerl/workshop-b3-api/internal/blobstore"
	"github.com/spitzerl/workshop-b3-api/internal/config"
	"github.com/spitzerl/workshop-b3-api/internal/server"
	"github.com/spitzerl/workshop-b3-api/internal/store"
)

const shutdownTimeout = 10 * time.Second

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the wsapi HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.APIURL)
			if err != nil {
				return err
			}

			srv, closeFn, err := openServer(cfg, addr, logger)
			if err != nil {
				return err
			}
			defer closeFn()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return <-errCh
		},
	}
}

// openServer opens the store and upload directory named by cfg and builds a
// server around them. The returned func closes the store.
func openServer(cfg *config.Config, addr string, logger *slog.Logger) (*server.Server, func(), error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config not initialized")
	}
	if cfg.DBPath == "" {
		return nil, nil, fmt.Errorf("db path is required")
	}
	if cfg.Storage.UploadDir == "" {
		return nil, nil, fmt.Errorf("upload dir is required")
	}

	logger.Info("opening database", "path", cfg.DBPath)
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}

	disk, err := blobstore.NewLocalDisk(cfg.Storage.UploadDir, logger)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	logger.Info("serving uploads", "dir", disk.Root(), "retain_history", cfg.Storage.RetainHistory)

	srv := server.New(addr, st, disk, logger, server.OptionsFromConfig(cfg.Storage))
	return srv, func() { st.Close() }, nil
}
