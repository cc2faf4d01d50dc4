package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/celerix-dev/celerix-attach/internal/api"
	"github.com/celerix-dev/celerix-attach/internal/attach"
	"github.com/celerix-dev/celerix-attach/internal/auth"
	"github.com/celerix-dev/celerix-attach/internal/config"
	"github.com/celerix-dev/celerix-attach/internal/server"
	"github.com/celerix-dev/celerix-attach/internal/store"
	"github.com/celerix-dev/celerix-attach/internal/tasks"
	"github.com/celerix-dev/celerix-attach/internal/vault"
)

func main() {
	fmt.Println("Starting Celerix Attach Daemon...")

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 2. Open the database
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// 3. Seed the admin account on first start
	created, err := auth.Bootstrap(context.Background(), db, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		log.Fatalf("Failed to bootstrap admin user: %v", err)
	}
	if created {
		fmt.Printf("Created admin user %s.\n", cfg.AdminUsername)
	}

	// 4. Wire handlers
	if err := os.MkdirAll(cfg.StaticDir, 0755); err != nil {
		log.Fatalf("Failed to create static dir: %v", err)
	}
	h := &api.Handler{
		Store: db,
		Attach: attach.New(attach.Options{
			Root:         cfg.StaticDir,
			MaxSize:      cfg.MaxFileSize(),
			PhotoFormats: cfg.PhotoFormats,
			FileFormats:  cfg.FileFormats,
		}),
	}
	runner := tasks.NewRunner()
	srv := server.New(server.NewRouter(h, runner, cfg.MaxFileSize()))

	// 5. Setup TLS
	if !cfg.DisableTLS {
		fmt.Println("Generating self-signed certificate...")
		cert, err := vault.GenerateSelfSignedCert()
		if err != nil {
			log.Fatalf("Failed to generate TLS certificate: %v", err)
		}
		srv.SetCertificate(cert)
		fmt.Println("TLS encryption enabled.")
	} else {
		fmt.Println("TLS encryption disabled (CELERIX_DISABLE_TLS=true).")
	}

	// 6. Serve until a signal arrives, then drain
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fmt.Printf("HTTP API listening on %s\n", cfg.HTTPAddr)
		return srv.Listen(cfg.HTTPAddr)
	})
	g.Go(func() error {
		<-gctx.Done()
		fmt.Println("\nShutdown signal received. Finishing pending requests...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := srv.Stop(shutdownCtx)
		runner.Wait()
		fmt.Println("Background tasks complete. Exiting.")
		return err
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("HTTP server failed: %v", err)
	}
}
