package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"aaf11/internal/config"
	"aaf11/internal/domain"
	"aaf11/internal/http/handlers"
	"aaf11/internal/media"
	"aaf11/internal/notify"
	"aaf11/internal/repos"
	"aaf11/internal/services"
)

const (
	notifyQueue     = 64
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	proofs, err := media.NewProofStore(cfg.MediaDir, cfg.MaxProofBytes)
	if err != nil {
		return err
	}
	log.Printf("[media] proofs -> %s", proofs.Dir())

	var sender notify.Sender = notify.LogSender{}
	if cfg.SMTP.Enabled() {
		sender = notify.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
		log.Printf("[notify] smtp %s:%d -> %d recipients", cfg.SMTP.Host, cfg.SMTP.Port, len(cfg.NotifyTo))
	} else {
		log.Printf("[notify] SMTP_HOST not set, notifications are logged only")
	}
	dispatcher, err := notify.NewDispatcher(sender, cfg.NotifyTo, notifyQueue)
	if err != nil {
		return err
	}

	deps := handlers.NewDeps(db, cfg, dispatcher, proofs)
	if err := bootstrapAdmin(deps.Auth, cfg.Admin); err != nil {
		return err
	}
	app := handlers.NewApp(cfg, deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("[http] listening on :%s", cfg.Port)
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Printf("[http] shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(sctx); err != nil {
			log.Printf("[http] shutdown: %v", err)
		}
		if err := dispatcher.Close(sctx); err != nil {
			log.Printf("[notify] pending notifications lost: %v", err)
		}
		return nil
	})
	return g.Wait()
}

func bootstrapAdmin(auth *services.AuthService, admin config.Admin) error {
	if admin.Username == "" || admin.Password == "" {
		log.Printf("[auth] ADMIN_USERNAME/ADMIN_PASSWORD not set, admin endpoints are unreachable")
		return nil
	}
	u, err := auth.EnsureUser(context.Background(), admin.Username, admin.Password, domain.RoleAdmin)
	if err != nil {
		return err
	}
	log.Printf("[auth] admin account %s ready", u.Username)
	return nil
}
