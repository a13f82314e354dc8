package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
	"github.com/shelfpress/shelfpress/pkg/auth"
	"github.com/shelfpress/shelfpress/pkg/config"
	"github.com/shelfpress/shelfpress/pkg/database"
	"github.com/shelfpress/shelfpress/pkg/migrations"
	"github.com/shelfpress/shelfpress/pkg/server"
	"github.com/shelfpress/shelfpress/pkg/version"
)

const sessionPruneInterval = time.Hour

func main() {
	ctx := context.Background()
	log := logger.New()

	log.Info("starting shelfpress", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	if err := initUploadDir(cfg.UploadDir); err != nil {
		log.Err(err).Fatal("upload directory error")
	}
	log.Info("upload directory initialized", logger.Data{"path": cfg.UploadDir})

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	group, err := migrations.BringUpToDate(ctx, db)
	if err != nil {
		log.Err(err).Fatal("migrations error")
	}
	if group.ID == 0 {
		log.Info("no new migrations to run")
	} else {
		log.Info("migrated to new group", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
	}

	authService := auth.NewService(db, cfg.SessionTTL)
	created, err := authService.EnsureSeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName)
	if err != nil {
		log.Err(err).Fatal("admin seed error")
	}
	if created {
		log.Info("seeded initial admin user", logger.Data{"email": cfg.AdminEmail})
	}

	srv, err := server.New(cfg, db)
	if err != nil {
		log.Err(err).Fatal("server error")
	}

	graceful := signals.Setup()

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort)
		lc := net.ListenConfig{}
		listener, err := lc.Listen(ctx, "tcp", addr)
		if err != nil {
			log.Err(err).Fatal("failed to bind port")
		}

		log.Info("server started", logger.Data{"port": listener.Addr().(*net.TCPAddr).Port})

		err = srv.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Fatal("server stopped")
		}
		log.Info("server stopped")
	}()

	pruneDone := make(chan struct{})
	go pruneSessions(ctx, log, authService, pruneDone)

	<-graceful
	log.Info("starting graceful shutdown")

	close(pruneDone)

	err = srv.Shutdown(ctx)
	if err != nil {
		log.Err(err).Error("server shutdown error")
	}
	log.Info("server shutdown")

	err = db.Close()
	if err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("database closed")
}

// initUploadDir creates the cover upload directory and verifies write
// permissions.
func initUploadDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create upload directory: %s", dir)
	}

	testFile := dir + "/.write_test"
	f, err := os.Create(testFile)
	if err != nil {
		return errors.Wrapf(err, "upload directory is not writable: %s", dir)
	}
	f.Close()

	if err := os.Remove(testFile); err != nil {
		return errors.Wrapf(err, "failed to clean up write test file: %s", testFile)
	}

	return nil
}

// pruneSessions periodically deletes expired sessions until done is closed.
func pruneSessions(ctx context.Context, log logger.Logger, authService *auth.Service, done <-chan struct{}) {
	ticker := time.NewTicker(sessionPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			count, err := authService.DeleteExpiredSessions(ctx)
			if err != nil {
				log.Err(err).Error("session prune error")
				continue
			}
			if count > 0 {
				log.Info("pruned expired sessions", logger.Data{"count": count})
			}
		}
	}
}
