// Command rslv runs the RSLV identifier-resolution HTTP server: service
// info, introspection, and resolution routes plus a /healthz probe, backed
// by the SQLite catalog at RSLV_DB_CONNECTION_STRING.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/CDLUC3/rslv-go/internal/api"
	"github.com/CDLUC3/rslv-go/internal/buildinfo"
	"github.com/CDLUC3/rslv-go/internal/catalog"
	"github.com/CDLUC3/rslv-go/internal/config"
)

// metadataRefreshSchedule recomputes max_value_length periodically so an
// out-of-process writer that mutated piddef directly (e.g. a bulk NAAN
// ingestion script) doesn't leave the lookup bound stale until the next
// in-process Add/Update.
const metadataRefreshSchedule = "0 */6 * * *"

func main() {
	log.Printf("rslv %s (commit %s, built %s)", buildinfo.Version, buildinfo.GitCommit, buildinfo.BuildTime)

	if err := config.LoadDotEnv(".env"); err != nil {
		fatalf("load .env: %v", err)
	}
	cfg, err := config.LoadEnvConfig()
	if err != nil {
		fatalf("%v", err)
	}

	if cfg.LogFilename != "" {
		logFile, err := os.OpenFile(cfg.LogFilename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fatalf("open log file %s: %v", cfg.LogFilename, err)
		}
		defer logFile.Close()
		log.SetOutput(logFile)
	}

	db, err := catalog.OpenDB(cfg.DBConnectionString)
	if err != nil {
		fatalf("open catalog db: %v", err)
	}
	defer db.Close()

	if err := catalog.Migrate(db); err != nil {
		fatalf("migrate catalog: %v", err)
	}
	log.Println("Catalog schema up to date")

	store := catalog.NewStore(db)
	cat, err := catalog.NewCatalog(store)
	if err != nil {
		fatalf("build catalog cache: %v", err)
	}
	defer cat.Close()

	c := cron.New()
	if _, err := c.AddFunc(metadataRefreshSchedule, func() {
		if err := cat.RefreshMetadata(time.Now().UnixNano()); err != nil {
			log.Printf("scheduled RefreshMetadata error: %v", err)
		}
	}); err != nil {
		fatalf("schedule metadata refresh: %v", err)
	}
	c.Start()

	srv := api.NewServer(cat, cfg)

	serverErrCh := make(chan error, 1)
	go func() {
		log.Printf("rslv listening on %s:%d", cfg.Host, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err.Error() != "http: Server closed" {
			serverErrCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runtimeErr error
	select {
	case sig := <-quit:
		log.Printf("Received signal %s, shutting down...", sig)
	case err := <-serverErrCh:
		runtimeErr = err
		log.Printf("Received server runtime error (%v), shutting down...", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cronStopCtx := c.Stop()
	<-cronStopCtx.Done()
	log.Println("Metadata refresh cron stopped")

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")

	if runtimeErr != nil {
		fatalf("runtime server error: %v", runtimeErr)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal: "+format+"\n", args...)
	os.Exit(1)
}
