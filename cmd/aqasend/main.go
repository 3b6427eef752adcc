// Command aqasend is the file-transfer daemon: it serves the HTTP API
// (C9), runs the eviction engine (C7), and periodically persists the
// database (C2). Flag parsing and startup sequencing follow the
// teacher's cmd/aisnode entrypoint (flag.Parse, then hand off to a
// supervised run group), adapted to this spec's single-process,
// single-role daemon instead of aisnode's proxy/target role split.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/aqasend/aqasend/blob"
	"github.com/aqasend/aqasend/config"
	"github.com/aqasend/aqasend/daemon"
	"github.com/aqasend/aqasend/httpapi"
	"github.com/aqasend/aqasend/evict"
	"github.com/aqasend/aqasend/session"
	"github.com/aqasend/aqasend/snapshot"
	"github.com/aqasend/aqasend/store"
)

var (
	root          = flag.String("root", "./data", "directory holding the snapshot files and bucket directories")
	listenAddr    = flag.String("listen", ":8080", "address the HTTP API listens on")
	maxUploadSize = flag.Int64("max-upload-size", 1<<30, "maximum total bytes accepted across one multipart upload")
	evictInterval = flag.Duration("evict-interval", time.Hour, "how often the eviction sweep runs")
	saveInterval  = flag.Duration("save-interval", 5*time.Minute, "how often the database is snapshotted to disk")
	devMode       = flag.Bool("dev", false, "use a human-readable development logger instead of JSON")
)

func main() {
	flag.Parse()

	log, err := newLogger(*devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "aqasend: failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if err := run(log); err != nil {
		log.Error("aqasend exiting with error", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(log *zap.Logger) error {
	cfg := config.Default(*root)
	cfg.MaxUploadSize = *maxUploadSize
	cfg.EvictInterval = *evictInterval
	cfg.SaveInterval = *saveInterval
	cfgOwner := config.NewOwner(cfg)

	blobs := blob.New(cfg.Root, config.Buckets[:])
	if err := blobs.EnsureDirs(); err != nil {
		return fmt.Errorf("create bucket directories: %w", err)
	}

	db := store.New()
	if err := snapshot.Load(cfg.Root, db); err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	reg := prometheus.NewRegistry()

	sessions := session.New()
	server := httpapi.NewServer(db, blobs, sessions, cfgOwner, log, reg)

	httpSrv := &http.Server{
		Addr:    *listenAddr,
		Handler: server.Router(),
	}

	evictEngine := evict.New(db, blobs, cfg.EvictInterval, cfg.EvictStartLag, log, reg)

	group := daemon.New(log)
	group.Add(daemon.NewHTTPServer(httpSrv, 30*time.Second, log))
	group.Add(evictEngine)
	group.Add(daemon.NewSaver(server.Save, cfg.Root, cfg.SaveInterval, cfg.SaveStartLag, log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := group.Run(ctx)

	log.Info("final snapshot save on shutdown")
	if err := server.Save(cfg.Root); err != nil {
		log.Error("final snapshot save failed", zap.Error(err))
	}

	return runErr
}
