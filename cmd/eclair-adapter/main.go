package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/lnsettle/eclair-adapter/internal/config"
	"github.com/lnsettle/eclair-adapter/internal/core/application"
	"github.com/lnsettle/eclair-adapter/internal/infrastructure/db"
	"github.com/lnsettle/eclair-adapter/internal/infrastructure/eclair"
	"github.com/lnsettle/eclair-adapter/internal/infrastructure/pubsub"
	"github.com/lnsettle/eclair-adapter/internal/infrastructure/rabbitmq"
	log "github.com/sirupsen/logrus"
)

// nolint:all
var (
	version = "dev"
	commit  = "none"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	log.SetLevel(log.Level(cfg.LogLevel))
	log.Infof("starting eclair-adapter %s (%s)...", version, commit)

	repoManager, err := db.NewService(db.ServiceConfig{
		DbType:  cfg.DbType,
		Datadir: cfg.Datadir,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to open record store")
	}
	defer repoManager.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := pubsub.NewBus()
	lnSvc := eclair.NewService(eclair.NewClient(cfg), cfg)

	if info, err := lnSvc.GetInfo(ctx); err != nil {
		log.WithError(err).Warn("eclair node not reachable yet")
	} else {
		log.Infof(
			"connected to eclair %s (node %s, block height %d)",
			info.Version, info.NodeID, info.BlockHeight,
		)
	}

	recorder := application.NewRecorder(bus, repoManager)
	go recorder.Start(ctx)

	worker := rabbitmq.NewWorker(rabbitmq.WorkerConfig{
		URL:           cfg.AmqpUrl,
		Queue:         cfg.AmqpQueue,
		RequeueFailed: cfg.AmqpRequeueFailed,
	}, bus)
	workerErr := make(chan error, 1)
	go func() {
		workerErr <- worker.Run(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("shutting down...")
	case err := <-workerErr:
		// without the bridge the adapter is blind to settlements, so
		// die and let the supervisor restart the process
		if err != nil && !errors.Is(err, context.Canceled) {
			cancel()
			repoManager.Close()
			log.WithError(err).Fatal("event worker stopped")
		}
	}
}
