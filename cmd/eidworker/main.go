// Code scaffolded in the teacher's goctl zrpc shape. Safe to edit.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	"google.golang.org/grpc"

	"github.com/entativa/eid/internal/cachekv"
	"github.com/entativa/eid/internal/config"
	"github.com/entativa/eid/internal/platform"
	"github.com/entativa/eid/internal/store"
	"github.com/entativa/eid/internal/syncengine"
	"github.com/entativa/eid/internal/syncengine/syncadminpb"
	"github.com/entativa/eid/internal/telemetry"
	"github.com/entativa/eid/third_party/cache"
	"github.com/entativa/eid/third_party/database"
)

// sweeperLeaseKey backs a simple Redis-based leader election: whichever
// eidworker replica wins the IncrWithTTL race each lease window runs the
// cron sweep, so a horizontally-scaled deployment doesn't double-reclaim
// leases or double-promote retries.
const sweeperLeaseKey = "eidworker:sweeper:leader"

var configFile = flag.String("f", "etc/eidworker.yaml", "the config file")

func main() {
	flag.Parse()

	var c config.WorkerConfig
	conf.MustLoad(*configFile, &c)

	logger, err := telemetry.NewLogger(false)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := database.NewPostgresConnection(c.Database)
	if err != nil {
		logger.Fatal(err.Error())
	}
	rds, err := cache.NewRedisConnection(c.Redis)
	if err != nil {
		logger.Fatal(err.Error())
	}
	kv := cachekv.New(rds)

	base := store.NewBase(db)
	syncJobs := store.NewSyncJobRepo(base)
	queue := syncengine.NewQueue(syncJobs)

	registry, err := platform.NewRegistry(c.Platforms)
	if err != nil {
		logger.Fatal(err.Error())
	}
	adapter := syncengine.NewHTTPAdapter(registry.Endpoints())
	backoff := syncengine.NewBackoff(c.Sync.BackoffBaseMs, c.Sync.BackoffCapMs)
	worker := syncengine.NewWorker(c.Name, syncJobs, queue, adapter, backoff, c.Sync.WorkerConcurrency, c.Sync.WorkerConcurrency*2)

	const tickInterval = 2 * time.Second
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper, err := syncengine.NewSweeper(syncJobs, "*/30 * * * * *")
	if err != nil {
		logger.Fatal(err.Error())
	}
	const sweeperLeaseTTL = 45 * time.Second // outlives the sweep cron's 30s cadence so leadership doesn't flap
	if won, lockErr := kv.IncrWithTTL(ctx, sweeperLeaseKey, sweeperLeaseTTL); lockErr == nil && won == 1 {
		sweeper.Start()
		defer sweeper.Stop()
	} else {
		logger.Info("another replica holds the sweeper lease, skipping cron start")
	}

	go worker.Run(ctx, tickInterval)

	admin := syncengine.NewAdmin(syncJobs, queue)
	grpcServer := grpc.NewServer()
	syncadminpb.Register(grpcServer, syncadminpb.NewServer(admin))

	lis, err := net.Listen("tcp", c.AdminRpc.ListenOn)
	if err != nil {
		logger.Fatal(err.Error())
	}

	go func() {
		fmt.Printf("Starting sync admin rpc at %s...\n", c.AdminRpc.ListenOn)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error(err.Error())
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logx.Info("shutting down sync worker")
	grpcServer.GracefulStop()
}
