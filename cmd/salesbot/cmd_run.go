package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/6529-Collections/salesbot/internal/config"
	"github.com/6529-Collections/salesbot/internal/eth"
	"github.com/6529-Collections/salesbot/internal/publisher"
	"github.com/6529-Collections/salesbot/internal/rpc"
	"github.com/6529-Collections/salesbot/pkg/sales"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Watch the collection and publish sale announcements",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHandler(cmd.Context())
		},
	}
}

func runHandler(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg := config.Get()
	zap.L().Info("Starting salesbot...",
		zap.String("Version", Version),
		zap.String("contract", cfg.ContractAddress),
		zap.String("publisher", cfg.Publisher),
	)

	// Main context: canceled when we want to stop normal operation
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	pub, err := publisher.New(cfg)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, pub)
	if err != nil {
		_ = pub.Close()
		return err
	}

	go a.rates.Start(ctx)

	closeRpcServer := rpc.StartRPCServer(cfg.RPCPort, rpc.ServerDeps{
		Stats:    a.pipeline,
		Rates:    a.rates,
		Version:  Version,
		Currency: cfg.Currency,
	}, ctx)

	listener := sales.NewSalesListener(
		eth.NewTransferLogsWatcher(a.ethClient),
		a.pipeline,
		common.HexToAddress(cfg.ContractAddress),
		cfg.EventQueueSize,
	)
	listenerDone := make(chan error, 1)
	go func() {
		listenerDone <- listener.Listen(ctx)
	}()

	// Catch up to two signals: first for graceful, second to force
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var listenErr error
	select {
	case <-sigCh:
		zap.L().Info("Received shutdown signal, initiating graceful shutdown...")
		go func() {
			<-sigCh
			zap.L().Error("Received second signal, forcing shutdown")
			os.Exit(1)
		}()
		cancel()
		listenErr = <-listenerDone
	case listenErr = <-listenerDone:
		cancel()
	case <-parent.Done():
		cancel()
		listenErr = <-listenerDone
	}

	// Stop new requests on RPC, then release clients and stores
	closeRpcServer()
	a.Close()

	zap.L().Info("Shutdown complete", zap.Any("stats", a.pipeline.Stats()))
	_ = zap.L().Sync()
	return listenErr
}
