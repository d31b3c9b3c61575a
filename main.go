package main

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"pulse-backend/api"
	"pulse-backend/chain"
	"pulse-backend/config"
	"pulse-backend/gateway"
	"pulse-backend/inventory"
	"pulse-backend/monitor"
	"pulse-backend/purchase"
	"pulse-backend/schedule"
	"pulse-backend/trigger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := newLogger(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := chain.Dial(cfg.RPCURL)
	if err != nil {
		log.Fatal("node dial failed", zap.String("rpc", cfg.RPCURL), zap.Error(err))
	}
	defer client.Close()

	nftAddr := common.HexToAddress(cfg.NFTAddress)
	minterAddr := common.HexToAddress(cfg.MinterAddress)
	tokenAddr := common.HexToAddress(cfg.TokenAddress)

	nft, err := chain.NewPulseNFT(nftAddr, client.Backend())
	if err != nil {
		log.Fatal("nft binding failed", zap.Error(err))
	}
	minter, err := chain.NewPulseMinter(minterAddr, client.Backend())
	if err != nil {
		log.Fatal("minter binding failed", zap.Error(err))
	}
	token, err := chain.NewPulseToken(tokenAddr, client.Backend())
	if err != nil {
		log.Fatal("token binding failed", zap.Error(err))
	}

	store := trigger.NewStore(cfg.RedisAddress, cfg.RedisPassword, cfg.TriggerKey)
	defer func() { _ = store.Close() }()

	hub := api.NewEventHub()

	resolver := gateway.NewResolver(cfg.Gateways, cfg.GatewayTimeout, log.Named("gateway"))
	reader := inventory.NewReader(nft, minter, resolver, minterAddr, nftAddr, cfg.SyncWorkers, log.Named("inventory"))
	cell := inventory.NewCell()
	runner := inventory.NewRunner(reader, cell, cfg.SyncInterval, log.Named("inventory"))

	unsubscribe := broadcastSnapshots(cell, hub)
	defer unsubscribe()

	mon := monitor.New(client, store, cfg.ProbeInterval, log.Named("monitor"), func(s monitor.Status) {
		hub.Broadcast(api.Event{Type: "status", Data: s.String()})
	})

	countdown := schedule.NewTicker(store, mon, cfg.CountdownInterval, log.Named("schedule"), func(text string) {
		hub.Broadcast(api.Event{Type: "countdown", Data: text})
	})

	var wallet purchase.Wallet
	if cfg.WalletKey != "" {
		keyed, err := purchase.NewKeyedWallet(cfg.WalletKey, big.NewInt(cfg.ChainID))
		if err != nil {
			log.Fatal("wallet setup failed", zap.Error(err))
		}
		wallet = keyed
		log.Info("wallet configured", zap.String("address", keyed.Address().Hex()))
	} else {
		log.Warn("no wallet configured; purchases disabled")
	}

	orchestrator := purchase.NewOrchestrator(nft, minter, token, client, wallet, minterAddr,
		log.Named("purchase"), runner.Kick)

	server := api.NewServer(cell, mon, countdown, orchestrator.Buy,
		minterAddr, hub, log.Named("api"))

	var wg sync.WaitGroup
	for _, task := range []func(context.Context){runner.Run, mon.Run, countdown.Run} {
		wg.Add(1)
		go func(run func(context.Context)) {
			defer wg.Done()
			run(ctx)
		}(task)
	}

	httpServer := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("pulse backend listening", zap.String("addr", cfg.ListenAddress))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http server failed", zap.Error(err))
	}

	stop()
	wg.Wait()
	log.Info("pulse backend stopped")
}

// broadcastSnapshots forwards accepted inventory snapshots to SSE clients.
func broadcastSnapshots(cell *inventory.Cell, hub *api.EventHub) func() {
	snaps, cancel := cell.Subscribe()
	go func() {
		for snap := range snaps {
			hub.Broadcast(api.Event{Type: "inventory", Data: snap})
		}
	}()
	return cancel
}

func newLogger(level, format string) *zap.Logger {
	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	if parsed, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = parsed
	}
	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return log
}
