package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/meridianfi/txlifecycle/pkg/config"
	"github.com/meridianfi/txlifecycle/pkg/estimator"
	"github.com/meridianfi/txlifecycle/pkg/events"
	"github.com/meridianfi/txlifecycle/pkg/handlers"
	"github.com/meridianfi/txlifecycle/pkg/handlers/positions"
	"github.com/meridianfi/txlifecycle/pkg/handlers/stakes"
	"github.com/meridianfi/txlifecycle/pkg/handlers/transfers"
	"github.com/meridianfi/txlifecycle/pkg/ledger"
	"github.com/meridianfi/txlifecycle/pkg/lifecycle"
	"github.com/meridianfi/txlifecycle/pkg/provider"
	"github.com/meridianfi/txlifecycle/pkg/session"
	"github.com/meridianfi/txlifecycle/pkg/storage/leveldb"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Wallet provider.
	wallet, err := provider.NewEthProvider(ctx, cfg.RPCURL, cfg.SigningKey)
	if err != nil {
		log.Fatalf("failed to connect wallet provider: %v", err)
	}

	// Local record/position store.
	store, err := leveldb.Open(cfg.DataDir)
	if err != nil {
		log.Fatalf("failed to open local store: %v", err)
	}
	defer store.Close()

	// Backend record store clients: primary plus optional legacy fallback.
	primary := ledger.NewClient("primary", cfg.LedgerPrimaryURL)
	var fallback ledger.RecordWriter
	if cfg.LedgerLegacyURL != "" {
		fallback = ledger.NewClient("legacy", cfg.LedgerLegacyURL)
	}
	reconciler := ledger.NewReconciler(primary, fallback, store, logger)

	// Wallet session: created on connect, torn down on disconnect.
	sess := session.New(wallet.SenderAddress(), wallet)
	defer sess.Close()
	if err := sess.RefreshBalance(ctx); err != nil {
		logger.Warn("could not read initial balance", "error", err)
	}

	broadcaster := events.NewBroadcaster()

	controller := &lifecycle.Controller{
		Session:       sess,
		TransferRules: cfg.TransferRules,
		StakeRules:    cfg.StakeRules,
		StakingPool:   cfg.StakingPoolAddress,
		Estimator:     estimator.New(wallet, logger),
		Submitter:     lifecycle.NewSubmitter(wallet, store, broadcaster, logger),
		Reconciler:    reconciler,
		Positions:     store,
		Logger:        logger,
	}

	// Resume any reconciliation a previous run left unfinished.
	if synced, failed, err := reconciler.ResyncPending(ctx); err != nil {
		logger.Error("startup resync sweep failed", "error", err)
	} else if synced+failed > 0 {
		logger.Info("startup resync sweep", "synced", synced, "failed", failed)
	}

	router := handlers.NewRouter(handlers.Deps{
		Transfers: transfers.NewTransfersHandler(controller, store),
		Stakes:    stakes.NewStakesHandler(controller),
		Positions: positions.NewPositionsHandler(store),
		Logger:    logger,
	})

	logger.Info("starting coordinator", "port", cfg.HTTPPort, "account", sess.Address())
	if err := http.ListenAndServe(":"+cfg.HTTPPort, router); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
