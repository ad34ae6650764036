package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/0xtarunkm/star-fee-distribution/internal/custody/stub"
	"github.com/0xtarunkm/star-fee-distribution/internal/distribution"
	"github.com/0xtarunkm/star-fee-distribution/internal/guard"
	"github.com/0xtarunkm/star-fee-distribution/internal/keys"
	"github.com/0xtarunkm/star-fee-distribution/internal/ledger"
	"github.com/0xtarunkm/star-fee-distribution/internal/logger"
	"github.com/0xtarunkm/star-fee-distribution/internal/server"
	"github.com/0xtarunkm/star-fee-distribution/internal/solana"
	"github.com/0xtarunkm/star-fee-distribution/internal/storage"
	chstore "github.com/0xtarunkm/star-fee-distribution/internal/storage/clickhouse"
	"github.com/0xtarunkm/star-fee-distribution/internal/storage/memory"
	"github.com/0xtarunkm/star-fee-distribution/internal/storage/migrations"
	pgstore "github.com/0xtarunkm/star-fee-distribution/internal/storage/postgres"
)

func main() {
	bind := flag.String("bind", "127.0.0.1", "HTTP bind address")
	port := flag.Int("port", 8080, "HTTP port")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (empty for in-memory ledger)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string for event history (empty to keep events in memory)")
	baseMint := flag.String("base-mint", "So11111111111111111111111111111111111111112", "Base asset mint")
	quoteMint := flag.String("quote-mint", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "Quote asset mint")
	wsEndpoint := flag.String("ws-endpoint", "", "Solana WebSocket endpoint for vault monitoring (empty to disable)")
	rpcEndpoint := flag.String("rpc-endpoint", "", "Solana JSON-RPC endpoint for polling vault balances (empty to disable)")
	pollInterval := flag.Duration("poll-interval", solana.DefaultPollInterval, "Vault balance polling cadence")
	verbose := flag.Bool("verbose", false, "Enable debug logging")

	flag.Parse()

	// .env is optional; flags win over the environment.
	_ = godotenv.Load()
	if *postgresDSN == "" {
		*postgresDSN = os.Getenv("POSTGRES_DSN")
	}
	if *clickhouseDSN == "" {
		*clickhouseDSN = os.Getenv("CLICKHOUSE_DSN")
	}
	if *wsEndpoint == "" {
		*wsEndpoint = os.Getenv("SOLANA_WS_ENDPOINT")
	}
	if *rpcEndpoint == "" {
		*rpcEndpoint = os.Getenv("SOLANA_RPC_ENDPOINT")
	}

	log := logger.New(*verbose)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store storage.LedgerStore
	if *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			log.Error("failed to run postgres migrations", "error", err)
			os.Exit(1)
		}
		store = pgstore.NewLedgerStore(pool)
		log.Info("using postgres ledger store")
	} else {
		store = memory.NewLedgerStore()
		log.Info("using in-memory ledger store")
	}

	var events storage.EventStore
	if *clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			log.Error("failed to set up clickhouse", "error", err)
			os.Exit(1)
		}
		defer conn.Close()

		events = chstore.NewEventStore(conn)
		log.Info("using clickhouse event store")
	} else {
		events = memory.NewEventStore()
		log.Info("using in-memory event store")
	}

	baseVault := keys.FeeVaultAddress(*baseMint)
	quoteVault := keys.FeeVaultAddress(*quoteMint)

	vaults := stub.NewVaults()
	claimer := stub.NewFeeClaimer(vaults, baseVault, quoteVault)
	creator := stub.NewPositionCreator()
	g := guard.New(vaults, claimer, baseVault, quoteVault, log)

	clock := clockwork.NewRealClock()
	ledgerSvc := ledger.NewService(store, events, vaults, clock, log)
	engine := distribution.NewEngine(store, events, vaults, g, quoteVault, clock, log)

	srv := server.NewServer(*bind, *port, ledgerSvc, engine, creator, log)

	// Optional JSON-RPC balance polling for the vault gauges. Runs
	// alongside the websocket monitor and repairs missed notifications.
	if *rpcEndpoint != "" {
		rpc := solana.NewHTTPClient(*rpcEndpoint)
		poller := solana.NewVaultPoller(solana.NewReadOnlyVaults(rpc), *pollInterval, clock, log)
		go poller.Run(ctx, baseVault, quoteVault)
		log.Info("vault poller started", "endpoint", *rpcEndpoint, "interval", *pollInterval)
	}

	// Optional on-chain vault monitoring for the balance gauges.
	if *wsEndpoint != "" {
		ws, err := solana.NewWSClient(ctx, *wsEndpoint, nil)
		if err != nil {
			log.Error("failed to connect vault watcher", "error", err)
			os.Exit(1)
		}
		defer ws.Close()

		monitor := solana.NewVaultMonitor(ws, log)
		if err := monitor.Watch(ctx, baseVault, quoteVault); err != nil {
			log.Error("failed to start vault monitor", "error", err)
			os.Exit(1)
		}
		defer monitor.Wait()
		log.Info("vault monitor started", "base_vault", baseVault, "quote_vault", quoteVault)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received signal, shutting down", "signal", sig.String())
	case err := <-errCh:
		log.Error("http server failed", "error", err)
		os.Exit(1)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
}
