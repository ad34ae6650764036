package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/0xtarunkm/star-fee-distribution/internal/custody/stub"
	"github.com/0xtarunkm/star-fee-distribution/internal/distribution"
	"github.com/0xtarunkm/star-fee-distribution/internal/domain"
	"github.com/0xtarunkm/star-fee-distribution/internal/guard"
	"github.com/0xtarunkm/star-fee-distribution/internal/keys"
	"github.com/0xtarunkm/star-fee-distribution/internal/logger"
	"github.com/0xtarunkm/star-fee-distribution/internal/storage"
	"github.com/0xtarunkm/star-fee-distribution/internal/storage/memory"
	"github.com/0xtarunkm/star-fee-distribution/internal/storage/migrations"
	pgstore "github.com/0xtarunkm/star-fee-distribution/internal/storage/postgres"
)

// The crank is permissionless: any run advances the day wherever the
// cursor left off, and a rerun after a crash resumes without double pay.
func main() {
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	position := flag.String("position", "", "Fee position to claim from")
	creatorWallet := flag.String("creator-wallet", "", "Creator wallet receiving the day-close remainder")
	baseMint := flag.String("base-mint", "So11111111111111111111111111111111111111112", "Base asset mint")
	quoteMint := flag.String("quote-mint", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "Quote asset mint")
	pageSize := flag.Int("page-size", domain.DistributionBatchSize, "Investors per page")
	verbose := flag.Bool("verbose", false, "Enable debug logging")

	flag.Parse()

	_ = godotenv.Load()
	if *postgresDSN == "" {
		*postgresDSN = os.Getenv("POSTGRES_DSN")
	}

	log := logger.New(*verbose)

	if *postgresDSN == "" || *position == "" || *creatorWallet == "" {
		log.Error("missing required flags: -postgres-dsn, -position, -creator-wallet")
		os.Exit(1)
	}

	ctx := context.Background()

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

	store := pgstore.NewLedgerStore(pool)

	baseVault := keys.FeeVaultAddress(*baseMint)
	quoteVault := keys.FeeVaultAddress(*quoteMint)
	vaults := stub.NewVaults()
	claimer := stub.NewFeeClaimer(vaults, baseVault, quoteVault)
	g := guard.New(vaults, claimer, baseVault, quoteVault, log)

	engine := distribution.NewEngine(store, memory.NewEventStore(), vaults, g, quoteVault, clockwork.NewRealClock(), log)

	if err := runOnce(ctx, log, engine, store, *position, *creatorWallet, *pageSize); err != nil {
		log.Error("crank run failed", "error", err)
		os.Exit(1)
	}
}

// runOnce drives one full day: claim, open, page through every investor,
// close. Already-processed pages are skipped so a rerun is harmless.
func runOnce(ctx context.Context, log *slog.Logger, engine *distribution.Engine, store storage.LedgerStore, position, creatorWallet string, pageSize int) error {
	claim, err := engine.ClaimFees(ctx, position)
	switch {
	case errors.Is(err, domain.ErrNoFeesToClaim):
		log.Info("nothing to claim, continuing with vault balance")
	case err != nil:
		return fmt.Errorf("claim fees: %w", err)
	default:
		log.Info("fees claimed", "quote_claimed", claim.QuoteClaimed)
	}

	state, err := engine.StartOrContinueDay(ctx)
	if errors.Is(err, domain.ErrNoFeesToClaim) {
		log.Info("quote vault empty, nothing to distribute")
		return nil
	}
	if err != nil {
		return fmt.Errorf("start day: %w", err)
	}
	log.Info("day open", "day", state.CurrentDay, "cursor", state.PaginationCursor,
		"investor_fee_quote", state.InvestorFeeQuoteToday)

	var (
		page  uint32
		after string
	)
	for {
		investors, err := listPage(ctx, store, after, pageSize)
		if err != nil {
			return fmt.Errorf("list investors page %d: %w", page, err)
		}
		isFinal := len(investors) < pageSize

		if page < state.PaginationCursor {
			// Page was processed by an earlier run of this day.
			log.Info("skipping processed page", "page", page)
		} else {
			for _, investor := range investors {
				payout, err := engine.DistributeToInvestor(ctx, investor)
				if errors.Is(err, domain.ErrDailyCapExceeded) {
					log.Warn("daily cap exhausted, stopping payouts", "page", page)
					break
				}
				if err != nil {
					return fmt.Errorf("distribute to %s: %w", investor, err)
				}
				log.Info("investor paid", "investor", investor,
					"transferred", payout.Transferred, "withheld", payout.Withheld)
			}

			if _, err := engine.ProcessPage(ctx, page, uint32(len(investors)), isFinal); err != nil {
				return fmt.Errorf("process page %d: %w", page, err)
			}
		}

		if isFinal {
			break
		}
		after = investors[len(investors)-1]
		page++
	}

	remainder, err := engine.CloseDay(ctx, creatorWallet)
	if err != nil {
		return fmt.Errorf("close day: %w", err)
	}
	log.Info("day closed", "creator_remainder", remainder)
	return nil
}

// listPage reads one page of investor addresses in cursor order.
func listPage(ctx context.Context, store storage.LedgerStore, after string, limit int) ([]string, error) {
	var investors []string
	err := store.InTx(ctx, func(tx storage.LedgerTx) error {
		records, err := tx.ListDepositors(ctx, after, limit)
		if err != nil {
			return err
		}
		for _, r := range records {
			investors = append(investors, r.Investor)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return investors, nil
}
