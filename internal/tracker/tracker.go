// Package tracker runs the fetch, holdings and analysis pipeline for up to
// three wallets at once and keeps the latest reports for the live panels.
package tracker

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"wallet-flow-backend/internal/models"
	"wallet-flow-backend/internal/stats"
	"wallet-flow-backend/internal/utils"
)

const component = "tracker"

// Fetcher is the indexer surface the tracker depends on
type Fetcher interface {
	FetchTransactions(ctx context.Context, wallet string, now time.Time) ([]models.Transaction, error)
	FetchHoldings(ctx context.Context, wallet string) (*models.Holdings, error)
}

// Config holds tracker settings
type Config struct {
	MaxWallets    int           `toml:"max_wallets"`
	Concurrency   int           `toml:"concurrency"`
	WalletTimeout time.Duration `toml:"wallet_timeout"`
}

// DefaultConfig returns the tracker defaults
func DefaultConfig() Config {
	return Config{
		MaxWallets:    3,
		Concurrency:   3,
		WalletTimeout: 60 * time.Second,
	}
}

// ReportError is the JSON form of a per-wallet failure
type ReportError struct {
	Type      utils.ErrorType `json:"type"`
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	Retryable bool            `json:"retryable"`
}

// WalletReport is the outcome of one wallet's pass. Empty is set when the
// wallet had no activity inside the daily window.
type WalletReport struct {
	Wallet    string                `json:"wallet"`
	Analysis  *stats.WalletAnalysis `json:"analysis,omitempty"`
	Holdings  *models.Holdings      `json:"holdings,omitempty"`
	Empty     bool                  `json:"empty"`
	Error     *ReportError          `json:"error,omitempty"`
	FetchedAt time.Time             `json:"fetchedAt"`
	Duration  time.Duration         `json:"durationNs"`
}

// Run is one Track invocation over a set of wallets
type Run struct {
	ID        string          `json:"id"`
	StartedAt time.Time       `json:"startedAt"`
	Demo      bool            `json:"demo"`
	Reports   []*WalletReport `json:"reports"`
	Overlap   Overlap         `json:"overlap"`
}

// Tracker orchestrates per-wallet passes
type Tracker struct {
	config   Config
	fetcher  Fetcher
	analyzer *stats.Analyzer
	store    *Store
	demo     bool
	now      func() time.Time
}

// New creates a tracker with its own session store
func New(cfg Config, fetcher Fetcher, analyzer *stats.Analyzer) *Tracker {
	defaults := DefaultConfig()
	if cfg.MaxWallets <= 0 {
		cfg.MaxWallets = defaults.MaxWallets
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaults.Concurrency
	}
	if cfg.WalletTimeout <= 0 {
		cfg.WalletTimeout = defaults.WalletTimeout
	}
	return &Tracker{
		config:   cfg,
		fetcher:  fetcher,
		analyzer: analyzer,
		store:    NewStore(),
		now:      time.Now,
	}
}

// WithFetcher returns a tracker sharing this tracker's analyzer and clock
// but fetching through f into its own store. Runs through it are flagged as
// demo runs when demo is set.
func (t *Tracker) WithFetcher(f Fetcher, demo bool) *Tracker {
	clone := *t
	clone.fetcher = f
	clone.demo = demo
	clone.store = NewStore()
	return &clone
}

// Demo reports whether runs through this tracker use synthetic data
func (t *Tracker) Demo() bool {
	return t.demo
}

// SetClock overrides the wall clock used for analysis passes
func (t *Tracker) SetClock(now func() time.Time) {
	if now != nil {
		t.now = now
	}
}

// Now returns the tracker's current time
func (t *Tracker) Now() time.Time {
	return t.now()
}

// Store returns the session store
func (t *Tracker) Store() *Store {
	return t.store
}

// Analyzer returns the analyzer used for passes and live panels
func (t *Tracker) Analyzer() *stats.Analyzer {
	return t.analyzer
}

// ValidateWallets trims, drops blanks, de-duplicates and validates the
// requested wallets, keeping request order.
func (t *Tracker) ValidateWallets(wallets []string) ([]string, error) {
	seen := make(map[string]struct{}, len(wallets))
	out := make([]string, 0, len(wallets))

	for _, raw := range wallets {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		wallet, err := utils.NormalizeWallet(raw)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[wallet]; dup {
			continue
		}
		seen[wallet] = struct{}{}
		out = append(out, wallet)
	}

	if len(out) == 0 {
		return nil, utils.NewAppError(utils.ErrorTypeValidation, "NO_WALLETS", "at least one wallet address is required", component)
	}
	if len(out) > t.config.MaxWallets {
		return nil, utils.NewAppError(utils.ErrorTypeValidation, "TOO_MANY_WALLETS", "too many wallets requested", component).
			WithContext("max", t.config.MaxWallets).
			WithContext("requested", len(out))
	}
	return out, nil
}

// Track validates wallets and runs every wallet's pass concurrently. A
// failing wallet is recorded on its own report and never aborts the others;
// only validation errors are returned.
func (t *Tracker) Track(ctx context.Context, wallets []string) (*Run, error) {
	valid, err := t.ValidateWallets(wallets)
	if err != nil {
		return nil, err
	}

	now := t.now()
	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: now,
		Demo:      t.demo,
		Reports:   make([]*WalletReport, len(valid)),
	}

	utils.TrackerLogger.Info("Run %s: tracking %d wallet(s)", run.ID, len(valid))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.config.Concurrency)
	for i, wallet := range valid {
		i, wallet := i, wallet
		g.Go(func() error {
			run.Reports[i] = t.trackWallet(gctx, wallet, now)
			return nil
		})
	}
	_ = g.Wait()

	overlap, err := computeOverlap(run.Reports)
	if err != nil {
		utils.LogError(utils.WrapError(err, utils.ErrorTypeInternal, "OVERLAP_FAILED", "counterparty overlap failed", component), utils.TrackerLogger)
	}
	run.Overlap = overlap

	for _, report := range run.Reports {
		t.store.Put(report)
	}
	t.store.SetLastRun(run)

	return run, nil
}

func (t *Tracker) trackWallet(ctx context.Context, wallet string, now time.Time) *WalletReport {
	start := time.Now()
	report := &WalletReport{Wallet: wallet, FetchedAt: now}
	defer func() { report.Duration = time.Since(start) }()

	ctx, cancel := context.WithTimeout(ctx, t.config.WalletTimeout)
	defer cancel()

	txs, err := t.fetcher.FetchTransactions(ctx, wallet, now)
	if err != nil {
		report.Error = toReportError(err)
		utils.LogError(err, utils.TrackerLogger, map[string]interface{}{"wallet": wallet})
		return report
	}

	holdings, err := t.fetcher.FetchHoldings(ctx, wallet)
	if err != nil {
		// holdings only feed display labels; the flow analysis still runs
		utils.TrackerLogger.Warn("Holdings unavailable for %s: %v", utils.ShortenAddress(wallet), err)
	}
	report.Holdings = holdings

	report.Analysis = t.analyzer.Analyze(wallet, txs, now, holdings.TokenLabels())
	report.Empty = report.Analysis.IsEmpty()

	utils.TrackerLogger.Info("Analyzed %s: %d txs, %d counterparties, empty=%v",
		utils.ShortenAddress(wallet), len(txs), report.Analysis.Totals.UniqueWallets, report.Empty)
	return report
}

func toReportError(err error) *ReportError {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return &ReportError{
			Type:      appErr.Type,
			Code:      appErr.Code,
			Message:   appErr.Message,
			Retryable: appErr.Retryable,
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ReportError{Type: utils.ErrorTypeTimeout, Code: "WALLET_TIMEOUT", Message: err.Error(), Retryable: true}
	}
	return &ReportError{Type: utils.ErrorTypeInternal, Code: "UNKNOWN", Message: err.Error()}
}
