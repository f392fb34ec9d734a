package tracker

import (
	"sort"
	"sync"
)

// Store keeps the latest report per wallet for the lifetime of the process.
// Window and hourly panels are recomputed from the stored raw events.
type Store struct {
	reports   map[string]*WalletReport
	reportsMu sync.RWMutex

	lastRun   *Run
	lastRunMu sync.RWMutex
}

// NewStore creates an empty session store
func NewStore() *Store {
	return &Store{
		reports: make(map[string]*WalletReport),
	}
}

// === Wallet reports ===

// Put replaces the stored report for the report's wallet. A failed report
// keeps the previous analysis and holdings so live panels stay available.
func (s *Store) Put(report *WalletReport) {
	if report == nil {
		return
	}
	s.reportsMu.Lock()
	defer s.reportsMu.Unlock()

	if prev, ok := s.reports[report.Wallet]; ok && report.Error != nil && report.Analysis == nil && prev.Analysis != nil {
		merged := *report
		merged.Analysis = prev.Analysis
		merged.Holdings = prev.Holdings
		merged.Empty = prev.Empty
		merged.FetchedAt = prev.FetchedAt
		report = &merged
	}
	s.reports[report.Wallet] = report
}

// Get returns the latest report for wallet
func (s *Store) Get(wallet string) (*WalletReport, bool) {
	s.reportsMu.RLock()
	defer s.reportsMu.RUnlock()
	report, ok := s.reports[wallet]
	return report, ok
}

// Wallets returns the tracked wallets in lexical order
func (s *Store) Wallets() []string {
	s.reportsMu.RLock()
	defer s.reportsMu.RUnlock()

	wallets := make([]string, 0, len(s.reports))
	for wallet := range s.reports {
		wallets = append(wallets, wallet)
	}
	sort.Strings(wallets)
	return wallets
}

// Len returns the number of stored reports
func (s *Store) Len() int {
	s.reportsMu.RLock()
	defer s.reportsMu.RUnlock()
	return len(s.reports)
}

// === Runs ===

// SetLastRun records the most recent tracking run
func (s *Store) SetLastRun(run *Run) {
	s.lastRunMu.Lock()
	defer s.lastRunMu.Unlock()
	s.lastRun = run
}

// LastRun returns the most recent tracking run, or nil
func (s *Store) LastRun() *Run {
	s.lastRunMu.RLock()
	defer s.lastRunMu.RUnlock()
	return s.lastRun
}
