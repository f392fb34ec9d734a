package stats_test

import (
	"math"
	"testing"
	"time"

	"wallet-flow-backend/internal/models"
	"wallet-flow-backend/internal/stats"
)

var fixedNow = time.Date(2026, time.October, 16, 15, 30, 0, 0, time.UTC)

func newTestAnalyzer() *stats.Analyzer {
	cfg := stats.DefaultConfig()
	cfg.Location = time.UTC
	return stats.NewAnalyzer(cfg)
}

func nativeTx(at time.Time, lamports int64, from, to string) models.Transaction {
	return models.Transaction{
		Signature: at.Format(time.RFC3339Nano) + from + to,
		Timestamp: at.Unix(),
		NativeTransfers: []models.NativeTransfer{
			{Amount: lamports, FromUserAccount: from, ToUserAccount: to},
		},
	}
}

func tokenTx(at time.Time, amount float64, mint, from, to string) models.Transaction {
	return models.Transaction{
		Timestamp: at.Unix(),
		TokenTransfers: []models.TokenTransfer{
			{TokenAmount: amount, Mint: mint, FromUserAccount: from, ToUserAccount: to},
		},
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAnalyzeEmpty(t *testing.T) {
	result := newTestAnalyzer().Analyze(wallet, nil, fixedNow, nil)

	if len(result.DailyData) != 15 {
		t.Fatalf("daily buckets = %d, want 15", len(result.DailyData))
	}
	for _, bucket := range result.DailyData {
		if bucket.Incoming != 0 || bucket.Outgoing != 0 || bucket.TxCount != 0 {
			t.Errorf("bucket %s not zero: %+v", bucket.Date, bucket)
		}
	}
	if len(result.Recurrence) != 15 {
		t.Fatalf("recurrence entries = %d, want 15", len(result.Recurrence))
	}
	for _, entry := range result.Recurrence {
		if entry.Wallets != 0 {
			t.Errorf("recurrence[%d] = %d, want 0", entry.ActiveDays, entry.Wallets)
		}
	}
	if len(result.Counterparties) != 0 {
		t.Errorf("counterparties = %d, want 0", len(result.Counterparties))
	}
	if result.Totals != (stats.Totals{}) {
		t.Errorf("totals = %+v, want zero", result.Totals)
	}
	if !result.IsEmpty() {
		t.Error("expected empty result")
	}
}

func TestDailySeriesShape(t *testing.T) {
	txs := []models.Transaction{
		nativeTx(fixedNow.Add(-time.Hour), 1_000_000_000, alice, wallet),
		nativeTx(fixedNow.AddDate(0, 0, -30), 1_000_000_000, alice, wallet),
	}
	result := newTestAnalyzer().Analyze(wallet, txs, fixedNow, nil)

	if len(result.DailyData) != 15 {
		t.Fatalf("daily buckets = %d, want 15", len(result.DailyData))
	}
	if got := result.DailyData[14].Date; got != "2026-10-16" {
		t.Errorf("last bucket = %s, want today", got)
	}
	if got := result.DailyData[0].Date; got != "2026-10-02" {
		t.Errorf("first bucket = %s, want 2026-10-02", got)
	}
	for i := 1; i < len(result.DailyData); i++ {
		prev, _ := time.Parse("2006-01-02", result.DailyData[i-1].Date)
		cur, _ := time.Parse("2006-01-02", result.DailyData[i].Date)
		if cur.Sub(prev) != 24*time.Hour {
			t.Fatalf("buckets %d and %d are not consecutive days", i-1, i)
		}
	}

	if result.Totals.TotalTx != 1 {
		t.Errorf("total tx = %d, want 1 (old tx excluded)", result.Totals.TotalTx)
	}
	if len(result.FlowEvents) != 2 {
		t.Errorf("flow events = %d, want 2 (raw events are not trimmed)", len(result.FlowEvents))
	}
}

func TestAnalyzeSingleIncomingTransfer(t *testing.T) {
	txs := []models.Transaction{
		nativeTx(fixedNow.Add(-2*time.Hour), 2_000_000_000, alice, wallet),
	}
	result := newTestAnalyzer().Analyze(wallet, txs, fixedNow, nil)

	today := result.DailyData[14]
	if !almostEqual(today.Incoming, 2.0) {
		t.Errorf("today incoming = %v, want 2.0", today.Incoming)
	}
	if today.TxCount != 1 {
		t.Errorf("today tx count = %d, want 1", today.TxCount)
	}

	if len(result.Counterparties) != 1 {
		t.Fatalf("counterparties = %d, want 1", len(result.Counterparties))
	}
	cp := result.Counterparties[0]
	if cp.Address != alice || cp.TransferCount != 1 || cp.ActiveDays != 1 {
		t.Errorf("unexpected counterparty %+v", cp)
	}
	if !almostEqual(cp.IncomingAmount, 2.0) || cp.OutgoingAmount != 0 {
		t.Errorf("counterparty amounts in=%v out=%v", cp.IncomingAmount, cp.OutgoingAmount)
	}
	if !almostEqual(cp.TokenVolumes[stats.NativeTokenLabel], 2.0) {
		t.Errorf("SOL token volume = %v, want 2.0", cp.TokenVolumes[stats.NativeTokenLabel])
	}
	if result.Recurrence[0].Wallets != 1 {
		t.Errorf("recurrence[1] = %d, want 1", result.Recurrence[0].Wallets)
	}
}

func TestAnalyzeDustExcluded(t *testing.T) {
	txs := []models.Transaction{
		nativeTx(fixedNow.Add(-time.Hour), 500, alice, wallet), // 5e-7 SOL
	}
	result := newTestAnalyzer().Analyze(wallet, txs, fixedNow, nil)

	if result.Totals.TotalIncoming != 0 {
		t.Errorf("total incoming = %v, want 0", result.Totals.TotalIncoming)
	}
	if result.Totals.UniqueWallets != 0 {
		t.Errorf("unique wallets = %d, want 0", result.Totals.UniqueWallets)
	}
	if len(result.FlowEvents) != 0 {
		t.Errorf("flow events = %d, want 0", len(result.FlowEvents))
	}
	// the transaction itself still counts toward activity
	if result.Totals.TotalTx != 1 {
		t.Errorf("total tx = %d, want 1", result.Totals.TotalTx)
	}
}

func TestRecurrenceThreeDays(t *testing.T) {
	base := []models.Transaction{
		nativeTx(fixedNow.Add(-time.Hour), 1_000_000_000, alice, wallet),
	}
	withBob := append([]models.Transaction{}, base...)
	for _, daysAgo := range []int{0, 2, 5} {
		withBob = append(withBob, nativeTx(fixedNow.AddDate(0, 0, -daysAgo).Add(-time.Hour), 3_000_000, wallet, bob))
	}
	// a second transfer on an already active day does not add a day
	withBob = append(withBob, nativeTx(fixedNow.AddDate(0, 0, -2), 3_000_000, bob, wallet))

	analyzer := newTestAnalyzer()
	before := analyzer.Analyze(wallet, base, fixedNow, nil)
	after := analyzer.Analyze(wallet, withBob, fixedNow, nil)

	if diff := after.Recurrence[2].Wallets - before.Recurrence[2].Wallets; diff != 1 {
		t.Errorf("recurrence[3] grew by %d, want 1", diff)
	}
	for i := range after.Recurrence {
		if i == 2 {
			continue
		}
		if after.Recurrence[i] != before.Recurrence[i] {
			t.Errorf("recurrence[%d] changed: %+v -> %+v", i+1, before.Recurrence[i], after.Recurrence[i])
		}
	}
}

func TestTotalsMatchDailyBuckets(t *testing.T) {
	var txs []models.Transaction
	for i := 0; i < 40; i++ {
		at := fixedNow.Add(-time.Duration(i*9) * time.Hour)
		if i%3 == 0 {
			txs = append(txs, nativeTx(at, int64(i+1)*10_000_000, wallet, carol))
		} else {
			txs = append(txs, nativeTx(at, int64(i+1)*20_000_000, alice, wallet))
		}
		if i%4 == 0 {
			txs = append(txs, tokenTx(at, float64(i), "MintUSDC111111111111111111111111111111111111", bob, wallet))
		}
	}

	result := newTestAnalyzer().Analyze(wallet, txs, fixedNow, map[string]string{
		"MintUSDC111111111111111111111111111111111111": "USDC",
	})

	var in, out float64
	var count int
	for _, bucket := range result.DailyData {
		in += bucket.Incoming
		out += bucket.Outgoing
		count += bucket.TxCount
	}
	if !almostEqual(in, result.Totals.TotalIncoming) || !almostEqual(out, result.Totals.TotalOutgoing) {
		t.Errorf("bucket sums in=%v out=%v, totals %+v", in, out, result.Totals)
	}
	if count != result.Totals.TotalTx {
		t.Errorf("bucket tx sum = %d, totals %d", count, result.Totals.TotalTx)
	}

	mass := 0
	for _, entry := range result.Recurrence {
		mass += entry.Wallets
	}
	if mass != result.Totals.UniqueWallets {
		t.Errorf("recurrence mass = %d, unique wallets = %d", mass, result.Totals.UniqueWallets)
	}
	if result.Totals.UniqueTokens != 1 {
		t.Errorf("unique tokens = %d, want 1", result.Totals.UniqueTokens)
	}
}

func TestCounterpartiesTruncatedButRecurrenceComplete(t *testing.T) {
	var txs []models.Transaction
	for i := 0; i < 45; i++ {
		cp := "Counterparty" + string(rune('A'+i%26)) + string(rune('a'+i/26))
		txs = append(txs, nativeTx(fixedNow.Add(-time.Duration(i)*time.Minute), 10_000_000, cp, wallet))
	}

	result := newTestAnalyzer().Analyze(wallet, txs, fixedNow, nil)
	if len(result.Counterparties) != 30 {
		t.Errorf("counterparties = %d, want 30", len(result.Counterparties))
	}
	if result.Totals.UniqueWallets != 45 {
		t.Errorf("unique wallets = %d, want 45", result.Totals.UniqueWallets)
	}
	if result.Recurrence[0].Wallets != 45 {
		t.Errorf("recurrence[1] = %d, want 45", result.Recurrence[0].Wallets)
	}
}

func TestTokenOnlyEventsCarryNoAmount(t *testing.T) {
	txs := []models.Transaction{
		tokenTx(fixedNow.Add(-time.Minute), 250, "So1anaMintXYZabcdefghijklmnop", carol, wallet),
	}
	result := newTestAnalyzer().Analyze(wallet, txs, fixedNow, nil)

	if len(result.FlowEvents) != 1 {
		t.Fatalf("flow events = %d, want 1", len(result.FlowEvents))
	}
	ev := result.FlowEvents[0]
	if !ev.TokenOnly || ev.Incoming != 0 || ev.Outgoing != 0 {
		t.Errorf("unexpected token event %+v", ev)
	}

	cp := result.Counterparties[0]
	if cp.TransferCount != 1 {
		t.Errorf("transfer count = %d, want 1", cp.TransferCount)
	}
	if got := cp.TokenVolumes["So1a…mnop"]; got != 250 {
		t.Errorf("token volume = %v, want 250 under shortened mint", got)
	}
	if result.Totals.TotalIncoming != 0 {
		t.Errorf("token transfers must not reach daily SOL totals, got %v", result.Totals.TotalIncoming)
	}
}

func TestCounterpartyNeverTrackedWallet(t *testing.T) {
	txs := []models.Transaction{
		nativeTx(fixedNow.Add(-time.Minute), 1_000_000_000, wallet, wallet),
		nativeTx(fixedNow.Add(-time.Minute), 1_000_000_000, alice, wallet),
	}
	result := newTestAnalyzer().Analyze(wallet, txs, fixedNow, nil)
	for _, ev := range result.FlowEvents {
		if ev.Counterparty == wallet {
			t.Fatalf("flow event references tracked wallet: %+v", ev)
		}
	}
}
