package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"wallet-flow-backend/internal/demo"
	"wallet-flow-backend/internal/models"
	"wallet-flow-backend/internal/server"
	"wallet-flow-backend/internal/stats"
	"wallet-flow-backend/internal/tracker"
	"wallet-flow-backend/internal/utils"
)

const (
	walletA = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	walletB = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

var fixedNow = time.Date(2026, time.October, 16, 15, 30, 0, 0, time.UTC)

type stubFetcher struct {
	txs map[string][]models.Transaction
	err error
}

func (f *stubFetcher) FetchTransactions(ctx context.Context, wallet string, now time.Time) ([]models.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.txs[wallet], nil
}

func (f *stubFetcher) FetchHoldings(ctx context.Context, wallet string) (*models.Holdings, error) {
	return &models.Holdings{}, nil
}

func transfer(from, to string, ago time.Duration, lamports int64) models.Transaction {
	return models.Transaction{
		Timestamp: fixedNow.Add(-ago).Unix(),
		NativeTransfers: []models.NativeTransfer{
			{Amount: lamports, FromUserAccount: from, ToUserAccount: to},
		},
	}
}

func newTestServer(t *testing.T, fetcher tracker.Fetcher) *httptest.Server {
	t.Helper()
	cfg := stats.DefaultConfig()
	cfg.Location = time.UTC

	tr := tracker.New(tracker.DefaultConfig(), fetcher, stats.NewAnalyzer(cfg))
	tr.SetClock(func() time.Time { return fixedNow })
	demoTr := tr.WithFetcher(demo.NewFetcher(demo.DefaultConfig()), true)

	scfg := server.DefaultConfig()
	scfg.RefreshInterval = 50 * time.Millisecond
	srv := httptest.NewServer(server.NewServer(scfg, tr, demoTr).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func defaultFetcher() *stubFetcher {
	return &stubFetcher{txs: map[string][]models.Transaction{
		walletA: {
			transfer("alice", walletA, 10*time.Minute, 1_500_000_000),
			transfer(walletA, "bob", 50*time.Minute, 500_000_000),
			transfer("carol", walletA, 5*time.Hour, 100_000_000),
		},
	}}
}

func get(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

type windowBody struct {
	Wallet string             `json:"wallet"`
	Demo   bool               `json:"demo"`
	Window stats.WindowResult `json:"window"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Type  string `json:"type"`
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, defaultFetcher())
	var body map[string]interface{}
	if status := get(t, srv.URL+"/health", &body); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestAnalyzeAndPanels(t *testing.T) {
	srv := newTestServer(t, defaultFetcher())

	var run tracker.Run
	if status := get(t, srv.URL+"/api/analyze?wallets="+walletA+","+walletB, &run); status != http.StatusOK {
		t.Fatalf("analyze status = %d", status)
	}
	if len(run.Reports) != 2 || run.Reports[0].Analysis == nil {
		t.Fatalf("unexpected run %+v", run)
	}
	if got := run.Reports[0].Analysis.Totals.TotalIncoming; got < 1.59 || got > 1.61 {
		t.Errorf("total incoming = %v, want 1.6", got)
	}
	if !run.Reports[1].Empty {
		t.Error("wallet B should be flagged empty")
	}

	var window struct {
		Wallet string             `json:"wallet"`
		Window stats.WindowResult `json:"window"`
	}
	for _, d := range []string{"1h", "3600000"} {
		if status := get(t, srv.URL+"/api/window?wallet="+walletA+"&duration="+d, &window); status != http.StatusOK {
			t.Fatalf("window status = %d", status)
		}
		if window.Window.EventCount != 2 || len(window.Window.Buckets) != 12 {
			t.Errorf("duration %s: window = %+v", d, window.Window)
		}
	}

	var hourly struct {
		Hourly stats.HourlyTrend `json:"hourly"`
	}
	if status := get(t, srv.URL+"/api/hourly?wallet="+walletA, &hourly); status != http.StatusOK {
		t.Fatalf("hourly status = %d", status)
	}
	if hourly.Hourly.TotalEvents != 3 || len(hourly.Hourly.PerHour) != 24 {
		t.Errorf("hourly = %+v", hourly.Hourly)
	}
}

func TestWalletsListsStoredReports(t *testing.T) {
	srv := newTestServer(t, defaultFetcher())

	var empty struct {
		Count   int                    `json:"count"`
		LastRun map[string]interface{} `json:"lastRun"`
	}
	get(t, srv.URL+"/api/wallets", &empty)
	if empty.Count != 0 || empty.LastRun != nil {
		t.Errorf("fresh store = %+v", empty)
	}

	get(t, srv.URL+"/api/analyze?wallets="+walletA+","+walletB, nil)

	var body struct {
		Wallets []string `json:"wallets"`
		Count   int      `json:"count"`
		LastRun struct {
			ID      string          `json:"id"`
			Overlap tracker.Overlap `json:"overlap"`
		} `json:"lastRun"`
	}
	if status := get(t, srv.URL+"/api/wallets", &body); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body.Count != 2 || len(body.Wallets) != 2 {
		t.Errorf("wallets = %v", body.Wallets)
	}
	if body.LastRun.ID == "" || len(body.LastRun.Overlap.Pairs) != 1 {
		t.Errorf("last run = %+v", body.LastRun)
	}
}

func TestErrorMapping(t *testing.T) {
	srv := newTestServer(t, defaultFetcher())
	get(t, srv.URL+"/api/analyze?wallets="+walletA, nil)

	tests := []struct {
		name   string
		path   string
		status int
		code   string
	}{
		{"invalid wallet", "/api/analyze?wallets=not-a-wallet", http.StatusBadRequest, "INVALID_WALLET"},
		{"no wallets", "/api/analyze", http.StatusBadRequest, "NO_WALLETS"},
		{"bad duration", "/api/window?wallet=" + walletA + "&duration=soon", http.StatusBadRequest, "BAD_DURATION"},
		{"negative duration", "/api/window?wallet=" + walletA + "&duration=-5m", http.StatusBadRequest, "BAD_DURATION"},
		{"not analyzed", "/api/hourly?wallet=" + walletB, http.StatusNotFound, "WALLET_NOT_ANALYZED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body errorBody
			if status := get(t, srv.URL+tt.path, &body); status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if body.Code != tt.code {
				t.Errorf("code = %s, want %s", body.Code, tt.code)
			}
		})
	}
}

func TestAnalyzeAuthFailure(t *testing.T) {
	srv := newTestServer(t, &stubFetcher{
		err: utils.NewAppError(utils.ErrorTypeAuth, "INVALID_API_KEY", "invalid API key", "helius"),
	})

	var run tracker.Run
	if status := get(t, srv.URL+"/api/analyze?wallets="+walletA, &run); status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", status)
	}
	if run.Reports[0].Error == nil || run.Reports[0].Error.Code != "INVALID_API_KEY" {
		t.Errorf("report error = %+v", run.Reports[0].Error)
	}
}

func TestAnalyzeDemo(t *testing.T) {
	srv := newTestServer(t, &stubFetcher{err: utils.NewAppError(utils.ErrorTypeConfig, "MISSING_API_KEY", "no key", "helius")})

	var run tracker.Run
	if status := get(t, srv.URL+"/api/analyze?demo=1&wallets="+walletA, &run); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !run.Demo || run.Reports[0].Analysis == nil || run.Reports[0].Empty {
		t.Errorf("demo run = %+v", run)
	}
}

func TestWebSocketPushesPanels(t *testing.T) {
	srv := newTestServer(t, defaultFetcher())
	get(t, srv.URL+"/api/analyze?wallets="+walletA, nil)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?wallet=" + walletA + "&duration=1h"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	for i := 0; i < 2; i++ {
		var msg struct {
			Type   string             `json:"type"`
			Wallet string             `json:"wallet"`
			Window stats.WindowResult `json:"window"`
			Hourly stats.HourlyTrend  `json:"hourly"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if msg.Type != "panels" || msg.Wallet != walletA {
			t.Fatalf("message = %+v", msg)
		}
		if msg.Window.EventCount != 2 || msg.Hourly.TotalEvents != 3 {
			t.Errorf("panels window=%d hourly=%d", msg.Window.EventCount, msg.Hourly.TotalEvents)
		}
	}
}

func TestWebSocketRequiresAnalysis(t *testing.T) {
	srv := newTestServer(t, defaultFetcher())
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?wallet=" + walletA
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("handshake response = %v, want 404", resp)
	}
}

func TestDemoAnalysisDoesNotReplaceLiveData(t *testing.T) {
	srv := newTestServer(t, defaultFetcher())
	get(t, srv.URL+"/api/analyze?wallets="+walletA, nil)
	get(t, srv.URL+"/api/analyze?demo=1&wallets="+walletA+","+walletB, nil)

	var live windowBody
	if status := get(t, srv.URL+"/api/window?wallet="+walletA+"&duration=1h", &live); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if live.Demo || live.Window.EventCount != 2 {
		t.Errorf("live window = demo:%v events:%d, want the live analysis", live.Demo, live.Window.EventCount)
	}

	var synthetic windowBody
	if status := get(t, srv.URL+"/api/window?demo=1&wallet="+walletA+"&duration=24h", &synthetic); status != http.StatusOK {
		t.Fatalf("demo status = %d", status)
	}
	if !synthetic.Demo {
		t.Error("demo window not flagged")
	}

	var body errorBody
	if status := get(t, srv.URL+"/api/hourly?wallet="+walletB, &body); status != http.StatusNotFound {
		t.Errorf("live hourly for demo-only wallet = %d, want 404", status)
	}

	var wallets struct {
		Count int  `json:"count"`
		Demo  bool `json:"demo"`
	}
	get(t, srv.URL+"/api/wallets?demo=1", &wallets)
	if wallets.Count != 2 || !wallets.Demo {
		t.Errorf("demo wallets = %+v", wallets)
	}
}

func TestWebSocketDemoPanels(t *testing.T) {
	srv := newTestServer(t, defaultFetcher())
	get(t, srv.URL+"/api/analyze?demo=1&wallets="+walletB, nil)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?demo=1&wallet=" + walletB + "&duration=24h"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg struct {
		Type string `json:"type"`
		Demo bool   `json:"demo"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != "panels" || !msg.Demo {
		t.Errorf("message = %+v, want demo panels", msg)
	}

	var health struct {
		Clients int `json:"clients"`
	}
	get(t, srv.URL+"/health", &health)
	if health.Clients != 1 {
		t.Errorf("health clients = %d, want 1", health.Clients)
	}
}
