package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

var (
	clients       = flag.Int("clients", 100, "Number of concurrent live-panel subscribers")
	duration      = flag.Duration("duration", 60*time.Second, "Test duration")
	baseURL       = flag.String("url", "http://localhost:8080", "Backend base URL")
	wallet        = flag.String("wallet", "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", "Wallet to subscribe to")
	window        = flag.String("window", "1h", "Time window requested by each subscriber")
	seedDemo      = flag.Bool("demo", true, "Seed a demo analysis and subscribe to the demo panels")
	rampUp        = flag.Duration("rampup", 5*time.Second, "Time to ramp up all clients")
	printInterval = flag.Duration("print", 5*time.Second, "Statistics print interval")
)

type Stats struct {
	connected    int64
	disconnected int64
	panels       int64
	errors       int64
}

type panel struct {
	Type   string `json:"type"`
	Wallet string `json:"wallet"`
	Window struct {
		EventCount int `json:"eventCount"`
	} `json:"window"`
}

func main() {
	flag.Parse()

	fmt.Printf("Live panel load test\n")
	fmt.Printf("   Clients:  %d\n", *clients)
	fmt.Printf("   Duration: %v\n", *duration)
	fmt.Printf("   Server:   %s\n", *baseURL)
	fmt.Printf("   Wallet:   %s (%s window)\n\n", *wallet, *window)

	if *seedDemo {
		if err := seed(*baseURL, *wallet); err != nil {
			log.Fatalf("Seeding analysis failed: %v", err)
		}
	}

	wsURL, err := subscriptionURL(*baseURL, *wallet, *window, *seedDemo)
	if err != nil {
		log.Fatalf("Invalid URL: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	var stats Stats
	var wg sync.WaitGroup

	go reportStats(ctx, &stats)

	clientInterval := *rampUp / time.Duration(*clients)
	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go startClient(ctx, &wg, wsURL, i, &stats)
		if clientInterval > 0 {
			time.Sleep(clientInterval)
		}
	}
	fmt.Printf("All %d clients started\n", *clients)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		fmt.Printf("\nTest duration completed\n")
	case <-sigChan:
		fmt.Printf("\nInterrupted\n")
		cancel()
	}

	wg.Wait()

	panels := atomic.LoadInt64(&stats.panels)
	errs := atomic.LoadInt64(&stats.errors)
	fmt.Printf("\nFinal statistics:\n")
	fmt.Printf("   Connected:    %d\n", atomic.LoadInt64(&stats.connected))
	fmt.Printf("   Panels:       %d\n", panels)
	fmt.Printf("   Errors:       %d\n", errs)
	if panels+errs > 0 {
		fmt.Printf("   Success rate: %.2f%%\n", 100*float64(panels)/float64(panels+errs))
	}
}

// seed runs a demo analysis so the wallet has stored raw events
func seed(base, wallet string) error {
	resp, err := http.Get(strings.TrimRight(base, "/") + "/api/analyze?demo=1&wallets=" + url.QueryEscape(wallet))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("analyze returned %d", resp.StatusCode)
	}
	return nil
}

func subscriptionURL(base, wallet, window string, demo bool) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	q := url.Values{}
	q.Set("wallet", wallet)
	q.Set("duration", window)
	if demo {
		q.Set("demo", "1")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func startClient(ctx context.Context, wg *sync.WaitGroup, wsURL string, clientID int, stats *Stats) {
	defer wg.Done()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		atomic.AddInt64(&stats.errors, 1)
		return
	}
	atomic.AddInt64(&stats.connected, 1)
	defer atomic.AddInt64(&stats.disconnected, 1)

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var msg panel
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				atomic.AddInt64(&stats.errors, 1)
			}
			return
		}
		if msg.Type != "panels" {
			atomic.AddInt64(&stats.errors, 1)
			continue
		}
		if n := atomic.AddInt64(&stats.panels, 1); n <= 3 {
			fmt.Printf("Client %d received panels for %s: %d events in window\n", clientID, msg.Wallet, msg.Window.EventCount)
		}
	}
}

func reportStats(ctx context.Context, stats *Stats) {
	ticker := time.NewTicker(*printInterval)
	defer ticker.Stop()

	var lastPanels int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			active := atomic.LoadInt64(&stats.connected) - atomic.LoadInt64(&stats.disconnected)
			panels := atomic.LoadInt64(&stats.panels)
			rate := float64(panels-lastPanels) / printInterval.Seconds()

			fmt.Printf("[STATS] Active: %d | Panels: %d (+%d) | Rate: %.1f/s | Errors: %d\n",
				active, panels, panels-lastPanels, rate, atomic.LoadInt64(&stats.errors))
			lastPanels = panels
		}
	}
}
