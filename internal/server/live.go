package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"wallet-flow-backend/internal/stats"
	"wallet-flow-backend/internal/utils"
)

// panelMessage is pushed to live subscribers on every refresh tick
type panelMessage struct {
	Type      string             `json:"type"`
	Wallet    string             `json:"wallet"`
	Demo      bool               `json:"demo"`
	Window    stats.WindowResult `json:"window"`
	Hourly    stats.HourlyTrend  `json:"hourly"`
	Timestamp int64              `json:"timestamp"`
}

// handleWebSocket subscribes a client to the live window and hourly panels
// of an already analyzed wallet
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	tr, err := s.requestTracker(r)
	if err != nil {
		writeError(w, err)
		return
	}
	report, err := storedReport(tr, r.URL.Query().Get("wallet"))
	if err != nil {
		writeError(w, err)
		return
	}
	duration, err := s.parseWindow(r.URL.Query().Get("duration"))
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		utils.ServerLogger.Warn("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(conn, report.Wallet, duration, tr.Demo())
	s.clients.Add(client)
	utils.ServerLogger.Info("Client %s subscribed to %s (%v window)", client.ID, utils.ShortenAddress(client.Wallet), duration)

	go s.clientReader(client)
	go s.clientWriter(client)
}

// clientWriter pushes panels on each refresh tick until the client goes away
func (s *Server) clientWriter(client *Client) {
	refresh := time.NewTicker(s.config.RefreshInterval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		refresh.Stop()
		ping.Stop()
		s.clients.Remove(client.ID)
		utils.ServerLogger.Info("Client disconnected: %s", client.ID)
	}()

	if err := s.pushPanels(client); err != nil {
		return
	}

	for {
		select {
		case <-client.Done():
			return
		case <-refresh.C:
			if err := s.pushPanels(client); err != nil {
				return
			}
		case <-ping.C:
			if err := client.Ping(); err != nil {
				return
			}
		}
	}
}

// clientReader drains control frames so pongs and close frames are handled
func (s *Server) clientReader(client *Client) {
	defer s.clients.Remove(client.ID)

	client.conn.SetReadLimit(512)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				utils.ServerLogger.Warn("Read error for client %s: %v", client.ID, err)
			}
			return
		}
	}
}

// pushPanels recomputes both panels from the latest stored report with the
// current time, so a new analysis run is picked up on the next tick
func (s *Server) pushPanels(client *Client) error {
	tr, err := s.trackerFor(client.Demo)
	if err != nil {
		return err
	}
	report, ok := tr.Store().Get(client.Wallet)
	if !ok || report.Analysis == nil {
		return client.SendJSON(errorResponse{
			Error: "wallet has no stored analysis",
			Code:  "WALLET_NOT_ANALYZED",
			Type:  utils.ErrorTypeNotFound,
		})
	}

	now := tr.Now()
	analyzer := tr.Analyzer()
	msg := panelMessage{
		Type:      "panels",
		Wallet:    client.Wallet,
		Demo:      client.Demo,
		Window:    analyzer.Window(report.Analysis.FlowEvents, client.Duration, now),
		Hourly:    analyzer.Hourly(report.Analysis.FlowEvents, now),
		Timestamp: now.UnixMilli(),
	}
	if err := client.SendJSON(msg); err != nil {
		utils.ServerLogger.Debug("Write error for client %s: %v", client.ID, err)
		return err
	}
	return nil
}
