package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"wallet-flow-backend/internal/stats"
	"wallet-flow-backend/internal/tracker"
	"wallet-flow-backend/internal/utils"
)

const component = "server"

type errorResponse struct {
	Error string          `json:"error"`
	Code  string          `json:"code"`
	Type  utils.ErrorType `json:"type"`
}

// windowResponse carries the time-window panel for one wallet
type windowResponse struct {
	Wallet string             `json:"wallet"`
	Demo   bool               `json:"demo"`
	Window stats.WindowResult `json:"window"`
}

// hourlyResponse carries the hour-of-day panel for one wallet
type hourlyResponse struct {
	Wallet string            `json:"wallet"`
	Demo   bool              `json:"demo"`
	Hourly stats.HourlyTrend `json:"hourly"`
}

// handleHealth returns health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"clients":   s.ClientCount(),
		"wallets":   s.tracker.Store().Len(),
		"demo":      s.demo != nil,
		"memory":    utils.ReadMemoryStats(),
	}
	writeJSON(w, http.StatusOK, response)
}

// handleAnalyze runs a full pass over up to three wallets
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		writeError(w, utils.NewAppError(utils.ErrorTypeValidation, "METHOD_NOT_ALLOWED", "method not allowed", component))
		return
	}

	tr, err := s.requestTracker(r)
	if err != nil {
		writeError(w, err)
		return
	}

	run, err := tr.Track(r.Context(), splitWallets(r.URL.Query()["wallets"]))
	if err != nil {
		writeError(w, err)
		return
	}

	if failed := allFailed(run.Reports); failed != nil {
		writeJSON(w, statusFor(failed.Type), run)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// handleWindow recomputes the time-window panel from the stored raw events
func (s *Server) handleWindow(w http.ResponseWriter, r *http.Request) {
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

	result := tr.Analyzer().Window(report.Analysis.FlowEvents, duration, tr.Now())
	writeJSON(w, http.StatusOK, windowResponse{Wallet: report.Wallet, Demo: tr.Demo(), Window: result})
}

// handleHourly recomputes the hour-of-day panel from the stored raw events
func (s *Server) handleHourly(w http.ResponseWriter, r *http.Request) {
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

	trend := tr.Analyzer().Hourly(report.Analysis.FlowEvents, tr.Now())
	writeJSON(w, http.StatusOK, hourlyResponse{Wallet: report.Wallet, Demo: tr.Demo(), Hourly: trend})
}

// handleWallets lists the wallets with stored reports and the last run
func (s *Server) handleWallets(w http.ResponseWriter, r *http.Request) {
	tr, err := s.requestTracker(r)
	if err != nil {
		writeError(w, err)
		return
	}
	store := tr.Store()
	wallets := store.Wallets()
	resp := map[string]interface{}{
		"wallets": wallets,
		"count":   len(wallets),
		"demo":    tr.Demo(),
	}
	if run := store.LastRun(); run != nil {
		resp["lastRun"] = map[string]interface{}{
			"id":        run.ID,
			"startedAt": run.StartedAt,
			"demo":      run.Demo,
			"overlap":   run.Overlap,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// trackerFor selects the demo tracker, whose store holds only synthetic
// analyses, or the live one
func (s *Server) trackerFor(demo bool) (*tracker.Tracker, error) {
	if !demo {
		return s.tracker, nil
	}
	if s.demo == nil {
		return nil, utils.NewAppError(utils.ErrorTypeValidation, "DEMO_DISABLED", "demo mode is disabled", component)
	}
	return s.demo, nil
}

func (s *Server) requestTracker(r *http.Request) (*tracker.Tracker, error) {
	return s.trackerFor(isTruthy(r.URL.Query().Get("demo")))
}

func storedReport(tr *tracker.Tracker, raw string) (*tracker.WalletReport, error) {
	wallet, err := utils.NormalizeWallet(raw)
	if err != nil {
		return nil, err
	}
	report, ok := tr.Store().Get(wallet)
	if !ok || report.Analysis == nil {
		return nil, utils.NewAppError(utils.ErrorTypeNotFound, "WALLET_NOT_ANALYZED", "wallet has no stored analysis", component).
			WithDetails(wallet)
	}
	return report, nil
}

// parseWindow accepts a Go duration string ("5m", "24h") or plain
// milliseconds. Empty selects the default window.
func (s *Server) parseWindow(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.config.DefaultWindow, nil
	}

	var d time.Duration
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		d = time.Duration(ms) * time.Millisecond
	} else if parsed, err := time.ParseDuration(raw); err == nil {
		d = parsed
	} else {
		return 0, utils.WrapError(err, utils.ErrorTypeValidation, "BAD_DURATION", "invalid window duration", component).
			WithDetails(raw)
	}

	if d <= 0 || d > s.config.MaxWindow {
		return 0, utils.NewAppError(utils.ErrorTypeValidation, "BAD_DURATION", "window duration out of range", component).
			WithDetails(raw).
			WithContext("max", s.config.MaxWindow.String())
	}
	return d, nil
}

func splitWallets(values []string) []string {
	var wallets []string
	for _, v := range values {
		wallets = append(wallets, strings.Split(v, ",")...)
	}
	return wallets
}

func allFailed(reports []*tracker.WalletReport) *tracker.ReportError {
	if len(reports) == 0 {
		return nil
	}
	for _, report := range reports {
		if report.Error == nil {
			return nil
		}
	}
	return reports[0].Error
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func statusFor(t utils.ErrorType) int {
	switch t {
	case utils.ErrorTypeValidation:
		return http.StatusBadRequest
	case utils.ErrorTypeAuth:
		return http.StatusUnauthorized
	case utils.ErrorTypeNotFound:
		return http.StatusNotFound
	case utils.ErrorTypeNetwork:
		return http.StatusBadGateway
	case utils.ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{
		Error: err.Error(),
		Code:  utils.GetErrorCode(err),
		Type:  utils.GetErrorType(err),
	}
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		resp.Error = appErr.Message
	}

	status := statusFor(resp.Type)
	if resp.Code == "METHOD_NOT_ALLOWED" {
		status = http.StatusMethodNotAllowed
	}
	if status >= http.StatusInternalServerError {
		utils.LogError(err, utils.ServerLogger)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.ServerLogger.Error("Failed to encode response: %v", err)
	}
}
