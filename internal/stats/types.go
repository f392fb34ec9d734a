package stats

import (
	"time"
)

// Direction is the outcome of classifying a transfer against the tracked wallet
type Direction int

const (
	Irrelevant Direction = iota
	Incoming
	Outgoing
)

// String returns the lowercase name of the direction
func (d Direction) String() string {
	switch d {
	case Incoming:
		return "incoming"
	case Outgoing:
		return "outgoing"
	default:
		return "irrelevant"
	}
}

// Classification is the tagged result of the transfer classifier
type Classification struct {
	Direction    Direction
	Counterparty string
}

// FlowEvent is one qualifying transfer between the tracked wallet and a counterparty
type FlowEvent struct {
	TimestampMs  int64   `json:"timestamp"`
	Incoming     float64 `json:"incoming"`
	Outgoing     float64 `json:"outgoing"`
	Counterparty string  `json:"counterparty"`
	TokenOnly    bool    `json:"tokenOnly"`
}

// DayFlow holds incoming/outgoing amounts for one calendar day
type DayFlow struct {
	Incoming float64 `json:"in"`
	Outgoing float64 `json:"out"`
}

// DailyBucket is one calendar day of the trailing daily series
type DailyBucket struct {
	Date     string  `json:"date"`
	Incoming float64 `json:"incoming"`
	Outgoing float64 `json:"outgoing"`
	TxCount  int     `json:"txCount"`
}

// Counterparty is the published view of an aggregated counterparty
type Counterparty struct {
	Address        string             `json:"address"`
	TransferCount  int                `json:"transferCount"`
	TotalAmount    float64            `json:"totalSol"`
	IncomingAmount float64            `json:"incomingSol"`
	OutgoingAmount float64            `json:"outgoingSol"`
	ActiveDays     int                `json:"activeDays"`
	Days           []string           `json:"days"`
	PerDay         map[string]DayFlow `json:"perDay"`
	TokenVolumes   map[string]float64 `json:"tokens"`
}

// RecurrenceEntry counts counterparties active on exactly ActiveDays days
type RecurrenceEntry struct {
	ActiveDays int `json:"days"`
	Wallets    int `json:"wallets"`
}

// Totals are the summary figures of one wallet analysis
type Totals struct {
	TotalIncoming  float64 `json:"totalIn"`
	TotalOutgoing  float64 `json:"totalOut"`
	TotalTx        int     `json:"totalTx"`
	UniqueWallets  int     `json:"uniqueWallets"`
	UniqueTokens   int     `json:"uniqueTokens"`
	FlowEventCount int     `json:"flowEvents"`
}

// WalletAnalysis is the composed per-wallet result of one analysis pass
type WalletAnalysis struct {
	Wallet         string            `json:"wallet"`
	GeneratedAt    time.Time         `json:"generatedAt"`
	DailyData      []DailyBucket     `json:"dailyData"`
	Counterparties []Counterparty    `json:"counterparties"`
	Recurrence     []RecurrenceEntry `json:"recurrence"`
	FlowEvents     []FlowEvent       `json:"flowEvents"`
	Totals         Totals            `json:"totals"`
	FirstActivity  int64             `json:"firstActivity,omitempty"` // unix ms over raw events
	LastActivity   int64             `json:"lastActivity,omitempty"`
}

// WindowBucket is one fixed-size sub-interval of a time window
type WindowBucket struct {
	StartMs  int64   `json:"start"`
	Incoming float64 `json:"incoming"`
	Outgoing float64 `json:"outgoing"`
	Count    int     `json:"count"`
}

// WindowCounterparty is a counterparty's activity restricted to a window
type WindowCounterparty struct {
	Address  string  `json:"address"`
	Incoming float64 `json:"incoming"`
	Outgoing float64 `json:"outgoing"`
	Count    int     `json:"count"`
}

// WindowResult is the time-window panel, recomputed per request
type WindowResult struct {
	WindowMs               int64                `json:"windowMs"`
	BucketSizeMs           int64                `json:"bucketSizeMs"`
	StartMs                int64                `json:"start"`
	EndMs                  int64                `json:"end"`
	TotalIncoming          float64              `json:"totalIn"`
	TotalOutgoing          float64              `json:"totalOut"`
	Net                    float64              `json:"net"`
	EventCount             int                  `json:"eventCount"`
	DistinctCounterparties int                  `json:"uniqueCounterparties"`
	TopCounterparties      []WindowCounterparty `json:"topCounterparties"`
	Buckets                []WindowBucket       `json:"buckets"`
}

// HourStat aggregates flow events for one hour of the day
type HourStat struct {
	Hour     int     `json:"hour"`
	Count    int     `json:"count"`
	Incoming float64 `json:"incoming"`
	Outgoing float64 `json:"outgoing"`
}

// HourlyTrend is the hour-of-day activity view over the lookback
type HourlyTrend struct {
	PerHour     []HourStat `json:"perHour"`
	Ranked      []HourStat `json:"ranked"`
	TotalEvents int        `json:"totalEvents"`
	Peak        HourStat   `json:"peak"`
	Quietest    HourStat   `json:"quietest"`
}
