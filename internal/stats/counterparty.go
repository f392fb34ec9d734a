package stats

import (
	"sort"
)

// CounterpartyStats is the mutable per-counterparty accumulator of one pass
type CounterpartyStats struct {
	Address        string
	TransferCount  int
	TotalAmount    float64
	IncomingAmount float64
	OutgoingAmount float64
	ActiveDaySet   map[string]struct{}
	PerDay         map[string]*DayFlow
	TokenVolumes   map[string]float64
}

// CounterpartyMap accumulates counterparty statistics keyed by address.
// It only grows; records keep their first-seen order. Not safe for
// concurrent use: each analysis pass owns its own map.
type CounterpartyMap struct {
	records map[string]*CounterpartyStats
	order   []string
}

// NewCounterpartyMap creates an empty accumulator
func NewCounterpartyMap() *CounterpartyMap {
	return &CounterpartyMap{
		records: make(map[string]*CounterpartyStats),
	}
}

// Accumulate records one qualifying transfer. tokenLabel may be empty.
func (m *CounterpartyMap) Accumulate(address, dayKey string, incoming, outgoing float64, tokenLabel string) {
	rec, ok := m.records[address]
	if !ok {
		rec = &CounterpartyStats{
			Address:      address,
			ActiveDaySet: make(map[string]struct{}),
			PerDay:       make(map[string]*DayFlow),
			TokenVolumes: make(map[string]float64),
		}
		m.records[address] = rec
		m.order = append(m.order, address)
	}

	rec.TransferCount++
	rec.ActiveDaySet[dayKey] = struct{}{}
	rec.IncomingAmount += incoming
	rec.OutgoingAmount += outgoing
	rec.TotalAmount += incoming + outgoing

	day, ok := rec.PerDay[dayKey]
	if !ok {
		day = &DayFlow{}
		rec.PerDay[dayKey] = day
	}
	day.Incoming += incoming
	day.Outgoing += outgoing

	if tokenLabel != "" {
		rec.TokenVolumes[tokenLabel] += incoming + outgoing
	}
}

// Len returns the number of distinct counterparties
func (m *CounterpartyMap) Len() int {
	return len(m.order)
}

// Get returns the record for address, or nil
func (m *CounterpartyMap) Get(address string) *CounterpartyStats {
	return m.records[address]
}

// Records returns all records in first-seen order
func (m *CounterpartyMap) Records() []*CounterpartyStats {
	out := make([]*CounterpartyStats, 0, len(m.order))
	for _, address := range m.order {
		out = append(out, m.records[address])
	}
	return out
}

// TokenLabels returns the distinct token labels seen across all counterparties
func (m *CounterpartyMap) TokenLabels() map[string]struct{} {
	labels := make(map[string]struct{})
	for _, rec := range m.records {
		for label := range rec.TokenVolumes {
			labels[label] = struct{}{}
		}
	}
	return labels
}

// Top returns up to limit counterparties sorted by transfer count (descending).
// Ties keep first-seen order. limit <= 0 returns all.
func (m *CounterpartyMap) Top(limit int) []Counterparty {
	records := m.Records()
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].TransferCount > records[j].TransferCount
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	out := make([]Counterparty, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.summary())
	}
	return out
}

func (r *CounterpartyStats) summary() Counterparty {
	days := make([]string, 0, len(r.ActiveDaySet))
	for day := range r.ActiveDaySet {
		days = append(days, day)
	}
	sort.Strings(days)

	perDay := make(map[string]DayFlow, len(r.PerDay))
	for day, flow := range r.PerDay {
		perDay[day] = *flow
	}

	tokens := make(map[string]float64, len(r.TokenVolumes))
	for label, volume := range r.TokenVolumes {
		tokens[label] = volume
	}

	return Counterparty{
		Address:        r.Address,
		TransferCount:  r.TransferCount,
		TotalAmount:    r.TotalAmount,
		IncomingAmount: r.IncomingAmount,
		OutgoingAmount: r.OutgoingAmount,
		ActiveDays:     len(r.ActiveDaySet),
		Days:           days,
		PerDay:         perDay,
		TokenVolumes:   tokens,
	}
}
