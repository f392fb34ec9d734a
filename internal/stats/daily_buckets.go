package stats

import (
	"time"

	"wallet-flow-backend/internal/models"
)

// DailySeries is the fixed trailing daily series plus per-transaction day keys
type DailySeries struct {
	Buckets   []DailyBucket
	TxDayKeys []string // parallel to the input transactions
	index     map[string]int
}

// Contains reports whether dayKey falls inside the series window
func (s *DailySeries) Contains(dayKey string) bool {
	_, ok := s.index[dayKey]
	return ok
}

// BuildDailySeries produces exactly days buckets ending on now's calendar day.
// Every in-window transaction counts toward TxCount; native transfers that
// classify as incoming/outgoing add their SOL amount. Out-of-window
// transactions are skipped for bucket purposes but still get a day key.
func BuildDailySeries(txs []models.Transaction, wallet string, now time.Time, days int, loc *time.Location) *DailySeries {
	keys := DayKeys(now, days, loc)
	series := &DailySeries{
		Buckets:   make([]DailyBucket, len(keys)),
		TxDayKeys: make([]string, len(txs)),
		index:     make(map[string]int, len(keys)),
	}
	for i, key := range keys {
		series.Buckets[i] = DailyBucket{Date: key}
		series.index[key] = i
	}

	for i, tx := range txs {
		dayKey := DayKey(tx.Time(), loc)
		series.TxDayKeys[i] = dayKey

		idx, ok := series.index[dayKey]
		if !ok {
			continue
		}
		bucket := &series.Buckets[idx]
		bucket.TxCount++

		for _, nt := range tx.NativeTransfers {
			switch ClassifyNative(nt, wallet).Direction {
			case Incoming:
				bucket.Incoming += nt.SOL()
			case Outgoing:
				bucket.Outgoing += nt.SOL()
			}
		}
	}

	return series
}
