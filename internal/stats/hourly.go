package stats

import (
	"sort"
	"time"
)

// HourlyLookback is the fixed lookback of the hourly trend view
const HourlyLookback = 3 * 24 * time.Hour

// AnalyzeHourly groups events from the last three days by local hour-of-day.
// Hours are aggregated across days, not kept as a 72-point series.
func AnalyzeHourly(events []FlowEvent, now time.Time, loc *time.Location) HourlyTrend {
	return analyzeHourly(events, now, HourlyLookback, loc)
}

func analyzeHourly(events []FlowEvent, now time.Time, lookback time.Duration, loc *time.Location) HourlyTrend {
	if loc == nil {
		loc = time.Local
	}
	cutoff := now.UnixMilli() - lookback.Milliseconds()

	perHour := make([]HourStat, 24)
	for h := range perHour {
		perHour[h].Hour = h
	}

	total := 0
	for _, ev := range events {
		if ev.TimestampMs < cutoff {
			continue
		}
		h := time.UnixMilli(ev.TimestampMs).In(loc).Hour()
		perHour[h].Count++
		perHour[h].Incoming += ev.Incoming
		perHour[h].Outgoing += ev.Outgoing
		total++
	}

	ranked := make([]HourStat, len(perHour))
	copy(ranked, perHour)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	peak, quietest := perHour[0], perHour[0]
	for _, hs := range perHour[1:] {
		if hs.Count > peak.Count {
			peak = hs
		}
		if hs.Count < quietest.Count {
			quietest = hs
		}
	}

	return HourlyTrend{
		PerHour:     perHour,
		Ranked:      ranked,
		TotalEvents: total,
		Peak:        peak,
		Quietest:    quietest,
	}
}
