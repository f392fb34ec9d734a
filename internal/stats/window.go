package stats

import (
	"sort"
	"time"
)

const (
	fineBucketSize   = 5 * time.Minute
	coarseBucketSize = time.Hour
	defaultTopWindow = 5
)

// AnalyzeWindow computes the flow panel for events with timestamp >= now-window.
// The lower bound is inclusive. Event order does not matter except for
// breaking ties between equally active counterparties (first seen wins).
func AnalyzeWindow(events []FlowEvent, window time.Duration, now time.Time) WindowResult {
	return analyzeWindow(events, window, now, defaultTopWindow)
}

func analyzeWindow(events []FlowEvent, window time.Duration, now time.Time, topN int) WindowResult {
	if window < 0 {
		window = 0
	}
	windowMs := window.Milliseconds()
	endMs := now.UnixMilli()
	startMs := endMs - windowMs

	bucketSize := coarseBucketSize
	if window <= time.Hour {
		bucketSize = fineBucketSize
	}
	bucketMs := bucketSize.Milliseconds()
	bucketCount := int((windowMs + bucketMs - 1) / bucketMs)

	result := WindowResult{
		WindowMs:     windowMs,
		BucketSizeMs: bucketMs,
		StartMs:      startMs,
		EndMs:        endMs,
		Buckets:      make([]WindowBucket, bucketCount),
	}
	for i := range result.Buckets {
		result.Buckets[i].StartMs = startMs + int64(i)*bucketMs
	}

	perCounterparty := make(map[string]*WindowCounterparty)
	var order []string

	for _, ev := range events {
		if ev.TimestampMs < startMs {
			continue
		}

		result.EventCount++
		result.TotalIncoming += ev.Incoming
		result.TotalOutgoing += ev.Outgoing

		cp, ok := perCounterparty[ev.Counterparty]
		if !ok {
			cp = &WindowCounterparty{Address: ev.Counterparty}
			perCounterparty[ev.Counterparty] = cp
			order = append(order, ev.Counterparty)
		}
		cp.Count++
		cp.Incoming += ev.Incoming
		cp.Outgoing += ev.Outgoing

		if bucketCount == 0 {
			continue
		}
		idx := int((ev.TimestampMs - startMs) / bucketMs)
		if idx >= bucketCount {
			idx = bucketCount - 1
		}
		bucket := &result.Buckets[idx]
		bucket.Count++
		bucket.Incoming += ev.Incoming
		bucket.Outgoing += ev.Outgoing
	}

	result.Net = result.TotalIncoming - result.TotalOutgoing
	result.DistinctCounterparties = len(order)

	ranked := make([]WindowCounterparty, 0, len(order))
	for _, address := range order {
		ranked = append(ranked, *perCounterparty[address])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	result.TopCounterparties = ranked

	return result
}
