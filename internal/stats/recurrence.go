package stats

// BuildRecurrence returns one entry per active-day count 1..days, counting the
// counterparties active on exactly that many days.
func BuildRecurrence(m *CounterpartyMap, days int) []RecurrenceEntry {
	entries := make([]RecurrenceEntry, days)
	for i := range entries {
		entries[i] = RecurrenceEntry{ActiveDays: i + 1}
	}
	if m == nil {
		return entries
	}

	for _, rec := range m.records {
		n := len(rec.ActiveDaySet)
		if n < 1 || n > days {
			continue
		}
		entries[n-1].Wallets++
	}
	return entries
}
