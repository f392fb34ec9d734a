package utils

import (
	"runtime"
	"time"
)

// MemoryPressure classifies heap usage for the health endpoint
type MemoryPressure int

const (
	MemoryPressureNone MemoryPressure = iota
	MemoryPressureLow
	MemoryPressureMedium
	MemoryPressureHigh
)

// Heap thresholds in bytes. Each stored wallet report keeps its raw flow
// events, so heap grows with the number of analyzed wallets.
const (
	lowPressureThreshold    = 256 << 20
	mediumPressureThreshold = 512 << 20
	highPressureThreshold   = 1 << 30
)

// String returns string representation of memory pressure
func (mp MemoryPressure) String() string {
	switch mp {
	case MemoryPressureNone:
		return "none"
	case MemoryPressureLow:
		return "low"
	case MemoryPressureMedium:
		return "medium"
	case MemoryPressureHigh:
		return "high"
	default:
		return "unknown"
	}
}

// MarshalText renders the level by name in JSON
func (mp MemoryPressure) MarshalText() ([]byte, error) {
	return []byte(mp.String()), nil
}

// MemoryStats is a snapshot of the runtime heap
type MemoryStats struct {
	HeapAlloc  uint64         `json:"heapAlloc"`
	HeapInuse  uint64         `json:"heapInuse"`
	HeapSys    uint64         `json:"heapSys"`
	GCCycles   uint32         `json:"gcCycles"`
	LastGC     time.Time      `json:"lastGC"`
	Goroutines int            `json:"goroutines"`
	Pressure   MemoryPressure `json:"pressure"`
}

// ReadMemoryStats samples the runtime memory statistics
func ReadMemoryStats() MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return MemoryStats{
		HeapAlloc:  m.HeapAlloc,
		HeapInuse:  m.HeapInuse,
		HeapSys:    m.HeapSys,
		GCCycles:   m.NumGC,
		LastGC:     time.Unix(0, int64(m.LastGC)),
		Goroutines: runtime.NumGoroutine(),
		Pressure:   PressureFor(m.HeapAlloc),
	}
}

// PressureFor maps a heap allocation to a pressure level
func PressureFor(heapAlloc uint64) MemoryPressure {
	switch {
	case heapAlloc >= highPressureThreshold:
		return MemoryPressureHigh
	case heapAlloc >= mediumPressureThreshold:
		return MemoryPressureMedium
	case heapAlloc >= lowPressureThreshold:
		return MemoryPressureLow
	default:
		return MemoryPressureNone
	}
}
