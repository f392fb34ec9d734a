package tracker

import (
	"github.com/axiomhq/hyperloglog"
)

// Overlap summarizes how the tracked wallets' counterparty sets intersect
type Overlap struct {
	// EstimatedUniqueCounterparties is the HyperLogLog estimate of the union
	EstimatedUniqueCounterparties uint64        `json:"estimatedUniqueCounterparties"`
	Pairs                         []PairOverlap `json:"pairs"`
}

// PairOverlap is the exact shared counterparty count of two wallets
type PairOverlap struct {
	A      string `json:"a"`
	B      string `json:"b"`
	Shared int    `json:"shared"`
}

// computeOverlap builds the cross-wallet summary over every report that
// carries an analysis
func computeOverlap(reports []*WalletReport) (Overlap, error) {
	union := hyperloglog.New14()
	sets := make([]map[string]struct{}, len(reports))

	for i, report := range reports {
		if report == nil || report.Analysis == nil {
			continue
		}
		sketch := hyperloglog.New14()
		set := make(map[string]struct{})
		for _, address := range report.Analysis.CounterpartyAddresses() {
			sketch.Insert([]byte(address))
			set[address] = struct{}{}
		}
		if err := union.Merge(sketch); err != nil {
			return Overlap{}, err
		}
		sets[i] = set
	}

	overlap := Overlap{
		EstimatedUniqueCounterparties: union.Estimate(),
		Pairs:                         make([]PairOverlap, 0),
	}
	for i := 0; i < len(reports); i++ {
		if sets[i] == nil {
			continue
		}
		for j := i + 1; j < len(reports); j++ {
			if sets[j] == nil {
				continue
			}
			shared := 0
			for address := range sets[i] {
				if _, ok := sets[j][address]; ok {
					shared++
				}
			}
			overlap.Pairs = append(overlap.Pairs, PairOverlap{
				A:      reports[i].Wallet,
				B:      reports[j].Wallet,
				Shared: shared,
			})
		}
	}
	return overlap, nil
}
