package model

import "sort"

// Ledger maps a yyyy-MM-dd date key to per-slot booking counts. A date is
// present only while at least one of its counts is positive.
type Ledger map[string][]int

func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for k, v := range l {
		counts := make([]int, len(v))
		copy(counts, v)
		out[k] = counts
	}
	return out
}

// Dates returns the ledger keys in ascending order.
func (l Ledger) Dates() []string {
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
