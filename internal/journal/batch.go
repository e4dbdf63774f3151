package journal

import (
	"sort"
	"time"

	"github.com/cleared-dev/ledgerport/internal/model"
)

// Batch is the set of entry lines sharing a batch ID and date. The ledger
// writes one transaction per batch.
type Batch struct {
	ID      string
	Date    time.Time
	Entries []model.Entry
}

// GroupBatches groups lines by (batch, date), ordered by date then batch ID.
// Lines keep their source order within a batch.
func GroupBatches(entries []model.Entry) []Batch {
	type key struct {
		id   string
		date string
	}
	index := make(map[key]int)
	var batches []Batch
	for _, e := range entries {
		k := key{id: e.BatchID, date: e.Date.Format("2006-01-02")}
		i, ok := index[k]
		if !ok {
			i = len(batches)
			index[k] = i
			batches = append(batches, Batch{ID: e.BatchID, Date: e.Date})
		}
		batches[i].Entries = append(batches[i].Entries, e)
	}

	sort.SliceStable(batches, func(i, j int) bool {
		if !batches[i].Date.Equal(batches[j].Date) {
			return batches[i].Date.Before(batches[j].Date)
		}
		return batchLess(batches[i].ID, batches[j].ID)
	})
	return batches
}

// batchLess orders numeric batch IDs numerically and others lexically.
func batchLess(a, b string) bool {
	if len(a) != len(b) && isDigits(a) && isDigits(b) {
		return len(a) < len(b)
	}
	return a < b
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
