package ftr

// Summary aggregates the records of one file.
type Summary struct {
	Counts     map[RecordKind]int `json:"counts"`
	Streams    []uint64           `json:"streams"`
	FirstStart uint64             `json:"first_start"`
	LastEnd    uint64             `json:"last_end"`
}

// Summarize counts records by kind and computes the recorded time span.
// Streams lists stream ids in first-seen order, including streams that only
// appear in transaction records.
func Summarize(records []Record) Summary {
	sum := Summary{
		Counts:  make(map[RecordKind]int),
		Streams: []uint64{},
	}
	seen := make(map[uint64]bool)
	addStream := func(id uint64) {
		if !seen[id] {
			seen[id] = true
			sum.Streams = append(sum.Streams, id)
		}
	}

	first := true
	for _, r := range records {
		sum.Counts[r.Kind()]++
		switch rec := r.(type) {
		case StreamDescriptor:
			addStream(rec.StreamID)
		case TransactionHeader:
			addStream(rec.StreamID)
			if first || rec.StartTime < sum.FirstStart {
				sum.FirstStart = rec.StartTime
			}
			if first || rec.EndTime > sum.LastEnd {
				sum.LastEnd = rec.EndTime
			}
			first = false
		}
	}
	return sum
}
