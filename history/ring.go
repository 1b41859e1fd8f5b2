package history

import "encoding/json"

// DefaultCapacity is the number of records kept when none is configured.
const DefaultCapacity = 200

// Ring is a bounded log of records. Once full, each Push evicts the oldest
// record. It is not safe for concurrent use; Store serializes access.
type Ring struct {
	buf   []Record
	start int // index of the oldest record
	n     int
}

// NewRing returns an empty ring holding at most capacity records.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{buf: make([]Record, capacity)}
}

func (r *Ring) Len() int { return r.n }
func (r *Ring) Cap() int { return len(r.buf) }

// Push adds rec as the most recent record.
func (r *Ring) Push(rec Record) {
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = rec
		r.n++
		return
	}
	r.buf[r.start] = rec
	r.start = (r.start + 1) % len(r.buf)
}

// Records returns a copy of the log, most recent first.
func (r *Ring) Records() []Record {
	out := make([]Record, r.n)
	for i := 0; i < r.n; i++ {
		out[i] = r.buf[(r.start+r.n-1-i)%len(r.buf)]
	}
	return out
}

// Latest returns the most recent record.
func (r *Ring) Latest() (Record, bool) {
	if r.n == 0 {
		return Record{}, false
	}
	return r.buf[(r.start+r.n-1)%len(r.buf)], true
}

// Marshal encodes the log as a JSON array, most recent first.
func (r *Ring) Marshal() ([]byte, error) {
	return json.Marshal(r.Records())
}

// UnmarshalRing decodes data written by Marshal into a ring of the given
// capacity. It never fails: unreadable data yields an empty ring, unreadable
// entries are skipped, and entries past capacity are dropped from the old end.
func UnmarshalRing(data []byte, capacity int) *Ring {
	r := NewRing(capacity)
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return r
	}
	recs := make([]Record, 0, len(raw))
	for _, m := range raw {
		var rec Record
		if err := json.Unmarshal(m, &rec); err != nil {
			continue
		}
		recs = append(recs, rec)
		if len(recs) == r.Cap() {
			break
		}
	}
	for i := len(recs) - 1; i >= 0; i-- {
		r.Push(recs[i])
	}
	return r
}
