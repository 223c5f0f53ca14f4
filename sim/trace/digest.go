package trace

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/zeebo/xxh3"

	"github.com/inference-sim/ossim/sim"
)

// Digest fingerprints an event stream. Two streams digest equal iff they hold
// the same events in the same order (up to hash collisions); metric maps are
// encoded in key order so map iteration order never leaks in.
func Digest(events []sim.Event) uint64 {
	h := xxh3.New()
	var buf [8]byte
	putInt := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	}
	putString := func(s string) {
		putInt(int64(len(s)))
		_, _ = h.WriteString(s)
	}

	for _, ev := range events {
		putString(string(ev.Engine))
		putString(string(ev.Kind))
		putInt(int64(ev.SubjectID))
		putString(ev.State)
		putInt(ev.Step)
		putInt(ev.Clock)

		keys := make([]string, 0, len(ev.Metrics))
		for k := range ev.Metrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		putInt(int64(len(keys)))
		for _, k := range keys {
			putString(k)
			putInt(int64(math.Float64bits(ev.Metrics[k])))
		}
	}
	return h.Sum64()
}
