package trace

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/inference-sim/ossim/sim"
)

// JSONLinesSink writes each event as one JSON object per line, the format a
// remote visualizer tails. After the first write error the sink goes quiet
// and Err reports it; engines never see sink failures.
type JSONLinesSink struct {
	enc *json.Encoder
	err error
	n   int
}

// NewJSONLinesSink creates a sink writing to w.
func NewJSONLinesSink(w io.Writer) *JSONLinesSink {
	return &JSONLinesSink{enc: json.NewEncoder(w)}
}

func (s *JSONLinesSink) Emit(ev sim.Event) {
	if s.err != nil {
		return
	}
	if err := s.enc.Encode(ev); err != nil {
		s.err = fmt.Errorf("writing event %d: %w", s.n, err)
		return
	}
	s.n++
}

// Err returns the first write error, if any.
func (s *JSONLinesSink) Err() error { return s.err }

// Written returns how many events were written successfully.
func (s *JSONLinesSink) Written() int { return s.n }
