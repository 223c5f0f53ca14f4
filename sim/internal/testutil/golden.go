// Package testutil provides shared test infrastructure for the engine
// packages: the golden dataset of hand-verified runs and float assertions.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Paging     []GoldenPagingCase     `json:"paging"`
	Scheduling []GoldenSchedulingCase `json:"scheduling"`
}

// GoldenPagingCase is one reference string run to exhaustion.
type GoldenPagingCase struct {
	Name       string `json:"name"`
	Policy     string `json:"policy"`
	Capacity   int    `json:"capacity"`
	Sequence   []int  `json:"sequence"`
	Hits       int    `json:"hits"`
	Faults     int    `json:"faults"`
	FinalSlots []int  `json:"final_slots"`
}

// GoldenSchedulingCase is one job set served to completion.
// Jobs are [arrival, service] pairs in input order.
type GoldenSchedulingCase struct {
	Name          string     `json:"name"`
	Policy        string     `json:"policy"`
	Preemptive    bool       `json:"preemptive"`
	Jobs          [][2]int64 `json:"jobs"`
	Order         []int      `json:"order"`
	AvgWaiting    float64    `json:"avg_waiting"`
	AvgTurnaround float64    `json:"avg_turnaround"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
