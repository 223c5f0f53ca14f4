package scenario

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/ossim/sim"
	"github.com/inference-sim/ossim/sim/paging"
	"github.com/inference-sim/ossim/sim/scheduling"
	"github.com/inference-sim/ossim/sim/trace"
)

var demoSequence = []paging.Page{1, 2, 3, 4, 1, 2, 5, 1, 2, 3}

var textbookJobs = []scheduling.JobSpec{
	{ArrivalTime: 0, ServiceTime: 8},
	{ArrivalTime: 1, ServiceTime: 4},
	{ArrivalTime: 2, ServiceTime: 9},
	{ArrivalTime: 3, ServiceTime: 5},
}

func TestRunPaging_DemoSequence(t *testing.T) {
	tests := []struct {
		policy     paging.PolicyKind
		wantHits   int
		wantFaults int
	}{
		{paging.FIFO, 2, 8},
		{paging.LRU, 2, 8},
		{paging.Optimal, 4, 6},
	}
	for _, tc := range tests {
		t.Run(string(tc.policy), func(t *testing.T) {
			res, err := RunPaging(3, tc.policy, demoSequence, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.wantHits, res.Stats.Hits)
			assert.Equal(t, tc.wantFaults, res.Stats.Faults)
			assert.Len(t, res.Outcomes, len(demoSequence))
			assert.Len(t, res.Residents, 3)
		})
	}
}

func TestRunPaging_InvalidCapacity(t *testing.T) {
	_, err := RunPaging(0, paging.FIFO, demoSequence, nil)
	assert.ErrorIs(t, err, sim.ErrInvalidConfiguration)
}

func TestRunScheduling_Averages(t *testing.T) {
	tests := []struct {
		name           string
		policy         scheduling.Policy
		preemptive     bool
		wantOrder      []int
		wantWaiting    float64
		wantTurnaround float64
		wantPreempts   int
	}{
		{"fcfs", scheduling.FCFS, false, []int{0, 1, 2, 3}, 8.75, 15.25, 0},
		{"srtf", scheduling.SRTF, false, []int{0, 1, 3, 2}, 7.75, 14.25, 0},
		{"srtf-preemptive", scheduling.SRTF, true, []int{1, 3, 0, 2}, 6.5, 13, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := RunScheduling(tc.policy, tc.preemptive, textbookJobs, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.wantOrder, res.Order)
			assert.InDelta(t, tc.wantWaiting, res.AvgWaiting, 1e-9)
			assert.InDelta(t, tc.wantTurnaround, res.AvgTurnaround, 1e-9)
			assert.Equal(t, tc.wantPreempts, res.Preemptions)
			assert.Equal(t, int64(26), res.Makespan)
			assert.InDelta(t, tc.wantWaiting, sim.CalculateMean(waitingTimes(res.Jobs)), 1e-9)
			for _, j := range res.Jobs {
				assert.Equal(t, scheduling.StateCompleted, j.State)
				assert.Equal(t, j.TurnaroundTime-j.ServiceTime, j.WaitingTime, "job %d", j.ID)
			}
		})
	}
}

func TestRunScheduling_IdleGapBetweenArrivals(t *testing.T) {
	// GIVEN a job that finishes before the next arrives
	jobs := []scheduling.JobSpec{{ArrivalTime: 0, ServiceTime: 2}, {ArrivalTime: 10, ServiceTime: 3}}

	// WHEN served
	res, err := RunScheduling(scheduling.FCFS, false, jobs, nil)

	// THEN the CPU idles until 10 and nobody waits
	require.NoError(t, err)
	assert.Equal(t, int64(13), res.Makespan)
	assert.Zero(t, res.AvgWaiting)
}

func TestRunMutex_RoundRobin(t *testing.T) {
	res, err := RunMutex(MutexSpec{Actors: 2, Rounds: 3}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 0, 1, 0, 1}, res.EntryOrder)
	assert.Equal(t, []int{3, 3}, res.Entries)
	assert.Zero(t, res.Blocked)
	assert.Equal(t, 18, res.Calls)
	assert.Equal(t, 1, res.MaxOccupancy)
}

func TestRunMutex_Interleaved_NeverTwoInside(t *testing.T) {
	for _, actors := range []int{1, 2, 3, 5} {
		for seed := int64(0); seed < 20; seed++ {
			cfg := MutexSpec{Actors: actors, Mode: ModeInterleaved, Steps: 200}
			res, err := RunMutex(cfg, rand.New(rand.NewSource(seed)), nil)
			require.NoError(t, err, "actors=%d seed=%d", actors, seed)
			assert.LessOrEqual(t, res.MaxOccupancy, 1)
			assert.Equal(t, 200, res.Calls)
			if actors == 2 {
				assert.Zero(t, res.GuardRefusals)
			}
		}
	}
}

func TestRunMutex_InterleavedNeedsRNG(t *testing.T) {
	_, err := RunMutex(MutexSpec{Actors: 2, Mode: ModeInterleaved, Steps: 5}, nil, nil)
	assert.ErrorIs(t, err, sim.ErrInvalidConfiguration)
}

func TestRun_DefaultSpec(t *testing.T) {
	// GIVEN the default scenario and a recorder
	rec := trace.NewRecorder()

	// WHEN run
	rep, err := Run(DefaultSpec(), rec)
	require.NoError(t, err)

	// THEN each engine reports its demo values and emitted events
	assert.Equal(t, 2, rep.Paging.Stats.Hits)
	assert.Equal(t, 8, rep.Paging.Stats.Faults)
	assert.InDelta(t, 8.75, rep.Scheduling.AvgWaiting, 1e-9)
	assert.Equal(t, []int{3, 3}, rep.Mutex.Entries)
	assert.NotEmpty(t, rec.Filter(sim.EnginePaging))
	assert.NotEmpty(t, rec.Filter(sim.EngineScheduling))
	assert.NotEmpty(t, rec.Filter(sim.EngineMutex))

	var buf bytes.Buffer
	rep.Print(&buf)
	assert.Contains(t, buf.String(), "=== Paging Metrics ===")
	assert.Contains(t, buf.String(), "Average Waiting      : 8.75 ticks")
	assert.Contains(t, buf.String(), "Entries              : [3 3]")
}

func generatedSpec(seed int64) *Spec {
	return &Spec{
		Seed: seed,
		Paging: &PagingSpec{
			Capacity: 4,
			Policy:   paging.LRU,
			Generate: &SequenceGenSpec{Length: 60, DistinctPages: 9},
		},
		Scheduling: &SchedulingSpec{
			Policy:     scheduling.SRTF,
			Preemptive: true,
			Generate:   &JobGenSpec{Count: 12, MaxArrival: 30, MinService: 1, MaxService: 10},
		},
		Mutex: &MutexSpec{Actors: 3, Mode: ModeInterleaved, Steps: 100},
	}
}

func TestRun_SameSeed_SameDigest(t *testing.T) {
	digest := func(seed int64) uint64 {
		rec := trace.NewRecorder()
		_, err := Run(generatedSpec(seed), rec)
		require.NoError(t, err)
		return trace.Summarize(rec).Digest
	}

	assert.Equal(t, digest(11), digest(11))
	assert.NotEqual(t, digest(11), digest(12))
}

func TestRun_InvalidSpec(t *testing.T) {
	_, err := Run(&Spec{}, nil)
	assert.ErrorIs(t, err, sim.ErrInvalidConfiguration)
}

func TestGenerateJobs_SortedAndInRange(t *testing.T) {
	g := JobGenSpec{Count: 50, MaxArrival: 20, MinService: 2, MaxService: 6}
	jobs := GenerateJobs(g, rand.New(rand.NewSource(3)))
	require.Len(t, jobs, 50)
	for i, j := range jobs {
		assert.GreaterOrEqual(t, j.ArrivalTime, int64(0))
		assert.LessOrEqual(t, j.ArrivalTime, int64(20))
		assert.GreaterOrEqual(t, j.ServiceTime, int64(2))
		assert.LessOrEqual(t, j.ServiceTime, int64(6))
		if i > 0 {
			assert.LessOrEqual(t, jobs[i-1].ArrivalTime, j.ArrivalTime)
		}
	}
}

func TestGenerateSequence_InRange(t *testing.T) {
	seq := GenerateSequence(SequenceGenSpec{Length: 100, DistinctPages: 4}, rand.New(rand.NewSource(9)))
	require.Len(t, seq, 100)
	for _, p := range seq {
		assert.GreaterOrEqual(t, int(p), 1)
		assert.LessOrEqual(t, int(p), 4)
	}
}

func waitingTimes(jobs []scheduling.Job) []int64 {
	out := make([]int64, len(jobs))
	for i, j := range jobs {
		out[i] = j.WaitingTime
	}
	return out
}

func TestRunScheduling_WaitingPercentiles(t *testing.T) {
	// GIVEN the textbook jobs under FCFS: waits are 0, 7, 10, 18
	res, err := RunScheduling(scheduling.FCFS, false, textbookJobs, nil)
	require.NoError(t, err)

	// THEN percentiles interpolate over the sorted waits
	assert.InDelta(t, 8.5, res.WaitingP50, 1e-9)
	assert.InDelta(t, 15.6, res.WaitingP90, 1e-9)
	assert.Equal(t, int64(18), res.WaitingMax)
}

func TestGenerators_ReproducibleUnderOneKey(t *testing.T) {
	seqGen := SequenceGenSpec{Length: 40, DistinctPages: 6}
	jobGen := JobGenSpec{Count: 10, MaxArrival: 25, MinService: 1, MaxService: 8}

	a := sim.NewPartitionedRNG(sim.NewSimulationKey(5))
	b := sim.NewPartitionedRNG(sim.NewSimulationKey(5))
	// b draws jobs before pages; each subsystem still sees its own stream
	jobsB := GenerateJobs(jobGen, b.ForSubsystem(sim.SubsystemJobs))
	seqB := GenerateSequence(seqGen, b.ForSubsystem(sim.SubsystemPages))

	assert.Equal(t, seqB, GenerateSequence(seqGen, a.ForSubsystem(sim.SubsystemPages)))
	assert.Equal(t, jobsB, GenerateJobs(jobGen, a.ForSubsystem(sim.SubsystemJobs)))
}

func TestRunMutex_InterleavedPickerIsDeterministic(t *testing.T) {
	cfg := MutexSpec{Actors: 3, Mode: ModeInterleaved, Steps: 150}
	run := func(seed int64) *MutexResult {
		rng := sim.NewPartitionedRNG(sim.NewSimulationKey(seed))
		res, err := RunMutex(cfg, rng.ForSubsystem(sim.SubsystemActors), nil)
		require.NoError(t, err)
		return res
	}

	assert.Equal(t, run(8), run(8))
}
