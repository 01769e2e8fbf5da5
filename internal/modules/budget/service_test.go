package budget

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/budgetopt/internal/events"
	testingpkg "github.com/aristath/budgetopt/internal/testing"
	"github.com/aristath/budgetopt/pkg/cp"
)

type fakeSettings struct {
	scale     int64
	timeLimit time.Duration
	maxNodes  int64
	rules     Rules
}

func (f fakeSettings) WeightScale() int64             { return f.scale }
func (f fakeSettings) SolverTimeLimit() time.Duration { return f.timeLimit }
func (f fakeSettings) SolverMaxNodes() int64          { return f.maxNodes }
func (f fakeSettings) Rules() Rules                   { return f.rules }

type observation struct {
	status string
	nodes  int64
}

type fakeRecorder struct {
	mu     sync.Mutex
	runs   []observation
	losses []int64
}

func (r *fakeRecorder) ObserveOptimization(status string, _ time.Duration, nodes int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, observation{status: status, nodes: nodes})
}

func (r *fakeRecorder) ObserveLoss(loss int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.losses = append(r.losses, loss)
}

type serviceFixture struct {
	service  *Service
	recorder *fakeRecorder
	received map[events.EventType][]*events.Event
}

func newServiceFixture(t *testing.T, settings SettingsProvider) *serviceFixture {
	t.Helper()
	bus := events.NewBus(zerolog.Nop())
	f := &serviceFixture{
		recorder: &fakeRecorder{},
		received: make(map[events.EventType][]*events.Event),
	}
	for _, et := range events.AllTypes() {
		et := et
		bus.Subscribe(et, func(e *events.Event) { f.received[et] = append(f.received[et], e) })
	}
	f.service = NewService(newTestOptimizer(), settings, f.recorder, events.NewManager(bus, zerolog.Nop()), zerolog.Nop())
	return f
}

func TestService_OptimizeReference(t *testing.T) {
	f := newServiceFixture(t, nil)

	run, err := f.service.Optimize(context.Background(), Request{Current: testingpkg.ReferenceInput()})
	require.NoError(t, err)

	_, err = uuid.Parse(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, cp.Optimal, run.Status)
	assert.Equal(t, int64(20000), *run.Loss)
	assert.Equal(t, int64(DefaultScale), run.Scale)

	require.Len(t, f.recorder.runs, 1)
	assert.Equal(t, "OPTIMAL", f.recorder.runs[0].status)
	assert.Equal(t, []int64{20000}, f.recorder.losses)

	require.Len(t, f.received[events.BudgetOptimized], 1)
	data := f.received[events.BudgetOptimized][0].Data
	assert.Equal(t, run.RunID, data["run_id"])
	assert.Equal(t, float64(20000), data["loss"])
	assert.Empty(t, f.received[events.BudgetInfeasible])
}

func TestService_UsesSettingsAndOverrides(t *testing.T) {
	settings := fakeSettings{
		scale:     2000,
		timeLimit: 5 * time.Second,
		rules:     Rules{SavingsFloorPct: 10, NeedsCeilingPct: 60, WantsCeilingPct: 40},
	}
	f := newServiceFixture(t, settings)

	run, err := f.service.Optimize(context.Background(), Request{Current: testingpkg.ReferenceInput()})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), run.Scale)
	assert.Zero(t, *run.Loss)

	scale := int64(1000)
	rules := DefaultRules()
	run, err = f.service.Optimize(context.Background(), Request{
		Current: testingpkg.ReferenceInput(),
		Scale:   &scale,
		Rules:   &rules,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), run.Scale)
	assert.Equal(t, int64(20000), *run.Loss)

	assert.Equal(t, int64(2000), f.service.DefaultScale())
	assert.Equal(t, settings.rules, f.service.DefaultRules())
}

func TestService_InfeasibleEmitsEvent(t *testing.T) {
	f := newServiceFixture(t, nil)

	run, err := f.service.Optimize(context.Background(), Request{
		Current: map[string]interface{}{"monthly_take_home": 4010},
	})
	require.NoError(t, err)
	assert.False(t, run.Solved())
	assert.Nil(t, run.Loss)

	require.Len(t, f.received[events.BudgetInfeasible], 1)
	assert.Equal(t, "INFEASIBLE", f.received[events.BudgetInfeasible][0].Data["status"])
	assert.Empty(t, f.recorder.losses)
	assert.Equal(t, "INFEASIBLE", f.recorder.runs[0].status)
}

func TestService_Validation(t *testing.T) {
	f := newServiceFixture(t, nil)

	_, err := f.service.Optimize(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	for _, seconds := range []float64{0, -1, 301} {
		limit := seconds
		_, err = f.service.Optimize(context.Background(), Request{
			Current:          testingpkg.ReferenceInput(),
			TimeLimitSeconds: &limit,
		})
		assert.ErrorIs(t, err, ErrInvalidInput, "%v", seconds)
	}

	_, err = f.service.Optimize(context.Background(), Request{
		Current: map[string]interface{}{"monthly_take_home": -5},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Empty(t, f.recorder.runs)
	assert.Empty(t, f.received[events.ErrorOccurred])
}

func TestService_NodeLimitFromSettings(t *testing.T) {
	f := newServiceFixture(t, fakeSettings{scale: DefaultScale, maxNodes: 1, rules: DefaultRules()})

	run, err := f.service.Optimize(context.Background(), Request{
		Current: map[string]interface{}{"monthly_take_home": 1500},
	})
	require.NoError(t, err)
	assert.Equal(t, "node limit", run.Stats.StopReason)
	assert.LessOrEqual(t, run.Stats.Nodes, int64(2))
}
