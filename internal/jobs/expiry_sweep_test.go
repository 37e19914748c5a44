package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Facture-2/Facture5-V2/internal/domain"
	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
	"github.com/Facture-2/Facture5-V2/internal/jobs"
)

var sweepNow = time.Date(2026, 4, 1, 3, 0, 0, 0, time.UTC)

// --- Mocks ---

type MockLister struct{ mock.Mock }

func (m *MockLister) ListExpiredPro(ctx context.Context, now time.Time) ([]string, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockChecker struct{ mock.Mock }

func (m *MockChecker) CheckExpiry(ctx context.Context, companyID string) (*entity.ExpiryNotice, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ExpiryNotice), args.Error(1)
}

type recorder struct {
	calls      int
	downgraded int
	err        error
}

func (r *recorder) SweepFinished(downgraded int, _ time.Duration, err error) {
	r.calls++
	r.downgraded = downgraded
	r.err = err
}

func newJob(l *MockLister, c *MockChecker, r *recorder) *jobs.ExpirySweepJob {
	var rec jobs.SweepRecorder
	if r != nil {
		rec = r
	}
	return jobs.NewExpirySweepJob(l, c, rec, zerolog.Nop()).WithClock(func() time.Time { return sweepNow })
}

// --- Tests ---

func TestSweep_DegradaCadaEmpresaExpirada(t *testing.T) {
	lister, checker, rec := new(MockLister), new(MockChecker), &recorder{}
	lister.On("ListExpiredPro", mock.Anything, sweepNow).Return([]string{"a", "b", "c"}, nil)
	notice := &entity.ExpiryNotice{ExpiredAt: sweepNow.Add(-time.Hour), DowngradedAt: sweepNow}
	checker.On("CheckExpiry", mock.Anything, "a").Return(notice, nil)
	checker.On("CheckExpiry", mock.Anything, "b").Return(nil, nil) // ya degradada por otra vía
	checker.On("CheckExpiry", mock.Anything, "c").Return(notice, nil)

	n, err := newJob(lister, checker, rec).Sweep(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, 2, rec.downgraded)
	checker.AssertNumberOfCalls(t, "CheckExpiry", 3)
}

func TestSweep_FalloDeUnaEmpresaNoDetieneElBarrido(t *testing.T) {
	lister, checker, rec := new(MockLister), new(MockChecker), &recorder{}
	lister.On("ListExpiredPro", mock.Anything, sweepNow).Return([]string{"a", "b", "c"}, nil)
	checker.On("CheckExpiry", mock.Anything, "a").Return(nil, domain.Persistence("merge", errors.New("timeout")))
	checker.On("CheckExpiry", mock.Anything, "b").Return(nil, domain.ErrNotFound)
	checker.On("CheckExpiry", mock.Anything, "c").Return(&entity.ExpiryNotice{DowngradedAt: sweepNow}, nil)

	n, err := newJob(lister, checker, rec).Sweep(context.Background(), 0)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.NotErrorIs(t, err, domain.ErrNotFound, "una empresa borrada no es un fallo")
	assert.Equal(t, 1, n)
	assert.Equal(t, err, rec.err)
}

func TestSweep_ErrorAlListar(t *testing.T) {
	lister, checker, rec := new(MockLister), new(MockChecker), &recorder{}
	lister.On("ListExpiredPro", mock.Anything, sweepNow).Return(nil, errors.New("conexión rechazada"))

	n, err := newJob(lister, checker, rec).Sweep(context.Background(), 0)

	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Zero(t, n)
	assert.Equal(t, 1, rec.calls)
	checker.AssertNotCalled(t, "CheckExpiry", mock.Anything, mock.Anything)
}

func TestSweep_RespetaLimite(t *testing.T) {
	lister, checker := new(MockLister), new(MockChecker)
	lister.On("ListExpiredPro", mock.Anything, sweepNow).Return([]string{"a", "b", "c"}, nil)
	checker.On("CheckExpiry", mock.Anything, mock.Anything).Return(&entity.ExpiryNotice{}, nil)

	n, err := newJob(lister, checker, nil).Sweep(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	checker.AssertNotCalled(t, "CheckExpiry", mock.Anything, "c")
}

func TestHandle_PayloadInvalido_NoReintenta(t *testing.T) {
	job := newJob(new(MockLister), new(MockChecker), nil)

	err := job.Handle(context.Background(), asynq.NewTask(jobs.TaskExpirySweep, []byte("{no-json")))

	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandle_TareaDelBarrido(t *testing.T) {
	lister, checker := new(MockLister), new(MockChecker)
	lister.On("ListExpiredPro", mock.Anything, sweepNow).Return([]string{}, nil)

	task, err := jobs.NewExpirySweepTask(jobs.ExpirySweepPayload{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, jobs.TaskExpirySweep, task.Type())

	require.NoError(t, newJob(lister, checker, nil).Handle(context.Background(), task))
	lister.AssertExpectations(t)
}

func TestNewWorker_CronInvalido_RetornaError(t *testing.T) {
	task, err := jobs.NewExpirySweepTask(jobs.ExpirySweepPayload{})
	require.NoError(t, err)

	_, err = jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"},
		Log:       zerolog.Nop(),
		Cron:      []jobs.CronRegistration{{Spec: "cada hora", Task: task}},
	})
	assert.Error(t, err)
}

func TestWorkerRun_CancelarContexto_Retorna(t *testing.T) {
	mr := miniredis.RunT(t)
	w, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: mr.Addr()},
		Log:       zerolog.Nop(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(15 * time.Second):
		t.Fatal("Run no terminó tras cancelar el contexto")
	}
}
