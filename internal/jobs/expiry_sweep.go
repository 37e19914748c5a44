package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/Facture-2/Facture5-V2/internal/domain"
	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
)

// ExpiredLister lista las empresas pro cuya expiración ya pasó.
type ExpiredLister interface {
	ListExpiredPro(ctx context.Context, now time.Time) ([]string, error)
}

// ExpiryChecker pasa a free una empresa expirada (lo implementa *auth.Service).
type ExpiryChecker interface {
	CheckExpiry(ctx context.Context, companyID string) (*entity.ExpiryNotice, error)
}

// SweepRecorder recibe el resultado de cada barrido (lo implementa *metrics.Metrics).
type SweepRecorder interface {
	SweepFinished(downgraded int, elapsed time.Duration, err error)
}

// ExpirySweepJob recorre las empresas pro expiradas y las pasa a free sin esperar a que
// su propietario inicie sesión.
type ExpirySweepJob struct {
	companies ExpiredLister
	checker   ExpiryChecker
	recorder  SweepRecorder
	log       zerolog.Logger
	now       func() time.Time
}

// NewExpirySweepJob construye el trabajo. recorder puede ser nil.
func NewExpirySweepJob(companies ExpiredLister, checker ExpiryChecker, recorder SweepRecorder, log zerolog.Logger) *ExpirySweepJob {
	return &ExpirySweepJob{
		companies: companies,
		checker:   checker,
		recorder:  recorder,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sustituye el reloj (tests).
func (j *ExpirySweepJob) WithClock(now func() time.Time) *ExpirySweepJob {
	j.now = now
	return j
}

// Handle procesa la tarea asynq del barrido.
func (j *ExpirySweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ExpirySweepPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("%w: payload inválido: %v", asynq.SkipRetry, err)
		}
	}
	_, err := j.Sweep(ctx, payload.Limit)
	return err
}

// Sweep ejecuta el barrido y devuelve cuántas empresas pasaron a free.
//
// Una empresa que falla no detiene el barrido; los errores se devuelven juntos al final
// para que asynq reintente. Las ya degradadas no se vuelven a escribir.
func (j *ExpirySweepJob) Sweep(ctx context.Context, limit int) (downgraded int, err error) {
	start := time.Now()
	defer func() {
		if j.recorder != nil {
			j.recorder.SweepFinished(downgraded, time.Since(start), err)
		}
	}()

	ids, err := j.companies.ListExpiredPro(ctx, j.now())
	if err != nil {
		j.log.Error().Err(err).Msg("listar empresas expiradas")
		return 0, domain.Persistence("barrido de expiración", err)
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	if len(ids) == 0 {
		j.log.Debug().Msg("sin empresas expiradas")
		return 0, nil
	}

	var errs []error
	for _, id := range ids {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		notice, cerr := j.checker.CheckExpiry(ctx, id)
		if cerr != nil {
			if errors.Is(cerr, domain.ErrNotFound) {
				continue
			}
			j.log.Error().Err(cerr).Str("company_id", id).Msg("paso a free")
			errs = append(errs, fmt.Errorf("%s: %w", id, cerr))
			continue
		}
		if notice != nil {
			downgraded++
		}
	}

	j.log.Info().
		Int("candidates", len(ids)).
		Int("downgraded", downgraded).
		Int("failed", len(errs)).
		Msg("barrido de expiración terminado")
	return downgraded, errors.Join(errs...)
}
