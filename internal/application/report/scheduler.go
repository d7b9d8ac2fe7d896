package report

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/ports"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Scheduler genera cada día el reporte general del día anterior a nombre de un usuario de sistema.
type Scheduler struct {
	sched   *cron.Cron
	gen     *Generator
	clock   ports.Clock
	userID  string
	timeout time.Duration
	log     zerolog.Logger
}

// NewScheduler valida la expresión cron y registra el job; no arranca hasta Start.
func NewScheduler(gen *Generator, clock ports.Clock, spec, systemUserID string, log zerolog.Logger) (*Scheduler, error) {
	if systemUserID == "" {
		return nil, fmt.Errorf("el job de reportes requiere un usuario de sistema")
	}
	s := &Scheduler{
		sched:   cron.New(cron.WithLocation(time.UTC), cron.WithParser(cronParser)),
		gen:     gen,
		clock:   clock,
		userID:  systemUserID,
		timeout: 2 * time.Minute,
		log:     log,
	}
	if _, err := s.sched.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("expresión cron %q: %w", spec, err)
	}
	return s, nil
}

// Start arranca el cron en segundo plano.
func (s *Scheduler) Start() {
	s.sched.Start()
}

// Stop detiene el cron y espera a que termine el job en curso o a ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.sched.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// RunOnce genera el reporte general del día anterior a now.
func (s *Scheduler) RunOnce(ctx context.Context) (*entity.Report, error) {
	to := startOfDay(s.clock.Now())
	from := to.AddDate(0, 0, -1)
	return s.gen.GenerateGeneralReport(ctx, s.userID, from, to)
}

func (s *Scheduler) run() {
	defer func() {
		if err := recover(); err != nil {
			s.log.Error().Interface("panic", err).Msg("job de reportes abortado")
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	rep, err := s.RunOnce(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("job de reportes falló")
		return
	}
	s.log.Info().Str("report_id", rep.ID).Msg("reporte diario generado")
}
