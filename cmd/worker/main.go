package main

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/Facture-2/Facture5-V2/internal/application/auth"
	"github.com/Facture-2/Facture5-V2/internal/bootstrap"
	inframetrics "github.com/Facture-2/Facture5-V2/internal/infrastructure/metrics"
	"github.com/Facture-2/Facture5-V2/internal/infrastructure/redisstore"
	"github.com/Facture-2/Facture5-V2/internal/jobs"
	"github.com/Facture-2/Facture5-V2/pkg/config"
	"github.com/Facture-2/Facture5-V2/pkg/logger"
)

func main() {
	enqueueOnly := flag.Bool("enqueue", false, "encolar un barrido inmediato y salir")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name + "-worker"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}

	if *enqueueOnly {
		client := jobs.NewClient(redisOpts)
		defer client.Close()
		info, err := client.EnqueueExpirySweep(ctx, jobs.ExpirySweepPayload{})
		if err != nil {
			log.Fatal().Err(err).Msg("encolar barrido")
		}
		log.Info().Str("task_id", info.ID).Str("queue", info.Queue).Msg("barrido encolado")
		return
	}

	stores, err := bootstrap.OpenStores(ctx, cfg, log.Component("store"))
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacén")
	}
	defer stores.Close()

	rdb, err := bootstrap.OpenRedis(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer rdb.Close()

	metrics := inframetrics.New()
	authSvc, err := bootstrap.NewAuthService(ctx, cfg, stores,
		redisstore.NewSessionStore(rdb, cfg.Session.TTL), log.Component("auth"), auth.WithObserver(metrics))
	if err != nil {
		log.Fatal().Err(err).Msg("proveedor de identidad")
	}

	sweep := jobs.NewExpirySweepJob(stores.Companies, authSvc, metrics, log.Component("expiry_sweep"))
	sweepTask, err := jobs.NewExpirySweepTask(jobs.ExpirySweepPayload{})
	if err != nil {
		log.Fatal().Err(err).Msg("tarea de barrido")
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Log:       log.Component("worker"),
		Handlers:  []jobs.TaskHandler{{Type: jobs.TaskExpirySweep, Handler: sweep.Handle}},
		Cron:      []jobs.CronRegistration{{Spec: cfg.Jobs.ExpirySweepCron, Task: sweepTask}},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar worker")
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("worker")
	}
	log.Info().Msg("worker detenido")
}
