package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"SignalScan/internal/service/hub"
	"SignalScan/internal/service/ratelimit"
	"SignalScan/internal/usecase"
	"SignalScan/pkg/config"
	xhttp "SignalScan/pkg/http"
	pkgkafka "SignalScan/pkg/kafka"
	applogger "SignalScan/pkg/logger"
)

const limiterIdle = 10 * time.Minute

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	scanner    *usecase.Scanner
	validator  *usecase.Validator
	hub        *hub.Hub
	httpServer *xhttp.Server
	limiter    *ratelimit.Limiter
	consumer   *pkgkafka.Consumer
	handlers   []pkgkafka.MessageHandler
}

func New(
	cfg *config.Config,
	log *applogger.Logger,
	scanner *usecase.Scanner,
	validator *usecase.Validator,
	h *hub.Hub,
	httpServer *xhttp.Server,
) *App {
	return &App{
		cfg:        cfg,
		log:        log.With("app"),
		scanner:    scanner,
		validator:  validator,
		hub:        h,
		httpServer: httpServer,
	}
}

// SetConsumer registers handlers on consumer; it is started with the app.
func (a *App) SetConsumer(consumer *pkgkafka.Consumer, handlers ...pkgkafka.MessageHandler) {
	a.consumer = consumer
	a.handlers = handlers
}

// SetLimiter lets the app sweep idle rate-limit buckets.
func (a *App) SetLimiter(l *ratelimit.Limiter) { a.limiter = l }

// Run starts the loops, the consumer and the HTTP server and blocks until
// SIGINT/SIGTERM or a fatal server error.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.run(ctx)
}

func (a *App) run(ctx context.Context) error {
	loopCtx, cancelLoops := context.WithCancel(context.Background())
	defer cancelLoops()

	g, gctx := errgroup.WithContext(loopCtx)
	g.Go(func() error { return a.scanner.Run(gctx) })
	g.Go(func() error { return a.validator.Run(gctx) })
	if a.limiter != nil {
		g.Go(func() error {
			a.sweepLimiter(gctx)
			return nil
		})
	}

	if a.consumer != nil {
		for _, h := range a.handlers {
			a.consumer.RegisterHandler(h)
		}
		if err := a.consumer.Start(); err != nil {
			a.log.Error("kafka consumer start error", applogger.Error(err))
		}
	}

	httpErr := a.httpServer.Start()
	a.log.Info("signalscan started",
		applogger.String("environment", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Bool("kafka", a.consumer != nil || a.cfg.Kafka.Enabled),
		applogger.Bool("clickhouse", a.cfg.ClickHouse.Enabled),
		applogger.Bool("redis", a.cfg.Redis.Enabled),
	)

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case err, ok := <-httpErr:
		if ok && err != nil {
			a.log.Error("http server error", applogger.Error(err))
			runErr = err
		}
	case <-gctx.Done():
		a.log.Warn("worker loop stopped")
	}

	cancelLoops()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		a.log.Error("loop error", applogger.Error(err))
		if runErr == nil {
			runErr = err
		}
	}
	a.shutdown()
	return runErr
}

func (a *App) sweepLimiter(ctx context.Context) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.limiter.Sweep(limiterIdle); n > 0 {
				a.log.Debug("rate limit buckets swept", applogger.Int("removed", n))
			}
		}
	}
}

// shutdown stops the HTTP server, the hub and the consumer. Clients are
// released by the caller afterwards.
func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}
	a.hub.Close()

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	a.log.RemoveCollector()
	a.log.Info("shutdown complete")
}
