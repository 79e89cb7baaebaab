package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	analyticsHttp "github.com/davicafu/tasksense/internal/analytics/infra/inbound/http"
	completionApp "github.com/davicafu/tasksense/internal/completion/application"
	completionDomain "github.com/davicafu/tasksense/internal/completion/domain"
	"github.com/davicafu/tasksense/internal/config"
	infraDB "github.com/davicafu/tasksense/internal/infra/db"
	infraEvents "github.com/davicafu/tasksense/internal/infra/events"
	notificationApp "github.com/davicafu/tasksense/internal/notification/application"
	notificationHttp "github.com/davicafu/tasksense/internal/notification/infra/inbound/http"
	suggestionApp "github.com/davicafu/tasksense/internal/suggestion/application"
	suggestionEvents "github.com/davicafu/tasksense/internal/suggestion/infra/inbound/events"
	suggestionHttp "github.com/davicafu/tasksense/internal/suggestion/infra/inbound/http"
	taskApp "github.com/davicafu/tasksense/internal/task/application"
	taskHttp "github.com/davicafu/tasksense/internal/task/infra/inbound/http"
	taskRepo "github.com/davicafu/tasksense/internal/task/infra/outbound/db/relational"
	userApp "github.com/davicafu/tasksense/internal/user/application"
	userHttp "github.com/davicafu/tasksense/internal/user/infra/inbound/http"
	userRepo "github.com/davicafu/tasksense/internal/user/infra/outbound/db/relational"
)

// handlerSlack es el margen del consumidor sobre el timeout de completion, para
// resolver al dueño y guardar la sugerencia.
const handlerSlack = 10 * time.Second

var ErrAlreadyStarted = errors.New("app already started")

// Option sustituye piezas del grafo; se usa en tests.
type Option func(*buildOptions)

type buildOptions struct {
	completer completionDomain.Completer
}

// WithCompleter ignora completion.provider y usa c.
func WithCompleter(c completionDomain.Completer) Option {
	return func(o *buildOptions) { o.completer = c }
}

type closer struct {
	name string
	fn   func() error
}

// App es el proceso completo: API HTTP, consumidor del stream y barrido.
type App struct {
	Router    *gin.Engine
	Scheduler *notificationApp.Scheduler

	cfg      *config.Config
	log      *zap.Logger
	server   *http.Server
	consumer *infraEvents.PartitionedConsumer
	closers  []closer
	// memoryBus solo existe con events.transport=memory.
	memoryBus *infraEvents.InMemoryEventBus

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Build conecta todas las dependencias. Si algo falla, cierra lo que ya se abrió.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger, opts ...Option) (*App, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{cfg: cfg, log: log}
	if err := a.build(ctx, o); err != nil {
		a.closeAll()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context, o buildOptions) error {
	cfg := a.cfg

	// ---------------- DB ----------------
	db, err := infraDB.OpenAndMigrate(ctx, cfg.Database.Driver, cfg.Database.URL, a.log)
	if err != nil {
		return err
	}
	a.onClose("database", db.Close)

	artifacts, err := a.buildArtifacts(ctx, cfg, db)
	if err != nil {
		return err
	}

	// ---------------- Cache / analytics ----------------
	cache := a.buildCache(ctx, cfg.Cache)
	sink, reporter := a.buildAnalytics(ctx, cfg.Analytics)

	// ---------------- Completion ----------------
	completer := o.completer
	if completer == nil {
		if completer, err = a.buildCompleter(ctx, cfg.Completion); err != nil {
			return err
		}
	}

	// ---------------- Events ----------------
	publisher, source, err := a.buildEvents(cfg.Events)
	if err != nil {
		return err
	}

	// --------------- Servicios --------------
	userService := userApp.NewUserService(userRepo.NewUserRepo(db), cache, cfg.Cache.TTL, a.log)
	taskService := taskApp.NewTaskService(taskRepo.NewTaskRepo(db), cache, publisher, cfg.Events.PublishTimeout, a.log)
	completionService := completionApp.NewCompletionService(completer, cfg.Completion.MaxTokens, cfg.Completion.Timeout, a.log)
	suggestionService := suggestionApp.NewSuggestionService(artifacts.suggestions, userService, sink, a.log)
	notificationService := notificationApp.NewNotificationService(artifacts.notifications, userService, a.log)

	if source != nil {
		handler := suggestionEvents.NewTaskCreatedHandler(
			userService,
			completionService,
			suggestionService,
			a.buildDeadLetter(cfg.DeadLetter),
			cfg.Completion.Timeout+handlerSlack,
			a.log,
		)
		a.consumer = infraEvents.NewPartitionedConsumer(source, handler, infraEvents.ConsumerOptions{
			Workers:        cfg.Events.Workers,
			BackoffInitial: cfg.Events.BackoffInitial,
			BackoffMax:     cfg.Events.BackoffMax,
		}, a.log)
	}

	a.Scheduler = notificationApp.NewScheduler(
		userService,
		taskService,
		completionService,
		notificationService,
		cache,
		sink,
		notificationApp.SchedulerOptions{
			Interval:       cfg.Sweep.Interval,
			DeadlineWindow: cfg.Sweep.DeadlineWindow,
			Dedup:          cfg.Sweep.Dedup,
		},
		a.log,
	)

	// ---------------- HTTP ----------------
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	userHttp.RegisterUserRoutes(router, userHttp.NewUserHandler(userService))
	taskHttp.RegisterTaskRoutes(router, taskHttp.NewTaskHandler(taskService))
	suggestionHttp.RegisterSuggestionRoutes(router, suggestionHttp.NewSuggestionHandler(suggestionService))
	notificationHttp.RegisterNotificationRoutes(router, notificationHttp.NewNotificationHandler(notificationService))
	if reporter != nil {
		analyticsHttp.RegisterAnalyticsRoutes(router, analyticsHttp.NewAnalyticsHandler(reporter))
	}

	a.Router = router
	a.server = &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Start arranca el consumidor, el barrido y el servidor HTTP sin bloquear.
func (a *App) Start(ctx context.Context) error {
	if err := a.StartPipeline(ctx); err != nil {
		return err
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.log.Info("🚀 Server running", zap.String("url", "http://localhost:"+a.cfg.HTTP.Port))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("HTTP server stopped", zap.Error(err))
		}
	}()
	return nil
}

// StartPipeline arranca solo el consumidor y el barrido, sin HTTP.
func (a *App) StartPipeline(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return ErrAlreadyStarted
	}
	a.started = true

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.consumer != nil {
		if err := a.consumer.Start(runCtx); err != nil {
			cancel()
			return fmt.Errorf("starting consumer: %w", err)
		}
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.Scheduler.Start(runCtx)
	}()
	return nil
}

// Shutdown deja de aceptar peticiones, para el consumidor y el barrido y cierra
// las conexiones en orden inverso al de apertura.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, fmt.Errorf("http: %w", err))
		}
	}

	a.mu.Lock()
	cancel := a.cancel
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if a.consumer != nil {
		a.consumer.Stop()
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("waiting for background loops: %w", ctx.Err()))
	}

	if err := a.closeAll(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) onClose(name string, fn func() error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

func (a *App) closeAll() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(); err != nil {
			a.log.Warn("Error closing resource", zap.String("resource", c.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
