package application

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	analyticsDomain "github.com/davicafu/tasksense/internal/analytics/domain"
	completionDomain "github.com/davicafu/tasksense/internal/completion/domain"
	"github.com/davicafu/tasksense/internal/notification/domain"
	sharedCache "github.com/davicafu/tasksense/internal/shared/infra/platform/cache"
	taskDomain "github.com/davicafu/tasksense/internal/task/domain"
	userDomain "github.com/davicafu/tasksense/internal/user/domain"
)

var ErrSweepInProgress = errors.New("sweep already running")

// dedupGrace se suma a la ventana para que la clave sobreviva al último tick en que
// la tarea sigue dentro de ella.
const dedupGrace = time.Hour

type UserLister interface {
	ListAllUsers(ctx context.Context) ([]*userDomain.User, error)
}

type TaskLister interface {
	ListIncompleteForUser(ctx context.Context, userID int64) ([]*taskDomain.Task, error)
}

type TipGenerator interface {
	GenerateSuggestion(ctx context.Context, task completionDomain.TaskSummary) string
}

type NotificationCreator interface {
	Create(ctx context.Context, ownerID *int64, message string) (*domain.Notification, error)
}

type SchedulerOptions struct {
	Interval       time.Duration
	DeadlineWindow time.Duration
	// Dedup limita a uno el aviso de fin próximo por tarea y fin; necesita cache.
	Dedup bool
}

// SweepReport resume una pasada del barrido.
type SweepReport struct {
	Users         int
	Notifications int
	FailedUsers   int
	StartedAt     time.Time
	Duration      time.Duration
}

// Scheduler recorre periódicamente las tareas pendientes de todos los usuarios y
// genera avisos de "vence hoy" y de "fin próximo".
type Scheduler struct {
	users         UserLister
	tasks         TaskLister
	tips          TipGenerator
	notifications NotificationCreator
	cache         sharedCache.Cache
	analytics     analyticsDomain.Sink
	opts          SchedulerOptions
	log           *zap.Logger

	now     func() time.Time
	running atomic.Bool
	runs    atomic.Int64
}

// NewScheduler acepta cache y analytics nil.
func NewScheduler(
	users UserLister,
	tasks TaskLister,
	tips TipGenerator,
	notifications NotificationCreator,
	cache sharedCache.Cache,
	analytics analyticsDomain.Sink,
	opts SchedulerOptions,
	log *zap.Logger,
) *Scheduler {
	return &Scheduler{
		users:         users,
		tasks:         tasks,
		tips:          tips,
		notifications: notifications,
		cache:         cache,
		analytics:     analytics,
		opts:          opts,
		log:           log,
		now:           time.Now,
	}
}

// Start lanza una pasada inmediata y después una por Interval, hasta que ctx se cancela.
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("🚀 Notification scheduler iniciado", zap.Duration("interval", s.opts.Interval))
	s.tick(ctx)

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("🛑 Notification scheduler detenido.")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	_, err := s.RunOnce(ctx)
	switch {
	case errors.Is(err, ErrSweepInProgress):
		s.log.Debug("Sweep still running, tick skipped")
	case err != nil:
		s.log.Warn("⚠️ Sweep abandoned", zap.Error(err))
	}
}

// Runs cuenta las pasadas terminadas, abandonadas incluidas.
func (s *Scheduler) Runs() int64 {
	return s.runs.Load()
}

// RunOnce ejecuta una pasada. Si otra sigue en curso devuelve ErrSweepInProgress
// sin hacer nada; si no se puede cargar la lista de usuarios la pasada se abandona.
func (s *Scheduler) RunOnce(ctx context.Context) (SweepReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return SweepReport{}, ErrSweepInProgress
	}
	defer s.running.Store(false)
	defer s.runs.Add(1)

	report := SweepReport{StartedAt: s.now()}
	s.log.Info("🔄 Ejecutando barrido de notificaciones")

	users, err := s.users.ListAllUsers(ctx)
	if err != nil {
		return report, fmt.Errorf("loading users: %w", err)
	}
	report.Users = len(users)

	for _, user := range users {
		if ctx.Err() != nil {
			break
		}
		created, err := s.sweepUser(ctx, user)
		report.Notifications += created
		if err != nil {
			report.FailedUsers++
			s.log.Warn("⚠️ Error procesando usuario en el barrido",
				zap.Int64("user_id", user.ID),
				zap.Error(err))
		}
	}

	report.Duration = s.now().Sub(report.StartedAt)
	s.log.Info("✅ Sweep completed",
		zap.Int("users", report.Users),
		zap.Int("notifications", report.Notifications),
		zap.Int("failed_users", report.FailedUsers),
		zap.Duration("duration", report.Duration))
	s.record(ctx, report)

	return report, nil
}

// sweepUser aísla los fallos de un usuario, panics incluidos.
func (s *Scheduler) sweepUser(ctx context.Context, user *userDomain.User) (created int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	tasks, err := s.tasks.ListIncompleteForUser(ctx, user.ID)
	if err != nil {
		return 0, err
	}

	now := s.now()
	dueToday := 0
	var nearDeadline []*taskDomain.Task
	for _, t := range tasks {
		if t.TouchesDay(now) {
			dueToday++
		}
		if t.EndsWithin(now, s.opts.DeadlineWindow) {
			nearDeadline = append(nearDeadline, t)
		}
	}

	if dueToday > 0 {
		if _, err := s.notifications.Create(ctx, &user.ID, domain.DueTodayMessage(dueToday)); err != nil {
			return created, err
		}
		created++
	}

	for _, t := range nearDeadline {
		ok, err := s.notifyNearDeadline(ctx, user, t)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

func (s *Scheduler) notifyNearDeadline(ctx context.Context, user *userDomain.User, t *taskDomain.Task) (bool, error) {
	key := domain.DeadlineDedupKey(t.ID, *t.End)
	if !s.claim(ctx, key) {
		s.log.Debug("Near-deadline notification already sent", zap.Int64("task_id", t.ID))
		return false, nil
	}

	tip := s.tips.GenerateSuggestion(ctx, completionDomain.TaskSummary{
		Name:        t.Name,
		Description: t.Description,
		Type:        t.Type,
	})
	if _, err := s.notifications.Create(ctx, &user.ID, domain.NearDeadlineMessage(t.Name, tip)); err != nil {
		s.release(ctx, key)
		return false, err
	}
	return true, nil
}

// claim reserva la clave de dedup. Sin dedup, o si la cache falla, siempre avisa.
func (s *Scheduler) claim(ctx context.Context, key string) bool {
	if !s.opts.Dedup || s.cache == nil {
		return true
	}
	ok, err := s.cache.SetIfAbsent(ctx, key, s.now().Unix(), s.opts.DeadlineWindow+dedupGrace)
	if err != nil {
		s.log.Warn("Dedup cache unavailable, notifying anyway", zap.String("key", key), zap.Error(err))
		return true
	}
	return ok
}

// release libera la clave para que el siguiente tick lo reintente.
func (s *Scheduler) release(ctx context.Context, key string) {
	if !s.opts.Dedup || s.cache == nil {
		return
	}
	if err := s.cache.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.log.Warn("Cache deletion failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Scheduler) record(ctx context.Context, report SweepReport) {
	if s.analytics == nil {
		return
	}
	err := s.analytics.Record(context.WithoutCancel(ctx), analyticsDomain.PipelineEvent{
		Kind:       analyticsDomain.KindSweepCompleted,
		Count:      report.Notifications,
		Failed:     report.FailedUsers,
		Duration:   report.Duration,
		OccurredAt: report.StartedAt,
	})
	if err != nil {
		s.log.Debug("Analytics record failed", zap.Error(err))
	}
}
