package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	analyticsDomain "github.com/davicafu/tasksense/internal/analytics/domain"
	"github.com/davicafu/tasksense/internal/analytics/infra/outbound/clickhouse"
	"github.com/davicafu/tasksense/internal/analytics/infra/outbound/logsink"
	completionDomain "github.com/davicafu/tasksense/internal/completion/domain"
	"github.com/davicafu/tasksense/internal/completion/infra/outbound/disabled"
	"github.com/davicafu/tasksense/internal/completion/infra/outbound/gemini"
	"github.com/davicafu/tasksense/internal/completion/infra/outbound/openai"
	"github.com/davicafu/tasksense/internal/config"
	infraCache "github.com/davicafu/tasksense/internal/infra/cache"
	infraMongo "github.com/davicafu/tasksense/internal/infra/db/mongodb"
	infraEvents "github.com/davicafu/tasksense/internal/infra/events"
	notificationDomain "github.com/davicafu/tasksense/internal/notification/domain"
	notificationMongo "github.com/davicafu/tasksense/internal/notification/infra/outbound/db/mongodb"
	notificationRepo "github.com/davicafu/tasksense/internal/notification/infra/outbound/db/relational"
	sharedEvents "github.com/davicafu/tasksense/internal/shared/infra/events"
	sharedBus "github.com/davicafu/tasksense/internal/shared/infra/platform/bus"
	sharedCache "github.com/davicafu/tasksense/internal/shared/infra/platform/cache"
	sharedUtils "github.com/davicafu/tasksense/internal/shared/infra/utils"
	suggestionDomain "github.com/davicafu/tasksense/internal/suggestion/domain"
	suggestionMongo "github.com/davicafu/tasksense/internal/suggestion/infra/outbound/db/mongodb"
	suggestionRepo "github.com/davicafu/tasksense/internal/suggestion/infra/outbound/db/relational"
	"github.com/davicafu/tasksense/internal/suggestion/infra/outbound/filesystem"
)

const (
	pingTimeout = 3 * time.Second
	// memoryBusBuffer es la capacidad por lector del bus en proceso.
	memoryBusBuffer = 256
	// clientID identifica al proceso ante el broker al publicar.
	clientID = "tasksense"
)

// buildCache usa Redis si responde y cae a la cache en memoria si no.
func (a *App) buildCache(ctx context.Context, cfg config.CacheConfig) sharedCache.Cache {
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			c := infraCache.NewRedisCache(rdb, cfg.TTL)
			a.onClose("redis", c.Close)
			a.log.Info("✅ Redis conectado, cache habilitado", zap.String("addr", cfg.RedisAddr))
			return c
		}
		_ = rdb.Close()
		a.log.Warn("⚠️ Redis no disponible, cache en memoria", zap.Error(err))
	}

	c := infraCache.NewInMemoryCache(cfg.TTL, 3*cfg.TTL)
	a.onClose("memory-cache", func() error { c.Stop(); return nil })
	return c
}

// buildAnalytics devuelve el sink y, solo con ClickHouse, el reporter de consultas.
func (a *App) buildAnalytics(ctx context.Context, cfg config.AnalyticsConfig) (analyticsDomain.Sink, analyticsDomain.Reporter) {
	if cfg.ClickHouseAddr == "" {
		return logsink.New(a.log), nil
	}

	sink, err := clickhouse.NewPipelineSink(cfg.ClickHouseAddr, cfg.ClickHouseDatabase)
	if err == nil {
		err = sink.InitSchema(ctx)
		if err != nil {
			_ = sink.Close()
		}
	}
	if err != nil {
		a.log.Warn("⚠️ ClickHouse no disponible, analítica solo en logs", zap.Error(err))
		return logsink.New(a.log), nil
	}

	a.onClose("clickhouse", sink.Close)
	a.log.Info("✅ ClickHouse conectado", zap.String("addr", cfg.ClickHouseAddr))
	return sink, sink
}

func (a *App) buildCompleter(ctx context.Context, cfg config.CompletionConfig) (completionDomain.Completer, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewClient(cfg.APIKey, cfg.Model, cfg.BaseURL, &http.Client{Timeout: cfg.Timeout}), nil
	case "gemini":
		c, err := gemini.NewClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("creating gemini client: %w", err)
		}
		return c, nil
	default:
		a.log.Warn("⚠️ Completion deshabilitado, se usará el texto por defecto")
		return disabled.Completer{}, nil
	}
}

type artifactRepos struct {
	suggestions   suggestionDomain.SuggestionRepository
	notifications notificationDomain.NotificationRepository
}

// buildArtifacts elige dónde se guardan sugerencias y notificaciones.
func (a *App) buildArtifacts(ctx context.Context, cfg *config.Config, db *sqlx.DB) (artifactRepos, error) {
	if cfg.Storage.Artifacts != "mongo" {
		return artifactRepos{
			suggestions:   suggestionRepo.NewSuggestionRepo(db),
			notifications: notificationRepo.NewNotificationRepo(db),
		}, nil
	}

	client, err := infraMongo.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		return artifactRepos{}, err
	}
	a.onClose("mongo", func() error { return client.Disconnect(context.Background()) })

	mdb := client.Database(cfg.Mongo.Database)
	suggestions, err := suggestionMongo.NewSuggestionRepoMongoDB(ctx, mdb)
	if err != nil {
		return artifactRepos{}, err
	}
	notifications, err := notificationMongo.NewNotificationRepoMongoDB(ctx, mdb)
	if err != nil {
		return artifactRepos{}, err
	}
	a.log.Info("✅ MongoDB conectado", zap.String("database", cfg.Mongo.Database))
	return artifactRepos{suggestions: suggestions, notifications: notifications}, nil
}

func (a *App) buildDeadLetter(cfg config.DeadLetterConfig) suggestionDomain.DeadLetterArchive {
	if cfg.Path == "" {
		return nil
	}
	return filesystem.NewJSONDeadLetterArchive(cfg.Path)
}

// buildEvents devuelve publisher y fuente de particiones del transporte configurado.
// Con los eventos deshabilitados ambos son nil.
func (a *App) buildEvents(cfg config.EventsConfig) (sharedBus.EventPublisher, infraEvents.PartitionSource, error) {
	if !cfg.Enabled {
		a.log.Info("Eventos deshabilitados: no se publica ni se consume")
		return nil, nil, nil
	}

	if cfg.Transport == "memory" {
		a.log.Info("⚡️ Usando bus de eventos en memoria", zap.String("topic", cfg.Topic))
		bus := infraEvents.NewInMemoryEventBus(cfg.Topic, memoryBusBuffer)
		a.onClose("memory-bus", bus.Close)
		a.memoryBus = bus
		return bus, bus, nil
	}

	conn, err := infraEvents.ParseConnectionString(cfg.ConnectionString)
	if err != nil {
		return nil, nil, err
	}
	topic := sharedUtils.Coalesce(conn.EntityPath, cfg.Topic)

	a.log.Info("🚀 Usando Kafka como bus de eventos",
		zap.Strings("brokers", conn.Brokers),
		zap.String("topic", topic))

	publisher := sharedEvents.NewKafkaPublisher(conn.NewWriter(topic, clientID), a.log)
	a.onClose("kafka-writer", publisher.Close)
	source := infraEvents.NewKafkaPartitionSource(conn, topic, cfg.ConsumerGroup, infraEvents.ReaderBackoff{
		Initial: cfg.BackoffInitial,
		Max:     cfg.BackoffMax,
	}, a.log)
	return publisher, source, nil
}
