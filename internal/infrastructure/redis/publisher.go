package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lumpybrain/DedMult/internal/config"
	"github.com/lumpybrain/DedMult/pkg/api"
	"github.com/lumpybrain/DedMult/pkg/logger"
)

// Connect открывает соединение с Redis. При выключенном Redis
// возвращает nil, nil.
func Connect(cfg config.RedisConfig) (*redis.Client, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"component": "redis",
		"operation": "connect",
	})

	if !cfg.Enabled {
		log.Info("Redis disabled, turn results are not mirrored")
		return nil, nil
	}

	var rdb *redis.Client
	if cfg.URL != "" {
		log.Debug("Connecting to Redis using URL")
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		rdb = redis.NewClient(opts)
	} else {
		log.WithFields(logrus.Fields{"host": cfg.Host, "port": cfg.Port}).Debug("Connecting to Redis using host/port")
		rdb = redis.NewClient(&redis.Options{
			Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     4,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	log.Info("Redis connection established successfully")
	return rdb, nil
}

// Publisher зеркалирует итоги ходов в канал Redis для наблюдателей.
type Publisher struct {
	client  *redis.Client
	channel string
}

func NewPublisher(client *redis.Client, channel string) *Publisher {
	return &Publisher{client: client, channel: channel}
}

// Message - то, что уходит в канал.
type Message struct {
	Turn      int                `json:"turn"`
	Published time.Time          `json:"published"`
	Update    api.ServerResponse `json:"update"`
}

func encode(update api.ServerResponse, now time.Time) ([]byte, error) {
	return json.Marshal(Message{Turn: update.Turn, Published: now.UTC(), Update: update})
}

// Publish отправляет итог хода в канал.
func (p *Publisher) Publish(ctx context.Context, update api.ServerResponse) error {
	data, err := encode(update, time.Now())
	if err != nil {
		return fmt.Errorf("encode turn %d: %w", update.Turn, err)
	}

	receivers, err := p.client.Publish(ctx, p.channel, data).Result()
	if err != nil {
		return fmt.Errorf("publish turn %d: %w", update.Turn, err)
	}

	logger.Log.WithFields(logrus.Fields{
		"component": "publisher",
		"channel":   p.channel,
		"turn":      update.Turn,
		"receivers": receivers,
	}).Debug("Turn result published")
	return nil
}

func (p *Publisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}
