package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/realtime"
)

const DefaultChannel = "webotixs:sse"

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// envelope is the pub/sub payload. Origin identifies the publishing API
// instance so delivery lag and echo can be traced in logs.
type envelope struct {
	Origin  string              `json:"origin"`
	SentAt  time.Time           `json:"sentAt"`
	Message realtime.SSEMessage `json:"message"`
}

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
	origin  string
}

func NewRedisBus(log *logger.Logger, cfg RedisConfig) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	ch := strings.TrimSpace(cfg.Channel)
	if ch == "" {
		ch = DefaultChannel
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	b := &redisBus{
		log:     log.With("service", "RedisSSEBus", "channel", ch),
		rdb:     rdb,
		channel: ch,
		origin:  uuid.NewString(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.Ping(ctx); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return b, nil
}

// New picks the redis bus when an address is configured, else the local bus.
func New(log *logger.Logger, cfg RedisConfig) (Bus, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return NewLocalBus(), nil
	}
	return NewRedisBus(log, cfg)
}

func (b *redisBus) Ping(ctx context.Context) error {
	if err := b.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (b *redisBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	if err := validate(msg); err != nil {
		return err
	}
	raw, err := json.Marshal(envelope{Origin: b.origin, SentAt: time.Now().UTC(), Message: msg})
	if err != nil {
		return fmt.Errorf("encode SSE envelope: %w", err)
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var env envelope
				if err := json.Unmarshal([]byte(m.Payload), &env); err != nil {
					b.log.Warn("bad redis SSE payload", "error", err)
					continue
				}
				if validate(env.Message) != nil {
					b.log.Warn("dropping SSE envelope without channel or event", "origin", env.Origin)
					continue
				}
				if lag := time.Since(env.SentAt); !env.SentAt.IsZero() && lag > time.Second {
					b.log.Debug("slow SSE delivery", "origin", env.Origin, "lag_ms", lag.Milliseconds())
				}
				onMsg(env.Message)
			}
		}
	}()
	return nil
}

func (b *redisBus) Close() error {
	return b.rdb.Close()
}
