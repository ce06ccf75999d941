package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

// Broadcaster destino de los eventos recibidos (realtime.Hub).
type Broadcaster interface {
	Broadcast(ev entity.Event)
}

// Listener escucha el canal NOTIFY con una conexión dedicada y reenvía cada
// evento al Broadcaster. Si la conexión cae, reconecta con backoff exponencial.
type Listener struct {
	pool    *pgxpool.Pool
	out     Broadcaster
	log     zerolog.Logger
	channel string
	backoff *backoff.ExponentialBackOff
}

// NewListener construye el listener sobre EventsChannel.
func NewListener(pool *pgxpool.Pool, out Broadcaster, log zerolog.Logger) *Listener {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 30 * time.Second
	return &Listener{pool: pool, out: out, log: log, channel: EventsChannel, backoff: bo}
}

// Run bloquea hasta que ctx se cancela.
func (l *Listener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		wait := l.backoff.NextBackOff()
		l.log.Warn().Err(err).Dur("retry_in", wait).Msg("listener desconectado")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen conn: %w", err)
	}
	// La conexión queda suscrita: se cierra para que el pool no la reutilice.
	defer func() {
		_ = conn.Conn().Close(context.Background())
		conn.Release()
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", l.channel, err)
	}
	l.backoff.Reset()
	l.log.Info().Str("channel", l.channel).Msg("escuchando eventos")

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		ev, err := decodeNotification(n.Payload)
		if err != nil {
			l.log.Warn().Err(err).Msg("evento descartado")
			continue
		}
		l.out.Broadcast(ev)
	}
}

func decodeNotification(payload string) (entity.Event, error) {
	var ev entity.Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ev, fmt.Errorf("decode event: %w", err)
	}
	if ev.CompanyID == "" || ev.Type == "" {
		return ev, errors.New("decode event: type y company_id son obligatorios")
	}
	return ev, nil
}
