package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/adega-api/internal/application/inventory"
	"github.com/jhoicas/adega-api/pkg/config"
)

var _ inventory.ReplayQueue = (*RetryQueue)(nil)

// RetryQueue cola durable de operaciones de stock sobre una lista de Redis.
// La lista es la única fuente de orden: el replay drena secuencialmente desde
// la cabeza, así el orden por clave (producto, tienda) se conserva sin
// coordinación adicional. Un fallo transitorio deja la entrada en la cabeza
// (con su contador incrementado) y espera el backoff; un fallo permanente o
// el agotamiento de intentos la mueve a la lista de muertos.
type RetryQueue struct {
	client *redis.Client
	cfg    config.QueueConfig

	// isPermanent clasifica errores de apply: true corta los reintentos.
	isPermanent func(error) bool
}

// NewRetryQueue construye la cola. classify puede ser nil; por defecto se usa
// inventory.IsPermanentError (los errores de dominio no se reintentan).
func NewRetryQueue(client *redis.Client, cfg config.QueueConfig, classify func(error) bool) *RetryQueue {
	if classify == nil {
		classify = inventory.IsPermanentError
	}
	return &RetryQueue{client: client, cfg: cfg, isPermanent: classify}
}

// Backoff espera antes del reintento attempt (0-based): base*2^attempt con tope.
func Backoff(base, max time.Duration, attempt int) time.Duration {
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}

// Append encola la operación al final de la lista.
func (q *RetryQueue) Append(ctx context.Context, op inventory.QueuedOperation) error {
	raw, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("marshal queued operation: %w", err)
	}
	if err := q.client.RPush(ctx, q.cfg.Key, raw).Err(); err != nil {
		return fmt.Errorf("enqueue operation: %w", err)
	}
	log.Info().Str("op_id", op.ID).Str("kind", op.Kind).Msg("Operación encolada para replay")
	return nil
}

// Replay drena la cola aplicando cada operación en orden. Devuelve nil cuando
// la cola queda vacía; corta con el error de contexto si ctx se cancela.
func (q *RetryQueue) Replay(ctx context.Context, apply func(ctx context.Context, op inventory.QueuedOperation) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, err := q.client.LIndex(ctx, q.cfg.Key, 0).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil // cola vacía
			}
			return fmt.Errorf("peek queue: %w", err)
		}

		var op inventory.QueuedOperation
		if err := json.Unmarshal(raw, &op); err != nil {
			// Entrada corrupta: a la lista de muertos tal cual.
			log.Error().Err(err).Msg("Entrada de replay ilegible, movida a la lista de muertos")
			if err := q.moveHeadToDead(ctx, raw); err != nil {
				return err
			}
			continue
		}

		applyErr := apply(ctx, op)
		if applyErr == nil {
			if err := q.client.LPop(ctx, q.cfg.Key).Err(); err != nil {
				return fmt.Errorf("pop applied operation: %w", err)
			}
			log.Info().Str("op_id", op.ID).Int("attempts", op.Attempts).Msg("Operación de replay aplicada")
			continue
		}

		op.Attempts++
		if q.isPermanent(applyErr) || op.Attempts >= q.cfg.MaxAttempts {
			log.Error().Err(applyErr).Str("op_id", op.ID).Int("attempts", op.Attempts).
				Msg("Operación de replay descartada a la lista de muertos")
			updated, _ := json.Marshal(op)
			if err := q.moveHeadToDead(ctx, updated); err != nil {
				return err
			}
			continue
		}

		// Fallo transitorio: la entrada se queda en la cabeza (con el
		// contador actualizado) para no reordenar la cola, y se espera el
		// backoff antes de volver a intentar.
		updated, _ := json.Marshal(op)
		if err := q.client.LSet(ctx, q.cfg.Key, 0, updated).Err(); err != nil {
			return fmt.Errorf("update attempt counter: %w", err)
		}
		wait := Backoff(q.cfg.BackoffBase, q.cfg.BackoffMax, op.Attempts-1)
		log.Warn().Err(applyErr).Str("op_id", op.ID).Int("attempts", op.Attempts).
			Dur("backoff", wait).Msg("Replay falló, reintento tras backoff")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// moveHeadToDead saca la cabeza de la cola y la apila en la lista de muertos.
func (q *RetryQueue) moveHeadToDead(ctx context.Context, raw []byte) error {
	pipe := q.client.TxPipeline()
	pipe.LPop(ctx, q.cfg.Key)
	pipe.RPush(ctx, q.cfg.DeadKey, raw)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("move to dead letter: %w", err)
	}
	return nil
}

// Len entradas pendientes, para observabilidad.
func (q *RetryQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.cfg.Key).Result()
}

// Close cierra la conexión subyacente.
func (q *RetryQueue) Close() error {
	return q.client.Close()
}
