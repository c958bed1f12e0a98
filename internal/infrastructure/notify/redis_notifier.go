// Package notify publica los eventos de cambio de stock al bus externo.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/TiendaOps-api/internal/application/inventory"
)

var _ inventory.ChangeNotifier = (*RedisPublisher)(nil)
var _ inventory.ChangeNotifier = NopNotifier{}

// RedisPublisher publica cada evento como JSON en un canal por empresa
// (stock.changes.<company_id>). Los consumidores refetchean lo que necesiten:
// el evento solo lleva producto, saldo nuevo y tipo.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher construye el publicador.
func NewRedisPublisher(addr, password string, db int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisPublisher{client: client}
}

// Ping verifica la conexión.
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close cierra la conexión.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// Client expone el cliente para compartirlo con otros componentes (rate limiter).
func (p *RedisPublisher) Client() *redis.Client {
	return p.client
}

// PublishStockChange publica el evento en el canal de la empresa.
func (p *RedisPublisher) PublishStockChange(ctx context.Context, ev inventory.StockChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal stock change: %w", err)
	}
	channel := fmt.Sprintf("stock.changes.%s", ev.CompanyID)
	return p.client.Publish(ctx, channel, payload).Err()
}

// NopNotifier descarta los eventos. Se usa cuando Redis no está configurado.
type NopNotifier struct{}

// PublishStockChange no hace nada.
func (NopNotifier) PublishStockChange(_ context.Context, _ inventory.StockChangeEvent) error {
	return nil
}
