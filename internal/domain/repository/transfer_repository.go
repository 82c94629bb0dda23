package repository

import "github.com/jhoicas/adega-api/internal/domain/entity"

// TransferRepository persistencia del log de traslados entre tiendas.
// Registros inmutables; la pertenencia a la tienda secundaria se calcula
// sobre este log, nunca sobre un flag aparte.
type TransferRepository interface {
	Create(t *entity.StoreTransfer) error
	ListByProduct(productID string, limit, offset int) ([]*entity.StoreTransfer, error)
	ListRecent(limit int) ([]*entity.StoreTransfer, error)
	// HasInbound indica si existe al menos un traslado con destino en la tienda.
	HasInbound(productID string, store entity.Store) (bool, error)
}
