package repository

import "github.com/jhoicas/adega-api/internal/domain/entity"

// CustomerRepository lectura de clientes (las ventas fiadas exigen que el
// cliente exista). El recálculo de insights vive en el adaptador de
// infraestructura, detrás del port sales.CustomerInsights.
type CustomerRepository interface {
	GetByID(id string) (*entity.Customer, error)
}
