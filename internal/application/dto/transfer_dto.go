package dto

import "time"

// TransferRequest body para POST /api/transfers.
type TransferRequest struct {
	ProductID  string `json:"product_id"`
	FromStore  int    `json:"from_store"`
	ToStore    int    `json:"to_store"`
	Packages   int64  `json:"packages"`
	UnitsLoose int64  `json:"units_loose"`
	Notes      string `json:"notes,omitempty"`
}

// TransferResponse traslado registrado.
type TransferResponse struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	FromStore  int       `json:"from_store"`
	ToStore    int       `json:"to_store"`
	Packages   int64     `json:"packages"`
	UnitsLoose int64     `json:"units_loose"`
	UserID     string    `json:"user_id"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// TransferListResponse historial de traslados.
type TransferListResponse struct {
	Items []*TransferResponse `json:"items"`
}
