package entity

import (
	"encoding/json"
	"time"
)

// Acciones auditadas por el core.
const (
	AuditActionSale     = "sale_completed"
	AuditActionTransfer = "stock_transfer"
)

// AuditEvent evento estructurado emitido tras una venta o traslado exitoso.
// El formato de almacenamiento del sink es externo; este core solo lo emite.
type AuditEvent struct {
	ID          string
	Action      string
	SubjectType string
	SubjectID   string
	UserID      string
	Details     json.RawMessage
	CreatedAt   time.Time
}
