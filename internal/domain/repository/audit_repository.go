package repository

import "github.com/jhoicas/adega-api/internal/domain/entity"

// AuditRepository sink de eventos de auditoría. Se emite después del commit;
// un fallo aquí se registra en el log pero no revierte la operación.
type AuditRepository interface {
	Append(e *entity.AuditEvent) error
}
