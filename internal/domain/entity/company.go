package entity

import "time"

// Company representa una empresa (tenant). Todos los recursos (productos,
// historial, órdenes, devoluciones y usuarios) pertenecen a exactamente una.
type Company struct {
	ID        string
	Name      string
	Status    string // active, suspended
	CreatedAt time.Time
	UpdatedAt time.Time
}
