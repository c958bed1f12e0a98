package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una solicitud de devolución: pending → {approved, rejected},
// más approved → pending (reversión con delta compensatorio).
const (
	ReturnStatusPending  = "pending"
	ReturnStatusApproved = "approved"
	ReturnStatusRejected = "rejected"
)

// ReturnRequest representa una solicitud de devolución sobre una venta.
// El stock se restaura exactamente una vez por aprobación y se revierte
// exactamente una vez por reversión; el rechazo nunca toca el stock.
type ReturnRequest struct {
	ID            string
	CompanyID     string
	TransactionID string // venta que originó la devolución
	Status        string
	Items         []ReturnItem
	CreatedBy     string
	ReviewedBy    string // quien aprobó/rechazó; vacío mientras esté pending
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReturnItem es una línea devuelta.
type ReturnItem struct {
	ProductID string
	Quantity  decimal.Decimal
}
