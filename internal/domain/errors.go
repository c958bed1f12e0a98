package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")

	// ErrInsufficientStock: la mutación dejaría el saldo en negativo. Nunca se
	// persiste, ni siquiera de forma transitoria.
	ErrInsufficientStock = errors.New("stock insuficiente")

	// ErrConflict: escritura concurrente detectada (versión desactualizada) o
	// una reversión que ya no es posible con el saldo actual.
	ErrConflict = errors.New("conflicto con el estado actual")

	// ErrInvalidTransition: la operación no corresponde al estado actual del
	// flujo (orden de compra o devolución).
	ErrInvalidTransition = errors.New("transición de estado inválida")

	// ErrUnavailable: el almacén de datos no respondió dentro del timeout.
	ErrUnavailable = errors.New("almacén de datos no disponible")

	// ErrLastAdmin: no se puede eliminar el único administrador activo de la empresa.
	ErrLastAdmin = errors.New("no se puede eliminar el último administrador")
)
