package inventory

import "github.com/shopspring/decimal"

// Level clasifica el saldo de un producto frente a su umbral (servicio de dominio).
type Level struct {
	IsLow bool // saldo <= umbral de stock bajo
	IsOut bool // saldo <= 0
}

// EvaluateLevel calcula el nivel a partir del saldo vivo; se recalcula bajo
// demanda y no se cachea aparte para no crear una segunda fuente de verdad.
func EvaluateLevel(quantity, threshold decimal.Decimal) Level {
	return Level{
		IsLow: quantity.LessThanOrEqual(threshold),
		IsOut: quantity.LessThanOrEqual(decimal.Zero),
	}
}
