package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/TiendaOps-api/internal/domain/inventory"
)

func TestEvaluateLevel(t *testing.T) {
	cases := []struct {
		name      string
		quantity  string
		threshold string
		isLow     bool
		isOut     bool
	}{
		{"por encima del umbral", "10", "5", false, false},
		{"exactamente en el umbral", "5", "5", true, false},
		{"por debajo del umbral", "3", "5", true, false},
		{"agotado", "0", "5", true, true},
		{"umbral cero y saldo cero", "0", "0", true, true},
		{"umbral cero con saldo", "1", "0", false, false},
		{"decimales en el umbral", "2.5", "2.5", true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			level := inventory.EvaluateLevel(
				decimal.RequireFromString(tc.quantity),
				decimal.RequireFromString(tc.threshold),
			)
			assert.Equal(t, tc.isLow, level.IsLow)
			assert.Equal(t, tc.isOut, level.IsOut)
		})
	}
}
