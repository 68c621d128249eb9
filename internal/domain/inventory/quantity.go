package inventory

import "github.com/shopspring/decimal"

// QuantityScale decimales con los que se persisten cantidades (NUMERIC(18,4) en saldos y kardex).
// Saldo y movimiento deben usar la misma escala para que el saldo sea la suma exacta del kardex.
const QuantityScale = 4

// RoundQuantity redondea a QuantityScale (mitad lejos de cero, igual que PostgreSQL).
func RoundQuantity(q decimal.Decimal) decimal.Decimal {
	return q.Round(QuantityScale)
}

// HasQuantityScale indica si q se puede guardar sin redondeo.
func HasQuantityScale(q decimal.Decimal) bool {
	return q.Equal(RoundQuantity(q))
}
