// README: Common money value object used across modules.
package types

// DefaultCurrency is the currency of waste-bank unit prices.
const DefaultCurrency = "IDR"

// Money is an amount in the smallest unit of Currency (whole rupiah for IDR).
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func Rupiah(amount int64) Money {
	return Money{Amount: amount, Currency: DefaultCurrency}
}

// Float returns the amount as a float for feature engineering.
func (m Money) Float() float64 {
	return float64(m.Amount)
}

func (m Money) IsZero() bool {
	return m.Amount == 0
}
