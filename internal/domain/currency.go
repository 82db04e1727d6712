package domain

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// SupportedCurrencies lists every currency the backend accepts, in display order.
var SupportedCurrencies = []Currency{CurrencyUSD, CurrencyEUR}

// IsValid is an exact, case-sensitive membership check.
func (c Currency) IsValid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR:
		return true
	}
	return false
}

func (c Currency) String() string { return string(c) }
