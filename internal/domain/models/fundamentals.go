package models

// Canonical metric names for FundamentalSnapshot lookups.
const (
	MetricRevenue           = "revenue"
	MetricFreeCashFlow      = "free_cash_flow"
	MetricSharesOutstanding = "shares_outstanding"
	MetricNetDebt           = "net_debt"
	MetricCash              = "cash"
	MetricMarketCap         = "market_cap"
	MetricBeta              = "beta"
	MetricPriceToBook       = "price_to_book"
	MetricROE               = "roe"
	MetricRevenueGrowth     = "revenue_growth"
	MetricEarningsGrowth    = "earnings_growth"
	MetricDebtToEquity      = "debt_to_equity"
	MetricTotalSupply       = "total_supply"
	MetricExchangeBalance   = "exchange_balance"
)

// FundamentalSnapshot is a point-in-time view of named financial metrics.
// Absent keys represent missing data, which every model treats as a
// first-class case rather than an error.
type FundamentalSnapshot struct {
	Symbol  string
	Metrics map[string]float64
}

// NewFundamentalSnapshot builds an empty snapshot for a symbol.
func NewFundamentalSnapshot(symbol string) FundamentalSnapshot {
	return FundamentalSnapshot{Symbol: symbol, Metrics: map[string]float64{}}
}

// Lookup returns a metric and whether it is present.
func (f FundamentalSnapshot) Lookup(name string) (float64, bool) {
	if f.Metrics == nil {
		return 0, false
	}
	v, ok := f.Metrics[name]
	return v, ok
}

// LookupDefault returns a metric or the given default when absent.
func (f FundamentalSnapshot) LookupDefault(name string, def float64) float64 {
	if v, ok := f.Lookup(name); ok {
		return v
	}
	return def
}

// Empty reports whether no metrics are present at all.
func (f FundamentalSnapshot) Empty() bool {
	return len(f.Metrics) == 0
}
