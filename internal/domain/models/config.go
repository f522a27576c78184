package models

import "github.com/creasty/defaults"

// DCFConfig parameterizes the discounted cash flow model.
type DCFConfig struct {
	ProjectionYears int     `yaml:"projection_years" default:"5" validate:"min=1,max=20"`
	GrowthRate      float64 `yaml:"growth_rate" default:"0.05"`
	DiscountRate    float64 `yaml:"discount_rate" default:"0.10"`
	TerminalGrowth  float64 `yaml:"terminal_growth" default:"0.025"`
}

// FactorConfig parameterizes the factor model.
type FactorConfig struct {
	MarketReturn float64 `yaml:"market_return" default:"0.10"`
	RiskFreeRate float64 `yaml:"risk_free_rate" default:"0.03"`
	Inflation    float64 `yaml:"inflation" default:"0.025"`
	// ActualReturn enables alpha estimation when HasActualReturn is set.
	ActualReturn    float64 `yaml:"actual_return"`
	HasActualReturn bool    `yaml:"has_actual_return"`
}

// ARIMAConfig bounds the order search and forecast horizon.
type ARIMAConfig struct {
	MaxP            int `yaml:"max_p" default:"5" validate:"min=1,max=5"`
	MaxD            int `yaml:"max_d" default:"2" validate:"min=0,max=2"`
	MaxQ            int `yaml:"max_q" default:"5" validate:"min=0,max=5"`
	ForecastHorizon int `yaml:"forecast_horizon" default:"10" validate:"min=1,max=20"`
}

// FeatureConfig parameterizes the feature engineering pipeline.
type FeatureConfig struct {
	Lookbacks       []int  `yaml:"lookbacks" default:"[5,10,20,50]"`
	SequenceLength  int    `yaml:"sequence_length" default:"60" validate:"min=2"`
	ForecastHorizon int    `yaml:"forecast_horizon" default:"1" validate:"min=1"`
	Scaler          string `yaml:"scaler" default:"standard" validate:"oneof=standard minmax robust"`
}

// IchimokuConfig holds the five-line construction periods.
type IchimokuConfig struct {
	TenkanPeriod  int `yaml:"tenkan_period" default:"9" validate:"min=1"`
	KijunPeriod   int `yaml:"kijun_period" default:"26" validate:"min=1"`
	SenkouBPeriod int `yaml:"senkou_b_period" default:"52" validate:"min=1"`
	Displacement  int `yaml:"displacement" default:"26" validate:"min=1"`
}

// RegimeConfig parameterizes the volatility regime model.
type RegimeConfig struct {
	ShortWindow     int `yaml:"short_window" default:"10" validate:"min=2"`
	LongWindow      int `yaml:"long_window" default:"30" validate:"min=2"`
	ForecastPeriods int `yaml:"forecast_periods" default:"5" validate:"min=1,max=60"`
}

// FlowConfig parameterizes the exchange flow model.
type FlowConfig struct {
	TrendWindow int `yaml:"trend_window" default:"7" validate:"min=2"`
}

// DefaultDCFConfig returns a DCFConfig populated from struct tags.
func DefaultDCFConfig() DCFConfig {
	var c DCFConfig
	_ = defaults.Set(&c)
	return c
}

// DefaultFactorConfig returns a FactorConfig populated from struct tags.
func DefaultFactorConfig() FactorConfig {
	var c FactorConfig
	_ = defaults.Set(&c)
	return c
}

// DefaultARIMAConfig returns an ARIMAConfig populated from struct tags.
func DefaultARIMAConfig() ARIMAConfig {
	var c ARIMAConfig
	_ = defaults.Set(&c)
	return c
}

// DefaultFeatureConfig returns a FeatureConfig populated from struct tags.
func DefaultFeatureConfig() FeatureConfig {
	var c FeatureConfig
	_ = defaults.Set(&c)
	return c
}

// DefaultIchimokuConfig returns an IchimokuConfig populated from struct tags.
func DefaultIchimokuConfig() IchimokuConfig {
	var c IchimokuConfig
	_ = defaults.Set(&c)
	return c
}

// DefaultRegimeConfig returns a RegimeConfig populated from struct tags.
func DefaultRegimeConfig() RegimeConfig {
	var c RegimeConfig
	_ = defaults.Set(&c)
	return c
}

// DefaultFlowConfig returns a FlowConfig populated from struct tags.
func DefaultFlowConfig() FlowConfig {
	var c FlowConfig
	_ = defaults.Set(&c)
	return c
}
