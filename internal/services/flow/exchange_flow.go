package flow

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"QuantPulse/internal/domain/models"
	domsvc "QuantPulse/internal/domain/service"
	"QuantPulse/internal/services/stats"
	applogger "QuantPulse/pkg/logger"
)

// Proportional splits used when transaction-level data is unavailable.
// These are documented approximations, not measured facts.
const (
	whaleInflowShare  = 0.30
	whaleOutflowShare = 0.25
	instInflowShare   = 0.40
	instOutflowShare  = 0.35
	largeTxFraction   = 0.15
)

var exchangeShares = []struct {
	name  string
	share float64
}{
	{"Binance", 0.35},
	{"Coinbase", 0.25},
	{"Kraken", 0.15},
	{"OKX", 0.15},
	{"Bybit", 0.10},
}

// FlowService analyzes aggregate exchange in/outflow for a crypto symbol.
type FlowService struct {
	log *applogger.Logger
}

func NewFlowService(log *applogger.Logger) *FlowService {
	return &FlowService{log: log}
}

func (s *FlowService) Analyze(ctx context.Context, symbol string, flows models.FlowSeries, fundamentals models.FundamentalSnapshot, cfg models.FlowConfig) (res models.FlowResult) {
	res = models.FlowResult{Symbol: symbol, Outcome: models.OK()}
	defer func() {
		if r := recover(); r != nil {
			if s.log != nil {
				s.log.Error("flow analysis panicked", applogger.String("symbol", symbol), applogger.Any("panic", r))
			}
			res = fallbackFlow(symbol, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if cfg.TrendWindow <= 0 {
		cfg = models.DefaultFlowConfig()
	}
	if len(flows) == 0 {
		res.Outcome = models.Degraded("no flow data")
		res.InflowTrend = "Insufficient Data"
		res.OutflowTrend = "Insufficient Data"
		res.SellingPressure = "Neutral - Balanced Flow"
		res.Signal = models.SignalHold
		res.Confidence = 0.1
		res.Interpretation = "No exchange flow data available."
		return res
	}

	inflows := make([]float64, len(flows))
	outflows := make([]float64, len(flows))
	nets := make([]float64, len(flows))
	var totalIn, totalOut float64
	for i, p := range flows {
		inflows[i] = p.Inflow
		outflows[i] = p.Outflow
		nets[i] = p.Inflow - p.Outflow
		totalIn += p.Inflow
		totalOut += p.Outflow
	}
	res.NetFlow = totalIn - totalOut

	res.InflowTrend = classifyTrend(inflows, cfg.TrendWindow)
	res.OutflowTrend = classifyTrend(outflows, cfg.TrendWindow)

	supply := fundamentals.LookupDefault(models.MetricTotalSupply, 0)
	balance := fundamentals.LookupDefault(models.MetricExchangeBalance, 0)
	if supply > 0 {
		res.BalanceRatio = balance / supply
	}

	res.SellingPressure = sellingPressure(res.NetFlow, res.InflowTrend, res.BalanceRatio)
	res.Momentum = flowMomentum(nets)
	res.Whale = whaleActivity(totalIn, totalOut, len(flows))
	res.Institutional = institutionalFlow(totalIn, totalOut)
	res.Exchanges = exchangeBreakdown(symbol, totalIn, totalOut)

	res.Signal = flowSignal(res.NetFlow)
	res.Confidence = stats.Clamp(0.3+float64(len(flows))*0.02, 0.3, 0.9)
	res.Interpretation = flowInterpretation(symbol, res)
	return res
}

// classifyTrend labels the direction of the last `window` points from the
// regression slope and correlation strength.
func classifyTrend(xs []float64, window int) string {
	if len(xs) < window {
		return "Insufficient Data"
	}
	reg := stats.LinearRegression(stats.Tail(xs, window))
	if math.Abs(reg.R) < 0.3 {
		return "Stable"
	}
	if reg.Slope > 0 {
		if reg.R > 0.5 {
			return "Increasing"
		}
		return "Slowly Increasing"
	}
	if reg.R < -0.5 {
		return "Decreasing"
	}
	return "Slowly Decreasing"
}

func sellingPressure(net float64, inflowTrend string, balanceRatio float64) string {
	switch {
	case net > 1000 && strings.Contains(inflowTrend, "Increasing"):
		return "High - Strong Inflows to Exchanges"
	case net > 0 && balanceRatio > 0.15:
		return "Moderate - Some Selling Pressure"
	case net < -1000:
		return "Low - Strong Outflows from Exchanges"
	case balanceRatio > 0 && balanceRatio < 0.10:
		return "Very Low - Limited Exchange Supply"
	default:
		return "Neutral - Balanced Flow"
	}
}

// flowMomentum compares the last-3 mean net flow against the prior-4 mean.
func flowMomentum(nets []float64) float64 {
	if len(nets) < 7 {
		return 0
	}
	recent := stats.Mean(nets[len(nets)-3:])
	prior := stats.Mean(nets[len(nets)-7 : len(nets)-3])
	if prior == 0 {
		return 0
	}
	return (recent - prior) / math.Abs(prior)
}

func whaleActivity(totalIn, totalOut float64, periods int) models.WhaleActivity {
	whaleIn := totalIn * whaleInflowShare
	whaleOut := totalOut * whaleOutflowShare
	out := models.WhaleActivity{
		InflowShare:  whaleInflowShare,
		OutflowShare: whaleOutflowShare,
		LargeTxCount: int(float64(periods) * largeTxFraction),
		Behavior:     "Neutral",
		Heuristic:    true,
	}
	if total := whaleIn + whaleOut; total > 0 {
		// outflows from exchanges read as accumulation into cold storage
		out.AccumulationScore = whaleOut / total
		out.DistributionScore = whaleIn / total
	}
	if out.AccumulationScore > 0.6 {
		out.Behavior = "Accumulating"
	} else if out.DistributionScore > 0.6 {
		out.Behavior = "Distributing"
	}
	return out
}

func institutionalFlow(totalIn, totalOut float64) models.InstitutionalFlow {
	out := models.InstitutionalFlow{
		InflowShare:  instInflowShare,
		OutflowShare: instOutflowShare,
		NetFlow:      totalIn*instInflowShare - totalOut*instOutflowShare,
		Phase:        "Neutral Phase",
		Heuristic:    true,
	}
	total := totalIn + totalOut
	if total > 0 {
		switch {
		case out.NetFlow > 0.1*total:
			out.Phase = "Inflow Phase"
		case out.NetFlow < -0.1*total:
			out.Phase = "Outflow Phase"
		}
	}
	return out
}

// exchangeBreakdown splits aggregate flow across named venues by fixed
// market share, with a deterministic pseudo-random liquidity figure so
// repeated runs agree.
func exchangeBreakdown(symbol string, totalIn, totalOut float64) []models.ExchangeBreakdown {
	out := make([]models.ExchangeBreakdown, 0, len(exchangeShares))
	for _, e := range exchangeShares {
		out = append(out, models.ExchangeBreakdown{
			Name:        e.name,
			MarketShare: e.share,
			Inflow:      totalIn * e.share,
			Outflow:     totalOut * e.share,
			Liquidity:   0.5 + pseudoUniform(symbol+e.name)*0.5,
			Heuristic:   true,
		})
	}
	return out
}

// pseudoUniform maps a key to a stable value in [0, 1).
func pseudoUniform(key string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return float64(h.Sum64()%10000) / 10000
}

func flowSignal(net float64) models.Signal {
	switch {
	case net > 1000:
		return models.SignalSell
	case net < -1000:
		return models.SignalBuy
	default:
		return models.SignalHold
	}
}

func flowInterpretation(symbol string, res models.FlowResult) string {
	direction := "into"
	amount := res.NetFlow
	if amount < 0 {
		direction = "out of"
		amount = -amount
	}
	return fmt.Sprintf("%s shows %.0f net units flowing %s exchanges; selling pressure: %s.",
		symbol, amount, direction, res.SellingPressure)
}

func fallbackFlow(symbol, reason string) models.FlowResult {
	return models.FlowResult{
		Outcome:        models.Fallback(reason),
		Symbol:         symbol,
		InflowTrend:    "Insufficient Data",
		OutflowTrend:   "Insufficient Data",
		Signal:         models.SignalHold,
		Confidence:     0,
		Interpretation: "Exchange flow analysis unavailable.",
	}
}

var _ domsvc.FlowAnalyzer = (*FlowService)(nil)
