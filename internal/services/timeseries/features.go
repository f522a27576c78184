package timeseries

import (
	"context"
	"fmt"
	"math"
	"sort"

	"QuantPulse/internal/domain/models"
	domsvc "QuantPulse/internal/domain/service"
	"QuantPulse/internal/services/stats"
	applogger "QuantPulse/pkg/logger"
)

// FeatureService is the deterministic feature engineering pipeline for
// sequence models. Model fitting itself is an external collaborator; this
// service only produces the feature matrix and windowed (X, y) pairs.
type FeatureService struct {
	log *applogger.Logger
}

func NewFeatureService(log *applogger.Logger) *FeatureService {
	return &FeatureService{log: log}
}

func (s *FeatureService) BuildFeatures(ctx context.Context, prices models.PriceSeries, cfg models.FeatureConfig) (models.FeatureMatrix, error) {
	if len(cfg.Lookbacks) == 0 {
		cfg = models.DefaultFeatureConfig()
	}
	maxLookback := 0
	for _, p := range cfg.Lookbacks {
		if p > maxLookback {
			maxLookback = p
		}
	}
	if maxLookback < 26 {
		maxLookback = 26 // MACD slow period
	}
	warmup := maxLookback + 1
	if len(prices) <= warmup {
		return models.FeatureMatrix{}, fmt.Errorf("need more than %d bars, got %d", warmup, len(prices))
	}

	closes := prices.Closes()
	highs := prices.Highs()
	lows := prices.Lows()
	volumes := prices.Volumes()

	rets := append([]float64{0}, stats.SimpleReturns(closes)...)
	logRets := append([]float64{0}, stats.LogReturns(closes)...)

	type column struct {
		name   string
		values []float64
	}
	cols := []column{
		{"return", rets},
		{"log_return", logRets},
	}

	for _, p := range cfg.Lookbacks {
		ma := stats.RollingMean(closes, p)
		ratio := make([]float64, len(closes))
		for i := range closes {
			if ma[i] != 0 {
				ratio[i] = closes[i] / ma[i]
			}
		}
		vol := stats.RollingStd(rets, p)
		realized := make([]float64, len(vol))
		for i, v := range vol {
			realized[i] = v * math.Sqrt(stats.TradingDaysPerYear)
		}
		cols = append(cols,
			column{fmt.Sprintf("ma_%d", p), ma},
			column{fmt.Sprintf("ma_ratio_%d", p), ratio},
			column{fmt.Sprintf("volatility_%d", p), vol},
			column{fmt.Sprintf("realized_vol_%d", p), realized},
		)
	}

	cols = append(cols, column{"rsi_14", rsi(closes, 14)})

	macd, macdSignal, macdHist := macdLines(closes, 12, 26, 9)
	cols = append(cols,
		column{"macd", macd},
		column{"macd_signal", macdSignal},
		column{"macd_hist", macdHist},
	)

	bbUpper, bbLower, bbWidth := bollinger(closes, 20, 2)
	cols = append(cols,
		column{"bb_upper", bbUpper},
		column{"bb_lower", bbLower},
		column{"bb_width", bbWidth},
	)

	for _, k := range []int{1, 3, 5, 10} {
		cols = append(cols, column{fmt.Sprintf("momentum_%d", k), momentum(closes, k)})
	}
	for k := 1; k <= 5; k++ {
		cols = append(cols,
			column{fmt.Sprintf("price_lag_%d", k), lagged(closes, k)},
			column{fmt.Sprintf("return_lag_%d", k), lagged(rets, k)},
		)
	}

	dow := make([]float64, len(prices))
	month := make([]float64, len(prices))
	quarter := make([]float64, len(prices))
	for i, c := range prices {
		dow[i] = float64(c.Timestamp.Weekday())
		m := float64(c.Timestamp.Month())
		month[i] = m
		quarter[i] = math.Ceil(m / 3)
	}
	cols = append(cols,
		column{"day_of_week", dow},
		column{"month", month},
		column{"quarter", quarter},
	)

	volMA := stats.RollingMean(volumes, 20)
	volRatio := make([]float64, len(volumes))
	priceVolume := make([]float64, len(volumes))
	for i := range volumes {
		if volMA[i] != 0 {
			volRatio[i] = volumes[i] / volMA[i]
		}
		priceVolume[i] = closes[i] * volumes[i]
	}
	cols = append(cols,
		column{"volume_ma_20", volMA},
		column{"volume_ratio", volRatio},
		column{"price_volume", priceVolume},
	)

	hlRatio := make([]float64, len(prices))
	position := make([]float64, len(prices))
	for i := range prices {
		if lows[i] != 0 {
			hlRatio[i] = highs[i] / lows[i]
		}
		if span := highs[i] - lows[i]; span > 0 {
			position[i] = (closes[i] - lows[i]) / span
		} else {
			position[i] = 0.5
		}
	}
	cols = append(cols,
		column{"hl_ratio", hlRatio},
		column{"price_position", position},
	)

	m := models.FeatureMatrix{StartIndex: warmup}
	for _, c := range cols {
		m.Names = append(m.Names, c.name)
	}
	for i := warmup; i < len(prices); i++ {
		row := make([]float64, len(cols))
		for j, c := range cols {
			row[j] = c.values[i]
		}
		m.Rows = append(m.Rows, row)
		m.Target = append(m.Target, closes[i])
	}
	return m, nil
}

func (s *FeatureService) PrepareSequences(ctx context.Context, m models.FeatureMatrix, cfg models.FeatureConfig) (models.SequenceSet, error) {
	if cfg.SequenceLength <= 0 {
		cfg = models.DefaultFeatureConfig()
	}
	seqLen := cfg.SequenceLength
	horizon := cfg.ForecastHorizon
	if horizon < 1 {
		horizon = 1
	}
	if m.NumRows() < seqLen+horizon {
		return models.SequenceSet{}, fmt.Errorf("need at least %d rows, got %d", seqLen+horizon, m.NumRows())
	}

	rows := scaleColumns(m.Rows, cfg.Scaler)
	var set models.SequenceSet
	for i := 0; i+seqLen+horizon-1 < len(rows); i++ {
		set.X = append(set.X, rows[i:i+seqLen])
		set.Y = append(set.Y, m.Target[i+seqLen+horizon-1])
	}
	return set, nil
}

// scaleColumns applies columnwise scaling; unknown modes pass through.
func scaleColumns(rows [][]float64, mode string) [][]float64 {
	if len(rows) == 0 {
		return rows
	}
	nCols := len(rows[0])
	out := make([][]float64, len(rows))
	for i := range out {
		out[i] = make([]float64, nCols)
	}
	col := make([]float64, len(rows))
	for j := 0; j < nCols; j++ {
		for i := range rows {
			col[i] = rows[i][j]
		}
		var shift, scale float64
		switch mode {
		case "minmax":
			lo, hi := col[0], col[0]
			for _, v := range col {
				if v < lo {
					lo = v
				}
				if v > hi {
					hi = v
				}
			}
			shift, scale = lo, hi-lo
		case "robust":
			shift, scale = median(col), iqr(col)
		case "standard":
			shift, scale = stats.Mean(col), stats.Std(col)
		default:
			shift, scale = 0, 1
		}
		if scale == 0 {
			scale = 1
		}
		for i := range rows {
			out[i][j] = (rows[i][j] - shift) / scale
		}
	}
	return out
}

// rsi is the rolling-mean gain/loss variant, not Wilder smoothing.
func rsi(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}
	avgGain := stats.RollingMean(gains, period)
	avgLoss := stats.RollingMean(losses, period)
	for i := range closes {
		if avgLoss[i] == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain[i] / avgLoss[i]
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

func macdLines(closes []float64, fast, slow, signal int) (macd, sig, hist []float64) {
	fastEMA := stats.EMA(closes, fast)
	slowEMA := stats.EMA(closes, slow)
	macd = make([]float64, len(closes))
	for i := range closes {
		macd[i] = fastEMA[i] - slowEMA[i]
	}
	sig = stats.EMA(macd, signal)
	hist = make([]float64, len(closes))
	for i := range closes {
		hist[i] = macd[i] - sig[i]
	}
	return macd, sig, hist
}

func bollinger(closes []float64, period int, width float64) (upper, lower, bandWidth []float64) {
	ma := stats.RollingMean(closes, period)
	sd := stats.RollingStd(closes, period)
	upper = make([]float64, len(closes))
	lower = make([]float64, len(closes))
	bandWidth = make([]float64, len(closes))
	for i := range closes {
		upper[i] = ma[i] + width*sd[i]
		lower[i] = ma[i] - width*sd[i]
		if ma[i] != 0 {
			bandWidth[i] = (upper[i] - lower[i]) / ma[i]
		}
	}
	return upper, lower, bandWidth
}

func momentum(closes []float64, k int) []float64 {
	out := make([]float64, len(closes))
	for i := k; i < len(closes); i++ {
		if closes[i-k] != 0 {
			out[i] = closes[i]/closes[i-k] - 1
		}
	}
	return out
}

func lagged(xs []float64, k int) []float64 {
	out := make([]float64, len(xs))
	for i := k; i < len(xs); i++ {
		out[i] = xs[i-k]
	}
	return out
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	cp := append([]float64(nil), xs...)
	sort.Float64s(cp)
	n := len(cp)
	if n%2 == 1 {
		return cp[n/2]
	}
	return (cp[n/2-1] + cp[n/2]) / 2
}

func iqr(xs []float64) float64 {
	if len(xs) < 4 {
		return stats.Std(xs)
	}
	cp := append([]float64(nil), xs...)
	sort.Float64s(cp)
	q1 := cp[len(cp)/4]
	q3 := cp[3*len(cp)/4]
	return q3 - q1
}

var _ domsvc.FeatureEngineer = (*FeatureService)(nil)
