package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"QuantPulse/internal/domain/models"
	domrepo "QuantPulse/internal/domain/repository"
	"QuantPulse/internal/services/stats"
	applogger "QuantPulse/pkg/logger"
	"QuantPulse/pkg/util"
)

// FileStore serves market data, fundamentals, and flow series from local
// files. Per symbol it expects:
//
//	<dir>/<SYMBOL>.csv               timestamp,open,high,low,close,volume
//	<dir>/<SYMBOL>_fundamentals.yaml metric: value map
//	<dir>/<SYMBOL>_flows.csv         timestamp,inflow,outflow
//
// A missing file yields an empty result, not an error; models degrade on
// empty input by contract.
type FileStore struct {
	dir string
	log *applogger.Logger
}

func NewFileStore(dir string, log *applogger.Logger) *FileStore {
	return &FileStore{dir: dir, log: log}
}

func (s *FileStore) GetPriceSeries(ctx context.Context, symbol string, limit int) (models.PriceSeries, error) {
	rows, err := s.readCSV(symbol + ".csv")
	if err != nil {
		return nil, err
	}
	if rows == nil {
		return nil, nil
	}

	series := make(models.PriceSeries, 0, len(rows))
	for i, row := range rows {
		if len(row) < 6 {
			s.warnRow(symbol+".csv", i, "too few columns")
			continue
		}
		ts, ok := util.ParseTime(row[0])
		if !ok {
			s.warnRow(symbol+".csv", i, "bad timestamp")
			continue
		}
		series = append(series, models.Candle{
			Timestamp: ts,
			Open:      util.ParseFloatDefault(row[1], 0),
			High:      util.ParseFloatDefault(row[2], 0),
			Low:       util.ParseFloatDefault(row[3], 0),
			Close:     util.ParseFloatDefault(row[4], 0),
			Volume:    util.ParseFloatDefault(row[5], 0),
		})
	}
	if limit > 0 && len(series) > limit {
		series = series[len(series)-limit:]
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("price series %s: %w", symbol, err)
	}
	return series, nil
}

func (s *FileStore) GetSnapshot(ctx context.Context, symbol string) (models.FundamentalSnapshot, error) {
	snap := models.NewFundamentalSnapshot(symbol)
	path := filepath.Join(s.dir, symbol+"_fundamentals.yaml")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return snap, nil
		}
		return snap, fmt.Errorf("read fundamentals %s: %w", symbol, err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return snap, fmt.Errorf("parse fundamentals %s: %w", symbol, err)
	}
	for name, value := range raw {
		switch v := value.(type) {
		case float64:
			snap.Metrics[name] = v
		case int:
			snap.Metrics[name] = float64(v)
		case string:
			// allow abbreviated figures like "1.50B" and "2.5%"
			if strings.HasSuffix(strings.TrimSpace(v), "%") {
				if f, ok := stats.ParsePercent(v); ok {
					snap.Metrics[name] = f
					continue
				}
			}
			if f, ok := stats.ParseCompactNumber(v); ok {
				snap.Metrics[name] = f
				continue
			}
			s.warnMetric(symbol, name, v)
		default:
			s.warnMetric(symbol, name, fmt.Sprintf("%v", value))
		}
	}
	return snap, nil
}

func (s *FileStore) GetFlowSeries(ctx context.Context, symbol string, limit int) (models.FlowSeries, error) {
	rows, err := s.readCSV(symbol + "_flows.csv")
	if err != nil {
		return nil, err
	}
	if rows == nil {
		return nil, nil
	}

	flows := make(models.FlowSeries, 0, len(rows))
	for i, row := range rows {
		if len(row) < 3 {
			s.warnRow(symbol+"_flows.csv", i, "too few columns")
			continue
		}
		ts, ok := util.ParseTime(row[0])
		if !ok {
			s.warnRow(symbol+"_flows.csv", i, "bad timestamp")
			continue
		}
		flows = append(flows, models.FlowPoint{
			Timestamp: ts,
			Inflow:    util.ParseFloatDefault(row[1], 0),
			Outflow:   util.ParseFloatDefault(row[2], 0),
		})
	}
	if limit > 0 && len(flows) > limit {
		flows = flows[len(flows)-limit:]
	}
	return flows, nil
}

// readCSV returns data rows with the header stripped, or nil when the
// file does not exist.
func (s *FileStore) readCSV(name string) ([][]string, error) {
	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var rows [][]string
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if first {
			first = false
			if looksLikeHeader(row) {
				continue
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// looksLikeHeader treats any first row whose leading cell is not a
// parseable timestamp as a header.
func looksLikeHeader(row []string) bool {
	if len(row) == 0 {
		return true
	}
	_, ok := util.ParseTime(row[0])
	return !ok
}

func (s *FileStore) warnMetric(symbol, name, value string) {
	if s.log == nil {
		return
	}
	s.log.Warn("skipping unparseable metric",
		applogger.String("symbol", symbol),
		applogger.String("metric", name),
		applogger.String("value", value))
}

func (s *FileStore) warnRow(file string, row int, reason string) {
	if s.log == nil {
		return
	}
	s.log.Warn("skipping malformed row",
		applogger.String("file", file),
		applogger.Int("row", row),
		applogger.String("reason", reason))
}

var (
	_ domrepo.MarketDataStore   = (*FileStore)(nil)
	_ domrepo.FundamentalsStore = (*FileStore)(nil)
	_ domrepo.FlowStore         = (*FileStore)(nil)
)
