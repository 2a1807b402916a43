package market

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"SignalSentry/internal/format"
	"SignalSentry/internal/model"
)

// tdEndpoint describes how one indicator maps onto a Twelve Data endpoint
// and which parameters it takes beyond symbol/interval/apikey.
type tdEndpoint struct {
	path   string
	params func(req Request, v url.Values)
}

var tdIndicatorEndpoints = map[model.IndicatorKind]tdEndpoint{
	model.IndicatorRSI: {path: "rsi", params: func(req Request, v url.Values) {
		v.Set("time_period", periodOrDefault(req, "14"))
	}},
	model.IndicatorMACD: {path: "macd", params: func(_ Request, v url.Values) {
		v.Set("fast_period", "12")
		v.Set("slow_period", "26")
		v.Set("signal_period", "9")
	}},
	model.IndicatorBBands: {path: "bbands", params: func(req Request, v url.Values) {
		v.Set("time_period", periodOrDefault(req, "20"))
		v.Set("sd", "2")
	}},
	model.IndicatorStochRSI: {path: "stochrsi", params: func(req Request, v url.Values) {
		p := periodOrDefault(req, "14")
		v.Set("time_period", p)
		v.Set("fast_k_period", "3")
		v.Set("fast_d_period", "3")
		v.Set("rsi_time_period", p)
		v.Set("stoch_time_period", p)
	}},
	model.IndicatorSMA: {path: "sma", params: func(req Request, v url.Values) {
		v.Set("time_period", periodOrDefault(req, "14"))
	}},
	model.IndicatorEMA: {path: "ema", params: func(req Request, v url.Values) {
		v.Set("time_period", periodOrDefault(req, "14"))
	}},
	model.IndicatorVWAP: {path: "vwap", params: func(_ Request, _ url.Values) {}},
	model.IndicatorSupertrend: {path: "supertrend", params: func(req Request, v url.Values) {
		v.Set("time_period", periodOrDefault(req, "10"))
		m := req.IndicatorMultiplier
		if m == "" {
			m = "3"
		}
		v.Set("multiplier", m)
	}},
	// Twelve Data serves Parabolic SAR through the extended endpoint.
	model.IndicatorSAR: {path: "sarext", params: func(_ Request, v url.Values) {
		v.Set("start_value", "0.02")
		v.Set("offset", "0.02")
		v.Set("max_value", "0.2")
	}},
	model.IndicatorPivotPoints: {path: "pivot_points_hl", params: func(_ Request, _ url.Values) {}},
	model.IndicatorUltOsc: {path: "ultosc", params: func(_ Request, v url.Values) {
		v.Set("time_period1", "7")
		v.Set("time_period2", "14")
		v.Set("time_period3", "28")
	}},
}

// tdFieldAliases normalizes the provider's inconsistent field naming onto
// one canonical key per value, per indicator.
var tdFieldAliases = map[model.IndicatorKind]map[string]string{
	model.IndicatorRSI:      {"rsi": "rsi", "value": "rsi"},
	model.IndicatorMACD:     {"macd": "macd", "macd_signal": "signal", "signal": "signal", "macd_hist": "histogram", "histogram": "histogram"},
	model.IndicatorBBands:   {"upper_band": "upper", "upper": "upper", "middle_band": "middle", "middle": "middle", "lower_band": "lower", "lower": "lower"},
	model.IndicatorStochRSI: {"stochrsi": "k", "stochrsi_k": "k", "k": "k", "stochrsi_signal": "d", "stochrsi_d": "d", "d": "d"},
	model.IndicatorSMA:      {"sma": "sma", "value": "sma"},
	model.IndicatorEMA:      {"ema": "ema", "value": "ema"},
	model.IndicatorVWAP:     {"vwap": "vwap", "value": "vwap"},
	model.IndicatorSupertrend: {"supertrend": "supertrend", "value": "supertrend"},
	model.IndicatorSAR:      {"sar": "sar", "sarext": "sar", "value": "sar"},
	model.IndicatorPivotPoints: {
		"pivot_point": "pivot", "pivot": "pivot",
		"r1": "r1", "r2": "r2", "r3": "r3",
		"s1": "s1", "s2": "s2", "s3": "s3",
	},
	model.IndicatorUltOsc: {"ultosc": "ultosc", "value": "ultosc"},
}

func periodOrDefault(req Request, def string) string {
	if req.IndicatorPeriod != "" && req.IndicatorPeriod != "0" {
		return req.IndicatorPeriod
	}
	return def
}

// readableSymbol turns "BTC/USD" into "BTC TO USD" for spoken-style replies.
func readableSymbol(symbol string) string {
	s := strings.ReplaceAll(symbol, "/", " to ")
	s = strings.ReplaceAll(s, ":", " ")
	return strings.ToUpper(s)
}

// tdStatus is the error envelope every Twelve Data response may carry.
type tdStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (g *Gateway) tdError(body []byte) *UpstreamError {
	var st tdStatus
	if err := json.Unmarshal(body, &st); err == nil && st.Status == "error" {
		msg := st.Message
		if msg == "" {
			msg = "unknown error from data service"
		}
		if g.metrics != nil {
			g.metrics.UpstreamErrors.Inc()
		}
		return &UpstreamError{Provider: ProviderTwelveData, Message: msg}
	}
	return nil
}

func (g *Gateway) fetchQuote(ctx context.Context, req Request) (*Payload, error) {
	u := fmt.Sprintf("%s/quote?symbol=%s&apikey=%s",
		g.twelveDataBase, url.QueryEscape(req.Symbol), url.QueryEscape(g.twelveDataKey))
	log.Printf("[INFO] fetching live price for %s", req.Symbol)

	body, err := g.getJSON(ctx, u)
	if err != nil {
		return nil, err
	}
	if upErr := g.tdError(body); upErr != nil {
		return nil, upErr
	}

	var resp struct {
		Close json.Number `json:"close"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &IncompleteDataError{Msg: fmt.Sprintf("decode quote for %s: %v", req.Symbol, err)}
	}
	if resp.Close == "" {
		return nil, &IncompleteDataError{Msg: fmt.Sprintf("data service did not return a 'close' price for %s", req.Symbol)}
	}
	price, err := resp.Close.Float64()
	if err != nil {
		return nil, &IncompleteDataError{Msg: fmt.Sprintf("invalid 'close' price for %s: %v", req.Symbol, err)}
	}

	quote := &model.Quote{Symbol: req.Symbol, Price: price}
	return &Payload{
		Quote: quote,
		Text: fmt.Sprintf("The current price of %s is $%s.",
			readableSymbol(req.Symbol), humanize.FormatFloat("#,###.##", price)),
	}, nil
}

// tdBar is one entry of a time_series response; Twelve Data sends numbers
// as strings.
type tdBar struct {
	Datetime string      `json:"datetime"`
	Open     json.Number `json:"open"`
	High     json.Number `json:"high"`
	Low      json.Number `json:"low"`
	Close    json.Number `json:"close"`
	Volume   json.Number `json:"volume"`
}

func (g *Gateway) fetchSeries(ctx context.Context, req Request) (*Payload, error) {
	interval := req.Interval
	if interval == "" {
		interval = "1day"
	}
	outputSize := req.OutputSize
	if outputSize == "" {
		outputSize = "50"
	}
	if _, err := strconv.Atoi(outputSize); err != nil {
		return nil, &ValidationError{Msg: "'outputsize' parameter must be a whole number"}
	}

	u := fmt.Sprintf("%s/time_series?symbol=%s&interval=%s&outputsize=%s&apikey=%s",
		g.twelveDataBase, url.QueryEscape(req.Symbol), url.QueryEscape(interval),
		outputSize, url.QueryEscape(g.twelveDataKey))
	log.Printf("[INFO] fetching %s bars for %s (outputsize=%s)", interval, req.Symbol, outputSize)

	body, err := g.getJSON(ctx, u)
	if err != nil {
		return nil, err
	}
	if upErr := g.tdError(body); upErr != nil {
		return nil, upErr
	}

	var resp struct {
		Values []tdBar `json:"values"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &IncompleteDataError{Msg: fmt.Sprintf("decode time series for %s: %v", req.Symbol, err)}
	}
	if len(resp.Values) == 0 {
		return nil, &IncompleteDataError{Msg: fmt.Sprintf("no data found for %s with the specified interval and output size", req.Symbol)}
	}

	candles := make([]model.Candle, 0, len(resp.Values))
	for _, b := range resp.Values {
		c, err := b.toCandle()
		if err != nil {
			return nil, &IncompleteDataError{Msg: fmt.Sprintf("malformed bar for %s: %v", req.Symbol, err)}
		}
		candles = append(candles, c)
	}
	// The provider returns newest-first; candle sequences leave the gateway
	// oldest-first.
	sort.Slice(candles, func(i, j int) bool { return candles[i].Time.Before(candles[j].Time) })

	first := candles[0].Time.Format("2006-01-02 15:04:05")
	last := candles[len(candles)-1].Time.Format("2006-01-02 15:04:05")
	return &Payload{
		Candles: candles,
		Text: fmt.Sprintf("I have retrieved %d data points for %s at %s intervals, covering from %s to %s. This data includes Open, High, Low, and Close prices.",
			len(candles), readableSymbol(req.Symbol), interval, first, last),
	}, nil
}

func (b tdBar) toCandle() (model.Candle, error) {
	t, err := parseTDTime(b.Datetime)
	if err != nil {
		return model.Candle{}, err
	}
	c := model.Candle{Time: t}
	for _, f := range []struct {
		dst *float64
		src json.Number
	}{
		{&c.Open, b.Open}, {&c.High, b.High}, {&c.Low, b.Low}, {&c.Close, b.Close},
	} {
		v, err := f.src.Float64()
		if err != nil {
			return model.Candle{}, err
		}
		*f.dst = v
	}
	if b.Volume != "" {
		if v, err := b.Volume.Float64(); err == nil {
			c.Volume = v
		}
	}
	return c, nil
}

func parseTDTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", s)
}

func (g *Gateway) fetchIndicator(ctx context.Context, req Request) (*Payload, error) {
	kind := model.IndicatorKind(strings.ToUpper(string(req.Indicator)))
	if kind == "MA" {
		kind = model.IndicatorEMA
	}
	ep, ok := tdIndicatorEndpoints[kind]
	if !ok {
		return nil, &ValidationError{Msg: fmt.Sprintf("indicator %q is not supported", req.Indicator)}
	}

	interval := req.Interval
	if interval == "" {
		interval = "1day"
	}
	v := url.Values{}
	v.Set("symbol", req.Symbol)
	v.Set("interval", interval)
	v.Set("apikey", g.twelveDataKey)
	ep.params(req, v)

	u := fmt.Sprintf("%s/%s?%s", g.twelveDataBase, ep.path, v.Encode())
	log.Printf("[INFO] fetching %s for %s (interval=%s)", kind, req.Symbol, interval)

	body, err := g.getJSON(ctx, u)
	if err != nil {
		return nil, err
	}
	if upErr := g.tdError(body); upErr != nil {
		return nil, upErr
	}

	var resp struct {
		Values []map[string]json.Number `json:"values"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &IncompleteDataError{Msg: fmt.Sprintf("decode %s for %s: %v", kind, req.Symbol, err)}
	}
	if len(resp.Values) == 0 {
		return nil, &IncompleteDataError{Msg: fmt.Sprintf("data service did not return values for %s for %s", kind, req.Symbol)}
	}

	reading, err := normalizeReading(kind, req, resp.Values[0])
	if err != nil {
		return nil, err
	}

	sentence, err := format.Format(reading)
	if err != nil {
		return nil, &IncompleteDataError{Msg: err.Error()}
	}
	return &Payload{
		Reading: reading,
		Text:    fmt.Sprintf("For %s: %s", readableSymbol(req.Symbol), sentence),
	}, nil
}

// normalizeReading maps the provider's latest-values object onto the
// canonical field names for the indicator kind.
func normalizeReading(kind model.IndicatorKind, req Request, latest map[string]json.Number) (*model.IndicatorReading, error) {
	aliases := tdFieldAliases[kind]
	fields := make(map[string]float64, len(latest))
	for key, num := range latest {
		canonical, ok := aliases[strings.ToLower(key)]
		if !ok {
			continue // datetime and anything unrecognized
		}
		f, err := num.Float64()
		if err != nil {
			return nil, &IncompleteDataError{Msg: fmt.Sprintf("invalid %s value %q for field %s", kind, num, key)}
		}
		fields[canonical] = f
	}
	if len(fields) == 0 {
		return nil, &IncompleteDataError{Msg: fmt.Sprintf("data service did not return valid %s values", kind)}
	}

	period := 0
	if p, err := strconv.Atoi(periodOrDefault(req, defaultPeriodFor(kind))); err == nil {
		period = p
	}
	return &model.IndicatorReading{Kind: kind, Period: period, Fields: fields}, nil
}

func defaultPeriodFor(kind model.IndicatorKind) string {
	switch kind {
	case model.IndicatorSupertrend:
		return "10"
	case model.IndicatorBBands:
		return "20"
	case model.IndicatorMACD, model.IndicatorVWAP, model.IndicatorSAR,
		model.IndicatorPivotPoints, model.IndicatorUltOsc:
		return "0"
	default:
		return "14"
	}
}
