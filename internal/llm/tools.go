package llm

// Tool names the relay dispatches on.
const (
	ToolGetMarketData         = "get_market_data"
	ToolGenerateTradingSignal = "generate_trading_signal"
	ToolAnalyzeCandlesticks   = "analyze_candlestick_patterns"
)

// ToolDeclarations returns the function schemas advertised to the model on
// every request.
func ToolDeclarations() []map[string]any {
	return []map[string]any{
		{
			"functionDeclarations": []map[string]any{
				{
					"name":        ToolGetMarketData,
					"description": "Fetches live price, historical data, or technical analysis indicators for a given symbol, or market news for a query.",
					"parameters": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"symbol": map[string]any{
								"type":        "string",
								"description": "Ticker symbol (e.g., 'BTC/USD', 'AAPL'). This is required.",
							},
							"data_type": map[string]any{
								"type":        "string",
								"enum":        []string{"live", "historical", "indicator", "news"},
								"description": "Type of data to fetch (live, historical, indicator, news). This is required.",
							},
							"interval": map[string]any{
								"type":        "string",
								"description": "Time interval (e.g., '1min', '1day'). Default to '1day' if not specified by user. Try to infer from context.",
							},
							"outputsize": map[string]any{
								"type":        "string",
								"description": "Number of data points. Default to '50' for historical, adjusted for indicator.",
							},
							"indicator": map[string]any{
								"type":        "string",
								"enum":        []string{"SMA", "EMA", "RSI", "MACD", "BBANDS", "STOCHRSI", "SUPERTREND", "VWAP", "SAR", "PIVOT_POINTS", "ULTOSC"},
								"description": "Name of the technical indicator. Required if data_type is 'indicator'.",
							},
							"indicator_period": map[string]any{
								"type":        "string",
								"description": "Period for the indicator (e.g., '14', '20', '50'). Default to '14' if not specified by user. For SMA or EMA, infer a period like '50' or '200' if the user mentions 'golden cross' or a specific time frame.",
							},
							"indicator_multiplier": map[string]any{
								"type":        "string",
								"description": "Multiplier for indicators like Supertrend. Default to '3'.",
							},
							"news_query": map[string]any{
								"type":        "string",
								"description": "Keywords for news search.",
							},
							"from_date": map[string]any{
								"type":        "string",
								"description": "Start date for news (YYYY-MM-DD). Defaults to 7 days ago.",
							},
							"sort_by": map[string]any{
								"type":        "string",
								"enum":        []string{"relevancy", "popularity", "publishedAt"},
								"description": "How to sort news.",
							},
							"news_language": map[string]any{
								"type":        "string",
								"description": "Language of news.",
							},
						},
						"required": []string{"symbol", "data_type"},
					},
				},
				{
					"name":        ToolGenerateTradingSignal,
					"description": "The primary function for providing a crypto Buy, Sell, or Hold signal. It performs a structured technical analysis (SMA, MACD, RSI, Supertrend) to determine market direction and confidence.",
					"parameters": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"symbol": map[string]any{
								"type":        "string",
								"description": "Ticker symbol (e.g., 'BTC/USD'). This is required.",
							},
							"interval": map[string]any{
								"type":        "string",
								"description": "Time interval (e.g., '1day', '4h'). Default is '1day'.",
							},
						},
						"required": []string{"symbol"},
					},
				},
				{
					"name":        ToolAnalyzeCandlesticks,
					"description": "Analyzes historical price data for common candlestick patterns like Doji, Hammer, and Bullish/Bearish Engulfing.",
					"parameters": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"symbol": map[string]any{
								"type":        "string",
								"description": "The ticker symbol for the asset (e.g., 'BTC/USD').",
							},
							"interval": map[string]any{
								"type":        "string",
								"description": "The time interval for the historical data (e.g., '1day', '1week'). Default is '1day'.",
							},
						},
						"required": []string{"symbol"},
					},
				},
			},
		},
	}
}
