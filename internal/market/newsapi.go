package market

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"SignalSentry/internal/model"
)

func (g *Gateway) fetchNews(ctx context.Context, req Request) (*Payload, error) {
	fromDate := req.FromDate
	if fromDate == "" {
		fromDate = g.now().AddDate(0, 0, -7).Format("2006-01-02")
	}
	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = "publishedAt"
	}
	language := req.NewsLanguage
	if language == "" {
		language = "en"
	}

	v := url.Values{}
	v.Set("q", req.NewsQuery)
	v.Set("from", fromDate)
	v.Set("sortBy", sortBy)
	v.Set("language", language)
	v.Set("apiKey", g.newsAPIKey)

	u := fmt.Sprintf("%s/v2/everything?%s", g.newsAPIBase, v.Encode())
	log.Printf("[INFO] fetching news for %q (from=%s, sort=%s)", req.NewsQuery, fromDate, sortBy)

	body, err := g.getJSON(ctx, u)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Status   string `json:"status"`
		Message  string `json:"message"`
		Articles []struct {
			Title  string `json:"title"`
			Source struct {
				Name string `json:"name"`
			} `json:"source"`
			PublishedAt time.Time `json:"publishedAt"`
			URL         string    `json:"url"`
		} `json:"articles"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &IncompleteDataError{Msg: fmt.Sprintf("decode news response: %v", err)}
	}
	if resp.Status == "error" {
		msg := resp.Message
		if msg == "" {
			msg = "unknown error from news service"
		}
		if g.metrics != nil {
			g.metrics.UpstreamErrors.Inc()
		}
		return nil, &UpstreamError{Provider: ProviderNewsAPI, Message: msg}
	}

	if len(resp.Articles) == 0 {
		return &Payload{
			Text: fmt.Sprintf("No recent news found for %q.", req.NewsQuery),
		}, nil
	}

	articles := make([]model.NewsArticle, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		articles = append(articles, model.NewsArticle{
			Title:       a.Title,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt.Format("2006-01-02"),
			URL:         a.URL,
		})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here are some recent news headlines for %s: ", req.NewsQuery)
	for i, a := range articles {
		if i == 3 {
			break
		}
		source := a.Source
		if source == "" {
			source = "Unknown source"
		}
		fmt.Fprintf(&b, "Number %d: %q from %s. ", i+1, a.Title, source)
	}
	return &Payload{
		Articles: articles,
		Text:     strings.TrimSpace(b.String()),
	}, nil
}
