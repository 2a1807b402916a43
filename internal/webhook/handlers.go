package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"SignalSentry/internal/calendar"
	"SignalSentry/internal/market"
	"SignalSentry/internal/model"
)

// handleMarketData maps query parameters onto a gateway request and returns
// {"text": ...} with a status code derived from the error category.
func (s *Server) handleMarketData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := market.Request{
		DataType:            market.DataType(strings.ToLower(qDefault(q.Get("data_type"), "live"))),
		Symbol:              q.Get("symbol"),
		Interval:            q.Get("interval"),
		OutputSize:          q.Get("outputsize"),
		Indicator:           model.IndicatorKind(strings.ToUpper(q.Get("indicator"))),
		IndicatorPeriod:     q.Get("indicator_period"),
		IndicatorMultiplier: q.Get("indicator_multiplier"),
		NewsQuery:           q.Get("news_query"),
		FromDate:            q.Get("from_date"),
		SortBy:              q.Get("sort_by"),
		NewsLanguage:        q.Get("news_language"),
	}

	payload, err := s.fetcher.Fetch(r.Context(), req)
	if err != nil {
		status, text := classify(req.DataType, err)
		s.count("market_data", outcomeFor(status))
		writeJSON(w, status, map[string]string{"text": text})
		return
	}

	s.count("market_data", "ok")
	writeJSON(w, http.StatusOK, map[string]string{"text": payload.Text})
}

func (s *Server) handleScheduleAppointment(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		s.count("schedule_appointment", "disabled")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Calendar scheduling is not configured."})
		return
	}

	var appt calendar.Appointment
	if err := json.NewDecoder(r.Body).Decode(&appt); err != nil {
		s.count("schedule_appointment", "bad_request")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No valid JSON payload received."})
		return
	}
	if appt.StartTime == "" || appt.EndTime == "" {
		s.count("schedule_appointment", "bad_request")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing start_time or end_time."})
		return
	}

	link, err := s.scheduler.Schedule(r.Context(), appt)
	if err != nil {
		log.Printf("[ERROR] schedule appointment: %v", err)
		s.count("schedule_appointment", "error")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.count("schedule_appointment", "ok")
	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "success",
		"message":    "Appointment scheduled successfully.",
		"event_link": link,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// classify turns a gateway error into an HTTP status and a caller-readable
// sentence in the same voice the chat relay uses.
func classify(dataType market.DataType, err error) (int, string) {
	var validation *market.ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest, "Error: " + validation.Msg
	}

	var limited *market.RateLimitedError
	if errors.As(err, &limited) {
		if dataType == market.DataNews {
			return http.StatusTooManyRequests, fmt.Sprintf(
				"Please wait a moment. I'm fetching new news, but there's a slight delay due to API limits. Try again in %d seconds.",
				limited.WaitSeconds())
		}
		kind := "market data"
		if dataType == market.DataLive {
			kind = "live market data"
		}
		return http.StatusTooManyRequests, fmt.Sprintf(
			"I'm currently experiencing high demand for %s. Please give me about %d seconds and try again.",
			kind, limited.WaitSeconds())
	}

	var upstream *market.UpstreamError
	if errors.As(err, &upstream) {
		return http.StatusInternalServerError, fmt.Sprintf("Could not retrieve data. Error: %s", upstream.Message)
	}

	var incomplete *market.IncompleteDataError
	if errors.As(err, &incomplete) {
		return http.StatusInternalServerError, incomplete.Msg
	}

	var transport *market.TransportError
	if errors.As(err, &transport) {
		return http.StatusInternalServerError, "Error connecting to the data service. Please check your internet connection or try again later."
	}

	return http.StatusInternalServerError, "An unexpected error occurred while processing your request. Please try again later."
}

func outcomeFor(status int) string {
	switch {
	case status == http.StatusBadRequest:
		return "bad_request"
	case status == http.StatusTooManyRequests:
		return "rate_limited"
	default:
		return "error"
	}
}

func (s *Server) count(endpoint, outcome string) {
	if s.metrics != nil {
		s.metrics.RequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	}
}

func qDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[ERROR] write response: %v", err)
	}
}
