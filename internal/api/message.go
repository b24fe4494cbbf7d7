package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/vigilhq/mongoose/internal/engine"
	"github.com/vigilhq/mongoose/internal/intel"
)

// MessageRequest is the inbound turn payload. conversationHistory and most
// metadata are accepted for forward compatibility but the engine keeps its
// own history.
type MessageRequest struct {
	SessionID string `json:"sessionId"`
	Message   struct {
		Sender    string          `json:"sender"`
		Text      string          `json:"text"`
		Timestamp json.RawMessage `json:"timestamp"`
	} `json:"message"`
	ConversationHistory []json.RawMessage `json:"conversationHistory"`
	Metadata            struct {
		Channel      string `json:"channel"`
		ScamCategory string `json:"scamCategory"`
	} `json:"metadata"`
}

// MessageResponse is the turn result handed back to the transport.
type MessageResponse struct {
	Status     string        `json:"status"`
	SessionID  string        `json:"sessionId"`
	TurnIndex  int           `json:"turnIndex"`
	Reply      string        `json:"reply"`
	Persona    string        `json:"persona"`
	Objective  string        `json:"objective"`
	Action     string        `json:"action"`
	Entities   intel.Payload `json:"entities"`
	Completed  bool          `json:"completed"`
	ReceivedAt time.Time     `json:"receivedAt"`
}

func (s *Server) message(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}
	if req.Message.Text == "" {
		writeError(w, http.StatusBadRequest, "message.text is required")
		return
	}

	receivedAt := parseTimestamp(req.Message.Timestamp)

	res, err := s.engine.ProcessTurn(r.Context(), req.SessionID, req.Message.Text, req.Metadata.ScamCategory)
	if errors.Is(err, engine.ErrSessionComplete) {
		writeError(w, http.StatusConflict, "session already complete")
		return
	}
	if err != nil {
		s.logger.Error("turn failed", "session_id", req.SessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "turn processing failed")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Status:     "ok",
		SessionID:  res.SessionID,
		TurnIndex:  res.TurnIndex,
		Reply:      res.Reply,
		Persona:    string(res.Decision.Persona),
		Objective:  res.Decision.Objective,
		Action:     string(res.Action),
		Entities:   res.Entities,
		Completed:  res.Completed,
		ReceivedAt: receivedAt,
	})
}

// parseTimestamp accepts the formats upstream channels actually send: unix
// seconds, unix milliseconds, an RFC 3339 string, or nothing. Anything
// unparseable falls back to now.
func parseTimestamp(raw json.RawMessage) time.Time {
	now := time.Now().UTC()
	if len(raw) == 0 {
		return now
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil && num > 0 {
		// Millisecond timestamps are 13 digits; second timestamps 10.
		if num > 1e12 {
			return time.UnixMilli(int64(num)).UTC()
		}
		return time.Unix(int64(num), 0).UTC()
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.UTC()
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil && n > 0 {
			if n > 1e12 {
				return time.UnixMilli(int64(n)).UTC()
			}
			return time.Unix(int64(n), 0).UTC()
		}
	}
	return now
}
