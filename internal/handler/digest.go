package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/dayboard/internal/auth"
	"github.com/dukerupert/dayboard/internal/model"
	"github.com/dukerupert/dayboard/internal/notify"
)

// Digester composes and delivers digests and free-form messages.
type Digester interface {
	Dispatch(ctx context.Context, userID int64, kind, channel string) error
	SendMessage(ctx context.Context, userID int64, channel, subject, text string) error
}

type DigestHandler struct {
	digests Digester
	logger  *slog.Logger
}

func NewDigestHandler(d Digester, logger *slog.Logger) *DigestHandler {
	return &DigestHandler{digests: d, logger: logger.With("component", "digest_handler")}
}

// Send handles POST /api/digest/{kind}?channel=email|whatsapp.
func (h *DigestHandler) Send(w http.ResponseWriter, r *http.Request) {
	channel := r.URL.Query().Get("channel")
	if channel == "" {
		channel = model.ChannelEmail
	}
	if !notify.ValidChannel(channel) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "channel must be email or whatsapp"})
		return
	}
	h.dispatch(w, r, auth.UserID(r.Context()), channel)
}

// SendFor handles POST /api/admin/users/{id}/digest/{kind}, letting an admin
// trigger another user's digest. Rate limits do not apply.
func (h *DigestHandler) SendFor(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || userID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}
	channel := r.URL.Query().Get("channel")
	if channel == "" {
		channel = model.ChannelEmail
	}
	if !notify.ValidChannel(channel) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "channel must be email or whatsapp"})
		return
	}
	h.logger.Info("admin digest trigger", "admin_id", auth.UserID(r.Context()), "user_id", userID)
	h.dispatch(w, r, userID, channel)
}

// SendOn handles POST /api/{channel}/{kind} for a fixed channel.
func (h *DigestHandler) SendOn(channel string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.dispatch(w, r, auth.UserID(r.Context()), channel)
	}
}

func (h *DigestHandler) dispatch(w http.ResponseWriter, r *http.Request, userID int64, channel string) {
	kind := r.PathValue("kind")
	if kind != model.DigestBriefing && kind != model.DigestReview {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown digest kind"})
		return
	}

	if err := h.digests.Dispatch(r.Context(), userID, kind, channel); err != nil {
		h.fail(w, userID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type sendMessageRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// SendMessage handles POST /api/{channel}/send with a free-form message.
func (h *DigestHandler) SendMessage(channel string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
			return
		}
		if req.Message == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
			return
		}

		userID := auth.UserID(r.Context())
		if err := h.digests.SendMessage(r.Context(), userID, channel, req.Subject, req.Message); err != nil {
			h.fail(w, userID, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

func (h *DigestHandler) fail(w http.ResponseWriter, userID int64, err error) {
	h.logger.Warn("manual send failed", "user_id", userID, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": errorMessage(err)})
}

// errorMessage is the caller-facing text for a dispatch error: the config
// reason, or the underlying transport or store error without the
// notify prefix.
func errorMessage(err error) string {
	var cfgErr *notify.ConfigError
	var delErr *notify.DeliveryError
	var aggErr *notify.AggregationError
	switch {
	case errors.As(err, &cfgErr):
		return cfgErr.Reason
	case errors.As(err, &delErr):
		return delErr.Err.Error()
	case errors.As(err, &aggErr):
		return aggErr.Err.Error()
	}
	return err.Error()
}
