package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/geocoder89/siteis/internal/domain/contact"
	"github.com/geocoder89/siteis/internal/notifications"
	"github.com/gin-gonic/gin"
)

type MessageAppender interface {
	Append(ctx context.Context, msg contact.Message) error
}

type ContactHandler struct {
	messages MessageAppender
	notifier notifications.Notifier
	log      *slog.Logger
	now      func() time.Time
}

func NewContactHandler(messages MessageAppender, notifier notifications.Notifier, log *slog.Logger) *ContactHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ContactHandler{
		messages: messages,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Submit stores whatever object the contact form posted, JSON or form
// encoded, together with the arrival time and client address.
func (h *ContactHandler) Submit(ctx *gin.Context) {
	raw, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondError(ctx, http.StatusRequestEntityTooLarge, "request body too large", nil)
			return
		}
		RespondBadRequest(ctx, "invalid request body", nil)
		return
	}

	body, fields, err := decodeContactBody(ctx.ContentType(), raw)
	if err != nil {
		RespondBadRequest(ctx, "invalid request body", nil)
		return
	}

	msg := contact.Message{
		Time: h.now().UTC(),
		IP:   ctx.ClientIP(),
		Body: body,
	}

	if err := h.messages.Append(ctx.Request.Context(), msg); err != nil {
		RespondInternal(ctx, "could not save message")
		return
	}

	if h.notifier != nil {
		go h.notify(context.WithoutCancel(ctx.Request.Context()), notifications.ContactReceivedInput{
			IP:         msg.IP,
			ReceivedAt: msg.Time,
			Fields:     fields,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "saved": true})
}

func (h *ContactHandler) notify(ctx context.Context, in notifications.ContactReceivedInput) {
	if err := h.notifier.ContactReceived(ctx, in); err != nil {
		h.log.WarnContext(ctx, "contact notification failed", "err", err)
	}
}

// decodeContactBody returns the body as a JSON object plus a flat preview
// of its top-level fields. Form bodies keep the first value of each key.
// Any other content type is stored as an empty object.
func decodeContactBody(contentType string, raw []byte) (json.RawMessage, map[string]string, error) {
	switch contentType {
	case gin.MIMEJSON:
		if len(raw) == 0 {
			return json.RawMessage(`{}`), map[string]string{}, nil
		}

		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, nil, err
		}
		if obj == nil {
			return nil, nil, errors.New("contact body must be a JSON object")
		}

		fields := make(map[string]string, len(obj))
		for k, v := range obj {
			s, _ := v.(string)
			fields[k] = s
		}
		return json.RawMessage(raw), fields, nil

	case gin.MIMEPOSTForm:
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return nil, nil, err
		}

		fields := make(map[string]string, len(values))
		for k := range values {
			fields[k] = values.Get(k)
		}

		b, err := json.Marshal(fields)
		if err != nil {
			return nil, nil, err
		}
		return b, fields, nil

	default:
		return json.RawMessage(`{}`), map[string]string{}, nil
	}
}
