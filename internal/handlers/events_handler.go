package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/atrajit-sarkar/Discord-Guardian/internal/gateway"
	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
	"github.com/atrajit-sarkar/Discord-Guardian/internal/services"
)

// EventsHandler ingests message events from the platform gateway, runs the
// pipeline and executes the resulting intents.
type EventsHandler struct {
	engine         *services.Engine
	executor       *gateway.Executor
	allowedGuildID string
	logger         *slog.Logger
}

func NewEventsHandler(engine *services.Engine, executor *gateway.Executor, allowedGuildID string, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		engine:         engine,
		executor:       executor,
		allowedGuildID: allowedGuildID,
		logger:         logger,
	}
}

type eventResponse struct {
	*services.EventResult
	Intents []intentEnvelope `json:"intents"`
}

// IngestMessage handles POST /api/events/message
func (h *EventsHandler) IngestMessage(w http.ResponseWriter, r *http.Request) {
	var ev models.MessageEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if errs := ev.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	// Bot traffic and foreign guilds are acknowledged, not processed.
	if ev.Author.Bot {
		writeJSON(w, http.StatusAccepted, models.NewSuccessResponse(map[string]string{"status": "ignored_bot_author"}))
		return
	}
	if h.allowedGuildID != "" && ev.GuildID != h.allowedGuildID {
		writeJSON(w, http.StatusAccepted, models.NewSuccessResponse(map[string]string{"status": "ignored_foreign_guild"}))
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := h.engine.ProcessMessage(ctx, &ev)
	if err != nil {
		h.logger.Error("event processing failed", "message_id", ev.MessageID, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Event processing failed"))
		return
	}

	h.executor.Execute(ctx, result.Intents)

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(eventResponse{
		EventResult: result,
		Intents:     envelopeIntents(result.Intents),
	}))
}
