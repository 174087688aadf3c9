package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/atrajit-sarkar/Discord-Guardian/internal/gateway"
	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
	"github.com/atrajit-sarkar/Discord-Guardian/internal/services"
)

// AdminHandler exposes the operator actions: award and penalize. Both are
// thin callers into the engine; side effects still flow through the executor.
type AdminHandler struct {
	engine   *services.Engine
	executor *gateway.Executor
	logger   *slog.Logger
}

func NewAdminHandler(engine *services.Engine, executor *gateway.Executor, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		engine:   engine,
		executor: executor,
		logger:   logger,
	}
}

type adminActionResponse struct {
	*services.AdminActionResult
	Intents []intentEnvelope `json:"intents"`
}

// Award handles POST /api/admin/award
func (h *AdminHandler) Award(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeAction(w, r)
	if !ok {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	result, err := h.engine.Award(ctx, req.GuildID, req.UserID, req.Username, req.Amount)
	if err != nil {
		h.logger.Error("award failed", "guild_id", req.GuildID, "user_id", req.UserID, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Award failed"))
		return
	}

	h.executor.Execute(ctx, result.Intents)

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(adminActionResponse{
		AdminActionResult: result,
		Intents:           envelopeIntents(result.Intents),
	}))
}

// Penalize handles POST /api/admin/penalize
func (h *AdminHandler) Penalize(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeAction(w, r)
	if !ok {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	result, err := h.engine.Penalize(ctx, req.GuildID, req.UserID, req.Username, req.RoleIDs, req.Amount)
	if err != nil {
		if errors.Is(err, services.ErrExemptSubject) {
			writeJSON(w, http.StatusForbidden, models.NewErrorResponse("This member is exempt from penalties"))
			return
		}
		h.logger.Error("penalize failed", "guild_id", req.GuildID, "user_id", req.UserID, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Penalize failed"))
		return
	}

	h.executor.Execute(ctx, result.Intents)

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(adminActionResponse{
		AdminActionResult: result,
		Intents:           envelopeIntents(result.Intents),
	}))
}

func (h *AdminHandler) decodeAction(w http.ResponseWriter, r *http.Request) (*models.AdminActionRequest, bool) {
	var req models.AdminActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return nil, false
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return nil, false
	}
	if req.ActorUserID != "" && req.ActorUserID == req.UserID {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("You cannot target yourself"))
		return nil, false
	}
	return &req, true
}
