package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
	"github.com/atrajit-sarkar/Discord-Guardian/internal/services"
)

// GuildHandler serves the read side: hearts lookups and the leaderboard.
type GuildHandler struct {
	ledger           services.Ledger
	tiers            *services.TierTable
	startingHearts   int
	leaderboardLimit int
	logger           *slog.Logger
}

func NewGuildHandler(ledger services.Ledger, tiers *services.TierTable, startingHearts, leaderboardLimit int, logger *slog.Logger) *GuildHandler {
	return &GuildHandler{
		ledger:           ledger,
		tiers:            tiers,
		startingHearts:   startingHearts,
		leaderboardLimit: leaderboardLimit,
		logger:           logger,
	}
}

type heartsResponse struct {
	UserKey string `json:"user_key"`
	Hearts  int    `json:"hearts"`
	Tier    string `json:"tier"`
}

// GetHearts handles GET /api/guilds/{guildID}/members/{userID}/hearts.
// Looking someone up initializes their profile, like the original command.
func (h *GuildHandler) GetHearts(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")
	userID := chi.URLParam(r, "userID")

	ctx, cancel := contextWithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userKey := models.UserKey(guildID, userID)
	profile, err := h.ledger.GetOrCreate(ctx, userKey, guildID, userID, userID, h.startingHearts)
	if err != nil {
		h.logger.Error("hearts lookup failed", "user_key", userKey, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Hearts lookup failed"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(heartsResponse{
		UserKey: userKey,
		Hearts:  profile.Hearts,
		Tier:    h.tiers.Resolve(profile.Hearts),
	}))
}

type leaderboardRow struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Hearts   int    `json:"hearts"`
	Tier     string `json:"tier"`
}

// GetLeaderboard handles GET /api/guilds/{guildID}/leaderboard
func (h *GuildHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")

	ctx, cancel := contextWithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	profiles, err := h.ledger.TopByGuild(ctx, guildID, h.leaderboardLimit)
	if err != nil {
		h.logger.Error("leaderboard query failed", "guild_id", guildID, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Leaderboard query failed"))
		return
	}

	rows := make([]leaderboardRow, len(profiles))
	for i, p := range profiles {
		rows[i] = leaderboardRow{
			Rank:     i + 1,
			Username: p.Username,
			Hearts:   p.Hearts,
			Tier:     h.tiers.Resolve(p.Hearts),
		}
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(rows))
}
