package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func contextWithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, d)
}

// intentEnvelope tags an intent with its kind so API consumers can dispatch
// without inspecting the payload shape.
type intentEnvelope struct {
	Kind   string        `json:"kind"`
	Intent models.Intent `json:"intent"`
}

func envelopeIntents(intents []models.Intent) []intentEnvelope {
	out := make([]intentEnvelope, len(intents))
	for i, intent := range intents {
		out[i] = intentEnvelope{Kind: intent.Kind(), Intent: intent}
	}
	return out
}
