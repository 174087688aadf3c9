package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/atrajit-sarkar/Discord-Guardian/internal/metrics"
	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
)

// Classifier is the content oracle. Classify never fails: every error class
// degrades to the neutral result so classification can never abort the
// pipeline.
type Classifier interface {
	Classify(ctx context.Context, text string) models.ClassificationResult
}

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"

const classifyPrompt = "You are a content moderation and positivity detector for a Discord server.\n" +
	"Classify the following message and return STRICT JSON with these fields: \n" +
	"{\n" +
	"  \"flagged\": boolean, // true if harmful/abusive/profane\n" +
	"  \"reasons\": string[], // reasons like ['abuse','profanity','harassment']\n" +
	"  \"good_advice\": boolean, // true if the message gives polite, helpful advice\n" +
	"  \"problem_solved\": boolean, // true if the message solves someone's problem\n" +
	"  \"praise\": boolean // true if the message praises or thanks someone for help\n" +
	"}\n" +
	"Do not include any extra commentary, only raw JSON.\n" +
	"Message: \n"

// GeminiClassifier calls the Gemini generateContent API with a bounded
// timeout. A circuit breaker short-circuits a flapping oracle to the neutral
// result instead of waiting out the timeout on every message.
type GeminiClassifier struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

func NewGeminiClassifier(apiKey string, timeout time.Duration, logger *slog.Logger) *GeminiClassifier {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "gemini",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &GeminiClassifier{
		apiKey:     apiKey,
		endpoint:   geminiEndpoint,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
		logger:     logger,
	}
}

// WithEndpoint overrides the API endpoint; used by tests.
func (c *GeminiClassifier) WithEndpoint(endpoint string) *GeminiClassifier {
	c.endpoint = endpoint
	return c
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig map[string]interface{} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClassifier) Classify(ctx context.Context, text string) models.ClassificationResult {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.classify(ctx, text)
	})
	if err != nil {
		metrics.ClassifierFailures.Inc()
		c.logger.Warn("classifier degraded to neutral result", "error", err)
		return models.NeutralClassification()
	}
	return out.(models.ClassificationResult)
}

func (c *GeminiClassifier) classify(ctx context.Context, text string) (models.ClassificationResult, error) {
	neutral := models.NeutralClassification()

	req := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: classifyPrompt + text}}}},
		GenerationConfig: map[string]interface{}{
			"temperature":      0,
			"topP":             0.1,
			"topK":             32,
			"maxOutputTokens":  256,
			"responseMimeType": "application/json",
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return neutral, fmt.Errorf("classifier: encode: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return neutral, fmt.Errorf("classifier: request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return neutral, fmt.Errorf("classifier: transport: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return neutral, fmt.Errorf("classifier: http %d", resp.StatusCode)
	}

	var envelope geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return neutral, fmt.Errorf("classifier: decode: %w", err)
	}
	if len(envelope.Candidates) == 0 || len(envelope.Candidates[0].Content.Parts) == 0 {
		return neutral, fmt.Errorf("classifier: empty response")
	}

	var result models.ClassificationResult
	if err := json.Unmarshal([]byte(envelope.Candidates[0].Content.Parts[0].Text), &result); err != nil {
		return neutral, fmt.Errorf("classifier: non-JSON verdict: %w", err)
	}
	if result.Reasons == nil {
		result.Reasons = []string{}
	}
	return result, nil
}
