package reasoning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/lueurxax/scam-shield/internal/core/domain"
	coreerrors "github.com/lueurxax/scam-shield/internal/core/errors"
)

const (
	defaultModel     = "gpt-4o-mini"
	rateLimiterBurst = 5

	sentimentMin = -1.0
	sentimentMax = 1.0
)

const indicatorsPrompt = `You analyze one message for scam signals. Return STRICT JSON ONLY.
Output must be a single JSON object. Use double quotes. No trailing commas. No markdown.

Fields:
- urgency: boolean, pressuring, deadline-driven, or threatening language
- credential_request: boolean, asks for OTP, PIN, password, KYC, account, or identity data
- impersonation: boolean, claims to be a bank, government body, courier, or other authority
- financial_request: boolean, asks for money, transfer, payment, or card details
- sentiment_score: number in [-1, 1], negative means distressing or manipulative tone
- reasoning: string, one or two sentences explaining the signals, in plain English

Message language: %s
Message:
%s`

// indicatorsResponse is the collaborator's strict JSON shape.
type indicatorsResponse struct {
	Urgency           bool    `json:"urgency"`
	CredentialRequest bool    `json:"credential_request"`
	Impersonation     bool    `json:"impersonation"`
	FinancialRequest  bool    `json:"financial_request"`
	SentimentScore    float64 `json:"sentiment_score"`
	Reasoning         string  `json:"reasoning"`
}

type openaiExtractor struct {
	client      *openai.Client
	model       string
	rateLimiter *rate.Limiter
	logger      *zerolog.Logger
}

// NewOpenAI creates the production extractor.
func NewOpenAI(cfg Config, logger *zerolog.Logger) Extractor {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	if cfg.RPS <= 0 {
		cfg.RPS = rateLimiterBurst
	}

	return &openaiExtractor{
		client:      openai.NewClient(cfg.APIKey),
		model:       cfg.Model,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RPS), rateLimiterBurst),
		logger:      logger,
	}
}

// ExtractIndicators asks the collaborator for indicators and validates
// the response. Transient transport failures are tagged retryable.
func (e *openaiExtractor) ExtractIndicators(ctx context.Context, content domain.Content) (domain.Indicators, error) {
	if err := e.rateLimiter.Wait(ctx); err != nil {
		return domain.Indicators{}, fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(indicatorsPrompt, content.Language, content.Text),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return domain.Indicators{}, tagTransportError(err)
	}

	if len(resp.Choices) == 0 {
		return domain.Indicators{}, coreerrors.ErrNoResults
	}

	var body indicatorsResponse
	if err := json.Unmarshal([]byte(extractJSON(resp.Choices[0].Message.Content)), &body); err != nil {
		return domain.Indicators{}, fmt.Errorf("decode indicators: %w", err)
	}

	return domain.Indicators{
		Urgency:           body.Urgency,
		CredentialRequest: body.CredentialRequest,
		Impersonation:     body.Impersonation,
		FinancialRequest:  body.FinancialRequest,
		SentimentScore:    clampSentiment(body.SentimentScore),
		Reasoning:         body.Reasoning,
	}, nil
}

// tagTransportError maps API failures onto the error taxonomy: rate
// limits and server errors are retryable, the rest fatal.
func tagTransportError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: reasoning: %w", coreerrors.ErrDependencyUnavailable, err)
		}

		return fmt.Errorf("%w: reasoning: %w", coreerrors.ErrDependencyFatal, err)
	}

	return fmt.Errorf("%w: reasoning: %w", coreerrors.ErrDependencyUnavailable, err)
}

// extractJSON tolerates wrapper text around the JSON object.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")

	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}

	return text
}

func clampSentiment(score float64) float64 {
	if score < sentimentMin {
		return sentimentMin
	}

	if score > sentimentMax {
		return sentimentMax
	}

	return score
}
