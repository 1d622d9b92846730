package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang-stock-advisor/internal/analyzer/config"
	"golang-stock-advisor/internal/analyzer/dto"
	"golang-stock-advisor/pkg/logger"
	"golang-stock-advisor/pkg/ratelimit"
	"golang-stock-advisor/pkg/utils"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// geminiAIRepository is an implementation of AIRepository backed by the Google
// Gemini API.
type geminiAIRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiAIRepository creates a new instance of geminiAIRepository.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) (AIRepository, error) {
	secondsPerRequest := time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	tokenLimiter := ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinute)

	return &geminiAIRepository{
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
		tokenLimiter:   tokenLimiter,
		genAiClient:    genAiClient,
	}, nil
}

// AnalyzeAgent runs one persona over the shared stock context.
func (r *geminiAIRepository) AnalyzeAgent(ctx context.Context, agentName string, input *dto.AgentContext) (*dto.AgentAnalysisResult, error) {
	prompt := buildAgentPrompt(agentName, input)

	rawJSON, err := r.executeGeminiAIRequest(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var result dto.AgentAnalysisResult
	if err := json.Unmarshal([]byte(rawJSON), &result); err != nil {
		r.logger.Error("Failed to unmarshal agent analysis from Gemini response", logger.ErrorField(err), logger.StringField("response", rawJSON))
		return nil, fmt.Errorf("failed to unmarshal agent analysis from Gemini response: %w", err)
	}

	result.AgentName = agentName
	result.Score = utils.Clamp(result.Score, -100, 100)
	return &result, nil
}

// Synthesize moderates the agent debate into a single recommendation.
func (r *geminiAIRepository) Synthesize(ctx context.Context, input *dto.AgentContext, agents []dto.AgentAnalysisResult, consensusScore float64) (*dto.SynthesisResult, error) {
	prompt := buildSynthesisPrompt(input, agents, consensusScore)

	rawJSON, err := r.executeGeminiAIRequest(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var result dto.SynthesisResult
	if err := json.Unmarshal([]byte(rawJSON), &result); err != nil {
		r.logger.Error("Failed to unmarshal synthesis from Gemini response", logger.ErrorField(err), logger.StringField("response", rawJSON))
		return nil, fmt.Errorf("failed to unmarshal synthesis from Gemini response: %w", err)
	}

	result.Recommendation = strings.ToUpper(strings.TrimSpace(result.Recommendation))
	switch result.Recommendation {
	case "BUY", "HOLD", "SELL":
	default:
		return nil, fmt.Errorf("invalid recommendation from Gemini response: %q", result.Recommendation)
	}

	return &result, nil
}

// ClassifySentiment labels one news item as positive, negative or neutral.
func (r *geminiAIRepository) ClassifySentiment(ctx context.Context, headline, summary string) (string, error) {
	prompt := buildSentimentPrompt(headline, summary)

	rawJSON, err := r.executeGeminiAIRequest(ctx, prompt)
	if err != nil {
		return "", err
	}

	var result struct {
		Sentiment string `json:"sentiment"`
	}
	if err := json.Unmarshal([]byte(rawJSON), &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal sentiment from Gemini response: %w", err)
	}

	sentiment := strings.ToLower(strings.TrimSpace(result.Sentiment))
	switch sentiment {
	case "positive", "negative", "neutral":
		return sentiment, nil
	default:
		return "", fmt.Errorf("invalid sentiment from Gemini response: %q", result.Sentiment)
	}
}

func (r *geminiAIRepository) executeGeminiAIRequest(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}
	geminiTokenResp, err := r.genAiClient.Models.CountTokens(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to count tokens: %w", err)
	}

	r.logger.Debug("Gemini token count",
		logger.IntField("total_tokens", int(geminiTokenResp.TotalTokens)),
		logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
	)

	if err := r.tokenLimiter.Wait(ctx, int(geminiTokenResp.TotalTokens)); err != nil {
		return "", fmt.Errorf("failed to wait for token limit: %w", err)
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	if int(geminiTokenResp.TotalTokens) > r.cfg.Gemini.MaxTokenPerMinute/2 {
		r.logger.Warn("Token has exceeded 50% of the limit", logger.IntField("remaining", r.tokenLimiter.GetRemaining()))
	}

	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		r.logger.Error("Failed to generate content from Gemini API", logger.ErrorField(err))
		return "", fmt.Errorf("failed to generate content from Gemini API: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("invalid response from Gemini API: no content found")
	}

	rawJSON := resp.Candidates[0].Content.Parts[0].Text
	rawJSON = strings.Trim(rawJSON, "`json\n`")
	return rawJSON, nil
}
