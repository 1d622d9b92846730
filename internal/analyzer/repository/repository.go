package repository

import (
	"context"

	"golang-stock-advisor/internal/analyzer/dto"
)

// AIRepository is the contract for the model provider backing the six agent
// personas, the debate synthesis and sentiment labeling.
type AIRepository interface {
	AnalyzeAgent(ctx context.Context, agentName string, input *dto.AgentContext) (*dto.AgentAnalysisResult, error)
	Synthesize(ctx context.Context, input *dto.AgentContext, agents []dto.AgentAnalysisResult, consensusScore float64) (*dto.SynthesisResult, error)
	ClassifySentiment(ctx context.Context, headline, summary string) (string, error)
}
