package repository

import (
	"fmt"
	"strings"

	"golang-stock-advisor/internal/analyzer/dto"
)

// agentBriefs steer each persona toward its own lens on the same inputs.
var agentBriefs = map[string]string{
	"fundamental": "You are a fundamental analyst. Judge valuation, earnings quality, balance sheet strength and cash generation.",
	"technical":   "You are a technical analyst. Judge price trend, momentum, support/resistance and volume behavior.",
	"sentiment":   "You are a market-sentiment analyst. Judge news tone, retail and institutional positioning and crowd psychology.",
	"macro":       "You are a macro strategist. Judge rate sensitivity, sector cycle position and macroeconomic tailwinds or headwinds.",
	"insider":     "You are an insider-activity analyst. Judge insider buying and selling patterns and ownership changes.",
	"catalyst":    "You are an event-driven analyst. Judge upcoming and recent catalysts: earnings, approvals, deals, litigation.",
}

func buildAgentPrompt(agentName string, input *dto.AgentContext) string {
	var b strings.Builder

	brief, ok := agentBriefs[agentName]
	if !ok {
		brief = "You are a stock analyst."
	}
	b.WriteString(brief)
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("Stock: %s (%s), sector %s, current price %.2f.\n", input.Ticker, input.Name, input.Sector, input.CurrentPrice))
	if input.PriorRecommendation != "" && input.PriorScore != nil {
		b.WriteString(fmt.Sprintf("Previous call: %s with consensus score %.1f.\n", input.PriorRecommendation, *input.PriorScore))
	}
	if len(input.NewsHeadlines) > 0 {
		b.WriteString("Recent headlines:\n")
		for _, headline := range input.NewsHeadlines {
			b.WriteString("- " + headline + "\n")
		}
	}

	b.WriteString(`
Respond with JSON only, no markdown, exactly this shape:
{"score": <number between -100 and 100, negative is bearish>, "reasoning": "<2-3 sentences>", "key_metrics": {"<metric>": <number>}}
`)
	return b.String()
}

func buildSynthesisPrompt(input *dto.AgentContext, agents []dto.AgentAnalysisResult, consensusScore float64) string {
	var b strings.Builder

	b.WriteString("You are moderating a debate between six stock analysts. Synthesize their views into one call.\n\n")
	b.WriteString(fmt.Sprintf("Stock: %s (%s). Weighted consensus score: %.1f.\n\nAgent opinions:\n", input.Ticker, input.Name, consensusScore))
	for _, agent := range agents {
		b.WriteString(fmt.Sprintf("- %s (score %.1f, weight %.2f): %s\n", agent.AgentName, agent.Score, agent.Weight, agent.Reasoning))
	}

	b.WriteString(`
Respond with JSON only, no markdown, exactly this shape:
{"recommendation": "BUY"|"HOLD"|"SELL", "confidence": "LOW"|"MEDIUM"|"HIGH", "debate_summary": "<1 paragraph>", "risk_factors": ["<risk>", ...]}
`)
	return b.String()
}

func buildSentimentPrompt(headline, summary string) string {
	return fmt.Sprintf(`Classify the sentiment of this news item for the company it covers.

Headline: %s
Summary: %s

Respond with JSON only: {"sentiment": "positive"|"negative"|"neutral"}
`, headline, summary)
}
