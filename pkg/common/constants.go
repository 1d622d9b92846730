package common

const (
	RedisStreamNewsIngest     = "advisor.news.ingest"
	RedisStreamCatalystScan   = "advisor.catalyst.scan"
	RedisStreamCheckpointScan = "advisor.checkpoint.scan"
	RedisStreamFullAnalysis   = "advisor.analysis.run"

	RedisStreamGroup    = "analysis-group"
	RedisStreamConsumer = "analysis-consumer"
)

// AgentNames are the six fixed analysis personas. Every full analysis run
// produces exactly one score per persona.
var AgentNames = []string{
	"fundamental",
	"technical",
	"sentiment",
	"macro",
	"insider",
	"catalyst",
}

// CostPerAnalysisUSD is the estimated cost of one full analysis run (six
// agent calls plus synthesis), reported for operator visibility only.
const CostPerAnalysisUSD = 0.18
