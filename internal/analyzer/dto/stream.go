package dto

// NewsIngestTask asks the worker to ingest and classify news for one stock.
type NewsIngestTask struct {
	StockID uint   `json:"stock_id"`
	Ticker  string `json:"ticker"`
}

// CatalystScanTask asks the worker to run one catalyst scan sweep.
type CatalystScanTask struct {
	TriggeredBy string `json:"triggered_by"`
}

// CheckpointScanTask asks the worker to evaluate due checkpoints. When Ticker
// and CheckpointType are set, only that single checkpoint is evaluated.
type CheckpointScanTask struct {
	TriggeredBy    string `json:"triggered_by"`
	Ticker         string `json:"ticker,omitempty"`
	CheckpointType string `json:"checkpoint_type,omitempty"`
}

// FullAnalysisTask asks the worker to run a full analysis for one stock.
type FullAnalysisTask struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

// RatingChangeRecord is the wire shape yielded by the analyst feed provider.
type RatingChangeRecord struct {
	Date   string `json:"date"`
	Action string `json:"action"`
	From   string `json:"from"`
	To     string `json:"to"`
	Firm   string `json:"firm"`
}
