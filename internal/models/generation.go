package models

// Strategy identifies which extractor produced a preview.
type Strategy string

const (
	StrategyNone      Strategy = ""
	StrategyHeuristic Strategy = "heuristic"
	StrategyAI        Strategy = "ai"
)

// GenerationOutcome records the result of the most recent generation run.
type GenerationOutcome struct {
	Strategy Strategy `json:"strategy"`
	Provider Provider `json:"provider,omitempty"`
	Count    int      `json:"count"`
	Err      string   `json:"error,omitempty"`
}

// Empty reports a successful run that produced nothing.
func (o GenerationOutcome) Empty() bool {
	return o.Strategy != StrategyNone && o.Err == "" && o.Count == 0
}

// GenerationState is a snapshot of the generation workspace.
type GenerationState struct {
	SourceText string             `json:"source_text"`
	Previews   []CardDraft        `json:"previews"`
	Busy       bool               `json:"busy"`
	Last       *GenerationOutcome `json:"last,omitempty"`
}
