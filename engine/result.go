package engine

// Verdict is the three-way safety classification
type Verdict string

const (
	VerdictSafe       Verdict = "safe"
	VerdictSuspicious Verdict = "suspicious"
	VerdictPhishing   Verdict = "phishing"
)

// Method names the path that produced a verdict
type Method string

const (
	MethodHeuristic Method = "heuristic"
	MethodModel     Method = "ml-model"
)

// Fixed confidence per branch
const (
	ConfidenceSafe       = 0.1
	ConfidenceSuspicious = 0.6
	ConfidencePhishing   = 0.9
)

// Result is the outcome of evaluating one URL
type Result struct {
	URL        string  `json:"url"`
	Verdict    Verdict `json:"verdict"`
	Confidence float64 `json:"confidence"`
	Method     Method  `json:"detection_method"`
}

// State is the detection path chosen at construction
type State string

const (
	StateModelActive   State = "model-active"
	StateHeuristicOnly State = "heuristic-only"
)
