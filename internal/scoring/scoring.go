// Package scoring implements the lead qualification scoring model: four
// categorical factors, a 0-100 aggregate score, and a threshold decision.
package scoring

import "fmt"

const (
	// scoreVersion tracks the scoring model for debugging and analysis.
	// Bump this when changing the weight table significantly.
	scoreVersion = "2026-v1"

	// DefaultThreshold is the minimum aggregate score for qualification.
	DefaultThreshold = 70

	// maxScore is the aggregate ceiling. The default weight table's factor
	// maxima (30+25+25+20) sum to exactly this value.
	maxScore = 100
)

// Factor identifies one of the four qualification factors.
type Factor string

const (
	FactorPatrimonio Factor = "patrimonio"
	FactorObjetivo   Factor = "objetivo"
	FactorUrgencia   Factor = "urgencia"
	FactorInteresse  Factor = "interesse"
)

// Factors lists all factors in canonical conversation order.
var Factors = []Factor{FactorPatrimonio, FactorObjetivo, FactorUrgencia, FactorInteresse}

// Choice is a categorical answer presented to the lead.
type Choice string

const (
	ChoiceA Choice = "A"
	ChoiceB Choice = "B"
	ChoiceC Choice = "C"
	ChoiceD Choice = "D"
)

// Answers holds one choice per factor, collected during a conversation.
type Answers struct {
	Patrimonio Choice
	Objetivo   Choice
	Urgencia   Choice
	Interesse  Choice
}

// Get returns the answer for a factor.
func (a Answers) Get(f Factor) Choice {
	switch f {
	case FactorPatrimonio:
		return a.Patrimonio
	case FactorObjetivo:
		return a.Objetivo
	case FactorUrgencia:
		return a.Urgencia
	case FactorInteresse:
		return a.Interesse
	default:
		return ""
	}
}

// Breakdown holds the evaluated points per factor. Each value is bounded by
// that factor's maximum and the four sum to the final score.
type Breakdown struct {
	Patrimonio int `json:"patrimonio"`
	Objetivo   int `json:"objetivo"`
	Urgencia   int `json:"urgencia"`
	Interesse  int `json:"interesse"`
}

// Get returns the points for a factor.
func (b Breakdown) Get(f Factor) int {
	switch f {
	case FactorPatrimonio:
		return b.Patrimonio
	case FactorObjetivo:
		return b.Objetivo
	case FactorUrgencia:
		return b.Urgencia
	case FactorInteresse:
		return b.Interesse
	default:
		return 0
	}
}

// Decision is the outcome of classifying an aggregate score.
type Decision struct {
	Score     int    `json:"score"`
	Threshold int    `json:"threshold"`
	Qualified bool   `json:"qualified"`
	Rationale string `json:"rationale"`
}

// Engine evaluates answers against a weight table and threshold. The zero
// value is not usable; construct with New or NewWithOverrides.
type Engine struct {
	weights   WeightTable
	threshold int
}

// New creates an engine with the canonical weight table and default threshold.
func New() *Engine {
	return &Engine{weights: defaultWeights, threshold: DefaultThreshold}
}

// NewWithOverrides creates an engine with a tenant-specific weight table
// and/or threshold. A nil table falls back to the canonical weights; a
// threshold outside (0, 100] falls back to the default. The table is
// validated so per-factor maxima cannot push the aggregate past 100.
func NewWithOverrides(weights WeightTable, threshold int) (*Engine, error) {
	if weights == nil {
		weights = defaultWeights
	} else if err := weights.Validate(); err != nil {
		return nil, err
	}
	if threshold <= 0 || threshold > maxScore {
		threshold = DefaultThreshold
	}
	return &Engine{weights: weights, threshold: threshold}, nil
}

// Version returns the scoring model version string.
func (e *Engine) Version() string { return scoreVersion }

// Threshold returns the qualification threshold in effect.
func (e *Engine) Threshold() int { return e.threshold }

// EvaluateFactor maps one categorical answer to its point value.
// An answer outside the factor's choice set fails with *InvalidAnswerError;
// the evaluator never guesses or defaults silently.
func (e *Engine) EvaluateFactor(factor Factor, answer Choice) (int, error) {
	choices, ok := e.weights[factor]
	if !ok {
		return 0, &InvalidAnswerError{Factor: string(factor), Value: string(answer)}
	}
	points, ok := choices[answer]
	if !ok {
		return 0, &InvalidAnswerError{Factor: string(factor), Value: string(answer)}
	}
	return points, nil
}

// Evaluate maps all four answers to a breakdown.
func (e *Engine) Evaluate(answers Answers) (Breakdown, error) {
	var b Breakdown
	for _, factor := range Factors {
		points, err := e.EvaluateFactor(factor, answers.Get(factor))
		if err != nil {
			return Breakdown{}, err
		}
		switch factor {
		case FactorPatrimonio:
			b.Patrimonio = points
		case FactorObjetivo:
			b.Objetivo = points
		case FactorUrgencia:
			b.Urgencia = points
		case FactorInteresse:
			b.Interesse = points
		}
	}
	return b, nil
}

// Aggregate sums the four factor values into the final score.
// Inputs are expected to already be factor-bounded, so a sum above 100 is a
// defect in the weight table and fails with *ScoreOverflowError instead of
// silently truncating. A negative sum clamps to 0.
func Aggregate(b Breakdown) (int, error) {
	total := b.Patrimonio + b.Objetivo + b.Urgencia + b.Interesse
	if total > maxScore {
		return 0, &ScoreOverflowError{Total: total}
	}
	if total < 0 {
		return 0, nil
	}
	return total, nil
}

// Decide classifies an aggregate score against the engine's threshold.
// The threshold is an inclusive lower bound: a score equal to the threshold
// qualifies. The rationale is template-based and deterministic for a given
// breakdown.
func (e *Engine) Decide(score int, breakdown Breakdown) Decision {
	qualified := score >= e.threshold
	return Decision{
		Score:     score,
		Threshold: e.threshold,
		Qualified: qualified,
		Rationale: e.buildRationale(score, breakdown, qualified),
	}
}

// Score runs the full pipeline: evaluate, aggregate, decide.
func (e *Engine) Score(answers Answers) (Breakdown, Decision, error) {
	breakdown, err := e.Evaluate(answers)
	if err != nil {
		return Breakdown{}, Decision{}, err
	}
	total, err := Aggregate(breakdown)
	if err != nil {
		return Breakdown{}, Decision{}, err
	}
	return breakdown, e.Decide(total, breakdown), nil
}

// FactorMax returns the maximum attainable points for a factor under the
// engine's weight table.
func (e *Engine) FactorMax(factor Factor) int {
	max := 0
	for _, points := range e.weights[factor] {
		if points > max {
			max = points
		}
	}
	return max
}

// ChoiceLabel returns the human-readable label for a choice, as presented to
// the lead in the conversation. Used to echo answers into qualification
// records (patrimonio_faixa, objetivo, urgencia).
func ChoiceLabel(factor Factor, choice Choice) (string, error) {
	labels, ok := choiceLabels[factor]
	if !ok {
		return "", &InvalidAnswerError{Factor: string(factor), Value: string(choice)}
	}
	label, ok := labels[choice]
	if !ok {
		return "", &InvalidAnswerError{Factor: string(factor), Value: string(choice)}
	}
	return label, nil
}

// InterestedInSpecialist reports whether an interesse choice expresses
// willingness to talk to a specialist ("Sim, urgente" or "Sim, quando
// possível").
func InterestedInSpecialist(choice Choice) bool {
	return choice == ChoiceA || choice == ChoiceB
}

// ValidChoice reports whether the choice belongs to the A-D set.
func ValidChoice(c Choice) bool {
	switch c {
	case ChoiceA, ChoiceB, ChoiceC, ChoiceD:
		return true
	default:
		return false
	}
}

// ParseFactor converts a string to a Factor.
func ParseFactor(s string) (Factor, error) {
	switch Factor(s) {
	case FactorPatrimonio, FactorObjetivo, FactorUrgencia, FactorInteresse:
		return Factor(s), nil
	default:
		return "", fmt.Errorf("unknown factor %q", s)
	}
}
