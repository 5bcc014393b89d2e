package scoring

import "fmt"

// InvalidAnswerError reports an answer outside the defined choice set for a
// factor. Recoverable: the conversation layer re-asks the question.
type InvalidAnswerError struct {
	Factor string
	Value  string
}

func (e *InvalidAnswerError) Error() string {
	return fmt.Sprintf("invalid answer %q for factor %q", e.Value, e.Factor)
}

// ScoreOverflowError reports an aggregate above 100. With a valid weight
// table this is unreachable; it indicates a defect in a tenant override that
// slipped past validation, so it is surfaced instead of truncated.
type ScoreOverflowError struct {
	Total int
}

func (e *ScoreOverflowError) Error() string {
	return fmt.Sprintf("aggregate score %d exceeds maximum of %d", e.Total, maxScore)
}
