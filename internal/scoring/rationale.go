package scoring

import (
	"fmt"
	"strings"
)

// Strong/weak cutoffs as fractions of a factor's maximum. A factor at or
// above 80% of its maximum reads as a strength; at or below 40% as a
// weakness. Factors in between are not mentioned.
const (
	strongFraction = 0.8
	weakFraction   = 0.4
)

var factorDisplayNames = map[Factor]string{
	FactorPatrimonio: "patrimônio",
	FactorObjetivo:   "objetivo",
	FactorUrgencia:   "urgência",
	FactorInteresse:  "interesse",
}

// buildRationale renders the deterministic decision summary shown alongside
// a qualification. Factors are always visited in canonical order so the same
// breakdown yields the same string.
func (e *Engine) buildRationale(score int, breakdown Breakdown, qualified bool) string {
	var strong, weak []string

	for _, factor := range Factors {
		points := breakdown.Get(factor)
		max := e.FactorMax(factor)
		if max == 0 {
			continue
		}
		entry := fmt.Sprintf("%s (%d/%d)", factorDisplayNames[factor], points, max)
		fraction := float64(points) / float64(max)
		switch {
		case fraction >= strongFraction:
			strong = append(strong, entry)
		case fraction <= weakFraction:
			weak = append(weak, entry)
		}
	}

	var sb strings.Builder
	if qualified {
		fmt.Fprintf(&sb, "Qualificado com score %d/100 (mínimo %d).", score, e.threshold)
	} else {
		fmt.Fprintf(&sb, "Não qualificado com score %d/100 (mínimo %d).", score, e.threshold)
	}
	if len(strong) > 0 {
		sb.WriteString(" Pontos fortes: ")
		sb.WriteString(strings.Join(strong, ", "))
		sb.WriteString(".")
	}
	if len(weak) > 0 {
		sb.WriteString(" Pontos fracos: ")
		sb.WriteString(strings.Join(weak, ", "))
		sb.WriteString(".")
	}
	return sb.String()
}
