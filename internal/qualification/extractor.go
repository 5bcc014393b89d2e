package qualification

import (
	"regexp"
	"strings"

	"leadzap_backend/internal/scoring"
)

var letterPattern = regexp.MustCompile(`\b([A-D])\b`)

// keywordChoices maps recognizable Portuguese phrases to choices, checked in
// order. Amount phrases come first so "mais de 500" resolves before the
// generic "500" match.
var keywordChoices = []struct {
	words  []string
	choice scoring.Choice
}{
	// patrimônio
	{[]string{"MAIS DE", "ACIMA", "SUPERIOR"}, scoring.ChoiceD},
	{[]string{"QUINHENTOS", "500"}, scoring.ChoiceC},
	{[]string{"DUZENTOS", "200"}, scoring.ChoiceB},
	{[]string{"CINQUENTA", "50", "ATÉ"}, scoring.ChoiceA},
	// objetivo
	{[]string{"APOSENTADORIA"}, scoring.ChoiceA},
	{[]string{"CRESCIMENTO"}, scoring.ChoiceB},
	{[]string{"RESERVA"}, scoring.ChoiceC},
	{[]string{"ESPECULAÇÃO", "ESPECULACAO"}, scoring.ChoiceD},
	// urgência
	{[]string{"ESTA SEMANA", "SEMANA"}, scoring.ChoiceA},
	{[]string{"ESTE MÊS", "ESTE MES"}, scoring.ChoiceB},
	{[]string{"3 MESES", "TRÊS MESES", "TRES MESES"}, scoring.ChoiceC},
	{[]string{"SEM PRESSA", "NÃO TENHO PRESSA"}, scoring.ChoiceD},
}

// ExtractChoice pulls an A-D answer out of a free-form WhatsApp message.
// It tries a bare letter first, then a letter embedded in the text ("opção b",
// "a) até 50 mil"), then content keywords. Returns false when nothing can be
// extracted; the caller re-asks the question.
func ExtractChoice(message string) (scoring.Choice, bool) {
	upper := strings.ToUpper(strings.TrimSpace(message))
	if upper == "" {
		return "", false
	}

	if len(upper) == 1 && upper >= "A" && upper <= "D" {
		return scoring.Choice(upper), true
	}

	if m := letterPattern.FindStringSubmatch(upper); m != nil {
		return scoring.Choice(m[1]), true
	}

	for _, kw := range keywordChoices {
		for _, word := range kw.words {
			if strings.Contains(upper, word) {
				return kw.choice, true
			}
		}
	}

	// Interesse phrases come last so "sim, mais de 500 mil" still reads as a
	// patrimônio answer. A bare "sim" says nothing about which option and is
	// re-asked.
	switch {
	case strings.Contains(upper, "SIM") && strings.Contains(upper, "URGENTE"):
		return scoring.ChoiceA, true
	case strings.Contains(upper, "SIM") && (strings.Contains(upper, "POSSÍVEL") || strings.Contains(upper, "POSSIVEL")):
		return scoring.ChoiceB, true
	case strings.Contains(upper, "TALVEZ"):
		return scoring.ChoiceC, true
	case strings.Contains(upper, "NÃO"), strings.Contains(upper, "NAO"):
		return scoring.ChoiceD, true
	}

	return "", false
}
