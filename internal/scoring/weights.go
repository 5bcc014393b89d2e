package scoring

import "fmt"

// WeightTable maps each factor's choices to point values. Tenants may
// override the canonical table via settings; the canonical table below is the
// single source of truth for the default model.
type WeightTable map[Factor]map[Choice]int

// defaultWeights is the canonical scoring table:
//
//	Patrimônio: 0-30 pontos (A=10, B=20, C=25, D=30)
//	Objetivo:   0-25 pontos (A=25, B=20, C=15, D=10)
//	Urgência:   0-25 pontos (A=25, B=20, C=15, D=5)
//	Interesse:  0-20 pontos (A=20, B=15, C=10, D=0)
//
// Patrimônio carries the largest weight: capacity to invest is the strongest
// predictor of fit. Total: 0-100. Qualified: >= 70.
var defaultWeights = WeightTable{
	FactorPatrimonio: {
		ChoiceA: 10, // Até R$ 50 mil
		ChoiceB: 20, // R$ 50 mil a R$ 200 mil
		ChoiceC: 25, // R$ 200 mil a R$ 500 mil
		ChoiceD: 30, // Mais de R$ 500 mil
	},
	FactorObjetivo: {
		ChoiceA: 25, // Aposentadoria - longest horizon
		ChoiceB: 20, // Crescimento patrimonial
		ChoiceC: 15, // Reserva de emergência
		ChoiceD: 10, // Especulação / day-trade
	},
	FactorUrgencia: {
		ChoiceA: 25, // Esta semana
		ChoiceB: 20, // Este mês
		ChoiceC: 15, // Próximos 3 meses
		ChoiceD: 5,  // Sem pressa
	},
	FactorInteresse: {
		ChoiceA: 20, // Sim, urgente
		ChoiceB: 15, // Sim, quando possível
		ChoiceC: 10, // Talvez
		ChoiceD: 0,  // Não
	},
}

// choiceLabels echoes the option text shown to the lead per choice.
var choiceLabels = map[Factor]map[Choice]string{
	FactorPatrimonio: {
		ChoiceA: "Até R$ 50 mil",
		ChoiceB: "R$ 50 mil a R$ 200 mil",
		ChoiceC: "R$ 200 mil a R$ 500 mil",
		ChoiceD: "Mais de R$ 500 mil",
	},
	FactorObjetivo: {
		ChoiceA: "Aposentadoria",
		ChoiceB: "Crescimento patrimonial",
		ChoiceC: "Reserva de emergência",
		ChoiceD: "Especulação",
	},
	FactorUrgencia: {
		ChoiceA: "Esta semana",
		ChoiceB: "Este mês",
		ChoiceC: "Próximos 3 meses",
		ChoiceD: "Sem pressa",
	},
	FactorInteresse: {
		ChoiceA: "Sim, urgente",
		ChoiceB: "Sim, quando possível",
		ChoiceC: "Talvez",
		ChoiceD: "Não",
	},
}

// DefaultWeights returns a copy of the canonical table. Callers may mutate
// the copy to build tenant overrides without affecting the default.
func DefaultWeights() WeightTable {
	table := make(WeightTable, len(defaultWeights))
	for factor, choices := range defaultWeights {
		copied := make(map[Choice]int, len(choices))
		for choice, points := range choices {
			copied[choice] = points
		}
		table[factor] = copied
	}
	return table
}

// Validate checks that the table covers all four factors with the full A-D
// choice set, that no point value is negative, and that the factor maxima
// cannot push the aggregate past 100.
func (t WeightTable) Validate() error {
	maxTotal := 0
	for _, factor := range Factors {
		choices, ok := t[factor]
		if !ok {
			return fmt.Errorf("weight table missing factor %q", factor)
		}
		factorMax := 0
		for _, choice := range []Choice{ChoiceA, ChoiceB, ChoiceC, ChoiceD} {
			points, ok := choices[choice]
			if !ok {
				return fmt.Errorf("weight table missing choice %q for factor %q", choice, factor)
			}
			if points < 0 {
				return fmt.Errorf("weight table has negative points for %s/%s", factor, choice)
			}
			if points > factorMax {
				factorMax = points
			}
		}
		maxTotal += factorMax
	}
	if maxTotal > maxScore {
		return fmt.Errorf("weight table factor maxima sum to %d, exceeding %d", maxTotal, maxScore)
	}
	return nil
}
