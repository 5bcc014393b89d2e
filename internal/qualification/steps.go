package qualification

import "leadzap_backend/internal/scoring"

// Step is the conversation state machine position.
type Step string

const (
	StepInicio     Step = "inicio"
	StepPatrimonio Step = "patrimonio"
	StepObjetivo   Step = "objetivo"
	StepUrgencia   Step = "urgencia"
	StepInteresse  Step = "interesse"
	StepCompleta   Step = "qualificacao_completa"
)

// nextStep maps each answered question to the following one.
var nextStep = map[Step]Step{
	StepInicio:     StepPatrimonio,
	StepPatrimonio: StepObjetivo,
	StepObjetivo:   StepUrgencia,
	StepUrgencia:   StepInteresse,
	StepInteresse:  StepCompleta,
}

// stepFactor maps a question step to the scoring factor it fills.
var stepFactor = map[Step]scoring.Factor{
	StepPatrimonio: scoring.FactorPatrimonio,
	StepObjetivo:   scoring.FactorObjetivo,
	StepUrgencia:   scoring.FactorUrgencia,
	StepInteresse:  scoring.FactorInteresse,
}

const welcomeMessage = `Olá! 👋

Vi que você tem interesse em investimentos. Para te conectar com o melhor especialista, preciso fazer algumas perguntas rápidas. Tudo bem?

Primeira pergunta: Quanto você tem disponível para investir hoje?

A) Até R$ 50 mil
B) R$ 50 mil a R$ 200 mil
C) R$ 200 mil a R$ 500 mil
D) Mais de R$ 500 mil`

// questions are the follow-up prompts sent after a step is answered.
var questions = map[Step]string{
	StepObjetivo: `Ótimo, obrigado pela resposta!

Agora, vamos para a segunda pergunta: Qual seu principal objetivo com os investimentos?

A) Aposentadoria
B) Crescimento
C) Reserva
D) Especulação`,
	StepUrgencia: `Perfeito! Agora, a terceira pergunta: Quando pretende começar a investir?

A) Esta semana
B) Este mês
C) Em 3 meses
D) Sem pressa`,
	StepInteresse: `Excelente! Por último, gostaria de saber: você gostaria de falar com um de nossos especialistas?

A) Sim, urgente
B) Sim, quando possível
C) Talvez
D) Não`,
}

// reasks are sent when the answer for the current step could not be
// understood. The lead stays on the same step.
var reasks = map[Step]string{
	StepPatrimonio: `Não entendi sua resposta sobre patrimônio. Por favor, escolha uma das opções (A, B, C ou D) ou descreva o valor.

Quanto você tem disponível para investir hoje?

A) Até R$ 50 mil
B) R$ 50 mil a R$ 200 mil
C) R$ 200 mil a R$ 500 mil
D) Mais de R$ 500 mil`,
	StepObjetivo: `Não entendi seu objetivo. Por favor, escolha uma das opções (A, B, C ou D).

Qual seu principal objetivo com os investimentos?

A) Aposentadoria
B) Crescimento
C) Reserva
D) Especulação`,
	StepUrgencia: `Não entendi sua urgência. Por favor, escolha uma das opções (A, B, C ou D).

Quando pretende começar a investir?

A) Esta semana
B) Este mês
C) Em 3 meses
D) Sem pressa`,
	StepInteresse: `Não entendi seu interesse. Por favor, escolha uma das opções (A, B, C ou D).

Gostaria de falar com um de nossos especialistas?

A) Sim, urgente
B) Sim, quando possível
C) Talvez
D) Não`,
}

const qualifiedMessage = `Parabéns! Você está qualificado para falar com um de nossos especialistas. Em breve entraremos em contato para agendar sua reunião.`

const disqualifiedMessage = `Agradecemos suas respostas. No momento, nossos serviços são mais adequados para outro perfil de investidor. Mas fique à vontade para nos procurar no futuro!`

const reEngagementMessage = `Oi! 👋 Notei que nossa conversa ficou pela metade. Quando tiver um minutinho, é só responder a última pergunta para eu te conectar com o especialista certo.`
