// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charlenopires/FlaFludeAgentes/pkg/directory"
	"github.com/charlenopires/FlaFludeAgentes/pkg/llm"
)

const fluminenseSystemPrompt = `💚🤍❤️ FLUMINENSE - TRADIÇÃO E ELEGÂNCIA CENTENÁRIA ❤️🤍💚

Você é um torcedor orgulhoso do Fluminense. Defenda o clube com elegância e
tradição: fundado em 1902, o mais antigo do Rio, 4 Brasileirões, atual campeão
da Libertadores (2023), escola de craques como Didi, Carlos Alberto, Rivellino,
Fred e Thiago Silva. Destaque qualidade sobre quantidade e ironize a falta de
classe do rival quando apropriado. Solicite dados ao pesquisador quando
necessário usando o marcador "PESQUISADOR:". Use os emojis 💚🤍❤️✨🏆👑.`

// NewFluminense creates the tricolor advocate.
func NewFluminense(gen *llm.Generator, timeout time.Duration, logger *slog.Logger) *Advocate {
	return newAdvocate(NameFluminense, persona{
		displayName:  "Torcedor do Fluminense",
		description:  "Torcedor orgulhoso do Fluminense especializado em argumentação elegante com tradição e conquistas atuais",
		rival:        "Flamengo",
		systemPrompt: fluminenseSystemPrompt,
		initialFallback: func(research string) string {
			return fmt.Sprintf(`💚✨ **FLUMINENSE: CLASSE COMPROVADA POR DADOS!** ✨💚

%s

🏛️ **TRADIÇÃO CENTENÁRIA IRREFUTÁVEL:**
Fundado em 1902 - somos o MAIS ANTIGO do Rio!

👑 **LIBERTADORES 2023 - ATUAIS CAMPEÕES!**
Somos os ATUAIS campeões da América! Conquista ATUAL vs glórias passadas!

⭐ **ESCOLA DE CRAQUES:**
Formamos Didi, Carlos Alberto, Rivellino, Fred, Thiago Silva - LENDAS MUNDIAIS!

✨ **QUALIDADE SOBRE QUANTIDADE:**
Enquanto eles gritam números, nós demonstramos CLASSE e conquistas ATUAIS!

PESQUISADOR: Traga dados sobre formação de craques para a Seleção Brasileira!`, tricolorResearchBlock(research))
		},
		counterFallback: func(opponent, research string) string {
			return fmt.Sprintf(`💚✨ **RESPOSTA ELEGANTE COM DADOS!** ✨💚

%s

Flamengo argumentou: "%s"

🎭 **QUALIDADE SOBRE QUANTIDADE:**
LIBERTADORES 2023 = ATUAIS CAMPEÕES DA AMÉRICA! 👑
Fundação 1902 = MAIS ANTIGOS do Rio, tradição centenária!
Formamos: Didi, Carlos Alberto, Rivellino = LENDAS MUNDIAIS!

💎 **REALIDADE REFINADA:**
Vocês gritam números, nós demonstramos CLASSE!

PESQUISADOR: Traga dados sobre a história centenária dos dois clubes!`, tricolorResearchBlock(research), clip(opponent, 80))
		},
		skills: []directory.Skill{
			{
				ID:          "initial_argument",
				Name:        "Argumento Inicial",
				Description: "Apresenta argumento inicial elegante sobre a superioridade do Fluminense",
				Examples:    []string{"Apresente seu argumento inicial", "Por que o Fluminense é superior?"},
			},
			{
				ID:          "counter_argument",
				Name:        "Contra-argumento",
				Description: "Gera contra-argumento refinado contra argumentos do Flamengo",
				Examples:    []string{"Rebata esse argumento", "Responda ao rival"},
			},
			{
				ID:          "request_research",
				Name:        "Solicitar Pesquisa",
				Description: "Solicita dados ao agente pesquisador para embasar argumentos",
				Examples:    []string{"Preciso de dados sobre a Libertadores", "Busque dados da história do clube"},
			},
		},
	}, gen, timeout, logger)
}

func tricolorResearchBlock(research string) string {
	if research == "" {
		return "📊 Dados da base tricolor de conhecimento:"
	}
	return "📊 Dados refinados do pesquisador: " + research
}
