// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charlenopires/FlaFludeAgentes/pkg/directory"
	"github.com/charlenopires/FlaFludeAgentes/pkg/llm"
)

const flamengoSystemPrompt = `🔴⚡ FLAMENGO - A NAÇÃO RUBRO-NEGRA ⚡🔴

Você é um torcedor fanático do Flamengo. Defenda o clube com paixão e dados:
maior torcida do Brasil (43+ milhões), 8 Brasileirões, 3 Libertadores,
campeão Mundial de 1981, revelação de craques de Zico a Vinícius Jr.
Provoque o rival Fluminense com inteligência e classe, misture emoção com
números concretos e nunca admita derrota. Solicite dados ao pesquisador
quando necessário usando o marcador "PESQUISADOR:". Use os emojis 🔴⚡🏆🔥.`

// NewFlamengo creates the rubro-negro advocate.
func NewFlamengo(gen *llm.Generator, timeout time.Duration, logger *slog.Logger) *Advocate {
	return newAdvocate(NameFlamengo, persona{
		displayName:  "Torcedor do Flamengo",
		description:  "Torcedor apaixonado do Flamengo especializado em argumentação persuasiva com dados e emoção",
		rival:        "Fluminense",
		systemPrompt: flamengoSystemPrompt,
		initialFallback: func(research string) string {
			return fmt.Sprintf(`🔴⚡ **FLAMENGO: SUPERIORIDADE BASEADA EM DADOS!** ⚡🔴

%s

💪 **MATEMÁTICA PURA:**
8 Brasileirões vs 4 do Fluminense = DOBRAMOS eles!
43 milhões vs 8 milhões de torcedores = 5x MAIORES!

🏆 **TRICAMPEÕES DA AMÉRICA** com 3 Libertadores!
🌍 **CAMPEÕES MUNDIAIS** de 1981 com o Galinho Zico!

🔥 **REALIDADE:** Os números confirmam - SOMOS GIGANTES!

PESQUISADOR: Traga dados sobre confrontos diretos recentes Fla-Flu!`, researchBlock(research))
		},
		counterFallback: func(opponent, research string) string {
			return fmt.Sprintf(`🔴⚡ **RESPOSTA BASEADA EM DADOS!** ⚡🔴

%s

Fluminense argumentou: "%s"

💥 **FATOS QUE DERRUBAM VOCÊS:**
8 Brasileirões vs 4 = DOBRAMOS vocês em títulos nacionais!
43 milhões vs 8 milhões = 5x MAIS torcedores!

🏆 **MATEMÁTICA PURA:**
3 Libertadores vs 1 = TRICAMPEÕES da América!
Vocês: 1 conquista recente. Nós: HEGEMONIA TOTAL!

🔥 **REALIDADE:** Os dados confirmam - SOMOS GIGANTES!

PESQUISADOR: Traga dados sobre a história de títulos dos dois clubes!`, researchBlock(research), clip(opponent, 80))
		},
		skills: []directory.Skill{
			{
				ID:          "initial_argument",
				Name:        "Argumento Inicial",
				Description: "Apresenta argumento inicial demolidor sobre superioridade do Flamengo",
				Examples:    []string{"Apresente seu argumento inicial", "Por que o Flamengo é superior?"},
			},
			{
				ID:          "counter_argument",
				Name:        "Contra-argumento",
				Description: "Gera contra-argumento devastador contra argumentos do Fluminense",
				Examples:    []string{"Rebata esse argumento", "Responda ao rival"},
			},
			{
				ID:          "request_research",
				Name:        "Solicitar Pesquisa",
				Description: "Solicita dados ao agente pesquisador para embasar argumentos",
				Examples:    []string{"Preciso de dados sobre títulos", "Busque estatísticas da torcida"},
			},
		},
	}, gen, timeout, logger)
}

func researchBlock(research string) string {
	if research == "" {
		return "📊 Dados da base rubro-negra de conhecimento:"
	}
	return "📊 Dados do pesquisador: " + research
}
