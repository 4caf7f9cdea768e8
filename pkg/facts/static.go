// SPDX-License-Identifier: Apache-2.0
package facts

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Topic keys of the fact table.
const (
	topicTitles  = "titles"
	topicPlayers = "players"
	topicHistory = "history"
	topicRecent  = "recent"
)

// StaticSource is the built-in fact table with the clubs' statistics.
type StaticSource struct {
	teams map[string]teamFacts
}

type teamFacts struct {
	name   string
	topics map[string]map[string]string
}

// NewStaticSource creates the source with the standard Fla-Flu fact table.
func NewStaticSource() *StaticSource {
	return &StaticSource{
		teams: map[string]teamFacts{
			"flamengo": {
				name: "Flamengo",
				topics: map[string]map[string]string{
					topicTitles: {
						"brasileirao":  "8 títulos (1980, 1982, 1983, 1987, 1992, 2009, 2019, 2020)",
						"libertadores": "3 títulos (1981, 2019, 2022)",
						"mundial":      "1 título (1981)",
						"carioca":      "Mais de 35 títulos estaduais",
					},
					topicPlayers: {
						"legends": "Zico, Júnior, Bebeto, Romário, Adriano",
						"current": "Pedro, Gabigol, Arrascaeta, De la Cruz",
						"exports": "Vinícius Jr. (Real Madrid), Lucas Paquetá (West Ham)",
					},
					topicHistory: {
						"founded":  "Fundado em 1895",
						"nickname": "Mengão, Clube de Regatas do Flamengo",
						"fanbase":  "Maior torcida do Brasil com 40+ milhões",
						"stadium":  "Maracanã (estádio próprio em construção)",
					},
					topicRecent: {
						"achievements": "Bicampeão brasileiro (2019-2020)",
						"performance":  "Sempre entre os primeiros colocados",
						"investments":  "Contratações de alto nível constantemente",
					},
				},
			},
			"fluminense": {
				name: "Fluminense",
				topics: map[string]map[string]string{
					topicTitles: {
						"brasileirao":  "4 títulos (1970, 1984, 2010, 2012)",
						"libertadores": "1 título (2023 - ATUAL CAMPEÃO)",
						"carioca":      "Mais de 30 títulos estaduais",
						"others":       "Diversos títulos nacionais e internacionais",
					},
					topicPlayers: {
						"legends": "Didi, Carlos Alberto Torres, Rivellino, Fred",
						"current": "Germán Cano, Paulo Henrique Ganso, Jhon Arias",
						"academy": "Uma das melhores categorias de base do Brasil",
					},
					topicHistory: {
						"founded":   "Fundado em 1902 - mais antigo do Rio",
						"nickname":  "Tricolor, Flu, Time de Guerreiros",
						"tradition": "Clube mais tradicional do futebol carioca",
						"stadium":   "Maracanã e Laranjeiras",
					},
					topicRecent: {
						"achievements": "CAMPEÃO DA LIBERTADORES 2023",
						"performance":  "Crescimento consistente nos últimos anos",
						"recognition":  "Reconhecimento internacional recente",
					},
				},
			},
		},
	}
}

// Search resolves a free-text query against the fact table. The team is
// detected by name or nickname, the topic by keyword; an unrecognized team
// yields StatusNotFound.
func (s *StaticSource) Search(_ context.Context, query string) (Answer, error) {
	lower := strings.ToLower(query)

	team, ok := s.detectTeam(lower)
	if !ok {
		return Answer{
			Status: StatusNotFound,
			Text:   "Não reconheço o time citado. Pergunte sobre Flamengo ou Fluminense.",
		}, nil
	}

	topic := detectTopic(lower)
	section, ok := team.topics[topic]
	if !ok {
		return Answer{
			Status: StatusNotFound,
			Text:   fmt.Sprintf("Sem dados sobre esse assunto para o %s.", team.name),
		}, nil
	}

	keys := make([]string, 0, len(section))
	for k := range section {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s):", team.name, topicLabel(topic))
	for _, k := range keys {
		fmt.Fprintf(&b, " %s.", section[k])
	}
	return Answer{
		Status:  StatusSuccess,
		Text:    b.String(),
		Sources: []string{"base de fatos Fla-Flu"},
	}, nil
}

func (s *StaticSource) detectTeam(query string) (teamFacts, bool) {
	switch {
	case strings.Contains(query, "flamengo") || strings.Contains(query, "mengão") ||
		(strings.Contains(query, "fla") && !strings.Contains(query, "fla-flu") && !strings.Contains(query, "flaflu")):
		return s.teams["flamengo"], true
	case strings.Contains(query, "fluminense") || strings.Contains(query, "tricolor") || strings.Contains(query, "flu"):
		return s.teams["fluminense"], true
	default:
		return teamFacts{}, false
	}
}

func detectTopic(query string) string {
	switch {
	case strings.Contains(query, "jogador") || strings.Contains(query, "ídolo") ||
		strings.Contains(query, "craque") || strings.Contains(query, "elenco") ||
		strings.Contains(query, "artilheiro"):
		return topicPlayers
	case strings.Contains(query, "história") || strings.Contains(query, "fundado") ||
		strings.Contains(query, "torcida") || strings.Contains(query, "estádio"):
		return topicHistory
	case strings.Contains(query, "recente") || strings.Contains(query, "atual") ||
		strings.Contains(query, "hoje") || strings.Contains(query, "agora"):
		return topicRecent
	default:
		return topicTitles
	}
}

func topicLabel(topic string) string {
	switch topic {
	case topicPlayers:
		return "jogadores"
	case topicHistory:
		return "história"
	case topicRecent:
		return "fase recente"
	default:
		return "títulos"
	}
}
