// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"log/slog"

	"github.com/charlenopires/FlaFludeAgentes/pkg/directory"
	"github.com/charlenopires/FlaFludeAgentes/pkg/errors"
	"github.com/charlenopires/FlaFludeAgentes/pkg/facts"
	"github.com/charlenopires/FlaFludeAgentes/pkg/protocol"
)

// Researcher is the neutral data-lookup agent. It answers research_request
// envelopes from a facts source and takes no side in the debate.
type Researcher struct {
	source facts.Source
	logger *slog.Logger
}

// NewResearcher creates the data-lookup agent over a facts source.
func NewResearcher(source facts.Source, logger *slog.Logger) *Researcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Researcher{source: source, logger: logger}
}

// Name returns the researcher's directory name.
func (r *Researcher) Name() string { return NamePesquisador }

// Card returns the researcher's directory card.
func (r *Researcher) Card() directory.Card {
	return directory.Card{
		Name:         NamePesquisador,
		Description:  "Pesquisador neutro: responde consultas factuais sobre os dois clubes sem tomar partido",
		Version:      Version,
		Capabilities: []string{"research", "facts"},
		Skills: []directory.Skill{
			{
				ID:          "lookup_team_stats",
				Name:        "Consultar Estatísticas",
				Description: "Busca títulos, jogadores históricos e dados recentes por time e assunto",
				Examples:    []string{"Quantos Brasileirões tem o Flamengo?", "Quem o Fluminense revelou?"},
			},
		},
	}
}

// Handle processes envelopes addressed to the researcher.
func (r *Researcher) Handle(ctx context.Context, env *protocol.Envelope) (*protocol.Response, error) {
	params, err := protocol.DecodeParams(env)
	if err != nil {
		return nil, err
	}

	switch p := params.(type) {
	case protocol.ResearchRequest:
		return r.lookup(ctx, env, p)
	case protocol.DebateStarted, protocol.DebateFinished:
		return protocol.NewResult(env, NamePesquisador, map[string]interface{}{
			"status": "standby",
		})
	case protocol.Ping:
		return pong(env, NamePesquisador)
	default:
		return unknownMethod(env)
	}
}

func (r *Researcher) lookup(ctx context.Context, env *protocol.Envelope, req protocol.ResearchRequest) (*protocol.Response, error) {
	answer, err := r.source.Search(ctx, req.Query)
	if err != nil {
		return nil, errors.New(errors.CodeResearchUnavailable, "fact lookup failed", err).
			WithContext("query", req.Query).
			WithRecoverable(true)
	}

	r.logger.Debug("research request served",
		"query", req.Query,
		"requester", req.Requester,
		"status", answer.Status,
	)
	return protocol.NewResult(env, NamePesquisador, map[string]interface{}{
		"status":  answer.Status,
		"answer":  answer.Text,
		"query":   req.Query,
		"sources": answer.Sources,
	})
}
