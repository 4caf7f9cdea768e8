// SPDX-License-Identifier: Apache-2.0
// Package agents implements the four debate actors: the supervisor moderator,
// the two fan advocates, and the neutral data-lookup agent. Each exposes a
// directory card and an envelope handler.
package agents

import (
	"context"

	"github.com/charlenopires/FlaFludeAgentes/pkg/errors"
	"github.com/charlenopires/FlaFludeAgentes/pkg/protocol"
)

// Directory names of the four actors.
const (
	NameSupervisor  = "supervisor"
	NameFlamengo    = "flamengo"
	NameFluminense  = "fluminense"
	NamePesquisador = "pesquisador"
)

// Version stamped on every agent card.
const Version = "1.0.0"

// Agent is the common surface of all four actors.
type Agent interface {
	Name() string
	Handle(ctx context.Context, env *protocol.Envelope) (*protocol.Response, error)
}

func pong(env *protocol.Envelope, from string) (*protocol.Response, error) {
	return protocol.NewResult(env, from, map[string]interface{}{
		"status": "ok",
	})
}

func unknownMethod(env *protocol.Envelope) (*protocol.Response, error) {
	return nil, errors.New(errors.CodeMethodNotFound, "unsupported method: "+env.Method, nil)
}
