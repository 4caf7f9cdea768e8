// SPDX-License-Identifier: Apache-2.0
// Package facts backs the data-lookup agent with team knowledge. The default
// source is a static in-memory fact table; an MCP-backed source can be
// selected by configuration.
package facts

import "context"

// Statuses of a lookup answer.
const (
	StatusSuccess  = "success"
	StatusNotFound = "not_found"
)

// Answer is the outcome of a fact lookup.
type Answer struct {
	Status  string   `json:"status"`
	Text    string   `json:"text"`
	Sources []string `json:"sources,omitempty"`
}

// Source answers factual queries. A failed lookup returns an error only for
// infrastructure problems; "no such fact" is a StatusNotFound answer.
type Source interface {
	Search(ctx context.Context, query string) (Answer, error)
}
