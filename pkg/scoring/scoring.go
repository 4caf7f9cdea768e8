// SPDX-License-Identifier: Apache-2.0
// Package scoring evaluates a finished debate from the transcript alone.
// The evaluation is pure and deterministic: identical transcripts always
// produce identical results, with ties reported explicitly.
package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/charlenopires/FlaFludeAgentes/pkg/transcript"
)

// Weights distribute the four scoring components. They should sum to 1.
type Weights struct {
	Structural  float64 `json:"structural" yaml:"structural"`
	Evidence    float64 `json:"evidence" yaml:"evidence"`
	Rhetoric    float64 `json:"rhetoric" yaml:"rhetoric"`
	Consistency float64 `json:"consistency" yaml:"consistency"`
}

// DefaultWeights returns the standard component distribution.
func DefaultWeights() Weights {
	return Weights{
		Structural:  0.40,
		Evidence:    0.30,
		Rhetoric:    0.20,
		Consistency: 0.10,
	}
}

// Record is one speaker's scored breakdown.
type Record struct {
	Speaker     string  `json:"speaker" yaml:"speaker"`
	Structural  float64 `json:"structural" yaml:"structural"`
	Evidence    float64 `json:"evidence" yaml:"evidence"`
	Rhetoric    float64 `json:"rhetoric" yaml:"rhetoric"`
	Consistency float64 `json:"consistency" yaml:"consistency"`
	Total       float64 `json:"total" yaml:"total"`
	Rank        int     `json:"rank" yaml:"rank"`
}

// Result is the full verdict. Winner is empty when Tie is true.
type Result struct {
	Records []Record `json:"records" yaml:"records"`
	Winner  string   `json:"winner,omitempty" yaml:"winner,omitempty"`
	Tie     bool     `json:"tie" yaml:"tie"`
}

// Marker vocabularies, matched case-insensitively as substrings of the
// speaker's concatenated argument text.
var (
	connectiveMarkers = []string{
		"porque", "pois", "devido", "portanto", "logo",
		"evidência", "prova", "exemplo",
	}
	factMarkers = []string{
		"título", "ano", "estatística", "número", "dados",
		"história", "campeonato", "artilheiro",
	}
	rhetoricMarkers = []string{
		"melhor", "superior", "único", "maior", "vencedor",
		"campeão", "gigante",
	}
	contradictionMarkers = []string{
		"idiota", "burro", "lixo", "vergonha",
	}
)

// Component multipliers and caps.
const (
	connectiveWeight  = 10.0
	factWeight        = 8.0
	rhetoricWeight    = 6.0
	contradictionCost = 20.0
	componentCap      = 100.0
	wordContribution  = 0.5
)

// Evaluate scores the given speakers on a transcript and ranks them.
// Strictly higher weighted total wins; equal totals are an explicit tie.
func Evaluate(tr *transcript.Transcript, speakers []string, weights Weights) Result {
	records := make([]Record, 0, len(speakers))
	for _, speaker := range speakers {
		text := strings.ToLower(tr.TextBy(speaker))
		r := Record{
			Speaker:     speaker,
			Structural:  structuralStrength(text),
			Evidence:    evidenceDensity(text),
			Rhetoric:    rhetoricalImpact(text),
			Consistency: consistencyBonus(text),
		}
		r.Total = round2(r.Structural*weights.Structural +
			r.Evidence*weights.Evidence +
			r.Rhetoric*weights.Rhetoric +
			r.Consistency*weights.Consistency)
		records = append(records, r)
	}

	// Rank by total descending; equal totals keep caller order.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Total > records[j].Total
	})
	for i := range records {
		records[i].Rank = i + 1
	}

	result := Result{Records: records}
	if len(records) >= 2 && records[0].Total == records[1].Total {
		result.Tie = true
	} else if len(records) > 0 {
		result.Winner = records[0].Speaker
	}
	return result
}

// structuralStrength rewards developed, connected argumentation: half a
// point per word plus ten per logical connective, capped.
func structuralStrength(text string) float64 {
	words := float64(len(strings.Fields(text)))
	score := words*wordContribution + countMarkers(text, connectiveMarkers)*connectiveWeight
	return round2(math.Min(componentCap, score))
}

// evidenceDensity rewards verifiable factual references, eight points each.
func evidenceDensity(text string) float64 {
	score := countMarkers(text, factMarkers) * factWeight
	return round2(math.Min(componentCap, score))
}

// rhetoricalImpact rewards persuasive superlatives, six points each.
func rhetoricalImpact(text string) float64 {
	score := countMarkers(text, rhetoricMarkers) * rhetoricWeight
	return round2(math.Min(componentCap, score))
}

// consistencyBonus starts at the cap and loses twenty points per
// contradiction marker, floored at zero.
func consistencyBonus(text string) float64 {
	score := componentCap - countMarkers(text, contradictionMarkers)*contradictionCost
	return round2(math.Max(0, score))
}

func countMarkers(text string, markers []string) float64 {
	total := 0
	for _, marker := range markers {
		total += strings.Count(text, marker)
	}
	return float64(total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
