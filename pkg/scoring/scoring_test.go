// SPDX-License-Identifier: Apache-2.0
package scoring

import (
	"reflect"
	"testing"

	"github.com/charlenopires/FlaFludeAgentes/pkg/transcript"
)

func buildTranscript(statements map[string]string) *transcript.Transcript {
	tr := transcript.New()
	// Deterministic insertion order.
	for _, speaker := range []string{"flamengo", "fluminense"} {
		if text, ok := statements[speaker]; ok {
			tr.Append(transcript.Entry{Speaker: speaker, Text: text, Kind: transcript.KindOpening})
		}
	}
	return tr
}

func TestEvaluateDeterministic(t *testing.T) {
	tr := buildTranscript(map[string]string{
		"flamengo":   "O Flamengo é o maior campeão porque tem mais títulos, é a prova da nossa história.",
		"fluminense": "O Fluminense é superior pois dados e estatística mostram nossa evidência.",
	})
	speakers := []string{"flamengo", "fluminense"}

	first := Evaluate(tr, speakers, DefaultWeights())
	for i := 0; i < 10; i++ {
		again := Evaluate(tr, speakers, DefaultWeights())
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("evaluation not deterministic: %+v != %+v", first, again)
		}
	}
}

func TestEvidenceDensityOrdering(t *testing.T) {
	// Same rhetorical shell, but one side cites far more factual markers.
	tr := buildTranscript(map[string]string{
		"flamengo":   "Somos um time bom e animado, jogamos bonito sempre.",
		"fluminense": "Nossos títulos, nossa história, os dados, a estatística e cada número e campeonato provam o ano vitorioso.",
	})
	result := Evaluate(tr, []string{"flamengo", "fluminense"}, DefaultWeights())

	if result.Tie {
		t.Fatalf("expected a winner, got tie: %+v", result)
	}
	if result.Winner != "fluminense" {
		t.Errorf("expected evidence-dense side to win, got %q", result.Winner)
	}
	var flu, fla Record
	for _, r := range result.Records {
		switch r.Speaker {
		case "fluminense":
			flu = r
		case "flamengo":
			fla = r
		}
	}
	if flu.Evidence <= fla.Evidence {
		t.Errorf("expected higher evidence density: %v <= %v", flu.Evidence, fla.Evidence)
	}
	if flu.Rank != 1 || fla.Rank != 2 {
		t.Errorf("unexpected ranks: fluminense=%d flamengo=%d", flu.Rank, fla.Rank)
	}
}

func TestExplicitTie(t *testing.T) {
	same := "O maior campeão porque tem títulos e história."
	tr := buildTranscript(map[string]string{
		"flamengo":   same,
		"fluminense": same,
	})
	result := Evaluate(tr, []string{"flamengo", "fluminense"}, DefaultWeights())

	if !result.Tie {
		t.Fatalf("expected explicit tie, got %+v", result)
	}
	if result.Winner != "" {
		t.Errorf("expected empty winner on tie, got %q", result.Winner)
	}
	if result.Records[0].Total != result.Records[1].Total {
		t.Errorf("tie with different totals: %+v", result.Records)
	}
}

func TestConsistencyPenalty(t *testing.T) {
	tr := buildTranscript(map[string]string{
		"flamengo":   "Vocês são um lixo, que vergonha de time, seus burro.",
		"fluminense": "Respeitamos o adversário mas nossos títulos falam.",
	})
	result := Evaluate(tr, []string{"flamengo", "fluminense"}, DefaultWeights())

	var fla Record
	for _, r := range result.Records {
		if r.Speaker == "flamengo" {
			fla = r
		}
	}
	if fla.Consistency != 40 {
		t.Errorf("expected 3 insults to cost 60 points, got consistency %v", fla.Consistency)
	}
}

func TestConsistencyFloorZero(t *testing.T) {
	tr := buildTranscript(map[string]string{
		"flamengo": "lixo lixo lixo vergonha vergonha burro idiota idiota",
	})
	result := Evaluate(tr, []string{"flamengo"}, DefaultWeights())
	if got := result.Records[0].Consistency; got != 0 {
		t.Errorf("expected consistency floored at 0, got %v", got)
	}
}

func TestComponentCaps(t *testing.T) {
	long := ""
	for i := 0; i < 120; i++ {
		long += "títulos dados história estatística melhor maior campeão porque pois prova "
	}
	tr := buildTranscript(map[string]string{"flamengo": long})
	result := Evaluate(tr, []string{"flamengo"}, DefaultWeights())

	r := result.Records[0]
	if r.Structural > 100 || r.Evidence > 100 || r.Rhetoric > 100 {
		t.Errorf("expected components capped at 100, got %+v", r)
	}
	if r.Total > 100 {
		t.Errorf("expected total within 100, got %v", r.Total)
	}
}

func TestEmptyTranscript(t *testing.T) {
	tr := transcript.New()
	result := Evaluate(tr, []string{"flamengo", "fluminense"}, DefaultWeights())
	if !result.Tie {
		t.Errorf("expected tie on empty transcript, got %+v", result)
	}
	for _, r := range result.Records {
		if r.Structural != 0 || r.Evidence != 0 || r.Rhetoric != 0 {
			t.Errorf("expected zero offensive components, got %+v", r)
		}
		if r.Consistency != 100 {
			t.Errorf("expected full consistency bonus on silence, got %v", r.Consistency)
		}
	}
}
