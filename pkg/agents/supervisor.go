// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charlenopires/FlaFludeAgentes/pkg/directory"
	"github.com/charlenopires/FlaFludeAgentes/pkg/protocol"
	"github.com/charlenopires/FlaFludeAgentes/pkg/schedule"
	"github.com/charlenopires/FlaFludeAgentes/pkg/scoring"
	"github.com/charlenopires/FlaFludeAgentes/pkg/transcript"
)

// Supervisor moderates the debate: it opens sessions, reports time status,
// and produces the scored verdict. It stays strictly neutral; the ruling is
// computed by the deterministic evaluator, never generated.
type Supervisor struct {
	sched    *schedule.Scheduler
	tr       *transcript.Transcript
	weights  scoring.Weights
	speakers []string
	logger   *slog.Logger
}

// NewSupervisor creates the moderator over shared session state.
func NewSupervisor(sched *schedule.Scheduler, tr *transcript.Transcript, weights scoring.Weights, speakers []string, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	if len(speakers) == 0 {
		speakers = []string{NameFlamengo, NameFluminense}
	}
	return &Supervisor{sched: sched, tr: tr, weights: weights, speakers: speakers, logger: logger}
}

// Name returns the supervisor's directory name.
func (s *Supervisor) Name() string { return NameSupervisor }

// Card returns the supervisor's directory card.
func (s *Supervisor) Card() directory.Card {
	return directory.Card{
		Name:         NameSupervisor,
		Description:  "Supervisor de debate profissional: coordena tempo, mantém neutralidade e aplica critérios científicos de avaliação",
		Version:      Version,
		Capabilities: []string{"moderation", "timekeeping", "evaluation"},
		Skills: []directory.Skill{
			{
				ID:          "start_debate",
				Name:        "Iniciar Debate",
				Description: "Abre oficialmente um debate com duração configurada e divisão 50/50 do tempo",
				Examples:    []string{"Inicie um debate de 10 minutos"},
			},
			{
				ID:          "analyze_debate",
				Name:        "Analisar Debate",
				Description: "Produz o veredicto final com pontuação por critério e vencedor",
				Examples:    []string{"Quem venceu o debate?"},
			},
			{
				ID:          "time_status",
				Name:        "Status de Tempo",
				Description: "Informa tempo restante, turno e orador atual",
				Examples:    []string{"Quanto tempo resta?"},
			},
		},
	}
}

// Handle processes envelopes addressed to the supervisor.
func (s *Supervisor) Handle(ctx context.Context, env *protocol.Envelope) (*protocol.Response, error) {
	params, err := protocol.DecodeParams(env)
	if err != nil {
		return nil, err
	}

	switch p := params.(type) {
	case protocol.StartDebate:
		return s.startDebate(env, p)
	case protocol.AnalyzeDebate:
		return s.analyzeDebate(env)
	case protocol.MessageSend:
		return protocol.NewResult(env, NameSupervisor, map[string]interface{}{
			"status": "received",
		})
	case protocol.Ping:
		return pong(env, NameSupervisor)
	default:
		return unknownMethod(env)
	}
}

func (s *Supervisor) startDebate(env *protocol.Envelope, p protocol.StartDebate) (*protocol.Response, error) {
	duration := time.Duration(p.DurationMinutes) * time.Minute
	if err := s.sched.Start(duration); err != nil {
		return nil, err
	}

	snap := s.sched.Snapshot()
	s.logger.Info("debate started",
		"duration_minutes", p.DurationMinutes,
		"first_speaker", snap.CurrentSpeaker,
		"turn_seconds", snap.PerSpeaker.Seconds(),
	)
	return protocol.NewResult(env, NameSupervisor, map[string]interface{}{
		"status":        "success",
		"message":       s.OpeningText(duration, snap.CurrentSpeaker),
		"first_speaker": snap.CurrentSpeaker,
		"turn_seconds":  snap.PerSpeaker.Seconds(),
	})
}

func (s *Supervisor) analyzeDebate(env *protocol.Envelope) (*protocol.Response, error) {
	result := s.Evaluate()
	return protocol.NewResult(env, NameSupervisor, map[string]interface{}{
		"status":  "success",
		"winner":  result.Winner,
		"tie":     result.Tie,
		"records": result.Records,
		"summary": s.RulingText(result),
	})
}

// Evaluate scores the transcript with the configured weights.
func (s *Supervisor) Evaluate() scoring.Result {
	return scoring.Evaluate(s.tr, s.speakers, s.weights)
}

// TimeStatus reports the scheduler state the way the moderator announces it.
func (s *Supervisor) TimeStatus() map[string]interface{} {
	snap := s.sched.Snapshot()
	return map[string]interface{}{
		"status":          string(snap.State),
		"turn":            snap.Turn,
		"current_speaker": snap.CurrentSpeaker,
		"total_remaining": snap.Remaining.Seconds(),
		"turn_seconds":    snap.PerSpeaker.Seconds(),
	}
}

// OpeningText is the official debate opening announcement.
func (s *Supervisor) OpeningText(duration time.Duration, firstSpeaker string) string {
	perSpeaker := duration / time.Duration(len(s.speakers))
	return fmt.Sprintf(`⚖️ **DEBATE OFICIAL INICIADO**

🎯 **Configuração Aprovada:**
• Duração total: %.0f minutos
• Tempo por time: %.1f minutos cada

📊 **Critérios de Avaliação Científica:**
1. **Força dos Argumentos** (%.0f%%) - Lógica e coerência
2. **Evidências e Dados** (%.0f%%) - Estatísticas verificáveis
3. **Persuasão e Retórica** (%.0f%%) - Técnicas persuasivas
4. **Consistência Lógica** (%.0f%%) - Ausência de contradições

🎤 **%s** inicia o debate. Apresente seus argumentos!`,
		duration.Minutes(),
		perSpeaker.Minutes(),
		s.weights.Structural*100,
		s.weights.Evidence*100,
		s.weights.Rhetoric*100,
		s.weights.Consistency*100,
		strings.ToUpper(firstSpeaker),
	)
}

// RulingText is the final verdict announcement derived from a scoring result.
func (s *Supervisor) RulingText(result scoring.Result) string {
	var b strings.Builder
	b.WriteString("⚖️ **ANÁLISE FINAL ESPECIALIZADA**\n\n📊 **PONTUAÇÃO POR CRITÉRIO:**\n")
	for _, rec := range result.Records {
		fmt.Fprintf(&b, "%d. %s: total %.2f (argumentos %.1f, evidências %.1f, retórica %.1f, consistência %.1f)\n",
			rec.Rank, rec.Speaker, rec.Total, rec.Structural, rec.Evidence, rec.Rhetoric, rec.Consistency)
	}
	b.WriteString("\n🎯 **VEREDITO TÉCNICO:** ")
	if result.Tie {
		b.WriteString("EMPATE técnico: os dois lados somaram a mesma pontuação.")
	} else {
		fmt.Fprintf(&b, "%s venceu o debate pelos critérios científicos de avaliação.", strings.ToUpper(result.Winner))
	}
	return b.String()
}
