package advisor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/freightmesh/core"
)

// SystemPrompt is the persona shared by all model-backed advisors.
const SystemPrompt = `You are a freight rate negotiator acting for a carrier. ` +
	`You negotiate load rates with freight brokers on behalf of a driver. ` +
	`Be professional and concise. You respond in JSON only.`

// draftResponse is the JSON document the model is instructed to emit.
type draftResponse struct {
	Action  string  `json:"action"`
	Amount  float64 `json:"amount"`
	Message string  `json:"message"`
}

// BuildPrompt renders the drafting instructions for a negotiation context.
// The floor rate is never part of the prompt; the engine enforces it after
// the fact.
func BuildPrompt(dc core.DraftContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Load: %s\n", dc.LoadID)
	fmt.Fprintf(&b, "Driver's target rate: $%.2f\n", dc.TargetRate)
	fmt.Fprintf(&b, "Round: %d of %d\n\n", dc.Round, dc.MaxRounds)

	if len(dc.History) > 0 {
		b.WriteString("Negotiation so far:\n")
		for _, ev := range dc.History {
			fmt.Fprintf(&b, "- %s: $%.2f %q\n", ev.Actor, ev.Amount, ev.Message)
		}
		b.WriteString("\n")
	}

	switch dc.Kind {
	case core.DraftOpening:
		b.WriteString("Draft the opening offer to the broker. Ask confidently, at or above the target rate.\n")
	default:
		fmt.Fprintf(&b, "The broker countered at $%.2f.\n", dc.CounterOffer)
		b.WriteString("Decide whether to accept, counter, or walk away, and draft the message. ")
		b.WriteString("When countering, propose an amount between the broker's counter and our last offer.\n")
	}

	b.WriteString(`
Respond with JSON only, no surrounding text:
{
  "action": "accept" | "counter" | "reject",
  "amount": 0.0,
  "message": "message to the broker"
}
`)
	return b.String()
}

// ParseDraft extracts a Draft from raw model output. It tolerates markdown
// code fences and leading prose around the JSON document, validates the
// action enum and rejects negative amounts.
func ParseDraft(raw string) (*core.Draft, error) {
	text := strings.TrimSpace(raw)
	if i := strings.Index(text, "{"); i >= 0 {
		if j := strings.LastIndex(text, "}"); j > i {
			text = text[i : j+1]
		}
	}

	var resp draftResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("parse draft JSON: %w", err)
	}

	var hint core.ActionHint
	switch strings.ToLower(resp.Action) {
	case "accept":
		hint = core.HintAccept
	case "counter", "":
		hint = core.HintCounter
	case "reject":
		hint = core.HintReject
	default:
		return nil, fmt.Errorf("parse draft: unknown action %q", resp.Action)
	}
	if resp.Amount < 0 {
		return nil, fmt.Errorf("parse draft: negative amount %.2f", resp.Amount)
	}

	return &core.Draft{Message: resp.Message, Amount: resp.Amount, Hint: hint}, nil
}
