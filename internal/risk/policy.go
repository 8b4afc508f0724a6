// Package risk holds the scoring policy that turns a raw submission into a
// risk score and an approval requirement. Evaluate is pure and deterministic:
// the stored inputs on an assessment row are always enough to re-derive its
// outcome.
package risk

import "github.com/tbamaint/hogrisk-backend/internal/types"

const (
	// ScaleMin and ScaleMax bound both probability and consequence.
	ScaleMin = 1
	ScaleMax = 5

	// ApprovalThreshold is the score at which a leader signature becomes
	// mandatory.
	ApprovalThreshold = 10

	// HighRiskThreshold is the fixed reporting cutoff. It happens to equal
	// ApprovalThreshold but is an independent knob: reporting stays stable
	// even if the approval policy moves.
	HighRiskThreshold = 10
)

type Outcome struct {
	Score            int
	RequiresApproval bool
}

// ScaleInRange reports whether v is a legal probability/consequence value.
// Out-of-range input is a caller error, never clamped.
func ScaleInRange(v int) bool {
	return v >= ScaleMin && v <= ScaleMax
}

// Evaluate computes score = probability x consequence and flags the record
// for leader approval when the score reaches ApprovalThreshold, any checklist
// answer is No, or the safety verdict is No. Inputs must already be
// range-validated by the caller.
func Evaluate(probability, consequence int, checklist types.Checklist, safe types.Answer) Outcome {
	score := probability * consequence
	requires := score >= ApprovalThreshold || safe == types.AnswerNo
	if !requires {
		for _, a := range checklist {
			if a == types.AnswerNo {
				requires = true
				break
			}
		}
	}
	return Outcome{Score: score, RequiresApproval: requires}
}
