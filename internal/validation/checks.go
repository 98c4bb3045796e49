package validation

import (
	"fmt"
	"strings"
	"time"

	"goinsight/domain/insight"
)

// ============================================================================
// CONSISTENCY
// ============================================================================

// checkConsistency scores internal coherence. Penalties compose
// multiplicatively so stacked problems degrade the score super-linearly.
func checkConsistency(ins *insight.Insight, accepted []insight.Insight) (float64, []string) {
	score := 1.0
	var issues []string

	if internallyContradictory(ins) {
		score *= 0.5
		issues = append(issues, "description contradicts itself about direction")
	}
	if conflictsWithAccepted(ins, accepted) {
		score *= 0.7
		issues = append(issues, "claim conflicts with an already accepted insight")
	}
	if statisticallyImplausible(ins) {
		score *= 0.8
		issues = append(issues, "confidence is implausible given the cited evidence")
	}
	return score, issues
}

// internallyContradictory flags text asserting both directions at once
func internallyContradictory(ins *insight.Insight) bool {
	lower := strings.ToLower(ins.Title + " " + ins.Description)
	up := strings.Contains(lower, "rising") || strings.Contains(lower, "increase") || strings.Contains(lower, "upward")
	down := strings.Contains(lower, "falling") || strings.Contains(lower, "decrease") || strings.Contains(lower, "downward")
	return up && down
}

// conflictsWithAccepted compares directional claims against the pass's
// accepted set.
func conflictsWithAccepted(ins *insight.Insight, accepted []insight.Insight) bool {
	subject := primarySubject(ins)
	if subject == "" {
		return false
	}
	dir := direction(ins.Title + " " + ins.Description)
	if dir == 0 {
		return false
	}
	for i := range accepted {
		prev := &accepted[i]
		if primarySubject(prev) != subject {
			continue
		}
		prevDir := direction(prev.Title + " " + prev.Description)
		if prevDir != 0 && prevDir != dir {
			return true
		}
	}
	return false
}

// statisticallyImplausible catches confidence/evidence mismatches: very
// high confidence resting on almost no evidence.
func statisticallyImplausible(ins *insight.Insight) bool {
	return ins.Confidence > 0.9 && len(ins.Evidence) < 2
}

// ============================================================================
// EVIDENCE
// ============================================================================

// checkEvidence scores volume, independence, and recency of the cited
// evidence. No evidence at all fails outright.
func checkEvidence(ins *insight.Insight, now time.Time) (float64, []string) {
	var issues []string
	if len(ins.Evidence) == 0 {
		return 0, []string{"no supporting evidence cited"}
	}

	volume := float64(len(ins.Evidence)) / 3.0
	if volume > 1 {
		volume = 1
	}
	if len(ins.Evidence) == 1 {
		issues = append(issues, "single piece of evidence")
	}

	distinct := make(map[string]bool)
	for _, e := range ins.Evidence {
		distinct[e] = true
	}
	independence := float64(len(distinct)) / float64(len(ins.Evidence))
	if independence < 1 {
		issues = append(issues, "duplicated evidence entries")
	}

	recency := 1.0
	age := now.Sub(ins.CreatedAt.Time())
	if age > 24*time.Hour {
		recency = 0.7
		issues = append(issues, "evidence derives from a stale extraction")
	}

	return 0.5*volume + 0.3*independence + 0.2*recency, issues
}

// ============================================================================
// ACTIONABILITY
// ============================================================================

var barrierMarkers = []string{"before", "requires", "verify", "audit", "check whether", "decide whether"}

// checkActionability scores how concrete the recommendations are and
// surfaces the barriers hidden inside them.
func checkActionability(ins *insight.Insight) (float64, []string) {
	if len(ins.Recommendations) == 0 {
		if ins.InsightType == insight.InsightExplanatory || ins.InsightType == insight.InsightSynthetic {
			// Explanations are allowed to just explain.
			return 0.5, nil
		}
		return 0.2, []string{"no recommendations attached"}
	}

	var barriers []string
	concrete := 0
	for _, rec := range ins.Recommendations {
		lower := strings.ToLower(rec)
		if len(strings.Fields(rec)) >= 5 {
			concrete++
		}
		for _, marker := range barrierMarkers {
			if strings.Contains(lower, marker) {
				barriers = append(barriers, fmt.Sprintf("recommendation gated on: %q", marker))
				break
			}
		}
	}

	score := float64(concrete) / float64(len(ins.Recommendations))
	// Barriers reduce but never zero the score; a gated action is still
	// an action.
	score *= 1 - 0.1*float64(min(len(barriers), 3))
	return score, barriers
}

// ============================================================================
// BIAS
// ============================================================================

// checkBias looks for known bias signatures in the evidence chain
func checkBias(ins *insight.Insight) (float64, []string) {
	score := 1.0
	var biases []string

	// Selection bias: every evidence entry mentions the same variable,
	// suggesting the chain never looked elsewhere.
	if len(ins.Evidence) >= 3 {
		subject := primarySubject(ins)
		if subject != "" {
			all := true
			for _, e := range ins.Evidence {
				if !strings.Contains(e, subject) {
					all = false
					break
				}
			}
			if all {
				score *= 0.85
				biases = append(biases, "selection bias: evidence drawn from a single variable")
			}
		}
	}

	// Confirmation bias: uniformly directional language with no
	// hedging anywhere in the chain.
	if len(ins.Evidence) >= 2 && direction(strings.Join(ins.Evidence, " ")) != 0 {
		hedged := false
		for _, e := range ins.Evidence {
			lower := strings.ToLower(e)
			if strings.Contains(lower, "may") || strings.Contains(lower, "could") || strings.Contains(lower, "suggest") {
				hedged = true
				break
			}
		}
		if !hedged {
			score *= 0.9
			biases = append(biases, "confirmation bias: uniformly directional evidence")
		}
	}

	return score, biases
}

// ============================================================================
// SHARED
// ============================================================================

// primarySubject returns the first variable-shaped token in the title
func primarySubject(ins *insight.Insight) string {
	for _, tok := range strings.Fields(ins.Title) {
		tok = strings.Trim(tok, ".,:;!?")
		if looksLikeVariable(tok) {
			return tok
		}
	}
	return ""
}

func looksLikeVariable(tok string) bool {
	if len(tok) < 2 {
		return false
	}
	hasSep := strings.ContainsAny(tok, "_.")
	for _, r := range tok {
		if !(r == '_' || r == '.' || r == '-' ||
			(r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return hasSep
}

func direction(text string) int {
	lower := strings.ToLower(text)
	up := strings.Contains(lower, "rising") || strings.Contains(lower, "increase") || strings.Contains(lower, "growth") || strings.Contains(lower, "upward")
	down := strings.Contains(lower, "falling") || strings.Contains(lower, "decrease") || strings.Contains(lower, "decline") || strings.Contains(lower, "downward")
	switch {
	case up && !down:
		return 1
	case down && !up:
		return -1
	default:
		return 0
	}
}
