package interview

import (
	"math"
	"strings"
)

// Criterion is one of the five fixed scoring dimensions.
type Criterion int

const (
	EvidenceDensity Criterion = iota
	DecisionQuality
	FailureIntelligence
	ContextTranslation
	UniquenessSignal

	criteriaCount
)

const (
	MaxCriterionScore = 20
	MaxTotalScore     = MaxCriterionScore * int(criteriaCount)

	fallbackReason  = "Automatic scoring failed, defaulting to 0."
	fallbackSummary = "Automatic scoring failed. No summary available."
	missingReason   = "No justification provided."
)

var criterionNames = [criteriaCount]string{
	"Evidence density",
	"Decision quality",
	"Failure intelligence",
	"Context translation",
	"Uniqueness signal",
}

var criterionDefinitions = [criteriaCount]string{
	"How concrete, specific, and supported by proof the answers are.",
	"How well trade-offs, options, and reasoning are explained.",
	"How deeply they reflect on failures and improve their process.",
	"How well they adapt explanations for non-technical people.",
	"How clearly their unique style and differentiators emerge.",
}

// ScoreBuckets is the only set of values a criterion score can take.
var ScoreBuckets = []int{0, 5, 10, 15, 20}

// Criteria returns all criteria in rubric order.
func Criteria() []Criterion {
	out := make([]Criterion, 0, criteriaCount)
	for c := Criterion(0); c < criteriaCount; c++ {
		out = append(out, c)
	}
	return out
}

func (c Criterion) String() string {
	if c < 0 || c >= criteriaCount {
		return "unknown"
	}
	return criterionNames[c]
}

// Definition is the rubric text given to the judge.
func (c Criterion) Definition() string {
	if c < 0 || c >= criteriaCount {
		return ""
	}
	return criterionDefinitions[c]
}

// ParseCriterion matches a criterion name case-insensitively.
func ParseCriterion(name string) (Criterion, bool) {
	name = strings.TrimSpace(name)
	for c := Criterion(0); c < criteriaCount; c++ {
		if strings.EqualFold(name, criterionNames[c]) {
			return c, true
		}
	}
	return 0, false
}

// Judgement holds one score and one reason per criterion plus a summary.
type Judgement struct {
	Scores  [criteriaCount]int
	Reasons [criteriaCount]string
	Summary string
}

// FallbackJudgement is used whenever the judge output cannot be parsed.
func FallbackJudgement() Judgement {
	var j Judgement
	for c := range j.Reasons {
		j.Reasons[c] = fallbackReason
	}
	j.Summary = fallbackSummary
	return j
}

func (j Judgement) Score(c Criterion) int {
	if c < 0 || c >= criteriaCount {
		return 0
	}
	return j.Scores[c]
}

func (j Judgement) Reason(c Criterion) string {
	if c < 0 || c >= criteriaCount {
		return ""
	}
	return j.Reasons[c]
}

// Total sums every criterion score.
func (j Judgement) Total() int {
	total := 0
	for _, s := range j.Scores {
		total += s
	}
	return total
}

// ScoreMap keys the scores by criterion name.
func (j Judgement) ScoreMap() map[string]int {
	out := make(map[string]int, criteriaCount)
	for c := Criterion(0); c < criteriaCount; c++ {
		out[c.String()] = j.Scores[c]
	}
	return out
}

// ReasonMap keys the reasons by criterion name.
func (j Judgement) ReasonMap() map[string]string {
	out := make(map[string]string, criteriaCount)
	for c := Criterion(0); c < criteriaCount; c++ {
		out[c.String()] = j.Reasons[c]
	}
	return out
}

// JudgementFromMaps rebuilds a Judgement from name-keyed maps, applying the
// same defaults and bucket snapping as the parser.
func JudgementFromMaps(scores map[string]int, reasons map[string]string, summary string) Judgement {
	var j Judgement
	var seenReason [criteriaCount]bool

	for name, score := range scores {
		if c, ok := ParseCriterion(name); ok {
			j.Scores[c] = SnapScore(float64(score))
		}
	}
	for name, reason := range reasons {
		if c, ok := ParseCriterion(name); ok {
			if reason = strings.TrimSpace(reason); reason != "" {
				j.Reasons[c] = reason
				seenReason[c] = true
			}
		}
	}
	for c := range j.Reasons {
		if !seenReason[c] {
			j.Reasons[c] = missingReason
		}
	}
	j.Summary = strings.TrimSpace(summary)
	return j
}

// SnapScore clamps v to [0,20] and rounds it to the nearest bucket.
// Ties round up.
func SnapScore(v float64) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= MaxCriterionScore {
		return MaxCriterionScore
	}
	const step = 5
	return int(v/step+0.5) * step
}
