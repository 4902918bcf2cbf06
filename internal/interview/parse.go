package interview

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spigell/jobfit/internal/utils"
)

const rawPreviewLength = 200

// ParsePlan extracts plan slots from model output. Code fences are stripped;
// if the remainder is not a JSON array, the text between the first '[' and the
// last ']' is tried instead.
func ParsePlan(raw string) (Plan, error) {
	items, err := decodeArray(stripFence(raw))
	if err != nil {
		start := strings.Index(raw, "[")
		end := strings.LastIndex(raw, "]")
		if start == -1 || end <= start {
			return nil, fmt.Errorf("%w: no JSON array in %q", ErrMalformedPlan, utils.TruncateForLog(raw, rawPreviewLength))
		}
		if items, err = decodeArray(raw[start : end+1]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPlan, err)
		}
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty array", ErrMalformedPlan)
	}

	plan, err := decodeSlots(items)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPlan, err)
	}

	return plan, nil
}

// ParseQuestionBatch decodes the compiler's response. Only a direct parse
// (after fence stripping) is attempted.
func ParseQuestionBatch(raw string) (Plan, error) {
	items, err := decodeArray(stripFence(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedQuestionBatch, err)
	}

	plan, err := decodeSlots(items)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedQuestionBatch, err)
	}

	return plan, nil
}

// ParseJudgement never fails: unparsable output yields FallbackJudgement.
func ParseJudgement(raw string) Judgement {
	j, err := parseJudgement(raw)
	if err != nil {
		return FallbackJudgement()
	}
	return j
}

type judgementPayload struct {
	Scores  map[string]any `json:"scores"`
	Reasons map[string]any `json:"reasons"`
	Summary any            `json:"summary"`
}

func parseJudgement(raw string) (Judgement, error) {
	var payload judgementPayload
	if err := json.Unmarshal([]byte(stripFence(raw)), &payload); err != nil {
		return Judgement{}, fmt.Errorf("parse judge response: %w", err)
	}

	var j Judgement
	for name, value := range payload.Scores {
		c, ok := ParseCriterion(name)
		if !ok {
			continue
		}
		j.Scores[c] = SnapScore(coerceFloat(value))
	}

	for c := range j.Reasons {
		j.Reasons[c] = missingReason
	}
	for name, value := range payload.Reasons {
		c, ok := ParseCriterion(name)
		if !ok {
			continue
		}
		if reason := coerceString(value); reason != "" {
			j.Reasons[c] = reason
		}
	}

	j.Summary = coerceString(payload.Summary)
	return j, nil
}

func decodeArray(s string) ([]any, error) {
	var items []any
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func decodeSlots(items []any) (Plan, error) {
	plan := make(Plan, 0, len(items))
	for i, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("item %d is %T, not an object", i, item)
		}

		var slot PlanSlot
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &slot,
		})
		if err != nil {
			return nil, err
		}
		if err := decoder.Decode(fields); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}

		slot.Type = SlotType(strings.ToLower(strings.TrimSpace(string(slot.Type))))
		slot.Focus = strings.TrimSpace(slot.Focus)
		slot.Question = strings.TrimSpace(slot.Question)
		plan = append(plan, slot)
	}
	return plan, nil
}

// stripFence removes a surrounding ``` fence and an optional language tag.
func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl != -1 && isLanguageTag(s[:nl]) {
		s = s[nl+1:]
	} else if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		s = s[4:]
	}

	s = strings.TrimSpace(s)
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func isLanguageTag(s string) bool {
	s = strings.TrimSpace(s)
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return false
		}
	}
	return true
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
