package interview

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	_ "embed"

	"github.com/spigell/jobfit/internal/utils"
)

//go:embed prompts/plan.md
var planTemplate string

//go:embed prompts/questions.md
var questionsTemplate string

//go:embed prompts/judge.md
var judgeTemplate string

const (
	planSystemPrompt      = "Return valid JSON only."
	questionsSystemPrompt = "You return valid JSON only. You keep the same list length and ids."
	judgeSystemPrompt     = "You are a precise, structured evaluator for JobFitIndex. Always return valid JSON only."

	maxProfileFieldRunes = 2000
)

// render fills {{KEY}} placeholders in a single pass, so values that happen to
// contain placeholder syntax are left alone.
func render(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for key, value := range values {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func buildPlanPrompt(role RoleProfile, n int) (string, error) {
	profile, err := profileJSON(role)
	if err != nil {
		return "", err
	}

	return render(planTemplate, map[string]string{
		"ROLE_PROFILE_JSON": profile,
		"NUM_QUESTIONS":     strconv.Itoa(n),
	}), nil
}

func buildQuestionsPrompt(plan Plan, role RoleProfile, answers Answers) (string, error) {
	profile, err := profileJSON(role)
	if err != nil {
		return "", err
	}

	slots := make(Plan, len(plan))
	for i, slot := range plan {
		slots[i] = PlanSlot{ID: slot.ID, Type: slot.Type, Focus: slot.Focus}
	}

	planJSON, err := json.MarshalIndent(slots, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal plan: %w", err)
	}

	answersJSON, err := answersJSON(answers)
	if err != nil {
		return "", err
	}

	return render(questionsTemplate, map[string]string{
		"ROLE_PROFILE_JSON": profile,
		"PLAN_JSON":         string(planJSON),
		"ANSWERS_JSON":      answersJSON,
	}), nil
}

func buildJudgePrompt(answers Answers) (string, error) {
	answersJSON, err := answersJSON(answers)
	if err != nil {
		return "", err
	}

	buckets := make([]string, len(ScoreBuckets))
	for i, b := range ScoreBuckets {
		buckets[i] = strconv.Itoa(b)
	}

	var criteria strings.Builder
	for _, c := range Criteria() {
		fmt.Fprintf(&criteria, "%d) %s: %s\n", int(c)+1, c, c.Definition())
	}

	return render(judgeTemplate, map[string]string{
		"SCORE_SET":      strings.Join(buckets, ", "),
		"CRITERIA":       strings.TrimRight(criteria.String(), "\n"),
		"ANSWERS_JSON":   answersJSON,
		"RESPONSE_SHAPE": judgeResponseShape(),
	}), nil
}

// judgeResponseShape renders the expected JSON with criteria in rubric order,
// which encoding a map would not preserve.
func judgeResponseShape() string {
	var b strings.Builder
	b.WriteString("{\n")
	for _, section := range []struct{ name, placeholder string }{
		{"scores", "0"},
		{"reasons", `"short justification"`},
	} {
		fmt.Fprintf(&b, "  %q: {\n", section.name)
		for _, c := range Criteria() {
			sep := ","
			if c == UniquenessSignal {
				sep = ""
			}
			fmt.Fprintf(&b, "    %q: %s%s\n", c.String(), section.placeholder, sep)
		}
		b.WriteString("  },\n")
	}
	b.WriteString("  \"summary\": \"3-sentence summary\"\n}")
	return b.String()
}

// profileJSON embeds the role in a prompt. Free-text fields are sanitized so a
// role description cannot smuggle instruction-looking blocks into the prompt.
func profileJSON(role RoleProfile) (string, error) {
	clean := role
	clean.CompanyName = sanitizeInline(role.CompanyName)
	clean.Title = sanitizeInline(role.Title)
	clean.Context = sanitizeBlock(role.Context)
	clean.RequiredTech = sanitizeList(role.RequiredTech)
	clean.MustHaves = sanitizeBlock(role.MustHaves)
	clean.NiceToHave = sanitizeBlock(role.NiceToHave)
	clean.RedFlags = sanitizeBlock(role.RedFlags)

	data, err := json.MarshalIndent(clean, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal role profile: %w", err)
	}
	return string(data), nil
}

func answersJSON(answers Answers) (string, error) {
	if answers == nil {
		answers = Answers{}
	}
	data, err := json.MarshalIndent(answers, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal answers: %w", err)
	}
	return string(data), nil
}

var bracketReplacer = strings.NewReplacer("[", "(", "]", ")", "{{", "(", "}}", ")")

func sanitizeInline(s string) string {
	s = bracketReplacer.Replace(utils.SingleLine(s))
	return truncateRunes(s, maxProfileFieldRunes)
}

func sanitizeBlock(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = utils.SingleLine(line); line != "" {
			kept = append(kept, bracketReplacer.Replace(line))
		}
	}
	return truncateRunes(strings.Join(kept, "\n"), maxProfileFieldRunes)
}

func sanitizeList(s string) string {
	parts := strings.Split(s, ",")
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = sanitizeInline(part); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ", ")
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
