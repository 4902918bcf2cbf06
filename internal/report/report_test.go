package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spigell/jobfit/internal/interview"
)

func sampleEvaluation() *interview.Evaluation {
	judgement := interview.JudgementFromMaps(
		map[string]int{"Evidence density": 15, "Decision quality": 10, "Uniqueness signal": 20},
		map[string]string{"Evidence density": "Numbers everywhere."},
		"Calm operator who measures first.",
	)

	return &interview.Evaluation{
		ID:        4,
		RoleID:    2,
		Candidate: interview.Candidate{Name: "Ada Lovelace", Email: "ada@example.com"},
		Judgement: judgement,
		CreatedAt: time.Date(2025, 4, 2, 15, 4, 0, 0, time.UTC),
	}
}

func TestMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown(&buf, sampleEvaluation(), Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# JobFitIndex Anti-Portfolio – Score Report",
		"- Name: Ada Lovelace",
		"- Email: ada@example.com",
		"- Phone: -",
		"Calm operator who measures first.",
		"Total score: 45 / 100",
		"- Evidence density: 15 / 20\n",
		"- Failure intelligence: 0 / 20\n",
		"- Uniqueness signal: 20 / 20\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected report to contain %q, got:\n%s", want, out)
		}
	}

	if strings.Contains(out, "## Reasons") {
		t.Fatalf("reasons must be omitted by default")
	}
}

func TestMarkdownWithReasons(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown(&buf, sampleEvaluation(), Options{Reasons: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "- **Evidence density**: Numbers everywhere.") {
		t.Fatalf("expected reason line, got:\n%s", out)
	}
	if !strings.Contains(out, "- **Decision quality**: No justification provided.") {
		t.Fatalf("expected default reason, got:\n%s", out)
	}
}

func TestMarkdownNilEvaluation(t *testing.T) {
	if err := Markdown(&bytes.Buffer{}, nil, Options{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "Ada Lovelace", want: "jobfitindex_anti_portfolio_Ada_Lovelace.md"},
		{name: "  ../../etc ", want: "jobfitindex_anti_portfolio_.._.._etc.md"},
		{name: "", want: "jobfitindex_anti_portfolio_candidate.md"},
	}

	for _, tt := range tests {
		got := Filename(&interview.Evaluation{Candidate: interview.Candidate{Name: tt.name}})
		if got != tt.want {
			t.Fatalf("%q: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestLabelAndTable(t *testing.T) {
	items := []interview.EvaluationSummary{
		{ID: 2, RoleID: 1, CandidateName: "Ada", CandidateEmail: "ada@example.com", Total: 70, CreatedAt: time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)},
		{ID: 1, RoleID: 1, Total: 0, CreatedAt: time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)},
	}

	if got := Label(items[1]); got != "Unknown – 2025-04-01" {
		t.Fatalf("unexpected label %q", got)
	}

	var buf bytes.Buffer
	if err := Table(&buf, items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "Ada") || !strings.Contains(lines[1], "70/100") {
		t.Fatalf("unexpected first row %q", lines[1])
	}
	if !strings.Contains(lines[2], "Unknown") || !strings.Contains(lines[2], "-") {
		t.Fatalf("unexpected second row %q", lines[2])
	}
}
