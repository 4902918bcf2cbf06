package interview

import (
	"errors"
	"testing"
)

func TestParseDegree(t *testing.T) {
	tests := map[string]Degree{
		"":               DegreeNone,
		"No":             DegreeNone,
		"master":         DegreeMaster,
		"Yes - Master's": DegreeMaster,
		" yes - phd ":    DegreePhD,
		"BACHELOR":       DegreeBachelor,
	}

	for in, want := range tests {
		got, err := ParseDegree(in)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: expected %s, got %s", in, want, got)
		}
	}

	if _, err := ParseDegree("diploma"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestRoleProfileValidate(t *testing.T) {
	valid := testRole(5)
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := map[string]func(r *RoleProfile){
		"missing company":    func(r *RoleProfile) { r.CompanyName = " " },
		"missing title":      func(r *RoleProfile) { r.Title = "" },
		"negative years":     func(r *RoleProfile) { r.MinYearsExp = -1 },
		"too few questions":  func(r *RoleProfile) { r.NumQuestions = 0 },
		"too many questions": func(r *RoleProfile) { r.NumQuestions = MaxQuestions + 1 },
		"unknown degree":     func(r *RoleProfile) { r.Degree = "diploma" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			role := testRole(5)
			mutate(&role)
			if err := role.Validate(); !errors.Is(err, ErrInvalidRole) {
				t.Fatalf("expected ErrInvalidRole, got %v", err)
			}
		})
	}
}

func TestRoleProfileNormalize(t *testing.T) {
	role := RoleProfile{CompanyName: "  Acme ", Title: " SRE "}
	role.Normalize()

	if role.CompanyName != "Acme" || role.Title != "SRE" {
		t.Fatalf("expected trimmed fields, got %+v", role)
	}
	if role.Degree != DegreeNone || role.NumQuestions != DefaultQuestions {
		t.Fatalf("expected defaults, got %+v", role)
	}
	if role.DisplayName() != "Acme – SRE" {
		t.Fatalf("unexpected display name %q", role.DisplayName())
	}
}

func TestCandidateValidate(t *testing.T) {
	for _, years := range []int{-1, 51} {
		if err := (Candidate{YearsExp: years}).Validate(); !errors.Is(err, ErrInvalidAnswer) {
			t.Fatalf("%d: expected ErrInvalidAnswer, got %v", years, err)
		}
	}
	if err := (Candidate{YearsExp: 50}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
