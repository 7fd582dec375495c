package cmd

import (
	"errors"
	"testing"

	"github.com/manifoldco/promptui"

	"github.com/spigell/resume-matcher/internal/session"
)

func TestValidateScore(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{input: "75"},
		{input: " 0 "},
		{input: "100"},
		{input: "101", wantErr: true},
		{input: "-1", wantErr: true},
		{input: "seventy", wantErr: true},
	}

	for _, tt := range tests {
		if err := validateScore(tt.input); (err != nil) != tt.wantErr {
			t.Fatalf("validateScore(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestFormLabel(t *testing.T) {
	got := formLabel("Job details", session.Form{Level: "general"})
	if got != "Job details [no title, general, no resume]" {
		t.Fatalf("unexpected label %q", got)
	}

	got = formLabel("Results", session.Form{JobTitle: "SRE", Level: "junior", ResumeText: "Go, Linux"})
	if got != "Results [SRE, junior, resume 9 chars]" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestIsPromptAbort(t *testing.T) {
	if !isPromptAbort(promptui.ErrInterrupt) || !isPromptAbort(promptui.ErrAbort) {
		t.Fatalf("expected prompt aborts to be detected")
	}
	if isPromptAbort(errors.New("boom")) {
		t.Fatalf("unexpected abort")
	}
}
