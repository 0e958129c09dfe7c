package errors

import (
	"strings"
	"testing"
)

func TestValidateOwner(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "acme", false},
		{"with hyphen", "acme-corp", false},
		{"digits", "42", false},
		{"max length", strings.Repeat("a", 39), false},

		{"empty", "", true},
		{"leading hyphen", "-acme", true},
		{"too long", strings.Repeat("a", 40), true},
		{"underscore", "acme_corp", true},
		{"slash", "acme/widget", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOwner(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOwner(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateOwner(%q) code = %s, want %s", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateRepo(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "widget", false},
		{"dotted", "widget.js", false},
		{"underscore", "my_repo", false},
		{"dot prefix", ".github", false},

		{"empty", "", true},
		{"dot", ".", true},
		{"dot dot", "..", true},
		{"space", "my repo", true},
		{"too long", strings.Repeat("r", 101), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRepo(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRepo(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	if err := ValidateUsername("octocat"); err != nil {
		t.Errorf("ValidateUsername(octocat) = %v", err)
	}
	for _, bad := range []string{"", "-x", "a b", "x/y"} {
		if err := ValidateUsername(bad); err == nil {
			t.Errorf("ValidateUsername(%q) = nil, want error", bad)
		}
	}
}

func TestParseRepoRef(t *testing.T) {
	tests := []struct {
		input     string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{"acme/widget", "acme", "widget", false},
		{" acme/widget.git ", "acme", "widget", false},
		{"acme/widget.js", "acme", "widget.js", false},
		{"acme", "", "", true},
		{"/widget", "", "", true},
		{"acme/", "", "", true},
		{"acme/widget/extra", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			owner, repo, err := ParseRepoRef(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRepoRef(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if owner != tt.wantOwner || repo != tt.wantRepo {
				t.Errorf("ParseRepoRef(%q) = %q, %q, want %q, %q", tt.input, owner, repo, tt.wantOwner, tt.wantRepo)
			}
		})
	}
}
