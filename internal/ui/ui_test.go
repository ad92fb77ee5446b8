package ui

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestPrompt(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  https://youtu.be/abc  \n", "https://youtu.be/abc"},
		{"no trailing newline", "https://youtu.be/abc", "https://youtu.be/abc"},
		{"blank line", "   \n", ""},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := Prompt(bufio.NewReader(strings.NewReader(tt.input)), &out, "URL: ")
			if err != nil {
				t.Fatalf("Prompt() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if out.String() != "URL: " {
				t.Errorf("prompt output = %q", out.String())
			}
		})
	}
}

func TestPromptLeavesRestBuffered(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("first\np\nq\n"))
	var out bytes.Buffer

	if got, _ := Prompt(r, &out, ""); got != "first" {
		t.Fatalf("got %q, want first", got)
	}
	rest, _ := r.ReadString('\n')
	if rest != "p\n" {
		t.Errorf("next line = %q, want p", rest)
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		n       int
		want    int
		wantErr bool
	}{
		{"valid", "2\tSome Title\n", 3, 2, false},
		{"first", "0\tA", 1, 0, false},
		{"out of range", "5\tX", 3, -1, true},
		{"not a number", "abc\tX", 3, -1, true},
		{"empty", "", 3, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSelection(tt.out, tt.n)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}

	if _, err := parseSelection("  ", 1); !errors.Is(err, ErrCancelled) {
		t.Errorf("blank output should be ErrCancelled, got %v", err)
	}
}

func TestSelectEmpty(t *testing.T) {
	if _, err := Select("Pick", nil); err == nil {
		t.Error("Select with no items should fail")
	}
}
