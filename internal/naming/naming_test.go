package naming

import (
	"strings"
	"testing"
)

func TestAssembleSubstitutesPlaceholders(t *testing.T) {
	meta := Metadata{
		ID:        "abc123",
		Title:     "Some Title",
		Creation:  "2020-01-02T03:04:05",
		Channel:   "someone",
		Community: "animals-pets",
		Tags:      []string{"cat", "dog"},
	}
	got := Assemble(meta, "%channel% - %title% (%creation%) [%tags%]", "_")
	want := "someone - Some Title (2020-01-02T03-04-05) [cat_dog]"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSanitizeKeepsUnicodeWhenAllowed(t *testing.T) {
	got := Sanitize("Котики видео", true)
	if got != "Котики видео" {
		t.Fatalf("unicode should survive NFKC policy, got %q", got)
	}
}

func TestSanitizeTransliteratesToASCII(t *testing.T) {
	got := Sanitize("Café déjà vu", false)
	if got != "Cafe deja vu" {
		t.Fatalf("expected ASCII transliteration, got %q", got)
	}
}

func TestSanitizeStripsUnsafeAndCollapses(t *testing.T) {
	got := Sanitize(`a/b\c:d*e?  f`, true)
	if strings.ContainsAny(got, `/\:*?`) {
		t.Fatalf("unsafe characters left in %q", got)
	}
	if strings.Contains(got, "  ") {
		t.Fatalf("whitespace not collapsed in %q", got)
	}
}

func TestSanitizeEmptyWithoutWordCharacters(t *testing.T) {
	for _, input := range []string{"", "///", "___", "- . -", "???"} {
		if got := Sanitize(input, false); got != "" {
			t.Fatalf("Sanitize(%q) = %q, want empty", input, got)
		}
	}
}

func TestSanitizeFixesParenthesisGaps(t *testing.T) {
	// Cyrillic content inside parentheses vanishes under the ASCII policy.
	got := Sanitize("clip (кот) final", false)
	if got != "clip () final" {
		t.Fatalf("got %q, want %q", got, "clip () final")
	}
}

func TestResolveFallsBackToIDOnEmptyResult(t *testing.T) {
	dir := t.TempDir()
	meta := Metadata{ID: "abc123"}
	// A tags-only template with no tags sanitizes to nothing.
	for i := 0; i < 3; i++ {
		got := Resolve(meta, dir, "%tags%", "_", false)
		if got != "abc123" {
			t.Fatalf("expected deterministic fallback to id, got %q", got)
		}
	}
}

func TestResolveFallsBackOnInvalidName(t *testing.T) {
	dir := t.TempDir()
	meta := Metadata{ID: "abc123", Title: strings.Repeat("long", 200)}
	got := Resolve(meta, dir, "%title%", "_", true)
	if got != "abc123" {
		t.Fatalf("over-long name should fall back to id, got %q", got)
	}
}

func TestResolveUsesTemplate(t *testing.T) {
	dir := t.TempDir()
	meta := Metadata{ID: "abc123", Title: "Nice Clip", Channel: "chan"}
	got := Resolve(meta, dir, "%channel% %title%", "_", true)
	if got != "chan Nice Clip" {
		t.Fatalf("got %q", got)
	}
}
