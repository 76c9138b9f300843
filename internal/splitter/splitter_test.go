package splitter

import (
	"strings"
	"testing"
)

func TestSplit_Empty(t *testing.T) {
	p := Split("")
	if p.PID != "" || p.Scheme != "" || p.HasContent || p.HasPrefix || p.HasValue {
		t.Fatalf("unexpected result for empty input: %+v", p)
	}
}

func TestSplit_NoColon(t *testing.T) {
	p := Split("  justastring  ")
	if p.PID != "justastring" {
		t.Fatalf("pid: got %q", p.PID)
	}
	if p.Scheme != "" || p.HasContent {
		t.Fatalf("expected no scheme/content, got %+v", p)
	}
}

func TestSplit_SchemeOnly(t *testing.T) {
	p := Split("foo:/")
	if p.Scheme != "foo" {
		t.Fatalf("scheme: got %q", p.Scheme)
	}
	if !p.HasContent || p.Content != "" {
		t.Fatalf("content: got %+v", p)
	}
	if !p.HasPrefix || p.Prefix != "" {
		t.Fatalf("prefix: got %+v", p)
	}
	if p.HasValue {
		t.Fatalf("expected no value, got %+v", p)
	}
}

func TestSplit_DoubleSlashQuery(t *testing.T) {
	p := Split("ark:12345//foo?baz")
	if p.Scheme != "ark" {
		t.Fatalf("scheme: got %q", p.Scheme)
	}
	if p.Content != "12345//foo?baz" {
		t.Fatalf("content: got %q", p.Content)
	}
	if p.Prefix != "12345" {
		t.Fatalf("prefix: got %q", p.Prefix)
	}
	if p.Value != "foo?baz" {
		t.Fatalf("value: got %q", p.Value)
	}
}

func TestSplit_SchemeLowercased(t *testing.T) {
	p := Split("ARK:99999/fk4abc")
	if p.Scheme != "ark" {
		t.Fatalf("scheme: got %q", p.Scheme)
	}
	if p.Prefix != "99999" || p.Value != "fk4abc" {
		t.Fatalf("unexpected prefix/value: %+v", p)
	}
}

func TestSplit_PrefixOnly(t *testing.T) {
	p := Split("purl:dc")
	if p.Prefix != "dc" {
		t.Fatalf("prefix: got %q", p.Prefix)
	}
	if p.HasValue {
		t.Fatalf("expected no value, got %+v", p)
	}
}

func TestSplit_LeadingSeparatorsStripped(t *testing.T) {
	p := Split("ark:/12345/foo")
	if p.Content != "12345/foo" {
		t.Fatalf("content: got %q", p.Content)
	}
	if p.Prefix != "12345" || p.Value != "foo" {
		t.Fatalf("unexpected prefix/value: %+v", p)
	}
}

// TestSplit_Invariants checks properties that must hold across any input.
func TestSplit_Invariants(t *testing.T) {
	cases := []string{
		"", "foo", "foo:", "foo:bar", "foo:bar/baz", "ARK:/12345/foo?q=1",
		"  spaced : value  ", "purl:dc/terms/creator",
	}
	for _, s := range cases {
		p := Split(s)
		if p.PID != strings.TrimSpace(s) {
			t.Errorf("Split(%q).PID = %q, want %q", s, p.PID, strings.TrimSpace(s))
		}
		if strings.Contains(p.Scheme, ":") {
			t.Errorf("Split(%q).Scheme contains ':': %q", s, p.Scheme)
		}
		if p.Scheme != strings.ToLower(p.Scheme) {
			t.Errorf("Split(%q).Scheme not lowercase: %q", s, p.Scheme)
		}
		if strings.Contains(p.Prefix, "/") {
			t.Errorf("Split(%q).Prefix contains '/': %q", s, p.Prefix)
		}
		if p.HasValue && !strings.Contains(p.Content, "/") {
			t.Errorf("Split(%q) has value but content has no '/': %+v", s, p)
		}
	}
}
