package normalize

import (
	"regexp"
	"testing"
)

func TestFromRequestURL_Basic(t *testing.T) {
	c := FromRequestURL("https://rslv.org/ark:12345/foo", "ark:12345/foo", nil)
	if c.Identifier != "ark:12345/foo" {
		t.Fatalf("Identifier: got %q", c.Identifier)
	}
	if c.IsIntrospection {
		t.Fatal("expected no introspection trigger")
	}
	if c.HasServiceURL {
		t.Fatal("expected no service URL match")
	}
}

func TestFromRequestURL_TrailingQuestionMark(t *testing.T) {
	c := FromRequestURL("https://rslv.org/ark:12345/foo?", "ark:12345/foo?", nil)
	if !c.IsIntrospection {
		t.Fatal("expected introspection trigger for trailing '?'")
	}
	if c.Identifier != "ark:12345/foo" {
		t.Fatalf("Identifier: got %q, want stripped of '?'", c.Identifier)
	}
}

func TestFromRequestURL_TrailingDoubleQuestionMark(t *testing.T) {
	c := FromRequestURL("https://rslv.org/ark:12345/foo??", "ark:12345/foo??", nil)
	if !c.IsIntrospection {
		t.Fatal("expected introspection trigger")
	}
	if c.Identifier != "ark:12345/foo" {
		t.Fatalf("Identifier: got %q", c.Identifier)
	}
}

func TestFromRequestURL_TrailingInfo(t *testing.T) {
	c := FromRequestURL("https://rslv.org/ark:12345/foo?info", "ark:12345/foo?info", nil)
	if !c.IsIntrospection {
		t.Fatal("expected introspection trigger")
	}
	if c.Identifier != "ark:12345/foo" {
		t.Fatalf("Identifier: got %q", c.Identifier)
	}
}

func TestFromRequestURL_LeadingSeparatorsStripped(t *testing.T) {
	c := FromRequestURL("https://rslv.org/   /:ark:12345", " /:ark:12345", nil)
	if c.Identifier != "ark:12345" {
		t.Fatalf("Identifier: got %q", c.Identifier)
	}
}

func TestFromRequestURL_ServicePatternStripped(t *testing.T) {
	pattern := regexp.MustCompile(`(?i)^https://rslv\.org/`)
	c := FromRequestURL("https://rslv.org/https://rslv.org/ark:12345", "https://rslv.org/ark:12345", pattern)
	if !c.HasServiceURL {
		t.Fatal("expected service URL to be detected")
	}
	if c.Identifier != "ark:12345" {
		t.Fatalf("Identifier: got %q", c.Identifier)
	}
}

func TestFromRequestURL_PercentDecoded(t *testing.T) {
	c := FromRequestURL("https://rslv.org/ark%3A12345%2Ffoo", "ark%3A12345%2Ffoo", nil)
	if c.Identifier != "ark:12345/foo" {
		t.Fatalf("Identifier: got %q", c.Identifier)
	}
}
