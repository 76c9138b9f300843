package resolver

import (
	"path/filepath"
	"testing"

	"github.com/CDLUC3/rslv-go/internal/catalog"
	"github.com/CDLUC3/rslv-go/internal/model"
)

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	db, err := catalog.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err := catalog.Migrate(db); err != nil {
		t.Fatal(err)
	}
	store := catalog.NewStore(db)
	cat, err := catalog.NewCatalog(store)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(cat.Close)
	return cat
}

func strPtr(s string) *string { return &s }

func seedExampleCatalog(t *testing.T, c *catalog.Catalog) {
	t.Helper()
	defs := []model.PidDefinition{
		{Scheme: "ark", Prefix: "", Value: "", Target: strPtr("https://example.com/${pid}")},
		{Scheme: "ark", Prefix: "99999", Value: "", Target: strPtr("https://example.99999.com/info/${content}")},
		{Scheme: "ark", Prefix: "99999", Value: "fk4", Target: strPtr("https://fk4.example.com/${suffix}")},
		{Scheme: "ark", Prefix: "99999", Value: "fk", HTTPCode: 301, Target: strPtr("http://fk.example.com/${pid}")},
		{Scheme: "ark", Prefix: "example", Value: "", SynonymFor: strPtr("ark:99999")},
		{Scheme: "bark", Prefix: "", Value: "", SynonymFor: strPtr("ark:")},
		{Scheme: "purl", Prefix: "", Value: "", Target: strPtr("http://purl.org/${content}")},
	}
	for i, d := range defs {
		if d.HTTPCode == 0 {
			d.HTTPCode = 302
		}
		if err := c.Add(d, int64(1000+i)); err != nil {
			t.Fatalf("seed %+v: %v", d, err)
		}
	}
	if err := c.RefreshMetadata(9999); err != nil {
		t.Fatal(err)
	}
}

func TestResolve_SynonymChainRedirect(t *testing.T) {
	c := newTestCatalog(t)
	seedExampleCatalog(t, c)

	res, err := Resolve(c, "bark:99999/hhdd", "GET", false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Definition == nil {
		t.Fatal("expected a match via synonym chain")
	}
	want := "https://example.99999.com/info/99999/hhdd"
	if res.Target != want {
		t.Fatalf("Target: got %q, want %q", res.Target, want)
	}
	if res.StatusCode != 302 {
		t.Fatalf("StatusCode: got %d", res.StatusCode)
	}
}

func TestResolve_SuffixComputation(t *testing.T) {
	c := newTestCatalog(t)
	seedExampleCatalog(t, c)

	res, err := Resolve(c, "ark:99999/fk4xyz", "GET", false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Parts.Suffix != "xyz" {
		t.Fatalf("Suffix: got %q, want %q", res.Parts.Suffix, "xyz")
	}
	if res.Target != "https://fk4.example.com/xyz" {
		t.Fatalf("Target: got %q", res.Target)
	}
}

func TestResolve_MethodAdjustsRedirectStatus(t *testing.T) {
	c := newTestCatalog(t)
	seedExampleCatalog(t, c)

	res, err := Resolve(c, "ark:99999/fk4xyz", "POST", false)
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != 307 {
		t.Fatalf("StatusCode: got %d, want 307", res.StatusCode)
	}

	res, err = Resolve(c, "ark:99999/fk", "PUT", false)
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != 308 {
		t.Fatalf("StatusCode: got %d, want 308", res.StatusCode)
	}
}

func TestResolve_AutoIntrospectionOnBareValue(t *testing.T) {
	c := newTestCatalog(t)
	seedExampleCatalog(t, c)

	res, err := Resolve(c, "ark:99999/fk4", "GET", true)
	if err != nil {
		t.Fatal(err)
	}
	if !res.UseInfo {
		t.Fatal("expected auto-introspection shortcut for the definition's own value")
	}
}

func TestResolve_AutoIntrospectionOnEmptyValue(t *testing.T) {
	c := newTestCatalog(t)
	seedExampleCatalog(t, c)

	res, err := Resolve(c, "ark:99999", "GET", true)
	if err != nil {
		t.Fatal(err)
	}
	if !res.UseInfo {
		t.Fatal("expected auto-introspection shortcut for empty value")
	}
}

func TestResolve_NotFound(t *testing.T) {
	c := newTestCatalog(t)
	seedExampleCatalog(t, c)

	res, err := Resolve(c, "nosuchscheme:12345", "GET", false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Definition != nil {
		t.Fatalf("expected no match, got %+v", res.Definition)
	}
}

func TestInfo_ResolvesWithoutFollowingSynonym(t *testing.T) {
	c := newTestCatalog(t)
	seedExampleCatalog(t, c)

	res, err := Info(c, "bark:99999/hhdd", "GET")
	if err != nil {
		t.Fatal(err)
	}
	if res.Definition == nil || res.Definition.SynonymFor == nil {
		t.Fatalf("expected the synonym entry itself, got %+v", res.Definition)
	}
}

func TestInfo_NoDefinitionForUnknownBareScheme(t *testing.T) {
	c := newTestCatalog(t)
	seedExampleCatalog(t, c)

	res, err := Info(c, "zzzscheme:", "GET")
	if err != nil {
		t.Fatal(err)
	}
	if res.Definition != nil {
		t.Fatalf("expected no definition, got %+v", res.Definition)
	}
}

func TestInfo_DefaultTargetWhenUnset(t *testing.T) {
	c := newTestCatalog(t)
	if err := c.Add(model.PidDefinition{Scheme: "x", Prefix: "", Value: "", HTTPCode: 302}, 1000); err != nil {
		t.Fatal(err)
	}
	if err := c.RefreshMetadata(1001); err != nil {
		t.Fatal(err)
	}

	res, err := Info(c, "x:abc", "GET")
	if err != nil {
		t.Fatal(err)
	}
	if res.Target != "/.info/x:abc" {
		t.Fatalf("Target: got %q, want default introspection route", res.Target)
	}
}

func TestResolve_ArkHyphensStripped(t *testing.T) {
	c := newTestCatalog(t)
	seedExampleCatalog(t, c)

	res, err := Resolve(c, "ark:99999/fk4-ab-cd", "GET", false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Parts.Suffix != "abcd" {
		t.Fatalf("Suffix: got %q, want hyphens stripped", res.Parts.Suffix)
	}
	if res.Target != "https://fk4.example.com/abcd" {
		t.Fatalf("Target: got %q", res.Target)
	}
}

func TestResolve_ArkHyphensKeptInQueryPart(t *testing.T) {
	c := newTestCatalog(t)
	seedExampleCatalog(t, c)

	res, err := Resolve(c, "ark:99999/fk4-ab?q=x-y", "GET", false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Parts.Suffix != "ab?q=x-y" {
		t.Fatalf("Suffix: got %q, want hyphens preserved after '?'", res.Parts.Suffix)
	}
}

func TestResolve_ArkHyphenStrippingDisabledByProperty(t *testing.T) {
	c := newTestCatalog(t)
	if err := c.Add(model.PidDefinition{
		Scheme:     "ark",
		Prefix:     "77777",
		Value:      "",
		Target:     strPtr("https://example.org/${suffix}"),
		HTTPCode:   302,
		Properties: map[string]any{"strip_hyphens": false},
	}, 1000); err != nil {
		t.Fatal(err)
	}
	if err := c.RefreshMetadata(1001); err != nil {
		t.Fatal(err)
	}

	res, err := Resolve(c, "ark:77777/ab-cd", "GET", false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Parts.Suffix != "ab-cd" {
		t.Fatalf("Suffix: got %q, want hyphens preserved", res.Parts.Suffix)
	}
}

func TestAdjustStatusForMethod(t *testing.T) {
	cases := []struct {
		method string
		in     int
		want   int
	}{
		{"GET", 302, 302},
		{"GET", 301, 301},
		{"HEAD", 302, 302},
		{"POST", 302, 307},
		{"PUT", 302, 307},
		{"DELETE", 302, 307},
		{"POST", 301, 308},
		{"POST", 303, 303},
	}
	for _, tc := range cases {
		if got := AdjustStatusForMethod(tc.method, tc.in); got != tc.want {
			t.Errorf("AdjustStatusForMethod(%q, %d) = %d, want %d", tc.method, tc.in, got, tc.want)
		}
	}
}
