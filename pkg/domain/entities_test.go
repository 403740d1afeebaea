package domain

import (
	"go/parser"
	"go/token"
	"os"
	"strconv"
	"strings"
	"testing"
)

func TestLineItemsTotal(t *testing.T) {
	items := LineItems{Rent: 1000, Electricity: 42.5, Water: 12.5, Other: 0}
	if got := items.Total(); got != 1055 {
		t.Fatalf("expected total 1055, got %v", got)
	}
	if got := (LineItems{Rent: 500, Electricity: 40, Water: 15}).Total(); got != 555 {
		t.Fatalf("expected 555, got %v", got)
	}
	if (LineItems{}).Total() != 0 {
		t.Fatalf("empty line items should total 0")
	}
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"  Tower A ":       "tower a",
		"TOWER a":          "tower a",
		"  Sunrise Tower ": "sunrise tower",
		"":                 "",
	}
	for in, want := range cases {
		if got := NormalizeName(in); got != want {
			t.Fatalf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestDomainImportsStdlibOnly keeps the domain package free of module and
// third-party imports.
func TestDomainImportsStdlibOnly(t *testing.T) {
	entries, err := os.ReadDir(".")
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	fset := token.NewFileSet()
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fset, name, nil, parser.ImportsOnly)
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		for _, imp := range file.Imports {
			path, _ := strconv.Unquote(imp.Path.Value)
			first, _, _ := strings.Cut(path, "/")
			if strings.Contains(first, ".") || first == "rentledger" {
				t.Errorf("%s imports %s", name, path)
			}
		}
	}
}
