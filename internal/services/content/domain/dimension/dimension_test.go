package dimension

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func languageAudience(t *testing.T) *Source {
	t.Helper()
	src, err := NewSource(
		Definition{ID: "language", Values: []ValueDefinition{
			{Value: "mul", Specializations: []ValueDefinition{
				{Value: "de", Specializations: []ValueDefinition{{Value: "gsw"}}},
				{Value: "en"},
			}},
		}},
		Definition{ID: "audience", Values: []ValueDefinition{
			{Value: "default", Specializations: []ValueDefinition{
				{Value: "premium", Constraints: map[string]map[string]bool{"language": {"gsw": false}}},
			}},
		}},
	)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	return src
}

func TestNewSourceBuildsValueTree(t *testing.T) {
	src := languageAudience(t)

	lang, ok := src.Dimension("language")
	if !ok {
		t.Fatal("expected language dimension")
	}
	var names []string
	for _, v := range lang.Values() {
		names = append(names, v.Value)
	}
	if diff := cmp.Diff([]string{"mul", "de", "gsw", "en"}, names); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	gsw, _ := lang.Value("gsw")
	if gsw.Depth != 2 || gsw.Generalization != "de" {
		t.Fatalf("gsw = %+v, want depth 2 under de", gsw)
	}
	if lang.MaximumDepth() != 2 {
		t.Fatalf("language max depth = %d, want 2", lang.MaximumDepth())
	}
	if src.MaximumDepth() != 2 {
		t.Fatalf("source max depth = %d, want 2", src.MaximumDepth())
	}
	if got := len(lang.RootValues()); got != 1 {
		t.Fatalf("root values = %d, want 1", got)
	}

	var specs []string
	for _, v := range lang.Specializations("mul") {
		specs = append(specs, v.Value)
	}
	if diff := cmp.Diff([]string{"de", "en"}, specs); diff != "" {
		t.Fatalf("specializations mismatch (-want +got):\n%s", diff)
	}
	gen, ok := lang.Generalization("de")
	if !ok || gen.Value != "mul" {
		t.Fatalf("generalization(de) = %v, %v", gen, ok)
	}
	if _, ok := lang.Generalization("mul"); ok {
		t.Fatal("root should have no generalization")
	}
	if diff := cmp.Diff([]ID{"language", "audience"}, src.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestConstraintsAllow(t *testing.T) {
	c := NewConstraints(map[string]map[string]bool{
		"language": {"*": false, "de": true},
		"market":   {"ch": false},
	})

	tests := []struct {
		dim   ID
		value string
		want  bool
	}{
		{"language", "de", true},
		{"language", "en", false},
		{"market", "ch", false},
		{"market", "de", true},
		{"audience", "anything", true},
	}
	for _, tt := range tests {
		if got := c.Allows(tt.dim, tt.value); got != tt.want {
			t.Fatalf("Allows(%s, %s) = %v, want %v", tt.dim, tt.value, got, tt.want)
		}
	}
	if diff := cmp.Diff([]ID{"language", "market"}, c.Dimensions()); diff != "" {
		t.Fatalf("dimensions mismatch (-want +got):\n%s", diff)
	}
}

func TestNewSourceRejectsInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name string
		defs []Definition
	}{
		{"missing id", []Definition{{Values: []ValueDefinition{{Value: "en"}}}}},
		{"duplicate dimension", []Definition{
			{ID: "language", Values: []ValueDefinition{{Value: "en"}}},
			{ID: "language", Values: []ValueDefinition{{Value: "de"}}},
		}},
		{"no values", []Definition{{ID: "language"}}},
		{"empty value", []Definition{{ID: "language", Values: []ValueDefinition{{Value: " "}}}}},
		{"wildcard value", []Definition{{ID: "language", Values: []ValueDefinition{{Value: "*"}}}}},
		{"duplicate value", []Definition{{ID: "language", Values: []ValueDefinition{
			{Value: "en", Specializations: []ValueDefinition{{Value: "en"}}},
		}}}},
		{"undefined constrained dimension", []Definition{{ID: "language", Values: []ValueDefinition{
			{Value: "en", Constraints: map[string]map[string]bool{"market": {"*": false}}},
		}}}},
		{"undefined constrained value", []Definition{
			{ID: "language", Values: []ValueDefinition{
				{Value: "en", Constraints: map[string]map[string]bool{"audience": {"vip": false}}},
			}},
			{ID: "audience", Values: []ValueDefinition{{Value: "default"}}},
		}},
		{"self constraint", []Definition{{ID: "language", Values: []ValueDefinition{
			{Value: "en", Constraints: map[string]map[string]bool{"language": {"*": false}}},
		}}}},
		{"values and languages", []Definition{{ID: "language", Values: []ValueDefinition{{Value: "en"}}, Languages: []string{"en"}}}},
		{"invalid language", []Definition{{ID: "language", Languages: []string{"not a tag!"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSource(tt.defs...)
			if !errors.Is(err, ErrConfigInvalid) {
				t.Fatalf("err = %v, want %v", err, ErrConfigInvalid)
			}
		})
	}
}

func TestLanguageDefinitionUsesParentChain(t *testing.T) {
	def, err := LanguageDefinition("language", []string{"en", "de", "de-CH", "en-GB", "fr-CA"})
	if err != nil {
		t.Fatalf("language definition: %v", err)
	}
	want := Definition{ID: "language", Values: []ValueDefinition{
		{Value: "en", Specializations: []ValueDefinition{{Value: "en-GB"}}},
		{Value: "de", Specializations: []ValueDefinition{{Value: "de-CH"}}},
		{Value: "fr-CA"},
	}}
	if diff := cmp.Diff(want, def); diff != "" {
		t.Fatalf("definition mismatch (-want +got):\n%s", diff)
	}
}

func TestLanguageDefinitionRejectsDuplicates(t *testing.T) {
	_, err := LanguageDefinition("language", []string{"de-CH", "de-ch"})
	if !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("err = %v, want %v", err, ErrConfigInvalid)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dimensions.yaml")
	doc := `dimensions:
  - id: language
    languages: [en, de, de-CH]
  - id: audience
    values:
      - value: default
        specializations:
          - value: premium
            constraints:
              language:
                de-CH: false
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	src, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	lang, _ := src.Dimension("language")
	if v, ok := lang.Value("de-CH"); !ok || v.Generalization != "de" {
		t.Fatalf("de-CH = %+v, %v", v, ok)
	}
	audience, _ := src.Dimension("audience")
	premium, _ := audience.Value("premium")
	if premium.Constraints.Allows("language", "de-CH") {
		t.Fatal("premium should disallow de-CH")
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("err = %v, want %v", err, ErrConfigInvalid)
	}
}
