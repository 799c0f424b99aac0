package i18n

import "testing"

func TestGetCatalogFallsBackToBaseLocale(t *testing.T) {
	base := GetCatalog(BaseLocale)
	if base == nil || base.Locale() != BaseLocale {
		t.Fatalf("base catalog = %+v", base)
	}
	for _, locale := range []string{"", " ", "not a locale!", "ja-JP", "en"} {
		if got := GetCatalog(locale); got != base {
			t.Fatalf("GetCatalog(%q) = %s, want %s", locale, got.Locale(), BaseLocale)
		}
	}
}

func TestFormatBaseMessages(t *testing.T) {
	cat := GetCatalog(BaseLocale)
	tests := []struct {
		code     Code
		metadata map[string]string
		want     string
	}{
		{CodeNodeAggregateNotFound, map[string]string{"NodeAggregateID": "page"}, "Node page was not found"},
		{CodeNodeAggregateNotFound, nil, "Node was not found"},
		{CodeNodeAggregateDoesNotCoverPoint, map[string]string{"NodeAggregateID": "page", "DimensionSpacePoint": `{"language":"de"}`}, `Node page is not visible in {"language":"de"}`},
		{CodeContentStreamClosed, map[string]string{"ContentStreamID": "cs"}, "Content stream cs is closed"},
		{CodeNodeNameOccupied, map[string]string{"NodeName": "main"}, "The name main is already taken by a sibling"},
	}
	for _, tt := range tests {
		if got := cat.Format(tt.code, tt.metadata); got != tt.want {
			t.Fatalf("Format(%s) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestFormatFallbacks(t *testing.T) {
	cat := NewCatalog("test", map[Code]string{
		"named":   "node {{.NodeName}}",
		"broken":  "{{ if .NodeName }}",
		"execute": "{{ call .NodeName }}",
	})
	tests := []struct {
		code Code
		want string
	}{
		{"unknown", "unknown"},
		{"named", "node <no value>"},
		{"broken", "{{ if .NodeName }}"},
		{"execute", "{{ call .NodeName }}"},
	}
	for _, tt := range tests {
		if got := cat.Format(tt.code, map[string]string{}); got != tt.want {
			t.Fatalf("Format(%s) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestRegisterCatalogMatchesRegionalVariants(t *testing.T) {
	swiss := NewCatalog("de-CH", map[Code]string{CodeNodeAggregateNotFound: "Knoten {{.NodeAggregateID}} fehlt"})
	RegisterCatalog("de-CH", swiss)

	if got := GetCatalog("de-CH"); got != swiss {
		t.Fatalf("exact lookup = %s, want de-CH", got.Locale())
	}
	if got := GetCatalog("de-DE"); got != swiss {
		t.Fatalf("regional lookup = %s, want de-CH", got.Locale())
	}
	if got := GetCatalog("de-DE").Format(CodeNodeAggregateNotFound, map[string]string{"NodeAggregateID": "page"}); got != "Knoten page fehlt" {
		t.Fatalf("format = %q", got)
	}

	RegisterCatalog("not a locale!", NewCatalog("bogus", nil))
	if got := GetCatalog("en-US"); got.Locale() != BaseLocale {
		t.Fatalf("base catalog replaced by %s", got.Locale())
	}
}
