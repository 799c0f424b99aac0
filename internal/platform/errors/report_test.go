package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/louisbranch/contentrepository/internal/platform/errors/i18n"
)

func TestReport(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		locale string
		want   string
	}{
		{
			name:   "nil",
			err:    nil,
			locale: "en-US",
			want:   "",
		},
		{
			name:   "plain error",
			err:    errors.New("open events db: permission denied"),
			locale: "en-US",
			want:   "open events db: permission denied",
		},
		{
			name:   "domain error with metadata",
			err:    WithMetadata(CodeNodeAggregateNotFound, "node aggregate page not found", map[string]string{"NodeAggregateID": "page"}),
			locale: "en-US",
			want:   "Node page was not found [NODE_AGGREGATE_NOT_FOUND NotFound] NodeAggregateID=page: node aggregate page not found",
		},
		{
			name:   "wrapped sentinel",
			err:    fmt.Errorf("%w: %s", New(CodeDimensionSpacePointNotFound, "dimension space point not found"), `{"language":"fr"}`),
			locale: "",
			want:   `Dimension space point is not allowed [DIMENSION_SPACE_POINT_NOT_FOUND NotFound]: dimension space point not found: {"language":"fr"}`,
		},
		{
			name:   "concurrency conflict",
			err:    New(CodeConcurrencyConflict, "Content stream version does not match"),
			locale: "en-US",
			want:   "The content changed in the meantime, please retry [CONCURRENCY_CONFLICT Aborted]: Content stream version does not match",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Report(tt.err, tt.locale); got != tt.want {
				t.Fatalf("Report = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReportUsesRegionalCatalog(t *testing.T) {
	i18n.RegisterCatalog("it-CH", i18n.NewCatalog("it-CH", map[i18n.Code]string{
		string(CodeNodeAggregateNotFound): "Nodo {{.NodeAggregateID}} non trovato",
	}))
	err := WithMetadata(CodeNodeAggregateNotFound, "node aggregate page not found", map[string]string{"NodeAggregateID": "page"})

	want := "Nodo page non trovato [NODE_AGGREGATE_NOT_FOUND NotFound] NodeAggregateID=page: node aggregate page not found"
	if got := Report(err, "it-IT"); got != want {
		t.Fatalf("Report = %q, want %q", got, want)
	}
}
