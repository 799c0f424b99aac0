package dimensionspace

import (
	"testing"

	"github.com/louisbranch/contentrepository/internal/services/content/domain/dimension"
)

func pt(language, audience string) Point {
	return NewPoint(map[dimension.ID]string{"language": language, "audience": audience})
}

// sampleGraph builds language mul > {de > gsw, en} and audience
// default > premium, where premium excludes gsw.
func sampleGraph(t *testing.T) (*Zookeeper, *Graph) {
	t.Helper()
	src, err := dimension.NewSource(
		dimension.Definition{ID: "language", Values: []dimension.ValueDefinition{
			{Value: "mul", Specializations: []dimension.ValueDefinition{
				{Value: "de", Specializations: []dimension.ValueDefinition{{Value: "gsw"}}},
				{Value: "en"},
			}},
		}},
		dimension.Definition{ID: "audience", Values: []dimension.ValueDefinition{
			{Value: "default", Specializations: []dimension.ValueDefinition{
				{Value: "premium", Constraints: map[string]map[string]bool{"language": {"gsw": false}}},
			}},
		}},
	)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	zk := NewZookeeper(src)
	return zk, NewBuilder(zk).Build()
}

func pointStrings(points []Point) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.String()
	}
	return out
}
