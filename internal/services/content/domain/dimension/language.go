package dimension

import (
	"fmt"

	"golang.org/x/text/language"
)

// LanguageDefinition builds a dimension definition from BCP 47 tags. Each
// tag specializes its nearest listed ancestor in the CLDR parent chain, so
// "de-CH" specializes "de" when both are listed. Tags keep their listed
// order among siblings.
func LanguageDefinition(id ID, tags []string) (Definition, error) {
	parsed := make([]language.Tag, len(tags))
	position := make(map[string]int, len(tags))
	for i, raw := range tags {
		tag, err := language.Parse(raw)
		if err != nil {
			return Definition{}, configError(
				fmt.Sprintf("dimension %s: invalid language tag %q: %v", id, raw, err),
				map[string]string{"Dimension": string(id), "Value": raw},
			)
		}
		if _, ok := position[tag.String()]; ok {
			return Definition{}, configError(
				fmt.Sprintf("dimension %s declares language %s twice", id, tag),
				map[string]string{"Dimension": string(id), "Value": tag.String()},
			)
		}
		parsed[i] = tag
		position[tag.String()] = i
	}

	children := make(map[int][]int, len(parsed))
	var roots []int
	for i, tag := range parsed {
		parent := -1
		for p := tag.Parent(); p != language.Und; p = p.Parent() {
			if j, ok := position[p.String()]; ok {
				parent = j
				break
			}
		}
		if parent < 0 {
			roots = append(roots, i)
			continue
		}
		children[parent] = append(children[parent], i)
	}

	var build func(i int) ValueDefinition
	build = func(i int) ValueDefinition {
		v := ValueDefinition{Value: parsed[i].String()}
		for _, c := range children[i] {
			v.Specializations = append(v.Specializations, build(c))
		}
		return v
	}
	def := Definition{ID: id}
	for _, r := range roots {
		def.Values = append(def.Values, build(r))
	}
	return def, nil
}
