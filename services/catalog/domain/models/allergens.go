package models

// Allergens is a deduplicated set of allergen tags. The zero value is usable.
// Union order follows first appearance so derived lists are stable across
// recomputation regardless of input ordering semantics.
type Allergens []string

// UnionAllergens merges any number of allergen lists into one deduplicated list.
func UnionAllergens(lists ...[]string) Allergens {
	seen := make(map[string]struct{})
	var out Allergens
	for _, list := range lists {
		for _, a := range list {
			if a == "" {
				continue
			}
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	if out == nil {
		return Allergens{}
	}
	return out
}

// Contains reports whether the set holds the given allergen tag.
func (a Allergens) Contains(tag string) bool {
	for _, v := range a {
		if v == tag {
			return true
		}
	}
	return false
}
