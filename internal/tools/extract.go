package tools

// ItemsFrom pulls the priced product rows out of a result value, nil
// when the result carries none. Shopping capabilities return their rows
// either as the bare item or under an "items" key.
func ItemsFrom(r *Result) []ShoppingItem {
	if r == nil || !r.Success || r.Value == nil {
		return nil
	}
	switch v := r.Value.(type) {
	case ShoppingItem:
		return []ShoppingItem{v}
	case []ShoppingItem:
		return v
	case map[string]interface{}:
		if items, ok := v["items"].([]ShoppingItem); ok {
			return items
		}
	}
	return nil
}

// RecipesFrom pulls recipe rows out of a result value, nil when the
// result carries none.
func RecipesFrom(r *Result) []Recipe {
	if r == nil || !r.Success || r.Value == nil {
		return nil
	}
	switch v := r.Value.(type) {
	case Recipe:
		return []Recipe{v}
	case []Recipe:
		return v
	case map[string]interface{}:
		if recipes, ok := v["recipes"].([]Recipe); ok {
			return recipes
		}
	}
	return nil
}
