package chef

import "fridgechef/internal/prompt"

func detectPrompt() (string, error) {
	return prompt.Build(prompt.Spec{
		Purpose: "Identify every distinct food ingredient visible in the attached photos of a fridge, freezer, or pantry.",
		Background: "The photos were taken by a home cook who wants recipe suggestions from what they already have. " +
			"Packaging labels, produce, and leftovers all count.",
		OutputFields: []prompt.Field{
			{Name: "ingredients", Type: "[]object", Required: true, Description: "One entry per distinct ingredient."},
			{Name: "ingredients[].name", Type: "string", Required: true, Description: "Common grocery name, singular or plural as bought."},
			{Name: "ingredients[].possible_alternates", Type: "[]string", Required: false, Description: "Up to 3 alternate identifications when the item is ambiguous."},
		},
		Constraints: []string{
			"Only list items you can actually see.",
			"Merge duplicates across photos into one entry.",
			"Ignore non-food items, cookware, and condiment residue.",
		},
		Rules: []string{
			"Prefer specific names (\"cheddar cheese\") over generic ones (\"cheese\") when identifiable.",
			"When unsure between identifications, pick the most likely name and list the others as possible_alternates.",
		},
		OutputFormat: "A single JSON object. No markdown, no commentary.",
		Examples: []prompt.Example{
			{OutputJSON: `{"ingredients":[{"name":"Milk","possible_alternates":["Cream"]},{"name":"Eggs","possible_alternates":[]}]}`},
		},
	})
}

func suggestPrompt(hasExclusions bool) (string, error) {
	rules := []string{
		"Every recipe must be cookable primarily from the listed ingredients plus pantry staples (salt, pepper, oil, water).",
		"Keep instructions concrete and ordered.",
		"difficulty must be one of: Easy, Medium, Hard.",
	}
	if hasExclusions {
		rules = append(rules, "Do not repeat any recipe whose title appears in exclude_titles; propose different dishes.")
	}
	return prompt.Build(prompt.Spec{
		Purpose:    "Suggest 3 to 5 realistic recipes a home cook can make from the ingredient list in the input payload.",
		Background: "The input JSON carries the available ingredient names and, optionally, titles of recipes already shown to the user.",
		OutputFields: []prompt.Field{
			{Name: "recipes", Type: "[]object", Required: true},
			{Name: "recipes[].title", Type: "string", Required: true},
			{Name: "recipes[].description", Type: "string", Required: true, Description: "One or two appetizing sentences."},
			{Name: "recipes[].prep_time", Type: "string", Required: true, Description: "Human-readable label, e.g. \"25 min\"."},
			{Name: "recipes[].difficulty", Type: "string", Required: true},
			{Name: "recipes[].ingredients", Type: "[]string", Required: true, Description: "Required ingredient names with quantities."},
			{Name: "recipes[].instructions", Type: "[]string", Required: true, Description: "Ordered preparation steps."},
		},
		Rules:        rules,
		OutputFormat: "A single JSON object. No markdown, no commentary.",
	})
}
