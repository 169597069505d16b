package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"recipe-manager/internal/core/nutrition"
	"recipe-manager/internal/infrastructure/database"
	"recipe-manager/internal/pkg/common"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeRecipe(w io.Writer, format string, r common.ParsedRecipe) error {
	if format == formatJSON {
		return writeJSON(w, r)
	}

	name := r.NameIT
	if name == "" {
		name = "(no name detected)"
	}
	fmt.Fprintf(w, "Name:       %s\n", name)
	if r.SourceURL != nil {
		fmt.Fprintf(w, "Source:     %s\n", *r.SourceURL)
	}
	fmt.Fprintf(w, "Category:   %s\n", r.Category)
	fmt.Fprintf(w, "Servings:   %d\n", r.Servings)
	fmt.Fprintf(w, "Prep time:  %d min\n", r.PrepTimeMin)
	fmt.Fprintf(w, "Cook time:  %d min\n", r.CookTimeMin)
	fmt.Fprintf(w, "Difficulty: %s\n", r.Difficulty)
	if len(r.Tags) > 0 {
		fmt.Fprintf(w, "Tags:       %s\n", common.StringSliceToString(r.Tags))
	}

	n := r.Nutrition
	fmt.Fprintf(w, "\nNutrition (per serving): kcal %d | protein %gg | carbs %gg | fat %gg",
		n.Kcal, n.Protein, n.Carbs, n.Fat)
	if n.Fiber != nil {
		fmt.Fprintf(w, " | fiber %gg", *n.Fiber)
	}
	fmt.Fprintln(w)
	if n.ServingWeightG != nil {
		fmt.Fprintf(w, "Serving weight: %dg\n", *n.ServingWeightG)
	}

	fmt.Fprintf(w, "\nIngredients (%d):\n%s", len(r.Ingredients), common.FormatIngredients(r.Ingredients))

	fmt.Fprintf(w, "\nSteps (%d):\n", len(r.Steps))
	for i, step := range r.Steps {
		fmt.Fprintf(w, "%d. %s\n", i+1, step)
	}
	return nil
}

func writeSaved(w io.Writer, format, id string, r common.ParsedRecipe) error {
	if format == formatJSON {
		return writeJSON(w, map[string]interface{}{"id": id, "recipe": r})
	}
	fmt.Fprintf(w, "Saved %q (%s) as %s\n", r.NameIT, r.Category, id)
	return nil
}

func writeRecipeList(w io.Writer, format string, recipes []database.Recipe) error {
	if format == formatJSON {
		return writeJSON(w, recipes)
	}
	if len(recipes) == 0 {
		fmt.Fprintln(w, "No recipes found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tKCAL/100G\tTIME\tDIFFICULTY")
	for _, r := range recipes {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d min\t%s\n",
			common.TruncateText(r.NameIT, 40), r.Category, r.KcalPer100g, r.TotalTimeMin, r.Difficulty)
	}
	return tw.Flush()
}

func writeFoods(w io.Writer, format string, foods []nutrition.Food) error {
	if format == formatJSON {
		return writeJSON(w, foods)
	}
	if len(foods) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tFDC ID\tDESCRIPTION\tKCAL\tPROTEIN\tCARBS\tFAT")
	for i, f := range foods {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%gg\t%gg\t%gg\n",
			i+1, f.FdcID, common.TruncateText(f.Description, 40),
			f.Nutrients.Kcal, f.Nutrients.Protein, f.Nutrients.Carbs, f.Nutrients.Fat)
	}
	return tw.Flush()
}
