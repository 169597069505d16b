package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"recipe-manager/internal/core/recipe"
	"recipe-manager/internal/core/scraper"
	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/pkg/common"

	"github.com/urfave/cli/v3"
)

func parseCmd() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Parse recipe text from a file or stdin and print the result",
		ArgsUsage: "[file|-]",
		Flags: []cli.Flag{
			formatFlag(),
			&cli.BoolFlag{
				Name:  "llm",
				Usage: "Parse with the configured LLM instead of the rule-based parser",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			text, err := readInput(cmd, cmd.Args().First())
			if err != nil {
				return err
			}

			producer := recipe.ProducerText
			svc := recipe.NewService(nil, recipe.TextProducer{})
			if cmd.Bool("llm") {
				_, a, err := loadApp(ctx)
				if err != nil {
					return err
				}
				defer a.Close()
				if !a.Recipes.HasProducer(recipe.ProducerLLM) {
					return common.ErrLLMDisabled
				}
				producer, svc = recipe.ProducerLLM, a.Recipes
			}

			r, err := svc.Parse(ctx, producer, text)
			if err != nil && !errors.Is(err, common.ErrNoRecipeName) {
				return err
			}
			if werr := writeRecipe(writer(cmd), format, r); werr != nil {
				return werr
			}
			return err
		},
	}
}

func importURLCmd() *cli.Command {
	return &cli.Command{
		Name:      "import-url",
		Usage:     "Fetch a recipe page (SOSCuisine, GialloZafferano, schema.org) and print or save it",
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			formatFlag(),
			categoryFlag(),
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Store the parsed recipe in the database",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			url := strings.TrimSpace(cmd.Args().First())
			if url == "" {
				return fmt.Errorf("url argument is required")
			}

			if !cmd.Bool("save") {
				svc := recipe.NewService(nil, recipe.NewURLProducer(scraper.New(config.Default().Scraper)))
				r, err := svc.Parse(ctx, recipe.ProducerURL, url)
				if err != nil {
					return err
				}
				return writeRecipe(writer(cmd), format, r)
			}

			_, a, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			id, r, err := a.Recipes.Import(ctx, recipe.ProducerURL, url, cmd.String("category"))
			if err != nil {
				return err
			}
			return writeSaved(writer(cmd), format, id.String(), r)
		},
	}
}

func saveCmd() *cli.Command {
	return &cli.Command{
		Name:      "save",
		Usage:     "Parse recipe text from a file or stdin and store it in the database",
		ArgsUsage: "[file|-]",
		Flags: []cli.Flag{
			formatFlag(),
			categoryFlag(),
			&cli.StringFlag{
				Name:  "producer",
				Value: recipe.ProducerText,
				Usage: "Parser to use (text, llm)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			producer := strings.ToLower(cmd.String("producer"))
			if producer != recipe.ProducerText && producer != recipe.ProducerLLM {
				return fmt.Errorf("unsupported producer: %q", producer)
			}
			text, err := readInput(cmd, cmd.Args().First())
			if err != nil {
				return err
			}

			_, a, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.Recipes.HasProducer(producer) {
				return common.ErrLLMDisabled
			}
			id, r, err := a.Recipes.Import(ctx, producer, text, cmd.String("category"))
			if err != nil {
				return err
			}
			return writeSaved(writer(cmd), format, id.String(), r)
		},
	}
}

func listCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List stored recipes",
		Flags: []cli.Flag{
			formatFlag(),
			categoryFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			_, a, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			recipes, err := a.Store.ListRecipes(ctx, cmd.String("category"))
			if err != nil {
				return err
			}
			return writeRecipeList(writer(cmd), format, recipes)
		},
	}
}
