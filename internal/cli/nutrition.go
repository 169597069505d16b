package cli

import (
	"context"
	"fmt"
	"strings"

	"recipe-manager/internal/core/nutrition"
	"recipe-manager/internal/infrastructure/config"

	"github.com/urfave/cli/v3"
)

func nutritionCmd() *cli.Command {
	return &cli.Command{
		Name:  "nutrition",
		Usage: "Query USDA FoodData Central",
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search foods by name",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					formatFlag(),
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Value:   10,
						Usage:   "Number of results",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					format, err := outputFormat(cmd)
					if err != nil {
						return err
					}
					query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
					if query == "" {
						return fmt.Errorf("query argument is required")
					}

					cfg, err := config.LoadConfig()
					if err != nil {
						return fmt.Errorf("failed to load config: %w", err)
					}
					if cfg.USDA.APIKey == "" {
						return fmt.Errorf("USDA_API_KEY is not set")
					}

					foods, err := nutrition.NewClient(cfg.USDA).SearchFood(ctx, query, int(cmd.Int("limit")))
					if err != nil {
						return err
					}
					return writeFoods(writer(cmd), format, foods)
				},
			},
		},
	}
}
