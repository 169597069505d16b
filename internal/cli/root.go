package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"recipe-manager/internal/app"
	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/pkg/common"

	"github.com/urfave/cli/v3"
)

const name = "recipe-manager"

// overridden during build with ldflags
var version = "dev"

const (
	formatText = "text"
	formatJSON = "json"
)

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"o"},
		Value:   formatText,
		Usage:   "Output format (text, json)",
	}
}

func categoryFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "category",
		Aliases: []string{"c"},
		Usage:   "Recipe category (defaults to the parsed category)",
	}
}

// Command 回傳根命令
func Command() *cli.Command {
	return &cli.Command{
		Name:    name,
		Usage:   "Parse Italian and English recipes from text or web pages",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level written to stderr (debug, info, warn, error); silent when empty",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if level := cmd.String("log-level"); level != "" {
				if err := common.InitLogger(level); err != nil {
					return ctx, err
				}
			}
			return ctx, nil
		},
		After: func(ctx context.Context, cmd *cli.Command) error {
			common.Sync()
			return nil
		},
		Commands: []*cli.Command{
			parseCmd(),
			importURLCmd(),
			saveCmd(),
			listCmd(),
			nutritionCmd(),
		},
	}
}

// Execute 執行 CLI，供 main 使用
func Execute(ctx context.Context, args []string) error {
	return Command().Run(ctx, args)
}

// loadApp 載入設定並初始化需要資料庫的服務
func loadApp(ctx context.Context) (*config.Config, *app.App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	a, err := app.New(ctx, cfg, app.Options{})
	if err != nil {
		return nil, nil, err
	}
	return cfg, a, nil
}

// readInput 讀取檔案；路徑為空或 "-" 時讀取標準輸入
func readInput(cmd *cli.Command, path string) (string, error) {
	var r io.Reader
	if path == "" || path == "-" {
		r = cmd.Root().Reader
		if r == nil {
			r = os.Stdin
		}
	} else {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("failed to open %q: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", common.ErrEmptyInput
	}
	return string(data), nil
}

func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func outputFormat(cmd *cli.Command) (string, error) {
	switch f := strings.ToLower(cmd.String("format")); f {
	case formatText, formatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format: %q", f)
	}
}
