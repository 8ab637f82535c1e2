package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rubiojr/topsongs/pkg/config"
	"github.com/urfave/cli/v3"
)

// InitCommand writes a commented configuration template.
func InitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a configuration template",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing configuration file",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return initConfig(c.String("config"), c.Bool("force"))
		},
	}
}

func initConfig(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite it", configPath)
	}

	cfg, err := config.GetDefaultConfig()
	if err != nil {
		return err
	}
	if err := cfg.SaveTemplateConfig(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("Configuration written to %s\n", configPath)
	fmt.Printf("Songs are stored in %s\n", cfg.CatalogPath())
	fmt.Println("Next: topsongs import FILE... && topsongs web")
	return nil
}
