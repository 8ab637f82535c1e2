package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rubiojr/topsongs/pkg/catalog"
	"github.com/rubiojr/topsongs/pkg/config"
	"github.com/urfave/cli/v3"
)

// ImportCommand creates the import command
func ImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import song files into the catalog",
		ArgsUsage: "FILE...",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() == 0 {
				return errors.New("at least one song file is required")
			}
			return importSongs(ctx, c.String("config"), c.Args().Slice())
		},
	}
}

func importSongs(ctx context.Context, configPath string, paths []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	var total catalog.ImportResult
	for _, path := range paths {
		result, err := catalog.ImportFile(ctx, store, path)
		if err != nil {
			return fmt.Errorf("importing %s: %w", path, err)
		}
		fmt.Printf("%s: %d songs, %d images\n", path, result.Songs, result.Images)
		total.Songs += result.Songs
		total.Images += result.Images
	}

	count, err := store.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d songs and %d images, the catalog now holds %d songs\n", total.Songs, total.Images, count)
	return nil
}
