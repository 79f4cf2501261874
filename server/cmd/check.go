package cmd

import (
	"context"
	"fmt"
	"slices"

	"github.com/MakeNowJust/heredoc"

	"go.ntppool.org/imagerotate/catalog"
)

// CheckCmd loads a catalog file and reports what the server would see.
type CheckCmd struct {
	Images string `arg:"" optional:"" default:"images.csv" help:"Image catalog file" type:"path"`
	Strict bool   `help:"Fail when any row was skipped"`
}

func (cmd CheckCmd) Run(ctx context.Context) error {
	cat, stats, err := catalog.LoadFile(ctx, cmd.Images)
	if err != nil {
		return err
	}

	depleted := cat.Filter(func(img *catalog.Image) bool { return img.ShowsLeft == 0 })

	fmt.Printf("%s: %d images, %d skipped rows, %d with no shows left\n",
		cmd.Images, stats.Loaded, stats.Skipped, len(depleted))

	if cat.Len() == 0 {
		fmt.Print(heredoc.Docf(`

			No usable images in %s. Each line has the image url, how many
			times it may be shown and optional category tags, separated
			by '%c', for example:

				https://img.example/sunset.jpg;3;sky;evening

		`, cmd.Images, catalog.Delimiter))
	}

	counts := cat.CategoryCounts()
	tags := make([]string, 0, len(counts))
	for t := range counts {
		tags = append(tags, t)
	}
	slices.Sort(tags)
	for _, t := range tags {
		fmt.Printf("  %-30s %d\n", t, counts[t])
	}

	if cmd.Strict && stats.Skipped > 0 {
		return fmt.Errorf("%d malformed rows in %s", stats.Skipped, cmd.Images)
	}

	return nil
}
