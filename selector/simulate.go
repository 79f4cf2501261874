package selector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"go.ntppool.org/common/logger"

	"go.ntppool.org/imagerotate/catalog"
)

// SimulateCmd runs a number of selections against a catalog file and
// prints what would have been shown.
type SimulateCmd struct {
	Images      string   `default:"images.csv" env:"IMAGEROTATE_IMAGES" help:"Image catalog file" type:"path"`
	Category    []string `short:"c" help:"Requested category (repeatable)"`
	Count       int      `short:"n" default:"10" help:"Number of selections"`
	Seed        uint64   `help:"Random seed (0 picks one)"`
	RecencySize int      `default:"5" help:"Recently shown images to exclude"`
	Verbose     bool     `flag:"verbose" short:"v" help:"Enable verbose debug logging"`
}

func (cmd SimulateCmd) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if cmd.Verbose {
		debugHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		log = slog.New(debugHandler)
		ctx = logger.NewContext(ctx, log)
	}

	cat, _, err := catalog.LoadFile(ctx, cmd.Images)
	if err != nil {
		return err
	}

	seed := cmd.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	log.InfoContext(ctx, "starting selection simulation",
		"images", cat.Len(),
		"categories", cmd.Category,
		"count", cmd.Count,
		"seed", seed,
	)

	sl := NewSelector(cat, log, nil,
		WithRand(rand.New(rand.NewPCG(seed, seed))),
		WithRecencySize(cmd.RecencySize),
	)

	requested := catalog.RequestCategories(cmd.Category...)
	counts := map[string]int{}

	for i := 0; i < cmd.Count; i++ {
		img, err := sl.Select(ctx, requested)
		if errors.Is(err, ErrNoEligibleImage) {
			fmt.Printf("%3d: no image available\n", i+1)
			continue
		}
		if err != nil {
			return err
		}
		counts[img.URL]++
		fmt.Printf("%3d: %s %v\n", i+1, img.URL, img.Categories.Sorted())
	}

	fmt.Println()
	for _, img := range sl.Status().Images {
		fmt.Printf("%-40s shown=%d shows_left=%d\n", img.URL, counts[img.URL], img.ShowsLeft)
	}

	return nil
}
