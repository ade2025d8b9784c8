package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/qzaway/foodcourt/internal/config"
	"github.com/qzaway/foodcourt/internal/domain"
	"github.com/qzaway/foodcourt/internal/qzaway"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "find-dish: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("find-dish", pflag.ContinueOnError)
	mallID := flags.String("mall", "", "mall to search (required)")
	veg := flags.Bool("veg", false, "vegetarian dishes only")
	sugarFree := flags.Bool("sugar-free", false, "sugar-free dishes only")
	limit := flags.Int("limit", 20, "results per page")
	flags.String("api-base-url", "", "backend base URL (overrides API_BASE_URL)")
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: find-dish --mall <mall-id> [--veg] [--sugar-free] <query>")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	query := strings.TrimSpace(strings.Join(flags.Args(), " "))
	if *mallID == "" || query == "" {
		flags.Usage()
		return errors.New("--mall and a query are required")
	}

	if err := config.BindFlag("API_BASE_URL", flags.Lookup("api-base-url")); err != nil {
		return err
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	client := qzaway.NewClient(cfg.API, logger)
	ctx := context.Background()

	fmt.Printf("🔍 Searching %s for: %s\n\n", *mallID, query)

	found := 0
	for page := 1; ; page++ {
		result, err := client.SearchFood(ctx, *mallID, query, qzaway.SearchOptions{
			Page:      page,
			Limit:     *limit,
			Veg:       *veg,
			SugarFree: *sugarFree,
		})
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		for _, item := range result.Data {
			printDish(item)
			found++
		}

		if result.Meta == nil || page >= result.Meta.TotalPages || len(result.Data) == 0 {
			break
		}
	}

	if found == 0 {
		fmt.Printf("❌ No dishes matching '%s'\n", query)
		return nil
	}
	fmt.Printf("\n✅ %d dish(es) found\n", found)
	return nil
}

func printDish(item domain.MenuItem) {
	restaurant := "-"
	if item.Restaurant != nil {
		restaurant = item.Restaurant.Name
	}

	var tags []string
	if item.IsVeg {
		tags = append(tags, "veg")
	}
	if item.IsSugarFree {
		tags = append(tags, "sugar-free")
	}
	if !item.IsAvailable {
		tags = append(tags, "unavailable")
	}

	line := fmt.Sprintf("%-32s %-24s ₹%s", item.Name, restaurant, item.Price.StringFixed(2))
	if len(tags) > 0 {
		line += " [" + strings.Join(tags, ", ") + "]"
	}
	fmt.Println(line)
}
