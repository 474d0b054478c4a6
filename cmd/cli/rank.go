package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/storeradar/radar-service/internal/catalog"
	"github.com/storeradar/radar-service/internal/database"
	"github.com/storeradar/radar-service/internal/engine"
	"github.com/storeradar/radar-service/internal/export"
	"github.com/storeradar/radar-service/internal/markers"
	"github.com/storeradar/radar-service/internal/recommend"
)

var (
	rankData      string
	rankProduct   string
	rankLat       float64
	rankLng       float64
	rankRegion    string
	rankDistance  float64
	rankWPrice    float64
	rankWDistance float64
	rankScope     string
	rankOutput    string
	rankOutFile   string
	rankLimit     int
)

// rankCmd represents the rank command
var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank stores for a product by price and distance",
	Long: `Rank stores selling a product by efficiency score, the weighted blend of
relative cheapness and relative proximity used for the map markers. Stores come
from a JSON catalog file (--data) or the configured catalog source.

A distance radius takes precedence over a region filter.`,
	Example: `  radar rank --data ./catalog.json --product 우유 --lat 37.5665 --lng 126.978
  radar rank --product milk --distance 3 --output json
  radar rank --product milk --region 11000 --output xlsx --out ranking.xlsx`,
	Args: cobra.NoArgs,
	RunE: runRank,
}

func init() {
	rootCmd.AddCommand(rankCmd)

	def := engine.DefaultConfig()
	pref := recommend.DefaultPreference()
	rankCmd.Flags().StringVar(&rankData, "data", "", "JSON catalog file (default: configured catalog source)")
	rankCmd.Flags().StringVar(&rankProduct, "product", "", "Product name (required)")
	rankCmd.Flags().Float64Var(&rankLat, "lat", def.DefaultPosition.Lat, "User latitude")
	rankCmd.Flags().Float64Var(&rankLng, "lng", def.DefaultPosition.Lng, "User longitude")
	rankCmd.Flags().StringVar(&rankRegion, "region", recommend.AllRegions, "Region code filter")
	rankCmd.Flags().Float64Var(&rankDistance, "distance", 0, "Radius filter in km (0 disables)")
	rankCmd.Flags().Float64Var(&rankWPrice, "w-price", pref.WPrice, "Price weight")
	rankCmd.Flags().Float64Var(&rankWDistance, "w-distance", pref.WDistance, "Distance weight")
	rankCmd.Flags().StringVar(&rankScope, "scope", string(recommend.MaxPriceAll), "Max price scope: all or candidates")
	rankCmd.Flags().StringVar(&rankOutput, "output", "table", "Output format: table, json or xlsx")
	rankCmd.Flags().StringVar(&rankOutFile, "out", "", "Output file (required for xlsx)")
	rankCmd.Flags().IntVar(&rankLimit, "limit", 0, "Show at most this many stores (0 for all)")
	_ = rankCmd.MarkFlagRequired("product")
}

type rankOptions struct {
	Product   string
	Position  recommend.UserPosition
	Selection recommend.FilterSelection
	Pref      recommend.Preference
	Ranking   recommend.Config
}

// rankResult is the json output of the rank command.
type rankResult struct {
	Product  string                   `json:"product"`
	Filter   recommend.FilterMode     `json:"filter"`
	Overlay  *recommend.RadiusOverlay `json:"overlay,omitempty"`
	Position recommend.UserPosition   `json:"position"`
	Stores   []recommend.ScoredStore  `json:"stores"`
}

func runRank(cmd *cobra.Command, args []string) error {
	switch rankOutput {
	case "table", "json":
	case "xlsx":
		if rankOutFile == "" {
			return fmt.Errorf("--out is required for xlsx output")
		}
	default:
		return fmt.Errorf("invalid output format: %s (table, json, xlsx)", rankOutput)
	}

	opts := rankOptions{
		Product:   rankProduct,
		Position:  recommend.UserPosition{Lat: rankLat, Lng: rankLng},
		Selection: recommend.NewFilterSelection(),
		Pref:      recommend.Preference{WPrice: rankWPrice, WDistance: rankWDistance},
		Ranking:   recommend.DefaultConfig(),
	}
	opts.Ranking.MaxPriceScope = recommend.MaxPriceScope(rankScope)
	if err := opts.Ranking.Validate(); err != nil {
		return err
	}
	if rankDistance > 0 {
		opts.Selection.SetDistance(rankDistance)
	} else {
		opts.Selection.SetRegion(rankRegion)
	}

	src, err := openSource()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	res, err := rankStores(ctx, src, opts)
	if err != nil {
		return err
	}
	if rankLimit > 0 && len(res.Stores) > rankLimit {
		res.Stores = res.Stores[:rankLimit]
	}

	logger.Info().
		Str("product", opts.Product).
		Str("filter", string(res.Filter)).
		Int("ranked", len(res.Stores)).
		Msg("Ranked stores")

	switch rankOutput {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "xlsx":
		f, err := os.Create(rankOutFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		if err := export.WriteRanking(f, opts.Product, res.Stores); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d stores to %s\n", len(res.Stores), rankOutFile)
		return nil
	default:
		return writeRankTable(cmd.OutOrStdout(), res, markers.DefaultFormatter())
	}
}

func openSource() (catalog.Source, error) {
	if rankData != "" {
		src, err := catalog.LoadStatic(rankData)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	return catalog.Open(cfg.Catalog, database.Pool())
}

func rankStores(ctx context.Context, src catalog.Source, opts rankOptions) (*rankResult, error) {
	stores, err := src.Stores(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stores: %w", err)
	}
	prices, err := src.Prices(ctx, opts.Product)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}

	filtered := recommend.FilterStores(stores, opts.Selection, opts.Position)
	ranked := recommend.NewRanker(opts.Ranking).Rank(filtered.Stores, prices, opts.Position, opts.Pref)
	if ranked == nil {
		ranked = []recommend.ScoredStore{}
	}

	return &rankResult{
		Product:  opts.Product,
		Filter:   filtered.Mode,
		Overlay:  filtered.Overlay,
		Position: opts.Position,
		Stores:   ranked,
	}, nil
}

func writeRankTable(out io.Writer, res *rankResult, f *markers.Formatter) error {
	if len(res.Stores) == 0 {
		_, err := fmt.Fprintf(out, "No priced stores found for %q\n", res.Product)
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tTIER\tSTORE\tPRICE\tDISTANCE\tSCORE")
	for _, s := range res.Stores {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			s.Rank+1, s.Tier, s.Name, f.Price(s.Price), f.Distance(s.DistanceKm), f.Score(s.Score))
	}
	return w.Flush()
}
