package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/raine/market-dashboard/config"
	"github.com/raine/market-dashboard/internal/dashboard"
	"github.com/raine/market-dashboard/internal/ebay"
	"github.com/raine/market-dashboard/internal/export"
	"github.com/raine/market-dashboard/internal/listing"
)

func main() {
	query := flag.String("q", "", "Search query")
	minPrice := flag.String("min", "", "Minimum price (implies specific price mode)")
	maxPrice := flag.String("max", "", "Maximum price (implies specific price mode)")
	condition := flag.String("condition", "", "Condition filter: new or used")
	category := flag.String("category", "", "eBay category id (e.g., 625)")
	strength := flag.Int("strength", listing.DefaultFilterStrength, "Auto price range filter strength: 3, 4 or 6")
	csvPath := flag.String("csv", "", "Write the results as CSV to this path")
	rawJSON := flag.Bool("json", false, "Output the dashboard as JSON only")
	flag.Parse()

	config.LoadEnvFile()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if missing := config.CheckRequired(); len(missing) > 0 {
		fmt.Fprintf(os.Stderr, "Error: missing %s\n", strings.Join(missing, ", "))
		os.Exit(1)
	}

	q := listing.Query{
		Text:           *query,
		CategoryID:     *category,
		ConditionID:    *condition,
		FilterStrength: *strength,
		MinPrice:       parseBound("min", *minPrice),
		MaxPrice:       parseBound("max", *maxPrice),
	}
	q = q.Normalize()
	if err := q.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	client := ebay.NewClient(ebay.ClientOpts{
		BaseURL:           cfg.BaseURL,
		TokenURL:          cfg.TokenURL,
		ClientID:          cfg.ClientID,
		ClientSecret:      cfg.ClientSecret,
		MarketplaceID:     cfg.MarketplaceID,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	records, err := ebay.NewFinder(client).Search(ctx, q)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Println("No results found.")
		return
	}

	d := dashboard.Build(q, records)

	if *rawJSON {
		jsonBytes, _ := json.MarshalIndent(d, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		printDashboard(d)
	}

	if *csvPath != "" {
		if err := os.WriteFile(*csvPath, []byte(export.ToCSV(d.Records)), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Wrote %d rows to %s\n", len(d.Records), *csvPath)
	}
}

func parseBound(name, s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: -%s must be a number\n", name)
		os.Exit(1)
	}
	return &v
}

func printDashboard(d *dashboard.Dashboard) {
	fmt.Println(d.Title)
	fmt.Printf("%s · %s · %s\n\n", d.Query.CategoryLabel(), d.Query.ConditionLabel(), d.Query.RangeLabel())

	fmt.Printf("Results: %s\n", d.Display.Total)
	fmt.Printf("Min:     %s\n", d.Display.Min)
	fmt.Printf("Max:     %s\n", d.Display.Max)
	fmt.Printf("Mean:    %s\n", d.Display.Mean)
	fmt.Printf("Median:  %s\n\n", d.Display.Median)

	fmt.Println("Price distribution:")
	for _, b := range d.Histogram.Bins {
		fmt.Printf("  %-18s %4d %s\n", b.Label, b.Count, strings.Repeat("#", b.Count))
	}

	fmt.Printf("\nNew: %d  Used: %d  Other: %d\n\n", d.Counts.New, d.Counts.Used, d.Counts.Other)

	for i, r := range d.Records {
		fmt.Printf("%d. %s - %s\n", i+1, r.Title, r.Price)
		if seller := r.SellerLabel(); seller != "" {
			fmt.Printf("   %s\n", seller)
		}
	}
}
