package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"qrlink/cmd"
	"qrlink/internal/config"
	customerrors "qrlink/internal/errors"
	"qrlink/internal/repository"
	"qrlink/internal/services"
	"qrlink/internal/summary"
)

var statsOwnerFlag string

// StatsCmd prints the aggregated analytics report of a code.
var StatsCmd = &cobra.Command{
	Use:   "stats [code-id]",
	Short: "Get visit analytics for a code",
	Long:  `Aggregates the full visit history of the given code on behalf of its owner.`,
	Args:  cobra.ExactArgs(1),
	Run:   runStats,
}

func init() {
	StatsCmd.Flags().StringVar(&statsOwnerFlag, "owner", "", "Owner identity requesting the report")
	StatsCmd.MarkFlagRequired("owner")
	cmd.RootCmd.AddCommand(StatsCmd)
}

func runStats(cobraCmd *cobra.Command, args []string) {
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		fmt.Printf("Error: invalid code id %q\n", args[0])
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logrus.Fatalf("Failed to get underlying SQL database: %v", err)
	}
	defer sqlDB.Close()

	codeRepo := repository.NewCodeRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	summaryTimeout := time.Duration(cfg.Summary.TimeoutSeconds) * time.Second
	summarizer := summary.ForEndpoint(cfg.Summary.Endpoint, cfg.Summary.APIKey, summaryTimeout)
	analytics := services.NewAnalyticsService(codeRepo, visitRepo, summarizer, summaryTimeout)

	report, err := analytics.Aggregate(context.Background(), uint(id), statsOwnerFlag)
	if err != nil {
		if errors.Is(err, customerrors.ErrNotFound) || errors.Is(err, customerrors.ErrForbidden) {
			fmt.Printf("Error: %v\n", err)
		} else {
			fmt.Printf("Error retrieving analytics: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("Analytics for code %d:\n", id)
	fmt.Printf("Total scans: %d\n", report.TotalScans)
	fmt.Printf("Unique visitors: %d\n", report.UniqueVisitors)
	printBreakdown("Trends", report.Trends)
	printBreakdown("Platforms", report.Platforms)
	printBreakdown("Devices", report.Devices)
	printBreakdown("Locations", report.Locations)
	printBreakdown("Targets", report.Targets)
	fmt.Printf("Summary: %s\n", report.Summary)
}

func printBreakdown(label string, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("%s:\n", label)
	for _, k := range keys {
		fmt.Printf("  %s: %d\n", k, counts[k])
	}
}
