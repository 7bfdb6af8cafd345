package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/GerritSt/API-discovery-agent/internal/cache"
	"github.com/GerritSt/API-discovery-agent/internal/export"
	"github.com/GerritSt/API-discovery-agent/pkg/discovery"
)

var (
	version = "1.0.0"

	// Global flags
	configFile string
	verbose    bool
	debug      bool

	// Discover flags
	outputFile   string
	outputFormat string
	timeout      int
	rateLimit    float64
	useAI        bool
	aiEnrich     bool
	aiModel      string
	useCache     bool
	cachePath    string
	cacheTTL     time.Duration
)

func main() {
	// Best effort: a missing .env is fine, the key can come from the shell
	godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "apidisc",
		Short: "apidisc - API Documentation Discovery Agent",
		Long: `apidisc - Discover a company's public API documentation and extract its endpoints.

Given a company name, apidisc probes a fixed set of conventional documentation
URLs, extracts endpoint records from the first reachable page, and exports the
result as a styled Excel workbook or JSON. An optional AI-assisted fallback
(OpenRouter) can suggest documentation URLs when the conventional ones fail.`,
		Version: version,
	}

	discoverCmd := &cobra.Command{
		Use:   "discover [company]...",
		Short: "Discover API documentation for one or more companies",
		Long:  "Probe candidate documentation URLs for each company, extract endpoints, and export the results.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runDiscover,
	}

	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the result cache",
	}

	cacheListCmd := &cobra.Command{
		Use:   "list",
		Short: "List cached companies",
		RunE:  runCacheList,
	}

	cacheClearCmd := &cobra.Command{
		Use:   "clear [company]...",
		Short: "Remove cached results (all when no company is given)",
		RunE:  runCacheClear,
	}

	cachePruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove expired cache entries",
		RunE:  runCachePrune,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Debug mode")

	// Discover flags
	discoverCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: auto-generated per company)")
	discoverCmd.Flags().StringVarP(&outputFormat, "format", "f", "xlsx", "Output format (xlsx, json)")
	discoverCmd.Flags().IntVarP(&timeout, "timeout", "t", 10, "Probe timeout in seconds")
	discoverCmd.Flags().Float64VarP(&rateLimit, "rate-limit", "r", 5, "Probe requests per second")
	discoverCmd.Flags().BoolVar(&useAI, "ai", false, "Enable AI-assisted lookup fallback (requires OPENROUTER_API_KEY)")
	discoverCmd.Flags().BoolVar(&aiEnrich, "ai-enrich", false, "Append AI-reported endpoints to extracted results (implies --ai)")
	discoverCmd.Flags().StringVar(&aiModel, "ai-model", "", "Override the OpenRouter model")
	discoverCmd.Flags().BoolVar(&useCache, "cache", false, "Cache results between runs")
	discoverCmd.Flags().StringVar(&cachePath, "cache-path", "", "Cache database path")
	discoverCmd.Flags().DurationVar(&cacheTTL, "cache-ttl", 24*time.Hour, "Cache entry lifetime")

	// Cache flags
	cacheCmd.PersistentFlags().StringVar(&cachePath, "cache-path", ".apidisc/cache.db", "Cache database path")
	cachePruneCmd.Flags().DurationVar(&cacheTTL, "cache-ttl", 24*time.Hour, "Entry lifetime used to decide expiry")

	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePruneCmd)

	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(cacheCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runDiscover(cmd *cobra.Command, args []string) error {
	companies := args

	config := discovery.DefaultConfig()

	if configFile != "" {
		fileConfig, err := discovery.LoadFromFile(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config file: %w", err)
		}
		config = fileConfig
	}

	// Command-line flags take precedence over the config file
	if cmd.Flags().Changed("timeout") {
		config.Timeout = time.Duration(timeout) * time.Second
	}
	if cmd.Flags().Changed("rate-limit") {
		config.RateLimit.RequestsPerSecond = rateLimit
	}
	if cmd.Flags().Changed("format") {
		config.Output.Format = outputFormat
	}
	if outputFile != "" {
		config.Output.FilePath = outputFile
	}
	if aiEnrich {
		useAI = true
		config.AI.Enrich = true
	}
	if useAI {
		config.AI.Enabled = true
		config.AI.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if aiModel != "" {
		config.AI.Model = aiModel
	}
	if useCache {
		config.Cache.Enabled = true
		if cachePath != "" {
			config.Cache.Path = cachePath
		}
		config.Cache.TTL = cacheTTL
	}
	config.Verbose = verbose
	config.Debug = debug

	agent, err := discovery.New(discovery.WithConfig(config))
	if err != nil {
		return fmt.Errorf("failed to create discovery agent: %w", err)
	}
	defer agent.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, stopping...\n")
		cancel()
	}()

	exportConfig := export.Config{
		Format:   config.Output.Format,
		Pretty:   config.Output.Pretty,
		FilePath: config.Output.FilePath,
	}
	if err := export.ValidateTarget(exportConfig, len(companies)); err != nil {
		return err
	}

	printBanner(companies, config)

	writer, err := export.NewWriter(exportConfig)
	if err != nil {
		return err
	}
	defer writer.Close()

	startTime := time.Now()
	failed := 0

	for _, company := range companies {
		if ctx.Err() != nil {
			break
		}

		result, err := agent.Discover(ctx, company)
		if err != nil {
			if discovery.IsNotFound(err) {
				fmt.Fprintf(os.Stderr, "No API documentation found for %q\n", company)
				failed++
				continue
			}
			return fmt.Errorf("discovery failed for %q: %w", company, err)
		}

		if err := writer.WriteResult(result); err != nil {
			return fmt.Errorf("failed to write result for %q: %w", company, err)
		}

		printResult(result)
	}

	printSummary(agent, len(companies), failed, time.Since(startTime))
	return nil
}

func runCacheList(cmd *cobra.Command, args []string) error {
	store, err := cache.Open(cachePath, 0)
	if err != nil {
		return err
	}
	defer store.Close()

	keys, err := store.Keys()
	if err != nil {
		return err
	}

	if len(keys) == 0 {
		fmt.Println("Cache is empty")
		return nil
	}

	fmt.Printf("Cached companies (%d):\n", len(keys))
	for _, key := range keys {
		fmt.Printf("  %s\n", key)
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store, err := cache.Open(cachePath, 0)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 0 {
		keys, err := store.Keys()
		if err != nil {
			return err
		}
		for _, key := range keys {
			if err := store.Delete(key); err != nil {
				return err
			}
		}
		fmt.Printf("Cleared %d entries\n", len(keys))
		return nil
	}

	for _, company := range args {
		if err := store.Delete(discovery.NormalizeCompany(company)); err != nil {
			return err
		}
	}
	fmt.Printf("Cleared %d entries\n", len(args))
	return nil
}

func runCachePrune(cmd *cobra.Command, args []string) error {
	store, err := cache.Open(cachePath, cacheTTL)
	if err != nil {
		return err
	}
	defer store.Close()

	pruned, err := store.Prune()
	if err != nil {
		return err
	}
	fmt.Printf("Pruned %d expired entries\n", pruned)
	return nil
}

func printBanner(companies []string, config *discovery.Config) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                        apidisc v1.0                          ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")
	fmt.Println()
	if len(companies) == 1 {
		fmt.Printf("Company:    %s\n", companies[0])
	} else {
		fmt.Printf("Companies:  %d\n", len(companies))
	}
	fmt.Printf("Format:     %s\n", config.Output.Format)
	fmt.Printf("Rate Limit: %.0f req/s\n", config.RateLimit.RequestsPerSecond)
	if config.AI.Enabled {
		fmt.Printf("AI Lookup:  enabled (%s)\n", config.AI.Model)
	}
	fmt.Println()
	fmt.Println("Starting discovery...")
	fmt.Println()
}

func printResult(result *discovery.Result) {
	fmt.Println()
	fmt.Printf("── %s ──\n", result.Company)
	fmt.Printf("Documentation: %s\n", result.DocumentationURL)
	if result.FromCache {
		fmt.Println("Source:        cache")
	}
	fmt.Printf("Endpoints:     %d\n", len(result.Endpoints))

	count := 10
	if len(result.Endpoints) < count {
		count = len(result.Endpoints)
	}
	for i := 0; i < count; i++ {
		ep := result.Endpoints[i]
		fmt.Printf("  [%s] %s\n", ep.Method, ep.Path)
	}
	if len(result.Endpoints) > 10 {
		fmt.Printf("  ... and %d more\n", len(result.Endpoints)-10)
	}
}

func printSummary(agent *discovery.Agent, total, failed int, duration time.Duration) {
	snap := agent.Metrics()

	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                     Discovery Summary                        ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Duration:           %v\n", duration.Round(time.Second))
	fmt.Printf("Companies:          %d (%d not found)\n", total, failed)
	fmt.Printf("Probes Attempted:   %d\n", snap.ProbesTotal)
	fmt.Printf("Pages Located:      %d\n", snap.PagesLocated)
	fmt.Printf("Endpoints Found:    %d\n", snap.EndpointsTotal)
	if snap.AILookups > 0 {
		fmt.Printf("AI Lookups:         %d\n", snap.AILookups)
	}
	fmt.Println()
}
