package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/andrianta/hoaxcheck/internal/analyze"
	"github.com/andrianta/hoaxcheck/internal/catalog"
	"github.com/andrianta/hoaxcheck/internal/claim"
	"github.com/andrianta/hoaxcheck/internal/config"
	"github.com/andrianta/hoaxcheck/internal/database"
	"github.com/andrianta/hoaxcheck/internal/detect"
	"github.com/andrianta/hoaxcheck/internal/explain"
	"github.com/andrianta/hoaxcheck/internal/related"
	"github.com/andrianta/hoaxcheck/internal/search"
	"github.com/andrianta/hoaxcheck/internal/server"
	"github.com/andrianta/hoaxcheck/internal/verify"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "hoaxcheck",
	Short:   "Fake-news verification against trusted sources",
	Long:    "HoaxCheck classifies a claim with an ML model, corroborates it against trusted news outlets and fact-checkers, and arbitrates a final verdict.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			// The default config is self-contained; a missing file is
			// not an error for read-only commands.
			cfg, err = config.LoadDefault()
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(sourcesCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("hoaxcheck", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/hoaxcheck/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure sources, the API token env var, and the explanation backend.")
		return nil
	},
}

// --- analyze command ---

var (
	analyzeJSON    bool
	analyzeExplain bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Analyze a claim (pass - to read from stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := args[0]
		if text == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			text = string(data)
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		analyzer := buildAnalyzer(db, analyzeExplain)
		report, err := analyzer.Analyze(context.Background(), text)
		if err != nil {
			return err
		}

		if analyzeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		printReport(report)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the full report as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeExplain, "explain", false, "Generate an LLM explanation of the verdict")
}

func printReport(r *analyze.Report) {
	fmt.Printf("Verdict:    %s (%.0f%% confidence)\n", r.Prediction, r.Confidence*100)
	fmt.Printf("Basis:      %s (weight %.1f)\n", r.Basis, r.Weight)
	fmt.Printf("Model:      %s (%.0f%%)\n", r.Model.Prediction, r.Model.Confidence*100)

	if v := r.Verification; v != nil {
		fmt.Printf("\n%s\n", v.Message)
		for _, a := range v.Articles {
			fmt.Printf("  - %s (%s)\n    %s\n", a.Title, a.Source, a.Link)
		}
		for _, fc := range v.FactChecks {
			fmt.Printf("  - [fact-check] %s (%s)\n    %s\n", fc.Title, fc.Source, fc.Link)
		}
	}

	if rn := r.Related; rn != nil && len(rn.Articles) > 0 {
		fmt.Println("\nBerita terkait:")
		for _, a := range rn.Articles {
			fmt.Printf("  - %s (%s)\n    %s\n", a.Title, a.Source, a.Link)
		}
	}

	if r.Explanation != "" {
		fmt.Printf("\n%s\n", r.Explanation)
	}
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		analyzer := buildAnalyzer(db, true)
		detector := detect.NewHTTPDetector(cfg.Detector)

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(analyzer, detector, db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

// --- history command ---

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent analyses",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		analyses, err := db.GetRecentAnalyses(historyLimit)
		if err != nil {
			return err
		}
		if len(analyses) == 0 {
			fmt.Println("No analyses recorded yet. Run 'hoaxcheck analyze' first.")
			return nil
		}

		stats, err := db.GetStats()
		if err != nil {
			return err
		}

		fmt.Printf("Analyses: %d total (%d Fake, %d Real, avg confidence %.0f%%)\n\n",
			stats.Total, stats.FakeCount, stats.RealCount, stats.AvgConfidence*100)
		for _, a := range analyses {
			fmt.Printf("  [%s] %-4s %3.0f%%  %s\n", a.CreatedAt, a.Prediction, a.Confidence*100, a.TextPreview)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of analyses to show")
}

// --- sources command ---

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured trusted sources and fact-checkers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat := catalog.New(cfg.Catalog)

		fmt.Println("Trusted sources:")
		for _, s := range cat.Trusted() {
			region := s.Region
			if region == "" {
				region = "international"
			}
			fmt.Printf("  %-12s %-24s %s\n", region, s.Name, s.Domain)
		}

		fmt.Println("\nFact-checkers:")
		for _, s := range cat.FactCheckers() {
			fmt.Printf("  %-24s %s\n", s.Name, s.Domain)
		}
		return nil
	},
}

func buildAnalyzer(db *database.DB, withExplain bool) *analyze.Analyzer {
	classifier := claim.New(cfg.Claim)
	cat := catalog.New(cfg.Catalog)
	client := search.NewClient(cfg.Search)

	verifier := verify.New(classifier, cat, client, cfg.Search.MaxWorkers)
	finder := related.New(classifier, cat, client, cfg.Search.MaxWorkers)
	detector := detect.NewHTTPDetector(cfg.Detector)

	var explainer *explain.Explainer
	if withExplain {
		provider := explain.CreateProvider(
			cfg.Explain.Provider,
			cfg.Explain.Model,
			cfg.Explain.OllamaURL,
			cfg.Explain.OpenAIModel,
			cfg.Explain.APIKeyEnv,
		)
		explainer = explain.New(provider, cfg.Explain.MaxTokens, cfg.Search.UserAgent, client)
	}

	return analyze.New(detector, verifier, finder, explainer, db)
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "hoaxcheck.db")
	return database.Open(dbPath)
}
