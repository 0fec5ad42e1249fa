package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"gapy"
	"gapy/internal/config"
)

var (
	version = "0.1.0"

	rootCmd = &cobra.Command{
		Use:   "gapy",
		Short: "Query Google Analytics reporting and management APIs",
		Long: `gapy is a CLI for the Google Analytics reporting and management APIs.
It lists accounts, web properties, profiles and segments, and runs core
reporting and multi-channel funnel queries.

Examples:
  gapy config set --client-secrets ~/secrets.json
  gapy auth login
  gapy accounts list
  gapy profiles list --account 12345 --webproperty UA-12345-1
  gapy query ga --ids 67890 --start-date 2026-08-01 --end-date 2026-08-24 \
    --metrics pageviews --dimensions date --sort -pageviews`,
		Version: version,
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Configure credential sources and defaults stored in ~/.gapy/config.yaml",
	}

	authCmd = &cobra.Command{
		Use:   "auth",
		Short: "Manage stored credentials",
	}

	accountsCmd = &cobra.Command{
		Use:   "accounts",
		Short: "List Analytics accounts",
	}

	webpropertiesCmd = &cobra.Command{
		Use:   "webproperties",
		Short: "List web properties within an account",
	}

	profilesCmd = &cobra.Command{
		Use:   "profiles",
		Short: "List profiles within a web property",
	}

	segmentsCmd = &cobra.Command{
		Use:   "segments",
		Short: "List segments",
	}

	queryCmd = &cobra.Command{
		Use:   "query",
		Short: "Run report queries",
		Long:  "Run core reporting (ga) or multi-channel funnel (mcf) queries",
	}
)

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose logging")

	// Config subcommands
	configSetCmd := &cobra.Command{
		Use:   "set",
		Short: "Set configuration values",
		Run:   configSetCmdHandler,
	}
	configSetCmd.Flags().String("account-name", "", "Service account identifier (email)")
	configSetCmd.Flags().String("private-key", "", "Path to the service account private key")
	configSetCmd.Flags().String("client-secrets", "", "Path to the installed-application client secrets file")
	configSetCmd.Flags().String("token-path", "", "Token storage file (default ~/.gapy/token.json)")
	configSetCmd.Flags().Bool("readonly", false, "Request the read-only Analytics scope")
	configSetCmd.Flags().StringSlice("default-ids", nil, "Profile ids used when a query gives no --ids")

	configShowCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run:   configShowCmdHandler,
	}
	configCmd.AddCommand(configSetCmd, configShowCmd)

	// Auth subcommands
	authCmd.AddCommand(&cobra.Command{
		Use:   "login",
		Short: "Run the consent flow and store a credential",
		Run:   authLoginCmdHandler,
	})

	// Accounts subcommands
	accountsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		Run:   accountsListCmdHandler,
	})
	accountsCmd.AddCommand(&cobra.Command{
		Use:   "show [account-id]",
		Short: "Show a single account",
		Args:  cobra.ExactArgs(1),
		Run:   accountsShowCmdHandler,
	})

	// Webproperties subcommands
	webpropertiesListCmd := &cobra.Command{
		Use:   "list",
		Short: "List web properties for an account",
		Run:   webpropertiesListCmdHandler,
	}
	webpropertiesListCmd.Flags().String("account", "", "Account ID (required)")
	webpropertiesListCmd.MarkFlagRequired("account")

	webpropertiesShowCmd := &cobra.Command{
		Use:   "show [webproperty-id]",
		Short: "Show a single web property",
		Args:  cobra.ExactArgs(1),
		Run:   webpropertiesShowCmdHandler,
	}
	webpropertiesShowCmd.Flags().String("account", "", "Account ID (required)")
	webpropertiesShowCmd.MarkFlagRequired("account")
	webpropertiesCmd.AddCommand(webpropertiesListCmd, webpropertiesShowCmd)

	// Profiles subcommands
	profilesListCmd := &cobra.Command{
		Use:   "list",
		Short: "List profiles for a web property",
		Run:   profilesListCmdHandler,
	}
	profilesListCmd.Flags().String("account", "", "Account ID (required)")
	profilesListCmd.Flags().String("webproperty", "", "Web property ID (required)")
	profilesListCmd.MarkFlagRequired("account")
	profilesListCmd.MarkFlagRequired("webproperty")

	profilesShowCmd := &cobra.Command{
		Use:   "show [profile-id]",
		Short: "Show a single profile",
		Args:  cobra.ExactArgs(1),
		Run:   profilesShowCmdHandler,
	}
	profilesShowCmd.Flags().String("account", "", "Account ID (required)")
	profilesShowCmd.Flags().String("webproperty", "", "Web property ID (required)")
	profilesShowCmd.MarkFlagRequired("account")
	profilesShowCmd.MarkFlagRequired("webproperty")
	profilesCmd.AddCommand(profilesListCmd, profilesShowCmd)

	// Segments subcommands
	segmentsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all segments",
		Run:   segmentsListCmdHandler,
	})

	// Query subcommands
	queryGaCmd := &cobra.Command{
		Use:   "ga",
		Short: "Run a core reporting query",
		Run:   queryGaCmdHandler,
	}
	queryMcfCmd := &cobra.Command{
		Use:   "mcf",
		Short: "Run a multi-channel funnel query",
		Run:   queryMcfCmdHandler,
	}
	for _, cmd := range []*cobra.Command{queryGaCmd, queryMcfCmd} {
		cmd.Flags().StringSlice("ids", nil, "Profile ids (defaults to configured default_ids)")
		cmd.Flags().String("start-date", "", "Start date, YYYY-MM-DD")
		cmd.Flags().String("end-date", "", "End date, YYYY-MM-DD")
		cmd.Flags().StringSlice("metrics", nil, "Metrics (required unless --file is given)")
		cmd.Flags().StringSlice("dimensions", nil, "Dimensions")
		cmd.Flags().StringSlice("filters", nil, "Filters")
		cmd.Flags().StringSlice("sort", nil, "Sort keys, prefix with - for descending")
		cmd.Flags().Int("max-results", 0, "Maximum rows per page")
		cmd.Flags().String("segment", "", "Segment")
		cmd.Flags().String("file", "", "Read the query from a YAML file instead of flags")
		cmd.Flags().Bool("all-pages", false, "Follow pagination until all rows are fetched")
		cmd.Flags().String("format", "json", "Output format: json or csv")
	}
	queryCmd.AddCommand(queryGaCmd, queryMcfCmd)

	rootCmd.AddCommand(configCmd, authCmd, accountsCmd, webpropertiesCmd, profilesCmd, segmentsCmd, queryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// newLogger builds the CLI logger. Without --verbose all logging is off;
// command output goes to stdout directly.
func newLogger(cmd *cobra.Command) *zap.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// queryLogHook adapts a zap logger into a query instrumentation hook.
func queryLogHook(logger *zap.Logger) gapy.Hook {
	return func(params url.Values) {
		logger.Debug("executing query", zap.String("params", params.Encode()))
	}
}

// newAnalyticsClient builds a gapy client from the stored configuration.
func newAnalyticsClient(ctx context.Context, cmd *cobra.Command) (*gapy.Client, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.HasCredentials() {
		return nil, fmt.Errorf("no credentials configured - run 'gapy config set' first")
	}

	tokenPath := cfg.TokenPath
	if tokenPath == "" {
		tokenPath, err = config.DefaultTokenPath()
		if err != nil {
			return nil, err
		}
	}

	hook := queryLogHook(newLogger(cmd))

	if cfg.ClientSecretsPath != "" {
		return gapy.FromSecretsFile(ctx, cfg.ClientSecretsPath, gapy.SecretsConfig{
			StoragePath: tokenPath,
			ReadOnly:    cfg.ReadOnly,
			Hook:        hook,
		})
	}

	return gapy.FromPrivateKey(ctx, gapy.KeyConfig{
		AccountName:    cfg.AccountName,
		PrivateKeyPath: cfg.PrivateKeyPath,
		StoragePath:    tokenPath,
		ReadOnly:       cfg.ReadOnly,
		Hook:           hook,
	})
}

func configSetCmdHandler(cmd *cobra.Command, args []string) {
	cfg, err := config.LoadConfig()
	if err != nil {
		fail("failed to load config: %v", err)
	}

	if v, _ := cmd.Flags().GetString("account-name"); v != "" {
		cfg.AccountName = v
	}
	if v, _ := cmd.Flags().GetString("private-key"); v != "" {
		cfg.PrivateKeyPath = v
	}
	if v, _ := cmd.Flags().GetString("client-secrets"); v != "" {
		cfg.ClientSecretsPath = v
	}
	if v, _ := cmd.Flags().GetString("token-path"); v != "" {
		cfg.TokenPath = v
	}
	if cmd.Flags().Changed("readonly") {
		cfg.ReadOnly, _ = cmd.Flags().GetBool("readonly")
	}
	if cmd.Flags().Changed("default-ids") {
		cfg.DefaultIDs, _ = cmd.Flags().GetStringSlice("default-ids")
	}

	if err := config.SaveConfig(cfg); err != nil {
		fail("failed to save config: %v", err)
	}
	fmt.Println("Configuration saved")
}

func configShowCmdHandler(cmd *cobra.Command, args []string) {
	cfg, err := config.LoadConfig()
	if err != nil {
		fail("failed to load config: %v", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		fail("failed to render config: %v", err)
	}
	fmt.Print(string(data))
}

func authLoginCmdHandler(cmd *cobra.Command, args []string) {
	// Constructing the client runs the consent flow when no valid stored
	// credential exists, and persists the result.
	if _, err := newAnalyticsClient(cmd.Context(), cmd); err != nil {
		fail("login failed: %v", err)
	}
	fmt.Println("Credential stored")
}

func accountsListCmdHandler(cmd *cobra.Command, args []string) {
	client, err := newAnalyticsClient(cmd.Context(), cmd)
	if err != nil {
		fail("%v", err)
	}
	resp, err := client.Management().Accounts(cmd.Context())
	if err != nil {
		fail("failed to list accounts: %v", err)
	}
	printItems(resp.Items())
}

func accountsShowCmdHandler(cmd *cobra.Command, args []string) {
	client, err := newAnalyticsClient(cmd.Context(), cmd)
	if err != nil {
		fail("%v", err)
	}
	item, err := client.Management().Account(cmd.Context(), args[0])
	if err != nil {
		fail("failed to look up account: %v", err)
	}
	printItems([]gapy.Item{item})
}

func webpropertiesListCmdHandler(cmd *cobra.Command, args []string) {
	account, _ := cmd.Flags().GetString("account")
	client, err := newAnalyticsClient(cmd.Context(), cmd)
	if err != nil {
		fail("%v", err)
	}
	resp, err := client.Management().Webproperties(cmd.Context(), account)
	if err != nil {
		fail("failed to list web properties: %v", err)
	}
	printItems(resp.Items())
}

func webpropertiesShowCmdHandler(cmd *cobra.Command, args []string) {
	account, _ := cmd.Flags().GetString("account")
	client, err := newAnalyticsClient(cmd.Context(), cmd)
	if err != nil {
		fail("%v", err)
	}
	item, err := client.Management().Webproperty(cmd.Context(), account, args[0])
	if err != nil {
		fail("failed to look up web property: %v", err)
	}
	printItems([]gapy.Item{item})
}

func profilesListCmdHandler(cmd *cobra.Command, args []string) {
	account, _ := cmd.Flags().GetString("account")
	webproperty, _ := cmd.Flags().GetString("webproperty")
	client, err := newAnalyticsClient(cmd.Context(), cmd)
	if err != nil {
		fail("%v", err)
	}
	resp, err := client.Management().Profiles(cmd.Context(), account, webproperty)
	if err != nil {
		fail("failed to list profiles: %v", err)
	}
	printItems(resp.Items())
}

func profilesShowCmdHandler(cmd *cobra.Command, args []string) {
	account, _ := cmd.Flags().GetString("account")
	webproperty, _ := cmd.Flags().GetString("webproperty")
	client, err := newAnalyticsClient(cmd.Context(), cmd)
	if err != nil {
		fail("%v", err)
	}
	item, err := client.Management().Profile(cmd.Context(), account, webproperty, args[0])
	if err != nil {
		fail("failed to look up profile: %v", err)
	}
	printItems([]gapy.Item{item})
}

func segmentsListCmdHandler(cmd *cobra.Command, args []string) {
	client, err := newAnalyticsClient(cmd.Context(), cmd)
	if err != nil {
		fail("%v", err)
	}
	resp, err := client.Management().Segments(cmd.Context())
	if err != nil {
		fail("failed to list segments: %v", err)
	}
	printItems(resp.Items())
}

func queryGaCmdHandler(cmd *cobra.Command, args []string) {
	runQueryCmd(cmd, false)
}

func queryMcfCmdHandler(cmd *cobra.Command, args []string) {
	runQueryCmd(cmd, true)
}

// queryFile is the on-disk YAML form of a report query. List fields accept
// a single scalar or a sequence.
type queryFile struct {
	IDs        gapy.List `yaml:"ids"`
	StartDate  string    `yaml:"start_date"`
	EndDate    string    `yaml:"end_date"`
	Metrics    gapy.List `yaml:"metrics"`
	Dimensions gapy.List `yaml:"dimensions"`
	Filters    gapy.List `yaml:"filters"`
	Sort       gapy.List `yaml:"sort"`
	MaxResults int       `yaml:"max_results"`
	Segment    string    `yaml:"segment"`
}

func runQueryCmd(cmd *cobra.Command, mcf bool) {
	query, err := buildQuery(cmd)
	if err != nil {
		fail("%v", err)
	}

	client, err := newAnalyticsClient(cmd.Context(), cmd)
	if err != nil {
		fail("%v", err)
	}

	run := client.Query().GetGA
	if mcf {
		run = client.Query().GetMCF
	}

	resp, err := run(cmd.Context(), query)
	if err != nil {
		fail("query failed: %v", err)
	}

	pages := []*gapy.QueryResponse{resp}
	if allPages, _ := cmd.Flags().GetBool("all-pages"); allPages {
		for resp.HasNext() {
			resp, err = resp.Next(cmd.Context())
			if err != nil {
				fail("failed to fetch next page: %v", err)
			}
			pages = append(pages, resp)
		}
	}

	format, _ := cmd.Flags().GetString("format")
	if err := writeResults(os.Stdout, format, pages); err != nil {
		fail("failed to write results: %v", err)
	}
}

func buildQuery(cmd *cobra.Command) (gapy.Query, error) {
	var query gapy.Query
	var startDate, endDate string

	if file, _ := cmd.Flags().GetString("file"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return query, fmt.Errorf("failed to read query file: %w", err)
		}
		var qf queryFile
		if err := yaml.Unmarshal(data, &qf); err != nil {
			return query, fmt.Errorf("failed to parse query file: %w", err)
		}
		query = gapy.Query{
			IDs:        qf.IDs,
			Metrics:    qf.Metrics,
			Dimensions: qf.Dimensions,
			Filters:    qf.Filters,
			Sort:       qf.Sort,
			MaxResults: qf.MaxResults,
			Segment:    qf.Segment,
		}
		startDate, endDate = qf.StartDate, qf.EndDate
	} else {
		ids, _ := cmd.Flags().GetStringSlice("ids")
		metrics, _ := cmd.Flags().GetStringSlice("metrics")
		dimensions, _ := cmd.Flags().GetStringSlice("dimensions")
		filters, _ := cmd.Flags().GetStringSlice("filters")
		sort, _ := cmd.Flags().GetStringSlice("sort")
		maxResults, _ := cmd.Flags().GetInt("max-results")
		segment, _ := cmd.Flags().GetString("segment")
		query = gapy.Query{
			IDs:        ids,
			Metrics:    metrics,
			Dimensions: dimensions,
			Filters:    filters,
			Sort:       sort,
			MaxResults: maxResults,
			Segment:    segment,
		}
		startDate, _ = cmd.Flags().GetString("start-date")
		endDate, _ = cmd.Flags().GetString("end-date")
	}

	if len(query.IDs) == 0 {
		cfg, err := config.LoadConfig()
		if err != nil {
			return query, err
		}
		query.IDs = cfg.DefaultIDs
	}

	var err error
	if query.StartDate, err = time.Parse("2006-01-02", startDate); err != nil {
		return query, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	if query.EndDate, err = time.Parse("2006-01-02", endDate); err != nil {
		return query, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}
	return query, nil
}

// writeResults renders query pages as JSON or CSV. Rows from all pages are
// concatenated in fetch order.
func writeResults(w io.Writer, format string, pages []*gapy.QueryResponse) error {
	switch format {
	case "json":
		return writeJSON(w, pages)
	case "csv":
		return writeCSV(w, pages)
	default:
		return fmt.Errorf("unknown format %q (want json or csv)", format)
	}
}

type jsonRow struct {
	Dimensions map[string]string `json:"dimensions,omitempty"`
	Metrics    map[string]string `json:"metrics"`
}

type jsonResult struct {
	TotalResults        int               `json:"total_results"`
	ContainsSampledData bool              `json:"contains_sampled_data"`
	Totals              map[string]string `json:"totals,omitempty"`
	Rows                []jsonRow         `json:"rows"`
}

func writeJSON(w io.Writer, pages []*gapy.QueryResponse) error {
	first := pages[0]
	result := jsonResult{
		TotalResults:        first.TotalResults(),
		ContainsSampledData: first.ContainsSampledData(),
		Totals:              first.Totals(),
	}
	for _, page := range pages {
		for row := range page.Rows() {
			jr := jsonRow{Metrics: make(map[string]string, len(row.Metrics))}
			if len(row.Dimensions) > 0 {
				jr.Dimensions = make(map[string]string, len(row.Dimensions))
				for name, v := range row.Dimensions {
					jr.Dimensions[name] = v.String()
				}
			}
			for name, v := range row.Metrics {
				jr.Metrics[name] = v.String()
			}
			result.Rows = append(result.Rows, jr)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func writeCSV(w io.Writer, pages []*gapy.QueryResponse) error {
	first := pages[0]
	header := append(append([]string{}, first.DimensionNames()...), first.MetricNames()...)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, page := range pages {
		for row := range page.Rows() {
			record := make([]string, 0, len(header))
			for _, name := range first.DimensionNames() {
				record = append(record, row.Dimensions[name].String())
			}
			for _, name := range first.MetricNames() {
				record = append(record, row.Metrics[name].String())
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func printItems(items []gapy.Item) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		fail("failed to render output: %v", err)
	}
}
