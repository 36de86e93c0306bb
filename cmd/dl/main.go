package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dubline/internal/board"
	"dubline/internal/config"
	"dubline/internal/domain"
	"dubline/internal/duration"
	"dubline/internal/notify"
	"dubline/internal/payment"
	"dubline/internal/rates"
	"dubline/internal/report"
	"dubline/internal/roles"
	"dubline/internal/server"
	"dubline/internal/upload"
	"dubline/internal/workload"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
})

var rootCmd = &cobra.Command{
	Use:   "dl",
	Short: "Dubline CLI",
	Long: `Dubline turns a dubbing production board into workload and payment reports.
Core concepts:
- Snapshot: one JSON export of the whole board (lists, cards, checklists, comments).
- Workload: checklist items on the recording list, attributed to speakers by name.
- Payment: per-minute rates by role (narrator, male/female speaker, project owner),
  with label-driven rate swaps and express surcharges.
- Duration: video length in minutes, read from linked spreadsheets and cached
  locally; unresolved durations are reported, never guessed.
- Notify: one email per card whose checklist just became complete.`,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()
	viper.SetEnvPrefix("DUBLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("snapshot", "", "snapshot file (default <workspace>/trello_cards_detailed.json)")
	rootCmd.PersistentFlags().String("reports", "", "reports directory (default <workspace>/reports)")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("snapshot", rootCmd.PersistentFlags().Lookup("snapshot"))
	_ = viper.BindPFlag("reports", rootCmd.PersistentFlags().Lookup("reports"))
}

func registerCommands() {
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(fetchCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(minutesCmd())
	rootCmd.AddCommand(notifyCmd())
	rootCmd.AddCommand(uploadCmd())
	rootCmd.AddCommand(serveCmd())
}

func snapshotPath() string {
	if p := viper.GetString("snapshot"); p != "" {
		return p
	}
	return filepath.Join(viper.GetString("workspace"), "trello_cards_detailed.json")
}

func reportsDir() string {
	if p := viper.GetString("reports"); p != "" {
		return p
	}
	return filepath.Join(viper.GetString("workspace"), "reports")
}

func loadConfig() (*config.Config, error) {
	return config.LoadOptional(viper.GetString("workspace"))
}

func loadSnapshot() (board.Snapshot, error) {
	snap, err := board.LoadSnapshot(snapshotPath())
	if err != nil {
		return board.Snapshot{}, fmt.Errorf("load snapshot: %w (run dl fetch first)", err)
	}
	return snap, nil
}

func cachePath(cfg *config.Config) string {
	p := cfg.Duration.CachePath
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(viper.GetString("workspace"), p)
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default dubline.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			logger.Info("config written", "path", path)
			return nil
		},
	}
}

func fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the board into a local snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			key := strings.TrimSpace(os.Getenv("TRELLO_API_KEY"))
			token := strings.TrimSpace(os.Getenv("TRELLO_TOKEN"))
			if key == "" || token == "" {
				return fmt.Errorf("TRELLO_API_KEY and TRELLO_TOKEN must be set")
			}
			client := board.NewClient(key, token, logger)
			snap, err := client.FetchBoard(cmd.Context(), cfg.Board.Name)
			if err != nil {
				return err
			}
			if err := board.SaveSnapshot(snapshotPath(), snap); err != nil {
				return err
			}
			total := 0
			for _, cards := range snap.CardsByList {
				total += len(cards)
			}
			logger.Info("snapshot saved", "path", snapshotPath(), "lists", len(snap.CardsByList), "cards", total)
			return nil
		},
	}
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "report", Short: "Generate reports from the snapshot"}
	cmd.AddCommand(reportPaymentCmd())
	cmd.AddCommand(reportWorkloadCmd())
	cmd.AddCommand(reportCompletedCmd())
	cmd.AddCommand(reportAllCmd())
	return cmd
}

func reportPaymentCmd() *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Compute payments for eligible projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			snap, err := loadSnapshot()
			if err != nil {
				return err
			}
			payments, months, cache, err := computePayments(cmd.Context(), cfg, snap, offline)
			if err != nil {
				return err
			}
			if err := cache.Save(); err != nil {
				return err
			}
			gen := report.NewGenerator(reportsDir(), logger)
			files, err := gen.Payment(payments, months)
			if err != nil {
				return err
			}
			if _, err := gen.WriteManifest(files); err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(map[string]any{"projects": payments, "months": months})
			}
			printPaymentSummary(payments)
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "use only cached durations, no network")
	return cmd
}

func computePayments(ctx context.Context, cfg *config.Config, snap board.Snapshot, offline bool) ([]domain.ProjectPayment, []domain.MonthlySummary, *duration.Cache, error) {
	cutoff, err := cfg.CutoffDate()
	if err != nil {
		return nil, nil, nil, err
	}
	start, err := cfg.RollupStartMonth()
	if err != nil {
		return nil, nil, nil, err
	}

	cache := duration.LoadCache(cachePath(cfg))
	resolver := duration.NewResolver(cache, logger)
	resolver.Network = cfg.Duration.Network && !offline
	resolver.Budget = time.Duration(cfg.Duration.BudgetSeconds) * time.Second
	resolver.Client.Timeout = time.Duration(cfg.Duration.RequestTimeoutSeconds) * time.Second
	resolver.MaxLinks = cfg.Duration.MaxLinks

	policy := rates.Default()
	if cfg.Payment.Rates.Narrator > 0 {
		policy.Narrator = cfg.Payment.Rates.Narrator
		policy.SpeakerMale = cfg.Payment.Rates.SpeakerMale
		policy.SpeakerFemale = cfg.Payment.Rates.SpeakerFemale
		policy.Owner = cfg.Payment.Rates.Owner
		policy.OwnerExpress = cfg.Payment.Rates.OwnerExpress
		policy.ExpressBump = cfg.Payment.Rates.ExpressBump
	}
	if cfg.Payment.Labels.Express != "" {
		policy.ExpressLabel = strings.ToLower(cfg.Payment.Labels.Express)
	}
	if cfg.Payment.Labels.Swap != "" {
		policy.SwapLabel = strings.ToLower(cfg.Payment.Labels.Swap)
	}

	engine := payment.Engine{
		Roles:      roles.NewTable(cfg.Roles.Narrators, cfg.Roles.Female, cfg.Roles.Male),
		Rates:      policy,
		Resolver:   resolver,
		Cutoff:     cutoff,
		StartMonth: start,
	}
	projects := snap.Projects(cfg.Board.DoneList, cfg.Board.SourceList)
	payments := engine.Compute(ctx, projects)
	months := engine.Rollup(payments)
	return payments, months, cache, nil
}

func reportWorkloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "workload",
		Short: "Analyze speaker workload on the recording list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			snap, err := loadSnapshot()
			if err != nil {
				return err
			}
			analysis := workload.NewAnalyzer(speakerRoster(cfg)).
				Analyze(&snap, cfg.Board.SourceList, cfg.Board.ReviewList, cfg.Board.DoneList)
			gen := report.NewGenerator(reportsDir(), logger)
			files, err := gen.Workload(analysis, cfg.Speakers)
			if err != nil {
				return err
			}
			if _, err := gen.WriteManifest(files); err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(analysis)
			}
			printWorkloadSummary(analysis)
			return nil
		},
	}
}

func reportCompletedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completed",
		Short: "Report finished projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			snap, err := loadSnapshot()
			if err != nil {
				return err
			}
			projects := snap.Projects(cfg.Board.DoneList)
			gen := report.NewGenerator(reportsDir(), logger)
			files, err := gen.Completed(projects)
			if err != nil {
				return err
			}
			if _, err := gen.WriteManifest(files); err != nil {
				return err
			}
			return printJSONOrTable(map[string]any{"projects": len(projects), "files": files})
		},
	}
}

func reportAllCmd() *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Generate every report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			snap, err := loadSnapshot()
			if err != nil {
				return err
			}
			gen := report.NewGenerator(reportsDir(), logger)
			var files []string

			analysis := workload.NewAnalyzer(speakerRoster(cfg)).
				Analyze(&snap, cfg.Board.SourceList, cfg.Board.ReviewList, cfg.Board.DoneList)
			workloadFiles, err := gen.Workload(analysis, cfg.Speakers)
			if err != nil {
				return err
			}
			files = append(files, workloadFiles...)

			completedFiles, err := gen.Completed(snap.Projects(cfg.Board.DoneList))
			if err != nil {
				return err
			}
			files = append(files, completedFiles...)

			payments, months, cache, err := computePayments(cmd.Context(), cfg, snap, offline)
			if err != nil {
				return err
			}
			if err := cache.Save(); err != nil {
				return err
			}
			paymentFiles, err := gen.Payment(payments, months)
			if err != nil {
				return err
			}
			files = append(files, paymentFiles...)

			manifest, err := gen.WriteManifest(files)
			if err != nil {
				return err
			}
			logger.Info("reports generated", "count", len(files), "manifest", manifest)
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "use only cached durations, no network")
	return cmd
}

func minutesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "minutes", Short: "Manage the duration cache"}
	cmd.AddCommand(minutesSetCmd())
	return cmd
}

func minutesSetCmd() *cobra.Command {
	var query string
	var minutes, pick int
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store a manual duration for a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if minutes <= 0 {
				return fmt.Errorf("--minutes must be > 0")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			snap, err := loadSnapshot()
			if err != nil {
				return err
			}
			matches := snap.FindCards(query)
			if len(matches) == 0 {
				return fmt.Errorf("no cards matched query %q", query)
			}
			if !viper.GetBool("json") {
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"#", "List", "Card", "ID"})
				for i, m := range matches {
					tw.AppendRow(table.Row{i + 1, m.List, m.Card.Name, m.Card.ID})
				}
				tw.Render()
			}
			if pick < 1 || pick > len(matches) {
				return fmt.Errorf("--pick must be between 1 and %d", len(matches))
			}
			chosen := matches[pick-1]
			cache := duration.LoadCache(cachePath(cfg))
			cache.Set(chosen.Card.ID, minutes)
			if err := cache.Save(); err != nil {
				return err
			}
			logger.Info("minutes saved", "card", chosen.Card.Name, "id", chosen.Card.ID, "minutes", minutes)
			return nil
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "project name substring")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "minutes to store")
	cmd.Flags().IntVar(&pick, "pick", 1, "pick the Nth match when several cards match")
	_ = cmd.MarkFlagRequired("query")
	_ = cmd.MarkFlagRequired("minutes")
	return cmd
}

func notifyCmd() *cobra.Command {
	var statePath, listName string
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Email about cards whose checklist became complete",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			snap, err := loadSnapshot()
			if err != nil {
				return err
			}
			if listName == "" {
				listName = cfg.Board.SourceList
			}
			if statePath == "" {
				statePath = filepath.Join(viper.GetString("workspace"), "checklist_notify_state.json")
			}
			mailCfg, err := notify.MailConfigFromEnv()
			if err != nil {
				return err
			}
			n := &notify.Notifier{
				State:  notify.LoadState(statePath),
				Sender: &notify.SMTPSender{Config: mailCfg},
				Log:    logger,
			}
			notified, err := n.Run(&snap, listName)
			if err != nil {
				return err
			}
			if len(notified) == 0 {
				logger.Info("nothing new to notify")
				return nil
			}
			return printJSONOrTable(map[string]any{"notified": notified})
		},
	}
	cmd.Flags().StringVar(&statePath, "state", "", "state file (default <workspace>/checklist_notify_state.json)")
	cmd.Flags().StringVar(&listName, "list", "", "only process cards from this list")
	return cmd
}

func uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload",
		Short: "Upload HTML reports over SFTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, password, err := upload.TargetFromEnv()
			if err != nil {
				return err
			}
			u := &upload.Uploader{Target: target, Password: password, Log: logger}
			return u.Upload(reportsDir(), []string{
				"speaker_workload_report.html",
				"completed_projects_report.html",
			})
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generated reports for preview",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := &http.Server{Addr: addr, Handler: server.New(reportsDir())}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			logger.Info("serving reports", "addr", "http://"+addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	return cmd
}

// speakerRoster builds the workload roster: profile names first in config
// order, then any role aliases not already present.
func speakerRoster(cfg *config.Config) []string {
	seen := map[string]bool{}
	var roster []string
	add := func(name string) {
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			return
		}
		seen[key] = true
		roster = append(roster, name)
	}
	profileNames := make([]string, 0, len(cfg.Speakers))
	for name := range cfg.Speakers {
		profileNames = append(profileNames, name)
	}
	sort.Strings(profileNames)
	for _, name := range profileNames {
		add(name)
	}
	for _, group := range [][]string{cfg.Roles.Narrators, cfg.Roles.Female, cfg.Roles.Male} {
		for _, alias := range group {
			add(titleCase(alias))
		}
	}
	return roster
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func printPaymentSummary(payments []domain.ProjectPayment) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Project", "Due", "Minutes", "Entries", "Total"})
	for _, p := range payments {
		due := ""
		if p.Project.Due != nil {
			due = p.Project.Due.Format("2006-01-02")
		}
		minutes := "?"
		if p.Minutes != nil {
			minutes = fmt.Sprintf("%d", *p.Minutes)
		}
		total := "UNRESOLVED"
		if p.Total != nil {
			total = fmt.Sprintf("%.2f", *p.Total)
		}
		tw.AppendRow(table.Row{p.Project.Name, due, minutes, len(p.Entries), total})
	}
	tw.Render()
}

func printWorkloadSummary(a workload.Analysis) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Speaker", "Total", "Completed", "Pending", "Rate", "Rating"})
	for _, s := range a.Speakers {
		tw.AppendRow(table.Row{s.Name, s.Total(), s.Completed, s.Pending, fmt.Sprintf("%.1f%%", s.CompletionRate()), s.Rating()})
	}
	tw.Render()
	for _, w := range a.Warnings {
		logger.Warn(w)
	}
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
