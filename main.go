package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/jakebf/folio/internal/analytics"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var version = ""

func getVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

var (
	flagConfig        string
	flagReducedMotion bool
	flagTheme         string
	flagEventsLimit   int
	flagEventsName    string
	flagForce         bool
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "A terminal portfolio with a typewriter intro and a particle field",
	Long: `folio shows a developer portfolio in the terminal.

The home page types out a short boot sequence over a field of drifting
particles that follow the mouse. Work lists case studies with a rendered
preview, and About shows the profile and contact details.

Configuration lives in ~/.config/folio/config.yaml and every key can be
overridden with a FOLIO_ environment variable (FOLIO_MOTION_REDUCED=true).`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("folio version %s\n", getVersion())
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recently recorded UI events",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(flagConfig)
		if err != nil {
			return err
		}
		return listEvents(cmd.Context(), cmd.OutOrStdout(), cfg.Analytics.DB, flagEventsName, flagEventsLimit)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(flagConfig)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !flagForce {
			printStatus("⚠", contractHome(path)+" already exists (use --force to overwrite)", color.FgYellow)
			return nil
		}
		if err := saveConfig(path, newDefaultConfig()); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		printStatus("✓", "Wrote "+contractHome(path), color.FgGreen)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.config/folio/config.yaml)")
	rootCmd.Flags().BoolVar(&flagReducedMotion, "reduced-motion", false, "disable typing and particle drift")
	rootCmd.Flags().StringVar(&flagTheme, "theme", "", "color theme: auto, dark or light")

	eventsCmd.Flags().IntVarP(&flagEventsLimit, "limit", "n", 20, "number of events to show (0 for all)")
	eventsCmd.Flags().StringVar(&flagEventsName, "name", "", "only show events with this name")
	configInitCmd.Flags().BoolVar(&flagForce, "force", false, "overwrite an existing config file")

	configCmd.AddCommand(configInitCmd, configPathCmd)
	rootCmd.AddCommand(versionCmd, eventsCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func resolveConfigPath() (string, error) {
	if flagConfig != "" {
		return expandHome(flagConfig), nil
	}
	return configPath()
}

// printStatus prints a status line with color
func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}

// setupLogging sends the standard logger to path, or discards it while the
// TUI owns the terminal.
func setupLogging(path string) (closeLog func(), err error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(path, "folio")
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return func() { f.Close() }, nil
}

func runTUI(cmd *cobra.Command) error {
	cfgPath, err := resolveConfigPath()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		printStatus("⚠", fmt.Sprintf("%v, using defaults", err), color.FgYellow)
	}
	if cmd.Flags().Changed("reduced-motion") {
		cfg.Motion.Reduced = flagReducedMotion
	}
	if flagTheme != "" {
		cfg.Theme = strings.ToLower(flagTheme)
		cfg.normalize()
	}

	originalOutput := log.Writer()
	defer log.SetOutput(originalOutput)
	closeLog, err := setupLogging(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	content, err := loadContent(cfg.ContentDir, cfg.Contact.Email)
	if err != nil {
		return err
	}

	var tracker analytics.Tracker = analytics.Discard
	if cfg.Analytics.Enabled {
		store, err := analytics.Open(cfg.Analytics.DB)
		if err != nil {
			log.Printf("analytics disabled: %v", err)
		} else {
			defer store.Close()
			tracker = store
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("could not start file watcher: %v", err)
	} else {
		defer watcher.Close()
		for _, p := range watchPaths(cfgPath, cfg.ContentDir) {
			if err := watcher.Add(p); err != nil {
				log.Printf("could not watch %s: %v", p, err)
			}
		}
	}

	m := newModel(cfg, cfgPath, content, tracker, watcher)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// listEvents prints recent events, newest first.
func listEvents(ctx context.Context, w io.Writer, dbPath, name string, limit int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(w, "No events recorded yet.")
		return nil
	}
	store, err := analytics.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	fetch := limit
	if name != "" {
		fetch = 0 // filter after reading
	}
	events, err := store.Recent(ctx, fetch)
	if err != nil {
		return err
	}

	nameColor := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.Faint)
	shown := 0
	for _, ev := range events {
		if name != "" && ev.Name != name {
			continue
		}
		if limit > 0 && shown == limit {
			break
		}
		shown++
		fmt.Fprintf(w, "%s  %s  %s\n",
			dim.Sprint(ev.At.Local().Format(time.DateTime)),
			nameColor.Sprintf("%-18s", ev.Name),
			formatProps(ev.Props))
	}
	if name != "" {
		total, err := store.Count(ctx, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d of %d %s events\n", shown, total, name)
	}
	return nil
}

func formatProps(props map[string]string) string {
	if len(props) == 0 {
		return ""
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + props[k]
	}
	return strings.Join(parts, " ")
}
