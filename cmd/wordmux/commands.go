package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bastiangx/wordmux/internal/cli"
	"github.com/bastiangx/wordmux/internal/logger"
	"github.com/bastiangx/wordmux/internal/utils"
	"github.com/bastiangx/wordmux/pkg/contacts"
	"github.com/bastiangx/wordmux/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	cliLimit    int
	cliNoFilter bool
)

func init() {
	cliCmd.Flags().IntVar(&cliLimit, "limit", 0, "Number of suggestions to show (default from config)")
	cliCmd.Flags().BoolVar(&cliNoFilter, "no-filter", false, "Disable input filtering (DBG only)")

	abbrevCmd.AddCommand(abbrevAddCmd, abbrevRemoveCmd)
	contactsCmd.AddCommand(contactsAddCmd, contactsListCmd)
	rootCmd.AddCommand(cliCmd, versionCmd, abbrevCmd, contactsCmd, packsCmd)
}

// runServer serves MessagePack requests on stdin/stdout until EOF.
func runServer(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()
	onSignal(a.close)

	srv := server.NewServer(a.provider, a.cfg, a.configPath)
	srv.SetReload(a.builders)
	showStartupInfo(a)

	if err := srv.Start(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

var cliCmd = &cobra.Command{
	Use:   "cli",
	Short: "Interactive shell for testing suggestions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		onSignal(a.close)
		log.SetReportTimestamp(false)

		limit := cliLimit
		if limit <= 0 {
			limit = a.cfg.CLI.DefaultLimit
		}
		noFilter := cliNoFilter || a.cfg.CLI.DefaultNoFilter
		log.Debug("Input info:", "limit", limit, "noFilter", noFilter)

		return cli.NewInputHandler(a.provider, limit, noFilter).Start()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the current version",
	Run: func(cmd *cobra.Command, args []string) {
		l := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)
		styles := log.DefaultStyles()
		styles.Values["version"] = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		l.SetStyles(styles)

		l.Print("")
		l.Print("[ wordmux ] Word suggestions from every source at once")
		l.Print("", "version", Version)
		l.Print("")
		l.Print("use -h or --help to see available options")
		l.Print("Github Repo", "gh", gh)
	},
}

var abbrevCmd = &cobra.Command{
	Use:   "abbrev",
	Short: "Manage abbreviations",
}

var abbrevAddCmd = &cobra.Command{
	Use:   "add <language> <abbreviation> <expansion...>",
	Short: "Add an abbreviation expansion",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		expansion := strings.Join(args[2:], " ")
		if err := a.db.AddAbbreviation(cmd.Context(), args[0], args[1], expansion); err != nil {
			return err
		}
		fmt.Printf("%s -> %s (%s)\n", args[1], expansion, args[0])
		return nil
	},
}

var abbrevRemoveCmd = &cobra.Command{
	Use:   "remove <language> <abbreviation>",
	Short: "Remove every expansion of an abbreviation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		return a.db.RemoveAbbreviation(cmd.Context(), args[0], args[1])
	},
}

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Manage the contacts file",
}

var contactsAddCmd = &cobra.Command{
	Use:   "add <name> [nickname]",
	Short: "Add a contact",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, configPath, err := loadConfig()
		if err != nil {
			return err
		}
		a := &app{cfg: cfg, configPath: configPath}
		file := contacts.File{Path: a.contactsPath()}

		list, err := file.Contacts(cmd.Context())
		if err != nil {
			return err
		}
		c := contacts.Contact{Name: args[0]}
		if len(args) == 2 {
			c.Nickname = args[1]
		}
		if err := utils.EnsureDir(filepath.Dir(file.Path)); err != nil {
			return err
		}
		return contacts.SaveFile(file.Path, append(list, c))
	},
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, configPath, err := loadConfig()
		if err != nil {
			return err
		}
		a := &app{cfg: cfg, configPath: configPath}
		list, err := contacts.File{Path: a.contactsPath()}.Contacts(cmd.Context())
		if err != nil {
			return err
		}
		for _, c := range list {
			if c.Nickname != "" {
				fmt.Printf("%s (%s)\n", c.Name, c.Nickname)
			} else {
				fmt.Println(c.Name)
			}
		}
		return nil
	},
}

var packsCmd = &cobra.Command{
	Use:   "packs",
	Short: "List the language packs that would be loaded",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, configPath, err := loadConfig()
		if err != nil {
			return err
		}
		a := &app{cfg: cfg, configPath: configPath}
		if err := a.resolvePacksDir(); err != nil {
			return err
		}
		builders, err := a.builders()
		if err != nil {
			return err
		}
		fmt.Printf("packs dir: %s\n", a.packsDir)
		for _, b := range builders {
			fmt.Printf("  %-16s %s\n", b.ID(), b.Language())
		}
		return nil
	},
}

// showStartupInfo logs basic info about the init process to stderr.
func showStartupInfo(a *app) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(currentLevel)

	st := a.provider.Stats()
	fmt.Fprintln(os.Stderr, "===========")
	fmt.Fprintln(os.Stderr, "  wordmux  ")
	fmt.Fprintln(os.Stderr, "===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("packs dir: ( %s )", a.packsDir)
	log.Infof("languages: %s", strings.Join(st.Languages, ", "))
	log.Infof("store: ( %s )", a.db.Path())
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "===========")
}
