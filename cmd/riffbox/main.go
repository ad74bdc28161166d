package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"riffbox/internal/app"
	"riffbox/internal/config"
	"riffbox/internal/encryption"
	"riffbox/internal/riffbox"
	"riffbox/internal/search"
)

var verbose bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "CreateCollection", "Search").
func newApp(ctx context.Context, operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(ctx, cfg, app.Options{
		Operation:  operation,
		Passphrase: app.PromptPassphrase("Passphrase: "),
		Verbose:    verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:          "riffbox",
	Short:        "Personal music video library",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults.BaseDir)
		if encrypt {
			cfg.Encryption.Type = "age"
			keys := encryption.NewAgeKeys(cfg.Encryption)
			if keys.IsConfigured() {
				return fmt.Errorf("age keys already exist at %s", cfg.Encryption.PrivateKeyPath)
			}
			passphrase, err := app.PromptPassphrase("New passphrase: ")()
			if err != nil {
				return err
			}
			if err := keys.Setup(passphrase); err != nil {
				return fmt.Errorf("generating age keys: %w", err)
			}
		}

		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("# %s\n", defaults.ConfigPath)
		m := &config.Manager{}
		return m.Write(os.Stdout, cfg)
	},
}

// collection command
var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Manage collections",
}

var collectionCreateCmd = &cobra.Command{
	Use:   "create PATH...",
	Short: "Create a collection from video files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "CreateCollection")
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := a.CreateCollection(args)
		if err != nil {
			if c.ID != "" {
				fmt.Printf("Collection %s saved with %d video(s) before the error\n", c.ID, len(c.Videos))
			}
			return fmt.Errorf("creating collection: %w", err)
		}

		fmt.Printf("Created %q (%s) with %d video(s)\n", c.Title, c.ID, len(c.Videos))
		return nil
	},
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "ListCollections")
		if err != nil {
			return err
		}
		defer a.Close()

		collections := a.ListCollections()
		if len(collections) == 0 {
			fmt.Println("No collections.")
			return nil
		}
		for _, c := range collections {
			fmt.Printf("%s  %-30s  %d video(s)\n", c.ID, c.Title, len(c.Videos))
		}
		return nil
	},
}

var collectionShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show the videos of a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "GetCollection")
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := a.GetCollection(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s (%s)\n", c.Title, c.ID)
		for _, v := range c.Videos {
			printVideo(v)
		}
		return nil
	},
}

// video command
var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Manage videos",
}

var videoUpdateCmd = &cobra.Command{
	Use:   "update COLLECTION_ID PATH",
	Short: "Edit video metadata",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var edit app.VideoEdit
		flags := cmd.Flags()
		for name, dst := range map[string]**string{"name": &edit.Name, "artist": &edit.Artist, "song": &edit.Song} {
			if flags.Changed(name) {
				v, _ := flags.GetString(name)
				*dst = &v
			}
		}
		if flags.Changed("style") {
			edit.Styles, _ = flags.GetStringSlice("style")
		}
		if flags.Changed("tag") {
			edit.Tags, _ = flags.GetStringArray("tag")
		}

		a, err := newApp(cmd.Context(), "UpdateVideo")
		if err != nil {
			return err
		}
		defer a.Close()

		v, err := a.UpdateVideo(args[0], args[1], edit)
		if err != nil {
			return fmt.Errorf("updating video: %w", err)
		}
		printVideo(v)
		return nil
	},
}

// search command
var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search videos by name, artist, song, style and tags",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd.Context(), "Search")
		if err != nil {
			return err
		}
		defer a.Close()

		videos, err := a.Search(strings.Join(args, " "), limit)
		for _, v := range videos {
			printVideo(v)
		}
		if err != nil {
			return err
		}
		if len(videos) == 0 {
			fmt.Println("No matches.")
		}
		return nil
	},
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API, event stream and inbox watcher",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, "Serve")
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Printf("Listening on http://%s\n", a.Config().Server.Listen)
		return a.Serve(ctx)
	},
}

func printVideo(v riffbox.Video) {
	fmt.Printf("%s\n", v.Path)
	fmt.Printf("  name: %s  artist: %s  song: %s\n", v.Name, v.Artist, v.Song)
	if len(v.Style) > 0 || len(v.Tags) > 0 {
		fmt.Printf("  style: %s  tags: %s\n", v.StyleText(), strings.Join(v.Tags, ", "))
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().Bool("encrypt", false, "Encrypt stored collections with a new age key pair")
	configCmd.AddCommand(configShowCmd)

	// collection subcommands
	collectionCmd.AddCommand(collectionCreateCmd)
	collectionCmd.AddCommand(collectionListCmd)
	collectionCmd.AddCommand(collectionShowCmd)

	// video subcommands
	videoCmd.AddCommand(videoUpdateCmd)
	videoUpdateCmd.Flags().String("name", "", "Display name")
	videoUpdateCmd.Flags().String("artist", "", "Artist")
	videoUpdateCmd.Flags().String("song", "", "Song title")
	videoUpdateCmd.Flags().StringSlice("style", nil, "Style (repeatable), e.g. --style Rock --style \"Hard Rock\"")
	videoUpdateCmd.Flags().StringArray("tag", nil, "Tag (repeatable)")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(collectionCmd)
	rootCmd.AddCommand(videoCmd)
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntP("limit", "n", search.MaxResults, "Maximum number of results (at most 50)")
	rootCmd.AddCommand(serveCmd)
}
