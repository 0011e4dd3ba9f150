package commands

import (
	"log/slog"
	"os"
	"time"

	"bunpro-assist/lib/configutil"
	"bunpro-assist/lib/restyutil"
	"bunpro-assist/lib/scrapers/bunpro"
	"bunpro-assist/lib/serviceutil"
	"bunpro-assist/services/grammar"

	"github.com/spf13/cobra"
)

type Config struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// BaseUrl overrides the live site, mostly useful against a local fixture
	BaseUrl string `json:"base_url"`
	// Snapshot is the path the grammar snapshot is written to
	Snapshot string `json:"snapshot"`
}

// readConfig merges config.json5 with environment overrides. A missing
// config file is fine, env-only setups are supported.
func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to read config", err)
	}
	if email := os.Getenv("BUNPRO_EMAIL"); email != "" {
		cfg.Email = email
	}
	if password := os.Getenv("BUNPRO_PASSWORD"); password != "" {
		cfg.Password = password
	}
	return cfg
}

var fetchSnapshot *string

func init() {
	fetchSnapshot = fetchCmd.Flags().String("out", "", "The file to write the snapshot to.")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [--out <path/to/snapshot.json>]",
	Short: "Logs into Bunpro, scrapes your study data and writes the snapshot file.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		if cfg.Email == "" || cfg.Password == "" {
			slog.Error("no credentials, set BUNPRO_EMAIL and BUNPRO_PASSWORD or add them to config.json5")
			os.Exit(1)
		}

		snapshotPath := cfg.Snapshot
		if *fetchSnapshot != "" {
			snapshotPath = *fetchSnapshot
		}

		bunpro.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/bunpro"))

		service := grammar.NewService(grammar.ServiceOptions{
			Client: bunpro.ClientOptions{BaseUrl: cfg.BaseUrl},
			Store:  grammar.NewStore(snapshotPath),
		})

		slog.Info("fetching study data", "email", cfg.Email)

		t1 := time.Now()
		data, err := service.Refresh(cmd.Context(), bunpro.Credentials{
			Email:    cfg.Email,
			Password: cfg.Password,
		})
		if err != nil {
			serviceutil.Fatal("failed to fetch study data", err)
		}
		t2 := time.Now()

		slog.Info(
			"fetched study data",
			"troubled_grammar", len(data.TroubledGrammar),
			"ghost_reviews", len(data.GhostReviews),
			"seconds", t2.Sub(t1).Seconds(),
		)
	},
}
