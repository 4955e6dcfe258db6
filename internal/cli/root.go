// Package cli implements the analyzer command line: one-shot analyses that
// write reports to disk, plus read-only views of the product catalog.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pagespeed-campaign/internal/analyses"
	"pagespeed-campaign/internal/catalog"
	"pagespeed-campaign/internal/crux"
	"pagespeed-campaign/internal/pagespeed"
	"pagespeed-campaign/internal/shared/config"
	"pagespeed-campaign/internal/shared/telemetry"
)

// EnvPrefix namespaces environment overrides of CLI flags, e.g. PSC_OUT_DIR.
const EnvPrefix = "PSC"

// Deps are the collaborators of the analyzer commands. Zero values are
// replaced with the production implementations.
type Deps struct {
	Config    config.Config
	In        io.Reader
	Out       io.Writer
	Err       io.Writer
	PageSpeed analyses.PageSpeedFetcher
	CrUX      analyses.CrUXFetcher
	Catalog   *catalog.Catalog
	Now       func() time.Time
	Open      func(target string) error
}

func (d Deps) withDefaults() Deps {
	if d.In == nil {
		d.In = os.Stdin
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.Err == nil {
		d.Err = os.Stderr
	}
	if d.PageSpeed == nil {
		d.PageSpeed = pagespeed.NewClient(d.Config.PageSpeedTimeout)
	}
	if d.CrUX == nil {
		d.CrUX = crux.NewClient(d.Config.CrUXTimeout)
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now() }
	}
	if d.Open == nil {
		d.Open = openInBrowser
	}
	return d
}

type app struct {
	deps    Deps
	v       *viper.Viper
	cfgFile string
}

// NewRootCommand builds the analyzer command tree. Each call gets its own
// viper instance so commands can be built and executed repeatedly.
func NewRootCommand(deps Deps) *cobra.Command {
	a := &app{deps: deps.withDefaults(), v: viper.New()}

	root := &cobra.Command{
		Use:   "analyzer",
		Short: "Azion PageSpeed Analyzer - marketing-focused performance analysis",
		Long: `Analyzes a website with PageSpeed Insights (and optionally CrUX History),
maps every failing audit to Azion products and writes an HTML report plus
marketing data for the sales team.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initConfig,
	}
	root.SetIn(a.deps.In)
	root.SetOut(a.deps.Out)
	root.SetErr(a.deps.Err)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (YAML)")
	pf.String("api-key", "", "PageSpeed Insights API key (default $PAGESPEED_INSIGHTS_API_KEY)")
	pf.String("catalog-dir", "", "directory with solutions.yaml and audit_mappings.yaml (default embedded)")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")
	bindFlags(a.v, pf)

	a.v.SetEnvPrefix(EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(a.analyzeCommand(), a.catalogCommand(), a.resolveCommand())
	return root
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		cobra.CheckErr(v.BindPFlag(f.Name, f))
	})
}

// initConfig reads the optional config file and points telemetry at stderr
// so log lines never mix with command output.
func (a *app) initConfig(cmd *cobra.Command, _ []string) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", a.cfgFile, err)
		}
	}
	telemetry.SetOutput(cmd.ErrOrStderr())
	telemetry.SetLevel(a.v.GetString("log-level"))
	return nil
}

func (a *app) apiKey() string {
	if key := strings.TrimSpace(a.v.GetString("api-key")); key != "" {
		return key
	}
	return a.deps.Config.PageSpeedAPIKey
}

func (a *app) catalog() (*catalog.Catalog, error) {
	if a.deps.Catalog != nil {
		return a.deps.Catalog, nil
	}
	dir := strings.TrimSpace(a.v.GetString("catalog-dir"))
	if dir == "" {
		dir = a.deps.Config.CatalogDir
	}
	if dir == "" {
		return catalog.Default()
	}
	return catalog.LoadDir(dir)
}
