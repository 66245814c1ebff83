package config

import (
	"os"
	"strings"

	"sqlcheck/internal/auditor"
	"sqlcheck/internal/model"
	"sqlcheck/internal/reporter"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Keys shared by flags, the config file and SQLCHECK_* environment variables.
const (
	KeyRiskLevel     = "risk-level"
	KeyVerbose       = "verbose"
	KeyColor         = "color"
	KeyOutput        = "output"
	KeyExclude       = "exclude"
	KeyDisable       = "disable"
	KeyJobs          = "jobs"
	KeyFailOnError   = "fail-on-error"
	KeyFailOnWarning = "fail-on-warning"
	KeyDebug         = "debug"
)

const (
	EnvPrefix = "SQLCHECK"
	FileName  = ".sqlcheck"
)

// Settings is the validated, typed form of one run's configuration.
type Settings struct {
	Config        model.Config
	Format        reporter.Format
	Excludes      []string
	Disabled      []string
	Jobs          int
	FailOnError   bool
	FailOnWarning bool
	Debug         bool

	// Catalog is the default catalog minus the disabled rules.
	Catalog *auditor.Catalog
}

// New returns a viper instance with defaults and environment binding applied.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyRiskLevel, int(model.TierAll))
	v.SetDefault(KeyOutput, string(reporter.FormatText))
	v.SetDefault(KeyExclude, []string{".git", "vendor", "node_modules"})
	v.SetDefault(KeyJobs, 4)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// ReadConfig loads cfgFile, or searches $HOME and the working directory for
// .sqlcheck.yaml. A missing file is not an error unless it was named explicitly.
func ReadConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(FileName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "read config")
	}
	return nil
}

// Load validates every setting once, before any input is read.
func Load(v *viper.Viper, catalog *auditor.Catalog) (*Settings, error) {
	if catalog == nil {
		return nil, errors.New("config: nil catalog")
	}

	tier, err := model.ParseRiskTier(v.GetInt(KeyRiskLevel))
	if err != nil {
		return nil, err
	}

	format, err := reporter.ParseFormat(strings.ToLower(v.GetString(KeyOutput)))
	if err != nil {
		return nil, err
	}

	jobs := v.GetInt(KeyJobs)
	if jobs < 1 {
		return nil, errors.Errorf("invalid jobs %d: must be at least 1", jobs)
	}

	disabled := v.GetStringSlice(KeyDisable)
	active, err := catalog.Without(disabled...)
	if err != nil {
		return nil, err
	}

	s := &Settings{
		Config: model.Config{
			MinRisk: tier,
			Verbose: v.GetBool(KeyVerbose),
			Color:   v.GetBool(KeyColor),
		},
		Format:        format,
		Excludes:      v.GetStringSlice(KeyExclude),
		Disabled:      disabled,
		Jobs:          jobs,
		FailOnError:   v.GetBool(KeyFailOnError),
		FailOnWarning: v.GetBool(KeyFailOnWarning),
		Debug:         v.GetBool(KeyDebug),
		Catalog:       active,
	}
	return s, nil
}
