// Package config loads vidmark settings from, in rising precedence:
// built-in defaults, a .vidmark.yaml file (working directory or home),
// and VIDMARK_* environment variables. A .env file in the working
// directory is folded into the environment first.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"tableflip.dev/vidmark/pkg/editor"
	"tableflip.dev/vidmark/pkg/spacing"
)

// Config carries everything the commands wire up at startup.
type Config struct {
	// BasePath is the session store root, homedir-expanded.
	BasePath string

	API    API
	Editor Editor
	Stub   Stub
}

// API locates the summarizer service.
type API struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// Editor tunes the bullet collection rules.
type Editor struct {
	MinBullets        int
	DurationMin       float64
	DurationMax       float64
	DurationDefault   float64
	ConfidenceDefault float64
	AppendGap         float64
	SpacingSafety     float64
}

// Options converts the section into the editor's own config type.
func (e Editor) Options() editor.Config {
	return editor.Config{
		MinBullets:        e.MinBullets,
		DurationMin:       e.DurationMin,
		DurationMax:       e.DurationMax,
		DurationDefault:   e.DurationDefault,
		ConfidenceDefault: e.ConfidenceDefault,
		AppendGap:         e.AppendGap,
		SpacingSafety:     e.SpacingSafety,
	}
}

// Stub configures the local development server.
type Stub struct {
	Addr string
	// Rate is requests per second per client before 429s.
	Rate float64
}

// Load reads the configuration. A missing config file is fine, the
// defaults and environment cover everything.
func Load() (*Config, error) {
	_ = godotenv.Load()

	setDefaults()
	viper.SetConfigName(".vidmark") // .yaml is implicit
	viper.SetEnvPrefix("VIDMARK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if override := os.Getenv("VIDMARK_CONFIG_PATH"); override != "" {
		viper.AddConfigPath(override)
	}
	viper.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		viper.AddConfigPath(home)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	basePath, err := homedir.Expand(viper.GetString("basepath"))
	if err != nil {
		return nil, err
	}

	return &Config{
		BasePath: basePath,
		API: API{
			URL:     viper.GetString("api.url"),
			Token:   viper.GetString("api.token"),
			Timeout: viper.GetDuration("api.timeout"),
		},
		Editor: Editor{
			MinBullets:        viper.GetInt("editor.min-bullets"),
			DurationMin:       viper.GetFloat64("editor.duration-min"),
			DurationMax:       viper.GetFloat64("editor.duration-max"),
			DurationDefault:   viper.GetFloat64("editor.duration-default"),
			ConfidenceDefault: viper.GetFloat64("editor.confidence-default"),
			AppendGap:         viper.GetFloat64("editor.append-gap"),
			SpacingSafety:     viper.GetFloat64("spacing.safety"),
		},
		Stub: Stub{
			Addr: viper.GetString("stub.addr"),
			Rate: viper.GetFloat64("stub.rate"),
		},
	}, nil
}

func setDefaults() {
	viper.SetDefault("basepath", "~/.vidmark.db")

	viper.SetDefault("api.url", "http://localhost:8089")
	viper.SetDefault("api.token", "")
	viper.SetDefault("api.timeout", 30*time.Second)

	viper.SetDefault("editor.min-bullets", editor.DefaultMinBullets)
	viper.SetDefault("editor.duration-min", editor.DefaultDurationMin)
	viper.SetDefault("editor.duration-max", editor.DefaultDurationMax)
	viper.SetDefault("editor.duration-default", editor.DefaultDuration)
	viper.SetDefault("editor.confidence-default", editor.DefaultConfidence)
	viper.SetDefault("editor.append-gap", editor.DefaultAppendGap)
	viper.SetDefault("spacing.safety", spacing.DefaultSafety)

	viper.SetDefault("stub.addr", ":8089")
	viper.SetDefault("stub.rate", 20.0)
}
