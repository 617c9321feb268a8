package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken  string  `env:"DISCORD_TOKEN,required,notEmpty"`
	CommandPrefix string  `env:"COMMAND_PREFIX" envDefault:"fz!"`
	FFmpegPath    string  `env:"FFMPEG_PATH" envDefault:"ffmpeg"`
	DefaultVolume float64 `env:"DEFAULT_VOLUME" envDefault:"0.5"`

	InactivityTimeout       time.Duration `env:"INACTIVITY_TIMEOUT" envDefault:"300s"`
	InactivityCheckInterval time.Duration `env:"INACTIVITY_CHECK_INTERVAL" envDefault:"1m"`
	CompletionDrainInterval time.Duration `env:"COMPLETION_DRAIN_INTERVAL" envDefault:"500ms"`

	QueuePageSize     int `env:"QUEUE_PAGE_SIZE" envDefault:"10"`
	VoiceJoinAttempts int `env:"VOICE_JOIN_ATTEMPTS" envDefault:"3"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	// StatusAddr enables the read-only status API when set, e.g. ":8080".
	StatusAddr   string `env:"STATUS_ADDR"`
	YouTubeProxy string `env:"YOUTUBE_PROXY"`
}

// Load reads the optional dotenv files, then parses the environment.
// With no files given it tries ".env" in the working directory.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.CommandPrefix == "" {
		errs = append(errs, errors.New("COMMAND_PREFIX must not be empty"))
	}
	if c.DefaultVolume < 0 || c.DefaultVolume > 1 {
		errs = append(errs, fmt.Errorf("DEFAULT_VOLUME %v is outside 0..1", c.DefaultVolume))
	}
	if c.InactivityTimeout <= 0 {
		errs = append(errs, errors.New("INACTIVITY_TIMEOUT must be positive"))
	}
	if c.InactivityCheckInterval <= 0 {
		errs = append(errs, errors.New("INACTIVITY_CHECK_INTERVAL must be positive"))
	}
	if c.CompletionDrainInterval <= 0 {
		errs = append(errs, errors.New("COMPLETION_DRAIN_INTERVAL must be positive"))
	}
	if c.QueuePageSize < 1 {
		errs = append(errs, errors.New("QUEUE_PAGE_SIZE must be at least 1"))
	}
	if c.VoiceJoinAttempts < 1 {
		errs = append(errs, errors.New("VOICE_JOIN_ATTEMPTS must be at least 1"))
	}
	return errors.Join(errs...)
}
