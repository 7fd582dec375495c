package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-matcher/internal/evaluator"
)

const (
	app = "resume-matcher"
)

type Config struct {
	API       *APIConfig       `mapstructure:"api"`
	Upload    *UploadConfig    `mapstructure:"upload"`
	Templates *TemplatesConfig `mapstructure:"templates"`
	Results   *ResultsConfig   `mapstructure:"results"`
	Assistant *AssistantConfig `mapstructure:"assistant"`
}

type APIConfig struct {
	URL       string        `mapstructure:"url"`
	TokenFile string        `mapstructure:"token-file"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user-agent"`
	// RateLimit is requests per minute. Zero disables throttling.
	RateLimit int `mapstructure:"rate-limit"`
}

type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max-bytes"`
}

type TemplatesConfig struct {
	Placeholder string `mapstructure:"placeholder"`
}

type ResultsConfig struct {
	TargetScore int `mapstructure:"target-score"`
}

type AssistantConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-matcher scores a resume against a job description using the resume matcher API",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"api.url":                       "RESUME_MATCHER_API_URL",
		"api.token-file":                "RESUME_MATCHER_TOKEN_FILE",
		"assistant.gemini.api-key-file": "GEMINI_API_KEY_FILE",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("api.url", evaluator.ProductionURL)
	viper.SetDefault("api.timeout", "30s")
	viper.SetDefault("upload.max-bytes", evaluator.DefaultMaxUploadBytes)
	viper.SetDefault("assistant.provider", "gemini")
	viper.SetDefault("assistant.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("assistant.gemini.max-log-length", 200)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("api-url", "", "base URL of the evaluation API (use "+evaluator.LocalURL+" for a local backend)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("api.url", rootCmd.PersistentFlags().Lookup("api-url"))
}

func initConfig() {
	// The version command needs no config.
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// Without an explicit --config the file is optional; defaults and env are enough.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		// We can't proceed if the config file parsed with error.
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.API == nil {
		config.API = &APIConfig{}
	}
	if config.Upload == nil {
		config.Upload = &UploadConfig{}
	}
	if config.Templates == nil {
		config.Templates = &TemplatesConfig{}
	}
	if config.Results == nil {
		config.Results = &ResultsConfig{}
	}
	if config.Assistant == nil {
		config.Assistant = &AssistantConfig{}
	}
	if config.Assistant.Gemini == nil {
		config.Assistant.Gemini = &GeminiConfig{}
	}

	return config, nil
}
