package configs

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config struct
type Config struct {
	App      `mapstructure:"app"`
	Storage  `mapstructure:"storage"`
	Postgres `mapstructure:"postgres"`
	Analyzer `mapstructure:"analyzer"`
	Capture  `mapstructure:"capture"`
	LMStudio `mapstructure:"lmstudio"`
	Line     `mapstructure:"line"`
	Report   `mapstructure:"report"`
}

// App struct
type App struct {
	Debug    bool   `mapstructure:"debug"`
	Env      string `mapstructure:"env"`
	Port     string `mapstructure:"port"`
	Timezone string `mapstructure:"timezone"`
}

// Storage struct - selects the session store back end: file, memory or postgres
type Storage struct {
	Driver string `mapstructure:"driver"`
	Dir    string `mapstructure:"dir"`
}

// Postgres struct
type Postgres struct {
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	DbName       string `mapstructure:"database"`
	SSLMode      bool   `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// Analyzer struct - external speech analysis endpoint
type Analyzer struct {
	BaseURL         string `mapstructure:"base_url"`
	Timeout         int    `mapstructure:"timeout"` // seconds
	MinPayloadBytes int    `mapstructure:"min_payload_bytes"`
}

// Capture struct - Microphone is "stream" (fed over HTTP) or "file" (replays FilePath)
type Capture struct {
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
	ChunkBuffer int           `mapstructure:"chunk_buffer"`
	Microphone  string        `mapstructure:"microphone"`
	FilePath    string        `mapstructure:"file_path"`
}

// LMStudio struct
type LMStudio struct {
	BaseURL      string `mapstructure:"base_url"`
	Model        string `mapstructure:"model"`
	Timeout      int    `mapstructure:"timeout"` // seconds
	SystemPrompt string `mapstructure:"system_prompt"`
}

// Line struct
type Line struct {
	ChannelSecret string `mapstructure:"channel_secret"`
	ChannelToken  string `mapstructure:"channel_token"`
	NotifyTo      string `mapstructure:"notify_to"`
}

// Report struct
type Report struct {
	Temperature float64 `mapstructure:"temperature"`
	Language    string  `mapstructure:"language"`
}

var config Config

// LoadDotEnv func - Loads a .env file into the process environment when it exists
func LoadDotEnv(filenames ...string) {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Println("Cannot load env file: ", name, err)
		}
	}
}

// InitViper func
func InitViper(path, env string) {
	getConfig(path, env)
}

// GetViper func
func GetViper() *Config {
	return &config
}

func setDefaults() {
	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.timezone", "Asia/Jakarta")
	viper.SetDefault("storage.driver", "file")
	viper.SetDefault("storage.dir", "./data")
	viper.SetDefault("analyzer.base_url", "http://localhost:8000")
	viper.SetDefault("analyzer.timeout", 60)
	viper.SetDefault("analyzer.min_payload_bytes", 1000)
	viper.SetDefault("capture.retry_delay", "3s")
	viper.SetDefault("capture.chunk_buffer", 64)
	viper.SetDefault("capture.microphone", "stream")
	viper.SetDefault("lmstudio.base_url", "http://localhost:1234")
	viper.SetDefault("lmstudio.timeout", 60)
	viper.SetDefault("report.temperature", 0.3)
	viper.SetDefault("report.language", "id")
}

func getConfig(path, env string) {
	setDefaults()
	viper.SetConfigName("config")
	viper.AddConfigPath(path)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}
	if env != "" {
		// config.<env>.yaml overrides the base file when present
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				log.Println("Cannot merge config for env: ", env, err)
			}
		}
		viper.SetConfigName("config")
	}
	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		log.Println("Config file has changed: ", e.Name)
	})
	err = viper.Unmarshal(&config)
	if err != nil {
		log.Fatalln(err)
	}
}
