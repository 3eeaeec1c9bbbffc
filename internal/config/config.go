package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"ticker/internal/domain"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config представляет основную конфигурацию тикера.
// Содержит настройки API статуса, логгера, сбора лент, дисплея и архива заголовков.
type Config struct {
	Server   ServerConfig   `json:"server" toml:"server"`
	Logger   LoggerConfig   `json:"logger" toml:"logger"`
	Feeds    FeedsConfig    `json:"feeds" toml:"feeds"`
	Display  DisplayConfig  `json:"display" toml:"display"`
	Database DatabaseConfig `json:"database" toml:"database"`
}

// ServerConfig содержит настройки HTTP API статуса.
type ServerConfig struct {
	Enabled bool   `json:"enabled" toml:"enabled"`
	Address string `json:"address" toml:"address"`
}

// LoggerConfig содержит настройки системы логирования.
// Пустой путь к файлу означает вывод в stderr.
type LoggerConfig struct {
	Level     string `json:"level" toml:"level"`
	File      string `json:"file" toml:"file"`
	ErrorFile string `json:"error_file" toml:"error_file"`
}

// FeedsConfig содержит настройки цикла сбора заголовков.
type FeedsConfig struct {
	Sources               []domain.FeedSource `json:"sources" toml:"sources"`
	MaxHeadlinesPerSource int                 `json:"max_headlines_per_source" toml:"max_headlines_per_source"`
	HTTPTimeout           string              `json:"http_timeout" toml:"http_timeout"`
	FetchInterval         string              `json:"fetch_interval" toml:"fetch_interval"`
	SourceDelay           string              `json:"source_delay" toml:"source_delay"`
	MaxPayloadBytes       int                 `json:"max_payload_bytes" toml:"max_payload_bytes"`
	MinPayloadBytes       int                 `json:"min_payload_bytes" toml:"min_payload_bytes"`
	UserAgent             string              `json:"user_agent" toml:"user_agent"`
	MaxNewsAgeHours       int                 `json:"max_news_age_hours" toml:"max_news_age_hours"`
	RecencyFilter         bool                `json:"recency_filter" toml:"recency_filter"`
}

// DisplayConfig содержит параметры панели, прокрутки и расписания контента.
type DisplayConfig struct {
	Width           int                  `json:"width" toml:"width"`
	Height          int                  `json:"height" toml:"height"`
	Brightness      int                  `json:"brightness" toml:"brightness"`
	ScrollSpeedMs   int                  `json:"scroll_speed_ms" toml:"scroll_speed_ms"`
	Direction       domain.Direction     `json:"direction" toml:"direction"`
	Animation       domain.Animation     `json:"animation" toml:"animation"`
	Font            domain.Font          `json:"font" toml:"font"`
	Panel           domain.Panel         `json:"panel" toml:"panel"`
	TextColor       uint16               `json:"text_color" toml:"text_color"`
	ScrollEnabled   bool                 `json:"scroll_enabled" toml:"scroll_enabled"`
	Timezone        string               `json:"timezone" toml:"timezone"`
	QuotesPath      string               `json:"quotes_path" toml:"quotes_path"`
	FactsPath       string               `json:"facts_path" toml:"facts_path"`
	FrameInterval   string               `json:"frame_interval" toml:"frame_interval"`
	ContentInterval string               `json:"content_interval" toml:"content_interval"`
	Slots           []domain.ContentSlot `json:"slots" toml:"slots"`
}

// DatabaseConfig содержит параметры подключения к PostgreSQL для архива заголовков.
// Архив необязателен и выключен по умолчанию.
type DatabaseConfig struct {
	Enabled  bool   `json:"enabled" toml:"enabled"`
	Host     string `json:"host" toml:"host"`
	Port     int    `json:"port" toml:"port"`
	Username string `json:"username" toml:"username"`
	Password string `json:"password" toml:"password"`
	DBName   string `json:"dbname" toml:"dbname"`
	SSLMode  string `json:"sslmode" toml:"sslmode"`
}

// DSN возвращает строку подключения к PostgreSQL в формате URI.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.Username),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.DBName,
		c.SSLMode)
}

// DefaultSources - ленты, которые используются, если в конфигурации нет ни одной.
func DefaultSources() []domain.FeedSource {
	return []domain.FeedSource{
		{Name: "NDTV", URL: "https://feeds.feedburner.com/ndtvnews-top-stories", Enabled: true},
		{Name: "The Hindu", URL: "https://www.thehindu.com/news/national/feeder/default.rss", Enabled: true},
		{Name: "Economic Times", URL: "https://economictimes.indiatimes.com/rssfeedsdefault.cms", Enabled: true},
		{Name: "BBC World", URL: "http://feeds.bbci.co.uk/news/world/rss.xml", Enabled: true},
		{Name: "Reuters", URL: "https://feeds.reuters.com/reuters/topNews", Enabled: true},
	}
}

// Load загружает конфигурацию из файла по указанному пути.
// Файлы с расширением .toml разбираются как TOML, остальные как JSON.
// Незаданные поля сохраняют значения по умолчанию из New, кроме списков
// источников и слотов: их подставляет ApplyDefaults.
func Load(configPath string) (*Config, error) {
	cfg := New()
	cfg.Feeds.Sources = nil
	cfg.Display.Slots = nil
	fileData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}
	if strings.EqualFold(filepath.Ext(configPath), ".toml") {
		if err := toml.Unmarshal(fileData, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML from file %s: %w", configPath, err)
		}
		return cfg, nil
	}
	if err := json.Unmarshal(fileData, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse JSON from file %s: %w", configPath, err)
	}
	return cfg, nil
}

// New создает новый экземпляр Config со значениями по умолчанию.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Enabled: true,
			Address: ":8080",
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		Feeds: FeedsConfig{
			Sources:               DefaultSources(),
			MaxHeadlinesPerSource: 10,
			HTTPTimeout:           "8s",
			FetchInterval:         "5m",
			SourceDelay:           "500ms",
			MaxPayloadBytes:       50000,
			MinPayloadBytes:       50,
			UserAgent:             "ESP32-RSS-Scroller/1.0",
			MaxNewsAgeHours:       24,
		},
		Display: DisplayConfig{
			Width:           64,
			Height:          32,
			Brightness:      50,
			ScrollSpeedMs:   80,
			Direction:       domain.DirectionLeft,
			Animation:       domain.AnimationNone,
			Font:            domain.FontMedium,
			Panel:           domain.PanelRGB,
			TextColor:       uint16(domain.ColorWhite),
			ScrollEnabled:   true,
			Timezone:        "Asia/Kolkata",
			QuotesPath:      "data/quotes.txt",
			FactsPath:       "data/facts.txt",
			FrameInterval:   "10ms",
			ContentInterval: "5s",
			Slots:           domain.DefaultSlots(),
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
	}
}

// LoadDotEnv подгружает переменные окружения из .env-файла, если он существует.
// Уже заданные переменные окружения не перезаписываются.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv переопределяет параметры значениями из переменных окружения TICKER_*.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("TICKER_LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
	if v := os.Getenv("TICKER_SERVER_ADDRESS"); v != "" {
		c.Server.Address = v
	}
	if v := os.Getenv("TICKER_FETCH_INTERVAL"); v != "" {
		c.Feeds.FetchInterval = v
	}
	if v := os.Getenv("TICKER_TIMEZONE"); v != "" {
		c.Display.Timezone = v
	}
	if v := os.Getenv("TICKER_DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("TICKER_DB_USER"); v != "" {
		c.Database.Username = v
	}
	if v := os.Getenv("TICKER_DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("TICKER_DB_NAME"); v != "" {
		c.Database.DBName = v
	}
	if v := os.Getenv("TICKER_DB_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Database.Enabled = enabled
		}
	}
}

// ApplyDefaults подставляет встроенные значения вместо отсутствующих списков
// источников и слотов. Возвращает ошибку domain.ErrConfigMissing с перечнем
// заменённых разделов; ошибка носит диагностический характер.
func (c *Config) ApplyDefaults() error {
	var missing []string
	if len(c.Feeds.Sources) == 0 {
		c.Feeds.Sources = DefaultSources()
		missing = append(missing, "feeds.sources")
	}
	if len(c.Display.Slots) == 0 {
		c.Display.Slots = domain.DefaultSlots()
		missing = append(missing, "display.slots")
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: substituted defaults for %s", domain.ErrConfigMissing, strings.Join(missing, ", "))
}

// Validate проверяет корректность конфигурации.
// Возвращает ошибку с описанием первой найденной проблемы.
func (c *Config) Validate() error {
	if c.Feeds.MaxHeadlinesPerSource <= 0 {
		return fmt.Errorf("feeds.max_headlines_per_source must be a positive number")
	}
	if c.Feeds.MaxPayloadBytes <= 0 {
		return fmt.Errorf("feeds.max_payload_bytes must be a positive number")
	}
	if c.Feeds.MinPayloadBytes < 0 || c.Feeds.MinPayloadBytes > c.Feeds.MaxPayloadBytes {
		return fmt.Errorf("feeds.min_payload_bytes must be within [0, max_payload_bytes]")
	}
	for _, feed := range c.Feeds.Sources {
		if _, err := url.ParseRequestURI(feed.URL); err != nil {
			return fmt.Errorf("invalid url in feeds.sources: %s", feed.URL)
		}
		if feed.Name == "" {
			return fmt.Errorf("feed name cannot be empty for url: %s", feed.URL)
		}
	}
	durations := map[string]string{
		"feeds.http_timeout":       c.Feeds.HTTPTimeout,
		"feeds.fetch_interval":     c.Feeds.FetchInterval,
		"feeds.source_delay":       c.Feeds.SourceDelay,
		"display.frame_interval":   c.Display.FrameInterval,
		"display.content_interval": c.Display.ContentInterval,
	}
	for name, value := range durations {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if d < 0 || (d == 0 && name != "feeds.source_delay") {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return fmt.Errorf("display size must be positive, got %dx%d", c.Display.Width, c.Display.Height)
	}
	if c.Display.Brightness < 0 || c.Display.Brightness > 100 {
		return fmt.Errorf("display.brightness must be within [0, 100]")
	}
	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("database host is not set")
		}
		if c.Database.Username == "" {
			return fmt.Errorf("database username is not set")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database password is not set")
		}
	}
	return nil
}

// Методы ниже возвращают длительности, уже проверенные Validate.
func (c *FeedsConfig) Timeout() time.Duration       { return mustDuration(c.HTTPTimeout) }
func (c *FeedsConfig) Interval() time.Duration      { return mustDuration(c.FetchInterval) }
func (c *FeedsConfig) Delay() time.Duration         { return mustDuration(c.SourceDelay) }
func (c *FeedsConfig) MaxAge() time.Duration        { return time.Duration(c.MaxNewsAgeHours) * time.Hour }
func (c *DisplayConfig) Frame() time.Duration       { return mustDuration(c.FrameInterval) }
func (c *DisplayConfig) Rotation() time.Duration    { return mustDuration(c.ContentInterval) }
func (c *DisplayConfig) ScrollSpeed() time.Duration { return time.Duration(c.ScrollSpeedMs) * time.Millisecond }

func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
