package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	ListenAddr string
	LogLevel   string

	// Параметры движка
	DepthFallback  float64
	ContrastTarget float64
	MirrorX        bool
	FlipFrame      bool
	PersonClass    string
	DebugOverlay   bool

	// Модели
	DetectorModel string
	DepthModel    string

	// Архив кадров и анализ опасности
	ArchiveDir       string
	ArchiveEnabled   bool
	AnalyzerInterval time.Duration

	AzureEndpoint   string
	AzureAPIKey     string
	AzureDeployment string
	AzureAPIVersion string

	TelegramToken  string
	TelegramChatID int64
}

// Load читает конфигурацию из окружения. Файлы envFiles подгружаются
// заранее; если их нет, пробуется .env.
func Load(envFiles ...string) (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load(envFiles...)

	cfg := &Config{
		ListenAddr:      getString("LISTEN_ADDR", ":8000"),
		LogLevel:        getString("LOG_LEVEL", "info"),
		PersonClass:     getString("PERSON_CLASS", "person"),
		DetectorModel:   getString("DETECTOR_MODEL", "yolov8n.onnx"),
		DepthModel:      getString("DEPTH_MODEL", "depth_anything_v2_metric_hypersim_vitb.onnx"),
		ArchiveDir:      getString("ARCHIVE_DIR", "./gpt"),
		AzureEndpoint:   os.Getenv("AZURE_OPENAI_ENDPOINT"),
		AzureAPIKey:     os.Getenv("AZURE_OPENAI_API_KEY"),
		AzureDeployment: getString("AZURE_OPENAI_DEPLOYMENT", "grad-eng"),
		AzureAPIVersion: getString("AZURE_OPENAI_API_VERSION", "2023-03-15-preview"),
		TelegramToken:   os.Getenv("TELEGRAM_TOKEN"),
	}

	var err error
	if cfg.DepthFallback, err = getFloat("DEPTH_FALLBACK", 1.5); err != nil {
		return nil, err
	}
	if cfg.ContrastTarget, err = getFloat("CONTRAST_TARGET", 4.5); err != nil {
		return nil, err
	}
	if cfg.MirrorX, err = getBool("MIRROR_X", false); err != nil {
		return nil, err
	}
	if cfg.FlipFrame, err = getBool("FLIP_FRAME", true); err != nil {
		return nil, err
	}
	if cfg.DebugOverlay, err = getBool("DEBUG_OVERLAY", false); err != nil {
		return nil, err
	}
	if cfg.ArchiveEnabled, err = getBool("ARCHIVE_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.AnalyzerInterval, err = getDuration("ANALYZER_INTERVAL", 6*time.Second); err != nil {
		return nil, err
	}
	if cfg.TelegramChatID, err = getInt("TELEGRAM_CHAT_ID", 0); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения, которые движок не может исправить сам.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("LISTEN_ADDR is required")
	}
	if c.DepthFallback <= 0 {
		return errors.Errorf("DEPTH_FALLBACK must be positive, got %v", c.DepthFallback)
	}
	if c.ContrastTarget < 1 || c.ContrastTarget > 21 {
		return errors.Errorf("CONTRAST_TARGET must be within [1, 21], got %v", c.ContrastTarget)
	}
	if c.AnalyzerInterval <= 0 {
		return errors.Errorf("ANALYZER_INTERVAL must be positive, got %v", c.AnalyzerInterval)
	}
	return nil
}

// AnalyzerEnabled сообщает, настроен ли классификатор опасности
func (c *Config) AnalyzerEnabled() bool {
	return c.ArchiveEnabled && c.AzureEndpoint != "" && c.AzureAPIKey != ""
}

// TelegramEnabled сообщает, настроены ли оповещения в Telegram
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

func getString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getFloat(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse %s", key)
	}
	return f, nil
}

func getBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.Wrapf(err, "parse %s", key)
	}
	return b, nil
}

func getInt(key string, def int64) (int64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse %s", key)
	}
	return i, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrapf(err, "parse %s", key)
	}
	return d, nil
}
