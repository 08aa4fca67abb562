package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Bot de juego que vigilamos (Luvi).
const DefaultUpstreamBotID = "1269481871021047891"

type Config struct {
	DatabaseURL  string `env:"DATABASE_URL,required,notEmpty"`
	DiscordToken string `env:"DISCORD_BOT_TOKEN,required,notEmpty"`

	UpstreamBotID string   `env:"UPSTREAM_BOT_ID" envDefault:"1269481871021047891"`
	OwnerIDs      []string `env:"OWNER_IDS" envSeparator:","`

	ErrorWebhookURL string  `env:"ERROR_WEBHOOK_URL"`
	ErrorWebhookRPS float64 `env:"ERROR_WEBHOOK_RPS" envDefault:"1"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":3000"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
	LogFile   string `env:"LOG_FILE"`

	MessagesFile string `env:"MESSAGES_FILE"`
	PresenceSpec string `env:"PRESENCE_SPEC" envDefault:"@every 5m"`
}

// Load lee .env (si existe) y después el entorno.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse solo mira el entorno del proceso.
func Parse() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg.OwnerIDs = compact(cfg.OwnerIDs)
	return cfg, nil
}

// BotToken agrega el prefijo "Bot " si falta.
func (c Config) BotToken() string {
	t := strings.TrimSpace(c.DiscordToken)
	if !strings.HasPrefix(strings.ToLower(t), "bot ") {
		t = "Bot " + t
	}
	return t
}

func (c Config) IsOwner(userID string) bool {
	for _, id := range c.OwnerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func compact(ids []string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
