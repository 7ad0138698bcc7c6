// config/config.go
package config

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solanatracker-go/sender"
)

// Config — конфигурация SDK: список RPC-узлов, адрес quote-сервиса и
// секция send с опциями отправки по умолчанию (включая легаси-ключи).
type Config struct {
	RPCList      []string               `mapstructure:"rpc_list"`
	SwapAPIURL   string                 `mapstructure:"swap_api_url"`
	DebugLogging bool                   `mapstructure:"debug_logging"`
	LogFile      string                 `mapstructure:"log_file"`
	Send         map[string]interface{} `mapstructure:"send"`
}

const DefaultSwapAPIURL = "https://swap-v2.solanatracker.io"

// LoadConfig читает конфигурацию из файла с переопределением из окружения.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("swap_api_url", DefaultSwapAPIURL)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

// SendOptions разворачивает секцию send в опции движка отправки.
func (c *Config) SendOptions(logger *zap.Logger) (sender.Options, error) {
	if len(c.Send) == 0 {
		return sender.DefaultOptions(), nil
	}
	return sender.OptionsFromMap(c.Send, logger)
}

func validateConfig(cfg *Config) error {
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURLWithCache(rpcURL, "http"); err != nil {
			return errors.New("invalid RPC URL protocol")
		}
	}
	if err := validateURLWithCache(cfg.SwapAPIURL, "http"); err != nil {
		return errors.New("invalid swap API URL protocol")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("SOLANATRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envRPCList := v.GetString("RPC_LIST")
	if envRPCList != "" {
		rpcs := strings.Split(envRPCList, ",")
		var cleanRPCs []string
		for _, rpc := range rpcs {
			clean := strings.TrimSpace(rpc)
			if clean != "" {
				cleanRPCs = append(cleanRPCs, clean)
			}
		}
		if len(cleanRPCs) > 0 {
			cfg.RPCList = cleanRPCs
		}
	}

	envSwapURL := v.GetString("SWAP_API_URL")
	if envSwapURL != "" {
		cfg.SwapAPIURL = envSwapURL
	}

	return nil
}
