package config

import (
	"encoding/json"
	"fmt"
	"log"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

const (
	PublisherLog      = "log"
	PublisherTwitter  = "twitter"
	PublisherTelegram = "telegram"
	PublisherNats     = "nats"
)

type Config struct {
	LogZapMode               string `mapstructure:"LOG_ZAP_MODE"`
	PrintConfigurationToLogs string `mapstructure:"PRINT_CONFIGURATION_TO_LOGS"`
	EthereumNodeUrl          string `mapstructure:"ETHEREUM_NODE_URL"`

	ContractAddress            string `mapstructure:"CONTRACT_ADDRESS"`
	MarketplaceContractAddress string `mapstructure:"MARKETPLACE_CONTRACT_ADDRESS"`
	Message                    string `mapstructure:"MESSAGE"`
	Currency                   string `mapstructure:"CURRENCY"`
	Ens                        bool   `mapstructure:"ENS"`
	IncludeFreeMint            bool   `mapstructure:"INCLUDE_FREE_MINT"`

	AlchemyApiKey  string `mapstructure:"ALCHEMY_API_KEY"`
	MetadataApiUrl string `mapstructure:"METADATA_API_URL"`

	FiatApiUrl          string        `mapstructure:"FIAT_API_URL"`
	FiatCurrencies      string        `mapstructure:"FIAT_CURRENCIES"`
	FiatRefreshInterval time.Duration `mapstructure:"FIAT_REFRESH_INTERVAL"`
	RateSnapshotPath    string        `mapstructure:"RATE_SNAPSHOT_PATH"`

	EventQueueSize int `mapstructure:"EVENT_QUEUE_SIZE"`
	EventWorkers   int `mapstructure:"EVENT_WORKERS"`

	Publisher           string `mapstructure:"PUBLISHER"`
	TwConsumerKey       string `mapstructure:"TW_CONSUMER_KEY"`
	TwConsumerSecret    string `mapstructure:"TW_CONSUMER_SECRET"`
	TwAccessTokenKey    string `mapstructure:"TW_ACCESS_TOKEN_KEY"`
	TwAccessTokenSecret string `mapstructure:"TW_ACCESS_TOKEN_SECRET"`
	TwitterApiUrl       string `mapstructure:"TWITTER_API_URL"`
	TwitterUploadUrl    string `mapstructure:"TWITTER_UPLOAD_URL"`
	TelegramBotToken    string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TelegramChatId      string `mapstructure:"TELEGRAM_CHAT_ID"`
	NatsUrl             string `mapstructure:"NATS_URL"`
	NatsSubject         string `mapstructure:"NATS_SUBJECT"`

	RPCPort int `mapstructure:"RPC_PORT"`
}

var defaults = map[string]any{
	"CONTRACT_ADDRESS":             "0x23581767a106ae21c074b2276D25e5C3e136a68b",
	"MARKETPLACE_CONTRACT_ADDRESS": "0x59728544b08ab483533076417fbbb2fd0b17ce3a",
	"MESSAGE":                      "MOONBIRD #<tokenId> was sold for <ethPrice> (<fiatPrice>) from: <from> -- to: <to> -- https://etherscan.io/tx/<txHash> #MOONBIRD #NFT",
	"CURRENCY":                     "usd",
	"ENS":                          true,
	"INCLUDE_FREE_MINT":            false,
	"METADATA_API_URL":             "https://eth-mainnet.g.alchemy.com/nft/v2/",
	"FIAT_API_URL":                 "https://api.coingecko.com/api/v3/simple/price",
	"FIAT_CURRENCIES":              strings.Join(models.SupportedCurrencies, ","),
	"FIAT_REFRESH_INTERVAL":        5 * time.Minute,
	"EVENT_QUEUE_SIZE":             256,
	"EVENT_WORKERS":                4,
	"PUBLISHER":                    PublisherLog,
	"TWITTER_API_URL":              "https://api.twitter.com/1.1/",
	"TWITTER_UPLOAD_URL":           "https://upload.twitter.com/1.1/",
	"NATS_SUBJECT":                 "salesbot.announcements",
	"RPC_PORT":                     8080,
}

var secretKeys = []string{
	"AlchemyApiKey",
	"TwConsumerKey",
	"TwConsumerSecret",
	"TwAccessTokenKey",
	"TwAccessTokenSecret",
	"TelegramBotToken",
}

var lock = &sync.Mutex{}
var config *Config

var Get = get

func get() Config {
	if config == nil {
		lock.Lock()
		defer lock.Unlock()
		if config == nil {
			c := loadConfig()
			config = &c
		}
	}
	return *config
}

func loadConfig() Config {
	viperAddConfigFile()
	viperAddDefaults()
	viperAddEnv()
	cfg := initializeCfg()
	debugConfig(cfg)
	return cfg
}

func viperAddConfigFile() {
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("env")
}

func viperAddDefaults() {
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
}

func viperAddEnv() {
	viper.AutomaticEnv()
	// This makes sure that all envs are binded even if they are not represented in config file (https://github.com/spf13/viper/issues/584)
	valueOfConfig := reflect.ValueOf(&Config{}).Elem()
	fieldsOfConfig := reflect.TypeOf(&Config{}).Elem()
	for i := 0; i < valueOfConfig.NumField(); i++ {
		field, _ := fieldsOfConfig.FieldByName(valueOfConfig.Type().Field(i).Name)
		mapStructureVal := field.Tag.Get("mapstructure")
		err := viper.BindEnv(mapStructureVal)
		if err != nil {
			panic(fmt.Sprintf("Error binding env val '%v': %v", mapStructureVal, err))
		}
	}
}

func initializeCfg() Config {
	var cfg Config
	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		} else {
			panic(fmt.Sprintf("fatal error reading config file: %v", err))
		}
	}

	err = viper.Unmarshal(&cfg)
	if err != nil {
		panic(fmt.Sprintf("error unmarshaling config: %v", err))
	}
	cfg.Currency = strings.ToLower(cfg.Currency)
	cfg.Publisher = strings.ToLower(cfg.Publisher)
	return cfg
}

// Validate reports the first setting that would make the bot unusable.
func (c Config) Validate() error {
	if !common.IsHexAddress(c.ContractAddress) {
		return errors.Errorf("CONTRACT_ADDRESS %q is not a valid address", c.ContractAddress)
	}
	if !common.IsHexAddress(c.MarketplaceContractAddress) {
		return errors.Errorf("MARKETPLACE_CONTRACT_ADDRESS %q is not a valid address", c.MarketplaceContractAddress)
	}
	if !lo.Contains(models.SupportedCurrencies, c.Currency) {
		return errors.Errorf("CURRENCY %q is not supported, use one of %v", c.Currency, models.SupportedCurrencies)
	}
	if c.Message == "" {
		return errors.New("MESSAGE must not be empty")
	}
	if c.FiatRefreshInterval <= 0 {
		return errors.Errorf("FIAT_REFRESH_INTERVAL must be positive, got %v", c.FiatRefreshInterval)
	}
	switch c.Publisher {
	case PublisherLog:
	case PublisherTwitter:
		if c.TwConsumerKey == "" || c.TwConsumerSecret == "" || c.TwAccessTokenKey == "" || c.TwAccessTokenSecret == "" {
			return errors.New("twitter publisher requires TW_CONSUMER_KEY, TW_CONSUMER_SECRET, TW_ACCESS_TOKEN_KEY and TW_ACCESS_TOKEN_SECRET")
		}
	case PublisherTelegram:
		if c.TelegramBotToken == "" || c.TelegramChatId == "" {
			return errors.New("telegram publisher requires TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
		}
	case PublisherNats:
		if c.NatsUrl == "" {
			return errors.New("nats publisher requires NATS_URL")
		}
	default:
		return errors.Errorf("unknown PUBLISHER %q", c.Publisher)
	}
	return nil
}

// FiatCurrencyList returns the currencies requested from the fiat API.
func (c Config) FiatCurrencyList() []string {
	parts := lo.Map(strings.Split(c.FiatCurrencies, ","), func(s string, _ int) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
	parts = lo.Uniq(lo.Compact(parts))
	if !lo.Contains(parts, c.Currency) && c.Currency != "" {
		parts = append(parts, c.Currency)
	}
	return parts
}

func redacted(cfg Config) map[string]any {
	out := map[string]any{}
	v := reflect.ValueOf(cfg)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Name
		value := v.Field(i).Interface()
		if lo.Contains(secretKeys, name) && value != "" {
			value = "***"
		}
		out[name] = value
	}
	return out
}

func debugConfig(cfg Config) {
	if cfg.PrintConfigurationToLogs == "true" {
		b, err := json.Marshal(redacted(cfg))
		var result string
		if err != nil {
			result = "[FAILED TO CONVERT CONF TO STRING]"
		} else {
			result = string(b)
		}
		log.Printf("[APP CONFIGURATION]: %v\n", result)
	}
}
