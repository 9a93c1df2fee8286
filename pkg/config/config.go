package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/betbot/kisgo/kis/types"
	"github.com/betbot/kisgo/pkg/marketspec"
	"github.com/betbot/kisgo/pkg/secretstore"
)

// Load 读取的环境变量
const (
	EnvAppKey      = "KIS_APP_KEY"
	EnvAppSecret   = "KIS_APP_SECRET"
	EnvAccount     = "KIS_ACCOUNT"
	EnvMarket      = "KIS_MARKET"
	EnvBaseURL     = "KIS_BASE_URL"
	EnvHTTPTimeout = "KIS_HTTP_TIMEOUT"
	EnvProxy       = "KIS_PROXY"
	EnvPaper       = "KIS_PAPER"
	EnvLogLevel    = "KIS_LOG_LEVEL"
	EnvLogFile     = "KIS_LOG_FILE"
	EnvSecretDB    = "KIS_SECRET_DB"
	EnvSecretKey   = "KIS_SECRET_KEY"
)

const (
	DefaultMarket      = marketspec.Nasdaq
	DefaultHTTPTimeout = 30 * time.Second
	DefaultLogLevel    = "info"
)

// Config 打开会话和交易客户端所需的全部配置
type Config struct {
	AppKey      string        `validate:"required"`
	AppSecret   string        `validate:"required"`
	Account     string        `validate:"omitempty,numeric,len=8"` // CANO，8 位账号（只查行情时可为空）
	Market      string        `validate:"required,market"`
	BaseURL     string        `validate:"required,url"`
	HTTPTimeout time.Duration `validate:"gt=0"`
	Proxy       string        `validate:"omitempty,url"`
	Paper       bool          // 模拟盘：默认 host 和 tr_id 都切到模拟盘
	LogLevel    string        `validate:"oneof=debug info warn warning error"`
	LogFile     string
	SecretDB    string
	SecretKey   string `validate:"required_with=SecretDB"`
}

// ConfigFile 配置文件结构（YAML 或 JSON）
type ConfigFile struct {
	AppKey      string `yaml:"app_key" json:"app_key"`
	AppSecret   string `yaml:"app_secret" json:"app_secret"`
	Account     string `yaml:"account" json:"account"`
	Market      string `yaml:"market" json:"market"`
	BaseURL     string `yaml:"base_url" json:"base_url"`
	HTTPTimeout string `yaml:"http_timeout" json:"http_timeout"` // Go duration，例如 "10s"
	Proxy       string `yaml:"proxy" json:"proxy"`
	Paper       bool   `yaml:"paper" json:"paper"`
	Log         struct {
		Level string `yaml:"level" json:"level"`
		File  string `yaml:"file" json:"file"`
	} `yaml:"log" json:"log"`
	SecretStore struct {
		Path string `yaml:"path" json:"path"`
		Key  string `yaml:"key" json:"key"`
	} `yaml:"secret_store" json:"secret_store"`
}

// Options 指定配置来源，空字段跳过
type Options struct {
	File    string // YAML / JSON 配置文件
	EnvFile string // .env 文件；已有环境变量优先
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("market", func(fl validator.FieldLevel) bool {
		_, err := marketspec.ParseMarket(fl.Field().String())
		return err == nil
	})
	return v
}

var (
	globalConfig   *Config
	configFilePath string
)

// SetConfigPath 设置 Load 使用的配置文件路径
func SetConfigPath(path string) {
	configFilePath = path
}

func GetConfigPath() string {
	return configFilePath
}

// Load 读取 SetConfigPath 指定的文件，结果缓存给 Get
func Load() (*Config, error) {
	cfg, err := LoadWithOptions(Options{File: configFilePath})
	if err != nil {
		return nil, err
	}
	globalConfig = cfg
	return cfg, nil
}

// Get 返回最近一次成功 Load 的配置
func Get() *Config {
	return globalConfig
}

// LoadWithOptions 构建 Config。
// 每个字段的优先级：环境变量 > secret store（仅凭证和账号）> 配置文件 > 默认值
func LoadWithOptions(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return nil, errors.Wrapf(err, "load env file %s", opts.EnvFile)
		}
	}

	file := &ConfigFile{}
	if opts.File != "" {
		var err error
		if file, err = loadConfigFile(opts.File); err != nil {
			return nil, errors.Wrapf(err, "load config file %s", opts.File)
		}
	}

	// 模拟盘决定默认 host，要先于其它字段解析
	paper, err := parseBool(os.Getenv(EnvPaper), file.Paper)
	if err != nil {
		return nil, errors.Wrap(err, EnvPaper)
	}
	defaultHost := types.HostLive
	if paper {
		defaultHost = types.HostPaper
	}

	cfg := &Config{
		AppKey:    getEnv(EnvAppKey, file.AppKey),
		AppSecret: getEnv(EnvAppSecret, file.AppSecret),
		Account:   getEnv(EnvAccount, file.Account),
		Market:    getEnv(EnvMarket, firstNonEmpty(file.Market, string(DefaultMarket))),
		BaseURL:   getEnv(EnvBaseURL, firstNonEmpty(file.BaseURL, defaultHost)),
		Paper:     paper,
		Proxy:     getEnv(EnvProxy, file.Proxy),
		LogLevel:  strings.ToLower(getEnv(EnvLogLevel, firstNonEmpty(file.Log.Level, DefaultLogLevel))),
		LogFile:   getEnv(EnvLogFile, file.Log.File),
		SecretDB:  getEnv(EnvSecretDB, file.SecretStore.Path),
		SecretKey: getEnv(EnvSecretKey, file.SecretStore.Key),
	}

	timeout, err := parseDuration(getEnv(EnvHTTPTimeout, file.HTTPTimeout), DefaultHTTPTimeout)
	if err != nil {
		return nil, errors.Wrap(err, "http timeout")
	}
	cfg.HTTPTimeout = timeout

	if cfg.SecretDB != "" {
		if err := cfg.fillFromSecretStore(); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillFromSecretStore 用 secret store 中的凭证覆盖配置文件的值；
// 环境变量里已有的不动。
func (c *Config) fillFromSecretStore() error {
	if c.SecretKey == "" {
		return errors.Errorf("secret store %s needs %s", c.SecretDB, EnvSecretKey)
	}
	key, err := secretstore.ParseKey(c.SecretKey)
	if err != nil {
		return errors.Wrap(err, "secret key")
	}
	ss, err := secretstore.Open(secretstore.OpenOptions{
		Path:          c.SecretDB,
		EncryptionKey: key,
		ReadOnly:      true,
	})
	if err != nil {
		return err
	}
	defer ss.Close()

	for _, f := range []struct {
		env string
		dst *string
	}{
		{EnvAppKey, &c.AppKey},
		{EnvAppSecret, &c.AppSecret},
		{EnvAccount, &c.Account},
	} {
		if strings.TrimSpace(os.Getenv(f.env)) != "" {
			continue
		}
		v, ok, err := ss.GetString(secretstore.DefaultPrefix + f.env)
		if err != nil {
			return err
		}
		if ok && strings.TrimSpace(v) != "" {
			*f.dst = strings.TrimSpace(v)
		}
	}
	return nil
}

// Validate 校验必填项和格式
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

// UsePaper 切换到模拟盘。
// 只有 host 还是实盘默认值时才改成模拟盘 host，显式配置的 host 保留（例如本地替身）。
func (c *Config) UsePaper() {
	c.Paper = true
	if c.BaseURL == types.HostLive {
		c.BaseURL = types.HostPaper
	}
}

// MarketTable 按交易模式返回对应的 tr_id 表
func (c *Config) MarketTable() marketspec.Table {
	if c.Paper {
		return marketspec.PaperTable()
	}
	return marketspec.DefaultTable()
}

// MarketID 返回解析后的市场，需在 Validate 之后调用
func (c *Config) MarketID() marketspec.Market {
	m, _ := marketspec.ParseMarket(c.Market)
	return m
}

func loadConfigFile(filePath string) (*ConfigFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var cf ConfigFile
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".json":
		err = json.Unmarshal(data, &cf)
	default:
		err = yaml.Unmarshal(data, &cf)
	}
	if err != nil {
		return nil, err
	}
	return &cf, nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return strings.TrimSpace(defaultValue)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func parseBool(v string, def bool) (bool, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return def, nil
	}
	return strconv.ParseBool(v)
}

func parseDuration(v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}
