package config

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/kisgo/kis/types"
	"github.com/betbot/kisgo/pkg/marketspec"
	"github.com/betbot/kisgo/pkg/secretstore"
)

var allEnv = []string{
	EnvAppKey, EnvAppSecret, EnvAccount, EnvMarket, EnvBaseURL, EnvHTTPTimeout,
	EnvProxy, EnvPaper, EnvLogLevel, EnvLogFile, EnvSecretDB, EnvSecretKey,
}

// clearEnv unsets every KIS_* variable for the test and restores them after.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allEnv {
		prev, had := os.LookupEnv(k)
		require.NoError(t, os.Unsetenv(k))
		k := k
		t.Cleanup(func() {
			if had {
				os.Setenv(k, prev)
			} else {
				os.Unsetenv(k)
			}
		})
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAppKey, "key")
	t.Setenv(EnvAppSecret, "secret")

	cfg, err := LoadWithOptions(Options{})
	require.NoError(t, err)
	assert.Equal(t, string(DefaultMarket), cfg.Market)
	assert.Equal(t, marketspec.Nasdaq, cfg.MarketID())
	assert.Equal(t, types.HostLive, cfg.BaseURL)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Empty(t, cfg.Account)
}

func TestLoad_YAMLFileAndEnvOverride(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "kis.yaml", `
app_key: file-key
app_secret: file-secret
account: "12345678"
market: 홍콩
base_url: https://openapivts.koreainvestment.com:29443
http_timeout: 5s
log:
  level: DEBUG
  file: logs/kis.log
`)
	t.Setenv(EnvAppKey, "env-key")

	cfg, err := LoadWithOptions(Options{File: path})
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.AppKey)
	assert.Equal(t, "file-secret", cfg.AppSecret)
	assert.Equal(t, "12345678", cfg.Account)
	assert.Equal(t, marketspec.HongKong, cfg.MarketID())
	assert.Equal(t, types.HostPaper, cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "logs/kis.log", cfg.LogFile)
}

func TestLoad_JSONFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "kis.json", `{"app_key":"k","app_secret":"s","market":"NYSE"}`)

	cfg, err := LoadWithOptions(Options{File: path})
	require.NoError(t, err)
	assert.Equal(t, marketspec.NYSE, cfg.MarketID())
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	envFile := writeFile(t, ".env", "KIS_APP_KEY=dot-key\nKIS_APP_SECRET=\"dot secret\"\nKIS_MARKET=tokyo\n")

	cfg, err := LoadWithOptions(Options{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "dot-key", cfg.AppKey)
	assert.Equal(t, "dot secret", cfg.AppSecret)
	assert.Equal(t, marketspec.Tokyo, cfg.MarketID())
}

func TestLoad_SecretStore(t *testing.T) {
	clearEnv(t)
	key := []byte("0123456789abcdef0123456789abcdef")
	dbPath := filepath.Join(t.TempDir(), "secrets.badger")

	ss, err := secretstore.Open(secretstore.OpenOptions{Path: dbPath, EncryptionKey: key})
	require.NoError(t, err)
	require.NoError(t, ss.SetString(secretstore.DefaultPrefix+EnvAppKey, "store-key"))
	require.NoError(t, ss.SetString(secretstore.DefaultPrefix+EnvAppSecret, "store-secret"))
	require.NoError(t, ss.SetString(secretstore.DefaultPrefix+EnvAccount, "11112222"))
	require.NoError(t, ss.Close())

	path := writeFile(t, "kis.yaml", "app_key: file-key\napp_secret: file-secret\n")
	t.Setenv(EnvSecretDB, dbPath)
	t.Setenv(EnvSecretKey, hex.EncodeToString(key))
	t.Setenv(EnvAccount, "99998888")

	cfg, err := LoadWithOptions(Options{File: path})
	require.NoError(t, err)
	assert.Equal(t, "store-key", cfg.AppKey)
	assert.Equal(t, "store-secret", cfg.AppSecret)
	assert.Equal(t, "99998888", cfg.Account, "environment wins over the store")
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing key":      {EnvAppSecret: "s"},
		"bad market":       {EnvAppKey: "k", EnvAppSecret: "s", EnvMarket: "mars"},
		"bad account":      {EnvAppKey: "k", EnvAppSecret: "s", EnvAccount: "12ab"},
		"bad url":          {EnvAppKey: "k", EnvAppSecret: "s", EnvBaseURL: "not a url"},
		"bad level":        {EnvAppKey: "k", EnvAppSecret: "s", EnvLogLevel: "loud"},
		"bad timeout":      {EnvAppKey: "k", EnvAppSecret: "s", EnvHTTPTimeout: "soon"},
		"negative timeout": {EnvAppKey: "k", EnvAppSecret: "s", EnvHTTPTimeout: "-1s"},
		"db without key":   {EnvAppKey: "k", EnvAppSecret: "s", EnvSecretDB: "/nonexistent/secrets"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadWithOptions(Options{})
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := LoadWithOptions(Options{File: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestLoad_CachesForGet(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "kis.yaml", "app_key: k\napp_secret: s\n")
	SetConfigPath(path)
	defer SetConfigPath("")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, path, GetConfigPath())
	assert.Same(t, cfg, Get())
}

func TestLoad_Paper(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAppKey, "key")
	t.Setenv(EnvAppSecret, "secret")

	cfg, err := LoadWithOptions(Options{})
	require.NoError(t, err)
	assert.False(t, cfg.Paper)
	live, _ := cfg.MarketTable().Lookup(marketspec.Nasdaq)
	assert.Equal(t, "JTTT1002U", live.BuyTrID)

	t.Setenv(EnvPaper, "true")
	cfg, err = LoadWithOptions(Options{})
	require.NoError(t, err)
	assert.True(t, cfg.Paper)
	assert.Equal(t, types.HostPaper, cfg.BaseURL)
	paper, _ := cfg.MarketTable().Lookup(marketspec.Nasdaq)
	assert.Equal(t, "VTTT1002U", paper.BuyTrID)
	assert.Equal(t, "VTRP6504R", paper.BalanceTrID)

	t.Setenv(EnvPaper, "maybe")
	_, err = LoadWithOptions(Options{})
	assert.ErrorContains(t, err, EnvPaper)
}

func TestLoad_PaperFromFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "kis.yaml", "app_key: k\napp_secret: s\npaper: true\n")

	cfg, err := LoadWithOptions(Options{File: path})
	require.NoError(t, err)
	assert.True(t, cfg.Paper)
	assert.Equal(t, types.HostPaper, cfg.BaseURL)

	t.Setenv(EnvPaper, "false")
	cfg, err = LoadWithOptions(Options{File: path})
	require.NoError(t, err)
	assert.False(t, cfg.Paper, "environment wins over the file")
	assert.Equal(t, types.HostLive, cfg.BaseURL)
}

func TestUsePaper(t *testing.T) {
	cfg := &Config{BaseURL: types.HostLive}
	cfg.UsePaper()
	assert.True(t, cfg.Paper)
	assert.Equal(t, types.HostPaper, cfg.BaseURL)
	spec, _ := cfg.MarketTable().Lookup(marketspec.Amex)
	assert.Equal(t, "VTTT1001U", spec.SellTrID)

	// an explicit host, such as a local stand-in, is kept
	cfg = &Config{BaseURL: "http://127.0.0.1:8080"}
	cfg.UsePaper()
	assert.Equal(t, "http://127.0.0.1:8080", cfg.BaseURL)
}
