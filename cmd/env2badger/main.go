// Command env2badger copies KIS_* entries from a .env file into the encrypted
// secret store read by the kis command.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/betbot/kisgo/pkg/config"
	"github.com/betbot/kisgo/pkg/secretstore"
)

type importOptions struct {
	InPath    string
	DBPath    string
	SecretKey string
	Prefix    string
	All       bool // import every key, not only KIS_*
}

func main() {
	var opts importOptions
	flag.StringVar(&opts.InPath, "in", ".env", "input .env file path")
	flag.StringVar(&opts.DBPath, "badger", getenv(config.EnvSecretDB, "data/secrets.badger"), "badger secrets db path")
	flag.StringVar(&opts.SecretKey, "secret-key", getenv(config.EnvSecretKey, ""), "badger encryption key (32 bytes base64/hex)")
	flag.StringVar(&opts.Prefix, "prefix", secretstore.DefaultPrefix, "key prefix inside badger")
	flag.BoolVar(&opts.All, "all", false, "import every key, not only KIS_*")
	flag.Parse()

	if err := run(opts, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err.Error())
		os.Exit(1)
	}
}

// run imports the selected keys. The store is closed before run returns,
// on success and on failure alike.
func run(opts importOptions, stderr io.Writer) (err error) {
	keyBytes, err := secretstore.ParseKey(opts.SecretKey)
	if err != nil {
		return err
	}
	if keyBytes == nil {
		return errors.Errorf("secret key is required: set %s or pass -secret-key", config.EnvSecretKey)
	}

	kv, err := godotenv.Read(opts.InPath)
	if err != nil {
		return errors.Wrapf(err, "read %s", opts.InPath)
	}
	kv = selectKeys(kv, opts.All)

	ss, err := secretstore.Open(secretstore.OpenOptions{
		Path:          opts.DBPath,
		EncryptionKey: keyBytes,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := ss.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "close secret store")
		}
	}()

	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := ss.SetString(opts.Prefix+k, kv[k]); err != nil {
			return errors.Wrapf(err, "store %s", k)
		}
	}

	fmt.Fprintf(stderr, "imported %d keys into %s (prefix %s): %s\n",
		len(keys), opts.DBPath, opts.Prefix, strings.Join(keys, ", "))
	return nil
}

// selectKeys keeps KIS_* entries, dropping the store's own location and key.
func selectKeys(kv map[string]string, all bool) map[string]string {
	out := make(map[string]string, len(kv))
	for k, v := range kv {
		if k == config.EnvSecretDB || k == config.EnvSecretKey {
			continue
		}
		if !all && !strings.HasPrefix(k, "KIS_") {
			continue
		}
		out[k] = v
	}
	return out
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
