// Command kis is a one-shot command line front end for the KIS overseas
// equity API. It prints the broker's raw JSON response on stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/betbot/kisgo/kis/auth"
	"github.com/betbot/kisgo/kis/client"
	"github.com/betbot/kisgo/kis/types"
	"github.com/betbot/kisgo/pkg/config"
	"github.com/betbot/kisgo/pkg/logger"
	sdkhttp "github.com/betbot/kisgo/pkg/sdk/http"
)

const usage = `usage: kis [flags] <command> [args]

commands:
  price  TICKER
  balance
  orders
  buy    TICKER PRICE QTY
  sell   TICKER PRICE QTY
  amend  TICKER ORDER_ID PRICE QTY
  cancel TICKER ORDER_ID QTY

flags:
`

const (
	exitOK       = 0
	exitError    = 1
	exitUsage    = 2
	exitRejected = 3 // broker answered with rt_cd != "0"
)

var errUsage = errors.New("bad arguments")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("kis", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	var (
		cfgPath = fs.String("config", "", "YAML or JSON config file")
		envPath = fs.String("env", "", ".env file to load before reading the environment")
		market  = fs.String("market", "", "market override, e.g. nasdaq, nyse, hongkong")
		account = fs.String("account", "", "account (CANO) override")
		paper   = fs.Bool("paper", false, "trade on the paper host with paper transaction ids")
	)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	cmd := fs.Args()
	if len(cmd) == 0 {
		fs.Usage()
		return exitUsage
	}

	cfg, err := config.LoadWithOptions(config.Options{File: *cfgPath, EnvFile: *envPath})
	if err != nil {
		fmt.Fprintln(stderr, "config error:", err)
		return exitError
	}
	if *market != "" {
		cfg.Market = *market
	}
	if *account != "" {
		cfg.Account = *account
	}
	if *paper {
		cfg.UsePaper()
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, "config error:", err)
		return exitError
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputFile: cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
		Console:    stderr,
	}); err != nil {
		fmt.Fprintln(stderr, "logger error:", err)
		return exitError
	}

	transport := sdkhttp.NewClient(cfg.BaseURL,
		sdkhttp.WithTimeout(cfg.HTTPTimeout),
		sdkhttp.WithProxy(cfg.Proxy),
	)
	session, err := auth.NewSession(ctx, transport,
		auth.Credentials{AppKey: cfg.AppKey, AppSecret: cfg.AppSecret},
		auth.WithLogger(logger.WithField("component", "kis.session")),
	)
	if err != nil {
		return fail(stderr, err)
	}
	cli, err := client.New(session, transport, cfg.MarketID(),
		client.WithMarketTable(cfg.MarketTable()),
		client.WithLogger(logger.WithField("component", "kis.client")),
	)
	if err != nil {
		return fail(stderr, err)
	}

	raw, err := dispatch(ctx, cli, cfg.Account, cmd)
	if errors.Is(err, errUsage) {
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return exitUsage
	}
	if err != nil {
		return fail(stderr, err)
	}
	fmt.Fprintln(stdout, string(raw))

	var env types.Envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.RtCd != "" && !env.OK() {
		fmt.Fprintf(stderr, "rejected: %s %s\n", env.MsgCd, env.Msg1)
		return exitRejected
	}
	return exitOK
}

func dispatch(ctx context.Context, cli *client.Client, account string, cmd []string) (json.RawMessage, error) {
	name, args := cmd[0], cmd[1:]
	need := func(n int) error {
		if len(args) != n {
			return errors.Wrapf(errUsage, "%s takes %d arguments, got %d", name, n, len(args))
		}
		return nil
	}
	needAccount := func() error {
		if account == "" {
			return errors.Wrapf(errUsage, "%s needs an account: set %s or pass -account", name, config.EnvAccount)
		}
		return nil
	}

	switch name {
	case "price":
		if err := need(1); err != nil {
			return nil, err
		}
		resp, err := cli.FetchPrice(ctx, args[0])
		if err != nil {
			return nil, err
		}
		return resp.Raw, nil

	case "balance":
		if err := firstErr(need(0), needAccount()); err != nil {
			return nil, err
		}
		resp, err := cli.FetchBalance(ctx, account)
		if err != nil {
			return nil, err
		}
		return resp.Raw, nil

	case "orders":
		if err := firstErr(need(0), needAccount()); err != nil {
			return nil, err
		}
		resp, err := cli.FetchOpenOrders(ctx, account)
		if err != nil {
			return nil, err
		}
		return resp.Raw, nil

	case "buy", "sell":
		if err := firstErr(need(3), needAccount()); err != nil {
			return nil, err
		}
		side, err := types.ParseSide(name)
		if err != nil {
			return nil, err
		}
		price, qty, err := parsePriceQty(args[1], args[2])
		if err != nil {
			return nil, err
		}
		resp, err := cli.CreateOrder(ctx, side, account, args[0], price, qty, types.OrderTypeLimit)
		if err != nil {
			return nil, err
		}
		return resp.Raw, nil

	case "amend":
		if err := firstErr(need(4), needAccount()); err != nil {
			return nil, err
		}
		price, qty, err := parsePriceQty(args[2], args[3])
		if err != nil {
			return nil, err
		}
		resp, err := cli.AmendOrder(ctx, account, args[0], args[1], price, qty)
		if err != nil {
			return nil, err
		}
		return resp.Raw, nil

	case "cancel":
		if err := firstErr(need(3), needAccount()); err != nil {
			return nil, err
		}
		qty, err := parseQty(args[2])
		if err != nil {
			return nil, err
		}
		resp, err := cli.CancelOrder(ctx, account, args[0], args[1], qty)
		if err != nil {
			return nil, err
		}
		return resp.Raw, nil
	}
	return nil, errors.Wrapf(errUsage, "unknown command %q", name)
}

func parsePriceQty(p, q string) (decimal.Decimal, int64, error) {
	price, err := decimal.NewFromString(p)
	if err != nil {
		return decimal.Zero, 0, errors.Wrapf(errUsage, "price %q: %v", p, err)
	}
	qty, err := parseQty(q)
	return price, qty, err
}

func parseQty(q string) (int64, error) {
	qty, err := strconv.ParseInt(q, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(errUsage, "quantity %q: %v", q, err)
	}
	return qty, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// fail prints err prefixed by its kind and returns the error exit code.
func fail(stderr io.Writer, err error) int {
	var (
		authErr *auth.AuthError
		signErr *auth.SigningError
		reqErr  *client.RequestError
	)
	kind := "error"
	switch {
	case errors.As(err, &authErr):
		kind = "auth error"
	case errors.As(err, &signErr):
		kind = "signing error"
	case errors.As(err, &reqErr):
		kind = "request error"
	}
	fmt.Fprintf(stderr, "%s: %v\n", kind, err)
	return exitError
}
