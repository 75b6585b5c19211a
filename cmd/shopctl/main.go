// Command shopctl drives a storefront backend from the terminal through the
// storesdk client and the checkout coordinator.
//
//	shopctl [flags] <command> [args]
//
// Credentials come from -email/-password or STOREFRONT_EMAIL and
// STOREFRONT_PASSWORD; the backend from -url or STOREFRONT_URL. Every
// command except products logs in first.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aussiebroadwan/storefront/pkg/checkout"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/aussiebroadwan/storefront/pkg/storesdk"
)

const defaultURL = "http://localhost:8080"

// errUsage makes main print usage and exit 2.
var errUsage = errors.New("usage")

type command struct {
	name    string
	args    string
	summary string
	public  bool
	run     func(ctx context.Context, s *shell, args []string) error
}

var commands = []command{
	{name: "login", summary: "log in and print the profile", run: runLogin},
	{name: "products", summary: "list the catalog", public: true, run: runProducts},
	{name: "cart", summary: "show the cart", run: runCart},
	{name: "add", args: "<product-id> <qty>", summary: "add a product to the cart", run: runAdd},
	{name: "set", args: "<item-id> <qty>", summary: "set a cart line quantity (0 removes it)", run: runSet},
	{name: "addresses", summary: "list saved shipping addresses", run: runAddresses},
	{name: "checkout", args: "[-method upi] [-on-conflict fail|resume|cancel] <address-id>", summary: "turn the cart into an order", run: runCheckout},
	{name: "pay", args: "[-paid-at RFC3339] <order> <utr> <screenshot>", summary: "submit payment proof for an order", run: runPay},
	{name: "orders", summary: "list your orders", run: runOrders},
	{name: "status", args: "<order>", summary: "show an order's status", run: runStatus},
}

// shell is the state shared by one invocation.
type shell struct {
	out    io.Writer
	client *storesdk.Client
	coord  *checkout.Coordinator
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(argv []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("shopctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	baseURL := fs.String("url", envOr("STOREFRONT_URL", defaultURL), "backend base URL")
	email := fs.String("email", os.Getenv("STOREFRONT_EMAIL"), "account email")
	password := fs.String("password", os.Getenv("STOREFRONT_PASSWORD"), "account password")
	logLevel := fs.String("log-level", envOr("LOG_LEVEL", "warn"), "log level")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(argv); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cmd, ok := lookup(fs.Arg(0))
	if !ok {
		fmt.Fprintf(stderr, "shopctl: unknown command %q\n", fs.Arg(0))
		fs.Usage()
		return 2
	}

	logger := slogx.New(slogx.Config{
		Service: "shopctl",
		Level:   *logLevel,
		Format:  "text",
		Output:  stderr,
	})
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = slogx.WithContext(ctx, logger)

	client := storesdk.NewClient(*baseURL)
	client.Logger = logger
	s := &shell{out: stdout, client: client, coord: checkout.New(client)}
	s.coord.Logger = logger

	if !cmd.public {
		if _, err := client.Login(ctx, *email, *password); err != nil {
			fmt.Fprintf(stderr, "shopctl: login: %v\n", err)
			return 1
		}
		defer client.Logout(context.WithoutCancel(ctx))
	}

	err := cmd.run(ctx, s, fs.Args()[1:])
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "usage: shopctl %s %s\n", cmd.name, cmd.args)
		return 2
	default:
		fmt.Fprintf(stderr, "shopctl %s: %v\n", cmd.name, err)
		return 1
	}
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintln(w, "usage: shopctl [flags] <command> [args]")
	fmt.Fprintln(w, "\ncommands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w, "\nflags:")
	fs.PrintDefaults()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
