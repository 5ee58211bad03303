// shopctl is a terminal storefront for the online pet shop backend. It
// mirrors what the web front-end did: browse and filter the catalog, manage
// a cart, check out, follow orders, and leave reviews.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wichananm65/pet-shop-client/internal/cart"
	"github.com/wichananm65/pet-shop-client/internal/catalog"
	"github.com/wichananm65/pet-shop-client/internal/config"
	"github.com/wichananm65/pet-shop-client/internal/gateway"
	"github.com/wichananm65/pet-shop-client/internal/order"
	"github.com/wichananm65/pet-shop-client/internal/review"
	"github.com/wichananm65/pet-shop-client/internal/session"
	"github.com/wichananm65/pet-shop-client/internal/storage"
)

var (
	verbose bool

	app *clientApp
)

// clientApp bundles the wired components behind the commands.
type clientApp struct {
	cfg     config.Config
	store   storage.Store
	gw      *gateway.Client
	session *session.Store
	catalog *catalog.Cache
	cart    *cart.Reconciler
	orders  *order.Service
	reviews *review.Service
	log     zerolog.Logger
}

func newClientApp() (*clientApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	store, err := storage.OpenBadgerStore(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open client store at %s: %w", cfg.StorePath, err)
	}

	// A base URL saved with `shopctl set-base-url` overrides the configured
	// default, exactly like the saved apiBaseUrl did in the browser.
	baseURL := cfg.BaseURL
	if stored, err := store.Get(storage.BaseURLKey); err == nil && stored != "" {
		baseURL = strings.TrimRight(stored, "/")
	}

	gw := gateway.New(baseURL, log)
	sess := session.NewStore(gw, store, log)
	cat := catalog.NewCache(gw)

	return &clientApp{
		cfg:     cfg,
		store:   store,
		gw:      gw,
		session: sess,
		catalog: cat,
		cart:    cart.NewReconciler(gw, sess, cat, log),
		orders:  order.NewService(gw, sess, log),
		reviews: review.NewService(gw, sess, log),
		log:     log,
	}, nil
}

var rootCmd = &cobra.Command{
	Use:           "shopctl",
	Short:         "Storefront client for the online pet shop",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		app, err = newClientApp()
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil {
			_ = app.store.Close()
		}
	},
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		healthCmd,
		setBaseURLCmd,
		registerCmd,
		loginCmd,
		logoutCmd,
		whoamiCmd,
		browseCmd,
		productCmd,
		cartCmd,
		checkoutCmd,
		ordersCmd,
		trackingCmd,
		reviewCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
