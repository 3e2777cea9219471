package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/angelmondragon/cartsync/internal/cart"
	"github.com/angelmondragon/cartsync/internal/gateway"
	"github.com/angelmondragon/cartsync/internal/session"
	"github.com/angelmondragon/cartsync/pkg/config"
	"github.com/angelmondragon/cartsync/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cartcli"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cartcli",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	var (
		userID   = flag.String("user", "", "user id to bind the session to")
		addID    = flag.String("add", "", "product id to add")
		addQty   = flag.Int("qty", 1, "quantity for -add")
		setID    = flag.String("set", "", "cart entry id for -set-qty")
		setQty   = flag.Int("set-qty", 0, "new quantity for -set (below 1 removes)")
		removeID = flag.String("remove", "", "cart entry id to remove")
	)
	flag.Parse()

	if *userID == "" {
		logg.Error(context.Background(), "missing required -user flag", nil)
		os.Exit(1)
	}

	client, err := gateway.NewClient(
		cfg.API.BaseURL,
		gateway.WithTimeout(cfg.API.HTTPTimeout),
		gateway.WithPageLimit(cfg.API.PageLimit),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to build cart gateway", err)
		os.Exit(1)
	}

	sessions := session.NewManager()
	store, err := cart.NewStore(cart.StoreParams{
		Gateway:              client,
		Sessions:             sessions,
		Logger:               logg,
		PropagateFetchErrors: cfg.Cart.PropagateFetchErrors,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build cart store", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := logg.WithUserID(context.Background(), *userID)
	if err := sessions.Login(*userID); err != nil {
		logg.Error(ctx, "login failed", err)
		os.Exit(1)
	}

	if err := store.Fetch(ctx); err != nil {
		logg.Error(ctx, "fetch failed", err)
		os.Exit(1)
	}

	if *addID != "" {
		if err := store.Add(ctx, *addID, *addQty); err != nil {
			logg.Error(ctx, "add failed", err)
			os.Exit(1)
		}
	}
	if *setID != "" {
		if err := store.SetQuantity(ctx, *setID, *setQty); err != nil {
			logg.Error(ctx, "set quantity failed", err)
			os.Exit(1)
		}
	}
	if *removeID != "" {
		if err := store.Remove(ctx, *removeID); err != nil {
			logg.Error(ctx, "remove failed", err)
			os.Exit(1)
		}
	}

	snap := store.CurrentSnapshot()
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snap); err != nil {
		logg.Error(ctx, "failed to print cart", err)
		os.Exit(1)
	}
}
