package main

import (
	"context"
	"fmt"
	"os"

	"github.com/qzaway/foodcourt/internal/config"
	"github.com/qzaway/foodcourt/internal/identity"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	store, closeStore, err := identity.OpenStore(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open identity store: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	userID := identity.NewProvider(store, logger).UserID(context.Background())
	if userID == "" {
		fmt.Fprintln(os.Stderr, "Failed to read or create a user id")
		os.Exit(1)
	}

	fmt.Printf("Store: %s\n", cfg.Identity.Store)
	if cfg.Identity.Store == "file" {
		fmt.Printf("File: %s\n", cfg.Identity.File)
	}
	fmt.Printf("User ID: %s\n", userID)
}
