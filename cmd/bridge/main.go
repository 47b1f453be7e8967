package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tengen/gateway/internal/bridge"
)

func main() {
	// Set custom usage function
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment variables (used as fallback if flags not provided):\n")
		fmt.Fprintf(os.Stderr, "  GATEWAY_ADDR  - Gateway server address\n")
		fmt.Fprintf(os.Stderr, "  NODE_ADDRESS  - Compute node account identity\n")
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s --config config.yaml\n", os.Args[0])
	}

	// Command-line flags
	var configPath = flag.String("config", "", "Path to config file (YAML)")
	flag.Parse()

	// Load configuration
	cfg, err := bridge.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Bridge node %s connecting to %s", cfg.Node.Address, cfg.Gateway.URL)
	log.Println("Note: the node address must be authorized by the gateway administrator before reports are accepted")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	b := bridge.New(cfg)
	if err := b.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Bridge stopped: %v", err)
	}
}
