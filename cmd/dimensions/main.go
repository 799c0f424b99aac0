// Package main prints the variation graph of a dimension configuration.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	dimensionscmd "github.com/louisbranch/contentrepository/internal/cmd/dimensions"
	entrypoint "github.com/louisbranch/contentrepository/internal/platform/cmd"
)

func main() {
	cfg, err := dimensionscmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[DIMENSIONS] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = dimensionscmd.Run(ctx, cfg, os.Stdout)
	stop()
	entrypoint.ExitOnError(entrypoint.ServiceDimensions, cfg.Locale, err)
}
