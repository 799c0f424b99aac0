// Package main rebuilds a content stream from the event store and prints its
// node tree.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	contentcmd "github.com/louisbranch/contentrepository/internal/cmd/content"
	entrypoint "github.com/louisbranch/contentrepository/internal/platform/cmd"
)

func main() {
	cfg, err := contentcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[CONTENT] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = contentcmd.Run(ctx, cfg, os.Stdout)
	stop()
	entrypoint.ExitOnError(entrypoint.ServiceContent, cfg.Locale, err)
}
