package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ecardhq/contactd/pkg/contactd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := contactd.Main(ctx, os.Args[1:]); err != nil {
		log.Fatalf("contactd: %v", err)
	}
}
