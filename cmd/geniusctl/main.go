package main

import (
	"context"
	"os"

	"codeberg.org/genius/server/internal/logger"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		logger.Fatal("command failed", "error", err)
	}
}
