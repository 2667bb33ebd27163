package main

import (
	"dailydigest/cmd/handlers"
	"dailydigest/internal/logger"
	"fmt"
	"os"
)

func main() {
	logger.Init()
	if err := handlers.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
