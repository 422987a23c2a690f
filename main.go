package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/knowgen/knowgen/cmd"
)

func main() {
	// API keys may live in a local .env; absence is fine.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
