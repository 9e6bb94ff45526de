// Package main provides the entry point for the flatblog server.
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/yourusername/flatblog/internal/cli"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
