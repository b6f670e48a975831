package main

import (
	"log"

	"github.com/MrSnakeDoc/statusboard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatalf("❌ statusboard failed: %v", err)
	}
}
