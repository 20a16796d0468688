package main

import (
	"log"

	"pagedoc/internal/commands"
)

func main() {
	if err := commands.New().Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
