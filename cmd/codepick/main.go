package main

import (
	"github.com/joho/godotenv"

	"github.com/kyaoi/codepick/internal/cli"
)

func main() {
	_ = godotenv.Load()
	cli.Execute()
}
