package main

import (
	"github.com/joho/godotenv"

	"github.com/Norgate-AV/cementci/cmd"
)

func main() {
	// Local runs can provide the CI environment through a .env file
	_ = godotenv.Load()

	cmd.Execute()
}
