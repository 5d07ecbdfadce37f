package initializers

import (
	"log"

	"github.com/joho/godotenv"
)

// LoadEnv reads .env when present. A missing file is fine: the process
// environment is used as is.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded, using the process environment.")
	}
}
