package initializers

import (
	"log"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a local .env file when one exists. Missing
// files are not fatal so containerized deployments can rely on real env vars.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
		return
	}
	log.Println("Env loaded successfully")
}
