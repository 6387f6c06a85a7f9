package main

import (
	"os"

	_ "github.com/dhima/client-service/docs" // registers the swagger spec
)

// @title Client Service API
// @version 1.0
// @description CRUD API for client records stored in MySQL, with change events published to Kafka.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
