package main

import (
	"flag"
	"log"

	"github.com/minealert/minealert-backend/cmd"
)

// Overridden at build time with -ldflags "-X main.apiVersion=..."
var apiVersion = "dev"

func main() {
	shouldRunMigrations := flag.Bool("migrations", false, "Run migrations")
	shouldRunServer := flag.Bool("server", false, "Run server")
	shouldRunWorker := flag.Bool("worker", false, "Run the alert workers and the drone auto scan scheduler")
	flag.Parse()

	config := cmd.CompiledConfig{Version: apiVersion}

	if !*shouldRunMigrations && !*shouldRunServer && !*shouldRunWorker {
		flag.Usage()
		log.Fatal("one of --migrations, --server or --worker is required")
	}

	if *shouldRunMigrations {
		if err := cmd.RunMigrations(); err != nil {
			log.Fatal(err)
		}
	}

	if *shouldRunServer {
		if err := cmd.RunServer(config); err != nil {
			log.Fatal(err)
		}
	}

	if *shouldRunWorker {
		if err := cmd.RunWorker(config); err != nil {
			log.Fatal(err)
		}
	}
}
