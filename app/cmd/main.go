package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pdfbot/app/server"
	"pdfbot/config"

	"github.com/joho/godotenv"
)

func init() {
	loadEnvVariables()
}

func main() {
	configPath := flag.String("config", os.Getenv("PDFBOT_CONFIG"), "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.NeedsAPIKey() && cfg.APIKey == "" {
		log.Fatal("OPENAI_API_KEY is not set")
	}

	s := server.NewServer(cfg)
	go func() {
		if err := s.Run(context.Background()); err != nil {
			log.Fatal(err)
		}
	}()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	<-sigch
	log.Println("Received shutdown signal, shutting down server...")
	s.Stop()
}

func loadEnvVariables() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using process environment")
	}
}
