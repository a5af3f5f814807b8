package main

import (
	"log/slog"
	"os"

	"github.com/CastleDev04/venue-reservation-system/internal/app"
	"github.com/joho/godotenv"
)

func main() {
	// Missing .env is fine, flags and real env vars still apply.
	_ = godotenv.Load()

	err := app.Run()
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
