// Command steward runs the autonomous park caretaker for mini-park.
// It observes the park, repairs broken facilities and tunes the entry fee
// via the admin API.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/talgya/mini-park/internal/config"
	"github.com/talgya/mini-park/internal/steward"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment.
	apiURL := envOrDefault("PARKSIM_API_URL", "http://localhost:8080")
	adminKey := os.Getenv(config.EnvAdminKey)
	intervalSec := envIntOrDefault("STEWARD_INTERVAL", 30)
	memoryPath := envOrDefault("STEWARD_MEMORY", "steward_memory.json")

	if adminKey == "" {
		slog.Error(config.EnvAdminKey + " is required")
		os.Exit(1)
	}

	interval := time.Duration(intervalSec) * time.Second

	slog.Info("mini-park steward starting",
		"api_url", apiURL,
		"interval", interval,
	)

	s := &steward.Steward{
		Observer: steward.NewObserver(apiURL),
		Actor:    steward.NewActor(apiURL, adminKey),
		Memory:   steward.LoadMemory(memoryPath),
		Policy:   steward.DefaultPolicy(),
	}

	// Wait for the park API to be ready before the first cycle.
	slog.Info("waiting for parksim API...")
	waitForAPI(apiURL)

	runCycle(s)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			runCycle(s)
		case sig := <-sigCh:
			slog.Info("received signal, shutting down", "signal", sig)
			fmt.Println("Steward stopped.")
			return
		}
	}
}

func runCycle(s *steward.Steward) {
	rec, err := s.RunCycle()
	if err != nil {
		slog.Error("steward cycle failed", "error", err)
		return
	}
	slog.Info("steward cycle complete", "tick", rec.Tick, "actions", len(rec.Actions), "failed", rec.Failed)
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultVal
}

// waitForAPI polls the status endpoint with exponential backoff until it
// responds. Exits after 5 minutes if the API never becomes ready.
func waitForAPI(apiURL string) {
	backoff := 2 * time.Second
	maxBackoff := 30 * time.Second
	deadline := time.Now().Add(5 * time.Minute)

	for {
		resp, err := http.Get(apiURL + "/api/v1/status")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				slog.Info("parksim API is ready")
				return
			}
		}
		if time.Now().After(deadline) {
			slog.Error("parksim API did not become ready within 5 minutes")
			os.Exit(1)
		}
		slog.Info("parksim not ready, retrying...", "backoff", backoff)
		time.Sleep(backoff)
		backoff = min(backoff*2, maxBackoff)
	}
}
