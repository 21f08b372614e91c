// FilePath: cmd/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tm "github.com/buger/goterm"
	nuts "github.com/vaudience/go-nuts"

	"github.com/blitt001/ha-opensensemap/internal/config"
	"github.com/blitt001/ha-opensensemap/internal/coordinator"
	"github.com/blitt001/ha-opensensemap/internal/models"
	"github.com/blitt001/ha-opensensemap/internal/osem"
	"github.com/blitt001/ha-opensensemap/internal/server"
	"github.com/blitt001/ha-opensensemap/internal/source"
)

func main() {
	// Clear console and draw logo
	ClearConsole()
	DrawLogo()
	// Initialize version info
	nuts.InitVersion()
	nuts.L.Infof("[Main] Starting openSenseMap uploader v%s", nuts.GetVersion())

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	provider := config.NewProvider(cfg)
	provider.Watch()

	// Initialize local value sources
	sources := initializeSources(cfg)
	defer sources.Close()

	client := osem.NewClient(osem.DefaultBaseURL, osem.DefaultTimeout)
	coord := coordinator.New(provider, sources, client)

	// Create and start server
	srv := server.New(provider, coord)
	if err := srv.Start(); err != nil {
		nuts.L.Errorf("[Main] Server error: %v", err)
		os.Exit(1)
	}
}

// initializeSources wires the configured source backends into a mux.
func initializeSources(cfg *config.Config) *source.Mux {
	mux := source.NewMux()

	if len(cfg.Source.Static) > 0 {
		mux.Register("static", staticSource(cfg))
		nuts.L.Infof("[Main] Registered static source with %d readings", len(cfg.Source.Static))
	}

	if cfg.Source.Redis.Addr != "" {
		rs := source.NewRedis(cfg.Source.Redis)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rs.Ping(ctx); err != nil {
			nuts.L.Fatalf("[Main] Failed to ping Redis at %s: %v", cfg.Source.Redis.Addr, err)
		}
		mux.Register("redis", rs)
		nuts.L.Infof("[Main] Registered Redis source at %s", cfg.Source.Redis.Addr)
	}

	if cfg.Source.MQTT.Broker != "" {
		topics := mqttTopics(cfg)
		ms, err := source.NewMQTT(cfg.Source.MQTT, topics)
		if err != nil {
			nuts.L.Fatalf("[Main] Failed to connect to MQTT broker %s: %v", cfg.Source.MQTT.Broker, err)
		}
		mux.Register("mqtt", ms)
		nuts.L.Infof("[Main] Registered MQTT source at %s (%d topics)", cfg.Source.MQTT.Broker, len(topics))
	}

	return mux
}

func staticSource(cfg *config.Config) *source.Static {
	readings := make(map[string]models.Reading, len(cfg.Source.Static))
	for ref, entry := range cfg.Source.Static {
		readings[ref] = models.Reading{Value: entry.Value, Unit: entry.Unit, Available: true}
	}
	return source.NewStatic(readings)
}

// mqttTopics lists the topics referenced by active mapping entries.
func mqttTopics(cfg *config.Config) []string {
	var topics []string
	for _, entry := range cfg.Sensors.Mapping().ActiveEntries() {
		if topic, ok := strings.CutPrefix(entry.SourceRef, "mqtt://"); ok {
			topics = append(topics, topic)
		}
	}
	return topics
}

// ClearConsole clears the console screen and draws the logo.
func ClearConsole() {
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Flush()
}

func DrawLogo() {
	fmt.Println()
	lines := []string{
		"   ____  _____      __  ___",
		"  / __ \\/ ___/___  /  |/  /",
		" / / / /\\__ \\/ _ \\/ /|_/ / ",
		"/ /_/ /___/ /  __/ /  / /  ",
		"\\____//____/\\___/_/  /_/   ",
		"...........................  " + nuts.GetVersion(),
	}

	for _, line := range lines {
		fmt.Println(line)
	}
}
