// Package main provides a CLI command for one-shot dependency diagnostics.
// Usage: call-probe [--timeout 10s] [--output json]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"call-agent/internal/infra/responder"
	"call-agent/internal/infra/synthesizer"
)

// ProbeOutput represents the JSON output format for diagnostics results.
type ProbeOutput struct {
	Healthy      bool          `json:"healthy"`
	Dependencies []ProbeResult `json:"dependencies"`
}

// ProbeResult represents the outcome of one dependency probe.
type ProbeResult struct {
	Service   string `json:"service"`
	Healthy   bool   `json:"healthy"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// pinger is the one operation diagnostics needs from a dependency.
type pinger interface {
	Ping(ctx context.Context) error
}

func main() {
	// Parse command-line arguments
	var (
		timeout      time.Duration
		outputFormat string
	)

	flag.DurationVar(&timeout, "timeout", 10*time.Second, "Timeout for each dependency probe")
	flag.StringVar(&outputFormat, "output", "text", "Output format: text or json")
	flag.Parse()

	// .env is optional; the probe reads the same environment as the agent
	_ = godotenv.Load()

	logger := initLogger()

	resp := createResponder(logger)
	synth := createSynthesizer(logger)

	deps := []struct {
		service string
		pinger  pinger
	}{
		{responder.ServiceName, resp},
		{synthesizer.ServiceName, synth},
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Probe all dependencies concurrently; one slow dependency must not
	// delay the report on the others beyond the shared timeout.
	results := make([]ProbeResult, len(deps))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, dep := range deps {
		i, dep := i, dep
		eg.Go(func() error {
			start := time.Now()
			err := dep.pinger.Ping(egCtx)
			result := ProbeResult{
				Service:   dep.service,
				Healthy:   err == nil,
				LatencyMS: time.Since(start).Milliseconds(),
			}
			if err != nil {
				result.Error = err.Error()
			}
			results[i] = result
			return nil // A down dependency is a result, not a probe failure
		})
	}
	_ = eg.Wait()

	healthy := true
	for _, result := range results {
		if !result.Healthy {
			healthy = false
		}
	}

	// Output results
	if outputFormat == "json" {
		outputJSON(healthy, results)
	} else {
		outputText(healthy, results)
	}

	if !healthy {
		os.Exit(1)
	}
}

// outputText prints probe results in human-readable format.
func outputText(healthy bool, results []ProbeResult) {
	fmt.Printf("Dependency Status:\n")
	for i, result := range results {
		status := "UP"
		if !result.Healthy {
			status = "DOWN"
		}
		fmt.Printf("%d. %s: %s (%dms)\n", i+1, result.Service, status, result.LatencyMS)
		if result.Error != "" {
			fmt.Printf("   Error: %s\n", result.Error)
		}
	}

	fmt.Printf("\n")
	if healthy {
		fmt.Printf("All dependencies healthy\n")
	} else {
		down := 0
		for _, result := range results {
			if !result.Healthy {
				down++
			}
		}
		fmt.Printf("%d of %d dependencies down\n", down, len(results))
	}
}

// outputJSON prints probe results in JSON format.
func outputJSON(healthy bool, results []ProbeResult) {
	output := ProbeOutput{
		Healthy:      healthy,
		Dependencies: results,
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to encode JSON: %v\n", err)
		os.Exit(1)
	}
}

// createResponder builds the language model client named by RESPONDER_TYPE,
// defaulting to the mock. The probe only needs the Ping operation.
func createResponder(logger *slog.Logger) pinger {
	responderType := os.Getenv("RESPONDER_TYPE")
	if responderType == "" {
		responderType = "mock"
	}

	switch responderType {
	case "mock":
		return responder.NewMock()
	case "claude":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			fmt.Fprintln(os.Stderr, "Error: ANTHROPIC_API_KEY is required when RESPONDER_TYPE=claude")
			os.Exit(1)
		}
		return responder.NewClaude(apiKey)
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			fmt.Fprintln(os.Stderr, "Error: OPENAI_API_KEY is required when RESPONDER_TYPE=openai")
			os.Exit(1)
		}
		config, err := responder.LoadOpenAIConfig()
		if err != nil {
			logger.Error("failed to load OpenAI configuration", slog.Any("error", err))
			fmt.Fprintf(os.Stderr, "Error: Failed to load OpenAI configuration: %v\n", err)
			os.Exit(1)
		}
		return responder.NewOpenAI(apiKey, config)
	default:
		fmt.Fprintf(os.Stderr, "Error: Invalid RESPONDER_TYPE %q (expected mock, openai or claude)\n", responderType)
		os.Exit(1)
		return nil
	}
}

// createSynthesizer builds the text-to-speech client named by
// SYNTHESIZER_TYPE, defaulting to the mock.
func createSynthesizer(logger *slog.Logger) pinger {
	synthesizerType := os.Getenv("SYNTHESIZER_TYPE")
	if synthesizerType == "" {
		synthesizerType = "mock"
	}

	switch synthesizerType {
	case "mock":
		return synthesizer.NewMock()
	case "elevenlabs":
		config, err := synthesizer.LoadElevenLabsConfig()
		if err != nil {
			logger.Error("failed to load ElevenLabs configuration", slog.Any("error", err))
			fmt.Fprintf(os.Stderr, "Error: Failed to load ElevenLabs configuration: %v\n", err)
			os.Exit(1)
		}
		return synthesizer.NewElevenLabs(config)
	default:
		fmt.Fprintf(os.Stderr, "Error: Invalid SYNTHESIZER_TYPE %q (expected mock or elevenlabs)\n", synthesizerType)
		os.Exit(1)
		return nil
	}
}

// initLogger initializes and returns a structured logger.
func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}
