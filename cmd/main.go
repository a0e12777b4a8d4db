package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/IndexSignal/config"
	"github.com/Alias1177/IndexSignal/internal/analyze"
	"github.com/Alias1177/IndexSignal/internal/api/twelvedata"
	"github.com/Alias1177/IndexSignal/internal/candlestick"
	"github.com/Alias1177/IndexSignal/internal/database"
	"github.com/Alias1177/IndexSignal/models"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}
}

func main() {
	lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	apiKey := os.Getenv("TWELVE_API_KEY")
	if apiKey == "" {
		log.Fatal().Msg("TWELVE_API_KEY is required")
	}
	symbol := getEnv("SYMBOL", "SPX")

	candleCount := 100
	if v := os.Getenv("CANDLE_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			candleCount = n
		}
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	client := twelvedata.NewClient(apiKey, symbol)
	source := candlestick.SelectSource(os.Getenv("PATTERN_SOURCE"))
	engine := analyze.New(cfg, source)

	ctx := context.Background()

	var db *database.DB
	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		db, err = database.New(connStr)
		if err != nil {
			log.Fatal().Err(err).Msg("database connect failed")
		}
		defer db.Close()

		saved, err := db.LoadZoneState(ctx, symbol)
		if err != nil {
			log.Warn().Err(err).Msg("zone state load failed, starting fresh")
		} else {
			engine.Registry().Restore(saved)
		}
	}

	snapshot := analyze.Snapshot{
		Candles: make(map[models.Timeframe][]models.Candle),
	}
	for _, tf := range models.AllTimeframes() {
		candles, err := client.GetCandles(ctx, tf, candleCount)
		if err != nil {
			log.Warn().Err(err).Str("timeframe", string(tf)).Msg("fetch failed, timeframe skipped")
			continue
		}
		snapshot.Candles[tf] = candles
	}
	if len(snapshot.Candles) == 0 {
		log.Fatal().Msg("no candle data fetched for any timeframe")
	}

	price, err := client.GetQuote(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("quote fetch failed")
	}
	snapshot.Price = price

	result, err := engine.Run(snapshot, analyze.External{})
	if err != nil {
		log.Fatal().Err(err).Msg("analysis failed")
	}

	fmt.Printf("\n===== %s =====\n", symbol)
	fmt.Printf("Action:     %s\n", result.Action)
	fmt.Printf("Direction:  %s\n", result.Direction)
	fmt.Printf("Confidence: %.1f/100 (%s)\n", result.Confidence.Total, result.Confidence.Level)
	fmt.Printf("Price:      %.2f\n", result.Price)
	fmt.Println("Reasons:")
	for _, r := range result.Reasons {
		fmt.Printf("  - %s\n", r)
	}

	if os.Getenv("OUTPUT_JSON") == "true" {
		b, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Error().Err(err).Msg("result marshal failed")
		} else {
			fmt.Println(string(b))
		}
	}

	if db != nil {
		if err := db.SaveSignal(ctx, symbol, result); err != nil {
			log.Error().Err(err).Msg("signal save failed")
		}
		if err := db.SaveZoneState(ctx, symbol, engine.Registry().Export()); err != nil {
			log.Error().Err(err).Msg("zone state save failed")
		}
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
