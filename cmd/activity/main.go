package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"coffeeshop/internal/activity"
	"coffeeshop/internal/config"
	"coffeeshop/pkg/graceful"
	"coffeeshop/pkg/kafkaclient"
	"coffeeshop/pkg/logger"
)

func main() {
	configPath := flag.String("config", "storefront.yaml", "optional YAML config file")
	flag.Parse()

	hasEnv := config.LoadEnv()
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Must(logger.Options{Development: cfg.Development(), Level: cfg.LogLevel, File: cfg.LogFile})
	defer func() { _ = log.Sync() }()
	if !hasEnv {
		log.Debug("no .env file found, assuming environment variables are set directly")
	}

	// All three settings are mandatory for the tail.
	if !cfg.Kafka.Enabled() || cfg.Kafka.GroupID == "" {
		log.Fatal("KAFKA_BROKER, KAFKA_TOPIC and KAFKA_GROUP_ID must be set")
	}

	ctx, cancel := graceful.Context(context.Background(), log)
	defer cancel()

	log.Info("connecting to kafka",
		zap.String("broker", cfg.Kafka.Broker),
		zap.String("topic", cfg.Kafka.Topic),
		zap.String("group_id", cfg.Kafka.GroupID))

	consumer := kafkaclient.NewKafkaConsumer(cfg.Kafka.Topic, cfg.Kafka.GroupID, cfg.Kafka.Broker, log.Named("kafka"))
	consumer.StartConsuming(ctx)

	counts := make(map[activity.Type]int)
	stream := activity.NewStream(consumer, log.Named("stream"))
	for e := range stream.Events(ctx) {
		counts[e.Type]++
		fmt.Println(describe(e))
	}

	consumer.Stop()
	log.Info("activity tail finished", zap.Any("counts", counts))
}

func describe(e activity.Event) string {
	when := humanize.Time(e.At)
	switch e.Type {
	case activity.Search:
		if e.Query == "" {
			return fmt.Sprintf("%s: listed %d shops", when, e.ResultCount)
		}
		return fmt.Sprintf("%s: searched %q, %d results", when, e.Query, e.ResultCount)
	case activity.FavoriteToggled:
		state := "unfavorited"
		if e.Favorite != nil && *e.Favorite {
			state = "favorited"
		}
		return fmt.Sprintf("%s: %s shop %s", when, state, e.ShopID)
	case activity.ShopViewed:
		return fmt.Sprintf("%s: viewed shop %s", when, e.ShopID)
	case activity.CategorySelected:
		return fmt.Sprintf("%s: shop %s category %s, %d products", when, e.ShopID, e.Category, e.ResultCount)
	default:
		return fmt.Sprintf("%s: %s", when, e.Type)
	}
}
