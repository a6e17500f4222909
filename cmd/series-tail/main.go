// series-tail prints chart series updates published by the dashboard.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"prediction-dashboard-service/internal/events"
	"prediction-dashboard-service/internal/observability/logging"
)

func main() {
	brokers := flag.String("brokers", "localhost:9092", "Kafka brokers (comma-separated)")
	topic := flag.String("topic", "dashboard.chart.series", "Series topic")
	chart := flag.String("chart", "", "Only print updates for this chart")
	since := flag.Duration("since", time.Hour, "Start this far back")
	flag.Parse()

	cfg := logging.DefaultConfig()
	cfg.Format = "console"
	cfg.Service = "series-tail"
	logging.Init(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	brokerList := strings.Split(*brokers, ",")
	partitions, err := lookupPartitions(ctx, brokerList, *topic)
	if err != nil {
		log.Fatal().Err(err).Str("topic", *topic).Msg("Failed to read topic partitions")
	}

	// One partition reader per partition, without a consumer group (works
	// better through port-forward). Series are keyed by chart, so every
	// partition has to be read.
	msgs := make(chan kafka.Message)
	for _, rc := range readerConfigs(brokerList, *topic, partitions) {
		go tailPartition(ctx, rc, *since, msgs)
	}

	log.Info().
		Str("topic", *topic).
		Int("partitions", len(partitions)).
		Dur("since", *since).
		Msg("Consuming chart series")

	for {
		var msg kafka.Message
		select {
		case <-ctx.Done():
			return
		case msg = <-msgs:
		}

		var ev events.SeriesEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			log.Warn().Err(err).Msg("Skipping undecodable message")
			continue
		}
		if *chart != "" && ev.Chart != *chart {
			continue
		}
		fmt.Fprintln(os.Stdout, summarize(ev))
	}
}

func lookupPartitions(ctx context.Context, brokers []string, topic string) ([]kafka.Partition, error) {
	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return conn.ReadPartitions(topic)
}

// readerConfigs returns one reader config per partition of topic.
func readerConfigs(brokers []string, topic string, partitions []kafka.Partition) []kafka.ReaderConfig {
	var out []kafka.ReaderConfig
	for _, p := range partitions {
		if p.Topic != topic {
			continue
		}
		out = append(out, kafka.ReaderConfig{
			Brokers:   brokers,
			Topic:     topic,
			Partition: p.ID,
			MinBytes:  1,
			MaxBytes:  10e6,
		})
	}
	return out
}

func tailPartition(ctx context.Context, rc kafka.ReaderConfig, since time.Duration, out chan<- kafka.Message) {
	reader := kafka.NewReader(rc)
	defer reader.Close()

	if err := reader.SetOffsetAt(ctx, time.Now().Add(-since)); err != nil {
		log.Warn().Err(err).Int("partition", rc.Partition).Msg("Could not seek, reading from the first offset")
	}

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Int("partition", rc.Partition).Msg("Kafka read error")
			time.Sleep(time.Second)
			continue
		}
		select {
		case out <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func summarize(ev events.SeriesEvent) string {
	at := time.UnixMilli(ev.Timestamp).Format(time.RFC3339)
	s := ev.Series
	if len(s.Categories) > 0 {
		parts := make([]string, len(s.Categories))
		for i, c := range s.Categories {
			n := 0
			if i < len(s.Counts) {
				n = s.Counts[i]
			}
			parts[i] = fmt.Sprintf("%s=%d", c, n)
		}
		return fmt.Sprintf("%s %-18s %s", at, ev.Chart, strings.Join(parts, " "))
	}
	return fmt.Sprintf("%s %-18s %q %d points", at, ev.Chart, s.Name, len(s.Points))
}
