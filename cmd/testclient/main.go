package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"

	"prediction-dashboard-service/internal/models"
	"prediction-dashboard-service/internal/observability"
	"prediction-dashboard-service/internal/sample"
)

func main() {
	api := flag.String("api", "http://localhost:8080", "Dashboard API base URL")
	grpcAddr := flag.String("grpc", "localhost:50051", "gRPC health address")
	variant := flag.String("variant", "vectara", "Batch variant (vectara or gibberish)")
	size := flag.Int("n", 20, "Records per batch")
	batches := flag.Int("batches", 3, "Number of batches to send")
	interval := flag.Duration("interval", 2*time.Second, "Delay between batches")
	flag.Parse()

	checkHealth(*grpcAddr)

	v, err := models.ParseVariant(*variant)
	if err != nil {
		log.Fatalf("invalid variant: %v", err)
	}

	gen := sample.New(time.Second)
	client := &http.Client{Timeout: 10 * time.Second}

	for i := 0; i < *batches; i++ {
		batch := gen.Scores(*size)
		if v == models.VariantClassification {
			batch = gen.Classifications(*size)
		}

		log.Printf("Sending batch %d: variant=%s records=%d", i+1, v, batch.Len())
		if err := post(client, *api+"/v1/batches", batch); err != nil {
			log.Fatalf("failed to send batch: %v", err)
		}
		if err := post(client, *api+"/v1/stats", batch); err != nil {
			log.Fatalf("failed to fetch stats: %v", err)
		}
		time.Sleep(*interval)
	}
}

func checkHealth(addr string) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{
		Service: observability.DashboardService,
	})
	if err != nil {
		log.Fatalf("health check failed: %v", err)
	}
	log.Printf("Health: %s", resp.GetStatus())
}

func post(client *http.Client, url string, batch models.Batch) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return err
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s: %s: %s", url, resp.Status, bytes.TrimSpace(out))
	}
	log.Printf("%s -> %s", url, bytes.TrimSpace(out))
	return nil
}
