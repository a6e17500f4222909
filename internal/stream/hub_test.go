package stream

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"prediction-dashboard-service/internal/analytics"
	"prediction-dashboard-service/internal/observability/metrics"
)

func startHub(t *testing.T) (*Hub, *metrics.Metrics, string) {
	t.Helper()
	m := metrics.NewMetrics(prometheus.NewRegistry())
	h := NewHub(m)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return h, m, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitClients(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.Clients() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d clients, got %d", want, h.Clients())
}

func TestHub_BroadcastsSeries(t *testing.T) {
	h, _, url := startHub(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()
	waitClients(t, h, 1)

	hist := analytics.Histogram{Categories: analytics.Labels, Counts: []int{1, 0, 2, 0}}
	s := analytics.HistogramSeries(analytics.ChartLabelDistribution, "Count", hist)
	if err := h.Handle(analytics.ChartLabelDistribution).ReplaceSeries(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var u Update
	if err := json.Unmarshal(data, &u); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if u.Chart != analytics.ChartLabelDistribution {
		t.Errorf("expected chart %s, got %s", analytics.ChartLabelDistribution, u.Chart)
	}
	if len(u.Series.Counts) != 4 || u.Series.Counts[2] != 2 {
		t.Errorf("expected counts [1 0 2 0], got %v", u.Series.Counts)
	}
}

func TestHub_ClientGauge(t *testing.T) {
	h, m, url := startHub(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	waitClients(t, h, 1)

	if got := testutil.ToFloat64(m.StreamClients); got != 1 {
		t.Errorf("expected gauge 1, got %v", got)
	}

	conn.Close()
	waitClients(t, h, 0)

	if got := testutil.ToFloat64(m.StreamClients); got != 0 {
		t.Errorf("expected gauge 0, got %v", got)
	}
}

func TestHub_PublishWithoutSubscribers(t *testing.T) {
	h := NewHub(metrics.NewMetrics(prometheus.NewRegistry()))

	s := analytics.TimeSeries(analytics.ChartScoreTimeSeries, "Score", []analytics.Point{{X: 1, Y: 0.5}})
	if err := h.Publish(analytics.ChartScoreTimeSeries, s); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestHub_PublishDropsWhenQueueFull(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	h := NewHub(m)

	s := analytics.TimeSeries(analytics.ChartScoreTimeSeries, "Score", nil)
	for i := 0; i < cap(h.broadcast)+3; i++ {
		if err := h.Publish(analytics.ChartScoreTimeSeries, s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := testutil.ToFloat64(m.StreamDropped); got != 3 {
		t.Errorf("expected 3 dropped updates, got %v", got)
	}
}
