package usecase

import (
	"context"
	"encoding/json"
	"time"

	"ApexCore/internal/domain/models"
	domrepo "ApexCore/internal/domain/repository"
	mid "ApexCore/internal/middleware"
	pkgkafka "ApexCore/pkg/kafka"
)

// KafkaBarsHandler consumes closed bars from a Kafka topic and feeds them
// through the pipeline. Used when the feed source is kafka instead of a
// direct WebSocket connection.
type KafkaBarsHandler struct {
	topic   string
	pipe    *mid.BarPipeline
	metrics domrepo.Metrics
}

func NewKafkaBarsHandler(topic string, pipe *mid.BarPipeline, metrics domrepo.Metrics) *KafkaBarsHandler {
	return &KafkaBarsHandler{topic: topic, pipe: pipe, metrics: metrics}
}

func (h *KafkaBarsHandler) Topic() string { return h.topic }

// incoming message schema: {s, series, t, o, h, l, c, v}
func (h *KafkaBarsHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		S      string  `json:"s"`
		Series string  `json:"series"`
		T      int64   `json:"t"`
		O      float64 `json:"o"`
		H      float64 `json:"h"`
		L      float64 `json:"l"`
		C      float64 `json:"c"`
		V      float64 `json:"v"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	ts := m.T
	if ts > 1e11 { // ms
		ts = ts / 1000
	}
	barTime := time.Unix(ts, 0)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(barTime).Seconds())

	return h.pipe.Process(ctx, &models.BarEvent{
		Series: models.NormalizeSeries(m.Series),
		Symbol: m.S,
		Bar: models.Bar{
			Time:   barTime,
			Open:   m.O,
			High:   m.H,
			Low:    m.L,
			Close:  m.C,
			Volume: m.V,
		},
	})
}

var _ pkgkafka.MessageHandler = (*KafkaBarsHandler)(nil)
