package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"

	"github.com/ckn-edge/qoeflow/internal/event"
)

const (
	kafkaBroker = "localhost:9092"
	topic       = "inference-qoe"
)

var models = []string{"resnet50", "mobilenet_v2", "yolov5s"}

func main() {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(kafkaBroker),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
	defer func() {
		if err := writer.Close(); err != nil {
			log.Fatalf("Error closing kafka writer: %v", err)
		}
	}()
	log.Printf("Starting sample producer for topic: %s on broker: %s", topic, kafkaBroker)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signals
		log.Println("Shutdown signal received, stopping producer...")
		cancel()
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		select {
		case <-ticker.C:
			key, ev := generateSampleEvent(rng)
			payload, err := json.Marshal(ev)
			if err != nil {
				log.Printf("Error marshalling event: %v", err)
				continue
			}

			err = writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: payload})
			if err != nil {
				if ctx.Err() != nil {
					log.Println("Context cancelled, exiting message loop.")
					return
				}
				log.Printf("Error writing message: %v", err)
			} else {
				log.Printf("Produced event: key=%s %s", key, string(payload))
			}

		case <-ctx.Done():
			log.Println("Producer loop stopped.")
			return
		}
	}
}

// generateSampleEvent builds one keyed inference event with plausible QoE
// numbers. The key is a session identifier so events for the same session
// land in the same window group.
func generateSampleEvent(rng *rand.Rand) (string, event.InferenceEvent) {
	sessionID := fmt.Sprintf("session_%d", rng.Intn(20))
	clientID := fmt.Sprintf("client_%d", rng.Intn(5))

	accuracy := 0.7 + rng.Float64()*0.3        // 0.7 - 1.0
	delay := 50.0 + rng.Float64()*150.0        // ms
	qoeAcc := accuracy * (0.8 + rng.Float64()*0.2)
	qoeDelay := 1.0 - delay/500.0
	ev := event.InferenceEvent{
		ClientID:    clientID,
		ServiceID:   "qoe-inference",
		ServerID:    fmt.Sprintf("edge_%d", rng.Intn(3)),
		Model:       models[rng.Intn(len(models))],
		Accuracy:    accuracy,
		Delay:       delay,
		QoETotal:    (qoeAcc + qoeDelay) / 2,
		QoEDelay:    qoeDelay,
		QoEAcc:      qoeAcc,
		PredAcc:     accuracy + rng.NormFloat64()*0.02,
		ComputeTime: 10.0 + rng.Float64()*40.0, // ms
		Timestamp:   time.Now().UnixMilli(),
	}
	return sessionID, ev
}
