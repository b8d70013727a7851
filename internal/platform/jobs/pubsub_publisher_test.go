package jobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/triade-beauty/intake/internal/services"
)

func TestPubSubSubmissionPublisherPublishesMessage(t *testing.T) {
	ctx := context.Background()
	srv := pstest.NewServer()
	defer srv.Close()

	client, err := pubsub.NewClient(ctx, "test-project",
		option.WithEndpoint(srv.Addr),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	if err != nil {
		t.Fatalf("pubsub.NewClient: %v", err)
	}
	defer func() {
		_ = client.Close()
	}()

	topic, err := client.CreateTopic(ctx, "intake-submissions")
	if err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}

	publisher, err := NewPubSubSubmissionPublisher(topic)
	if err != nil {
		t.Fatalf("NewPubSubSubmissionPublisher: %v", err)
	}

	receivedAt := time.Date(2026, 5, 6, 9, 0, 0, 0, time.UTC)
	msg := services.SubmissionEventMessage{
		ItemID:     "1260831000",
		BoardID:    "1234567890",
		FormType:   "mua",
		ItemName:   "MS Form - Maria",
		ReceivedAt: receivedAt,
	}

	if _, err := publisher.PublishSubmissionEvent(ctx, msg); err != nil {
		t.Fatalf("PublishSubmissionEvent: %v", err)
	}

	messages := srv.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	var payload services.SubmissionEventMessage
	if err := json.Unmarshal(messages[0].Data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.ItemID != msg.ItemID || payload.FormType != msg.FormType {
		t.Fatalf("unexpected payload %#v", payload)
	}
	if attr := messages[0].Attributes["itemId"]; attr != "1260831000" {
		t.Fatalf("expected itemId attribute, got %q", attr)
	}
	if attr := messages[0].Attributes["formType"]; attr != "mua" {
		t.Fatalf("expected formType attribute, got %q", attr)
	}
}

func TestNewPubSubSubmissionPublisherRequiresTopic(t *testing.T) {
	if _, err := NewPubSubSubmissionPublisher(nil); err == nil {
		t.Fatal("expected error for nil topic")
	}
}
