package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"firebase.google.com/go/v4/messaging"

	"wastagram/internal/geo"
	"wastagram/internal/modules/batching"
	"wastagram/internal/types"
)

type recordingSender struct {
	sent []*messaging.Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, m *messaging.Message) (string, error) {
	r.sent = append(r.sent, m)
	if r.err != nil {
		return "", r.err
	}
	return "projects/test/messages/1", nil
}

func sampleSuggestion() batching.BatchSuggestion {
	return batching.BatchSuggestion{
		ID:       "sug-1",
		AnchorID: "a",
		Orders: []batching.PickupRequest{
			{ID: "b", Location: types.Point{Lat: -6.2098, Lng: 106.8466}, WeightKg: 2},
			{ID: "c", Location: types.Point{Lat: -6.2100, Lng: 106.8470}, WeightKg: 1.5},
		},
		TotalWeightKg: 3.5,
		Direction:     geo.SouthEast,
	}
}

func TestProposalMessage(t *testing.T) {
	msg, err := ProposalMessage("kurir-7", sampleSuggestion())
	if err != nil {
		t.Fatalf("ProposalMessage: %v", err)
	}
	if msg.Topic != "courier_kurir-7" {
		t.Errorf("Topic = %s", msg.Topic)
	}
	want := map[string]string{
		"type":            "batch_suggestion",
		"suggestion_id":   "sug-1",
		"anchor_id":       "a",
		"order_ids":       "b,c",
		"order_count":     "2",
		"total_weight_kg": "3.5",
		"direction":       "SE",
	}
	for k, v := range want {
		if msg.Data[k] != v {
			t.Errorf("Data[%s] = %q, want %q", k, msg.Data[k], v)
		}
	}
	if !strings.Contains(msg.Notification.Body, "Tenggara") {
		t.Errorf("body should name the direction: %q", msg.Notification.Body)
	}
}

func TestProposalMessage_EmptySession(t *testing.T) {
	if _, err := ProposalMessage("", sampleSuggestion()); err == nil {
		t.Fatal("expected error for empty session")
	}
}

func TestNotifyProposal(t *testing.T) {
	sender := &recordingSender{}
	n := NewFCMNotifier(sender)
	if err := n.NotifyProposal(context.Background(), "kurir-7", sampleSuggestion()); err != nil {
		t.Fatalf("NotifyProposal: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}

	sender.err = errors.New("quota exceeded")
	if err := n.NotifyProposal(context.Background(), "kurir-7", sampleSuggestion()); err == nil {
		t.Fatal("expected send error")
	}
}
