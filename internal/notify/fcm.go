// README: FCM notifier; pushes batch proposals to couriers over Firebase Cloud Messaging.
package notify

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"firebase.google.com/go/v4/messaging"

	"wastagram/internal/modules/batching"
)

// TopicPrefix is prepended to the session id; the courier app subscribes to
// courier_<session> after login.
const TopicPrefix = "courier_"

// Sender is the subset of *messaging.Client the notifier needs.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMNotifier implements batching.Notifier.
type FCMNotifier struct {
	sender Sender
}

func NewFCMNotifier(sender Sender) *FCMNotifier {
	return &FCMNotifier{sender: sender}
}

var _ batching.Notifier = (*FCMNotifier)(nil)

// NotifyProposal sends an FCM data message with a display notification to the
// session's topic.
func (n *FCMNotifier) NotifyProposal(ctx context.Context, session string, sug batching.BatchSuggestion) error {
	msg, err := ProposalMessage(session, sug)
	if err != nil {
		return err
	}

	messageID, err := n.sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("sending FCM to topic %s: %w", msg.Topic, err)
	}

	log.Printf("FCM sent for batch %s, message_id=%s", sug.ID, messageID)
	return nil
}

// ProposalMessage builds the push for a proposal.
func ProposalMessage(session string, sug batching.BatchSuggestion) (*messaging.Message, error) {
	if session == "" {
		return nil, fmt.Errorf("empty session for batch %s", sug.ID)
	}

	orderIDs := make([]string, len(sug.Orders))
	for i, o := range sug.Orders {
		orderIDs[i] = string(o.ID)
	}

	body := fmt.Sprintf("%d pesanan di arah %s, total %.1f kg. Gabungkan ke rute?",
		sug.OrderCount(), sug.Direction.Label(), sug.TotalWeightKg)

	return &messaging.Message{
		Topic: TopicPrefix + session,
		Data: map[string]string{
			"type":            "batch_suggestion",
			"suggestion_id":   sug.ID,
			"anchor_id":       string(sug.AnchorID),
			"order_ids":       strings.Join(orderIDs, ","),
			"order_count":     strconv.Itoa(sug.OrderCount()),
			"total_weight_kg": strconv.FormatFloat(sug.TotalWeightKg, 'f', 1, 64),
			"direction":       string(sug.Direction),
		},
		Notification: &messaging.Notification{
			Title: "Ada pesanan searah",
			Body:  body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}, nil
}
