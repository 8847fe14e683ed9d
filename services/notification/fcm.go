package notification

import (
	"context"
	"fmt"

	"boxcric/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMNotifier pushes status changes to the device that made the booking.
type FCMNotifier struct {
	client *messaging.Client
}

// NewFCMNotifier initializes the Firebase app and its messaging client from a
// service account file.
func NewFCMNotifier(ctx context.Context, credentialsFile string) (*FCMNotifier, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting Messaging client: %w", err)
	}
	return &FCMNotifier{client: client}, nil
}

func (n *FCMNotifier) BookingChanged(ctx context.Context, b models.Booking) error {
	if b.DeviceToken == "" {
		return nil
	}
	_, err := n.client.Send(ctx, pushMessage(b))
	if err != nil {
		return fmt.Errorf("fcm send for booking %s: %w", b.ID, err)
	}
	return nil
}

func pushMessage(b models.Booking) *messaging.Message {
	title, body := pushContent(b)
	return &messaging.Message{
		Token: b.DeviceToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"bookingId": b.ID,
			"groundId":  b.GroundID,
			"status":    string(b.Status),
		},
	}
}

func pushContent(b models.Booking) (string, string) {
	when := fmt.Sprintf("%s, %s-%s", b.BookingDate, b.TimeSlot.StartTime, b.TimeSlot.EndTime)
	switch b.Status {
	case models.BookingPending:
		return "Booking on hold", "Complete payment to confirm your slot on " + when + "."
	case models.BookingConfirmed:
		return "Booking confirmed", "Your slot on " + when + " is confirmed."
	case models.BookingCancelled:
		reason := ""
		if b.Cancellation != nil && b.Cancellation.Reason != "" {
			reason = " (" + b.Cancellation.Reason + ")"
		}
		return "Booking cancelled", "Your booking for " + when + " was cancelled" + reason + "."
	case models.BookingCompleted:
		return "Thanks for playing", "Your booking for " + when + " is complete."
	default:
		return "Booking updated", "Your booking for " + when + " changed."
	}
}
