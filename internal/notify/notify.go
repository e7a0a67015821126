package notify

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"placement/portal/internal/metrics"
	"placement/portal/internal/model"
)

// Writer persists a notification. Both the pool and a transaction satisfy it.
type Writer interface {
	CreateNotification(ctx context.Context, userID, message string) (model.Notification, error)
}

// Emitter appends notifications. There is no delivery channel; recipients read
// them through the notifications endpoint.
type Emitter struct {
	log *logrus.Logger
}

func NewEmitter(log *logrus.Logger) *Emitter {
	return &Emitter{log: log}
}

func (e *Emitter) Notify(ctx context.Context, w Writer, recipientUserID, message string) (model.Notification, error) {
	n, err := w.CreateNotification(ctx, recipientUserID, message)
	metrics.RecordNotification(err == nil)
	if err != nil {
		e.log.WithError(err).WithField("recipient_id", recipientUserID).Warn("notification write failed")
		return model.Notification{}, fmt.Errorf("create notification: %w", err)
	}
	e.log.WithFields(logrus.Fields{
		"notification_id": n.ID,
		"recipient_id":    recipientUserID,
	}).Debug("notification written")
	return n, nil
}

func NewApplicationMessage(offer model.JobOffer, applicant model.User) string {
	name := applicant.Name
	if name == "" {
		name = applicant.Email
	}
	if name == "" {
		name = "A student"
	}
	return fmt.Sprintf("%s applied for %s", name, offer.Title)
}

func StatusChangedMessage(offer model.JobOffer, status model.ApplicationStatus) string {
	return fmt.Sprintf("Your application for %s is now %s", offer.Title, status)
}
