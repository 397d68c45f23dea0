// Package announce stores hostel-wide notifications and relays them to the
// residents' WhatsApp group when one is configured.
package announce

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/hostel/internal/domain/models"
	"github.com/mamadbah2/hostel/internal/repository"
	"github.com/mamadbah2/hostel/internal/service/billing"
	client "github.com/mamadbah2/hostel/pkg/clients/whatsapp"
)

var (
	// ErrEmptyMessage is returned when a broadcast has no text.
	ErrEmptyMessage = errors.New("message must not be empty")

	// ErrInvalidNotificationID indicates a malformed notification id.
	ErrInvalidNotificationID = errors.New("invalid notification id")
)

const sendTimeout = 10 * time.Second

// Service publishes notifications.
type Service struct {
	store    repository.NotificationStore
	poster   client.Poster
	groupID  string
	currency string
	logger   *zap.Logger
	now      func() time.Time
}

var _ billing.Announcer = (*Service)(nil)

// NewService wires the announcer. poster may be nil, in which case
// notifications are only stored.
func NewService(store repository.NotificationStore, poster client.Poster, groupID, currency string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		poster:   poster,
		groupID:  groupID,
		currency: currency,
		logger:   logger,
		now:      time.Now,
	}
}

// Broadcast stores message as a notification and relays it to the group.
// Relay failures are logged and do not fail the broadcast.
func (s *Service) Broadcast(ctx context.Context, message string) (*models.Notification, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	notification := &models.Notification{Message: message, CreatedAt: s.now()}
	if err := s.store.CreateNotification(ctx, notification); err != nil {
		return nil, fmt.Errorf("save notification: %w", err)
	}

	s.relay(ctx, message)
	return notification, nil
}

// List returns notifications newest first.
func (s *Service) List(ctx context.Context) ([]models.Notification, error) {
	return s.store.ListNotifications(ctx)
}

// Delete removes a notification. Messages already relayed to the group stay there.
func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidNotificationID
	}
	if err := s.store.DeleteNotification(ctx, oid); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	s.logger.Info("notification deleted", zap.String("notification_id", id))
	return nil
}

// BillGenerated announces a finished billing run.
func (s *Service) BillGenerated(ctx context.Context, result billing.Result) error {
	if result.UsersBilled == 0 {
		return nil
	}
	_, err := s.Broadcast(ctx, BillMessage(result, s.currency))
	return err
}

// BillMessage renders the announcement for a billing run.
func BillMessage(result billing.Result, currency string) string {
	label := result.MonthYear
	if t, err := time.Parse("01-2006", result.MonthYear); err == nil {
		label = t.Format("January 2006")
	}
	return fmt.Sprintf("Mess bill for %s has been generated. Rate per present day: %s. Check your billing history for your share.",
		label, billing.FormatAmount(currency, result.RatePerPresentDay))
}

func (s *Service) relay(ctx context.Context, message string) {
	if s.poster == nil || s.groupID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	id, err := s.poster.Post(ctx, s.groupID, message)
	if err != nil {
		s.logger.Warn("failed to relay notification", zap.Error(err))
		return
	}
	s.logger.Info("notification relayed", zap.String("group_id", s.groupID), zap.String("message_id", id))
}
