// internal/service/notification/service.go
package notification

import (
	"context"
	"fmt"

	"billgate-service/internal/domain/billing"
	"billgate-service/internal/domain/notification"
	"billgate-service/internal/repository/postgres"
	"billgate-service/internal/service/email"
	ws "billgate-service/internal/websocket"

	"go.uber.org/zap"
)

// NotificationService is the best-effort admin side channel: a stored row,
// an email, and a websocket push. It never blocks or reverses a billing
// transaction; callers treat its error as advisory.
type NotificationService struct {
	repo       *postgres.NotificationRepository
	email      *email.EmailSender
	hub        *ws.Hub
	adminEmail string
	logger     *zap.Logger
}

func NewNotificationService(
	repo *postgres.NotificationRepository,
	emailSender *email.EmailSender,
	hub *ws.Hub,
	adminEmail string,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		repo:       repo,
		email:      emailSender,
		hub:        hub,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// NotifyAdminSubscribed records and delivers a new-subscription event. The
// returned error reports that no channel succeeded; partial delivery counts
// as success.
func (s *NotificationService) NotifyAdminSubscribed(ctx context.Context, workspace *billing.Workspace, plan *billing.SubscriptionPlan) error {
	n := &notification.Notification{
		Title:   "New subscription",
		Message: fmt.Sprintf("Workspace %q subscribed to plan %q", workspace.Name, plan.Name),
		Type:    notification.TypeSubscription,
		Metadata: map[string]interface{}{
			"workspace_id": workspace.ID,
			"plan_id":      plan.ID,
			"term":         workspace.Term,
			"price":        workspace.Price,
		},
	}

	delivered := false

	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Warn("failed to store admin notification", zap.Error(err))
	} else {
		delivered = true
	}

	if err := s.sendEmail(workspace, plan); err != nil {
		s.logger.Warn("failed to email admin notification", zap.Error(err))
	} else {
		delivered = true
	}

	s.hub.Broadcast(ws.Event{Type: "subscription.activated", Data: n})

	if !delivered {
		return fmt.Errorf("admin notification not delivered")
	}
	return nil
}

// Recent lists the latest admin notifications.
func (s *NotificationService) Recent(ctx context.Context, limit int) ([]notification.Notification, error) {
	return s.repo.ListRecent(ctx, limit)
}

func (s *NotificationService) sendEmail(workspace *billing.Workspace, plan *billing.SubscriptionPlan) error {
	subject := "New subscription"
	body := fmt.Sprintf(
		"<p>Workspace <strong>%s</strong> subscribed to plan <strong>%s</strong>.</p>"+
			"<p>Term: %s<br/>Price: %.2f</p>",
		workspace.Name, plan.Name, workspace.Term, workspace.Price,
	)
	return s.email.Send(s.adminEmail, subject, body)
}
