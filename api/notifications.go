package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medisys-health/diagnostics/notifications"
	"github.com/medisys-health/diagnostics/pointer"
)

type NotificationsResponse struct {
	Notifications []notifications.Notification `json:"notifications"`
	Count         int                          `json:"count"`
	Timestamp     time.Time                    `json:"timestamp"`
}

type Acknowledgement struct {
	Message   string `json:"message"`
	MessageId string `json:"message_id"`
}

func (h *Handler) PollNotifications(ec echo.Context) error {
	ctx := ec.Request().Context()
	received, err := h.notifications.Receive(ctx, notifications.MaxMessages, notifications.WaitTime, notifications.VisibilityTimeout)
	if err != nil {
		return err
	}
	if received == nil {
		received = make([]notifications.Notification, 0)
	}

	return ec.JSON(http.StatusOK, NotificationsResponse{
		Notifications: received,
		Count:         len(received),
		Timestamp:     h.now().UTC(),
	})
}

func (h *Handler) AcknowledgeNotification(ec echo.Context, messageId string, params AcknowledgeNotificationParams) error {
	ctx := ec.Request().Context()
	receiptHandle := pointer.Default(params.ReceiptHandle, "")
	if err := h.notifications.Acknowledge(ctx, messageId, receiptHandle); err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, Acknowledgement{
		Message:   "Notification acknowledged",
		MessageId: messageId,
	})
}
