package notification

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/example/ec-shop-assistant/internal/domain/order"
	"github.com/example/ec-shop-assistant/internal/email"
	"github.com/example/ec-shop-assistant/internal/infrastructure/kafka"
	"github.com/sirupsen/logrus"
)

type Mailer interface {
	SendOrderConfirmation(to, orderID string, total int, deliverySlot string, items []email.OrderItem) error
}

// Handler processes order events for sending notifications
type Handler struct {
	mailer Mailer
	log    logrus.FieldLogger
}

func NewHandler(mailer Mailer, log logrus.FieldLogger) *Handler {
	return &Handler{
		mailer: mailer,
		log:    log.WithField("component", "notifier"),
	}
}

// HandleEvent processes an event from Kafka. Events other than OrderPlaced are
// ignored.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event kafka.Event
	if err := json.Unmarshal(value, &event); err != nil {
		h.log.WithError(err).Warn("failed to unmarshal event")
		return err
	}

	if event.Type == order.EventOrderPlaced {
		return h.handleOrderPlaced(event)
	}
	return nil
}

func (h *Handler) handleOrderPlaced(event kafka.Event) error {
	var o order.Order
	if err := json.Unmarshal(event.Data, &o); err != nil {
		h.log.WithError(err).WithField("event_id", event.ID).Warn("failed to unmarshal OrderPlaced event")
		return err
	}

	log := h.log.WithFields(logrus.Fields{"order_id": o.ID, "user_id": o.UserID})

	// Users are free-form ids; only those that look like an address get mail.
	if !strings.Contains(o.UserID, "@") {
		log.WithField("total_price", o.TotalPrice).Info("order placed, no email address on file")
		return nil
	}

	items := make([]email.OrderItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = email.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Size:      item.Size,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	if err := h.mailer.SendOrderConfirmation(o.UserID, o.ID, o.TotalPrice, o.DeliverySlot, items); err != nil {
		log.WithError(err).Error("failed to send order confirmation")
		return err
	}

	log.Info("order confirmation email sent")
	return nil
}
