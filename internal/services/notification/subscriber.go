package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/messaging"
	"restaurant-pos/internal/models"
)

// Subscriber consumes the event fanout and renders each event as a
// human-readable line, standing in for kitchen displays, captain
// devices, and the cashier screen.
type Subscriber struct {
	consumer *messaging.Consumer
	logger   *logger.Logger

	shutdown chan os.Signal
	done     chan bool
}

// NewSubscriber creates a new notification subscriber.
func NewSubscriber(consumer *messaging.Consumer, log *logger.Logger) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		logger:   log,
		shutdown: make(chan os.Signal, 1),
		done:     make(chan bool, 1),
	}
}

// Start starts the notification subscriber and blocks until shutdown.
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()

	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)

	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := s.consumer.StartConsuming(consumeCtx, s.handleEvent); err != nil && consumeCtx.Err() == nil {
			s.logger.Error("consumer_failed", "Notification consumer failed", requestID, err, nil)
		}
		s.done <- true
	}()

	select {
	case <-s.shutdown:
		s.logger.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		cancel()
		<-s.done
		return s.consumer.Close()
	case <-s.done:
		return nil
	}
}

// handleEvent processes one event from the fanout.
func (s *Subscriber) handleEvent(ctx context.Context, body []byte) error {
	requestID := logger.GenerateRequestID()

	var event models.Event
	if err := json.Unmarshal(body, &event); err != nil {
		s.logger.Error("message_parsing_failed", "Failed to parse event", requestID, err, nil)
		return fmt.Errorf("failed to parse event: %w", err)
	}

	fmt.Println(formatEvent(&event))

	s.logger.Debug("event_displayed", "Event displayed", requestID, map[string]interface{}{
		"type":          event.Type,
		"order_number":  event.OrderNumber,
		"ticket_number": event.TicketNumber,
		"table_number":  event.TableNumber,
	})
	return nil
}

// formatEvent renders one event as a display line.
func formatEvent(event *models.Event) string {
	timestamp := event.Timestamp.Format("2006-01-02 15:04:05")

	switch event.Type {
	case models.EventKotCreated:
		return fmt.Sprintf("🆕 [%s] %s: ticket %s for order %s%s: %s",
			timestamp, strings.ToUpper(event.Station), event.TicketNumber, event.OrderNumber,
			tableSuffix(event), itemSummary(event.Items))
	case models.EventKotAccepted:
		return fmt.Sprintf("👀 [%s] %s accepted ticket %s (order %s)",
			timestamp, event.Station, event.TicketNumber, event.OrderNumber)
	case models.EventKotPreparing:
		return fmt.Sprintf("🍳 [%s] %s started preparing ticket %s (order %s)",
			timestamp, event.Station, event.TicketNumber, event.OrderNumber)
	case models.EventKotItemReady:
		return fmt.Sprintf("🔔 [%s] %s: %s ready on ticket %s",
			timestamp, event.Station, itemSummary(event.Items), event.TicketNumber)
	case models.EventKotReady:
		return fmt.Sprintf("✅ [%s] Ticket %s is fully ready at %s%s",
			timestamp, event.TicketNumber, event.Station, tableSuffix(event))
	case models.EventKotServed:
		return fmt.Sprintf("🍽️ [%s] Ticket %s served (order %s)%s",
			timestamp, event.TicketNumber, event.OrderNumber, tableSuffix(event))
	case models.EventKotCancelled:
		return fmt.Sprintf("🛑 [%s] %s: STOP ticket %s (order %s): %s",
			timestamp, strings.ToUpper(event.Station), event.TicketNumber, event.OrderNumber,
			itemSummary(event.Items))
	case models.EventKotItemCancelled:
		return fmt.Sprintf("🛑 [%s] %s: STOP %s on ticket %s",
			timestamp, strings.ToUpper(event.Station), itemSummary(event.Items), event.TicketNumber)
	case models.EventKotReprinted:
		return fmt.Sprintf("🖨️ [%s] Ticket %s reprinted at %s",
			timestamp, event.TicketNumber, event.Station)
	case models.EventOrderBilled:
		return fmt.Sprintf("🧾 [%s] Order %s billed: ₹%.2f%s",
			timestamp, event.OrderNumber, event.Amount, tableSuffix(event))
	case models.EventPaymentReceived:
		return fmt.Sprintf("💰 [%s] Payment of ₹%.2f received for order %s%s",
			timestamp, event.Amount, event.OrderNumber, tableSuffix(event))
	case models.EventTableUpdated:
		return fmt.Sprintf("🪑 [%s] Table %s is now %s",
			timestamp, event.TableNumber, event.TableStatus)
	default:
		return fmt.Sprintf("📋 [%s] %s (order %s)", timestamp, event.Type, event.OrderNumber)
	}
}

func tableSuffix(event *models.Event) string {
	if event.TableNumber == "" {
		return ""
	}
	return fmt.Sprintf(" (table %s)", event.TableNumber)
}

func itemSummary(items []models.EventItem) string {
	if len(items) == 0 {
		return "no items"
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		name := item.Name
		if item.VariantName != nil {
			name = fmt.Sprintf("%s (%s)", name, *item.VariantName)
		}
		parts = append(parts, fmt.Sprintf("%dx %s", item.Quantity, name))
	}
	return strings.Join(parts, ", ")
}
