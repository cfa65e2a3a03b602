package placement

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
	"github.com/3FinityAI/fogandleaf-sub000/internal/messaging/kafka"
)

// dispatchSideEffects запускает fire-and-forget побочные эффекты размещения:
// email и WhatsApp уведомления плюс публикацию событий. Выполняются вне
// транзакции, после коммита; отказы логируются и никогда не доходят до
// вызывающей стороны — клиент может не получить ни одного уведомления об
// успешно размещённом заказе, но никогда не увидит "ошибку" по заказу,
// который на самом деле размещён.
func (s *Service) dispatchSideEffects(order domain.Order, customer domain.Customer, levels []domain.StockLevel) {
	s.sideMu.Lock()
	defer s.sideMu.Unlock()
	if s.sideClosed {
		return
	}

	s.sideWG.Add(1)
	go func() {
		defer s.sideWG.Done()

		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		s.notify(ctx, order, customer)
		s.publishEvents(order, levels)
	}()
}

func (s *Service) notify(ctx context.Context, order domain.Order, customer domain.Customer) {
	if s.email != nil {
		if err := s.email.SendOrderConfirmation(ctx, order, customer); err != nil {
			if s.metrics != nil {
				s.metrics.RecordNotificationFailure("email")
			}
			s.logger.WithError(err).WithField("order_number", order.Number).
				Warn("order confirmation email failed")
		}
	}

	if s.whatsapp != nil && order.Contact.Phone != "" {
		status, err := s.whatsapp.SendOrderMessage(ctx, order.Contact.Phone, order)
		if err != nil {
			if s.metrics != nil {
				s.metrics.RecordNotificationFailure("whatsapp")
			}
			s.logger.WithError(err).WithField("order_number", order.Number).
				Warn("order whatsapp notification failed")
		} else if status == domain.WhatsAppStatusSkipped {
			s.logger.WithField("order_number", order.Number).
				Debug("whatsapp sender not configured, notification skipped")
		}
	}
}

func (s *Service) publishEvents(order domain.Order, levels []domain.StockLevel) {
	if s.producer == nil {
		return
	}

	event := kafka.NewOrderPlacedEvent(order.ID, order.Number, order.CustomerID, order.TotalMinor, len(order.Lines))
	if err := s.producer.PublishEvent(kafka.TopicOrderEvents, order.ID, event); err != nil {
		if s.metrics != nil {
			s.metrics.RecordEventPublishFailure()
		}
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to publish order event")
	} else if s.metrics != nil {
		s.metrics.RecordEventPublished()
	}

	idx := 0
	for _, line := range order.Lines {
		if line.Kind != domain.LineKindCatalog || idx >= len(levels) {
			continue
		}
		level := levels[idx]
		idx++

		stockEvent := kafka.NewStockMovementEvent(
			line.ProductID,
			string(domain.MovementTypeSale),
			level.New-level.Previous,
			level.Previous,
			level.New,
			order.ID,
		)
		if err := s.producer.PublishEvent(kafka.TopicStockEvents, line.ProductID, stockEvent); err != nil {
			s.logger.WithError(err).WithFields(log.Fields{
				"order_id":   order.ID,
				"product_id": line.ProductID,
			}).Warn("failed to publish stock movement event")
		}
	}
}

// Close дожидается завершения запущенных побочных эффектов. Новые после
// закрытия не стартуют.
func (s *Service) Close() {
	s.sideMu.Lock()
	s.sideClosed = true
	s.sideMu.Unlock()
	s.sideWG.Wait()
}
