package placement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
	"github.com/3FinityAI/fogandleaf-sub000/internal/messaging/kafka"
	"github.com/3FinityAI/fogandleaf-sub000/internal/metrics"
	"github.com/3FinityAI/fogandleaf-sub000/internal/service/ordernum"
	"github.com/3FinityAI/fogandleaf-sub000/internal/service/stock"
)

const (
	// placementTimeout ограничивает транзакцию размещения, чтобы запрос
	// не завис на хранилище.
	placementTimeout = 5 * time.Second
	// maxNumberAttempts — число попыток нумерации при коллизии уникального
	// номера заказа. Каждая попытка — свежая транзакция с перегенерацией.
	maxNumberAttempts = 3
	// notifyTimeout ограничивает post-commit уведомления.
	notifyTimeout = 10 * time.Second
)

// systemActor подписывает автоматические движения стока, инициированные размещением.
var systemActor = domain.Actor{UserID: "system", Name: "order placement"}

// Service — транзакционный use case "разместить заказ": единственный
// многошаговый путь записи в ядре. Шаги нумерации, вставки заказа с позициями
// и списания стока выполняются в одной транзакции; любой отказ откатывает
// всё без частичного состояния. Уведомления и события уходят после коммита
// и не влияют на судьбу заказа.
type Service struct {
	uow      domain.UnitOfWork
	numbers  *ordernum.Generator
	ledger   *stock.Ledger
	email    domain.ConfirmationSender
	whatsapp domain.WhatsAppSender
	producer *kafka.Producer // опциональный, события best-effort
	logger   *log.Entry
	metrics  *metrics.PlacementMetrics
	now      func() time.Time

	sideMu     sync.Mutex
	sideClosed bool
	sideWG     sync.WaitGroup
}

// Option настраивает Service.
type Option func(*Service)

// WithKafkaProducer подключает публикацию событий заказов и стока.
func WithKafkaProducer(producer *kafka.Producer) Option {
	return func(s *Service) { s.producer = producer }
}

// WithClock подменяет источник времени (для тестов нумерации).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithoutMetrics отключает метрики (для тестов).
func WithoutMetrics() Option {
	return func(s *Service) { s.metrics = nil }
}

// NewService создаёт сервис размещения заказов.
func NewService(
	uow domain.UnitOfWork,
	numbers *ordernum.Generator,
	ledger *stock.Ledger,
	email domain.ConfirmationSender,
	whatsapp domain.WhatsAppSender,
	logger *log.Entry,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "placement")
	}
	s := &Service{
		uow:      uow,
		numbers:  numbers,
		ledger:   ledger,
		email:    email,
		whatsapp: whatsapp,
		logger:   logger,
		metrics:  metrics.NewPlacementMetrics(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LineInput — закрытый вариант позиции, разрешённый на границе API:
// каталожная позиция несёт только product_id и qty, ad-hoc позиция несёт
// собственный снимок товара и сток не проверяет.
type LineInput struct {
	Kind      domain.LineKind
	ProductID string
	Qty       int32

	// Поля ad-hoc позиции; для каталожных игнорируются, снимок берётся из товара.
	Name           string
	UnitPriceMinor int64
	Category       string
	WeightGrams    int32
	ImageURL       string
}

// PlaceOrderRequest — вход операции размещения.
type PlaceOrderRequest struct {
	CustomerID    string
	Lines         []LineInput
	Address       domain.ShippingAddress
	Contact       domain.Contact
	PaymentMethod domain.PaymentMethod
	ShippingMinor int64
	TaxMinor      int64
	Notes         string
}

// PlacementResult — исход успешного размещения.
type PlacementResult struct {
	OrderID     string
	OrderNumber string
	Status      domain.OrderStatus
	TotalMinor  int64
}

// PlaceOrder размещает заказ. На успехе существуют ровно один заказ, его
// позиции, по одному sale-движению и списанию стока на каждую каталожную
// позицию. На любом отказе транзакция откатывается целиком.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (PlacementResult, error) {
	start := time.Now()
	if s.metrics != nil {
		s.metrics.PlacementStarted()
	}
	defer func() {
		if s.metrics != nil {
			s.metrics.PlacementFinished()
			s.metrics.RecordPlacementDuration(time.Since(start))
		}
	}()

	if err := validateRequest(req); err != nil {
		s.recordFailure(err)
		return PlacementResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, placementTimeout)
	defer cancel()

	var (
		order    domain.Order
		customer domain.Customer
		levels   []domain.StockLevel
	)

	var err error
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		order, customer, levels, err = s.placeOnce(ctx, req)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrOrderNumberConflict) {
			s.recordFailure(err)
			return PlacementResult{}, err
		}
		if s.metrics != nil {
			s.metrics.RecordNumberRetry()
		}
		s.logger.WithFields(log.Fields{
			"attempt":     attempt,
			"customer_id": req.CustomerID,
		}).Warn("order number collision, retrying with fresh number")
	}
	if err != nil {
		// Ретраи исчерпаны: транзиентная ошибка, вызов можно повторить.
		s.recordFailure(err)
		return PlacementResult{}, fmt.Errorf("order number attempts exhausted: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordOrderPlaced()
	}
	s.logger.WithFields(log.Fields{
		"order_id":     order.ID,
		"order_number": order.Number,
		"customer_id":  order.CustomerID,
		"total_minor":  order.TotalMinor,
		"lines":        len(order.Lines),
	}).Info("order placed")

	// Заказ уже надёжно размещён; всё дальше — best-effort.
	s.dispatchSideEffects(order, customer, levels)

	return PlacementResult{
		OrderID:     order.ID,
		OrderNumber: order.Number,
		Status:      order.Status,
		TotalMinor:  order.TotalMinor,
	}, nil
}

// placeOnce выполняет одну транзакционную попытку размещения.
func (s *Service) placeOnce(ctx context.Context, req PlaceOrderRequest) (domain.Order, domain.Customer, []domain.StockLevel, error) {
	var (
		order    domain.Order
		customer domain.Customer
		levels   []domain.StockLevel
	)

	err := s.uow.WithinTx(ctx, func(tx domain.Tx) error {
		var err error
		customer, err = tx.Customers().Get(req.CustomerID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		lines, err := s.buildLines(tx, req, now)
		if err != nil {
			return err
		}

		number, err := s.numbers.Next(now, tx.Orders())
		if err != nil {
			return err
		}

		var subtotal int64
		for _, line := range lines {
			subtotal += line.TotalMinor
		}

		order = domain.Order{
			ID:            uuid.NewString(),
			Number:        number,
			CustomerID:    customer.ID,
			Status:        domain.OrderStatusConfirmed,
			PaymentMethod: req.PaymentMethod,
			PaymentStatus: domain.PaymentStatusPending,
			SubtotalMinor: subtotal,
			ShippingMinor: req.ShippingMinor,
			TaxMinor:      req.TaxMinor,
			TotalMinor:    subtotal + req.ShippingMinor + req.TaxMinor,
			Address:       req.Address,
			Contact:       req.Contact,
			Notes:         req.Notes,
			Lines:         lines,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if issues := order.ValidateInvariants(); len(issues) > 0 {
			return domain.NewValidationError(issues)
		}

		sales := make([]stock.MovementRequest, 0, len(order.Lines))
		for _, line := range order.Lines {
			if line.Kind != domain.LineKindCatalog {
				continue
			}
			sales = append(sales, stock.MovementRequest{
				ProductID:   line.ProductID,
				Type:        domain.MovementTypeSale,
				QtyDelta:    -line.Qty,
				Reason:      "order " + number,
				ReferenceID: order.ID,
				Actor:       systemActor,
				Automated:   true,
			})
		}
		levels, err = s.ledger.ApplyMovements(tx, sales)
		if err != nil {
			return err
		}

		return tx.Orders().Create(order)
	})
	if err != nil {
		return domain.Order{}, domain.Customer{}, nil, err
	}

	return order, customer, levels, nil
}

// buildLines превращает вход в снимки позиций. Каталожные позиции
// снапшотят имя/цену/категорию/вес/картинку из товара на момент заказа;
// доступность проверяется здесь для точного сообщения о дефиците, а
// окончательную защиту от гонки даёт условное списание в леджере.
func (s *Service) buildLines(tx domain.Tx, req PlaceOrderRequest, now time.Time) ([]domain.OrderLine, error) {
	lines := make([]domain.OrderLine, 0, len(req.Lines))

	for _, in := range req.Lines {
		line := domain.OrderLine{
			ID:        uuid.NewString(),
			Kind:      in.Kind,
			Qty:       in.Qty,
			CreatedAt: now,
		}

		switch in.Kind {
		case domain.LineKindCatalog:
			product, err := tx.Products().Get(in.ProductID)
			if err != nil {
				return nil, err
			}
			if product.StockQuantity < in.Qty {
				return nil, &domain.InsufficientStockError{
					ProductID: product.ID,
					Requested: in.Qty,
					Available: product.StockQuantity,
				}
			}
			line.ProductID = product.ID
			line.Name = product.Name
			line.Category = product.Category
			line.WeightGrams = product.WeightGrams
			line.ImageURL = product.ImageURL
			line.UnitPriceMinor = product.PriceMinor
		case domain.LineKindAdHoc:
			line.Name = in.Name
			line.Category = in.Category
			line.WeightGrams = in.WeightGrams
			line.ImageURL = in.ImageURL
			line.UnitPriceMinor = in.UnitPriceMinor
		}

		// Сумма позиции всегда пересчитывается, входу не доверяем.
		line.TotalMinor = int64(line.Qty) * line.UnitPriceMinor
		lines = append(lines, line)
	}

	return lines, nil
}

func (s *Service) recordFailure(err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordPlacementFailed(failureReason(err))
}

// failureReason маппит ошибку в label метрики.
func failureReason(err error) string {
	switch {
	case domain.IsInsufficientStock(err):
		return "insufficient_stock"
	case domain.IsValidation(err):
		return "validation"
	case errors.Is(err, domain.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, domain.ErrCustomerNotFound):
		return "customer_not_found"
	case errors.Is(err, domain.ErrOrderNumberConflict):
		return "number_conflict"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "other"
	}
}
