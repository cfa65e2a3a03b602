package placement

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
	"github.com/3FinityAI/fogandleaf-sub000/internal/service/ordernum"
	"github.com/3FinityAI/fogandleaf-sub000/internal/service/stock"
	"github.com/3FinityAI/fogandleaf-sub000/internal/storage/memory"
)

type stubEmail struct {
	mu    sync.Mutex
	err   error
	calls int
	last  domain.Order
}

func (s *stubEmail) SendOrderConfirmation(_ context.Context, order domain.Order, _ domain.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.last = order
	return s.err
}

type stubWhatsApp struct {
	mu     sync.Mutex
	status domain.WhatsAppStatus
	err    error
	calls  int
}

func (s *stubWhatsApp) SendOrderMessage(_ context.Context, _ string, _ domain.Order) (domain.WhatsAppStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.status == "" {
		return domain.WhatsAppStatusSent, s.err
	}
	return s.status, s.err
}

func testLogger() *log.Entry {
	logger := log.New()
	logger.SetLevel(log.ErrorLevel)
	return logger.WithField("test", "placement")
}

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)
	}
}

func seedCatalog(t *testing.T, store *memory.Store) {
	t.Helper()
	store.PutCustomer(domain.Customer{
		ID:    "customer-1",
		Name:  "Asha Rao",
		Email: "asha@example.com",
		Phone: "+919800000001",
	})
	store.PutProduct(domain.Product{
		ID:            "darjeeling",
		Name:          "Darjeeling First Flush",
		Category:      "black",
		PriceMinor:    84900,
		WeightGrams:   100,
		StockQuantity: 10,
	})
	store.PutProduct(domain.Product{
		ID:            "kahwa",
		Name:          "Kashmiri Kahwa Blend",
		Category:      "blend",
		PriceMinor:    55000,
		WeightGrams:   150,
		StockQuantity: 5,
	})
	store.PutProduct(domain.Product{
		ID:            "assam",
		Name:          "Assam CTC Strong",
		Category:      "black",
		PriceMinor:    32000,
		WeightGrams:   250,
		StockQuantity: 0,
	})
}

func newTestService(store *memory.Store, email domain.ConfirmationSender, whatsapp domain.WhatsAppSender, opts ...Option) *Service {
	ledger := stock.NewLedgerWithoutMetrics(testLogger())
	numbers := ordernum.NewGenerator(ordernum.DefaultPrefix)
	opts = append([]Option{WithoutMetrics(), WithClock(fixedClock())}, opts...)
	return NewService(store, numbers, ledger, email, whatsapp, testLogger(), opts...)
}

func validRequest() PlaceOrderRequest {
	return PlaceOrderRequest{
		CustomerID: "customer-1",
		Lines: []LineInput{
			{Kind: domain.LineKindCatalog, ProductID: "darjeeling", Qty: 2},
			{Kind: domain.LineKindCatalog, ProductID: "kahwa", Qty: 1},
		},
		Address: domain.ShippingAddress{
			Name:       "Asha Rao",
			Line1:      "14 MG Road",
			City:       "Bengaluru",
			State:      "Karnataka",
			PostalCode: "560001",
			Country:    "IN",
		},
		Contact:       domain.Contact{Email: "asha@example.com", Phone: "+919800000001"},
		PaymentMethod: domain.PaymentMethodCOD,
		ShippingMinor: 5000,
		TaxMinor:      0,
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(t, store)
	email := &stubEmail{}
	svc := newTestService(store, email, &stubWhatsApp{})
	defer svc.Close()

	result, err := svc.PlaceOrder(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if result.OrderNumber != "FOG2025010001" {
		t.Fatalf("expected FOG2025010001, got %s", result.OrderNumber)
	}
	if result.Status != domain.OrderStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", result.Status)
	}
	// 2*84900 + 55000 + 5000 доставка.
	if want := int64(2*84900 + 55000 + 5000); result.TotalMinor != want {
		t.Fatalf("expected total %d, got %d", want, result.TotalMinor)
	}

	order, err := store.Get(context.Background(), result.OrderID)
	if err != nil {
		t.Fatalf("load order: %v", err)
	}
	if order.PaymentStatus != domain.PaymentStatusPending {
		t.Fatalf("placement must leave payment pending, got %s", order.PaymentStatus)
	}
	if len(order.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(order.Lines))
	}
	if order.Lines[0].Name != "Darjeeling First Flush" || order.Lines[0].UnitPriceMinor != 84900 {
		t.Fatalf("line must snapshot the product, got %+v", order.Lines[0])
	}
	if order.SubtotalMinor != 2*84900+55000 {
		t.Fatalf("unexpected subtotal %d", order.SubtotalMinor)
	}

	darjeeling, _ := store.GetProduct("darjeeling")
	kahwa, _ := store.GetProduct("kahwa")
	if darjeeling.StockQuantity != 8 || kahwa.StockQuantity != 4 {
		t.Fatalf("expected stock 8/4, got %d/%d", darjeeling.StockQuantity, kahwa.StockQuantity)
	}

	movements := store.Movements()
	if len(movements) != 2 {
		t.Fatalf("expected one movement per catalog line, got %d", len(movements))
	}
	for _, m := range movements {
		if m.Type != domain.MovementTypeSale || !m.Automated {
			t.Fatalf("expected automated sale movement, got %+v", m)
		}
		if m.ReferenceID != result.OrderID {
			t.Fatalf("movement must reference the order, got %q", m.ReferenceID)
		}
	}

	svc.Close()
	email.mu.Lock()
	defer email.mu.Unlock()
	if email.calls != 1 {
		t.Fatalf("expected one confirmation email, got %d", email.calls)
	}
	if email.last.Number != result.OrderNumber {
		t.Fatalf("email must carry the placed order, got %s", email.last.Number)
	}
}

func TestPlaceOrder_InsufficientStockRollsBackEverything(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(t, store)
	svc := newTestService(store, &stubEmail{}, &stubWhatsApp{})
	defer svc.Close()

	req := validRequest()
	// Вторая позиция — товар с нулевым остатком.
	req.Lines = []LineInput{
		{Kind: domain.LineKindCatalog, ProductID: "darjeeling", Qty: 2},
		{Kind: domain.LineKindCatalog, ProductID: "assam", Qty: 1},
	}

	_, err := svc.PlaceOrder(context.Background(), req)
	var insufficient *domain.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if insufficient.ProductID != "assam" || insufficient.Available != 0 {
		t.Fatalf("unexpected detail: %+v", insufficient)
	}

	// Полный откат: ни заказа, ни движений, ни списаний.
	darjeeling, _ := store.GetProduct("darjeeling")
	if darjeeling.StockQuantity != 10 {
		t.Fatalf("first line must be rolled back, stock=%d", darjeeling.StockQuantity)
	}
	if len(store.Movements()) != 0 {
		t.Fatal("no movements must survive a failed placement")
	}
	if orders, _ := store.ListByCustomer(context.Background(), "customer-1", 10); len(orders) != 0 {
		t.Fatal("no order must survive a failed placement")
	}
}

func TestPlaceOrder_ConcurrentLastUnit(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(t, store)
	store.PutProduct(domain.Product{
		ID:            "last-tin",
		Name:          "Anniversary Blend",
		Category:      "blend",
		PriceMinor:    120000,
		StockQuantity: 1,
	})
	svc := newTestService(store, &stubEmail{}, &stubWhatsApp{})
	defer svc.Close()

	req := validRequest()
	req.Lines = []LineInput{{Kind: domain.LineKindCatalog, ProductID: "last-tin", Qty: 1}}

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.PlaceOrder(context.Background(), req)
		}(i)
	}
	wg.Wait()

	var ok, short int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case domain.IsInsufficientStock(err):
			short++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || short != attempts-1 {
		t.Fatalf("expected exactly one success, got ok=%d short=%d", ok, short)
	}

	product, _ := store.GetProduct("last-tin")
	if product.StockQuantity != 0 {
		t.Fatalf("expected stock 0, got %d", product.StockQuantity)
	}
	if len(store.Movements()) != 1 {
		t.Fatalf("expected exactly one sale movement, got %d", len(store.Movements()))
	}
}

func TestPlaceOrder_SequentialNumbers(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(t, store)
	svc := newTestService(store, &stubEmail{}, &stubWhatsApp{})
	defer svc.Close()

	req := validRequest()
	req.Lines = []LineInput{{Kind: domain.LineKindCatalog, ProductID: "darjeeling", Qty: 1}}

	want := []string{"FOG2025010001", "FOG2025010002", "FOG2025010003"}
	for i, expected := range want {
		result, err := svc.PlaceOrder(context.Background(), req)
		if err != nil {
			t.Fatalf("place order %d: %v", i+1, err)
		}
		if result.OrderNumber != expected {
			t.Fatalf("order %d: expected %s, got %s", i+1, expected, result.OrderNumber)
		}
	}
}

func TestPlaceOrder_AdHocLineSkipsStock(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(t, store)
	svc := newTestService(store, &stubEmail{}, &stubWhatsApp{})
	defer svc.Close()

	req := validRequest()
	req.Lines = []LineInput{{
		Kind:           domain.LineKindAdHoc,
		Name:           "Festival Sampler Box",
		UnitPriceMinor: 99900,
		Qty:            1,
	}}

	result, err := svc.PlaceOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if want := int64(99900 + 5000); result.TotalMinor != want {
		t.Fatalf("expected total %d, got %d", want, result.TotalMinor)
	}
	if len(store.Movements()) != 0 {
		t.Fatal("ad-hoc lines must not touch stock")
	}

	order, _ := store.Get(context.Background(), result.OrderID)
	if order.Lines[0].Kind != domain.LineKindAdHoc || order.Lines[0].ProductID != "" {
		t.Fatalf("unexpected line: %+v", order.Lines[0])
	}
}

func TestPlaceOrder_UnknownCustomer(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(t, store)
	svc := newTestService(store, &stubEmail{}, &stubWhatsApp{})
	defer svc.Close()

	req := validRequest()
	req.CustomerID = "ghost"

	if _, err := svc.PlaceOrder(context.Background(), req); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestPlaceOrder_ValidationRejectsBeforeStorage(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store, &stubEmail{}, &stubWhatsApp{})
	defer svc.Close()

	cases := []struct {
		name   string
		mutate func(*PlaceOrderRequest)
	}{
		{"empty customer", func(r *PlaceOrderRequest) { r.CustomerID = "" }},
		{"no lines", func(r *PlaceOrderRequest) { r.Lines = nil }},
		{"zero qty", func(r *PlaceOrderRequest) { r.Lines[0].Qty = 0 }},
		{"negative shipping", func(r *PlaceOrderRequest) { r.ShippingMinor = -1 }},
		{"bad payment method", func(r *PlaceOrderRequest) { r.PaymentMethod = "barter" }},
		{"catalog without product", func(r *PlaceOrderRequest) { r.Lines[0].ProductID = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			if _, err := svc.PlaceOrder(context.Background(), req); !domain.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestPlaceOrder_EmailFailureDoesNotFailPlacement(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(t, store)
	email := &stubEmail{err: errors.New("smtp down")}
	whatsapp := &stubWhatsApp{err: errors.New("api down")}
	svc := newTestService(store, email, whatsapp)

	result, err := svc.PlaceOrder(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("place order must succeed despite notification failures: %v", err)
	}
	svc.Close()

	if result.OrderNumber == "" {
		t.Fatal("expected a placed order")
	}
	email.mu.Lock()
	if email.calls != 1 {
		t.Fatalf("email must still be attempted, calls=%d", email.calls)
	}
	email.mu.Unlock()
	whatsapp.mu.Lock()
	if whatsapp.calls != 1 {
		t.Fatalf("whatsapp must still be attempted, calls=%d", whatsapp.calls)
	}
	whatsapp.mu.Unlock()
}

func TestPlaceOrder_NoWhatsAppWithoutPhone(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(t, store)
	whatsapp := &stubWhatsApp{}
	svc := newTestService(store, &stubEmail{}, whatsapp)

	req := validRequest()
	req.Contact.Phone = ""

	if _, err := svc.PlaceOrder(context.Background(), req); err != nil {
		t.Fatalf("place order: %v", err)
	}
	svc.Close()

	whatsapp.mu.Lock()
	defer whatsapp.mu.Unlock()
	if whatsapp.calls != 0 {
		t.Fatalf("whatsapp must not be called without a phone, calls=%d", whatsapp.calls)
	}
}

func TestPlaceOrder_StockConservedUnderLoad(t *testing.T) {
	store := memory.NewStore()
	seedCatalog(t, store)
	svc := newTestService(store, &stubEmail{}, &stubWhatsApp{})
	defer svc.Close()

	req := validRequest()
	req.Lines = []LineInput{{Kind: domain.LineKindCatalog, ProductID: "darjeeling", Qty: 3}}

	const attempts = 10
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.PlaceOrder(context.Background(), req)
		}()
	}
	wg.Wait()

	// Начальный остаток = конечный остаток + сумма продаж: сток не создаётся
	// и не исчезает.
	product, _ := store.GetProduct("darjeeling")
	var sold int32
	for _, m := range store.Movements() {
		if m.ProductID == "darjeeling" {
			sold += -m.QtyDelta
		}
	}
	if product.StockQuantity+sold != 10 {
		t.Fatalf("stock not conserved: remaining=%d sold=%d", product.StockQuantity, sold)
	}
	for _, m := range store.Movements() {
		if m.NewStock != m.PreviousStock+m.QtyDelta {
			t.Fatalf("broken movement arithmetic: %+v", m)
		}
	}
}
