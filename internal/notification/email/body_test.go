package email

import (
	"context"
	"strings"
	"testing"

	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
)

func TestFormatRupees(t *testing.T) {
	cases := []struct {
		minor int64
		want  string
	}{
		{0, "₹0.00"},
		{5, "₹0.05"},
		{100, "₹1.00"},
		{84900, "₹849.00"},
		{269705, "₹2697.05"},
		{-5000, "-₹50.00"},
	}

	for _, tc := range cases {
		if got := formatRupees(tc.minor); got != tc.want {
			t.Fatalf("formatRupees(%d): expected %s, got %s", tc.minor, tc.want, got)
		}
	}
}

func TestBuildConfirmationBody(t *testing.T) {
	order := domain.Order{
		Number: "FOG2025010007",
		Lines: []domain.OrderLine{{
			Name:           "Darjeeling First Flush",
			Qty:            2,
			UnitPriceMinor: 84900,
			TotalMinor:     169800,
		}},
		SubtotalMinor: 169800,
		ShippingMinor: 5000,
		TotalMinor:    174800,
	}
	customer := domain.Customer{Name: "Asha Rao", Email: "asha@example.com"}

	body := buildConfirmationBody(order, customer)

	for _, fragment := range []string{
		"FOG2025010007",
		"Hello Asha Rao",
		"Darjeeling First Flush",
		"₹849.00",
		"₹1748.00",
	} {
		if !strings.Contains(body, fragment) {
			t.Fatalf("body must contain %q", fragment)
		}
	}
}

func TestBuildConfirmationBody_NoCustomerName(t *testing.T) {
	body := buildConfirmationBody(domain.Order{Number: "FOG2025010001"}, domain.Customer{})
	if !strings.Contains(body, "Hello,") {
		t.Fatal("expected generic greeting without a customer name")
	}
}

func TestSender_NotConfiguredIsNoOp(t *testing.T) {
	sender := NewSender("", "", "")
	err := sender.SendOrderConfirmation(context.Background(), domain.Order{Number: "FOG2025010001"}, domain.Customer{Email: "a@b.c"})
	if err != nil {
		t.Fatalf("unconfigured sender must be a no-op, got %v", err)
	}
}
