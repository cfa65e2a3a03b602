package email

import (
	"fmt"
	"strings"

	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
)

// buildConfirmationBody собирает HTML-тело письма подтверждения.
func buildConfirmationBody(order domain.Order, customer domain.Customer) string {
	var rows strings.Builder
	for _, line := range order.Lines {
		rows.WriteString(fmt.Sprintf(
			`<tr>
				<td style="padding: 10px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 10px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 10px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
				<td style="padding: 10px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
			</tr>`,
			line.Name,
			line.Qty,
			formatRupees(line.UnitPriceMinor),
			formatRupees(line.TotalMinor),
		))
	}

	greeting := "Hello"
	if customer.Name != "" {
		greeting = "Hello " + customer.Name
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Georgia, serif; line-height: 1.6; color: #2d3a2e; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: #2d3a2e; padding: 24px; border-radius: 8px 8px 0 0;">
		<h1 style="color: #f4efe6; margin: 0; font-size: 22px;">Fog &amp; Leaf — thank you for your order</h1>
	</div>
	<div style="background: #fff; padding: 24px; border: 1px solid #eee; border-top: none; border-radius: 0 0 8px 8px;">
		<p style="margin-top: 0;">%s, your order has been confirmed.</p>
		<div style="background: #f4efe6; padding: 12px; border-radius: 4px; margin: 16px 0;">
			<p style="margin: 0; font-size: 13px; color: #666;">Order number</p>
			<p style="margin: 4px 0 0 0; font-size: 17px; font-weight: bold; font-family: monospace;">%s</p>
		</div>
		<table style="width: 100%%; border-collapse: collapse; margin: 16px 0;">
			<thead>
				<tr style="background: #f4efe6;">
					<th style="padding: 10px; text-align: left;">Item</th>
					<th style="padding: 10px; text-align: center;">Qty</th>
					<th style="padding: 10px; text-align: right;">Price</th>
					<th style="padding: 10px; text-align: right;">Total</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
		</table>
		<table style="width: 100%%; margin: 16px 0;">
			<tr><td>Subtotal</td><td style="text-align: right;">%s</td></tr>
			<tr><td>Shipping</td><td style="text-align: right;">%s</td></tr>
			<tr><td>Tax</td><td style="text-align: right;">%s</td></tr>
			<tr><td style="font-weight: bold;">Total</td><td style="text-align: right; font-weight: bold;">%s</td></tr>
		</table>
	</div>
</body>
</html>`,
		greeting,
		order.Number,
		rows.String(),
		formatRupees(order.SubtotalMinor),
		formatRupees(order.ShippingMinor),
		formatRupees(order.TaxMinor),
		formatRupees(order.TotalMinor),
	)
}

// formatRupees печатает сумму в пайсах как рупии: 25000 -> ₹250.00.
func formatRupees(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s₹%d.%02d", sign, minor/100, minor%100)
}
