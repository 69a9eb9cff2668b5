package email

import (
	"fmt"
	"html"
	"strings"
)

type OrderItem struct {
	ProductID string
	Name      string
	Size      string
	Quantity  int
	Price     int
}

// BuildOrderConfirmationBody renders the HTML confirmation for a placed order.
func BuildOrderConfirmationBody(orderID string, total int, deliverySlot string, items []OrderItem) string {
	var rows strings.Builder
	for _, item := range items {
		name := item.Name
		if name == "" {
			name = item.ProductID
		}
		if item.Size != "" {
			name = fmt.Sprintf("%s (%s)", name, item.Size)
		}
		fmt.Fprintf(&rows, `<tr>
				<td style="padding: 8px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 8px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
				<td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
			</tr>
`,
			html.EscapeString(name),
			item.Quantity,
			formatNumber(item.Price),
			formatNumber(item.Price*item.Quantity),
		)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 22px;">Thanks for your order</h1>
	<p>Order number: <strong style="font-family: monospace;">%s</strong></p>
	<p>Delivery slot: %s</p>
	<table style="width: 100%%; border-collapse: collapse;">
		<thead>
			<tr>
				<th style="padding: 8px; text-align: left;">Item</th>
				<th style="padding: 8px; text-align: center;">Qty</th>
				<th style="padding: 8px; text-align: right;">Price</th>
				<th style="padding: 8px; text-align: right;">Subtotal</th>
			</tr>
		</thead>
		<tbody>
			%s
		</tbody>
	</table>
	<p style="text-align: right; font-size: 18px;">Total: <strong>%s</strong></p>
	<p style="font-size: 12px; color: #999;">Payment is collected on delivery. This message was sent automatically.</p>
</body>
</html>`, html.EscapeString(orderID), html.EscapeString(deliverySlot), rows.String(), formatNumber(total))
}

// formatNumber formats a number with comma separators
func formatNumber(n int) string {
	sign := ""
	if n < 0 {
		sign, n = "-", -n
	}
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return sign + str
	}

	var result strings.Builder
	result.WriteString(sign)
	remainder := len(str) % 3
	if remainder > 0 {
		result.WriteString(str[:remainder])
		result.WriteString(",")
	}
	for i := remainder; i < len(str); i += 3 {
		result.WriteString(str[i : i+3])
		if i+3 < len(str) {
			result.WriteString(",")
		}
	}
	return result.String()
}
