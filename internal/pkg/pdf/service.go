// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/sudeepthiperuri3/shop-sphere/internal/config"
	"github.com/sudeepthiperuri3/shop-sphere/internal/domain/checkout"
)

var receiptTmpl = template.Must(template.New("receipt").Parse(receiptTemplate))

// Service renders order receipts
type Service struct {
	storeName string
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	if cfg.Checkout.WkhtmlPath != "" {
		wkhtmltopdf.SetPath(cfg.Checkout.WkhtmlPath)
	}
	return &Service{
		storeName: cfg.Checkout.StoreName,
	}
}

// ReceiptData represents the data passed to the receipt template
type ReceiptData struct {
	StoreName string
	PlacedAt  string
	Order     *checkout.Order
}

// RenderReceiptHTML renders the receipt page for an order
func (s *Service) RenderReceiptHTML(order *checkout.Order) ([]byte, error) {
	data := ReceiptData{
		StoreName: s.storeName,
		PlacedAt:  order.PlacedAt.Format("January 2, 2006 15:04 MST"),
		Order:     order,
	}

	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateReceipt converts the receipt page to PDF with wkhtmltopdf
func (s *Service) GenerateReceipt(order *checkout.Order) (*bytes.Buffer, error) {
	html, err := s.RenderReceiptHTML(order)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.Order.Number}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { border-bottom: 2px solid #111; padding-bottom: 12px; margin-bottom: 24px; }
        .store { font-size: 26px; font-weight: bold; letter-spacing: 2px; }
        .meta { color: #666; font-size: 13px; }
        table { width: 100%; border-collapse: collapse; margin-top: 16px; }
        th, td { padding: 8px; border-bottom: 1px solid #ddd; text-align: left; }
        .num { text-align: right; }
        .totals td { border: none; }
        .grand td { font-weight: bold; font-size: 16px; border-top: 2px solid #111; }
    </style>
</head>
<body>
    <div class="header">
        <div class="store">{{.StoreName}}</div>
        <div class="meta">Order {{.Order.Number}} &middot; {{.PlacedAt}}</div>
    </div>

    <h3>Ship to</h3>
    <p>
        {{.Order.Shipping.FirstName}} {{.Order.Shipping.LastName}}<br>
        {{.Order.Shipping.Address}}<br>
        {{.Order.Shipping.City}}, {{.Order.Shipping.State}} {{.Order.Shipping.ZipCode}}<br>
        {{.Order.Shipping.Email}}
    </p>

    <h3>Payment</h3>
    <p>{{.Order.CardName}} &middot; card ending {{.Order.CardLastFour}}</p>

    <table>
        <thead>
            <tr><th>Item</th><th class="num">Qty</th><th class="num">Price</th><th class="num">Total</th></tr>
        </thead>
        <tbody>
        {{range .Order.Summary.Items}}
            <tr>
                <td>{{.Title}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">${{.Price.StringFixed 2}}</td>
                <td class="num">${{.LineTotal.StringFixed 2}}</td>
            </tr>
        {{end}}
        </tbody>
    </table>

    <table class="totals">
        <tr><td>Subtotal ({{.Order.Summary.ItemCount}} items)</td><td class="num">${{.Order.Summary.Subtotal.StringFixed 2}}</td></tr>
        <tr><td>Shipping</td><td class="num">Free</td></tr>
        <tr><td>Tax</td><td class="num">${{.Order.Summary.Tax.StringFixed 2}}</td></tr>
        <tr class="grand"><td>Total</td><td class="num">${{.Order.Summary.Total.StringFixed 2}}</td></tr>
    </table>

    <p class="meta">This is a demo order. No payment was taken.</p>
</body>
</html>
`
