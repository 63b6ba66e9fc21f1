// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/dustin/go-humanize"
	"github.com/your-org/solar-storefront/internal/config"
	"github.com/your-org/solar-storefront/internal/domain/order"
)

// Service handles PDF generation
type Service struct {
	config config.InvoiceConfig
	now    func() time.Time
	tmpl   *template.Template
}

// NewService creates a new PDF service
func NewService(cfg config.InvoiceConfig) *Service {
	s := &Service{
		config: cfg,
		now:    time.Now,
	}
	s.tmpl = template.Must(template.New("invoice").Funcs(template.FuncMap{
		"money": func(amount int64) string {
			return order.FormatAmount(amount, s.config.Currency)
		},
		"lineTotal": func(item order.Item) string {
			return order.FormatAmount(item.Price*int64(item.Quantity), s.config.Currency)
		},
		"title": func(v interface{}) string {
			str := strings.ReplaceAll(fmt.Sprint(v), "_", " ")
			if str == "" {
				return str
			}
			return strings.ToUpper(str[:1]) + str[1:]
		},
		"ago": humanize.Time,
	}).Parse(invoiceTemplate))
	return s
}

// InvoiceData represents the data passed to the invoice template
type InvoiceData struct {
	InvoiceNumber string       `json:"invoice_number"`
	InvoiceDate   string       `json:"invoice_date"`
	Order         *order.Order `json:"order"`
	Company       CompanyInfo  `json:"company"`
	ItemCount     int          `json:"item_count"`
}

// CompanyInfo represents company information
type CompanyInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// InvoiceNumber derives the invoice number from the order id
func InvoiceNumber(o *order.Order) string {
	return "INV-" + strings.TrimPrefix(o.ID, "ORD-")
}

// RenderHTML renders the invoice page for an order
func (s *Service) RenderHTML(o *order.Order) (string, error) {
	data := InvoiceData{
		InvoiceNumber: InvoiceNumber(o),
		InvoiceDate:   s.now().Format("January 2, 2006"),
		Order:         o,
		ItemCount:     o.ItemCount(),
		Company: CompanyInfo{
			Name:    s.config.CompanyName,
			Address: s.config.CompanyAddress,
			Phone:   s.config.CompanyPhone,
			Email:   s.config.CompanyEmail,
		},
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// GenerateInvoice generates a PDF invoice for an order. It needs the
// wkhtmltopdf binary on PATH.
func (s *Service) GenerateInvoice(o *order.Order) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderHTML(o)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	// Set PDF options
	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(strings.NewReader(htmlContent))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// Invoice HTML template
const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Invoice {{.InvoiceNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { display: flex; justify-content: space-between; margin-bottom: 30px; border-bottom: 2px solid #eee; padding-bottom: 20px; }
        .invoice-info { text-align: right; }
        .invoice-title { font-size: 28px; font-weight: bold; color: #ca8a04; margin-bottom: 10px; }
        .section-title { font-size: 16px; font-weight: bold; margin-bottom: 10px; color: #374151; }
        .items-table { width: 100%; border-collapse: collapse; margin-bottom: 30px; }
        .items-table th, .items-table td { border: 1px solid #ddd; padding: 12px 8px; text-align: left; }
        .items-table th { background-color: #f8f9fa; }
        .items-table .num { text-align: right; }
        .total-row { font-size: 18px; font-weight: bold; text-align: right; }
        .warning { background: #fef3c7; color: #92400e; padding: 10px; border-radius: 4px; margin-bottom: 20px; }
        .footer { margin-top: 50px; padding-top: 20px; border-top: 1px solid #eee; text-align: center; color: #666; font-size: 12px; }
        .status-badge { display: inline-block; padding: 4px 8px; border-radius: 4px; font-size: 12px; font-weight: bold; text-transform: uppercase; background-color: #e0f2fe; color: #075985; }
    </style>
</head>
<body>
    <div class="header">
        <div>
            <h1>{{.Company.Name}}</h1>
            {{if .Company.Address}}<p>{{.Company.Address}}</p>{{end}}
            {{if .Company.Phone}}<p>Phone: {{.Company.Phone}}</p>{{end}}
            {{if .Company.Email}}<p>Email: {{.Company.Email}}</p>{{end}}
        </div>
        <div class="invoice-info">
            <div class="invoice-title">INVOICE</div>
            <p><strong>Invoice #:</strong> {{.InvoiceNumber}}</p>
            <p><strong>Invoice Date:</strong> {{.InvoiceDate}}</p>
            <p><strong>Order #:</strong> {{.Order.ID}}</p>
            <p><strong>Order Date:</strong> {{.Order.Date.Format "January 2, 2006"}} ({{ago .Order.Date}})</p>
            <p><strong>Payment:</strong> {{title .Order.PaymentMethod}}</p>
            <p><span class="status-badge">{{title .Order.Status}}</span></p>
        </div>
    </div>

    <div>
        <div class="section-title">Ship To</div>
        <p><strong>{{.Order.Shipping.FullName}}</strong></p>
        <p>{{.Order.Shipping.Address}}</p>
        <p>{{.Order.Shipping.City}}{{if .Order.Shipping.Region}}, {{.Order.Shipping.Region}}{{end}}</p>
        <p>Phone: {{.Order.Shipping.Phone}}</p>
        {{if .Order.Shipping.Email}}<p>Email: {{.Order.Shipping.Email}}</p>{{end}}
    </div>

    {{if .Order.CompatibilityWarning}}<div class="warning">{{.Order.CompatibilityWarning}}</div>{{end}}

    <table class="items-table">
        <thead>
            <tr><th>Item</th><th class="num">Qty</th><th class="num">Price</th><th class="num">Total</th></tr>
        </thead>
        <tbody>
            {{range .Order.Items}}
            <tr>
                <td><strong>{{.Name}}</strong><br><small>{{.ProductID}}</small></td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{money .Price}}</td>
                <td class="num">{{lineTotal .}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <p class="total-row">{{.ItemCount}} item(s) &middot; Total: {{money .Order.Total}}</p>

    <div class="footer">
        <p>Thank you for choosing solar energy!</p>
        {{if .Company.Email}}<p>If you have any questions about this invoice, please contact us at {{.Company.Email}}</p>{{end}}
    </div>
</body>
</html>
`
