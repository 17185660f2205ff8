package pdf

import (
	"context"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	appconfig "github.com/smallbiznis/faktura/internal/config"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
)

type MarotoRenderer struct {
	business appconfig.PDFConfig
}

func NewRenderer(cfg appconfig.Config) Renderer {
	return NewCachingRenderer(&MarotoRenderer{business: cfg.PDF})
}

const dateLayout = "2006-01-02"

func (r *MarotoRenderer) RenderInvoice(ctx context.Context, invoice invoicedomain.Invoice) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(10,
		text.NewCol(12, "Invoice", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	// Invoice meta
	m.AddRow(20,
		col.New(6).Add(
			text.New("Invoice number: "+invoice.InvoiceNumber, props.Text{Top: 0}),
			text.New("Date of issue: "+invoice.IssueDate.Format(dateLayout), props.Text{Top: 4}),
			text.New("Date due: "+invoice.DueDate.Format(dateLayout), props.Text{Top: 8}),
			text.New("Status: "+string(invoice.Status), props.Text{Top: 12}),
		),
		col.New(6),
	)

	// Addresses
	m.AddRow(30,
		col.New(6).Add(
			text.New(r.business.BusinessName, props.Text{Style: fontstyle.Bold}),
			text.New(r.business.BusinessAddress, props.Text{Top: 5}),
			text.New(r.business.BusinessEmail, props.Text{Top: 15}),
		),
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(invoice.CustomerName, props.Text{Top: 5}),
			text.New(invoice.CustomerEmail, props.Text{Top: 9}),
		),
	)

	m.AddRow(15,
		text.NewCol(12, invoice.Currency+" "+invoice.Total.StringFixed(2)+" due "+invoice.DueDate.Format(dateLayout), props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Top:   5,
		}),
	)

	// Table header
	m.AddRow(10,
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range invoice.Items {
		m.AddRow(15,
			text.NewCol(6, item.Description, props.Text{Size: 9}),
			text.NewCol(2, item.Quantity.String(), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Total.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
		)
	}

	// Totals
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Subtotal", props.Text{Size: 9}),
		text.NewCol(2, invoice.Subtotal.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
	)
	if invoice.DiscountAmount.IsPositive() {
		m.AddRow(10,
			col.New(8),
			text.NewCol(2, "Discount ("+invoice.DiscountPercent.String()+"%)", props.Text{Size: 9}),
			text.NewCol(2, "-"+invoice.DiscountAmount.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
		)
	}
	if invoice.TaxAmount.IsPositive() {
		m.AddRow(10,
			col.New(8),
			text.NewCol(2, "Tax ("+invoice.TaxRate.String()+"%)", props.Text{Size: 9}),
			text.NewCol(2, invoice.TaxAmount.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, invoice.Total.StringFixed(2), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	if invoice.Notes != "" {
		m.AddRow(20,
			text.NewCol(12, invoice.Notes, props.Text{Size: 9, Top: 5}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return doc.GetBytes(), nil
}
