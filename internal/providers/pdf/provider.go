package pdf

import (
	"context"

	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
)

// Renderer turns an invoice into a document byte stream. The reminder flow
// treats the produced bytes as a black box.
type Renderer interface {
	RenderInvoice(ctx context.Context, invoice invoicedomain.Invoice) ([]byte, error)
}

type NoOpRenderer struct{}

func (r *NoOpRenderer) RenderInvoice(ctx context.Context, invoice invoicedomain.Invoice) ([]byte, error) {
	return nil, nil
}
