package pdf

import (
	"context"
	"fmt"
	"time"

	"github.com/smallbiznis/faktura/internal/cache"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
)

const renderTTL = 10 * time.Minute

// CachingRenderer memoizes rendered documents. The key carries the invoice's
// update timestamp, so any edit renders fresh and stale entries just age out.
type CachingRenderer struct {
	inner Renderer
	docs  cache.Cache[string, []byte]
}

func NewCachingRenderer(inner Renderer) *CachingRenderer {
	return &CachingRenderer{
		inner: inner,
		docs:  cache.NewTTLCache[string, []byte](),
	}
}

func (r *CachingRenderer) RenderInvoice(ctx context.Context, invoice invoicedomain.Invoice) ([]byte, error) {
	key := fmt.Sprintf("%s:%d:%d", invoice.ID, invoice.UpdatedAt.UnixNano(), invoice.RemindersSent())
	if doc, ok := r.docs.Get(key); ok {
		return doc, nil
	}

	doc, err := r.inner.RenderInvoice(ctx, invoice)
	if err != nil {
		return nil, err
	}
	r.docs.Set(key, doc, renderTTL)
	return doc, nil
}
