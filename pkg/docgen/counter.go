package docgen

import (
	"strconv"
	"sync/atomic"
)

// InvoiceCounter hands out increasing invoice numbers. It is safe for
// concurrent use.
type InvoiceCounter struct {
	last atomic.Int64
}

// NewInvoiceCounter creates a counter whose first number is start+1
func NewInvoiceCounter(start int64) *InvoiceCounter {
	c := &InvoiceCounter{}
	c.last.Store(start)
	return c
}

// Next returns the next invoice number
func (c *InvoiceCounter) Next() string {
	return strconv.FormatInt(c.last.Add(1), 10)
}

// Last returns the most recently issued number
func (c *InvoiceCounter) Last() int64 {
	return c.last.Load()
}
