package payments

import (
	"time"

	"github.com/sasha-s/go-deadlock"
	"nostrich/engine/library"
)

// Settler pays one invoice. No partial-success states: it worked or it
// didn't.
type Settler interface {
	Settle(invoice string) error
}

// Queue decouples settlement latency from response latency. Invoices are
// settled FIFO by a single background drain; a response is never blocked on
// payment confirmation.
type Queue struct {
	settler  Settler
	stack    *invoiceStack
	mu       *deadlock.Mutex
	draining bool
}

func NewQueue(settler Settler) *Queue {
	return &Queue{
		settler: settler,
		stack:   newInvoiceStack(8),
		mu:      &deadlock.Mutex{},
	}
}

// Enqueue appends the invoice and kicks off a drain if none is running.
// Empty invoices (the inference call was free) are ignored.
func (q *Queue) Enqueue(invoice string) {
	if len(invoice) == 0 {
		return
	}
	q.mu.Lock()
	q.stack.Push(invoice)
	start := !q.draining
	if start {
		q.draining = true
	}
	q.mu.Unlock()
	if start {
		go q.drain()
	}
}

func (q *Queue) drain() {
	for {
		q.mu.Lock()
		invoice, ok := q.stack.Pop()
		if !ok {
			q.draining = false
			q.mu.Unlock()
			return
		}
		q.mu.Unlock()
		if err := q.settler.Settle(invoice); err != nil {
			// invoices are single-use; a failed one is dropped, retry
			// semantics belong to the wallet
			library.LogCLI("could not settle invoice: "+err.Error(), 2)
		}
	}
}

func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stack.count
}

// DrainRemaining blocks until every queued invoice has been attempted. Called
// on the shutdown path so pending settlement obligations are not lost.
func (q *Queue) DrainRemaining() {
	for {
		q.mu.Lock()
		if q.stack.count == 0 && !q.draining {
			q.mu.Unlock()
			return
		}
		idle := !q.draining
		if idle {
			q.draining = true
		}
		q.mu.Unlock()
		if idle {
			q.drain()
			continue
		}
		time.Sleep(time.Millisecond * 50)
	}
}
