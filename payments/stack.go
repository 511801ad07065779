package payments

// newInvoiceStack returns a new invoice stack (FIFO) with the given initial size.
func newInvoiceStack(size int) *invoiceStack {
	return &invoiceStack{
		nodes: make([]string, size),
		size:  size,
	}
}

// invoiceStack is a FIFO stack that resizes as needed.
type invoiceStack struct {
	nodes []string
	size  int
	head  int
	tail  int
	count int
}

// Push adds an invoice to the stack.
func (q *invoiceStack) Push(n string) {
	if q.head == q.tail && q.count > 0 {
		nodes := make([]string, len(q.nodes)+q.size)
		copy(nodes, q.nodes[q.head:])
		copy(nodes[len(q.nodes)-q.head:], q.nodes[:q.head])
		q.head = 0
		q.tail = len(q.nodes)
		q.nodes = nodes
	}
	q.nodes[q.tail] = n
	q.tail = (q.tail + 1) % len(q.nodes)
	q.count++
}

// Pop removes and returns an invoice from the stack in first to last order.
func (q *invoiceStack) Pop() (string, bool) {
	if q.count == 0 {
		return "", false
	}
	node := q.nodes[q.head]
	q.head = (q.head + 1) % len(q.nodes)
	q.count--
	return node, true
}
