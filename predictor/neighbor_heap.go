package predictor

import "container/heap"

type neighbor struct {
	occupancy float64
	weight    float64
	seq       int
}

// neighborHeap is a min-heap on weight. Among equal weights the most recently
// seen neighbor sits on top, so it is the first one evicted.
type neighborHeap []neighbor

func (h neighborHeap) Len() int { return len(h) }

func (h neighborHeap) Less(i, j int) bool {
	if h[i].weight != h[j].weight {
		return h[i].weight < h[j].weight
	}
	return h[i].seq > h[j].seq
}

func (h neighborHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *neighborHeap) Push(x any) { *h = append(*h, x.(neighbor)) }

func (h *neighborHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// topK keeps the k heaviest neighbors offered to it. A newcomer only
// displaces the lightest kept neighbor when strictly heavier.
type topK struct {
	k     int
	items neighborHeap
}

func newTopK(k int) *topK {
	return &topK{k: k, items: make(neighborHeap, 0, k)}
}

func (t *topK) offer(n neighbor) {
	if len(t.items) < t.k {
		heap.Push(&t.items, n)
		return
	}
	if n.weight > t.items[0].weight {
		t.items[0] = n
		heap.Fix(&t.items, 0)
	}
}

func (t *topK) neighbors() []neighbor {
	return t.items
}
