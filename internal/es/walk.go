package es

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of that node.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range n.Children() {
		Walk(child, fn)
	}
}

// Stats counts nodes per kind tag.
func Stats(n Node) map[string]int {
	counts := make(map[string]int)
	Walk(n, func(node Node) bool {
		counts[node.Kind().String()]++
		return true
	})
	return counts
}
