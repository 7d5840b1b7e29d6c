package fuzzy

import "sort"

const root = 0

type edge struct {
	ch    rune
	child int32
}

type node struct {
	edges    []edge
	value    string
	terminal bool
}

// Index is a trie of strings supporting bounded edit-distance search.
type Index struct {
	nodes []node
	size  int
}

// New creates an empty index.
func New() *Index {
	return &Index{nodes: []node{{}}}
}

// Len returns the number of distinct strings stored.
func (ix *Index) Len() int {
	return ix.size
}

// Insert adds s to the index. It reports whether s was not present before.
func (ix *Index) Insert(s string) bool {
	cur := int32(root)
	for _, ch := range s {
		next, ok := ix.child(cur, ch)
		if !ok {
			next = ix.addChild(cur, ch)
		}
		cur = next
	}
	n := &ix.nodes[cur]
	if n.terminal {
		return false
	}
	n.terminal = true
	n.value = s
	ix.size++
	return true
}

// Contains reports whether s is stored exactly.
func (ix *Index) Contains(s string) bool {
	cur := int32(root)
	for _, ch := range s {
		next, ok := ix.child(cur, ch)
		if !ok {
			return false
		}
		cur = next
	}
	return ix.nodes[cur].terminal
}

// Search returns every stored string whose Levenshtein distance to query is
// at most k, in lexicographic order. A negative k matches nothing.
func (ix *Index) Search(query string, k int) []string {
	if k < 0 {
		return nil
	}
	q := []rune(query)
	first := make([]int, len(q)+1)
	for i := range first {
		first[i] = i
	}

	s := &searcher{ix: ix, query: q, k: k, rows: [][]int{first}}
	if ix.nodes[root].terminal && first[len(q)] <= k {
		s.matches = append(s.matches, ix.nodes[root].value)
	}
	s.descend(root, 1)
	return s.matches
}

type searcher struct {
	ix      *Index
	query   []rune
	k       int
	rows    [][]int
	matches []string
}

// descend visits the children of n. Row depth-1 holds the distances for the
// prefix ending at n.
func (s *searcher) descend(n int32, depth int) {
	prev := s.rows[depth-1]
	for _, e := range s.ix.nodes[n].edges {
		row := s.row(depth)
		row[0] = prev[0] + 1
		best := row[0]
		for i := 1; i < len(row); i++ {
			cost := 1
			if s.query[i-1] == e.ch {
				cost = 0
			}
			row[i] = min(row[i-1]+1, prev[i]+1, prev[i-1]+cost)
			if row[i] < best {
				best = row[i]
			}
		}

		child := &s.ix.nodes[e.child]
		if child.terminal && row[len(row)-1] <= s.k {
			s.matches = append(s.matches, child.value)
		}
		if best <= s.k {
			s.descend(e.child, depth+1)
		}
	}
}

// row returns the scratch row for depth, allocating it on first use.
func (s *searcher) row(depth int) []int {
	if depth == len(s.rows) {
		s.rows = append(s.rows, make([]int, len(s.query)+1))
	}
	return s.rows[depth]
}

func (ix *Index) child(n int32, ch rune) (int32, bool) {
	edges := ix.nodes[n].edges
	i := sort.Search(len(edges), func(i int) bool { return edges[i].ch >= ch })
	if i < len(edges) && edges[i].ch == ch {
		return edges[i].child, true
	}
	return 0, false
}

func (ix *Index) addChild(n int32, ch rune) int32 {
	id := int32(len(ix.nodes))
	ix.nodes = append(ix.nodes, node{})

	edges := ix.nodes[n].edges
	i := sort.Search(len(edges), func(i int) bool { return edges[i].ch >= ch })
	edges = append(edges, edge{})
	copy(edges[i+1:], edges[i:])
	edges[i] = edge{ch: ch, child: id}
	ix.nodes[n].edges = edges
	return id
}
