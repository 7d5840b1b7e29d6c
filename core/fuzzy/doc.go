// Package fuzzy provides an approximate string dictionary.
//
// The Index stores a set of strings in a character trie and answers
// "which stored values are within edit distance k of this query" lookups.
// Common prefixes are shared, and the search abandons a branch as soon as
// every cell of its Levenshtein row exceeds k, so small k values stay well
// below a linear scan of the stored set.
//
// # Layout
//
// Nodes live in a single slice (an arena) and refer to their children by
// index. Each node keeps its outgoing edges sorted by rune, which makes
// search results come back in lexicographic order.
//
// # Usage
//
//	idx := fuzzy.New()
//	idx.Insert("mika@gmail.com")
//	matches := idx.Search("mika@gmail.co", 1) // ["mika@gmail.com"]
//
// An Index is not safe for concurrent mutation. Callers that share one
// across goroutines must synchronise access themselves.
package fuzzy
