// internal/matcher/matcher.go
//
// Suffix-continuation matcher for the word chain.
//
// A Matcher is built once from the current word and answers a single
// question: does a candidate word continue from it? The target's failure
// function (KMP borders) drives a small automaton; the candidate is replayed
// through it and accepted when
//   - the whole target is reached at any point, or
//   - the candidate ends in any state past the start state.
//
// The second rule is weaker than substring containment on purpose: a short
// guess that ends with a prefix of the current word is a valid continuation.
//
// Matchers are immutable after New and safe for concurrent use.
package matcher

// Matcher is the failure-linked automaton for one target word.
type Matcher struct {
	target  []rune
	failure []int // len(target)+1; failure[i] = longest proper border of target[:i]
}

// New builds the automaton for target in O(len(target)).
func New(target string) *Matcher {
	t := []rune(target)
	failure := make([]int, len(t)+1)

	for i := 1; i < len(t); i++ {
		idx := failure[i]
		for idx > 0 && t[idx] != t[i] {
			idx = failure[idx]
		}
		if t[idx] == t[i] {
			failure[i+1] = idx + 1
		} else {
			failure[i+1] = 0
		}
	}

	return &Matcher{target: t, failure: failure}
}

// Target returns the word the matcher was built from.
func (m *Matcher) Target() string { return string(m.target) }

// Matches reports whether query continues from the target.
// An empty target accepts every query, including the empty one.
func (m *Matcher) Matches(query string) bool {
	if len(m.target) == 0 {
		return true
	}

	idx := 0
	for _, qch := range query {
		for idx > 0 && m.target[idx] != qch {
			idx = m.failure[idx]
		}
		if m.target[idx] == qch {
			idx++
			if idx == len(m.target) {
				return true
			}
		}
	}
	return idx > 0
}
