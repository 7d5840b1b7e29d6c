package profile

import (
	"customer-merger/feature/profile/models"

	"github.com/agnivade/levenshtein"
)

const (
	// MatchDistance is the largest edit distance at which email, phone and
	// full name count as equal.
	MatchDistance = 1
	// MatchThreshold is the score a candidate must exceed to be a match.
	MatchThreshold = 1.0
)

const (
	ssnMatch    = 1.0
	ssnMismatch = -1.5
	fuzzyMatch  = 1.0
	fuzzyMiss   = -1.0
)

// Score sums the evidence that a stored profile and a candidate describe the
// same person. Fields missing on either side contribute nothing.
func Score(stored, candidate models.Identity) float64 {
	var score float64

	if stored.SSN != "" && candidate.SSN != "" {
		if stored.SSN == candidate.SSN {
			score += ssnMatch
		} else {
			score += ssnMismatch
		}
	}
	score += fuzzy(stored.Email, candidate.Email)
	score += fuzzy(stored.Phone, candidate.Phone)

	storedName, ok1 := stored.FullName()
	candidateName, ok2 := candidate.FullName()
	if ok1 && ok2 {
		score += fuzzy(storedName, candidateName)
	}
	return score
}

// IsMatch reports whether a score clears the match threshold.
func IsMatch(score float64) bool {
	return score > MatchThreshold
}

// Within reports whether a and b are at most MatchDistance edits apart.
func Within(a, b string) bool {
	return levenshtein.ComputeDistance(a, b) <= MatchDistance
}

// Agrees reports whether a and b share an ssn, email or phone exactly while no
// field present on both sides contradicts. A single shared key scores exactly
// the threshold, so this is the fallback when no candidate clears it.
func Agrees(a, b models.Identity) bool {
	shared := false
	if a.SSN != "" && b.SSN != "" {
		if a.SSN != b.SSN {
			return false
		}
		shared = true
	}
	for _, f := range [][2]string{{a.Email, b.Email}, {a.Phone, b.Phone}} {
		if f[0] == "" || f[1] == "" {
			continue
		}
		if !Within(f[0], f[1]) {
			return false
		}
		shared = shared || f[0] == f[1]
	}
	nameA, ok1 := a.FullName()
	nameB, ok2 := b.FullName()
	if ok1 && ok2 && !Within(nameA, nameB) {
		return false
	}
	return shared
}

// SamePerson decides whether a guest on a booking is the booker.
func SamePerson(a, b models.Identity) bool {
	return IsMatch(Score(a, b)) || Agrees(a, b)
}

func fuzzy(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if Within(a, b) {
		return fuzzyMatch
	}
	return fuzzyMiss
}
