package value

import (
	"strconv"
	"strings"
)

// Satisfies implements the supplemented SemVer.satisfies(range) feature
// (SPEC_FULL.md §12.2): a comma-separated list of comparator clauses like
// "^1.2", "~1.2.3", ">=1.0,<2.0", all of which must hold.
func (s *SemVer) Satisfies(rangeExpr string) bool {
	clauses := strings.Split(rangeExpr, ",")
	for _, clause := range clauses {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		if !satisfiesClause(s, clause) {
			return false
		}
	}
	return true
}

func satisfiesClause(s *SemVer, clause string) bool {
	switch {
	case strings.HasPrefix(clause, "^"):
		req, ok := parseSemVer(clause[1:])
		if !ok {
			return false
		}
		if req.Major != s.Major {
			return false
		}
		return compareSemVer(s, req) >= 0
	case strings.HasPrefix(clause, "~"):
		req, ok := parseSemVer(clause[1:])
		if !ok {
			return false
		}
		if req.Major != s.Major || req.Minor != s.Minor {
			return false
		}
		return compareSemVer(s, req) >= 0
	case strings.HasPrefix(clause, ">="):
		req, ok := parseSemVer(strings.TrimSpace(clause[2:]))
		return ok && compareSemVer(s, req) >= 0
	case strings.HasPrefix(clause, "<="):
		req, ok := parseSemVer(strings.TrimSpace(clause[2:]))
		return ok && compareSemVer(s, req) <= 0
	case strings.HasPrefix(clause, ">"):
		req, ok := parseSemVer(strings.TrimSpace(clause[1:]))
		return ok && compareSemVer(s, req) > 0
	case strings.HasPrefix(clause, "<"):
		req, ok := parseSemVer(strings.TrimSpace(clause[1:]))
		return ok && compareSemVer(s, req) < 0
	case strings.HasPrefix(clause, "="):
		req, ok := parseSemVer(strings.TrimSpace(clause[1:]))
		return ok && compareSemVer(s, req) == 0
	default:
		req, ok := parseSemVer(clause)
		return ok && compareSemVer(s, req) == 0
	}
}

func compareSemVer(a, b *SemVer) int {
	if a.Major != b.Major {
		return cmpU64(a.Major, b.Major)
	}
	if a.Minor != b.Minor {
		return cmpU64(a.Minor, b.Minor)
	}
	if a.Patch != b.Patch {
		return cmpU64(a.Patch, b.Patch)
	}
	return 0
}

func cmpU64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// parseSemVer parses "1", "1.2", or "1.2.3" (missing components default to 0).
func parseSemVer(s string) (*SemVer, bool) {
	parts := strings.SplitN(s, ".", 3)
	var nums [3]uint64
	for i := 0; i < len(parts) && i < 3; i++ {
		n, err := strconv.ParseUint(parts[i], 10, 64)
		if err != nil {
			return nil, false
		}
		nums[i] = n
	}
	return &SemVer{Major: nums[0], Minor: nums[1], Patch: nums[2]}, true
}
