package audio

import (
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// ElementSet is an ordered set of channel elements exposed for one property.
// If ElementMain is a member it is the only member.
type ElementSet []Element

// NewElementSet builds a set from candidates, dropping duplicates and collapsing
// to the aggregate element when it is present.
func NewElementSet(elems ...Element) ElementSet {
	if slices.Contains(elems, ElementMain) {
		return ElementSet{ElementMain}
	}
	uniq := lo.Uniq(elems)
	if len(uniq) == 0 {
		return nil
	}
	return ElementSet(uniq)
}

// Contains reports whether elem is a member.
func (s ElementSet) Contains(elem Element) bool {
	return slices.Contains(s, elem)
}

// IsAggregate reports whether the set is the single aggregate element.
func (s ElementSet) IsAggregate() bool {
	return len(s) == 1 && s[0] == ElementMain
}

// Clone returns an independent copy.
func (s ElementSet) Clone() ElementSet {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}

// String renders the set for logs, e.g. "[main]" or "[1 2]".
func (s ElementSet) String() string {
	parts := lo.Map(s, func(e Element, _ int) string {
		if e == ElementMain {
			return "main"
		}
		return strconv.FormatUint(uint64(e), 10)
	})
	return "[" + strings.Join(parts, " ") + "]"
}
