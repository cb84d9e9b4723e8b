package report

import (
	"sort"

	"ethicalpulse/dashboard/internal/model"
)

type LessFunc func(v1, v2 *model.Vulnerability) bool

// multiSorter sorts vulnerabilities by a chain of less functions.
type multiSorter struct {
	vulnerabilities []model.Vulnerability
	less            []LessFunc
}

// Sort sorts the argument slice in place, keeping the order of equal items.
func (ms *multiSorter) Sort(vulnerabilities []model.Vulnerability) {
	ms.vulnerabilities = vulnerabilities
	sort.Stable(ms)
}

// OrderedBy returns a sorter that applies the less functions in order.
func OrderedBy(less ...LessFunc) *multiSorter {
	return &multiSorter{
		less: less,
	}
}

func (ms *multiSorter) Len() int {
	return len(ms.vulnerabilities)
}

func (ms *multiSorter) Swap(i, j int) {
	ms.vulnerabilities[i], ms.vulnerabilities[j] = ms.vulnerabilities[j], ms.vulnerabilities[i]
}

// Less walks the less functions until one discriminates between the two
// items. The last one decides ties.
func (ms *multiSorter) Less(i, j int) bool {
	p, q := &ms.vulnerabilities[i], &ms.vulnerabilities[j]
	var k int
	for k = 0; k < len(ms.less)-1; k++ {
		less := ms.less[k]
		switch {
		case less(p, q):
			return true
		case less(q, p):
			return false
		}
	}
	return ms.less[k](p, q)
}

var (
	bySeverity LessFunc = func(v1, v2 *model.Vulnerability) bool {
		return v1.Severity.Rank() < v2.Severity.Rank()
	}
	byNewestDiscovery LessFunc = func(v1, v2 *model.Vulnerability) bool {
		return v1.DiscoveredAt.After(v2.DiscoveredAt)
	}
)

// SortBySeverity puts the most severe first, then the most recently
// discovered.
func SortBySeverity(vulnerabilities []model.Vulnerability) {
	OrderedBy(bySeverity, byNewestDiscovery).Sort(vulnerabilities)
}
