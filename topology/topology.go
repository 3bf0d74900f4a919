// Package topology derives the per-branch ring structure of a labelled coarse mesh.
package topology

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/notargets/vesselmap/types"
)

// RingCheck selects how unequal ring counts across branches are handled by Resolve.
// It only governs the task level: CellOffset rejects unequal ring counts in either
// mode, so a warn layout still fails at the EC, SMC and field levels.
type RingCheck int

const (
	// RingCheckWarn logs unequal ring counts and resolves the layout
	RingCheckWarn RingCheck = iota
	// RingCheckStrict rejects unequal ring counts
	RingCheckStrict
)

func (rc RingCheck) String() string {
	switch rc {
	case RingCheckWarn:
		return "warn"
	case RingCheckStrict:
		return "strict"
	}
	return fmt.Sprintf("RingCheck(%d)", int(rc))
}

func ParseRingCheck(s string) (rc RingCheck, err error) {
	switch strings.ToLower(s) {
	case "", "warn":
		rc = RingCheckWarn
	case "strict":
		rc = RingCheckStrict
	default:
		err = errors.Wrapf(types.ErrConfiguration, "unknown ring check %q, expected warn or strict", s)
	}
	return
}

// Layout is the ring structure of every branch in a coarse mesh
type Layout struct {
	QuadsPerRing int
	Rings        map[int]int // label -> ring count
	first        map[int]int // label -> first native cell
	minLabel     int
	maxLabel     int
}

// Resolve computes rings per label from one label per coarse cell, in native order.
// Labels must cover a contiguous range and each label's cells must be contiguous.
func Resolve(labels []int, quadsPerRing int, check RingCheck) (lay *Layout, err error) {
	if quadsPerRing < 1 {
		return nil, errors.Wrapf(types.ErrConfiguration, "quads per ring must be positive, got %d", quadsPerRing)
	}
	if len(labels) == 0 {
		return nil, errors.Wrap(types.ErrInconsistentTopology, "mesh has no labelled cells")
	}
	var (
		counts = make(map[int]int)
		seen   = make(map[int]bool)
	)
	lay = &Layout{
		QuadsPerRing: quadsPerRing,
		Rings:        make(map[int]int),
		first:        make(map[int]int),
		minLabel:     labels[0],
		maxLabel:     labels[0],
	}
	for i, l := range labels {
		if i == 0 || l != labels[i-1] {
			if seen[l] {
				return nil, errors.Wrapf(types.ErrInconsistentTopology,
					"cells of label %d are not contiguous, label reappears at cell %d", l, i)
			}
			seen[l] = true
			lay.first[l] = i
		}
		counts[l]++
		lay.minLabel = min(lay.minLabel, l)
		lay.maxLabel = max(lay.maxLabel, l)
	}
	for l := lay.minLabel; l <= lay.maxLabel; l++ {
		if !seen[l] {
			return nil, errors.Wrapf(types.ErrInconsistentTopology,
				"labels are not contiguous, %d missing from range [%d, %d]", l, lay.minLabel, lay.maxLabel)
		}
		if counts[l]%quadsPerRing != 0 {
			return nil, errors.Wrapf(types.ErrConfiguration,
				"label %d has %d cells, not a whole number of rings of %d quads", l, counts[l], quadsPerRing)
		}
		lay.Rings[l] = counts[l] / quadsPerRing
	}
	total := 0
	for _, l := range lay.Labels() {
		total += lay.Rings[l] * quadsPerRing
	}
	if total != len(labels) {
		return nil, errors.Wrapf(types.ErrConfiguration,
			"ring counts cover %d cells, mesh has %d", total, len(labels))
	}
	if !lay.Uniform() {
		switch check {
		case RingCheckStrict:
			return nil, errors.Wrapf(types.ErrInconsistentTopology, "ring counts differ across branches: %s", lay)
		default:
			klog.Warningf("ring counts differ across branches: %s, fine cell offsets will be rejected", lay)
		}
	} else {
		klog.V(1).Infof("rings per label: %s", lay)
	}
	return
}

// Labels returns the labels in ascending order
func (lay *Layout) Labels() (labels []int) {
	for l := range lay.Rings {
		labels = append(labels, l)
	}
	sort.Ints(labels)
	return
}

// Uniform reports whether every branch has the same number of rings
func (lay *Layout) Uniform() bool {
	n := -1
	for _, r := range lay.Rings {
		if n >= 0 && r != n {
			return false
		}
		n = r
	}
	return true
}

// BranchCells is the number of coarse cells carrying the label
func (lay *Layout) BranchCells(label int) int {
	return lay.Rings[label] * lay.QuadsPerRing
}

// FirstCell is the native id of the first coarse cell carrying the label
func (lay *Layout) FirstCell(label int) int {
	return lay.first[label]
}

// CellOffset is the native id of the first fine cell of a branch in a mesh with
// cellsPerQuad fine cells per coarse quad. The offset arithmetic assumes every
// branch has the same ring count.
func (lay *Layout) CellOffset(label, cellsPerQuad int) (offset int, err error) {
	rings, ok := lay.Rings[label]
	if !ok {
		return 0, errors.Wrapf(types.ErrConfiguration, "label %d not present in layout", label)
	}
	if !lay.Uniform() {
		return 0, errors.Wrapf(types.ErrInconsistentTopology,
			"fine cell offsets need equal ring counts across branches: %s", lay)
	}
	offset = (label - lay.minLabel) * lay.QuadsPerRing * rings * cellsPerQuad
	return
}

func (lay *Layout) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, l := range lay.Labels() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d:%d", l, lay.Rings[l])
	}
	b.WriteString("}")
	return b.String()
}
