package centreline

import (
	"github.com/alecthomas/participle/v2"
	"github.com/pkg/errors"

	"github.com/notargets/vesselmap/types"
)

// TreeExpr is one segment followed by its optional left and right subtrees, as in
//
//	[20, [(20, 60), None, None], [(20, 150), [40, None, None], None]]
type TreeExpr struct {
	Domain *DomainExpr `"[" @@`
	Left   *ChildExpr  `( "," @@`
	Right  *ChildExpr  `  ( "," @@ )? )? "]"`
}

type ChildExpr struct {
	None bool      `  @"None"`
	Tree *TreeExpr `| @@`
}

// DomainExpr is a bare segment length or a (length, angle in degrees) pair
type DomainExpr struct {
	Pair   *PairExpr `  "(" @@ ")"`
	Length *float64  `| @(Float | Int)`
}

type PairExpr struct {
	Length float64 `@(Float | Int)`
	Angle  float64 `"," @(Float | Int)`
}

var parseTreeExpr = participle.MustBuild[TreeExpr]()

// ParseTree parses the nested list notation of a centreline tree
func ParseTree(expr string) (tree *TreeExpr, err error) {
	if tree, err = parseTreeExpr.ParseString("", expr); err != nil {
		return nil, errors.Wrapf(types.ErrConfiguration, "centreline tree: %v", err)
	}
	return
}

func (c *ChildExpr) subtree() *TreeExpr {
	if c == nil || c.None {
		return nil
	}
	return c.Tree
}

// hasAngle is false when the default branch angle applies
func (d *DomainExpr) values() (length, angleDeg float64, hasAngle bool) {
	if d.Pair != nil {
		return d.Pair.Length, d.Pair.Angle, true
	}
	return *d.Length, 0, false
}
