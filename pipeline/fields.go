package pipeline

import (
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/notargets/vesselmap/InputParameters"
	"github.com/notargets/vesselmap/fields"
	"github.com/notargets/vesselmap/mesh"
	"github.com/notargets/vesselmap/mesh/readers"
	"github.com/notargets/vesselmap/ordering"
	"github.com/notargets/vesselmap/sinks"
	"github.com/notargets/vesselmap/topology"
	"github.com/notargets/vesselmap/types"
	"github.com/notargets/vesselmap/utils"
)

// FieldReport describes the field written for one branch
type FieldReport struct {
	Label int
	Name  string
	Stats fields.Stats
}

// FieldParams is the ordering used for the field of one branch: the EC grid, folded
// back over the decimation so every native value is emitted exactly once
func FieldParams(p *InputParameters.Profile, rings int) ordering.Params {
	return ordering.Params{
		Rings:        rings,
		QuadsPerRing: p.QuadsPerRing,
		Rows:         p.ECGrid.Rows,
		Cols:         p.ECGrid.Cols,
		ScaleCirc:    p.ScaleCirc,
		ScaleAxial:   p.ScaleAxial,
		RingGroup:    p.FieldRingGroup,
		Fold:         true,
	}
}

// LoadField reads the field mesh of the profile and returns its field values
func LoadField(p *InputParameters.Profile) (vals []float64, err error) {
	var (
		pd *mesh.PolyData
		da *mesh.DataArray
	)
	if pd, err = readers.ReadMeshFile(p.FieldMesh); err != nil {
		return nil, types.NewStageError(types.StageField, types.NoLabel, err)
	}
	if da, err = pd.CellArray(p.FieldArray); err != nil {
		return nil, types.NewStageError(types.StageField, types.NoLabel, err)
	}
	if da.Components > 1 {
		return nil, types.NewStageError(types.StageField, types.NoLabel, errors.Wrapf(types.ErrConfiguration,
			"field array %q has %d components", da.Name, da.Components))
	}
	vals = da.Values[pd.PolyOffset():]
	if i := utils.FirstNaN(vals); i >= 0 {
		return nil, types.NewStageError(types.StageField, types.NoLabel, errors.Wrapf(types.ErrConfiguration,
			"field array %q has non finite value %v at cell %d", da.Name, vals[i], i))
	}
	klog.Infof("read field %q from %s: %d values", da.Name, p.FieldMesh, len(vals))
	return
}

// RunFields reorders the field of every branch and writes one HDF5 file per branch.
// Only the first branch carries the grid attributes. With verify set each reordering
// is checked against a sparse selection product and for being a permutation.
func RunFields(p *InputParameters.Profile, lay *topology.Layout, vals []float64,
	verify bool) (reps []FieldReport, err error) {
	if err = p.Validate(); err != nil {
		return
	}
	if err = PrepareOutput(p); err != nil {
		return
	}
	labels := lay.Labels()
	for _, label := range labels {
		var (
			rep  FieldReport
			attr *sinks.GridAttrs
		)
		if label == labels[0] {
			attr = p.GridAttrs()
		}
		if rep, err = fieldBranch(p, lay, vals, label, attr, verify); err != nil {
			return nil, types.NewStageError(types.StageField, label, err)
		}
		klog.Infof("field of %s: %s", rep.Name, rep.Stats)
		reps = append(reps, rep)
	}
	return
}

func fieldBranch(p *InputParameters.Profile, lay *topology.Layout, vals []float64, label int,
	attr *sinks.GridAttrs, verify bool) (rep FieldReport, err error) {
	var (
		bs     InputParameters.BranchSinks
		offset int
		ids    utils.Index
		out    []float64
		params = FieldParams(p, lay.Rings[label])
	)
	if bs, err = p.Sinks(label); err != nil {
		return
	}
	if offset, err = lay.CellOffset(label, p.ECGrid.Cells()); err != nil {
		return
	}
	// the branch block [offset, offset+BranchCells) must lie inside the field
	if err = params.Validate(len(vals) - offset); err != nil {
		return
	}
	if ids, err = ordering.CanonicalIds(params); err != nil {
		return
	}
	if out, err = fields.Reorder(vals, offset, params.BranchCells(), ids); err != nil {
		return
	}
	if verify {
		if !fields.IsPermutation(ids, params.BranchCells()) {
			err = errors.Wrapf(types.ErrInconsistentTopology,
				"field order of label %d does not visit each of %d cells once", label, params.BranchCells())
			return
		}
		if err = fields.VerifyReorder(vals, offset, params.BranchCells(), ids, out); err != nil {
			return
		}
		klog.V(1).Infof("verified field order of label %d", label)
	}
	if err = bs.Field.Write(out, attr); err != nil {
		return
	}
	return FieldReport{Label: label, Name: bs.Name, Stats: fields.Summarize(out)}, nil
}
