// Package pipeline drives one reordering run of a profile: resolve the branch layout
// from the task mesh, then reorder the task, EC and SMC levels branch by branch and
// write every sink.
package pipeline

import (
	"os"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/notargets/vesselmap/InputParameters"
	"github.com/notargets/vesselmap/assembly"
	"github.com/notargets/vesselmap/mesh"
	"github.com/notargets/vesselmap/mesh/readers"
	"github.com/notargets/vesselmap/mesh/writers"
	"github.com/notargets/vesselmap/ordering"
	"github.com/notargets/vesselmap/sinks"
	"github.com/notargets/vesselmap/topology"
	"github.com/notargets/vesselmap/types"
	"github.com/notargets/vesselmap/utils"
)

// Meshes are the inputs of a run, read once
type Meshes struct {
	Task, EC, SMC *mesh.PolyData
}

// LoadMeshes reads the task, EC and SMC meshes named by the profile
func LoadMeshes(p *InputParameters.Profile) (m *Meshes, err error) {
	m = &Meshes{}
	for _, in := range []struct {
		stage string
		path  string
		dst   **mesh.PolyData
	}{
		{types.StageTask, p.TaskMesh, &m.Task},
		{types.StageEC, p.ECMesh, &m.EC},
		{types.StageSMC, p.SMCMesh, &m.SMC},
	} {
		if *in.dst, err = readers.ReadMeshFile(in.path); err != nil {
			return nil, types.NewStageError(in.stage, types.NoLabel, err)
		}
		klog.Infof("read %s mesh %s: %d points, %d cells", in.stage, in.path,
			(*in.dst).NumPoints(), (*in.dst).NumCells())
	}
	return
}

// Labels returns the per polygon branch labels of the task mesh
func Labels(p *InputParameters.Profile, task *mesh.PolyData) (labels []int, err error) {
	var da *mesh.DataArray
	if da, err = task.CellArray(p.LabelArray); err != nil {
		return
	}
	if labels, err = da.Ints(); err != nil {
		return nil, errors.Wrap(types.ErrConfiguration, err.Error())
	}
	if len(labels) != task.NumCells() {
		return nil, errors.Wrapf(types.ErrConfiguration,
			"label array %q has %d values for %d cells", da.Name, len(labels), task.NumCells())
	}
	return labels[task.PolyOffset():], nil
}

// ResolveLayout derives the ring counts of every branch from the task mesh labels
func ResolveLayout(p *InputParameters.Profile, task *mesh.PolyData) (lay *topology.Layout, err error) {
	var (
		labels []int
		check  topology.RingCheck
	)
	if check, err = p.RingCheckMode(); err != nil {
		return nil, types.NewStageError(types.StageResolve, types.NoLabel, err)
	}
	if labels, err = Labels(p, task); err != nil {
		return nil, types.NewStageError(types.StageResolve, types.NoLabel, err)
	}
	if lay, err = topology.Resolve(labels, p.QuadsPerRing, check); err != nil {
		return nil, types.NewStageError(types.StageResolve, types.NoLabel, err)
	}
	klog.Infof("labels found in task mesh: %v, rings per label: %s", lay.Labels(), lay)
	return
}

// BranchReport counts what was written for one branch
type BranchReport struct {
	Label                 int
	Name                  string
	TaskCells, TaskPoints int
	ECCells, ECPoints     int
	SMCCells, SMCPoints   int
}

// Report is the outcome of a topology run
type Report struct {
	Layout   *topology.Layout
	Branches []BranchReport
}

// PrepareOutput creates the sink directories
func PrepareOutput(p *InputParameters.Profile) (err error) {
	for _, dir := range p.OutputDirs() {
		if err = os.MkdirAll(dir, 0755); err != nil {
			return types.IOError(err, "creating %s", dir)
		}
	}
	return
}

// Run reorders every level of every branch and writes the mesh, table and summary sinks.
// The first error aborts the run.
func Run(p *InputParameters.Profile, m *Meshes) (rep *Report, err error) {
	if err = p.Validate(); err != nil {
		return
	}
	rep = &Report{}
	if rep.Layout, err = ResolveLayout(p, m.Task); err != nil {
		return nil, err
	}
	if err = PrepareOutput(p); err != nil {
		return nil, err
	}
	for _, label := range rep.Layout.Labels() {
		var (
			br = BranchReport{Label: label}
			bs InputParameters.BranchSinks
		)
		if bs, err = p.Sinks(label); err != nil {
			return nil, types.NewStageError(types.StageResolve, label, err)
		}
		br.Name = bs.Name
		if br.TaskCells, br.TaskPoints, err = taskBranch(p, rep.Layout, m.Task, bs); err != nil {
			return nil, types.NewStageError(types.StageTask, label, err)
		}
		if br.ECCells, br.ECPoints, err = fineBranch(p, rep.Layout, m.EC, label, p.ECGrid,
			bs.ECVTK, bs.ECTable, &bs); err != nil {
			return nil, types.NewStageError(types.StageEC, label, err)
		}
		if br.SMCCells, br.SMCPoints, err = fineBranch(p, rep.Layout, m.SMC, label, p.SMCGrid,
			bs.SMCVTK, bs.SMCTable, nil); err != nil {
			return nil, types.NewStageError(types.StageSMC, label, err)
		}
		rep.Branches = append(rep.Branches, br)
	}
	root := rep.Layout.Labels()[0]
	if err = sinks.WriteSummary(p.SummaryPath(), sinks.Summary{
		QuadsPerRing: p.QuadsPerRing,
		Rings:        rep.Layout.Rings[root],
		SMCRows:      p.SMCGrid.Rows,
		SMCCols:      p.SMCGrid.Cols,
		ECRows:       p.ECGrid.Rows,
		ECCols:       p.ECGrid.Cols,
	}); err != nil {
		return nil, types.NewStageError(types.StageSummary, types.NoLabel, err)
	}
	klog.Infof("wrote %s", p.SummaryPath())
	klog.V(1).Infof("memory: %s", utils.GetMemUsage())
	return
}

// taskBranch cuts the branch out of the task mesh and writes it in canonical ring order
func taskBranch(p *InputParameters.Profile, lay *topology.Layout, task *mesh.PolyData,
	bs InputParameters.BranchSinks) (nCells, nPoints int, err error) {
	var (
		label  = bs.Label
		first  = lay.FirstCell(label)
		rings  = lay.Rings[label]
		branch *mesh.PolyData
		ids    utils.Index
		b      *assembly.Branch
	)
	if branch, err = task.ExtractPolys(utils.NewRange(first, first+lay.BranchCells(label)-1)); err != nil {
		return
	}
	klog.Infof("there are %d cells for label %d", len(branch.Polys), label)
	params := ordering.Coarse(rings, p.QuadsPerRing)
	if err = params.Validate(len(branch.Polys)); err != nil {
		return
	}
	if ids, err = ordering.CanonicalIds(params); err != nil {
		return
	}
	if b, err = assembly.Assemble(branch, ids, rings, p.QuadsPerRing); err != nil {
		return
	}
	if err = writers.WriteMeshFile(bs.TaskVTK, b.Mesh); err != nil {
		return
	}
	if err = bs.TaskTable.Write(b.Mesh.Polys, b.PointCoords()); err != nil {
		return
	}
	return b.NumCells(), len(b.Points), nil
}

// fineBranch reorders one branch of an element grid mesh. When centroids is set the
// cell centroids of the reordered mesh are written as well.
func fineBranch(p *InputParameters.Profile, lay *topology.Layout, fine *mesh.PolyData, label int,
	grid InputParameters.Grid, vtkPath string, table sinks.TableSink,
	centroids *InputParameters.BranchSinks) (nCells, nPoints int, err error) {
	var (
		offset int
		ids    utils.Index
		b      *assembly.Branch
		params = ordering.Fine(lay.Rings[label], p.QuadsPerRing, grid.Rows, grid.Cols)
	)
	if offset, err = lay.CellOffset(label, grid.Cells()); err != nil {
		return
	}
	klog.V(1).Infof("cell offset of label %d: %d", label, offset)
	// the branch block [offset, offset+BranchCells) must lie inside the mesh
	if err = params.Validate(len(fine.Polys) - offset); err != nil {
		return
	}
	if ids, err = ordering.CanonicalIds(params); err != nil {
		return
	}
	if err = ids.CheckBounds(params.BranchCells()); err != nil {
		return 0, 0, errors.Wrapf(types.ErrIndexOutOfRange, "label %d: %v", label, err)
	}
	if b, err = assembly.Assemble(fine, ids.AddInPlace(offset), grid.Rows, grid.Cols); err != nil {
		return
	}
	klog.Infof("there are %d cells for label %d", b.NumCells(), label)
	if err = writers.WriteMeshFile(vtkPath, b.Mesh); err != nil {
		return
	}
	if err = table.Write(b.Mesh.Polys, b.PointCoords()); err != nil {
		return
	}
	if centroids != nil {
		cent := b.Centroids()
		if err = writers.WriteMeshFile(centroids.ECCentroidVTK, cent); err != nil {
			return
		}
		if err = centroids.ECCentroidTable.Write(cent.Verts, cent.Points); err != nil {
			return
		}
	}
	return b.NumCells(), len(b.Points), nil
}
