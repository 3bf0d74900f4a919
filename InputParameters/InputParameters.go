package InputParameters

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"

	"github.com/notargets/vesselmap/sinks"
	"github.com/notargets/vesselmap/topology"
	"github.com/notargets/vesselmap/types"
)

// Grid is the element grid nested in one task quad
type Grid struct {
	Rows int `yaml:"Rows"`
	Cols int `yaml:"Cols"`
}

func (g Grid) Cells() int { return g.Rows * g.Cols }

// Profile holds every constant of one mesh size. It is read once and never mutated
// during a run.
type Profile struct {
	Name           string         `yaml:"Name"`
	QuadsPerRing   int            `yaml:"QuadsPerRing"`
	ECGrid         Grid           `yaml:"ECGrid"`  // Rows = ECs per col, Cols = ECs per row
	SMCGrid        Grid           `yaml:"SMCGrid"` // Rows = SMCs per col, Cols = SMCs per row
	ScaleCirc      int            `yaml:"ScaleCirc"`
	ScaleAxial     int            `yaml:"ScaleAxial"`
	FieldRingGroup int            `yaml:"FieldRingGroup"`
	RingCheck      string         `yaml:"RingCheck"` // warn or strict, warn only lets the task level through
	TaskMesh       string         `yaml:"TaskMesh"`
	ECMesh         string         `yaml:"ECMesh"`
	SMCMesh        string         `yaml:"SMCMesh"`
	FieldMesh      string         `yaml:"FieldMesh"`
	LabelArray     string         `yaml:"LabelArray"` // empty selects the active scalars
	FieldArray     string         `yaml:"FieldArray"`
	OutputDir      string         `yaml:"OutputDir"`
	Branches       map[int]string `yaml:"Branches"` // label -> branch name used in output paths
}

func defaultBranches() map[int]string {
	return map[int]string{0: "parent", 1: "left_daughter", 2: "right_daughter"}
}

func newProfile(name string, quadsPerRing int) *Profile {
	return &Profile{
		Name:           name,
		QuadsPerRing:   quadsPerRing,
		ECGrid:         Grid{Rows: 4, Cols: 20},
		SMCGrid:        Grid{Rows: 52, Cols: 4},
		ScaleCirc:      1,
		ScaleAxial:     1,
		FieldRingGroup: 2,
		RingCheck:      "warn",
		TaskMesh:       "quadMeshFull" + name + ".vtp",
		ECMesh:         "quadMeshFullEC" + name + ".vtp",
		SMCMesh:        "quadMeshFullSMC" + name + ".vtp",
		FieldMesh:      "quadMeshFullATP" + name + ".vtp",
		FieldArray:     "initialATP",
		OutputDir:      ".",
		Branches:       defaultBranches(),
	}
}

// Profiles maps a profile name to its constants
type Profiles map[string]*Profile

// DefaultProfiles returns the built in mesh sizes
func DefaultProfiles() Profiles {
	ps := Profiles{}
	for name, qpr := range map[string]int{
		"c216": 12, "c512": 20, "c4032": 48, "c4080": 40, "c8064": 64,
	} {
		ps[name] = newProfile(name, qpr)
	}
	return ps
}

// Parse overlays a YAML document of named profiles onto the receiver. Keys given for
// an existing profile override only those fields; new names start from the c216 layout.
func (ps Profiles) Parse(data []byte) (err error) {
	var (
		raw map[string]json.RawMessage
		js  []byte
	)
	if js, err = yaml.YAMLToJSON(data); err != nil {
		return errors.Wrapf(types.ErrConfiguration, "profiles: %v", err)
	}
	if err = json.Unmarshal(js, &raw); err != nil {
		return errors.Wrapf(types.ErrConfiguration, "profiles: %v", err)
	}
	for name, msg := range raw {
		p, ok := ps[name]
		if !ok {
			p = newProfile(name, 12)
		} else {
			cp := *p
			p = &cp
		}
		// a branch table replaces the default rather than merging into it
		p.Branches = nil
		if err = json.Unmarshal(msg, p); err != nil {
			return errors.Wrapf(types.ErrConfiguration, "profile %s: %v", name, err)
		}
		if p.Branches == nil {
			p.Branches = defaultBranches()
		}
		p.Name = name
		ps[name] = p
	}
	return
}

func (ps Profiles) Names() (names []string) {
	for name := range ps {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

func (ps Profiles) Lookup(name string) (p *Profile, err error) {
	var ok bool
	if p, ok = ps[name]; !ok {
		err = errors.Wrapf(types.ErrConfiguration, "unknown profile %q, have %v", name, ps.Names())
	}
	return
}

// Validate checks the profile before any mesh is read
func (p *Profile) Validate() (err error) {
	switch {
	case p.QuadsPerRing < 1:
		err = fmt.Errorf("QuadsPerRing must be positive, got %d", p.QuadsPerRing)
	case p.ECGrid.Rows < 1 || p.ECGrid.Cols < 1:
		err = fmt.Errorf("ECGrid must be at least 1x1, got %dx%d", p.ECGrid.Rows, p.ECGrid.Cols)
	case p.SMCGrid.Rows < 1 || p.SMCGrid.Cols < 1:
		err = fmt.Errorf("SMCGrid must be at least 1x1, got %dx%d", p.SMCGrid.Rows, p.SMCGrid.Cols)
	case p.ScaleCirc < 1 || p.ScaleAxial < 1:
		err = fmt.Errorf("scale factors must be at least 1, got ScaleCirc %d ScaleAxial %d", p.ScaleCirc, p.ScaleAxial)
	case p.ScaleCirc > p.QuadsPerRing:
		err = fmt.Errorf("ScaleCirc %d exceeds %d quads per ring", p.ScaleCirc, p.QuadsPerRing)
	case p.FieldRingGroup < 1:
		err = fmt.Errorf("FieldRingGroup must be positive, got %d", p.FieldRingGroup)
	case len(p.Branches) == 0:
		err = fmt.Errorf("no branch names given")
	}
	if err != nil {
		return errors.Wrapf(types.ErrConfiguration, "profile %s: %v", p.Name, err)
	}
	for label, name := range p.Branches {
		if name == "" {
			return errors.Wrapf(types.ErrConfiguration, "profile %s: branch label %d has no name", p.Name, label)
		}
	}
	_, err = p.RingCheckMode()
	return
}

func (p *Profile) RingCheckMode() (topology.RingCheck, error) {
	return topology.ParseRingCheck(p.RingCheck)
}

// GridAttrs are the dimensions stored with the root branch field, scaled by the decimation
func (p *Profile) GridAttrs() *sinks.GridAttrs {
	return &sinks.GridAttrs{
		SMCsPerRow: p.SMCGrid.Cols * p.ScaleCirc,
		SMCsPerCol: p.SMCGrid.Rows * p.ScaleAxial,
		ECsPerCol:  p.ECGrid.Rows * p.ScaleAxial,
		ECsPerRow:  p.ECGrid.Cols * p.ScaleCirc,
	}
}

// BranchSinks collects every output of one branch
type BranchSinks struct {
	Label int
	Name  string

	TaskVTK, ECVTK, SMCVTK, ECCentroidVTK         string
	TaskTable, ECTable, SMCTable, ECCentroidTable sinks.TableSink
	Field                                         sinks.HDF5Sink
}

// Sinks resolves the output paths of a branch label under OutputDir
func (p *Profile) Sinks(label int) (bs BranchSinks, err error) {
	name, ok := p.Branches[label]
	if !ok {
		err = errors.Wrapf(types.ErrConfiguration, "profile %s has no branch name for label %d", p.Name, label)
		return
	}
	var (
		vtk = func(f string) string { return filepath.Join(p.OutputDir, "vtk", f) }
		txt = func(stem string) sinks.TableSink {
			return sinks.TableSink{
				PointsPath: filepath.Join(p.OutputDir, "txt", stem+"_points.txt"),
				CellsPath:  filepath.Join(p.OutputDir, "txt", stem+"_cells.txt"),
			}
		}
	)
	bs = BranchSinks{
		Label:           label,
		Name:            name,
		TaskVTK:         vtk(name + ".vtp"),
		ECVTK:           vtk("ec_mesh_" + name + ".vtp"),
		SMCVTK:          vtk("smc_mesh_" + name + ".vtp"),
		ECCentroidVTK:   vtk("ec_centeroid_" + name + ".vtp"),
		TaskTable:       txt(name),
		ECTable:         txt(name + "_ec_mesh"),
		SMCTable:        txt(name + "_smc_mesh"),
		ECCentroidTable: txt(name + "_ec_centeroid"),
		Field: sinks.HDF5Sink{
			Path:    filepath.Join(p.OutputDir, "files", name+"_atp.h5"),
			Dataset: "atp",
		},
	}
	return
}

// SummaryPath is where the run summary is written
func (p *Profile) SummaryPath() string {
	return filepath.Join(p.OutputDir, "txt", "configuration_info.txt")
}

// OutputDirs lists the directories the sinks write into
func (p *Profile) OutputDirs() []string {
	return []string{
		filepath.Join(p.OutputDir, "vtk"),
		filepath.Join(p.OutputDir, "txt"),
		filepath.Join(p.OutputDir, "files"),
	}
}

func (p *Profile) Print(w io.Writer) {
	fmt.Fprintf(w, "\"%s\"\t\t= Profile\n", p.Name)
	fmt.Fprintf(w, "[%d]\t\t\t= Quads Per Ring\n", p.QuadsPerRing)
	fmt.Fprintf(w, "[%d x %d]\t\t= EC Grid (rows x cols)\n", p.ECGrid.Rows, p.ECGrid.Cols)
	fmt.Fprintf(w, "[%d x %d]\t\t= SMC Grid (rows x cols)\n", p.SMCGrid.Rows, p.SMCGrid.Cols)
	fmt.Fprintf(w, "[%d, %d]\t\t\t= Scale Circ, Axial\n", p.ScaleCirc, p.ScaleAxial)
	fmt.Fprintf(w, "[%d]\t\t\t= Field Ring Group\n", p.FieldRingGroup)
	fmt.Fprintf(w, "[%s]\t\t\t= Ring Check\n", p.RingCheck)
	fmt.Fprintf(w, "\"%s\"\t= Task Mesh\n", p.TaskMesh)
	fmt.Fprintf(w, "\"%s\"\t= EC Mesh\n", p.ECMesh)
	fmt.Fprintf(w, "\"%s\"\t= SMC Mesh\n", p.SMCMesh)
	fmt.Fprintf(w, "\"%s\"\t= Field Mesh\n", p.FieldMesh)
	fmt.Fprintf(w, "\"%s\"\t\t\t= Output Dir\n", p.OutputDir)
	labels := make([]int, 0, len(p.Branches))
	for l := range p.Branches {
		labels = append(labels, l)
	}
	sort.Ints(labels)
	for _, l := range labels {
		fmt.Fprintf(w, "Branches[%d] = %s\n", l, p.Branches[l])
	}
}
