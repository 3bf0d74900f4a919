/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"os"
	"path/filepath"

	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"

	"github.com/notargets/vesselmap/InputParameters"
	"github.com/notargets/vesselmap/mesh"
	"github.com/notargets/vesselmap/mesh/synth"
	"github.com/notargets/vesselmap/mesh/writers"
	"github.com/notargets/vesselmap/types"
)

// SynthCmd represents the synth command
var SynthCmd = &cobra.Command{
	Use:   "synth",
	Short: "Generate synthetic task, EC, SMC and ATP meshes for a profile",
	Long: `
Builds a labelled bifurcation of straight cylinders with the quads per ring and the
EC/SMC grids of the profile, in the native cell order the reorder command expects,
and writes the meshes to the paths the profile names.

vesselmap synth --profile c216 --inputDir meshes --rings 6`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			p   *InputParameters.Profile
			cfg = synth.DefaultConfig()
			pd  *mesh.PolyData
		)
		if p, err = loadProfile(); err != nil {
			return
		}
		cfg.QuadsPerRing = p.QuadsPerRing
		cfg.Branches, _ = cmd.Flags().GetInt("branches")
		cfg.Rings, _ = cmd.Flags().GetInt("rings")
		cfg.Radius, _ = cmd.Flags().GetFloat64("radius")
		cfg.RingLength, _ = cmd.Flags().GetFloat64("ringLength")
		cfg.BranchAngle, _ = cmd.Flags().GetFloat64("angle")
		if err = cfg.Validate(); err != nil {
			return
		}
		if p.LabelArray != "" && p.LabelArray != synth.LabelArray {
			klog.Warningf("profile label array %q differs from the generated %q", p.LabelArray, synth.LabelArray)
		}
		for _, out := range []struct {
			path  string
			build func() (*mesh.PolyData, error)
		}{
			{p.TaskMesh, func() (*mesh.PolyData, error) { return synth.TaskMesh(cfg) }},
			{p.ECMesh, func() (*mesh.PolyData, error) { return synth.FineMesh(cfg, p.ECGrid.Rows, p.ECGrid.Cols) }},
			{p.SMCMesh, func() (*mesh.PolyData, error) { return synth.FineMesh(cfg, p.SMCGrid.Rows, p.SMCGrid.Cols) }},
			{p.FieldMesh, func() (*mesh.PolyData, error) {
				return synth.FieldMesh(cfg, p.ECGrid.Rows, p.ECGrid.Cols, synth.ATPProfile)
			}},
		} {
			if pd, err = out.build(); err != nil {
				return
			}
			if err = os.MkdirAll(filepath.Dir(out.path), 0755); err != nil {
				return types.IOError(err, "creating %s", filepath.Dir(out.path))
			}
			if err = writers.WriteMeshFile(out.path, pd); err != nil {
				return
			}
			klog.Infof("wrote %s: %d points, %d cells", out.path, pd.NumPoints(), pd.NumCells())
		}
		return
	},
}

func init() {
	rootCmd.AddCommand(SynthCmd)
	def := synth.DefaultConfig()
	SynthCmd.Flags().Int("branches", def.Branches, "number of branch labels")
	SynthCmd.Flags().Int("rings", def.Rings, "rings per branch")
	SynthCmd.Flags().Float64("radius", def.Radius, "vessel radius")
	SynthCmd.Flags().Float64("ringLength", def.RingLength, "axial length of one ring")
	SynthCmd.Flags().Float64("angle", def.BranchAngle, "angle between the parent and each daughter, degrees")
}
