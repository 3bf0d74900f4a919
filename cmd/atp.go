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
	"github.com/spf13/cobra"

	"github.com/notargets/vesselmap/InputParameters"
	"github.com/notargets/vesselmap/mesh"
	"github.com/notargets/vesselmap/mesh/readers"
	"github.com/notargets/vesselmap/pipeline"
	"github.com/notargets/vesselmap/topology"
	"github.com/notargets/vesselmap/types"
)

// ATPCmd represents the atp command
var ATPCmd = &cobra.Command{
	Use:   "atp",
	Short: "Reorder the ATP field of every branch into HDF5 files",
	Long: `
Resolves the branch layout from the task mesh, reads the initial ATP cell field of the
profile's field mesh and writes files/<branch>_atp.h5, folding the decimated quads
and rings back in when ScaleCirc or ScaleAxial exceed one.

vesselmap atp --profile c216 --verify`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			p    *InputParameters.Profile
			task *mesh.PolyData
			lay  *topology.Layout
		)
		if p, err = loadProfile(); err != nil {
			return
		}
		if task, err = readers.ReadMeshFile(p.TaskMesh); err != nil {
			return types.NewStageError(types.StageResolve, types.NoLabel, err)
		}
		if lay, err = pipeline.ResolveLayout(p, task); err != nil {
			return
		}
		verify, _ := cmd.Flags().GetBool("verify")
		return runFields(p, lay, verify)
	},
}

func init() {
	rootCmd.AddCommand(ATPCmd)
	ATPCmd.Flags().Bool("verify", false, "check every field reordering against a sparse selection product")
}

func runFields(p *InputParameters.Profile, lay *topology.Layout, verify bool) (err error) {
	var vals []float64
	if vals, err = pipeline.LoadField(p); err != nil {
		return
	}
	_, err = pipeline.RunFields(p, lay, vals, verify)
	return
}
