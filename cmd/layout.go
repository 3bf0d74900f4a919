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
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/notargets/vesselmap/InputParameters"
	"github.com/notargets/vesselmap/mesh"
	"github.com/notargets/vesselmap/mesh/readers"
	"github.com/notargets/vesselmap/pipeline"
	"github.com/notargets/vesselmap/topology"
	"github.com/notargets/vesselmap/types"
)

// LayoutCmd represents the layout command
var LayoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the rings and cell offsets of every branch of a task mesh",
	Long: `
Reads the task mesh of the profile, or the mesh given as argument, and prints the
ring count, first task cell and the EC/SMC cell offsets of every branch label.

vesselmap layout --profile c216 [quadMeshFullc216.vtp]`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			p    *InputParameters.Profile
			task *mesh.PolyData
			lay  *topology.Layout
		)
		if p, err = loadProfile(); err != nil {
			return
		}
		if len(args) == 1 {
			p.TaskMesh = args[0]
		}
		if task, err = readers.ReadMeshFile(p.TaskMesh); err != nil {
			return types.NewStageError(types.StageResolve, types.NoLabel, err)
		}
		task.PrintStatistics(cmd.OutOrStdout())
		if lay, err = pipeline.ResolveLayout(p, task); err != nil {
			return
		}
		return printLayout(cmd.OutOrStdout(), p, lay)
	},
}

func init() {
	rootCmd.AddCommand(LayoutCmd)
}

func printLayout(w io.Writer, p *InputParameters.Profile, lay *topology.Layout) (err error) {
	fmt.Fprintf(w, "%-6s %-16s %6s %10s %10s %10s\n", "label", "branch", "rings", "first", "ec offset", "smc offset")
	for _, label := range lay.Labels() {
		name, ok := p.Branches[label]
		if !ok {
			name = "-"
		}
		ec, smc := "-", "-"
		if lay.Uniform() {
			var off int
			if off, err = lay.CellOffset(label, p.ECGrid.Cells()); err != nil {
				return
			}
			ec = fmt.Sprint(off)
			if off, err = lay.CellOffset(label, p.SMCGrid.Cells()); err != nil {
				return
			}
			smc = fmt.Sprint(off)
		}
		fmt.Fprintf(w, "%-6d %-16s %6d %10d %10s %10s\n", label, name, lay.Rings[label], lay.FirstCell(label), ec, smc)
	}
	return
}

// ProfilesCmd represents the profiles command
var ProfilesCmd = &cobra.Command{
	Use:   "profiles [name]",
	Short: "List the available mesh profiles, or print one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			ps InputParameters.Profiles
			p  *InputParameters.Profile
		)
		if ps, err = loadProfiles(); err != nil {
			return
		}
		if len(args) == 0 {
			for _, name := range ps.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return
		}
		if p, err = ps.Lookup(args[0]); err != nil {
			return
		}
		p.Print(cmd.OutOrStdout())
		return
	},
}

func init() {
	rootCmd.AddCommand(ProfilesCmd)
}
