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

	"github.com/notargets/vesselmap/centreline"
)

// CentrelineCmd represents the centreline command
var CentrelineCmd = &cobra.Command{
	Use:   "centreline",
	Short: "Generate a synthetic centreline tree as legacy VTK polylines",
	Long: `
Builds a centreline from a nested list: the first item of every list is the segment
length, or a (length, angle) pair with the angle in degrees clockwise from +y,
followed by the optional left and right daughters.

vesselmap centreline --tree "[1.7, [(1.7, 60), None, None], [(1.7, 120), None, None]]" -f centreline.vtk`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			cfg = centreline.DefaultConfig()
			cl  *centreline.Centreline
		)
		if fn, _ := cmd.Flags().GetString("centrelineConfig"); fn != "" {
			if cfg, err = centreline.ReadConfig(fn); err != nil {
				return
			}
		}
		flags := cmd.Flags()
		if flags.Changed("tree") {
			cfg.Tree, _ = flags.GetString("tree")
		}
		if flags.Changed("step") {
			cfg.Step, _ = flags.GetFloat64("step")
		}
		if flags.Changed("sphereRadius") {
			cfg.SphereRadius, _ = flags.GetFloat64("sphereRadius")
		}
		if flags.Changed("radius") {
			cfg.RadiusBase, _ = flags.GetFloat64("radius")
		}
		if flags.Changed("constant") {
			constant, _ := flags.GetBool("constant")
			cfg.Taper = !constant
		}
		fn, _ := flags.GetString("file")
		if cl, err = centreline.Generate(cfg, fn); err != nil {
			return
		}
		cl.Print(cmd.OutOrStdout())
		return
	},
}

func init() {
	rootCmd.AddCommand(CentrelineCmd)
	def := centreline.DefaultConfig()
	CentrelineCmd.Flags().String("centrelineConfig", "", "YAML file with tree, step, branchAngle, sphereRadius, radiusBase, taper, decreaseLength")
	CentrelineCmd.Flags().String("tree", def.Tree, "nested list description of the tree")
	CentrelineCmd.Flags().Float64("step", def.Step, "distance between centreline points")
	CentrelineCmd.Flags().Float64("sphereRadius", 0, "wrap the tree onto a sphere of this radius, 0 keeps it planar")
	CentrelineCmd.Flags().Float64("radius", def.RadiusBase, "trunk radius")
	CentrelineCmd.Flags().Bool("constant", false, "keep the trunk radius everywhere instead of tapering by Murray's law")
	CentrelineCmd.Flags().StringP("file", "f", "centreline.vtk", "output file, .vtk or .vtp")
}
