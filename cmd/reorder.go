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

	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/vesselmap/InputParameters"
	"github.com/notargets/vesselmap/pipeline"
)

// ReorderCmd represents the reorder command
var ReorderCmd = &cobra.Command{
	Use:   "reorder",
	Short: "Reorder the task, EC and SMC meshes of every branch",
	Long: `
Reads the task, EC and SMC meshes of the profile, resolves the rings of every branch
from the task mesh labels and writes the per branch meshes, tables, EC centroids and
txt/configuration_info.txt. With --fields the ATP field is reordered as well.

vesselmap reorder --profile c216 --inputDir meshes -o out --fields`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			p   *InputParameters.Profile
			m   *pipeline.Meshes
			rep *pipeline.Report
		)
		if p, err = loadProfile(); err != nil {
			return
		}
		if viper.GetBool("print") {
			p.Print(os.Stdout)
		}
		if m, err = pipeline.LoadMeshes(p); err != nil {
			return
		}
		if rep, err = pipeline.Run(p, m); err != nil {
			return
		}
		for _, br := range rep.Branches {
			klog.Infof("%-16s task %d/%d, ec %d/%d, smc %d/%d cells/points",
				br.Name, br.TaskCells, br.TaskPoints, br.ECCells, br.ECPoints, br.SMCCells, br.SMCPoints)
		}
		if withFields, _ := cmd.Flags().GetBool("fields"); !withFields {
			return
		}
		verify, _ := cmd.Flags().GetBool("verify")
		return runFields(p, rep.Layout, verify)
	},
}

func init() {
	rootCmd.AddCommand(ReorderCmd)
	ReorderCmd.Flags().Bool("fields", false, "also reorder the ATP field of the profile")
	ReorderCmd.Flags().Bool("verify", false, "check every field reordering against a sparse selection product")
}
