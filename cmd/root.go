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
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/pkg/profile"
	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/vesselmap/InputParameters"
	"github.com/notargets/vesselmap/types"
)

var (
	cfgFile  string
	profiler interface{ Stop() }
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vesselmap",
	Short: "Branch aware reordering of bifurcating vessel meshes",
	Long: `
Reorders the task, EC and SMC quad meshes of a bifurcating vessel branch by branch
into the ring/quad/row/column order the coupled cell solver expects, and writes
per branch meshes, point/cell tables, the run summary and the ATP fields.

vesselmap reorder --profile c216 --fields`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		switch viper.GetString("pprof") {
		case "":
		case "cpu":
			profiler = profile.Start(profile.CPUProfile, profile.ProfilePath(viper.GetString("pprofDir")), profile.NoShutdownHook)
		case "mem":
			profiler = profile.Start(profile.MemProfile, profile.ProfilePath(viper.GetString("pprofDir")), profile.NoShutdownHook)
		default:
			err = errors.Wrapf(types.ErrConfiguration, "unknown pprof mode %q, expected cpu or mem", viper.GetString("pprof"))
		}
		return
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if profiler != nil {
			profiler.Stop()
			profiler = nil
		}
		klog.Flush()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		klog.Flush()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	fset := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})
	rootCmd.PersistentFlags().AddGoFlagSet(fset)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.vesselmap.yaml)")
	rootCmd.PersistentFlags().StringP("profile", "p", "c216", "mesh profile: c216, c512, c4032, c4080, c8064 or one from --profiles")
	rootCmd.PersistentFlags().String("profiles", "", "YAML file of profiles overriding or extending the built in ones")
	rootCmd.PersistentFlags().String("inputDir", "", "directory holding the input meshes named by the profile")
	rootCmd.PersistentFlags().StringP("outputDir", "o", "", "directory receiving vtk/, txt/ and files/ (default from the profile)")
	rootCmd.PersistentFlags().Bool("print", false, "print the resolved profile before running")
	rootCmd.PersistentFlags().String("pprof", "", "write a cpu or mem profile")
	rootCmd.PersistentFlags().String("pprofDir", ".", "directory for the pprof output")
	for _, name := range []string{"profile", "profiles", "inputDir", "outputDir", "print", "pprof", "pprofDir"} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".vesselmap")
	}
	viper.SetEnvPrefix("vesselmap")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		klog.Infof("using config file: %s", viper.ConfigFileUsed())
	}
}

// loadProfiles returns the built in profiles overlaid with the --profiles file
func loadProfiles() (ps InputParameters.Profiles, err error) {
	ps = InputParameters.DefaultProfiles()
	if fn := viper.GetString("profiles"); fn != "" {
		var data []byte
		if data, err = os.ReadFile(fn); err != nil {
			return nil, types.IOError(err, "reading %s", fn)
		}
		if err = ps.Parse(data); err != nil {
			return nil, err
		}
	}
	return
}

// loadProfile resolves the selected profile, applies the directory overrides and
// validates the result
func loadProfile() (p *InputParameters.Profile, err error) {
	var ps InputParameters.Profiles
	if ps, err = loadProfiles(); err != nil {
		return
	}
	if p, err = ps.Lookup(viper.GetString("profile")); err != nil {
		return
	}
	if dir := viper.GetString("inputDir"); dir != "" {
		for _, fn := range []*string{&p.TaskMesh, &p.ECMesh, &p.SMCMesh, &p.FieldMesh} {
			if !filepath.IsAbs(*fn) {
				*fn = filepath.Join(dir, *fn)
			}
		}
	}
	if dir := viper.GetString("outputDir"); dir != "" {
		p.OutputDir = dir
	}
	if err = p.Validate(); err != nil {
		return nil, err
	}
	return
}
