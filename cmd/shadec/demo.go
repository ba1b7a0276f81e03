package main

import (
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	null "gopkg.in/guregu/null.v3"

	"github.com/gogpu/shade/diag"
	"github.com/gogpu/shade/request"
)

// demoCmd compiles the built-in demo program.
type demoCmd struct {
	root *rootCommand

	targets     []string
	entry       string
	stage       string
	outDir      string
	glslVersion int
	debugChecks bool
}

func (c *demoCmd) run(cmd *cobra.Command, _ []string) error {
	manifest, modules := sampleProgram()

	req := request.New(manifest, modules)
	req.Logger = c.root.logger

	opts := request.Options{
		Targets:   c.targets,
		OutputDir: null.StringFrom(c.outDir),
		Verbose:   null.BoolFrom(c.root.verbose),
	}
	if c.entry != "" {
		opts.EntryPoint = null.StringFrom(c.entry)
	}
	if c.stage != "" {
		opts.Stage = null.StringFrom(c.stage)
	}
	if cmd.Flags().Changed("glsl-version") {
		opts.GLSLVersion = null.IntFrom(int64(c.glslVersion))
	}
	if c.debugChecks {
		opts.DebugChecks = null.BoolFrom(true)
	}
	req.Options = req.Options.Apply(opts)
	if req.Options.Verbose.ValueOrZero() {
		c.root.logger.SetLevel(logrus.DebugLevel)
	}

	artifacts, err := req.Run()
	diag.Display(req.Sink)
	if err != nil {
		return err
	}

	dir := req.Options.OutputDir.ValueOrZero()
	if err := request.WriteArtifacts(c.root.fs, dir, artifacts); err != nil {
		return err
	}
	for _, a := range artifacts {
		c.root.logger.WithFields(logrus.Fields{
			"target": a.Target.Name(),
			"file":   filepath.Join(dir, a.FileName()),
		}).Info("artifact written")
	}
	return nil
}

func getDemoCmd(root *rootCommand) *cobra.Command {
	demoCmd := &demoCmd{root: root}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Compile the built-in demo program",
		Long: `Compile the built-in demo program.

The demo links a small color-grading library against a user module and
renders its entry points for every requested target. The library
declares a target-overloaded tone mapper and a generic gain helper, so
the output differs per target.`,
		RunE: demoCmd.run,
	}

	cmd.Flags().StringSliceVarP(&demoCmd.targets, "target", "t", nil,
		"targets to compile for (default: the manifest's list)")
	cmd.Flags().StringVar(&demoCmd.entry, "entry", "",
		"compile only this entry point (a linkage name)")
	cmd.Flags().StringVar(&demoCmd.stage, "stage", "",
		"pipeline stage for --entry (vertex, fragment, compute)")
	cmd.Flags().StringVarP(&demoCmd.outDir, "out", "o", "shaders",
		"directory to write artifacts into")
	cmd.Flags().IntVar(&demoCmd.glslVersion, "glsl-version", 450,
		"GLSL #version directive")
	cmd.Flags().BoolVar(&demoCmd.debugChecks, "debug-checks", false,
		"enable the linker's consistency scans")

	return cmd
}
