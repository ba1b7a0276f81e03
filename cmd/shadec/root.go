package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gogpu/shade"
	"github.com/gogpu/shade/ir"
)

// rootCommand carries the state every subcommand shares: the logger,
// the output filesystem and the base cobra command.
type rootCommand struct {
	cmd     *cobra.Command
	logger  *logrus.Logger
	fs      afero.Fs
	verbose bool
}

func newRootCommand() *rootCommand {
	c := &rootCommand{
		logger: logrus.New(),
		fs:     afero.NewOsFs(),
	}
	c.logger.SetOutput(os.Stderr)

	c.cmd = &cobra.Command{
		Use:           "shadec",
		Short:         "link and compile shader programs",
		Long:          "shadec links shader modules, specializes generics, and renders entry points as HLSL, GLSL or C.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.verbose {
				c.logger.SetLevel(logrus.DebugLevel)
			}
		},
	}
	c.cmd.PersistentFlags().AddFlagSet(c.persistentFlagSet())

	c.cmd.AddCommand(getDemoCmd(c))
	c.cmd.AddCommand(getTargetsCmd())
	c.cmd.AddCommand(getVersionCmd())
	return c
}

// persistentFlagSet builds the flags every subcommand inherits.
func (c *rootCommand) persistentFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	return flags
}

func (c *rootCommand) execute() {
	if err := c.cmd.Execute(); err != nil {
		c.logger.Error(err)
		os.Exit(1)
	}
}

// getTargetsCmd lists the supported output targets.
func getTargetsCmd() *cobra.Command {
	descriptions := []struct {
		target ir.Target
		about  string
	}{
		{ir.TargetHLSL, "HLSL for Direct3D"},
		{ir.TargetGLSL, "GLSL for OpenGL and Vulkan toolchains"},
		{ir.TargetC, "portable C for CPU execution"},
		{ir.TargetCPP, "C++ hosts (rendered as C)"},
	}

	return &cobra.Command{
		Use:   "targets",
		Short: "List supported output targets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, d := range descriptions {
				fmt.Fprintf(cmd.OutOrStdout(), "%-6s %s\n", d.target.Name(), d.about)
			}
			return nil
		},
	}
}

// getVersionCmd shows the compiler version.
func getVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show application version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "shadec v%s\n", shade.Version)
			return err
		},
	}
}
