package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/benmeehan/fog-agent/internal/logging"
	"github.com/benmeehan/fog-agent/internal/utils"
	"github.com/benmeehan/fog-agent/pkg/file"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "configs/config.yaml"

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, args []string, version string, stdout, stderr io.Writer) int {
	root := NewRootCommand(version)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// NewRootCommand builds the complete command tree.
func NewRootCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "fogagent",
		Short:         "Track explored ground and reveal it on a fog-of-war map.",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.PersistentFlags().String("config", defaultConfigPath, "Path to the YAML configuration file.")

	root.AddCommand(newRunCommand())
	root.AddCommand(newRegionsCommand())
	root.AddCommand(newObserveCommand())
	return root
}

// environment is what every command needs before doing real work.
type environment struct {
	config     *utils.Config
	fileClient file.FileOperations
	logger     zerolog.Logger
}

func loadEnvironment(cmd *cobra.Command) (*environment, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	fileClient := file.NewFileService()
	config, err := utils.LoadConfig(path, fileClient)
	if err != nil {
		return nil, err
	}

	return &environment{
		config:     config,
		fileClient: fileClient,
		logger:     logging.New(cmd.ErrOrStderr(), config.Logging.Level, config.Logging.Pretty),
	}, nil
}
