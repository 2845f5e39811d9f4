package cli

import (
	"context"
	"io"
	"os"
	"path"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/owi-lab/go-metadatabase/internal/pkg/api"
	"github.com/owi-lab/go-metadatabase/internal/pkg/api/geometry"
	"github.com/owi-lab/go-metadatabase/internal/pkg/api/locations"
	"github.com/owi-lab/go-metadatabase/internal/pkg/client"
	"github.com/owi-lab/go-metadatabase/internal/pkg/env"
	"github.com/owi-lab/go-metadatabase/internal/pkg/log"
	"github.com/owi-lab/go-metadatabase/internal/pkg/version"
)

const description = `
OWI metadatabase CLI

Explore the owimetadatabase from your terminal:
list project sites and asset locations, inspect
materials and subassemblies, and assemble turbine
geometry into summary tables and CSV exports.

Credentials are read from the flags, the OWIDB_*
environment variables, or an .env file.
`

// clientFactory creates the HTTP client, tests swap it to mock transport.
type clientFactory func(ctx context.Context, config client.Config, logger log.Logger) (*client.Client, error)

type rootCommand struct {
	cmd           *cobra.Command
	envs          *env.Map        // ENVs from OS
	fs            afero.Fs        // filesystem for .env files and CSV exports
	options       *Options        // parsed flags and env variables
	ctx           context.Context
	clientFactory clientFactory
	api           *api.API        // Api should be used to initialize
	start         time.Time       // cmd start time
	initialized   bool            // init method was called
	logger        log.Logger      // log to console
}

// NewRootCommand creates parent of all sub-commands.
func NewRootCommand(stdin io.Reader, stdout io.Writer, stderr io.Writer, envs *env.Map, fs afero.Fs) *rootCommand {
	root := &rootCommand{
		envs:          envs,
		fs:            fs,
		options:       &Options{},
		ctx:           context.Background(),
		clientFactory: client.New,
		start:         time.Now(),
	}

	// Command definition
	root.cmd = &cobra.Command{
		Use:          path.Base(os.Args[0]), // name of the binary
		Version:      version.Version(),
		Short:        description,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Print help if no command specified
			return root.cmd.Help()
		},
	}

	// Setup in/out
	root.cmd.SetIn(stdin)
	root.cmd.SetOut(stdout)
	root.cmd.SetErr(stderr)
	root.cmd.SetVersionTemplate("{{.Version}}")

	// Persistent flags for all sub-commands
	flags := root.cmd.PersistentFlags()
	flags.SortFlags = true
	flags.BoolP("help", "h", false, "print help for command")
	flags.String("api-root", client.DefaultAPIRoot, "root URL of the metadatabase API")
	flags.StringP("token", "t", "", "API token, used instead of username and password")
	flags.StringP("username", "u", "", "API username for basic authentication")
	flags.StringP("password", "p", "", "API password for basic authentication")
	flags.BoolP("verbose", "v", false, "print details")

	// Root command flags
	root.cmd.Flags().SortFlags = true
	root.cmd.Flags().BoolP("version", "V", false, "print version")

	// Init when flags are parsed
	root.cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return root.init(cmd)
	}

	// Sub-commands
	root.cmd.AddCommand(
		projectSitesCommand(root),
		assetsCommand(root),
		materialsCommand(root),
		subAssembliesCommand(root),
		processCommand(root),
	)

	return root
}

// Execute command or sub-command.
func (root *rootCommand) Execute() (exitCode int) {
	if err := root.cmd.Execute(); err != nil {
		// Error is already printed by cobra
		return 1
	}
	return 0
}

func (root *rootCommand) GetCommandByName(name string) *cobra.Command {
	for _, cmd := range root.cmd.Commands() {
		if cmd.Name() == name {
			return cmd
		}
	}

	return nil
}

// Api returns the base API and initializes it first time.
func (root *rootCommand) Api() (*api.API, error) {
	if root.api == nil {
		c, err := root.clientFactory(root.ctx, root.options.ClientConfig(), root.logger)
		if err != nil {
			return nil, err
		}
		root.api = api.New(c, root.logger)
	}
	return root.api, nil
}

func (root *rootCommand) LocationsApi() (*locations.API, error) {
	base, err := root.Api()
	if err != nil {
		return nil, err
	}
	return locations.NewAPI(base), nil
}

func (root *rootCommand) GeometryApi() (*geometry.API, error) {
	base, err := root.Api()
	if err != nil {
		return nil, err
	}
	return geometry.NewAPI(base), nil
}

// init sets logger and options after flags are parsed.
func (root *rootCommand) init(cmd *cobra.Command) error {
	if root.initialized {
		return nil
	}

	// Run only once
	root.initialized = true

	// Temporary logger, the real one needs the parsed verbose flag
	tmpLogger := log.NewNopLogger()

	// ENVs from .env files, OS values take precedence
	root.envs = env.LoadDotEnv(tmpLogger, root.envs, root.fs, []string{"."})

	// Load values from flags and envs
	root.options.Load(root.envs, cmd.Flags())

	// Setup logger, cobra output goes through it from now on
	root.logger = log.NewCliLogger(root.cmd.OutOrStdout(), root.cmd.ErrOrStderr(), root.options.Verbose)
	root.cmd.SetOut(root.logger.InfoWriter())
	root.cmd.SetErr(root.logger.WarnWriter())
	root.logDebugInfo()
	return nil
}

func (root *rootCommand) logDebugInfo() {
	w := root.logger.DebugWriter()
	w.WriteString(root.cmd.Version)
	w.Writef("Running command %v", os.Args)
	w.WriteString(root.options.Dump())
}
