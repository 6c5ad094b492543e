package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mailsmith/mailsmith/internal/cli"
	"github.com/mailsmith/mailsmith/internal/config"
	apperrors "github.com/mailsmith/mailsmith/internal/errors"
	"github.com/mailsmith/mailsmith/internal/i18n"
	"github.com/mailsmith/mailsmith/internal/service"
	"github.com/mailsmith/mailsmith/internal/storage"
)

var version = "0.1.0"

func printHelp() {
	fmt.Printf(`mailsmith - Email template authoring engine

USAGE:
    mailsmith [OPTIONS] <COMMAND> [ARGS]

OPTIONS:
    --help       Show this help information
    --version    Print version information
    --init       Initialize a new template library
    --dir        Template library directory (default: ~/.mailsmith,
                 or the MAILSMITH_DIR environment variable)
    --verbose    Verbose error output

COMMANDS:
    create, new <name>    Create a new template
    list, ls              List all templates
    search <query>        Search templates
    get, show <id>        Show a specific template
    delete, rm <id>       Delete a template
    export <id>           Export a template to HTML and/or JSON
    validate <id>         Validate a template's structure
    check, compat <id>    Report email-client compatibility
    variables, vars <id>  List a template's data variables
    help [command]        Show command help

EXAMPLES:
    mailsmith create "Welcome email" --category onboarding
    mailsmith export 4f6f1c2a --email-safe --output welcome.html
    mailsmith check 4f6f1c2a

Library data is stored as one JSON file per template under the library
directory. Set MAILSMITH_DIR or pass --dir to use a different location.
`)
}

func main() {
	var (
		helpFlag    = flag.Bool("help", false, "Show help information")
		versionFlag = flag.Bool("version", false, "Print version information")
		initFlag    = flag.Bool("init", false, "Initialize a new template library")
		dirFlag     = flag.String("dir", "", "Template library directory")
		verboseFlag = flag.Bool("verbose", false, "Verbose error output")
	)
	flag.Usage = printHelp
	flag.Parse()

	if *helpFlag {
		printHelp()
		return
	}
	if *versionFlag {
		fmt.Printf("mailsmith %s\n", version)
		return
	}

	handler := apperrors.NewCLIErrorHandler(*verboseFlag)

	libraryDir, err := config.LibraryDir(*dirFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve library directory: %v\n", err)
		os.Exit(1)
	}

	if *initFlag {
		cfg := config.DefaultConfig()
		cfg.LibraryPath = libraryDir
		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to initialize library: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Initialized template library at %s\n", libraryDir)
		return
	}

	cfg, err := config.Load(libraryDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.NewFileStore(cfg.LibraryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open template library: %v\n", err)
		os.Exit(1)
	}

	svc := service.NewService(store, service.Options{
		HistoryLimit: cfg.HistoryLimit,
		EmitNodeIDs:  cfg.EmitNodeIDs,
	})

	c := cli.NewCLI(svc, i18n.NewMapTranslator(nil))
	c.SetTargetClients(cfg.TargetClients)
	if err := c.ExecuteCommand(flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, handler.FormatError(err))
		os.Exit(1)
	}
}
