// Command migrate applies and manages the SQL schema migrations.
//
//	migrate [-log-level info] [-dir migrations] <command> [args]
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/salescrm/backend/internal/infrastructure/config"
	"github.com/salescrm/backend/internal/infrastructure/logger"
	"github.com/salescrm/backend/internal/infrastructure/migration"
	"github.com/salescrm/backend/migrations"
	"go.uber.org/zap"
)

func main() {
	var (
		dir      string
		logLevel string
	)
	flag.StringVar(&dir, "dir", "", "Read migrations from this directory instead of the embedded set (required by create)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	var source fs.FS = migrations.FS
	if dir != "" {
		source = os.DirFS(dir)
	}

	// create and list only touch files
	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate -dir migrations create <name>")
		}
		if dir == "" {
			dir = "migrations"
		}
		f, paths, err := migration.Create(dir, args[1])
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created", zap.Uint("version", f.Version), zap.Strings("files", paths))
		return
	case "list":
		files, err := migration.List(source)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		for _, f := range files {
			down := ""
			if !f.HasDown {
				down = " (no down)"
			}
			fmt.Printf("%06d  %s%s\n", f.Version, f.Name, down)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	m, err := migration.Open(cfg.Database, source, log)
	if err != nil {
		log.Fatal("Failed to initialize migrator", zap.Error(err))
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	if err := run(m, command, args[1:]); err != nil {
		log.Fatal("Migration command failed", zap.String("command", command), zap.Error(err))
	}
}

func run(m *migration.Migrator, command string, args []string) error {
	switch command {
	case "up":
		if len(args) > 0 {
			n, err := positive(args[0])
			if err != nil {
				return err
			}
			return m.Steps(n)
		}
		return m.Up()
	case "down":
		if len(args) > 0 && args[0] == "all" {
			return m.Down()
		}
		n := 1
		if len(args) > 0 {
			var err error
			if n, err = positive(args[0]); err != nil {
				return err
			}
		}
		return m.Steps(-n)
	case "goto":
		if len(args) == 0 {
			return fmt.Errorf("version required: migrate goto <version>")
		}
		v, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return m.GoTo(uint(v))
	case "force":
		if len(args) == 0 {
			return fmt.Errorf("version required: migrate force <version>")
		}
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return m.Force(v)
	case "version", "status":
		st, err := m.Status()
		if err != nil {
			return err
		}
		fmt.Printf("version: %d\ndirty:   %t\npending: %d\n", st.Version, st.Dirty, st.Pending)
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func positive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("step count must be a positive integer, got %q", s)
	}
	return n, nil
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Usage: migrate [flags] <command> [args]

Commands:
  up [n]          Apply all pending migrations, or the next n
  down [n|all]    Roll back n migrations (default 1), or all of them
  goto <version>  Migrate up or down to a version
  force <version> Set the version without running migrations (clears dirty state)
  version         Show the current version, dirty flag and pending count
  list            List the available migrations
  create <name>   Create an empty up/down pair in -dir (default ./migrations)

Flags:
  -dir <path>        Migrations directory (default: embedded migrations)
  -log-level <lvl>   Log level (default: info)

Connection settings come from config.toml and CRM_DATABASE_* variables.
`)
}
