package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/tcl-runtime/binding"
	"github.com/wippyai/tcl-runtime/config"
	"github.com/wippyai/tcl-runtime/interp"
)

// MoveCommand is the two-number callback command every shell interpreter carries.
const MoveCommand = "moveToLoc"

func init() {
	// Tcl interpreters are bound to the thread that created them.
	runtime.LockOSThread()
}

func main() {
	var (
		configFile  = flag.String("config", "", "Path to YAML configuration")
		envFile     = flag.String("env", ".env", "Path to .env file (ignored when missing)")
		dir         = flag.String("dir", "", "Resource directory (library is read from <dir>/ThirdParty)")
		lib         = flag.String("lib", "", "Library file name (default depends on backend)")
		backend     = flag.String("backend", "", "Backend: native or wasm")
		id          = flag.Uint("id", 0, "Interpreter id stored in "+interp.IDVar)
		script      = flag.String("e", "", "Script to evaluate")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Debug logging")
	)
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tclsh [flags] [script.tcl ...]")
		fmt.Fprintln(os.Stderr, "       tclsh -e 'set x 1'")
		fmt.Fprintln(os.Stderr, "       tclsh -i  (interactive mode)")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := loadConfig(*configFile, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dir":
			cfg.ResourceDir = *dir
		case "lib":
			cfg.Library = *lib
		case "backend":
			cfg.Backend = *backend
		case "id":
			cfg.ID = uint32(*id) //nolint:gosec // interpreter ids are 32-bit
		}
	})
	if *verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log, err := cfg.Logger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	binding.SetLogger(log)
	interp.SetLogger(log)

	b := binding.Default()
	if err := b.Configure(cfg.BindingOptions(log)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sh := &shell{out: os.Stdout}
	ip, err := setup(b, cfg, sh)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer ip.Close()

	if err := run(ip, sh, *script, flag.Args(), *interactive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		ip.Close()
		os.Exit(1)
	}
}

func loadConfig(configFile, envFile string) (config.Config, error) {
	if err := config.LoadEnv(envFile); err != nil {
		return config.Config{}, err
	}
	if configFile == "" {
		return config.Default(), nil
	}
	return config.Load(configFile)
}

// setup allocates the interpreter on b and applies globals, the move
// command and startup scripts.
func setup(b *binding.Binding, cfg config.Config, sh *shell) (*interp.Interp, error) {
	ip := interp.BootstrapWith(b, cfg.ID)
	if !ip.Alive() {
		if err := ip.BootstrapErr(); err != nil {
			return nil, err
		}
		return nil, interp.BootstrapFail.Err()
	}

	for name, value := range cfg.Globals {
		if st := ip.SetVar(name, "", ip.NewString(value), interp.GlobalOnly|interp.LeaveErrMsg); st != interp.OK {
			ip.Close()
			return nil, fmt.Errorf("set %s: %w", name, ip.Err(st))
		}
	}

	if st := ip.BindHost(MoveCommand, sh); st != interp.OK {
		ip.Close()
		return nil, fmt.Errorf("register %s: %w", MoveCommand, st.Err())
	}

	for _, path := range cfg.Startup {
		if st := ip.EvalFile(path); !completed(st) {
			err := ip.Err(st)
			ip.Close()
			return nil, fmt.Errorf("startup %s: %w", path, err)
		}
	}

	interp.Logger().Debug("tcl shell ready",
		zap.String("library", b.Path()),
		zap.Uint32("id", cfg.ID))
	return ip, nil
}

func run(ip *interp.Interp, sh *shell, script string, files []string, interactive bool) error {
	if script != "" {
		out, err := evalString(ip, script)
		if err != nil {
			return err
		}
		if out != "" {
			fmt.Println(out)
		}
	}

	for _, path := range files {
		if st := ip.EvalFile(path); !completed(st) {
			return fmt.Errorf("%s: %w", path, ip.Err(st))
		}
	}

	if interactive || (script == "" && len(files) == 0 && term.IsTerminal(int(os.Stdin.Fd()))) {
		return runInteractive(ip, sh)
	}
	if script != "" || len(files) > 0 {
		return nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	if st := ip.Eval(string(data)); !completed(st) {
		return ip.Err(st)
	}
	return nil
}

// evalString evaluates script and returns the interpreter result.
func evalString(ip *interp.Interp, script string) (string, error) {
	st := ip.Eval(script)
	if !completed(st) {
		return "", ip.Err(st)
	}
	res, rst := ip.Result()
	if rst != interp.OK {
		return "", nil
	}
	s, sst := ip.String(res)
	if sst != interp.OK {
		// Without Tcl_GetStringFromObj the result cannot be read back.
		return "", nil
	}
	return strings.TrimRight(s, "\n"), nil
}

// completed reports whether st ends a top-level evaluation normally.
func completed(st interp.Status) bool {
	return st == interp.OK || st == interp.Return
}

// shell hosts the delegates behind MoveCommand.
type shell struct {
	out io.Writer
}

func (s *shell) Hello(x, y float64) {
	fmt.Fprintf(s.out, "hello: moving to (%g, %g)\n", x, y)
}

func (s *shell) Hello2(x, y float64) {
	fmt.Fprintf(s.out, "hello2: arrived at (%g, %g)\n", x, y)
}
