// Command clay is a terminal MUD client built on the clay scripting engine.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/phroun/clay"
	"golang.org/x/term"
)

var version = "dev" // set via -ldflags at build time

func showUsage() {
	fmt.Fprintf(os.Stderr, `Usage: clay [options] [script ...]

Scripts are loaded after the autoload list from the config file.

Options:
`)
	flag.PrintDefaults()
}

func main() {
	configFlag := flag.String("config", "", "Config file (default ~/.clay/clay.yaml)")
	debugFlag := flag.String("debug", "", "Comma-separated debug categories, or \"all\"")
	plainFlag := flag.Bool("plain", false, "Line-mode input with history instead of raw keys")
	worldFlag := flag.String("world", "", "Connect to this world at startup")
	execFlag := flag.String("e", "", "Run this line, print its output and exit")
	versionFlag := flag.Bool("version", false, "Show version")
	flag.Usage = showUsage
	flag.Parse()

	if *versionFlag {
		fmt.Printf("clay %s (engine %s)\n", version, clay.Version)
		os.Exit(0)
	}

	configPath := *configFlag
	if configPath == "" {
		if dir := configDir(); dir != "" {
			configPath = filepath.Join(dir, "clay.yaml")
		}
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		errorPrintf("Error: %v\n", err)
		os.Exit(1)
	}
	if *debugFlag != "" {
		cfg.Debug = strings.Split(*debugFlag, ",")
	}

	worlds := clay.NewWorldTable()
	for _, w := range cfg.Worlds {
		worlds.Put(clay.WorldInfo{
			Name: w.Name, Type: w.Type, Host: w.Host, Port: w.Port,
			Character: w.Character, SSL: w.SSL,
		})
	}
	stdoutFd := int(os.Stdout.Fd())
	if cols, rows, err := term.GetSize(stdoutFd); err == nil {
		worlds.SetTerminalSize(cols, rows)
	}

	a := newApp(cfg, worlds, os.Stdout)
	a.color = stdoutSupportsColor()
	a.termSize = func() (int, int, error) { return term.GetSize(stdoutFd) }
	a.engine = clay.New(&clay.Config{
		Debug:         len(cfg.Debug) > 0,
		LoopLimit:     cfg.LoopLimit,
		MaxMacroDepth: cfg.MaxMacroDepth,
		ScriptDir:     expandHome(cfg.ScriptDir),
		Host:          worlds,
		LogOut:        logWriter{a: a},
	})
	if unknown := a.engine.Logger().EnableCategoryNames(cfg.Debug); len(unknown) > 0 {
		errorPrintf("Warning: unknown debug categories: %s\n", strings.Join(unknown, ", "))
	}
	defer a.shutdown()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		a.events <- inputClosedEvent{}
	}()

	scripts := append(cfg.autoloadPaths(), flag.Args()...)
	for _, path := range scripts {
		if _, err := os.Stat(path); err != nil {
			a.engine.Logger().DebugCat(clay.CatApp, "skipping %s: %v", path, err)
			continue
		}
		a.handleResult(a.engine.LoadScript(path), worlds.CurrentWorld())
	}
	a.flush()

	if *execFlag != "" {
		a.submit(*execFlag)
		a.flush()
		return
	}

	if cfg.Watch && len(scripts) > 0 {
		sw, err := newScriptWatcher(scripts)
		if err != nil {
			errorPrintf("Warning: cannot watch scripts: %v\n", err)
		} else {
			defer sw.Close()
			go sw.run(a.events, func(format string, args ...interface{}) {
				errorPrintf(format+"\n", args...)
			})
		}
	}

	stop := make(chan struct{})
	defer close(stop)
	notifyResize(a.events, stop)

	if *worldFlag != "" {
		a.switchWorld(*worldFlag)
		a.flush()
	}

	if *plainFlag || !term.IsTerminal(int(os.Stdin.Fd())) {
		err = a.runPlain()
	} else {
		err = a.runRaw()
	}
	if err != nil {
		errorPrintf("Error: %v\n", err)
		os.Exit(1)
	}
}
