package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bshell-sh/bshell/internal/config"
	"github.com/bshell-sh/bshell/internal/core"
	"github.com/bshell-sh/bshell/internal/executor"
	"github.com/bshell-sh/bshell/internal/shell"
	"github.com/bshell-sh/bshell/internal/trace"
	"github.com/chzyer/readline"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var BUILD_VERSION = "dev"

var command = flag.String("c", "", "run a single command line and exit")

var helpFlag = flag.Bool("h", false, "display help information")
var versionFlag = flag.Bool("ver", false, "display build version")

const helpText = `bshell - a line-oriented command shell

USAGE:
  bshell                  Start an interactive shell
  bshell -c "a ; b & c"   Run one command line and exit
  bshell < script         Run command lines from standard input

Commands on a line are separated by ";" (wait for the command to finish
before the next one starts) or "&" (let it run concurrently). A line
consisting of the single word "exit" ends the session.

OPTIONS:
`

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Println(BUILD_VERSION)
		return
	}

	if *helpFlag {
		fmt.Print(helpText)
		flag.PrintDefaults()
		return
	}

	// Load configuration first; the logger's level comes from it.
	cfg := loadConfig()

	logger, err := initializeLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // Flush any buffered log entries

	logger.Info("-------- new bshell session --------", zap.Any("args", os.Args))

	recorder, closeRecorder := initializeRecorder(cfg, logger)
	defer closeRecorder()

	if err := run(cfg, logger, recorder); err != nil {
		logger.Error("unhandled error", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger, recorder executor.Recorder) error {
	runtime := executor.NewLocalRuntime(logger)
	synchronizer := executor.NewSynchronizer(
		runtime,
		cfg.Join.Policy,
		time.Duration(cfg.Join.RetryIntervalMS)*time.Millisecond,
		logger,
	)
	dispatcher := executor.NewDispatcher(executor.DispatcherOptions{
		Runtime:      runtime,
		Synchronizer: synchronizer,
		Recorder:     recorder,
		Logger:       logger,
	})

	// bshell -c "echo hello ; echo world"
	if *command != "" {
		sh := shell.New(shell.Options{
			Dispatcher: dispatcher,
			Config:     cfg,
			Logger:     logger,
		})
		sh.RunLine(*command)
		return nil
	}

	reader, closeReader, err := initializeReader(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize input: %w", err)
	}
	defer closeReader()

	sh := shell.New(shell.Options{
		Reader:     reader,
		Dispatcher: dispatcher,
		Config:     cfg,
		Logger:     logger,
	})
	return sh.Run()
}

func loadConfig() *config.Config {
	loader := config.NewLoader(nil)
	result, err := loader.LoadFromFile(core.ConfigFile())
	if err != nil {
		fmt.Fprintf(os.Stderr, "bshell: %v\n", err)
		return config.DefaultConfig()
	}
	for _, err := range result.Errors {
		fmt.Fprintf(os.Stderr, "bshell: %v\n", err)
	}
	return result.Config
}

func initializeLogger(cfg *config.Config) (*zap.Logger, error) {
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = zap.NewAtomicLevelAt(cfg.ZapLevel())
	loggerConfig.OutputPaths = []string{
		core.LogFile(),
	}

	// Logs go to file only so they never interleave with command output.
	return loggerConfig.Build()
}

func initializeRecorder(cfg *config.Config, logger *zap.Logger) (executor.Recorder, func()) {
	if !cfg.Trace.Enabled {
		return nil, func() {}
	}

	path := cfg.Trace.Path
	if path == "" {
		path = core.TraceFile()
	}

	traceManager, err := trace.NewTraceManager(path)
	if err != nil {
		// The shell works fine without the trace store.
		logger.Warn("failed to open trace store", zap.Error(err))
		return nil, func() {}
	}

	return traceManager, func() {
		if err := traceManager.Close(); err != nil {
			logger.Warn("failed to close trace store", zap.Error(err))
		}
	}
}

func initializeReader(cfg *config.Config) (shell.LineReader, func(), error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return shell.NewScannerReader(os.Stdin), func() {}, nil
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          fmt.Sprintf(cfg.Prompt, 1),
		InterruptPrompt: "^C",
	})
	if err != nil {
		return nil, nil, err
	}
	return rl, func() { rl.Close() }, nil
}
