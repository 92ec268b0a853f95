package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"vallet/audio"
	"vallet/beep"
	"vallet/clipboard"
	"vallet/config"
	"vallet/doctor"
	"vallet/hotkey"
	"vallet/log"
	"vallet/shutdown"
	"vallet/transcriber"
	"vallet/tray"
)

var version = "dev"

// wantsGUI reports whether -gui was passed, before flags are parsed.
func wantsGUI(args []string) bool {
	for _, arg := range args {
		if arg == "-gui" || arg == "--gui" {
			return true
		}
	}
	return false
}

func run() int {
	configFlag := flag.String("config", "", "config file (default: <user config dir>/vallet/config.yaml)")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	setupFlag := flag.Bool("setup", false, "Select microphone device and save it to the config file")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	headlessFlag := flag.Bool("headless", false, "Run without a terminal UI")
	guiFlag := flag.Bool("gui", false, "Run with the desktop window (requires -tags gui)")
	profileFlag := flag.String("profile", "", "Enable pprof profiling server (e.g., :6060 or localhost:6060)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("vallet %s\n", version)
		return 0
	}

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		return 1
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	if crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *profileFlag != "" {
		go func() {
			fmt.Fprintf(os.Stderr, "pprof server listening on http://%s/debug/pprof/\n", *profileFlag)
			if err := http.ListenAndServe(*profileFlag, nil); err != nil {
				fmt.Fprintf(os.Stderr, "pprof server error: %v\n", err)
			}
		}()
	}

	cfgPath := *configFlag
	if cfgPath == "" {
		if cfgPath, err = config.DefaultPath(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *deviceFlag != "" {
		cfg.Recording.Device = *deviceFlag
	}
	switch {
	case *guiFlag:
		cfg.UI.Host = "gui"
	case *headlessFlag:
		cfg.UI.Host = "headless"
	}
	if cfg.UI.Host == "gui" && guiNeedsFlag && !*guiFlag {
		fmt.Fprintln(os.Stderr, "Error: on this platform the gui host must be selected with -gui")
		return 1
	}

	if *doctorFlag {
		return doctor.Run(cfg)
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	if err := runApp(cfg, cfgPath, *setupFlag); err != nil {
		log.Errorf("fatal: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func runApp(cfg config.Config, cfgPath string, setup bool) error {
	actx, err := audio.NewContext()
	if err != nil {
		return fmt.Errorf("initializing audio: %w", err)
	}
	defer actx.Close()

	dev, err := pickDevice(actx, cfg.Recording.Device, setup)
	if err != nil {
		return err
	}
	if setup && dev != nil {
		cfg.Recording.Device = dev.Name
		if err := config.Save(cfgPath, cfg); err != nil {
			log.Warnf("saving device choice: %v", err)
		} else {
			fmt.Printf("Saved %q to %s\n", dev.Name, cfgPath)
		}
	}
	if dev != nil && audio.IsBluetooth(dev.Name) {
		log.Warnf("bluetooth microphone %q records at lower quality", dev.Name)
	}

	tr, err := transcriber.New(cfg.TranscriberConfig())
	if err != nil {
		return err
	}
	if w, ok := tr.(*transcriber.WhisperCLI); ok {
		if err := w.Check(); err != nil {
			log.Warnf("%v", err)
		}
	}
	if warm, ok := tr.(interface{ Warm() }); ok {
		go warm.Warm()
	}

	if cfg.Output.Sounds {
		go beep.Init()
	} else {
		beep.Disable()
	}

	paste := clipboard.Copy
	if cfg.Output.Paste {
		if err := clipboard.Init(); err != nil {
			log.Warnf("paste init failed, copying to clipboard only: %v", err)
		} else {
			paste = clipboard.PasteText
		}
	}

	ctx, cancel := shutdown.Context(context.Background())
	defer cancel()

	a := &app{
		cfg:       cfg,
		actx:      actx,
		device:    dev,
		tr:        tr,
		paste:     paste,
		newHotkey: hotkey.New,
		ctx:       ctx,
		cancel:    cancel,
	}

	if cfg.UI.Host == "gui" {
		return runGUI(a)
	}

	if cfg.UI.Tray {
		tray.Start(tray.Menu{Tooltip: "vallet", OnShow: a.show, OnRecord: a.toggle, OnQuit: a.quit})
		defer tray.Stop()
	}

	if cfg.UI.Host == "headless" {
		a.view = headlessView{}
		return a.serve(nil)
	}

	tv := newTUIView(a.actions(), fmt.Sprintf("%s launcher · %s voice", cfg.Hotkeys.Launcher, cfg.Hotkeys.Voice))
	a.view = tv
	return a.serve(func(ctx context.Context) error {
		go func() {
			<-ctx.Done()
			tv.p.Quit()
		}()
		_, err := tv.p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
}

func pickDevice(actx audio.Context, name string, setup bool) (*audio.DeviceInfo, error) {
	switch {
	case setup:
		return audio.SelectDevice(actx)
	case name != "":
		dev, err := audio.FindDevice(actx, name)
		if err != nil {
			log.Warnf("%v, using system default", err)
			return nil, nil
		}
		return dev, nil
	}
	return nil, nil
}
