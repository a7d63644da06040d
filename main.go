package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"hush/audio"
	"hush/clipboard"
	"hush/hotkey"
	"hush/i18n"
	"hush/log"
	"hush/overlay"
	"hush/pipeline"
	"hush/shutdown"
	"hush/tray"
)

var version = "dev"

var machine *overlay.Machine
var guiMode bool
var meter *localMeter

var lastTextMu sync.Mutex
var lastText string
var transcriptCount int

var trayVisible bool // touched only from the machine's update callback

var shutdownOnce sync.Once

func gracefulShutdown() {
	shutdownOnce.Do(func() {
		lastTextMu.Lock()
		n := transcriptCount
		lastTextMu.Unlock()
		if n > 0 {
			log.SessionEnd(n)
		}
		if machine != nil {
			machine.Stop()
		}
		if meter != nil {
			meter.close()
		}
		log.Close()
		tray.Quit()
		tuiMu.Lock()
		p := tuiProgram
		tuiMu.Unlock()
		if p != nil {
			p.Quit()
		}
		os.Exit(0)
	})
}

// initCrashLog points the runtime's crash output at the default log directory
// before anything else runs; run() re-points it once -logpath is known.
func initCrashLog() {
	dir, err := log.ResolveDir("")
	if err != nil {
		return
	}
	log.SetDir(dir)
	if log.EnsureDir() != nil {
		return
	}
	openCrashLog()
}

func openCrashLog() {
	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}
}

func defaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "hush.sock")
	}
	return filepath.Join(os.TempDir(), "hush.sock")
}

// localMeter feeds microphone levels into the event bus while the overlay is
// visibly recording, for pipelines that do not emit mic-level themselves.
type localMeter struct {
	ctx     audio.Context
	capture audio.CaptureDevice

	mu      sync.Mutex
	running bool
}

func newLocalMeter(deviceName string, ev *pipeline.Events) (*localMeter, error) {
	ctx, err := audio.NewContext()
	if err != nil {
		return nil, err
	}
	var dev *audio.DeviceInfo
	if deviceName != "" {
		devices, err := ctx.Devices()
		if err == nil {
			for i := range devices {
				if devices[i].Name == deviceName {
					dev = &devices[i]
					break
				}
			}
		}
		if dev == nil {
			log.Warnf("device not found, using default: %s", deviceName)
		}
	}
	capture, err := ctx.NewCapture(dev, audio.CaptureConfig{
		SampleRate: audio.SampleRate,
		Channels:   audio.Channels,
	})
	if err != nil {
		ctx.Close()
		return nil, err
	}
	capture.SetCallback(audio.NewMeter(ev.MicLevel).Process)
	return &localMeter{ctx: ctx, capture: capture}, nil
}

func (lm *localMeter) apply(active bool) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if active == lm.running {
		return
	}
	if active {
		if err := lm.capture.Start(); err != nil {
			log.Errorf("capture start error: %v", err)
			return
		}
		log.Info("recording_device: " + lm.capture.DeviceName())
	} else {
		lm.capture.Stop()
	}
	lm.running = active
}

func (lm *localMeter) close() {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.capture.Close()
	lm.ctx.Close()
}

// onSnapshot runs on the machine goroutine after every applied event and fans
// the new snapshot out to whichever surfaces are attached.
func onSnapshot(snap overlay.Snapshot) {
	mirrored := i18n.CurrentDirection() == i18n.RTL

	if snap.State == overlay.Done && snap.Text != "" {
		lastTextMu.Lock()
		if snap.Text != lastText {
			lastText = snap.Text
			transcriptCount++
		}
		lastTextMu.Unlock()
	}

	if meter != nil {
		meter.apply(snap.Visible && snap.State == overlay.Recording)
	}

	if snap.Visible != trayVisible {
		trayVisible = snap.Visible
		tray.SetVisible(snap.Visible)
	}

	tuiSend(SnapshotMsg{Snap: snap, Mirrored: mirrored})
	guiApply(snap, mirrored)
}

func run() {
	socketFlag := flag.String("socket", defaultSocketPath(), "Unix socket path for pipeline events")
	deviceFlag := flag.String("device", "", "Use named microphone device for local metering")
	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	meterFlag := flag.Bool("meter", false, "Meter the microphone locally when the pipeline sends no mic-level events")
	langFlag := flag.String("lang", "en", "Dictation language code (e.g., en, ar, he)")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	tuiFlag := flag.Bool("tui", true, "Run with terminal UI")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	demoFlag := flag.Bool("demo", false, "Drive the overlay with scripted sessions instead of the pipeline socket")
	testFlag := flag.Bool("test", false, "Test mode (headless, stdin-driven)")
	crashFlag := flag.Bool("crash", false, "Trigger synthetic panic for testing crash logging")
	flag.Bool("gui", false, "Run with the graphical overlay window (requires a -tags gui build)")
	flag.Parse()

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}
	openCrashLog()

	if *crashFlag {
		panic("TEST CRASH: synthetic panic to verify crash logging")
	}

	if *versionFlag {
		fmt.Printf("hush %s\n", version)
		os.Exit(0)
	}

	i18n.Set(*langFlag)

	ui := "headless"
	switch {
	case guiMode:
		ui = "gui"
	case *tuiFlag:
		ui = "tui"
	}
	source := "socket"
	if *demoFlag || *testFlag {
		source = "script"
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	} else {
		log.SessionStart(ui, source)
	}

	events := pipeline.NewEvents()

	if *testFlag {
		machine = overlay.New(clipboard.System{}, &pipeline.FakeBackend{},
			overlay.WithLanguageSync(i18n.Sync),
		)
		machine.Start()
		events.Subscribe(machine)
		runTestMode(events, machine)
		return
	}

	// Resolve -setup into -device early, before any UI owns the terminal
	if *setupFlag && *deviceFlag == "" {
		ctx, err := audio.NewContext()
		if err != nil {
			fmt.Printf("Error initializing audio: %v\n", err)
			os.Exit(1)
		}
		if dev, err := audio.SelectDevice(ctx); err != nil {
			fmt.Printf("Warning: device selection failed: %v\n", err)
		} else if dev != nil {
			*deviceFlag = dev.Name
		}
		ctx.Close()
	}

	if *meterFlag {
		meter, err = newLocalMeter(*deviceFlag, events)
		if err != nil {
			log.Errorf("audio init error: %v", err)
			fmt.Printf("Error initializing audio: %v\n", err)
			os.Exit(1)
		}
	}

	var backend overlay.Backend
	if *demoFlag {
		backend = &pipeline.FakeBackend{}
	} else {
		bridge, err := pipeline.ListenBridge(*socketFlag, events)
		if err != nil {
			log.Errorf("pipeline socket error: %v", err)
			fmt.Printf("Error listening on pipeline socket: %v\n", err)
			os.Exit(1)
		}
		defer bridge.Close()
		backend = bridge
	}

	machine = overlay.New(clipboard.System{}, backend,
		overlay.WithLanguageSync(i18n.Sync),
		overlay.WithUpdateFunc(onSnapshot),
	)
	machine.Start()
	defer machine.Stop()
	events.Subscribe(machine)

	// Start TUI
	if !*tuiFlag || guiMode {
		tuiReadyOnce.Do(func() { close(tuiReady) })
	} else {
		tuiMu.Lock()
		tuiProgram = NewTUIProgram()
		tuiMu.Unlock()

		go func() {
			if _, err := tuiProgram.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
				os.Exit(1)
			}
			gracefulShutdown()
		}()

		<-tuiReady
	}

	tray.OnCopyLast(func() {
		lastTextMu.Lock()
		text := lastText
		lastTextMu.Unlock()
		if text == "" {
			return
		}
		if err := clipboard.Copy(text); err != nil {
			log.Errorf("clipboard write failed: %v", err)
		}
	})
	tray.OnShowHide(
		func() { machine.ShowOverlay(machine.Snapshot().State.String()) },
		func() { machine.HideOverlay() },
	)
	tray.SetLanguage(*langFlag, func(code string) {
		log.Info("language_switch: " + code)
		i18n.Set(code)
	})
	// The per-show sync re-reads the tray selection, so a language switched
	// mid-session is current before the next show renders.
	i18n.SetProvider(tray.CurrentLanguage)
	trayQuit := tray.Init()

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	go func() {
		select {
		case <-sigChan:
		case <-trayQuit:
		}
		gracefulShutdown()
	}()

	if *demoFlag {
		go func() {
			for {
				pipeline.ScriptedSession(events, 60*time.Millisecond)
				time.Sleep(4 * time.Second)
				events.Hide()
				time.Sleep(2 * time.Second)
			}
		}()
	}

	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		log.Errorf("hotkey register error: %v", err)
		fmt.Printf("Error registering hotkey: %v\n", err)
		os.Exit(1)
	}
	defer hk.Unregister()

	tuiSend(SourceLineMsg{Text: sourceLineText(source, *socketFlag)})
	tuiSend(DeviceLineMsg{Text: deviceLineText(*deviceFlag, *meterFlag)})

	// The cancel shortcut only acts on a visible overlay; while hidden it
	// must not reach into the pipeline.
	for range hk.Keydown() {
		if machine.Snapshot().Visible {
			log.Info("hotkey_cancel")
			machine.Close()
		}
	}
}

func sourceLineText(source, socket string) string {
	if source == "script" {
		return "events: scripted demo"
	}
	return "events: " + socket
}

func deviceLineText(device string, metering bool) string {
	if !metering {
		return "mic: pipeline levels"
	}
	name := "system default"
	suffix := ""
	if device != "" {
		name = device
		if audio.IsBluetooth(device) {
			suffix = " (BT!)"
		}
	}
	return "mic: " + name + suffix
}
