package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/matjam/slidepaper/internal/cli/cmd/utils"
	"github.com/matjam/slidepaper/internal/config"
	"github.com/matjam/slidepaper/internal/engine"
	"github.com/matjam/slidepaper/internal/ipc"
	"github.com/sevlyar/go-daemon"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewStartCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "start <window-id>",
		Short: "Start the slideshow in the given window",
		Long: `Starts rendering the slideshow into the window with the given id,
for example "slidepaper start 0x4a0000b". The window id is typically the
root window proxy created by your compositor or xwinwrap.`,
		Args: cobra.ExactArgs(1),
		Run: func(c *cobra.Command, args []string) {
			background, _ := c.Flags().GetBool("background")
			startManager(args[0], background)
		},
	}
	c.Flags().BoolP("background", "b", false, "Run as a daemon")

	c.Flags().String("duration", "", "Seconds each image is displayed")
	viper.BindPFlag("duration", c.Flags().Lookup("duration"))
	c.Flags().String("fade", "", "Crossfade length in seconds, 0 for a hard cut")
	viper.BindPFlag("fade", c.Flags().Lookup("fade"))
	c.Flags().Int("backlog", 3, "Number of images preloaded ahead of the current one")
	viper.BindPFlag("backlog", c.Flags().Lookup("backlog"))
	c.Flags().String("grid", "1x1", "Tile the output into RxC independent cells")
	viper.BindPFlag("grid", c.Flags().Lookup("grid"))
	c.Flags().String("mode", "fade", "Rendering mode: fade or scroll")
	viper.BindPFlag("mode", c.Flags().Lookup("mode"))
	c.Flags().String("window-geometry", "", "Explicit output rect WxH+X+Y")
	viper.BindPFlag("window_geometry", c.Flags().Lookup("window-geometry"))

	return c
}

func startManager(windowArg string, background bool) {
	if background && os.Getenv("SLIDEPAPER_BACKGROUND") != "1" {
		daemonize(windowArg)
		return
	}

	if os.Getenv("SLIDEPAPER_BACKGROUND") == "1" {
		setupRotatingLogger()
	}

	log.Infof("starting in PID %d", os.Getpid())

	if _, err := ipc.SendStatus(); err == nil {
		log.Info("slidepaper is already running, exiting")
		os.Exit(0)
	}

	cfg, err := config.Load(windowArg)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	cfg.Wallpapers = utils.CanonicalPath(cfg.Wallpapers)

	manager, err := engine.NewManager(cfg)
	if err != nil {
		log.Fatalf("Unable to start: %v", err)
	}

	go func() {
		log.Info("starting socket server")
		ipc.Start(manager)
	}()

	if err := manager.Run(); err != nil {
		os.Remove(ipc.SocketPath())
		log.Fatalf("Engine failed: %v", err)
	}

	os.Remove(ipc.SocketPath())
	log.Info("slidepaper exited")
}

func daemonize(windowArg string) {
	home := os.Getenv("HOME")
	logDir := filepath.Join(home, ".local", "share", "slidepaper")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		log.Fatalf("Unable to create log directory: %v", err)
	}

	cntxt := &daemon.Context{
		PidFileName: filepath.Join(logDir, "slidepaper.pid"),
		PidFilePerm: 0o644,
		WorkDir:     "/",
		Env:         append(os.Environ(), "SLIDEPAPER_BACKGROUND=1"),
	}

	child, err := cntxt.Reborn()
	if err != nil {
		log.Fatalf("Unable to daemonize: %v", err)
	}
	if child != nil {
		log.Infof("slidepaper started in background, PID %d", child.Pid)
		return
	}
	defer cntxt.Release()

	startManager(windowArg, false)
}

func setupRotatingLogger() {
	home := os.Getenv("HOME")
	logDir := filepath.Join(home, ".local", "share", "slidepaper")
	logPath := filepath.Join(logDir, "slidepaper.log")

	writer, err := rotatelogs.New(
		logPath+".%Y%m%d%H%M",
		rotatelogs.WithLinkName(logPath),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationSize(10*1024*1024),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		log.Fatalf("failed to configure log rotation: %v", err)
	}

	log.SetOutput(writer)
	log.SetLevel(log.InfoLevel)
}
