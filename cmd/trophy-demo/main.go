package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/lixenwraith/trophy/achievement"
	"github.com/lixenwraith/trophy/audio"
	"github.com/lixenwraith/trophy/badge"
	"github.com/lixenwraith/trophy/config"
	"github.com/lixenwraith/trophy/core"
	"github.com/lixenwraith/trophy/event"
	"github.com/lixenwraith/trophy/logging"
	"github.com/lixenwraith/trophy/persistence"
	"github.com/lixenwraith/trophy/service"
	"github.com/lixenwraith/trophy/status"
)

var (
	storeFlag   = flag.String("store", "", "Record backend: json or sqlite (env TROPHY_STORE)")
	saveFlag    = flag.String("save", "", "JSON record path (env TROPHY_SAVE_PATH)")
	dbFlag      = flag.String("db", "", "SQLite database path (env TROPHY_DB_PATH)")
	catalogFlag = flag.String("catalog", "", "YAML achievement catalog (env TROPHY_CATALOG)")
	fpsFlag     = flag.Int("fps", 0, "Poll rate in frames per second (env TROPHY_FPS)")
	debugFlag   = flag.Bool("debug", false, "Write debug logs (env TROPHY_DEBUG)")
	mutedFlag   = flag.Bool("muted", false, "Start with sound muted (env TROPHY_MUTED)")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "trophy-demo: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.Setup(cfg.Debug, cfg.LogDir)
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, closer, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	metrics := status.NewRegistry()

	writer := persistence.NewWriter(store, logger.Named("persistence"), metrics)
	player := audio.NewPlayer(cfg.Volume, audio.WithPlayerLogger(logger.Named("audio")), audio.WithPlayerMetrics(metrics))

	hub := service.NewHub(logger)
	for _, svc := range []service.Service{writer, audio.NewService(player, logger.Named("audio"))} {
		if err := hub.Register(svc); err != nil {
			return err
		}
	}
	if err := hub.InitAll(cfg.Muted); err != nil {
		return err
	}
	if err := hub.StartAll(); err != nil {
		return err
	}
	defer hub.StopAll()

	reg := achievement.NewRegistry(store,
		achievement.WithSaver(writer),
		achievement.WithLogger(logger.Named("achievement")),
		achievement.WithMetrics(metrics),
	)
	if err := reg.Load(context.Background()); err != nil {
		return err
	}

	queue := event.NewQueue()
	d := newDemo(time.Now(), reg, queue, logger.Named("demo"))
	d.catalog = cfg.Catalog
	d.mute = player.ToggleMute
	if err := d.register(); err != nil {
		return err
	}

	poller := achievement.NewPoller(reg, event.NewPublisher(queue), achievement.WithPollerLogger(logger.Named("poller")))
	overlay := badge.NewOverlay(badge.WithOverlayLogger(logger.Named("badge")), badge.WithOverlayMetrics(metrics))

	router := event.NewRouter[event.Tick](queue, event.WithRouterMetrics(metrics))
	router.Register(d)
	router.Register(overlay)
	router.Register(player)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()
	core.SetCrashScreen(screen)
	defer core.SetCrashScreen(nil)

	// Input polling feeds the event queue; the frame loop is the only consumer
	core.Go(func() {
		for {
			switch ev := screen.PollEvent().(type) {
			case nil:
				return
			case *tcell.EventKey:
				event.EmitKey(queue, keyRune(ev), ev.Name(), poller.Frame())
			case *tcell.EventResize:
				d.resized.Store(true)
			}
		}
	})

	logger.Info("demo started",
		zap.String("store", cfg.Store),
		zap.Int("fps", cfg.FPS),
		zap.Strings("achieved", reg.Achieved()),
	)

	ticker := time.NewTicker(cfg.FrameInterval())
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		d.now = now

		poller.Poll()
		router.DispatchAll(event.Tick{Frame: poller.Frame(), Now: now})
		if d.quit {
			break
		}
		overlay.Update(now)

		if d.resized.Swap(false) {
			screen.Sync()
		}
		screen.Clear()
		d.draw(screen, metrics, player.IsMuted())
		overlay.Draw(screen, now)
		screen.Show()
	}

	logger.Info("demo stopped", zap.Int64("frames", poller.Frame()))
	return nil
}

// applyFlags overrides config with flags given on the command line
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "store":
			cfg.Store = *storeFlag
		case "save":
			cfg.SavePath = *saveFlag
		case "db":
			cfg.DBPath = *dbFlag
		case "catalog":
			cfg.Catalog = *catalogFlag
		case "fps":
			cfg.FPS = *fpsFlag
		case "debug":
			cfg.Debug = *debugFlag
		case "muted":
			cfg.Muted = *mutedFlag
		}
	})
}

// openStore selects the record backend; the closer releases database handles
func openStore(cfg config.Config) (persistence.Store, io.Closer, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		s, err := persistence.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.StoreJSON:
		return persistence.NewFileStore(cfg.SavePath), io.NopCloser(nil), nil
	default:
		return nil, nil, errors.New("unknown store " + cfg.Store)
	}
}

func keyRune(ev *tcell.EventKey) rune {
	if ev.Key() == tcell.KeyRune {
		return ev.Rune()
	}
	return 0
}
