package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gleb-gusev/bvg-board/config"
	"github.com/gleb-gusev/bvg-board/dlog"
	"github.com/gleb-gusev/bvg-board/metrics"
	"github.com/gleb-gusev/bvg-board/model"
	"github.com/gleb-gusev/bvg-board/render"
	"github.com/gleb-gusev/bvg-board/repository"
	"github.com/gleb-gusev/bvg-board/scheduler"
	vbb_client "github.com/gleb-gusev/bvg-board/vbb-client"
	"github.com/gomodule/redigo/redis"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"
)

const boardMirrorKey = "board:departures"

type SnapshotterInterface interface {
	Snapshot() scheduler.Snapshot
}

// BoardDisplay serves the diagnostics endpoints for a running display
type BoardDisplay struct {
	Logger    *dlog.Logger
	Scheduler SnapshotterInterface
}

func main() {
	loggerOptions := []dlog.LoggerOption{
		dlog.LoggerSetOutput(os.Stderr),
		dlog.LoggerSetPrefix("board-display: "),
		dlog.LoggerSetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Llongfile),
	}

	logger := dlog.NewLogger(loggerOptions...)

	logger.Debug("main")

	configPath, exists := os.LookupEnv("BOARD_DISPLAY_CONFIG")
	if !exists {
		configPath = ""
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal(err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		logger.Fatal(err)
	}

	settings, err := cfg.Resolve()
	if err != nil {
		logger.Fatal(errors.Wrap(err, "invalid configuration"))
	}

	logger.Printf("station %s, refreshing every %s, rotating every %s",
		settings.StationID, settings.RefreshInterval, settings.RotationInterval)

	vbbClient := &vbb_client.VBBClient{
		Client: &http.Client{
			Timeout: settings.FetchTimeout,
		},
		Logger:             logger,
		BaseURL:            settings.VBBBaseURL,
		StationID:          settings.StationID,
		ExcludeDestination: settings.ExcludeDestination,
		PreviewInterval:    settings.PreviewInterval,
	}

	renderer := render.NewConsoleRenderer(logger, render.ConsoleRendererOutput(os.Stdout))

	schedulerOptions := []scheduler.SchedulerOption{
		scheduler.SchedulerRefreshInterval(settings.RefreshInterval),
		scheduler.SchedulerRotationInterval(settings.RotationInterval),
		scheduler.SchedulerDisplayCap(settings.DisplayCap),
	}

	if settings.RedisHost != "" {
		redisHost := settings.RedisHost
		pool := repository.NewRedisPool(repository.RedisPoolDial(func() (redis.Conn, error) {
			return redis.Dial("tcp", redisHost)
		}))
		defer func() {
			if err := pool.Close(); err != nil {
				logger.Printf("cannot close Redis pool: %s", err.Error())
			}
		}()

		mirror := &repository.BoardMirror{
			Key:    boardMirrorKey,
			Logger: logger,
			Pool:   pool,
		}
		schedulerOptions = append(schedulerOptions, scheduler.SchedulerBoardListener(mirror))
		logger.Printf("mirroring the board to Redis at %s", redisHost)
	}

	sched := scheduler.NewScheduler(
		logger,
		&instrumentedSource{source: vbbClient},
		&instrumentedSink{sink: renderer},
		schedulerOptions...,
	)

	if settings.Listen != "" {
		bd := BoardDisplay{
			Logger:    logger,
			Scheduler: sched,
		}

		handler := cors.Default().Handler(bd.Router())

		go func() {
			logger.Printf("diagnostics listening on %s", settings.Listen)
			if err := http.ListenAndServe(settings.Listen, handler); err != nil {
				logger.Fatal(err)
			}
		}()
	}

	done := make(chan struct{})

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		logger.Printf("received %s; shutting down", sig)
		close(done)
	}()

	sched.Run(done)
}

func (bd *BoardDisplay) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/departures", bd.DeparturesHandler).Methods(http.MethodGet)
	r.HandleFunc("/healthz", bd.HealthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	return r
}

// DeparturesHandler returns the current board and rotation state
func (bd *BoardDisplay) DeparturesHandler(w http.ResponseWriter, r *http.Request) {
	bd.Logger.Debug("DeparturesHandler")

	snapshot := bd.Scheduler.Snapshot()

	body, err := json.Marshal(snapshot)
	if err != nil {
		bd.Logger.Printf("cannot marshal snapshot: %s", err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(body); err != nil {
		bd.Logger.Printf("cannot write response: %s", err.Error())
	}
}

func (bd *BoardDisplay) HealthHandler(w http.ResponseWriter, r *http.Request) {
	bd.Logger.Debug("HealthHandler")

	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		bd.Logger.Printf("cannot write response: %s", err.Error())
	}
}

// instrumentedSource counts fetches and records their duration
type instrumentedSource struct {
	source scheduler.DepartureSourceInterface
}

func (is *instrumentedSource) Departures() ([]model.Departure, error) {
	start := time.Now()
	departures, err := is.source.Departures()
	metrics.ObserveFetch(time.Since(start), err == nil)
	if err == nil {
		metrics.SetBoardSize(len(departures))
	}
	return departures, err
}

// instrumentedSink counts rendered rotations
type instrumentedSink struct {
	sink scheduler.RenderSinkInterface
}

func (is *instrumentedSink) Render(departure model.Departure) {
	metrics.CountRotation()
	is.sink.Render(departure)
}
