package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/gleb-gusev/bvg-board/config"
	"github.com/gleb-gusev/bvg-board/dlog"
	vbb_client "github.com/gleb-gusev/bvg-board/vbb-client"
	"github.com/pkg/errors"
)

// BoardProbe fetches the departure board once and prints it. Useful for
// checking station ids and line filters without starting a display.
type BoardProbe struct {
	Logger *dlog.Logger
	Source vbb_client.VBBClientInterface
	Out    io.Writer
}

func main() {
	loggerOptions := []dlog.LoggerOption{
		dlog.LoggerSetOutput(os.Stderr),
		dlog.LoggerSetPrefix("board-probe: "),
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

	bp := BoardProbe{
		Logger: logger,
		Source: &vbb_client.VBBClient{
			Client: &http.Client{
				Timeout: settings.FetchTimeout,
			},
			Logger:             logger,
			BaseURL:            settings.VBBBaseURL,
			StationID:          settings.StationID,
			ExcludeDestination: settings.ExcludeDestination,
			PreviewInterval:    settings.PreviewInterval,
		},
		Out: os.Stdout,
	}

	if err := bp.Probe(); err != nil {
		logger.Fatal(err)
	}
}

// Probe fetches the board once and writes one departure per line
func (bp *BoardProbe) Probe() error {
	departures, err := bp.Source.Departures()
	if err != nil {
		return errors.Wrap(err, "cannot fetch departures")
	}

	if len(departures) == 0 {
		if _, err := fmt.Fprintln(bp.Out, "no upcoming departures"); err != nil {
			return errors.Wrap(err, "cannot write departures")
		}
		return nil
	}

	for _, departure := range departures {
		if _, err := fmt.Fprintln(bp.Out, departure.Format()); err != nil {
			return errors.Wrap(err, "cannot write departures")
		}
	}

	return nil
}
