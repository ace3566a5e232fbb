package repository

import (
	"encoding/json"

	"github.com/gleb-gusev/bvg-board/dlog"
	"github.com/gleb-gusev/bvg-board/model"
	"github.com/gomodule/redigo/redis"
	"github.com/pkg/errors"
)

// BoardMirror keeps a Redis list in step with the display board so other
// consumers (a second display, a dashboard) can read the live board. The
// list is replaced wholesale after every successful refresh and is never
// read back at startup. Mirror failures are logged and absorbed; they must
// not disturb the display.
type BoardMirror struct {
	Key    string
	Logger *dlog.Logger
	Pool   *redis.Pool
}

// BoardUpdated implements the scheduler's board listener contract
func (bm *BoardMirror) BoardUpdated(departures []model.Departure) {
	bm.Logger.Debugf("BoardUpdated - %d departure(s)", len(departures))

	if err := bm.replaceBoard(departures); err != nil {
		bm.Logger.Printf("cannot mirror board to Redis: %s", err.Error())
	}
}

func (bm *BoardMirror) replaceBoard(departures []model.Departure) error {
	var err error = nil
	conn := bm.Pool.Get()

	defer func() {
		bm.Logger.Debug("close Redis connection")
		if cerr := conn.Close(); cerr != nil {
			err = cerr
			return
		}
		bm.Logger.Debug("closed Redis connection successfully")
	}()

	if err := conn.Send("MULTI"); err != nil {
		return errors.Wrapf(err, "cannot initiate MULTI Redis transaction for key `%s`", bm.Key)
	}

	if err := conn.Send("DEL", bm.Key); err != nil {
		return errors.Wrapf(err, "cannot delete key `%s` in Redis database", bm.Key)
	}

	args := make([]interface{}, len(departures)+1)

	args[0] = bm.Key

	for i, departure := range departures {
		departureJSON, err := json.Marshal(departure)
		if err != nil {
			return errors.Wrapf(err, "cannot marshal JSON for departure `%s`", departure.Format())
		}
		args[i+1] = departureJSON
	}

	if len(args) > 1 {
		if err := conn.Send("RPUSH", args...); err != nil {
			return errors.Wrapf(err, "cannot store the board in Redis under key `%s`", bm.Key)
		}
	}

	if _, err := conn.Do("EXEC"); err != nil {
		return errors.Wrapf(err, "cannot execute Redis transaction for key `%s`", bm.Key)
	}

	return err
}
