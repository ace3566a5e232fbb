package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gleb-gusev/bvg-board/test_helpers"
)

func TestLoad(t *testing.T) {
	t.Run("Returns an empty configuration when no path is given", func(t *testing.T) {
		c, err := Load("")
		if err != nil {
			t.Fatal(err)
		}
		test_helpers.AssertString(t, c.StationID, "")
		test_helpers.AssertInt(t, c.DisplayCap, 0)
	})

	t.Run("Reads values from a YAML file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "board.yaml")
		data := []byte("station_id: \"900100001\"\nrefresh_interval: PT30S\ndisplay_cap: 5\nredis_host: \"redis:6379\"\n")
		if err := os.WriteFile(path, data, 0600); err != nil {
			t.Fatal(err)
		}

		c, err := Load(path)
		if err != nil {
			t.Fatal(err)
		}
		test_helpers.AssertString(t, c.StationID, "900100001")
		test_helpers.AssertString(t, c.RefreshInterval, "PT30S")
		test_helpers.AssertInt(t, c.DisplayCap, 5)
		test_helpers.AssertString(t, c.RedisHost, "redis:6379")
	})

	t.Run("Returns an error when the file does not exist", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Error("expected an error for a missing file")
		}
	})

	t.Run("Returns an error when the file is not YAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "board.yaml")
		if err := os.WriteFile(path, []byte("{not yaml"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected an error for a malformed file")
		}
	})
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Run("Environment variables override file values", func(t *testing.T) {
		t.Setenv("BOARD_DISPLAY_STATION_ID", "900200099")
		t.Setenv("BOARD_DISPLAY_CAP", "4")
		t.Setenv("BOARD_DISPLAY_LISTEN", ":9010")

		c := Config{StationID: "900100001", DisplayCap: 2}
		if err := c.ApplyEnv(); err != nil {
			t.Fatal(err)
		}

		test_helpers.AssertString(t, c.StationID, "900200099")
		test_helpers.AssertInt(t, c.DisplayCap, 4)
		test_helpers.AssertString(t, c.Listen, ":9010")
	})

	t.Run("Unset variables leave file values alone", func(t *testing.T) {
		c := Config{StationID: "900100001"}
		if err := c.ApplyEnv(); err != nil {
			t.Fatal(err)
		}
		test_helpers.AssertString(t, c.StationID, "900100001")
	})

	t.Run("Returns an error when the display cap is not a number", func(t *testing.T) {
		t.Setenv("BOARD_DISPLAY_CAP", "three")

		c := Config{}
		if err := c.ApplyEnv(); err == nil {
			t.Error("expected an error for a non-numeric display cap")
		}
	})
}

func TestConfig_Resolve(t *testing.T) {
	t.Run("Fills in defaults for an empty configuration", func(t *testing.T) {
		c := Config{}
		s, err := c.Resolve()
		if err != nil {
			t.Fatal(err)
		}

		test_helpers.AssertString(t, s.StationID, "900120003")
		test_helpers.AssertString(t, s.RefreshInterval.String(), (20 * time.Second).String())
		test_helpers.AssertString(t, s.RotationInterval.String(), (10 * time.Second).String())
		test_helpers.AssertString(t, s.FetchTimeout.String(), (5 * time.Second).String())
		test_helpers.AssertString(t, s.PreviewInterval.String(), (15 * time.Minute).String())
		test_helpers.AssertInt(t, s.DisplayCap, 3)
		test_helpers.AssertString(t, s.ExcludeDestination, "Warschauer")
		test_helpers.AssertString(t, s.VBBBaseURL, "https://v6.vbb.transport.rest")
		test_helpers.AssertString(t, s.Listen, "")
		test_helpers.AssertString(t, s.RedisHost, "")
	})

	t.Run("Keeps configured values", func(t *testing.T) {
		c := Config{
			StationID:       "900100001",
			RefreshInterval: "PT1M",
			DisplayCap:      2,
		}
		s, err := c.Resolve()
		if err != nil {
			t.Fatal(err)
		}

		test_helpers.AssertString(t, s.StationID, "900100001")
		test_helpers.AssertString(t, s.RefreshInterval.String(), time.Minute.String())
		test_helpers.AssertInt(t, s.DisplayCap, 2)
	})

	t.Run("Rejects a malformed station id", func(t *testing.T) {
		c := Config{StationID: "alexanderplatz"}
		if _, err := c.Resolve(); err == nil {
			t.Error("expected an error for a malformed station id")
		}
	})

	t.Run("Rejects a station id that is too short", func(t *testing.T) {
		c := Config{StationID: "12345"}
		if _, err := c.Resolve(); err == nil {
			t.Error("expected an error for a short station id")
		}
	})

	t.Run("Rejects a negative display cap", func(t *testing.T) {
		c := Config{DisplayCap: -1}
		if _, err := c.Resolve(); err == nil {
			t.Error("expected an error for a negative display cap")
		}
	})

	t.Run("Rejects a malformed duration", func(t *testing.T) {
		c := Config{RefreshInterval: "20 seconds"}
		if _, err := c.Resolve(); err == nil {
			t.Error("expected an error for a malformed duration")
		}
	})

	t.Run("Rejects a zero duration", func(t *testing.T) {
		c := Config{RotationInterval: "PT0S"}
		if _, err := c.Resolve(); err == nil {
			t.Error("expected an error for a zero duration")
		}
	})
}
