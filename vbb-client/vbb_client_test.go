package vbb_client

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gleb-gusev/bvg-board/dlog"
	"github.com/gleb-gusev/bvg-board/model"
	"github.com/gleb-gusev/bvg-board/test_helpers"
)

func strPtr(s string) *string {
	return &s
}

func createVBBStub(t *testing.T, status int, body []byte) *httptest.Server {
	t.Helper()

	handler := func(w http.ResponseWriter, r *http.Request) {
		t.Helper()
		if r.URL.Path != "/stops/900120003/departures" {
			t.Errorf("unexpected request path %s", r.URL.Path)
		}
		if r.URL.Query().Get("duration") != "15" {
			t.Errorf("unexpected duration parameter %s", r.URL.Query().Get("duration"))
		}
		w.WriteHeader(status)
		if _, err := w.Write(body); err != nil {
			t.Fatal(err)
		}
	}

	return httptest.NewServer(http.HandlerFunc(handler))
}

func createClient(stub *httptest.Server) *VBBClient {
	return &VBBClient{
		Client: stub.Client(),
		Logger: dlog.NewLogger([]dlog.LoggerOption{
			dlog.LoggerSetOutput(io.Discard),
		}...),
		BaseURL:            stub.URL,
		StationID:          "900120003",
		ExcludeDestination: "Warschauer",
		PreviewInterval:    15 * time.Minute,
	}
}

func TestVBBClient_Departures(t *testing.T) {
	now := time.Now()

	when := func(offset string) *string {
		return strPtr(test_helpers.AdjustTime(now, offset).Format(time.RFC3339))
	}

	t.Run("happy path", func(t *testing.T) {
		response := model.HafasResponse{
			Departures: []model.HafasDeparture{
				{Line: model.HafasLine{Name: "M10"}, Direction: strPtr("S+U Hauptbahnhof"), When: when("5m30s")},
				{Line: model.HafasLine{Name: "S3"}, Direction: strPtr("S Erkner Bhf"), When: when("2m30s"), Platform: strPtr("2")},
				{Line: model.HafasLine{Name: "U1"}, Direction: strPtr("U Uhlandstr. (Berlin)"), When: when("1m30s")},
				// all of the below are excluded
				{Line: model.HafasLine{Name: "RE1"}, Direction: strPtr("Magdeburg Hbf"), When: when("4m30s")},
				{Line: model.HafasLine{Name: "S41"}, Direction: strPtr("Ringbahn S41 ⟳"), When: when("3m30s")},
				{Line: model.HafasLine{Name: "347"}, Direction: strPtr("Tunnelstr."), When: when("6m30s")},
				{Line: model.HafasLine{Name: "U1"}, Direction: strPtr("S+U Warschauer Str."), When: when("7m30s")},
				{Line: model.HafasLine{Name: "S5"}, Direction: nil, When: when("8m30s")},
				{Line: model.HafasLine{Name: "S5"}, Direction: strPtr("Strausberg Nord"), When: nil},
				{Line: model.HafasLine{Name: "S7"}, Direction: strPtr("Potsdam Hbf"), When: when("59s")},
				{Line: model.HafasLine{Name: "S7"}, Direction: strPtr("Ahrensfelde"), When: when("-2m")},
				{Line: model.HafasLine{Name: "S9"}, Direction: strPtr("S Spandau Bhf"), When: when("20m30s")},
				{Line: model.HafasLine{Name: "U3"}, Direction: strPtr("Krumme Lanke"), When: strPtr("not-a-time")},
			},
		}

		body, err := json.Marshal(&response)
		if err != nil {
			t.Fatal(err)
		}

		stub := createVBBStub(t, http.StatusOK, body)
		defer stub.Close()

		departures, err := createClient(stub).Departures()
		if err != nil {
			t.Fatal(err)
		}

		test_helpers.AssertInt(t, len(departures), 3)

		test_helpers.AssertString(t, departures[0].Line, "U1")
		test_helpers.AssertString(t, departures[0].Destination, "Uhlandstr.")
		test_helpers.AssertInt(t, departures[0].MinutesUntil, 1)

		test_helpers.AssertString(t, departures[1].Line, "S3")
		test_helpers.AssertString(t, departures[1].Destination, "Erkner")
		test_helpers.AssertInt(t, departures[1].MinutesUntil, 2)
		if departures[1].Platform == nil || *departures[1].Platform != "2" {
			t.Errorf("expected platform 2, got %v", departures[1].Platform)
		}

		test_helpers.AssertString(t, departures[2].Line, "M10")
		test_helpers.AssertString(t, departures[2].Destination, "S+U Hauptbahnhof")
		test_helpers.AssertInt(t, departures[2].MinutesUntil, 5)
	})

	t.Run("empty board", func(t *testing.T) {
		stub := createVBBStub(t, http.StatusOK, []byte(`{"departures":[]}`))
		defer stub.Close()

		departures, err := createClient(stub).Departures()
		if err != nil {
			t.Fatal(err)
		}

		test_helpers.AssertInt(t, len(departures), 0)
	})

	t.Run("server error", func(t *testing.T) {
		stub := createVBBStub(t, http.StatusInternalServerError, []byte(`boom`))
		defer stub.Close()

		if _, err := createClient(stub).Departures(); err == nil {
			t.Error("expected an error for a 5xx response")
		}
	})

	t.Run("bad request", func(t *testing.T) {
		stub := createVBBStub(t, http.StatusNotFound, []byte(`{}`))
		defer stub.Close()

		if _, err := createClient(stub).Departures(); err == nil {
			t.Error("expected an error for a 4xx response")
		}
	})

	t.Run("malformed response", func(t *testing.T) {
		stub := createVBBStub(t, http.StatusOK, []byte(`{"departures":`))
		defer stub.Close()

		if _, err := createClient(stub).Departures(); err == nil {
			t.Error("expected an error for a malformed response")
		}
	})
}

func TestCleanDestination(t *testing.T) {
	cases := map[string]string{
		"S Erkner Bhf":        "Erkner",
		"U Berliner Str.":     "Berliner Str.",
		"Springpfuhl (Berlin)": "Springpfuhl",
		"S Spandau Bhf (Berlin)": "Spandau",
		"Ringbahn S42 ⟲":     "Ringbahn S42",
		"Strausberg Nord":     "Strausberg Nord",
		"S3":                  "S3",
	}

	for in, want := range cases {
		test_helpers.AssertString(t, cleanDestination(in), want)
	}
}

func TestVBBClient_KeepLine(t *testing.T) {
	v := &VBBClient{Logger: dlog.NewLogger([]dlog.LoggerOption{
		dlog.LoggerSetOutput(io.Discard),
	}...)}

	keep := []string{"S3", "S5", "U1", "M10", "M13"}
	for _, name := range keep {
		if !v.keepLine(name) {
			t.Errorf("expected line %s to be kept", name)
		}
	}

	drop := []string{"RE1", "RB24", "IC 2431", "ICE 1601", "EC 177", "EN 447", "FEX", "S41", "S42", "347", ""}
	for _, name := range drop {
		if v.keepLine(name) {
			t.Errorf("expected line %s to be excluded", name)
		}
	}
}
