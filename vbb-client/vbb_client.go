package vbb_client

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gleb-gusev/bvg-board/dlog"
	"github.com/gleb-gusev/bvg-board/model"
	"github.com/pkg/errors"
)

const defaultPreviewMinutes = 15

// Markers that end the useful part of a HAFAS destination name. Everything
// from the first marker on is dropped, e.g. "Erkner Bhf (Berlin)" -> "Erkner".
var destinationMarkers = []string{" (Berlin)", " Bhf", " ⟲", " ⟳"}

// Line name prefixes excluded from the board: regional and long-distance
// trains do not belong on a local stop display.
var excludedLinePrefixes = []string{"RE", "RB", "IC", "EC", "EN", "FEX", "ICE"}

// VBBClient configuration options for requesting departures for one stop
// from the VBB HAFAS API
type VBBClient struct {
	Client             *http.Client
	Logger             *dlog.Logger
	BaseURL            string
	StationID          string
	ExcludeDestination string
	PreviewInterval    time.Duration
}

type VBBClientInterface interface {
	Departures() ([]model.Departure, error)
}

// Departures requests upcoming departures for the configured stop and
// returns them as board entries, soonest first
func (v *VBBClient) Departures() ([]model.Departure, error) {
	v.Logger.Debug("VBB Departures")

	request, err := v.createDeparturesRequest()
	if err != nil {
		return nil, errors.Wrap(err, "cannot create VBB HTTP request")
	}

	response, err := v.makeDeparturesRequest(request)
	if err != nil {
		if response != nil {
			if cErr := response.Body.Close(); cErr != nil {
				v.Logger.Printf("cannot close VBB response body: %s", cErr.Error())
			}
		}
		return nil, errors.Wrap(err, "cannot make VBB HTTP request")
	}

	body, err := v.readDeparturesResponse(response)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read VBB response")
	}

	hafasResponse := model.HafasResponse{}
	if err := json.Unmarshal(body, &hafasResponse); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal VBB response")
	}

	return v.transform(time.Now(), &hafasResponse), nil
}

func (v *VBBClient) previewMinutes() int {
	minutes := int(v.PreviewInterval / time.Minute)
	if minutes < 1 {
		return defaultPreviewMinutes
	}
	return minutes
}

func (v *VBBClient) createDeparturesRequest() (*http.Request, error) {
	v.Logger.Debug("createDeparturesRequest")
	req, err := http.NewRequest("GET", v.BaseURL+"/stops/"+v.StationID+"/departures", nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Add("duration", strconv.Itoa(v.previewMinutes()))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (v *VBBClient) makeDeparturesRequest(request *http.Request) (*http.Response, error) {
	v.Logger.Debug("makeDeparturesRequest")
	resp, err := v.Client.Do(request)
	if err != nil {
		return nil, err
	}

	switch true {
	case resp.StatusCode >= http.StatusInternalServerError:
		return resp, errors.New("VBB is unavailable")
	case resp.StatusCode >= http.StatusBadRequest:
		return resp, errors.New("bad request to VBB")
	default:
		return resp, nil
	}
}

func (v *VBBClient) readDeparturesResponse(response *http.Response) (body []byte, err error) {
	v.Logger.Debug("readDeparturesResponse")
	defer func() {
		v.Logger.Debug("close response")
		if ferr := response.Body.Close(); ferr != nil {
			err = ferr
			return
		}
		v.Logger.Debug("closed response successfully")
	}()

	body, err = io.ReadAll(response.Body)
	return body, err
}

func (v *VBBClient) transform(now time.Time, response *model.HafasResponse) []model.Departure {
	v.Logger.Debugf("transform - %d record(s)", len(response.Departures))

	previewMinutes := v.previewMinutes()
	departures := make([]model.Departure, 0, len(response.Departures))

	for _, hd := range response.Departures {
		if hd.Direction == nil || hd.When == nil {
			v.Logger.Debugf("exclude %s: missing direction or departure time", hd.Line.Name)
			continue
		}

		if v.ExcludeDestination != "" && strings.Contains(*hd.Direction, v.ExcludeDestination) {
			v.Logger.Debugf("exclude %s towards %s: heading to the monitored stop", hd.Line.Name, *hd.Direction)
			continue
		}

		if !v.keepLine(hd.Line.Name) {
			v.Logger.Debugf("exclude line %s", hd.Line.Name)
			continue
		}

		when, err := time.Parse(time.RFC3339, *hd.When)
		if err != nil {
			v.Logger.Printf("exclude %s towards %s: invalid departure time `%s`", hd.Line.Name, *hd.Direction, *hd.When)
			continue
		}

		minutes := int(when.Sub(now).Minutes())
		if minutes < 1 || minutes > previewMinutes {
			v.Logger.Debugf("exclude %s towards %s: %d minute(s) is outside the preview window", hd.Line.Name, *hd.Direction, minutes)
			continue
		}

		departures = append(departures, model.Departure{
			Line:         hd.Line.Name,
			Destination:  cleanDestination(*hd.Direction),
			MinutesUntil: minutes,
			Platform:     hd.Platform,
		})
	}

	sort.Sort(model.ByMinutesUntil(departures))

	v.Logger.Debugf("transform - %d record(s) kept", len(departures))

	return departures
}

// keepLine keeps S-Bahn (except the Ringbahn), U-Bahn and tram lines.
// All-numeric line names are buses.
func (v *VBBClient) keepLine(name string) bool {
	if name == "" {
		return false
	}

	for _, prefix := range excludedLinePrefixes {
		if strings.HasPrefix(name, prefix) {
			return false
		}
	}

	if name == "S41" || name == "S42" {
		return false
	}

	allDigits := true
	for _, c := range name {
		if c < '0' || c > '9' {
			allDigits = false
			break
		}
	}

	return !allDigits
}

func cleanDestination(dest string) string {
	if strings.HasPrefix(dest, "S ") || strings.HasPrefix(dest, "U ") {
		dest = dest[2:]
	}

	for _, marker := range destinationMarkers {
		if i := strings.Index(dest, marker); i >= 0 {
			dest = dest[:i]
		}
	}

	return dest
}
