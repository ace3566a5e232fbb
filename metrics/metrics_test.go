package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gleb-gusev/bvg-board/test_helpers"
)

func TestHandler(t *testing.T) {
	ObserveFetch(120*time.Millisecond, true)
	ObserveFetch(5*time.Second, false)
	CountRotation()
	SetBoardSize(3)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, req)

	test_helpers.AssertStatusCode(t, rr, http.StatusOK)

	body := rr.Body.String()
	for _, want := range []string{
		`board_fetches_total{result="success"} 1`,
		`board_fetches_total{result="failure"} 1`,
		"board_fetch_duration_seconds_count 2",
		"board_rotations_total 1",
		"board_departures 3",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected metrics output to contain %q", want)
		}
	}
}
