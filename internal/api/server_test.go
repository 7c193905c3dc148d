package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avencall/homegrid-core/internal/automation"
	"github.com/avencall/homegrid-core/internal/equipment"
	"github.com/avencall/homegrid-core/internal/grid"
	"github.com/avencall/homegrid-core/internal/history"
	"github.com/avencall/homegrid-core/internal/movement"
	"github.com/avencall/homegrid-core/internal/sensor"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type fakeHouse struct {
	sensors    []sensor.Sensor
	equipments []equipment.Equipment
	grid       grid.Grid
	walking    *grid.Coord
}

func (f *fakeHouse) HouseID() int         { return 4 }
func (f *fakeHouse) LastSync() time.Time  { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }
func (f *fakeHouse) Grid() grid.Grid      { return f.grid }
func (f *fakeHouse) Sensors() []sensor.Sensor {
	return f.sensors
}
func (f *fakeHouse) Sensor(id int) (sensor.Sensor, error) {
	for _, sn := range f.sensors {
		if sn.ID == id {
			return sn, nil
		}
	}
	return sensor.Sensor{}, sensor.ErrNotFound
}
func (f *fakeHouse) Equipments() []equipment.Equipment { return f.equipments }
func (f *fakeHouse) Rules() []automation.Rule          { return nil }
func (f *fakeHouse) Positions() []movement.UserPosition {
	return []movement.UserPosition{{UserID: 3, Username: "ines", X: 1, Y: 0}}
}
func (f *fakeHouse) Position() *grid.Coord { return f.walking }

type fakeHistory struct {
	events  []history.Event
	lastCat history.Category
	err     error
}

func (f *fakeHistory) Recent(_ context.Context, _, _ int) ([]history.Event, error) {
	return f.events, f.err
}

func (f *fakeHistory) ByCategory(_ context.Context, _ int, cat history.Category, _ int) ([]history.Event, error) {
	f.lastCat = cat
	return f.events, f.err
}

type fakeChecker struct{ err error }

func (f fakeChecker) HealthCheck(context.Context) error { return f.err }

func testServer(t *testing.T, deps Deps) *httptest.Server {
	t.Helper()
	if deps.Logger == nil {
		deps.Logger = nopLogger{}
	}
	if deps.House == nil {
		g, _ := grid.Decode(json.RawMessage(`[[2000, 0], [0, 1]]`))
		deps.House = &fakeHouse{
			grid: g,
			sensors: []sensor.Sensor{
				{ID: 7, HouseID: 4, Type: sensor.TypeTemperature, Value: 21},
			},
			equipments: []equipment.Equipment{
				{ID: 5, HouseID: 4, Type: equipment.TypeDoor, State: equipment.StateOpen},
			},
		}
	}
	s, err := New(deps)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(s.buildRouter())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, ts *httptest.Server, path string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s status = %d, want %d", path, resp.StatusCode, wantStatus)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("GET %s decode: %v", path, err)
		}
	}
}

func TestHealthAggregatesComponents(t *testing.T) {
	ts := testServer(t, Deps{
		Version: "1.2.3",
		Components: map[string]HealthChecker{
			"database": fakeChecker{},
			"mqtt":     fakeChecker{},
		},
	})

	var body struct {
		Status     string            `json:"status"`
		Version    string            `json:"version"`
		Components map[string]string `json:"components"`
	}
	getJSON(t, ts, "/api/v1/health", http.StatusOK, &body)

	if body.Status != "ok" || body.Version != "1.2.3" {
		t.Errorf("body = %+v", body)
	}
	if body.Components["database"] != "ok" || body.Components["mqtt"] != "ok" {
		t.Errorf("components = %v", body.Components)
	}
}

func TestHealthDegradedOnComponentFailure(t *testing.T) {
	ts := testServer(t, Deps{
		Components: map[string]HealthChecker{
			"influxdb": fakeChecker{err: errors.New("ping failed")},
		},
	})

	var body struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	getJSON(t, ts, "/api/v1/health", http.StatusServiceUnavailable, &body)

	if body.Status != "degraded" {
		t.Errorf("status = %q, want degraded", body.Status)
	}
	if body.Components["influxdb"] != "ping failed" {
		t.Errorf("components = %v", body.Components)
	}
}

func TestStatusReportsMirror(t *testing.T) {
	ts := testServer(t, Deps{ConnState: func() string { return "open" }})

	var body map[string]any
	getJSON(t, ts, "/api/v1/status", http.StatusOK, &body)

	if body["house_id"].(float64) != 4 {
		t.Errorf("house_id = %v", body["house_id"])
	}
	if body["sensors"].(float64) != 1 || body["positions"].(float64) != 1 {
		t.Errorf("counts = %v", body)
	}
	if body["realtime"] != "open" {
		t.Errorf("realtime = %v", body["realtime"])
	}
}

func TestGridEndpoint(t *testing.T) {
	ts := testServer(t, Deps{})

	var body struct {
		Rows int             `json:"rows"`
		Cols int             `json:"cols"`
		Grid json.RawMessage `json:"grid"`
	}
	getJSON(t, ts, "/api/v1/grid", http.StatusOK, &body)

	if body.Rows != 2 || body.Cols != 2 {
		t.Errorf("dims = %dx%d, want 2x2", body.Rows, body.Cols)
	}
	if _, err := grid.Decode(body.Grid); err != nil {
		t.Errorf("grid payload does not round-trip: %v", err)
	}
}

func TestSensorEndpoints(t *testing.T) {
	ts := testServer(t, Deps{})

	var list []sensor.Sensor
	getJSON(t, ts, "/api/v1/sensors/", http.StatusOK, &list)
	if len(list) != 1 || list[0].ID != 7 {
		t.Errorf("list = %+v", list)
	}

	var one sensor.Sensor
	getJSON(t, ts, "/api/v1/sensors/7", http.StatusOK, &one)
	if one.Type != sensor.TypeTemperature {
		t.Errorf("sensor = %+v", one)
	}

	getJSON(t, ts, "/api/v1/sensors/99", http.StatusNotFound, nil)
	getJSON(t, ts, "/api/v1/sensors/abc", http.StatusBadRequest, nil)
}

func TestEquipmentEndpoints(t *testing.T) {
	ts := testServer(t, Deps{})

	var one equipment.Equipment
	getJSON(t, ts, "/api/v1/equipments/5", http.StatusOK, &one)
	if one.State != equipment.StateOpen {
		t.Errorf("equipment = %+v", one)
	}

	getJSON(t, ts, "/api/v1/equipments/99", http.StatusNotFound, nil)
}

func TestHistoryEndpoint(t *testing.T) {
	hist := &fakeHistory{events: []history.Event{
		{ID: 1, HouseID: 4, Category: history.CategorySensor, Summary: "temperature reading 21"},
	}}
	ts := testServer(t, Deps{History: hist})

	var events []history.Event
	getJSON(t, ts, "/api/v1/history", http.StatusOK, &events)
	if len(events) != 1 {
		t.Fatalf("events = %+v", events)
	}

	getJSON(t, ts, "/api/v1/history?category=sensor", http.StatusOK, &events)
	if hist.lastCat != history.CategorySensor {
		t.Errorf("category = %q, want sensor", hist.lastCat)
	}

	getJSON(t, ts, "/api/v1/history?limit=0", http.StatusBadRequest, nil)
}

func TestHistoryDisabled(t *testing.T) {
	ts := testServer(t, Deps{})
	getJSON(t, ts, "/api/v1/history", http.StatusNotFound, nil)
}
