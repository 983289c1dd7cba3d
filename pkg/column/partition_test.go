package column

import (
	"math"
	"testing"
)

func fixtureResult() *SimulationResult {
	return &SimulationResult{
		Feed: Stream{Flow: 100, Composition: map[string]float64{
			"PROPANE": 0.05, "BENZENE": 0.45, "TOLUENE": 0.4, "XYLENE": 0.1,
		}},
		Distillate: Stream{Flow: 49, Composition: map[string]float64{
			"PROPANE": 5.0 / 49, "BENZENE": 44.0 / 49, "TOLUENE": 0},
		},
		Bottoms: Stream{Flow: 51, Composition: map[string]float64{
			"BENZENE": 1.0 / 51, "TOLUENE": 40.0 / 51, "XYLENE": 10.0 / 51},
		},
		KValues: map[string]float64{"PROPANE": 9.5, "BENZENE": 1.8, "TOLUENE": 0.75, "XYLENE": 0.31},
	}
}

func TestNewPartition(t *testing.T) {
	p, err := NewPartition(fixtureResult(), "BENZENE")
	if err != nil {
		t.Fatal(err)
	}

	if p.LightKey != "BENZENE" || p.HeavyKey != "TOLUENE" {
		t.Errorf("keys = %s/%s, want BENZENE/TOLUENE", p.LightKey, p.HeavyKey)
	}

	roles := map[string]Role{"PROPANE": LightNonKey, "BENZENE": LightKey, "TOLUENE": HeavyKey, "XYLENE": HeavyNonKey}
	for name, want := range roles {
		c, ok := p.Component(name)
		if !ok {
			t.Fatalf("component %s missing", name)
		}
		if c.Role != want {
			t.Errorf("%s role = %v, want %v", name, c.Role, want)
		}
	}

	if math.Abs(p.Purity-44.0/49) > 1e-12 {
		t.Errorf("Purity = %v, want %v", p.Purity, 44.0/49)
	}
	if math.Abs(p.Recovery-44.0/45) > 1e-12 {
		t.Errorf("Recovery = %v, want %v", p.Recovery, 44.0/45)
	}
	if got := p.RelativeVolatility("BENZENE"); math.Abs(got-1.8/0.75) > 1e-12 {
		t.Errorf("RelativeVolatility(BENZENE) = %v, want %v", got, 1.8/0.75)
	}
	if got := len(p.WithRole(LightNonKey)); got != 1 {
		t.Errorf("light non-keys = %d, want 1", got)
	}
}

func TestNewPartitionErrors(t *testing.T) {
	if _, err := NewPartition(fixtureResult(), "WATER"); err == nil {
		t.Error("missing main component accepted")
	}
	if _, err := NewPartition(fixtureResult(), "XYLENE"); err == nil {
		t.Error("least volatile main component accepted")
	}
}

func TestCloneIsDeep(t *testing.T) {
	r := fixtureResult()
	r.Stages = []Stage{{Temperature: 80}, {Temperature: 110}}
	c := r.Clone()

	c.Stages[0].Temperature = 0
	c.KValues["BENZENE"] = 0
	c.Distillate.Composition["BENZENE"] = 0

	if r.Stages[0].Temperature != 80 || r.KValues["BENZENE"] != 1.8 || r.Distillate.Composition["BENZENE"] == 0 {
		t.Error("Clone shares state with the original")
	}
}

func TestStageAccessor(t *testing.T) {
	r := &SimulationResult{Stages: []Stage{{Temperature: 80}, {Temperature: 110}}}
	s, err := r.Stage(2)
	if err != nil || s.Temperature != 110 {
		t.Errorf("Stage(2) = %+v, %v", s, err)
	}
	if _, err := r.Stage(0); err == nil {
		t.Error("Stage(0) accepted")
	}
	if _, err := r.Stage(3); err == nil {
		t.Error("Stage(3) accepted")
	}
}
