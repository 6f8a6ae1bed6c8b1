package scene

import (
	"math"
	"testing"
)

func TestDayNightTransition(t *testing.T) {
	d := NewDayNight()
	if d.Period() != Day || d.Exposure() != DayExposure || d.Skybox() != "skybox_day" {
		t.Fatalf("initial state = %v %v %s", d.Period(), d.Exposure(), d.Skybox())
	}
	if d.Advance(1) {
		t.Error("Advance without request changed period")
	}
	if !d.Request() {
		t.Fatal("Request refused")
	}
	if d.Request() {
		t.Error("second Request accepted while pending")
	}

	if d.Advance(1.5) {
		t.Fatal("committed halfway")
	}
	mid := (DayExposure + NightExposure) / 2
	if math.Abs(float64(d.Exposure()-mid)) > 1e-5 {
		t.Errorf("halfway exposure = %v, want %v", d.Exposure(), mid)
	}
	if d.Period() != Day || d.Skybox() != "skybox_day" {
		t.Error("period or skybox switched before commit")
	}

	if !d.Advance(1.5) {
		t.Fatal("did not commit after the delay")
	}
	if d.Period() != Night || d.Pending() || d.Exposure() != NightExposure || d.Skybox() != "skybox_night" {
		t.Errorf("after commit = %v pending=%v %v %s", d.Period(), d.Pending(), d.Exposure(), d.Skybox())
	}
	if d.Lighting().Shininess != 2048 {
		t.Errorf("night shininess = %v", d.Lighting().Shininess)
	}

	d.Request()
	d.Advance(DayChangeDelay + 1)
	if d.Period() != Day || d.Exposure() != DayExposure {
		t.Errorf("back to day = %v %v", d.Period(), d.Exposure())
	}
}

func TestDayNightSetSkybox(t *testing.T) {
	d := NewDayNight()
	d.SetSkybox("overcast", true)
	d.SetSkybox("aurora", false) // not the current period: ignored
	day, night := d.Skyboxes()
	if day != "overcast" || night != "skybox_night" {
		t.Errorf("skyboxes = %s, %s", day, night)
	}
	d.Restore(Night, "", "")
	d.SetSkybox("aurora", false)
	if d.Skybox() != "aurora" {
		t.Errorf("night skybox = %s", d.Skybox())
	}
}

func TestParsePeriod(t *testing.T) {
	for _, p := range []Period{Day, Night} {
		got, err := ParsePeriod(p.String())
		if err != nil || got != p {
			t.Errorf("ParsePeriod(%s) = %v, %v", p, got, err)
		}
	}
	if _, err := ParsePeriod("dusk"); err == nil {
		t.Error("ParsePeriod(dusk) succeeded")
	}
}

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout([]byte(`
name: glade
camera:
  position: [5, 27, 17]
  yaw: -38
  pitch: -5
placements:
  - model: pine_tree
    instances:
      - position: [1, 0, 1]
      - position: [2, 0, 2]
        scale: 0.5
  - model: fire
    shader: fire
    night_only: true
    instances:
      - position: [0, 0, 0]
`))
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}
	if l.Name != "glade" || l.Camera.Yaw != -38 || l.Instances() != 3 {
		t.Errorf("layout = %+v", l)
	}
	pine := l.Placements[0]
	if pine.Shader != "basic" || pine.Instances[0].Scale != 1 || pine.Instances[1].Scale != 0.5 {
		t.Errorf("pine defaults = %+v", pine)
	}
	if !l.Placements[1].NightOnly {
		t.Error("night_only not parsed")
	}

	if _, err := ParseLayout([]byte("placements:\n  - shader: basic\n")); err == nil {
		t.Error("placement without model accepted")
	}
}
