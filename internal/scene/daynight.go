package scene

import (
	"fmt"

	"github.com/glade/glade/internal/graphics"
)

// Period is the committed time of day.
type Period int

const (
	Day Period = iota
	Night
)

func (p Period) String() string {
	if p == Night {
		return "night"
	}
	return "day"
}

// ParsePeriod is the inverse of String.
func ParsePeriod(s string) (Period, error) {
	switch s {
	case "day":
		return Day, nil
	case "night":
		return Night, nil
	}
	return Day, fmt.Errorf("unknown period %q", s)
}

func (p Period) opposite() Period {
	if p == Day {
		return Night
	}
	return Day
}

const (
	DayChangeDelay = 3.0 // seconds between request and commit
	DayExposure    = float32(1.2)
	NightExposure  = float32(0.6)
)

// Lighting is the light set a period renders with.
type Lighting struct {
	Position  graphics.Vec3
	Color     graphics.Vec3
	Ambient   float32
	Diffuse   float32
	Specular  float32
	Shininess float32
}

var lighting = [...]Lighting{
	Day: {
		Position:  graphics.V(0, 60, 0),
		Color:     graphics.V(1, 1, 1),
		Ambient:   0.2,
		Diffuse:   0.5,
		Specular:  0.1,
		Shininess: 1024,
	},
	Night: {
		Position:  graphics.V(12, 25, 6),
		Color:     graphics.V(1, 0.7, 0.1),
		Ambient:   0.1,
		Diffuse:   0.3,
		Specular:  0.05,
		Shininess: 2048,
	},
}

func exposureOf(p Period) float32 {
	if p == Night {
		return NightExposure
	}
	return DayExposure
}

// DayNight switches between day and night. A request starts a pending
// transition; exposure crossfades while the timer runs and the period (with
// its skybox and lighting) commits once DayChangeDelay has elapsed.
type DayNight struct {
	period   Period
	pending  bool
	timer    float64
	exposure float32

	daySkybox   string
	nightSkybox string
}

func NewDayNight() *DayNight {
	return &DayNight{
		period:      Day,
		exposure:    DayExposure,
		daySkybox:   "skybox_day",
		nightSkybox: "skybox_night",
	}
}

// Request starts a transition to the other period. It is ignored while a
// transition is already pending.
func (d *DayNight) Request() bool {
	if d.pending {
		return false
	}
	d.pending = true
	d.timer = 0
	return true
}

// Advance moves the pending transition forward by dt seconds and reports
// whether the period changed.
func (d *DayNight) Advance(dt float64) bool {
	if !d.pending {
		return false
	}
	d.timer += dt
	from, to := exposureOf(d.period), exposureOf(d.period.opposite())
	if d.timer >= DayChangeDelay {
		d.period = d.period.opposite()
		d.pending = false
		d.timer = 0
		d.exposure = to
		return true
	}
	t := float32(d.timer / DayChangeDelay)
	d.exposure = from + (to-from)*t
	return false
}

func (d *DayNight) Period() Period     { return d.period }
func (d *DayNight) Pending() bool      { return d.pending }
func (d *DayNight) Exposure() float32  { return d.exposure }
func (d *DayNight) Lighting() Lighting { return lighting[d.period] }

// Skybox returns the skybox of the committed period.
func (d *DayNight) Skybox() string {
	if d.period == Night {
		return d.nightSkybox
	}
	return d.daySkybox
}

// SetSkybox replaces the skybox of the current period. A skybox for the
// other period is ignored.
func (d *DayNight) SetSkybox(name string, daytime bool) {
	switch {
	case d.period == Day && daytime:
		d.daySkybox = name
	case d.period == Night && !daytime:
		d.nightSkybox = name
	}
}

// Skyboxes returns the day and night skybox names.
func (d *DayNight) Skyboxes() (day, night string) { return d.daySkybox, d.nightSkybox }

// Restore sets the committed state directly, dropping any pending
// transition.
func (d *DayNight) Restore(p Period, daySkybox, nightSkybox string) {
	d.period = p
	d.pending = false
	d.timer = 0
	d.exposure = exposureOf(p)
	if daySkybox != "" {
		d.daySkybox = daySkybox
	}
	if nightSkybox != "" {
		d.nightSkybox = nightSkybox
	}
}
