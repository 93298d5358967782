package world

// Clock is overworld time: days of fixed real length grouped into seasons.
type Clock struct {
	DayLength     float64 `msgpack:"day_length"` // seconds per day
	DaysPerSeason int     `msgpack:"days_per_season"`
	Day           int     `msgpack:"day"`
	Elapsed       float64 `msgpack:"elapsed"` // seconds into the current day
}

var seasonNames = [4]string{"spring", "summer", "autumn", "winter"}

// NewClock returns a clock at day 0.
func NewClock(dayLength float64, daysPerSeason int) *Clock {
	if dayLength <= 0 {
		dayLength = 60
	}
	if daysPerSeason <= 0 {
		daysPerSeason = 7
	}
	return &Clock{DayLength: dayLength, DaysPerSeason: daysPerSeason}
}

// Advance moves time forward and returns how many days rolled over.
func (c *Clock) Advance(dt float64) int {
	c.Elapsed += dt
	days := 0
	for c.Elapsed >= c.DayLength {
		c.Elapsed -= c.DayLength
		c.Day++
		days++
	}
	return days
}

// Seasons is the number of whole seasons elapsed since the start.
func (c *Clock) Seasons() int { return c.Day / c.DaysPerSeason }

// Season names the current season.
func (c *Clock) Season() string { return seasonNames[c.Seasons()%len(seasonNames)] }

// Year counts full years, starting at 1.
func (c *Clock) Year() int { return c.Seasons()/len(seasonNames) + 1 }

// SaveData returns a copy for persistence.
func (c *Clock) SaveData() Clock { return *c }

// LoadSaveData restores a saved clock, keeping defaults for missing fields.
func (c *Clock) LoadSaveData(s Clock) {
	def := NewClock(s.DayLength, s.DaysPerSeason)
	s.DayLength, s.DaysPerSeason = def.DayLength, def.DaysPerSeason
	*c = s
}
