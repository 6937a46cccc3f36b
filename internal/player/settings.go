package player

// SubtitleSettings styles the subtitle overlay. Delay shifts cue
// lookup by a signed number of seconds.
type SubtitleSettings struct {
	FontSize          int
	Color             string
	Delay             float64
	BackgroundColor   string
	BackgroundOpacity float64
}

// Settings are transient UI preferences scoped to one player
// instance. They are not persisted.
type Settings struct {
	PlaybackSpeed float64
	Subtitle      SubtitleSettings
	Theme         string
}

// DefaultSettings returns the initial preference set.
func DefaultSettings() Settings {
	return Settings{
		PlaybackSpeed: 1,
		Subtitle: SubtitleSettings{
			FontSize:          16,
			Color:             "#ffffff",
			Delay:             0,
			BackgroundColor:   "#000000",
			BackgroundOpacity: 0.5,
		},
		Theme: "dark",
	}
}

// PlaybackSpeeds are the selectable speed multipliers, in menu order.
var PlaybackSpeeds = []float64{0.25, 0.5, 0.75, 1, 1.25, 1.5, 1.75, 2}

// FontSizes are the selectable subtitle font sizes, in menu order.
var FontSizes = []int{12, 14, 16, 18, 20, 24}

// SubtitleColors are the selectable subtitle text colors.
var SubtitleColors = []string{"#ffffff", "#ffff00", "#00ff00", "#00ffff", "#ff0000", "#ff00ff"}
