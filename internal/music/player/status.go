package player

// State is where a guild sits in the playback lifecycle.
type State string

const (
	StateIdle            State = "Idle"
	StateConnectedSilent State = "Connected"
	StatePlaying         State = "Playing"
	StatePaused          State = "Paused"
)

func (s State) StringEmoji() string {
	m := map[State]string{
		StateIdle:            "💤",
		StateConnectedSilent: "🔈",
		StatePlaying:         "▶️",
		StatePaused:          "⏸",
	}
	return m[s]
}
