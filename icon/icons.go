package icon

// Icon identifies a symbol in the registry.
type Icon int

const (
	Fail Icon = iota
	Success
	Progress
	Info
	Warn
	Play
	Pause
	Stop
	Next
	Previous
	Repeat
	Shuffle
	Volume
	Track
	Ended
	Crossfade
)

var icons = map[Icon]*iconDef{
	Fail:      {emoji: "💀", nerd: "", plain: "x"},
	Success:   {emoji: "🎉", nerd: "", plain: "+"},
	Progress:  {emoji: "👾", nerd: "", plain: "~"},
	Info:      {emoji: "💡", nerd: "", plain: "i"},
	Warn:      {emoji: "🚧", nerd: "", plain: "!"},
	Play:      {emoji: "▶️", nerd: "", plain: ">"},
	Pause:     {emoji: "⏸️", nerd: "", plain: "||"},
	Stop:      {emoji: "⏹️", nerd: "", plain: "[]"},
	Next:      {emoji: "⏭️", nerd: "", plain: ">>"},
	Previous:  {emoji: "⏮️", nerd: "", plain: "<<"},
	Repeat:    {emoji: "🔁", nerd: "", plain: "@"},
	Shuffle:   {emoji: "🔀", nerd: "", plain: "%"},
	Volume:    {emoji: "🔊", nerd: "", plain: "vol"},
	Track:     {emoji: "🎵", nerd: "", plain: "*"},
	Ended:     {emoji: "🏁", nerd: "", plain: "."},
	Crossfade: {emoji: "🌗", nerd: "", plain: "><"},
}
