package surface

import (
	"maps"
	"strconv"
)

// Setting keys understood by the built-in commands
const (
	SettingBehaviorOnStop = "behavior_on_stop" // pause|return-to-zero|move-play-cursor
	SettingFlipRecord     = "flip_record"      // swap record and overdub on shift
)

// Settings is the per-surface key/value store
type Settings map[string]string

// NewSettings copies initial into a fresh store
func NewSettings(initial map[string]string) Settings {
	s := make(Settings, len(initial))
	maps.Copy(s, initial)
	return s
}

// Get returns the value for key or def
func (s Settings) Get(key, def string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return def
}

// Bool parses the value for key, falling back to def
func (s Settings) Bool(key string, def bool) bool {
	v, ok := s[key]
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Set stores value under key
func (s Settings) Set(key, value string) {
	s[key] = value
}
