package voxd

import (
	"encoding/json"
	"slices"
)

// Mode selects the session's operating mode.
type Mode string

const (
	ModeChat       Mode = "chat"
	ModeTranscribe Mode = "transcribe"
)

// Settings is the per-session configuration. It is constructed once at
// session start and treated as immutable; any observed change tears the
// session down and recreates it.
type Settings struct {
	STTProvider    string `json:"stt_provider" yaml:"stt_provider"`
	Model          string `json:"llm_model" yaml:"llm_model"`
	TTSEnabled     bool   `json:"tts_enabled" yaml:"tts_enabled"`
	Mode           Mode   `json:"agent_mode" yaml:"agent_mode"`
	ExcludedAgents []Kind `json:"excluded_agents" yaml:"excluded_agents"`
}

// DefaultSettings returns the defaults used when no configuration is present.
func DefaultSettings() Settings {
	return Settings{
		STTProvider: "deepgram",
		Model:       "gemini-3.1-pro-preview",
		TTSEnabled:  true,
		Mode:        ModeChat,
	}
}

// AgentEnabled reports whether the given sub-agent kind is administratively
// enabled for this session.
func (s Settings) AgentEnabled(k Kind) bool {
	return !slices.Contains(s.ExcludedAgents, k)
}

// Equal reports whether two settings are identical.
func (s Settings) Equal(o Settings) bool {
	return s.STTProvider == o.STTProvider &&
		s.Model == o.Model &&
		s.TTSEnabled == o.TTSEnabled &&
		s.Mode == o.Mode &&
		slices.Equal(s.ExcludedAgents, o.ExcludedAgents)
}

// settingsPatch mirrors Settings with pointer fields so absent keys in
// platform metadata leave the current value untouched.
type settingsPatch struct {
	STTProvider    *string `json:"stt_provider"`
	Model          *string `json:"llm_model"`
	TTSEnabled     *bool   `json:"tts_enabled"`
	Mode           *Mode   `json:"agent_mode"`
	ExcludedAgents []Kind  `json:"excluded_agents"`
}

// Merge applies a JSON metadata document on top of the current settings and
// returns the result plus whether anything changed. Malformed metadata is
// ignored: the current settings are returned unchanged.
func (s Settings) Merge(metadata []byte) (Settings, bool) {
	var p settingsPatch
	if err := json.Unmarshal(metadata, &p); err != nil {
		return s, false
	}
	next := s
	if p.STTProvider != nil {
		next.STTProvider = *p.STTProvider
	}
	if p.Model != nil {
		next.Model = *p.Model
	}
	if p.TTSEnabled != nil {
		next.TTSEnabled = *p.TTSEnabled
	}
	if p.Mode != nil {
		next.Mode = *p.Mode
	}
	if p.ExcludedAgents != nil {
		next.ExcludedAgents = p.ExcludedAgents
	}
	return next, !s.Equal(next)
}
