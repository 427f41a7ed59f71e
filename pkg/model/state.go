package model

import "time"

// EngineState is the archived record of engine-wide mutable state:
// the global version counter and the active branch.
type EngineState struct {
	VersionCounter uint64    `json:"versionCounter" yaml:"versionCounter"`
	CurrentBranch  string    `json:"currentBranch" yaml:"currentBranch"`
	Exported       time.Time `json:"exported,omitempty" yaml:"exported,omitempty"`
	_              struct{}
}
