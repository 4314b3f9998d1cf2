package ui

import (
	"time"

	"github.com/kyaoi/codepick/internal/session"
	"github.com/kyaoi/codepick/internal/tree"
)

// State contains the data required to bootstrap the Bubble Tea model.
type State struct {
	Loader             *session.Loader
	InitialPath        string
	TreePreferredWidth int
	RequestTimeout     time.Duration
	ConfigPath         string
	ReloadPolicy       func() (tree.Policy, error)
}

// OutcomeKind says what the user submitted before the program exited.
type OutcomeKind string

const (
	OutcomeNone     OutcomeKind = ""
	OutcomeSelected OutcomeKind = "select_project"
	OutcomeCreate   OutcomeKind = "create_project"
)

// Outcome is the form the user submitted, if any.
type Outcome struct {
	Kind        OutcomeKind `json:"kind" yaml:"kind"`
	SourcePath  string      `json:"source_code_path" yaml:"source_code_path"`
	ProjectName string      `json:"project_name,omitempty" yaml:"project_name,omitempty"`
	Files       []string    `json:"selected_files,omitempty" yaml:"selected_files,omitempty"`
}
