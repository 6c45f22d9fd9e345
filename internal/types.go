package internal

import (
	"fmt"
)

// SourceKind represents how an audio argument will be sent to the service
type SourceKind int

const (
	SourceLocalFile SourceKind = iota
	SourceRemoteLink
)

// String returns a human-readable representation of the source kind
func (k SourceKind) String() string {
	switch k {
	case SourceRemoteLink:
		return "link"
	default:
		return "file"
	}
}

// AudioSource is the classified form of the --audio argument
type AudioSource struct {
	Kind  SourceKind
	Input string
}

// IsLink reports whether the source is submitted as a remote video link
func (s AudioSource) IsLink() bool {
	return s.Kind == SourceRemoteLink
}

// String returns a formatted representation of the source
func (s AudioSource) String() string {
	return fmt.Sprintf("AudioSource{kind=%s, input=%q}", s.Kind, s.Input)
}

// TranscriptionRequest holds everything needed for a single call to the service
type TranscriptionRequest struct {
	AccountID int
	APIToken  string
	Language  string
	Source    AudioSource
}

// Validate checks that the request carries credentials, a language and a source
func (r TranscriptionRequest) Validate() error {
	if r.AccountID <= 0 {
		return fmt.Errorf("account id must be a positive integer")
	}
	if r.APIToken == "" {
		return fmt.Errorf("API token is required")
	}
	if r.Language == "" {
		return fmt.Errorf("language code is required (e.g., en-US, ru-RU, tr-TR)")
	}
	if r.Source.Input == "" {
		return fmt.Errorf("audio file or video link is required")
	}
	return nil
}
