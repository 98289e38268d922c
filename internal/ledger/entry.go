package ledger

import "time"

// Entry records one toolchain installation
type Entry struct {
	// Channel the toolchain was installed from
	Channel string `json:"channel"`

	// Pin is the revision or date passed to the installer, if any
	Pin string `json:"pin,omitempty"`

	// Version, Hash and Date as reported by the installed compiler
	Version string `json:"version,omitempty"`
	Hash    string `json:"hash,omitempty"`
	Date    string `json:"date,omitempty"`

	// InstallerSHA256 identifies the installer script that ran
	InstallerSHA256 string `json:"installer_sha256,omitempty"`

	// Timestamp when the install finished
	Timestamp time.Time `json:"timestamp"`
}

// Matches reports whether e was installed with the given channel and pin
func (e *Entry) Matches(channel, pin string) bool {
	return e.Channel == channel && e.Pin == pin
}
