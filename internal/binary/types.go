package binary

import (
	"errors"
	"time"
)

// ErrVersionMismatch is returned when the tool on PATH does not report the
// version that was installed.
var ErrVersionMismatch = errors.New("installed version does not match")

// VerificationMethod indicates how an archive was verified
type VerificationMethod int

const (
	// VerificationNone indicates the release offered nothing to verify against
	VerificationNone VerificationMethod = iota
	// VerificationSHA256 indicates the archive matched checksums.txt
	VerificationSHA256
	// VerificationGPG indicates a PGP detached signature was checked
	VerificationGPG
	// VerificationMinisign indicates a minisign signature was checked
	VerificationMinisign
)

// String returns the string representation of the verification method
func (v VerificationMethod) String() string {
	switch v {
	case VerificationNone:
		return "None"
	case VerificationSHA256:
		return "SHA256"
	case VerificationGPG:
		return "GPG"
	case VerificationMinisign:
		return "minisign"
	default:
		return "Unknown"
	}
}

// InstallResult describes a finished install.
type InstallResult struct {
	Version string
	// Dir is the directory added to PATH.
	Dir string
	// Asset is the archive name. Empty when the tool cache was reused.
	Asset    string
	Verified []VerificationMethod
	Cached   bool
	Duration time.Duration
}
