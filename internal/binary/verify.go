package binary

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/jedisct1/go-minisign"
)

// ErrVerification is wrapped by every verification failure.
var ErrVerification = errors.New("verification failed")

// Verifier checks downloaded archives against checksums and signatures.
type Verifier struct {
	pgpKey      string
	minisignKey string
}

// NewVerifier creates a verifier. pgpKey is an armored public key and
// minisignKey a minisign public key string; either may be empty.
func NewVerifier(pgpKey, minisignKey string) *Verifier {
	return &Verifier{
		pgpKey:      strings.TrimSpace(pgpKey),
		minisignKey: strings.TrimSpace(minisignKey),
	}
}

// WantsPGP reports whether a PGP key was configured.
func (v *Verifier) WantsPGP() bool {
	return v != nil && v.pgpKey != ""
}

// WantsMinisign reports whether a minisign key was configured.
func (v *Verifier) WantsMinisign() bool {
	return v != nil && v.minisignKey != ""
}

// Requirements lists the marker entries a cached install must carry before
// it can be reused: one per configured key.
func (v *Verifier) Requirements() []string {
	var reqs []string
	if v.WantsPGP() {
		reqs = append(reqs, v.markerEntry(VerificationGPG))
	}
	if v.WantsMinisign() {
		reqs = append(reqs, v.markerEntry(VerificationMinisign))
	}
	return reqs
}

// markerEntry names a completed check in the cache marker. Signature
// checks include the key fingerprint so a different key forces a reinstall.
func (v *Verifier) markerEntry(m VerificationMethod) string {
	switch m {
	case VerificationGPG:
		return "gpg " + keyFingerprint(v.pgpKey)
	case VerificationMinisign:
		return "minisign " + keyFingerprint(v.minisignKey)
	default:
		return strings.ToLower(m.String())
	}
}

func (v *Verifier) markerEntries(methods []VerificationMethod) []string {
	entries := make([]string, 0, len(methods))
	for _, m := range methods {
		entries = append(entries, v.markerEntry(m))
	}
	return entries
}

// methodFromEntry is the inverse of markerEntry, ignoring the fingerprint.
func methodFromEntry(entry string) VerificationMethod {
	name, _, _ := strings.Cut(entry, " ")
	switch name {
	case "sha256":
		return VerificationSHA256
	case "gpg":
		return VerificationGPG
	case "minisign":
		return VerificationMinisign
	default:
		return VerificationNone
	}
}

func keyFingerprint(key string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(key)))
	return hex.EncodeToString(sum[:8])
}

// VerifySHA256 checks archivePath against its entry in a checksums file.
// Format: "abc123def456  filename.zip"
func (v *Verifier) VerifySHA256(archivePath, checksumPath string) error {
	actual, err := calculateSHA256(archivePath)
	if err != nil {
		return fmt.Errorf("%w: calculate checksum: %v", ErrVerification, err)
	}

	expected, err := findChecksum(checksumPath, filepath.Base(archivePath))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerification, err)
	}

	if !strings.EqualFold(actual, expected) {
		return fmt.Errorf("%w: checksum mismatch:\nactual:   %s\nexpected: %s", ErrVerification, actual, expected)
	}
	return nil
}

// VerifyPGP checks a detached PGP signature, armored or binary.
func (v *Verifier) VerifyPGP(archivePath, signaturePath string) error {
	if !v.WantsPGP() {
		return fmt.Errorf("%w: no PGP key configured", ErrVerification)
	}

	keyring, err := openpgp.ReadArmoredKeyRing(strings.NewReader(v.pgpKey))
	if err != nil {
		return fmt.Errorf("%w: read PGP key: %v", ErrVerification, err)
	}
	if len(keyring) == 0 {
		return fmt.Errorf("%w: PGP key is empty", ErrVerification)
	}

	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archiveFile.Close()

	sigFile, err := os.Open(signaturePath)
	if err != nil {
		return fmt.Errorf("open signature: %w", err)
	}
	defer sigFile.Close()

	_, err = openpgp.CheckArmoredDetachedSignature(keyring, archiveFile, sigFile, nil)
	if err != nil {
		// Try non-armored signature
		if _, seekErr := archiveFile.Seek(0, io.SeekStart); seekErr != nil {
			return fmt.Errorf("rewind archive: %w", seekErr)
		}
		if _, seekErr := sigFile.Seek(0, io.SeekStart); seekErr != nil {
			return fmt.Errorf("rewind signature: %w", seekErr)
		}
		_, err = openpgp.CheckDetachedSignature(keyring, archiveFile, sigFile, nil)
	}
	if err != nil {
		return fmt.Errorf("%w: PGP signature: %v", ErrVerification, err)
	}
	return nil
}

// VerifyMinisign checks a minisign signature file.
func (v *Verifier) VerifyMinisign(archivePath, signaturePath string) error {
	if !v.WantsMinisign() {
		return fmt.Errorf("%w: no minisign key configured", ErrVerification)
	}

	pubKey, err := minisign.NewPublicKey(v.minisignKey)
	if err != nil {
		return fmt.Errorf("%w: parse minisign key: %v", ErrVerification, err)
	}
	sig, err := minisign.NewSignatureFromFile(signaturePath)
	if err != nil {
		return fmt.Errorf("%w: read minisign signature: %v", ErrVerification, err)
	}
	content, err := os.ReadFile(archivePath)
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}

	valid, err := pubKey.Verify(content, sig)
	if err != nil {
		return fmt.Errorf("%w: minisign signature: %v", ErrVerification, err)
	}
	if !valid {
		return fmt.Errorf("%w: minisign signature invalid", ErrVerification)
	}
	return nil
}

// calculateSHA256 calculates the SHA256 checksum of a file
func calculateSHA256(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// findChecksum finds the checksum for a specific filename in a checksum file
func findChecksum(checksumPath, filename string) (string, error) {
	file, err := os.Open(checksumPath)
	if err != nil {
		return "", fmt.Errorf("open checksum file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}

		// sha256sum marks binary mode with a leading '*'.
		checksumFilename := strings.TrimPrefix(parts[1], "*")
		if checksumFilename == filename || filepath.Base(checksumFilename) == filename {
			return parts[0], nil
		}
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan checksum file: %w", err)
	}

	return "", fmt.Errorf("checksum not found for %s", filename)
}
