package binary

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/ProtonMail/go-crypto/openpgp/armor"
)

func TestVerificationMethod_String(t *testing.T) {
	tests := []struct {
		method VerificationMethod
		want   string
	}{
		{VerificationNone, "None"},
		{VerificationSHA256, "SHA256"},
		{VerificationGPG, "GPG"},
		{VerificationMinisign, "minisign"},
		{VerificationMethod(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.method.String(); got != tt.want {
			t.Errorf("VerificationMethod(%d).String() = %q, want %q", tt.method, got, tt.want)
		}
	}
}

func TestVerifier_VerifySHA256(t *testing.T) {
	tmp := t.TempDir()
	data := []byte("archive contents")
	archive := writeTempFile(t, tmp, "slv_linux_amd64.zip", data)

	tests := []struct {
		name      string
		checksums string
		wantErr   bool
	}{
		{
			name:      "match",
			checksums: fmt.Sprintf("deadbeef  other.zip\n%s  slv_linux_amd64.zip\n", sha256Hex(data)),
		},
		{
			name:      "binary mode marker",
			checksums: fmt.Sprintf("%s *slv_linux_amd64.zip\n", sha256Hex(data)),
		},
		{
			name:      "uppercase digest",
			checksums: fmt.Sprintf("%s  dist/slv_linux_amd64.zip\n", bytes.ToUpper([]byte(sha256Hex(data)))),
		},
		{
			name:      "mismatch",
			checksums: fmt.Sprintf("%s  slv_linux_amd64.zip\n", sha256Hex([]byte("other"))),
			wantErr:   true,
		},
		{
			name:      "missing entry",
			checksums: "deadbeef  other.zip\n",
			wantErr:   true,
		},
	}

	v := NewVerifier("", "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sums := writeTempFile(t, t.TempDir(), "checksums.txt", []byte(tt.checksums))
			err := v.VerifySHA256(archive, sums)
			if tt.wantErr {
				if !errors.Is(err, ErrVerification) {
					t.Fatalf("expected ErrVerification, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("VerifySHA256() error = %v", err)
			}
		})
	}
}

// newPGPKey returns an entity and its armored public key.
func newPGPKey(t *testing.T) (*openpgp.Entity, string) {
	t.Helper()
	entity, err := openpgp.NewEntity("slv release", "", "release@example.com", nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		t.Fatalf("armor: %v", err)
	}
	if err := entity.Serialize(w); err != nil {
		t.Fatalf("serialize key: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close armor: %v", err)
	}
	return entity, buf.String()
}

func TestVerifier_VerifyPGP(t *testing.T) {
	entity, pubKey := newPGPKey(t)
	tmp := t.TempDir()
	data := []byte("archive contents")
	archive := writeTempFile(t, tmp, "slv.zip", data)

	var armored bytes.Buffer
	if err := openpgp.ArmoredDetachSign(&armored, entity, bytes.NewReader(data), nil); err != nil {
		t.Fatalf("sign: %v", err)
	}
	var binarySig bytes.Buffer
	if err := openpgp.DetachSign(&binarySig, entity, bytes.NewReader(data), nil); err != nil {
		t.Fatalf("sign: %v", err)
	}

	v := NewVerifier(pubKey, "")
	if !v.WantsPGP() {
		t.Fatal("WantsPGP() = false")
	}

	t.Run("armored", func(t *testing.T) {
		sig := writeTempFile(t, tmp, "slv.zip.asc", armored.Bytes())
		if err := v.VerifyPGP(archive, sig); err != nil {
			t.Fatalf("VerifyPGP() error = %v", err)
		}
	})

	t.Run("binary", func(t *testing.T) {
		sig := writeTempFile(t, tmp, "slv.zip.sig", binarySig.Bytes())
		if err := v.VerifyPGP(archive, sig); err != nil {
			t.Fatalf("VerifyPGP() error = %v", err)
		}
	})

	t.Run("tampered", func(t *testing.T) {
		sig := writeTempFile(t, tmp, "tampered.asc", armored.Bytes())
		other := writeTempFile(t, tmp, "other.zip", []byte("tampered contents"))
		if err := v.VerifyPGP(other, sig); !errors.Is(err, ErrVerification) {
			t.Fatalf("expected ErrVerification, got %v", err)
		}
	})

	t.Run("bad key", func(t *testing.T) {
		sig := writeTempFile(t, tmp, "bad-key.asc", armored.Bytes())
		if err := NewVerifier("not a key", "").VerifyPGP(archive, sig); !errors.Is(err, ErrVerification) {
			t.Fatalf("expected ErrVerification, got %v", err)
		}
	})

	t.Run("no key", func(t *testing.T) {
		if err := NewVerifier("", "").VerifyPGP(archive, archive); !errors.Is(err, ErrVerification) {
			t.Fatalf("expected ErrVerification, got %v", err)
		}
	})
}

// minisignFixture signs data in the minisign format and returns the public
// key string and the signature file contents.
func minisignFixture(t *testing.T, data []byte) (string, string) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	keyID := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	pubBin := append([]byte("Ed"), keyID...)
	pubBin = append(pubBin, pub...)

	sig := ed25519.Sign(priv, data)
	sigBin := append([]byte("Ed"), keyID...)
	sigBin = append(sigBin, sig...)

	trusted := "timestamp:1700000000\tfile:slv.zip"
	global := ed25519.Sign(priv, append(append([]byte{}, sig...), []byte(trusted)...))

	sigFile := "untrusted comment: signature from test key\n" +
		base64.StdEncoding.EncodeToString(sigBin) + "\n" +
		"trusted comment: " + trusted + "\n" +
		base64.StdEncoding.EncodeToString(global) + "\n"
	return base64.StdEncoding.EncodeToString(pubBin), sigFile
}

func TestVerifier_VerifyMinisign(t *testing.T) {
	tmp := t.TempDir()
	data := []byte("archive contents")
	archive := writeTempFile(t, tmp, "slv.zip", data)
	pubKey, sigFile := minisignFixture(t, data)
	sig := writeTempFile(t, tmp, "slv.zip.minisig", []byte(sigFile))

	v := NewVerifier("", pubKey)
	if !v.WantsMinisign() {
		t.Fatal("WantsMinisign() = false")
	}
	if err := v.VerifyMinisign(archive, sig); err != nil {
		t.Fatalf("VerifyMinisign() error = %v", err)
	}

	other := writeTempFile(t, tmp, "other.zip", []byte("tampered"))
	if err := v.VerifyMinisign(other, sig); !errors.Is(err, ErrVerification) {
		t.Errorf("expected ErrVerification for tampered archive, got %v", err)
	}

	otherKey, _ := minisignFixture(t, data)
	if err := NewVerifier("", otherKey).VerifyMinisign(archive, sig); !errors.Is(err, ErrVerification) {
		t.Errorf("expected ErrVerification for wrong key, got %v", err)
	}

	if err := NewVerifier("", "garbage").VerifyMinisign(archive, sig); !errors.Is(err, ErrVerification) {
		t.Errorf("expected ErrVerification for malformed key, got %v", err)
	}
}
