package secrets

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/awnumar/memguard"
	"github.com/savesecrets/slv-action/internal/actions"
)

type fakeVault struct {
	out   []byte
	err   error
	calls []string
}

func (f *fakeVault) ExportVault(ctx context.Context, vault string, key *memguard.Enclave) ([]byte, error) {
	f.calls = append(f.calls, vault)
	return f.out, f.err
}

func newKey() *memguard.Enclave {
	return memguard.NewEnclave([]byte("SLV_ESK_test"))
}

func TestInject_ExportsWithPrefix(t *testing.T) {
	vault := &fakeVault{out: []byte(`{"DB_PASS":"x","API_KEY":"y"}`)}
	rec := actions.NewRecorder(nil)
	e := NewExporter(vault, rec, nil)

	res, err := e.Inject(context.Background(), Options{Vault: "ci.slv.yaml", SecretKey: newKey(), Prefix: "APP_"})
	if err != nil {
		t.Fatalf("Inject() error = %v", err)
	}

	wantVars := []actions.Variable{{Name: "APP_DB_PASS", Value: "x"}, {Name: "APP_API_KEY", Value: "y"}}
	if !reflect.DeepEqual(rec.Exported, wantVars) {
		t.Errorf("Exported = %v, want %v", rec.Exported, wantVars)
	}
	if !rec.IsMasked("x") || !rec.IsMasked("y") {
		t.Errorf("values not masked: %v", rec.Masked)
	}
	if want := []string{"APP_DB_PASS", "APP_API_KEY"}; !reflect.DeepEqual(res.Names, want) {
		t.Errorf("Names = %v, want %v", res.Names, want)
	}
	if len(vault.calls) != 1 || vault.calls[0] != "ci.slv.yaml" {
		t.Errorf("vault calls = %v", vault.calls)
	}
}

func TestInject_NoPrefix(t *testing.T) {
	rec := actions.NewRecorder(nil)
	e := NewExporter(&fakeVault{out: []byte(`{"TOKEN":"abc"}`)}, rec, nil)

	if _, err := e.Inject(context.Background(), Options{Vault: "v.yaml", SecretKey: newKey()}); err != nil {
		t.Fatalf("Inject() error = %v", err)
	}
	if env := rec.Env(); len(env) != 1 || env["TOKEN"] != "abc" {
		t.Errorf("Env() = %v", env)
	}
}

func TestInject_NoVault(t *testing.T) {
	vault := &fakeVault{}
	rec := actions.NewRecorder(nil)
	e := NewExporter(vault, rec, nil)

	res, err := e.Inject(context.Background(), Options{SecretKey: newKey()})
	if err != nil {
		t.Fatalf("Inject() error = %v", err)
	}
	if len(res.Names) != 0 || len(rec.Exported) != 0 {
		t.Errorf("nothing should be exported without a vault: %v", rec.Exported)
	}
	if len(vault.calls) != 0 {
		t.Error("no subprocess without a vault")
	}
}

func TestInject_MissingKey(t *testing.T) {
	vault := &fakeVault{out: []byte(`{"A":"1"}`)}
	rec := actions.NewRecorder(nil)
	e := NewExporter(vault, rec, nil)

	_, err := e.Inject(context.Background(), Options{Vault: "v.yaml"})
	if !errors.Is(err, ErrMissingSecretKey) {
		t.Fatalf("Inject() error = %v, want ErrMissingSecretKey", err)
	}
	if len(vault.calls) != 0 || len(rec.Exported) != 0 || len(rec.Masked) != 0 {
		t.Errorf("missing key must not run or export anything: calls=%v exported=%v", vault.calls, rec.Exported)
	}
}

func TestInject_ExportCommandFails(t *testing.T) {
	cmdErr := errors.New("failed to get secrets: invalid key")
	rec := actions.NewRecorder(nil)
	e := NewExporter(&fakeVault{err: cmdErr}, rec, nil)

	_, err := e.Inject(context.Background(), Options{Vault: "v.yaml", SecretKey: newKey()})
	if !errors.Is(err, cmdErr) {
		t.Fatalf("Inject() error = %v, want %v", err, cmdErr)
	}
	if len(rec.Exported) != 0 {
		t.Errorf("Exported = %v, want none", rec.Exported)
	}
}

func TestInject_MalformedOutput(t *testing.T) {
	rec := actions.NewRecorder(nil)
	e := NewExporter(&fakeVault{out: []byte(`not json`)}, rec, nil)

	_, err := e.Inject(context.Background(), Options{Vault: "v.yaml", SecretKey: newKey()})
	if !errors.Is(err, ErrMalformedOutput) {
		t.Fatalf("Inject() error = %v, want ErrMalformedOutput", err)
	}
	if len(rec.Exported) != 0 {
		t.Errorf("Exported = %v, want none", rec.Exported)
	}
}

func TestInject_ExportVariableFails(t *testing.T) {
	rec := actions.NewRecorder(nil)
	rec.ExportErr = errors.New("env file not writable")
	e := NewExporter(&fakeVault{out: []byte(`{"A":"1"}`)}, rec, nil)

	res, err := e.Inject(context.Background(), Options{Vault: "v.yaml", SecretKey: newKey()})
	if err == nil || !strings.Contains(err.Error(), "export A") {
		t.Fatalf("Inject() error = %v, want export failure", err)
	}
	if len(res.Names) != 0 {
		t.Errorf("Names = %v, want none", res.Names)
	}
	// The value is masked before the export is attempted.
	if !rec.IsMasked("1") {
		t.Error("value not masked")
	}
}
