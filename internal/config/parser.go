package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/savesecrets/slv-action/internal/platform"
	lua "github.com/yuin/gopher-lua"
)

// Parser evaluates Lua config files with platform detection.
type Parser struct {
	detector platform.Detector
	logger   Logger
	timeout  time.Duration
}

// NewParser creates a new config parser with the given platform detector.
// logger receives warnings about credential-looking content and may be nil.
func NewParser(detector platform.Detector, logger Logger) *Parser {
	return &Parser{
		detector: detector,
		logger:   OrNop(logger),
		timeout:  DefaultParseTimeout,
	}
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// ParseFile reads and evaluates the Lua file at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*FileConfig, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > maxConfigSize {
		return nil, &ParseError{
			Message: "config file too large",
			Detail:  fmt.Sprintf("%d bytes exceeds limit of %d", info.Size(), maxConfigSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	for _, finding := range DetectSensitiveData(string(data)) {
		p.logger.Warn("config file may contain a credential", "file", path, "line", finding.Line, "kind", finding.PatternName)
	}
	return p.ParseString(ctx, string(data))
}

// ParseString evaluates Lua source held in memory. Evaluation is bounded by
// DefaultParseTimeout unless ctx already carries a deadline.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*FileConfig, error) {
	if _, ok := ctx.Deadline(); !ok && p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		info, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, info); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("evaluate config: %w", ctxErr)
		}
		return nil, &ParseError{Message: "Lua syntax error", Detail: trimTraceback(err.Error())}
	}

	return extractConfig(L)
}

// extractConfig reads the global "slv" table.
func extractConfig(L *lua.LState) (*FileConfig, error) {
	value := L.GetGlobal(luaGlobalSLV)
	if value.Type() == lua.LTNil {
		return &FileConfig{}, nil
	}
	table, ok := value.(*lua.LTable)
	if !ok {
		return nil, &ParseError{
			Message: fmt.Sprintf("invalid '%s' value", luaGlobalSLV),
			Detail:  fmt.Sprintf("expected table, got %s", value.Type()),
		}
	}

	if table.RawGetString(luaFieldSecret).Type() != lua.LTNil {
		return nil, &ParseError{
			Message: fmt.Sprintf("'%s' is not allowed in the config file", luaFieldSecret),
			Detail:  "pass the key through the " + InputEnvSecretKey + " input",
		}
	}

	cfg := &FileConfig{}
	var err error
	if cfg.Version, err = stringField(table, luaFieldVersion); err != nil {
		return nil, err
	}
	if cfg.Vault, err = stringField(table, luaFieldVault); err != nil {
		return nil, err
	}
	if cfg.Prefix, err = stringField(table, luaFieldPrefix); err != nil {
		return nil, err
	}
	return cfg, nil
}

// stringField returns a string field. Nil (e.g. from platform.when) reads
// as empty.
func stringField(table *lua.LTable, name string) (string, error) {
	v := table.RawGetString(name)
	switch v.Type() {
	case lua.LTNil:
		return "", nil
	case lua.LTString:
		return strings.TrimSpace(v.String()), nil
	default:
		return "", &ParseError{
			Message: fmt.Sprintf("invalid '%s.%s'", luaGlobalSLV, name),
			Detail:  fmt.Sprintf("expected string, got %s", v.Type()),
		}
	}
}

func trimTraceback(detail string) string {
	if idx := strings.Index(detail, "stack traceback"); idx > 0 {
		return strings.TrimSpace(detail[:idx])
	}
	return detail
}
