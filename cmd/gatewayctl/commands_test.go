package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "", "version")
	if err != nil || !strings.Contains(out, "gen-gateway dev") {
		t.Fatalf("unexpected version output %q err=%v", out, err)
	}
}

func TestProvidersCommandListsOrder(t *testing.T) {
	t.Setenv("GATEWAY_CONFIG", "")
	t.Setenv("GATEWAY_PROVIDER_ORDER", "groq,gemini")
	t.Setenv("GROQ_API_KEY", "gk")
	t.Setenv("GEMINI_API_KEY", "")
	out, err := run(t, "", "providers")
	if err != nil {
		t.Fatalf("providers: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "1\tgroq\tconfigured") || !strings.HasPrefix(lines[1], "2\tgemini\t-") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	t.Setenv("GATEWAY_CONFIG", "")
	t.Setenv("GATEWAY_PROVIDER_ORDER", "gemini,mistral")
	if _, err := run(t, "", "validate"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestGenerateWithoutProvidersFails(t *testing.T) {
	t.Setenv("GATEWAY_CONFIG", "")
	t.Setenv("GATEWAY_PROVIDER_ORDER", "")
	for _, k := range []string{"GEMINI_API_KEY", "GROQ_API_KEY", "OPENROUTER_API_KEY", "ANTHROPIC_API_KEY", "OPENAI_API_KEY"} {
		t.Setenv(k, "")
	}
	t.Setenv("LOG_OUTPUT", filepath.Join(t.TempDir(), "log.jsonl"))
	_, err := run(t, "hello from stdin", "generate")
	if err == nil || !strings.Contains(err.Error(), "no providers configured") {
		t.Fatalf("expected no providers error, got %v", err)
	}
}

func TestAuditExportCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "audit.jsonl")
	if err := os.WriteFile(in, []byte(`{"ts":"t","request_id":"r1","actor":"cli","status":"ok","attempts":1,"latency_ms":5}`+"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	outPath := filepath.Join(dir, "audit.csv")
	if _, err := run(t, "", "audit-export", in, outPath); err != nil {
		t.Fatalf("audit-export: %v", err)
	}
	b, err := os.ReadFile(outPath)
	if err != nil || !strings.Contains(string(b), "r1,cli") {
		t.Fatalf("unexpected csv %q err=%v", string(b), err)
	}
}
