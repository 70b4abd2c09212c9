package extraction

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseRules_ListsReplaceDefaultsPerKey(t *testing.T) {
	t.Parallel()

	rules := DefaultRules()
	raw := []byte(`
auth:
  login_paths: [entrar]
routes:
  votes: /pagelle
`)
	if err := ParseRules(raw, &rules); err != nil {
		t.Fatalf("parse rules: %v", err)
	}

	if len(rules.Auth.LoginPaths) != 1 || rules.Auth.LoginPaths[0] != "entrar" {
		t.Fatalf("expected login paths to be replaced, got %v", rules.Auth.LoginPaths)
	}
	if len(rules.Auth.LogoutKeywords) != len(DefaultRules().Auth.LogoutKeywords) {
		t.Fatalf("expected logout keywords to keep defaults, got %v", rules.Auth.LogoutKeywords)
	}
	if path, _ := rules.Route("votes"); path != "/pagelle" {
		t.Fatalf("expected overridden votes route, got %q", path)
	}
	if path, _ := rules.Route("rosters"); path != "/rose" {
		t.Fatalf("expected default rosters route, got %q", path)
	}
}

func TestLoadRules(t *testing.T) {
	t.Parallel()

	t.Run("empty path returns defaults", func(t *testing.T) {
		rules, err := LoadRules("")
		if err != nil {
			t.Fatalf("load rules: %v", err)
		}
		if rules.Consent.MaxTextLength != 40 {
			t.Fatalf("unexpected consent max text length: %d", rules.Consent.MaxTextLength)
		}
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		if err := os.WriteFile(path, []byte("consent:\n  keywords: [aceptar]\n"), 0o600); err != nil {
			t.Fatalf("write rules: %v", err)
		}
		rules, err := LoadRules(path)
		if err != nil {
			t.Fatalf("load rules: %v", err)
		}
		if len(rules.Consent.Keywords) != 1 || rules.Consent.Keywords[0] != "aceptar" {
			t.Fatalf("unexpected consent keywords: %v", rules.Consent.Keywords)
		}
	})

	t.Run("missing file fails", func(t *testing.T) {
		if _, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Fatalf("expected error for missing file")
		}
	})
}
