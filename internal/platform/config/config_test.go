package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	env := map[string]string{
		"API_MONDAY_TOKEN":    "token-local",
		"API_MONDAY_BOARD_ID": "1234567890",
	}

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Monday.Endpoint != defaultMondayEndpoint {
		t.Errorf("expected default endpoint, got %s", cfg.Monday.Endpoint)
	}
	if cfg.Monday.Timeout != defaultMondayTimeout {
		t.Errorf("unexpected monday timeout: %s", cfg.Monday.Timeout)
	}
	if cfg.Monday.MUABoardID != 0 || cfg.Monday.HairstylistBoardID != 0 {
		t.Errorf("expected zero relation board overrides, got %d/%d", cfg.Monday.MUABoardID, cfg.Monday.HairstylistBoardID)
	}
	if cfg.Triade.RequireSignedTokens {
		t.Error("expected signed tokens off by default")
	}
	if cfg.Events.Enabled {
		t.Error("expected events disabled by default")
	}
	if cfg.Events.Topic != defaultEventsTopic {
		t.Errorf("unexpected default events topic: %s", cfg.Events.Topic)
	}
}

func TestLoadWithOverridesAndSecrets(t *testing.T) {
	env := map[string]string{
		"API_SERVER_PORT":                  "9090",
		"API_SERVER_READ_TIMEOUT":          "20s",
		"API_SERVER_IDLE_TIMEOUT":          "2m",
		"API_MONDAY_TOKEN":                 "secret://monday/token",
		"API_MONDAY_ENDPOINT":              "https://monday.example.com/v2",
		"API_MONDAY_TIMEOUT":               "10s",
		"API_MONDAY_BOARD_ID":              "111",
		"API_MONDAY_CONTACTS_BOARD_ID":     "222",
		"API_MONDAY_MUA_BOARD_ID":          "1260830748",
		"API_MONDAY_HAIRSTYLIST_BOARD_ID":  "1260998854",
		"API_FIRESTORE_PROJECT_ID":         "triade-prod",
		"API_TRIADE_SIGNING_SECRET":        "secret://triade/signing",
		"API_TRIADE_REQUIRE_SIGNED_TOKENS": "true",
		"API_TRIADE_LINK_BASE_URL":         "https://forms.example.com",
		"API_EVENTS_ENABLED":               "true",
		"API_EVENTS_TOPIC":                 "intake-prod",
	}

	secrets := map[string]string{
		"secret://monday/token":   "monday-token",
		"secret://triade/signing": "signing-secret",
	}

	resolver := SecretResolverFunc(func(_ context.Context, ref string) (string, error) {
		if v, ok := secrets[ref]; ok {
			return v, nil
		}
		return "", &SecretError{Ref: ref, Err: errSecretResolverNotConfigured}
	})

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""), WithSecretResolver(resolver))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Server.IdleTimeout != 2*time.Minute {
		t.Errorf("unexpected idle timeout: %s", cfg.Server.IdleTimeout)
	}
	if cfg.Monday.Token != "monday-token" {
		t.Errorf("expected resolved monday token, got %s", cfg.Monday.Token)
	}
	if cfg.Monday.Endpoint != "https://monday.example.com/v2" {
		t.Errorf("unexpected endpoint %s", cfg.Monday.Endpoint)
	}
	if cfg.Monday.Timeout != 10*time.Second {
		t.Errorf("unexpected monday timeout %s", cfg.Monday.Timeout)
	}
	if cfg.Monday.BoardID != 111 || cfg.Monday.ContactsBoardID != 222 {
		t.Errorf("unexpected board ids %d/%d", cfg.Monday.BoardID, cfg.Monday.ContactsBoardID)
	}
	if cfg.Monday.MUABoardID != 1260830748 || cfg.Monday.HairstylistBoardID != 1260998854 {
		t.Errorf("unexpected relation board ids %d/%d", cfg.Monday.MUABoardID, cfg.Monday.HairstylistBoardID)
	}
	if cfg.Triade.SigningSecret != "signing-secret" {
		t.Errorf("expected resolved signing secret, got %s", cfg.Triade.SigningSecret)
	}
	if !cfg.Triade.RequireSignedTokens {
		t.Error("expected signed tokens required")
	}
	if cfg.Triade.LinkBaseURL != "https://forms.example.com" {
		t.Errorf("unexpected link base url %s", cfg.Triade.LinkBaseURL)
	}
	if !cfg.Events.Enabled || cfg.Events.Topic != "intake-prod" {
		t.Errorf("unexpected events config %+v", cfg.Events)
	}
	if cfg.Events.ProjectID != "triade-prod" {
		t.Errorf("expected events project to default to firestore project, got %s", cfg.Events.ProjectID)
	}
}

func TestLoadDotEnvFallback(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env.test")
	content := "API_SERVER_PORT=7070\nAPI_MONDAY_TOKEN=token-dot\nAPI_MONDAY_BOARD_ID=999\n"
	if err := os.WriteFile(envPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write dotenv file: %v", err)
	}

	cfg, err := Load(context.Background(), WithEnvFile(envPath), WithoutSystemEnv())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "7070" {
		t.Errorf("expected port from dotenv 7070, got %s", cfg.Server.Port)
	}
	if cfg.Monday.Token != "token-dot" {
		t.Errorf("expected monday token from dotenv, got %s", cfg.Monday.Token)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	_, err := Load(context.Background(), WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}

func TestLoadSignedTokensRequireSecret(t *testing.T) {
	env := map[string]string{
		"API_MONDAY_TOKEN":                 "token",
		"API_MONDAY_BOARD_ID":              "111",
		"API_TRIADE_REQUIRE_SIGNED_TOKENS": "true",
	}

	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	fields := validation.Fields()
	if len(fields) != 1 || fields[0] != "Triade.SigningSecret" {
		t.Fatalf("unexpected missing fields %v", fields)
	}
}

func TestLoadSecretResolverError(t *testing.T) {
	env := map[string]string{
		"API_MONDAY_TOKEN":    "secret://missing",
		"API_MONDAY_BOARD_ID": "111",
	}

	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected secret resolution error, got nil")
	}
	var secretErr *SecretError
	if !errors.As(err, &secretErr) {
		t.Fatalf("expected SecretError, got %T", err)
	}
	if secretErr.Ref != "secret://missing" {
		t.Errorf("unexpected secret ref %s", secretErr.Ref)
	}
}

func TestEnvironmentValuesMergesSources(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env.test")
	content := "API_FIRESTORE_PROJECT_ID=dot-project\nAPI_SECRET_FALLBACK_FILE=.dot.local\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("failed writing env file: %v", err)
	}

	t.Setenv("API_FIRESTORE_PROJECT_ID", "os-project")
	t.Setenv("API_SECRET_PROJECT_IDS", "prod=project-prod")

	overrides := map[string]string{
		"API_FIRESTORE_PROJECT_ID": "override-project",
		"API_SECRET_VERSION_PINS":  "secret://monday/token=5",
	}

	values, err := EnvironmentValues(WithEnvFile(envPath), WithEnvMap(overrides))
	if err != nil {
		t.Fatalf("EnvironmentValues returned error: %v", err)
	}

	if got := values["API_FIRESTORE_PROJECT_ID"]; got != "override-project" {
		t.Fatalf("expected override project, got %s", got)
	}
	if got := values["API_SECRET_FALLBACK_FILE"]; got != ".dot.local" {
		t.Fatalf("expected dotenv fallback file, got %s", got)
	}
	if got := values["API_SECRET_PROJECT_IDS"]; got != "prod=project-prod" {
		t.Fatalf("expected system env project map, got %s", got)
	}
	if got := values["API_SECRET_VERSION_PINS"]; got != "secret://monday/token=5" {
		t.Fatalf("expected override version pin, got %s", got)
	}
}

func TestLoadMissingRequiredSecrets(t *testing.T) {
	env := map[string]string{
		"API_MONDAY_TOKEN":    "token",
		"API_MONDAY_BOARD_ID": "111",
	}

	_, err := Load(context.Background(),
		WithEnvMap(env),
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithRequiredSecrets("Triade.SigningSecret"),
	)
	if err == nil {
		t.Fatal("expected missing secrets error, got nil")
	}
	var missing *MissingSecretsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingSecretsError, got %T", err)
	}
	expectedRedacted := redactSecretName("Triade.SigningSecret")
	if got := missing.RedactedNames(); len(got) != 1 || got[0] != expectedRedacted {
		t.Fatalf("unexpected redacted names %v", got)
	}
}

func TestLoadMissingRequiredSecretsPanic(t *testing.T) {
	env := map[string]string{
		"API_MONDAY_TOKEN":    "token",
		"API_MONDAY_BOARD_ID": "111",
	}

	defer func() {
		rec := recover()
		if rec == nil {
			t.Fatal("expected panic when required secrets missing")
		}
		missing, ok := rec.(*MissingSecretsError)
		if !ok {
			t.Fatalf("expected MissingSecretsError panic, got %T", rec)
		}
		if len(missing.Names()) != 1 || missing.Names()[0] != "Triade.SigningSecret" {
			t.Fatalf("unexpected missing secrets %v", missing.Names())
		}
	}()

	Load(context.Background(),
		WithEnvMap(env),
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithRequiredSecrets("Triade.SigningSecret"),
		WithPanicOnMissingSecrets(),
	)
}

func TestLoadSupportsLegacySecretScheme(t *testing.T) {
	env := map[string]string{
		"API_MONDAY_TOKEN":    "sm://monday/token",
		"API_MONDAY_BOARD_ID": "111",
	}

	secrets := map[string]string{
		"secret://monday/token": "legacy-token",
	}

	resolver := SecretResolverFunc(func(_ context.Context, ref string) (string, error) {
		if v, ok := secrets[ref]; ok {
			return v, nil
		}
		return "", &SecretError{Ref: ref, Err: errors.New("not found")}
	})

	cfg, err := Load(context.Background(),
		WithEnvMap(env),
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithSecretResolver(resolver),
	)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Monday.Token != "legacy-token" {
		t.Fatalf("expected legacy token, got %s", cfg.Monday.Token)
	}
}
