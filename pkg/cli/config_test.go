package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := LoadConfig("clapety")
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	want := filepath.Join(home, DefaultBaseDir, "clapety", DefaultConfigFile)
	if cfg.Path() != want {
		t.Errorf("Path() = %q, want %q", cfg.Path(), want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("config file not created: %v", err)
	}
}

func TestLoadConfigWithPath_NewConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "testapp", "config.yaml")

	cfg, err := LoadConfigWithPath("testapp", configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}

	if cfg.AppName != "testapp" {
		t.Errorf("AppName = %q, want %q", cfg.AppName, "testapp")
	}

	if cfg.Contexts == nil {
		t.Error("Contexts should be initialized")
	}

	// Verify config file was created
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file should be created")
	}
}

func TestConfig_AddContext(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := LoadConfigWithPath("testapp", configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}

	ctx := &Context{
		Model:  "laion/clap-htsat-fused",
		Device: "cpu",
	}

	err = cfg.AddContext("production", ctx)
	if err != nil {
		t.Fatalf("AddContext error: %v", err)
	}

	if cfg.Contexts["production"] == nil {
		t.Fatal("Context not added")
	}

	if cfg.Contexts["production"].Name != "production" {
		t.Errorf("Context.Name = %q, want %q", cfg.Contexts["production"].Name, "production")
	}

	if cfg.Contexts["production"].Model != "laion/clap-htsat-fused" {
		t.Errorf("Context.Model = %q, want %q", cfg.Contexts["production"].Model, "laion/clap-htsat-fused")
	}
}

func TestConfig_DeleteContext(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := LoadConfigWithPath("testapp", configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}

	cfg.AddContext("ctx1", &Context{Model: "model1"})
	cfg.AddContext("ctx2", &Context{Model: "model2"})
	cfg.UseContext("ctx1")

	// Delete non-current context
	err = cfg.DeleteContext("ctx2")
	if err != nil {
		t.Fatalf("DeleteContext error: %v", err)
	}

	if _, ok := cfg.Contexts["ctx2"]; ok {
		t.Error("Context should be deleted")
	}

	// Delete current context
	err = cfg.DeleteContext("ctx1")
	if err != nil {
		t.Fatalf("DeleteContext error: %v", err)
	}

	if cfg.CurrentContext != "" {
		t.Errorf("CurrentContext should be cleared, got %q", cfg.CurrentContext)
	}
}

func TestConfig_DeleteContext_NotFound(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := LoadConfigWithPath("testapp", configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}

	err = cfg.DeleteContext("nonexistent")
	if err == nil {
		t.Error("DeleteContext should fail for non-existent context")
	}
}

func TestConfig_UseContext(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := LoadConfigWithPath("testapp", configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}
	cfg.AddContext("production", &Context{Model: "prod-model"})

	err = cfg.UseContext("production")
	if err != nil {
		t.Fatalf("UseContext error: %v", err)
	}

	if cfg.CurrentContext != "production" {
		t.Errorf("CurrentContext = %q, want %q", cfg.CurrentContext, "production")
	}
}

func TestConfig_UseContext_NotFound(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := LoadConfigWithPath("testapp", configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}

	err = cfg.UseContext("nonexistent")
	if err == nil {
		t.Error("UseContext should fail for non-existent context")
	}
}

func TestConfig_GetContext(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := LoadConfigWithPath("testapp", configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}
	cfg.AddContext("test", &Context{Model: "test-model"})

	ctx, err := cfg.GetContext("test")
	if err != nil {
		t.Fatalf("GetContext error: %v", err)
	}

	if ctx.Model != "test-model" {
		t.Errorf("Model = %q, want %q", ctx.Model, "test-model")
	}
}

func TestConfig_GetContext_NotFound(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := LoadConfigWithPath("testapp", configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}

	_, err = cfg.GetContext("nonexistent")
	if err == nil {
		t.Error("GetContext should fail for non-existent context")
	}
}

func TestConfig_GetCurrentContext(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := LoadConfigWithPath("testapp", configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}
	cfg.AddContext("default", &Context{Model: "default-model"})
	cfg.UseContext("default")

	ctx, err := cfg.GetCurrentContext()
	if err != nil {
		t.Fatalf("GetCurrentContext error: %v", err)
	}

	if ctx.Model != "default-model" {
		t.Errorf("Model = %q, want %q", ctx.Model, "default-model")
	}
}

func TestConfig_GetCurrentContext_NotSet(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := LoadConfigWithPath("testapp", configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}

	_, err = cfg.GetCurrentContext()
	if err == nil {
		t.Error("GetCurrentContext should fail when no current context")
	}
}

func TestConfig_ResolveContext(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := LoadConfigWithPath("testapp", configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}
	cfg.AddContext("ctx1", &Context{Model: "model1"})
	cfg.AddContext("ctx2", &Context{Model: "model2"})
	cfg.UseContext("ctx1")

	// Resolve by name
	ctx, err := cfg.ResolveContext("ctx2")
	if err != nil {
		t.Fatalf("ResolveContext(ctx2) error: %v", err)
	}
	if ctx.Model != "model2" {
		t.Errorf("Model = %q, want %q", ctx.Model, "model2")
	}

	// Resolve current (empty name)
	ctx, err = cfg.ResolveContext("")
	if err != nil {
		t.Fatalf("ResolveContext('') error: %v", err)
	}
	if ctx.Model != "model1" {
		t.Errorf("Model = %q, want %q", ctx.Model, "model1")
	}
}

func TestConfig_ListContexts(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := LoadConfigWithPath("testapp", configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}
	cfg.AddContext("production", &Context{})
	cfg.AddContext("staging", &Context{})
	cfg.AddContext("development", &Context{})

	names := cfg.ListContexts()

	if len(names) != 3 {
		t.Fatalf("len(names) = %d, want 3", len(names))
	}

	// Check all contexts are present
	found := make(map[string]bool)
	for _, name := range names {
		found[name] = true
	}

	for _, expected := range []string{"production", "staging", "development"} {
		if !found[expected] {
			t.Errorf("Missing context: %s", expected)
		}
	}
}

func TestConfig_Path(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := LoadConfigWithPath("testapp", configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}

	if cfg.Path() != configPath {
		t.Errorf("Path() = %q, want %q", cfg.Path(), configPath)
	}
}

func TestConfig_Dir(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := LoadConfigWithPath("testapp", configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}

	if cfg.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), tmpDir)
	}
}

func TestConfig_Persistence(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Create and save config
	cfg1, err := LoadConfigWithPath("testapp", configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}
	cfg1.AddContext("test", &Context{
		Model:      "laion/clap-htsat-fused",
		Device:     "cpu",
		TopK:       5,
		ServerAddr: ":8080",
	})
	cfg1.UseContext("test")

	// Load again
	cfg2, err := LoadConfigWithPath("testapp", configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}

	if cfg2.CurrentContext != "test" {
		t.Errorf("CurrentContext = %q, want %q", cfg2.CurrentContext, "test")
	}

	ctx, err := cfg2.GetContext("test")
	if err != nil {
		t.Fatalf("GetContext error: %v", err)
	}
	if ctx.Model != "laion/clap-htsat-fused" {
		t.Errorf("Model = %q, want %q", ctx.Model, "laion/clap-htsat-fused")
	}
	if ctx.TopK != 5 {
		t.Errorf("TopK = %d, want 5", ctx.TopK)
	}
	if ctx.ServerAddr != ":8080" {
		t.Errorf("ServerAddr = %q, want %q", ctx.ServerAddr, ":8080")
	}
}
