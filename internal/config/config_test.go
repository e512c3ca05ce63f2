package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/smileynet/contactbook/internal/contact"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contactbook.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Store.Path != "contacts.json" {
		t.Errorf("default path = %q, want %q", cfg.Store.Path, "contacts.json")
	}
	if cfg.Phone.MinDigits != 7 || cfg.Phone.MaxDigits != 15 {
		t.Errorf("default phone bounds = [%d,%d], want [7,15]", cfg.Phone.MinDigits, cfg.Phone.MaxDigits)
	}
	if cfg.Display.Sort != "name" {
		t.Errorf("default sort = %q, want %q", cfg.Display.Sort, "name")
	}
	if cfg.Log.File != "" {
		t.Errorf("default log file = %q, want empty", cfg.Log.File)
	}
}

func TestConfig_Policy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Phone = Phone{MinDigits: 10, MaxDigits: 10}
	if got := cfg.Policy(); got != (contact.Policy{MinDigits: 10, MaxDigits: 10}) {
		t.Errorf("Policy() = %+v", got)
	}
}

func TestConfig_SortOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Display = Display{Sort: "Email", Descending: true}
	key, dir := cfg.SortOrder()
	if key != "email" || dir != contact.Descending {
		t.Errorf("SortOrder() = %q, %v; want email, desc", key, dir)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	path := writeConfig(t, `
store:
  path: /data/book.csv
  format: csv
phone:
  min_digits: 10
  max_digits: 10
display:
  sort: phone
  descending: true
log:
  level: debug
  file: /tmp/contactbook.log
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Path != "/data/book.csv" || cfg.Store.Format != "csv" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Phone.MinDigits != 10 || cfg.Phone.MaxDigits != 10 {
		t.Errorf("phone = %+v", cfg.Phone)
	}
	if cfg.Display.Sort != "phone" || !cfg.Display.Descending {
		t.Errorf("display = %+v", cfg.Display)
	}
	if cfg.Log.Level != "debug" || cfg.Log.File != "/tmp/contactbook.log" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/contactbook.yaml")
	if err != nil {
		t.Fatalf("Load() should return defaults for missing file, got error: %v", err)
	}
	want := DefaultConfig()
	if *cfg != want {
		t.Errorf("Load(missing) = %+v, want defaults %+v", *cfg, want)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "{{invalid yaml")
	if _, err := Load(path); err == nil {
		t.Fatal("Load(invalid YAML) should return error")
	}
}

func TestLoad_UnknownField(t *testing.T) {
	path := writeConfig(t, `
store:
  pth: contacts.json
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load() should return error for unknown field 'pth'")
	}
}

func TestLoad_PartialConfig(t *testing.T) {
	path := writeConfig(t, `
phone:
  max_digits: 12
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Phone.MaxDigits != 12 {
		t.Errorf("max digits = %d, want 12", cfg.Phone.MaxDigits)
	}
	// Unset fields should retain defaults.
	if cfg.Phone.MinDigits != 7 {
		t.Errorf("min digits = %d, want default 7", cfg.Phone.MinDigits)
	}
	if cfg.Store.Path != "contacts.json" {
		t.Errorf("path = %q, want default", cfg.Store.Path)
	}
}

func TestLoad_CommentOnlyAndEmpty(t *testing.T) {
	for name, content := range map[string]string{"comment-only": "# just a comment\n", "empty": ""} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, content))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if want := DefaultConfig(); *cfg != want {
				t.Errorf("Load() = %+v, want defaults %+v", *cfg, want)
			}
		})
	}
}

func TestLoadLayered_Priority(t *testing.T) {
	// Given a user config setting the file and bounds, and a project config
	// overriding only the upper bound
	userCfg := writeConfig(t, `
store:
  path: ~/contacts.json
phone:
  min_digits: 8
  max_digits: 14
`)
	projectCfg := writeConfig(t, `
phone:
  max_digits: 10
`)

	// When both are layered
	cfg, err := LoadLayered(userCfg, projectCfg)
	if err != nil {
		t.Fatalf("LoadLayered() error = %v", err)
	}

	// Then each field comes from the highest layer that sets it
	if cfg.Store.Path != "~/contacts.json" {
		t.Errorf("path = %q, want user value", cfg.Store.Path)
	}
	if cfg.Phone.MinDigits != 8 {
		t.Errorf("min digits = %d, want user value 8", cfg.Phone.MinDigits)
	}
	if cfg.Phone.MaxDigits != 10 {
		t.Errorf("max digits = %d, want project value 10", cfg.Phone.MaxDigits)
	}
	if cfg.Display.Sort != "name" {
		t.Errorf("sort = %q, want default", cfg.Display.Sort)
	}
}

func TestLoadLayered_AllMissing(t *testing.T) {
	cfg, err := LoadLayered("/no/user.yaml", "/no/project.yaml")
	if err != nil {
		t.Fatalf("LoadLayered(all missing) error = %v", err)
	}
	if want := DefaultConfig(); *cfg != want {
		t.Errorf("got %+v, want defaults %+v", *cfg, want)
	}
}

func TestLoadLayered_BadLayer(t *testing.T) {
	good := writeConfig(t, "store:\n  path: a.json\n")
	bad := writeConfig(t, "store:\n  colour: blue\n")
	if _, err := LoadLayered(good, bad); err == nil {
		t.Fatal("LoadLayered() should fail on a layer with unknown fields")
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name    string
		envs    map[string]string
		wantErr bool
		check   func(*testing.T, Config)
	}{
		{
			name: "CONTACTBOOK_FILE overrides path",
			envs: map[string]string{"CONTACTBOOK_FILE": "/tmp/book.csv"},
			check: func(t *testing.T, c Config) {
				if c.Store.Path != "/tmp/book.csv" {
					t.Errorf("path = %q, want %q", c.Store.Path, "/tmp/book.csv")
				}
			},
		},
		{
			name: "CONTACTBOOK_FORMAT overrides format",
			envs: map[string]string{"CONTACTBOOK_FORMAT": "csv"},
			check: func(t *testing.T, c Config) {
				if c.Store.Format != "csv" {
					t.Errorf("format = %q, want csv", c.Store.Format)
				}
			},
		},
		{
			name: "phone bounds",
			envs: map[string]string{"CONTACTBOOK_PHONE_MIN": "10", "CONTACTBOOK_PHONE_MAX": "10"},
			check: func(t *testing.T, c Config) {
				if c.Phone.MinDigits != 10 || c.Phone.MaxDigits != 10 {
					t.Errorf("phone = %+v, want [10,10]", c.Phone)
				}
			},
		},
		{
			name: "CONTACTBOOK_LOG_LEVEL overrides level",
			envs: map[string]string{"CONTACTBOOK_LOG_LEVEL": "debug"},
			check: func(t *testing.T, c Config) {
				if c.Log.Level != "debug" {
					t.Errorf("level = %q, want debug", c.Log.Level)
				}
			},
		},
		{
			name:    "invalid CONTACTBOOK_PHONE_MIN returns error",
			envs:    map[string]string{"CONTACTBOOK_PHONE_MIN": "seven"},
			wantErr: true,
		},
		{
			name:    "invalid CONTACTBOOK_PHONE_MAX returns error",
			envs:    map[string]string{"CONTACTBOOK_PHONE_MAX": "1.5"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envs {
				t.Setenv(k, v)
			}
			cfg := DefaultConfig()
			err := cfg.ApplyEnv()

			if tt.wantErr {
				if err == nil {
					t.Fatal("ApplyEnv() should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnv() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", modify: func(*Config) {}},
		{name: "empty path", modify: func(c *Config) { c.Store.Path = "" }, wantErr: true},
		{name: "known format", modify: func(c *Config) { c.Store.Format = "csv" }},
		{name: "unknown format", modify: func(c *Config) { c.Store.Format = "xml" }, wantErr: true},
		{name: "zero min digits", modify: func(c *Config) { c.Phone.MinDigits = 0 }, wantErr: true},
		{name: "max below min", modify: func(c *Config) { c.Phone.MaxDigits = 5 }, wantErr: true},
		{name: "fixed length", modify: func(c *Config) { c.Phone = Phone{MinDigits: 10, MaxDigits: 10} }},
		{name: "recent sort", modify: func(c *Config) { c.Display.Sort = "recent" }},
		{name: "unknown sort", modify: func(c *Config) { c.Display.Sort = "age" }, wantErr: true},
		{name: "unknown log level", modify: func(c *Config) { c.Log.Level = "loud" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
