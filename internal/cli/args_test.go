package cli

import (
	"testing"
)

func TestCommandArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"units list needs building", []string{"units", "list"}},
		{"units add needs building", []string{"units", "add"}},
		{"units edit needs unit", []string{"units", "edit"}},
		{"buildings edit needs id", []string{"buildings", "edit"}},
		{"buildings list takes no args", []string{"buildings", "list", "extra"}},
		{"agreements list needs unit", []string{"agreements", "list"}},
		{"agreements create needs unit", []string{"agreements", "create", "--tenant", "a@b.co"}},
		{"agreements create needs tenant", []string{"agreements", "create", "u1"}},
		{"agreements edit needs id", []string{"agreements", "edit"}},
		{"agreements terminate needs id", []string{"agreements", "terminate"}},
		{"agreements lease needs id", []string{"agreements", "lease"}},
		{"tenants search needs email", []string{"tenants", "search"}},
		{"login takes no args", []string{"login", "extra"}},
		{"cache clear takes no args", []string{"cache", "clear", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			_, err := executeCommand(tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestGuardedCommandsNeedLogin(t *testing.T) {
	tests := [][]string{
		{"buildings", "list"},
		{"stats"},
		{"home"},
		{"agreements", "owner"},
		{"tenants", "list"},
	}

	for _, args := range tests {
		t.Run(args[0], func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			t.Setenv("RR_TOKEN", "")
			t.Setenv("RR_SERVER_URL", "http://127.0.0.1:1")
			_, err := executeCommand(args...)
			if err != errNotLoggedIn {
				t.Fatalf("err = %v, want %v", err, errNotLoggedIn)
			}
		})
	}
}
