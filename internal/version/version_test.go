package version

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantString string
		wantPre    string
		expectErr  bool
	}{
		{
			name:       "Snapshot version",
			input:      "1.5.0-SNAPSHOT",
			wantString: "1.5.0-SNAPSHOT",
			wantPre:    "SNAPSHOT",
		},
		{
			name:       "Release version",
			input:      "2.0.1",
			wantString: "2.0.1",
		},
		{
			name:       "v prefix kept",
			input:      "v1.2.3",
			wantString: "v1.2.3",
		},
		{
			name:       "Surrounding whitespace trimmed",
			input:      "  1.2.3-rc.1 ",
			wantString: "1.2.3-rc.1",
			wantPre:    "rc.1",
		},
		{
			name:      "Empty",
			input:     "",
			expectErr: true,
		},
		{
			name:      "Missing patch",
			input:     "1.2",
			expectErr: true,
		},
		{
			name:      "Non-numeric parts",
			input:     "a.b.c",
			expectErr: true,
		},
		{
			name:      "Build metadata",
			input:     "1.2.3+build.5",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)

			if tt.expectErr {
				if err == nil {
					t.Errorf("expected error but got none for input %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error for input %q: %v", tt.input, err)
			}
			if got.String() != tt.wantString {
				t.Errorf("String() = %q, want %q", got.String(), tt.wantString)
			}
			if got.Prerelease() != tt.wantPre {
				t.Errorf("Prerelease() = %q, want %q", got.Prerelease(), tt.wantPre)
			}
		})
	}
}

func TestIsSnapshot(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1.5.0-SNAPSHOT", true},
		{"1.5.0-snapshot.2", true},
		{"1.5.0-rc.1", false},
		{"1.5.0", false},
	}

	for _, tt := range tests {
		v, err := Parse(tt.input)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.input, err)
		}
		if got := v.IsSnapshot(); got != tt.want {
			t.Errorf("IsSnapshot(%q) = %v; want %v", tt.input, got, tt.want)
		}
	}
}

func TestZeroValue(t *testing.T) {
	var v Version
	if v.String() != "" || v.Prerelease() != "" || v.IsSnapshot() {
		t.Errorf("zero Version should be empty, got %q pre=%q", v.String(), v.Prerelease())
	}
}

func TestTool(t *testing.T) {
	if got := Tool(); got != "(local)" {
		t.Errorf("Tool() = %q; want (local) without linker flags", got)
	}

	buildVersion, gitCommit = "v1.0.0", "abc1234"
	defer func() { buildVersion, gitCommit = "", "" }()

	got := Tool()
	if got[:13] != "1.0.0 abc1234" {
		t.Errorf("Tool() = %q; want prefix %q", got, "1.0.0 abc1234")
	}
}
