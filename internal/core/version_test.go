package core

import "testing"

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"v1.2.0", "1.2.0"},
		{"devel-ad721b3", "devel-ad721b3"},
		{"devel-ad721b3-dirty", "devel-ad721b3-dirty"},
		{"devel", "devel"},
	}

	for _, tt := range tests {
		if got := FormatVersion(tt.in); got != tt.want {
			t.Errorf("FormatVersion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestVersionIsSet(t *testing.T) {
	if Version == "" {
		t.Error("Version should never be empty")
	}
}
