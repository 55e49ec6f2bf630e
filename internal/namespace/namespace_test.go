package namespace

import (
	"errors"
	"testing"
)

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"single segment", "file"},
		{"two segments", "file.save"},
		{"deep", "system.io.file.opened"},
		{"bare wildcard", "*"},
		{"trailing wildcard", "file.*"},
		{"deep trailing wildcard", "system.io.*"},
		{"hyphenated segment", "broker.subscriber-added"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
			}
			if ns.String() != tt.input {
				t.Errorf("Parse(%q) = %q", tt.input, ns)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"leading separator", ".file"},
		{"trailing separator", "file."},
		{"consecutive separators", "file..save"},
		{"only separator", "."},
		{"wildcard not final", "file.*.save"},
		{"wildcard mixed with text", "file.sav*"},
		{"leading wildcard", "*.save"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Parse(%q) error = %v, want ErrMalformed", tt.input, err)
			}
		})
	}
}

func TestNamespace_Segments(t *testing.T) {
	ns := Namespace("system.io.opened")
	segs := ns.Segments()
	want := []string{"system", "io", "opened"}

	if len(segs) != len(want) {
		t.Fatalf("Segments() = %v, want %v", segs, want)
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Errorf("Segments()[%d] = %q, want %q", i, segs[i], want[i])
		}
	}

	if Namespace("").Segments() != nil {
		t.Error("empty namespace should have nil segments")
	}
}

func TestNamespace_SegmentCount(t *testing.T) {
	tests := []struct {
		ns   Namespace
		want int
	}{
		{"", 0},
		{"file", 1},
		{"file.save", 2},
		{"a.b.c.d", 4},
	}

	for _, tt := range tests {
		if got := tt.ns.SegmentCount(); got != tt.want {
			t.Errorf("SegmentCount(%q) = %d, want %d", tt.ns, got, tt.want)
		}
	}
}

func TestNamespace_IsWildcard(t *testing.T) {
	tests := []struct {
		ns   Namespace
		want bool
	}{
		{"*", true},
		{"file.*", true},
		{"system.io.*", true},
		{"file", false},
		{"file.save", false},
	}

	for _, tt := range tests {
		if got := tt.ns.IsWildcard(); got != tt.want {
			t.Errorf("IsWildcard(%q) = %v, want %v", tt.ns, got, tt.want)
		}
	}
}

func TestNamespace_Base(t *testing.T) {
	tests := []struct {
		ns   Namespace
		want Namespace
	}{
		{"file.*", "file"},
		{"system.io.*", "system.io"},
		{"*", ""},
		{"file.save", "file.save"},
	}

	for _, tt := range tests {
		if got := tt.ns.Base(); got != tt.want {
			t.Errorf("Base(%q) = %q, want %q", tt.ns, got, tt.want)
		}
	}
}

func TestNamespace_Child(t *testing.T) {
	if got := Namespace("system").Child("io"); got != "system.io" {
		t.Errorf("Child() = %q, want %q", got, "system.io")
	}
	if got := Namespace("").Child("root"); got != "root" {
		t.Errorf("Child() on empty = %q, want %q", got, "root")
	}
}

func TestNamespace_Matches(t *testing.T) {
	tests := []struct {
		name    string
		pattern Namespace
		target  Namespace
		want    bool
	}{
		{"exact match", "file.save", "file.save", true},
		{"exact mismatch", "file.save", "file.open", false},
		{"concrete does not match child", "file", "file.save", false},
		{"wildcard matches base", "file.*", "file", true},
		{"wildcard matches child", "file.*", "file.save", true},
		{"wildcard matches grandchild", "file.*", "file.save.auto", true},
		{"wildcard mismatch sibling", "file.*", "filesystem", false},
		{"wildcard mismatch unrelated", "file.*", "net.open", false},
		{"bare wildcard matches all", "*", "anything.at.all", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pattern.Matches(tt.target); got != tt.want {
				t.Errorf("%q.Matches(%q) = %v, want %v", tt.pattern, tt.target, got, tt.want)
			}
		})
	}
}
