package project

import "testing"

func TestRelativize(t *testing.T) {
	tests := []struct {
		name string
		root string
		path string
		want string
		ok   bool
	}{
		{name: "under root", root: "src", path: "src/foo/bar.fl", want: "foo/bar.fl", ok: true},
		{name: "dot root", root: ".", path: "foo/bar.fl", want: "foo/bar.fl", ok: true},
		{name: "empty root", root: "", path: "foo.fl", want: "foo.fl", ok: true},
		{name: "nested root", root: "src/gen", path: "src/gen/a.fl", want: "a.fl", ok: true},
		{name: "not under root", root: "src", path: "app/main.fl", ok: false},
		{name: "prefix but not dir", root: "src", path: "src2/foo.fl", ok: false},
		{name: "equal to root", root: "src", path: "src", want: "", ok: true},
		{name: "unclean inputs", root: "./src/", path: "src/./foo.fl", want: "foo.fl", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Relativize(tt.root, tt.path)
			if ok != tt.ok {
				t.Fatalf("Relativize(%q, %q) ok = %v, want %v", tt.root, tt.path, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Fatalf("Relativize(%q, %q) = %q, want %q", tt.root, tt.path, got, tt.want)
			}
		})
	}
}

func TestEqualPaths(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{name: "identical", a: "foo/bar", b: "foo/bar", want: true},
		{name: "unclean", a: "foo//bar", b: "foo/bar", want: true},
		{name: "dot segments", a: "./foo/bar", b: "foo/bar", want: true},
		{name: "different", a: "foo/bar", b: "foo/baz", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EqualPaths(tt.a, tt.b); got != tt.want {
				t.Fatalf("EqualPaths(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestStripExt(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "foo/bar.fl", want: "foo/bar"},
		{in: "foo/bar", want: "foo/bar"},
		{in: "foo.x/bar.fl", want: "foo.x/bar"},
		{in: "bar.test.fl", want: "bar.test"},
	}

	for _, tt := range tests {
		if got := StripExt(tt.in); got != tt.want {
			t.Fatalf("StripExt(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestModulePathForm(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "simple", in: "widgets", want: "widgets"},
		{name: "nested", in: "widgets/render", want: "widgets/render"},
		{name: "extension stripped", in: "widgets/render.fl", want: "widgets/render"},
		{name: "backslashes", in: `widgets\render`, want: "widgets/render"},
		{name: "leading slash", in: "/widgets", want: "widgets"},
		{name: "empty", in: "", wantErr: true},
		{name: "empty segment", in: "a//b", wantErr: true},
		{name: "dot segment", in: "a/./b", wantErr: true},
		{name: "parent segment", in: "../a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ModulePathForm(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ModulePathForm(%q) returned error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ModulePathForm(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
