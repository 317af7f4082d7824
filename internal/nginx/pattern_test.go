package nginx

import (
	"testing"
)

// mustCompile resolves and compiles a format, failing the test on error.
func mustCompile(t *testing.T, format string) *CompiledPattern {
	t.Helper()
	template, err := Resolve(format)
	if err != nil {
		t.Fatalf("Resolve(%q): %v", format, err)
	}
	pattern, err := Compile(template)
	if err != nil {
		t.Fatalf("Compile(%q): %v", format, err)
	}
	return pattern
}

func TestCompileCombinedMatchesRealLine(t *testing.T) {
	pattern := mustCompile(t, "combined")

	line := `203.0.113.9 - frank [10/Oct/2000:13:55:36 -0700] "GET /apache_pb.gif HTTP/1.0" 200 2326 "http://www.example.com/start.html" "Mozilla/4.08 [en] (Win98; I ;Nav)"`
	match := pattern.Regexp.FindStringSubmatch(line)
	if match == nil {
		t.Fatal("combined pattern did not match a canonical combined line")
	}

	groups := make(map[string]string)
	for i, name := range pattern.Regexp.SubexpNames() {
		if i > 0 && name != "" {
			groups[name] = match[i]
		}
	}

	want := map[string]string{
		"remote_addr":     "203.0.113.9",
		"remote_user":     "frank",
		"time_local":      "10/Oct/2000:13:55:36 -0700",
		"request":         "GET /apache_pb.gif HTTP/1.0",
		"status":          "200",
		"body_bytes_sent": "2326",
		"http_referer":    "http://www.example.com/start.html",
	}
	for name, value := range want {
		if groups[name] != value {
			t.Errorf("capture %s = %q, want %q", name, groups[name], value)
		}
	}
}

func TestCompileEscapesLiteralMetacharacters(t *testing.T) {
	// Literal text with regexp operators must match only itself.
	pattern := mustCompile(t, `(a.b) [$status] c+d`)

	if m := pattern.Regexp.FindStringSubmatch("(a.b) [404] c+d"); m == nil {
		t.Fatal("pattern did not match the literal text verbatim")
	}
	// A "." treated as an operator would let "aXb" match.
	if m := pattern.Regexp.FindStringSubmatch("(aXb) [404] c+d"); m != nil {
		t.Error("literal dot matched a non-dot character")
	}
	// A "+" treated as an operator would let "ccd" match.
	if m := pattern.Regexp.FindStringSubmatch("(a.b) [404] ccd"); m != nil {
		t.Error("literal plus acted as a repetition operator")
	}
}

func TestCompileAnchorsFullLine(t *testing.T) {
	pattern := mustCompile(t, "$remote_addr $status")

	if m := pattern.Regexp.FindStringSubmatch("10.0.0.1 200"); m == nil {
		t.Fatal("expected match")
	}
	if m := pattern.Regexp.FindStringSubmatch("10.0.0.1 200 trailing"); m != nil {
		t.Error("pattern matched a line with trailing garbage")
	}
	if m := pattern.Regexp.FindStringSubmatch("prefix 10.0.0.1 200"); m != nil {
		t.Error("pattern matched a line with a leading prefix")
	}
}

func TestCompileDuplicateVariableKeepsFirstCapture(t *testing.T) {
	pattern := mustCompile(t, "$status and $status")

	if len(pattern.Names) != 1 || pattern.Names[0] != "status" {
		t.Fatalf("capture names = %v, want [status]", pattern.Names)
	}

	match := pattern.Regexp.FindStringSubmatch("200 and 404")
	if match == nil {
		t.Fatal("duplicate-variable pattern did not match")
	}
	idx := pattern.Regexp.SubexpIndex("status")
	if idx < 0 {
		t.Fatal("no status capture group")
	}
	if match[idx] != "200" {
		t.Errorf("status capture = %q, want first occurrence %q", match[idx], "200")
	}
}

func TestCompileUnknownVariableFallback(t *testing.T) {
	pattern := mustCompile(t, "$mystery_field $status")

	match := pattern.Regexp.FindStringSubmatch("whatever-value 500")
	if match == nil {
		t.Fatal("fallback pattern did not match")
	}
	idx := pattern.Regexp.SubexpIndex("mystery_field")
	if idx < 0 {
		t.Fatal("no capture for unknown variable")
	}
	if match[idx] != "whatever-value" {
		t.Errorf("mystery_field = %q", match[idx])
	}
}
