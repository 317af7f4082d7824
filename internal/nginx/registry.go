// Package nginx translates NGINX log-format descriptions into line
// matching patterns and typed field extraction.
package nginx

import (
	"sort"

	"github.com/topngx/topngx/pkg/types"
)

// VariableSpec describes how one log-format variable is matched and
// what kind of value it captures.
type VariableSpec struct {
	// Name is the variable name without the leading dollar sign.
	Name string

	// Pattern is the regexp fragment the variable matches. It contains
	// no capture groups of its own.
	Pattern string

	// Kind is the semantic kind of the captured value.
	Kind types.Kind
}

// fallbackPattern matches anything non-greedily. It is used for
// variables that are not in the registry.
const fallbackPattern = `.*?`

// registry holds the specs for all known NGINX log-format variables.
var registry = map[string]VariableSpec{
	"remote_addr":            {Name: "remote_addr", Pattern: `[0-9a-fA-F.:]+`, Kind: types.KindIPAddress},
	"remote_user":            {Name: "remote_user", Pattern: `[^\s]+`, Kind: types.KindString},
	"time_local":             {Name: "time_local", Pattern: `[^\]]+`, Kind: types.KindTimestamp},
	"time_iso8601":           {Name: "time_iso8601", Pattern: `[^\]]+`, Kind: types.KindTimestamp},
	"msec":                   {Name: "msec", Pattern: `\d+\.\d+`, Kind: types.KindTimestamp},
	"request":                {Name: "request", Pattern: `[^"]*`, Kind: types.KindQuotedString},
	"request_method":         {Name: "request_method", Pattern: `[A-Z]+`, Kind: types.KindString},
	"request_uri":            {Name: "request_uri", Pattern: `[^\s]+`, Kind: types.KindString},
	"request_length":         {Name: "request_length", Pattern: `\d+`, Kind: types.KindInteger},
	"request_time":           {Name: "request_time", Pattern: `\d+(?:\.\d+)?`, Kind: types.KindString},
	"uri":                    {Name: "uri", Pattern: `[^\s]+`, Kind: types.KindString},
	"args":                   {Name: "args", Pattern: `[^\s]*`, Kind: types.KindString},
	"status":                 {Name: "status", Pattern: `\d+`, Kind: types.KindInteger},
	"body_bytes_sent":        {Name: "body_bytes_sent", Pattern: `\d+`, Kind: types.KindInteger},
	"bytes_sent":             {Name: "bytes_sent", Pattern: `\d+`, Kind: types.KindInteger},
	"http_referer":           {Name: "http_referer", Pattern: `[^"]*`, Kind: types.KindQuotedString},
	"http_user_agent":        {Name: "http_user_agent", Pattern: `[^"]*`, Kind: types.KindQuotedString},
	"http_x_forwarded_for":   {Name: "http_x_forwarded_for", Pattern: `[^"]*`, Kind: types.KindQuotedString},
	"http_host":              {Name: "http_host", Pattern: `[^\s]+`, Kind: types.KindString},
	"host":                   {Name: "host", Pattern: `[^\s]+`, Kind: types.KindString},
	"server_name":            {Name: "server_name", Pattern: `[^\s]+`, Kind: types.KindString},
	"server_protocol":        {Name: "server_protocol", Pattern: `[^\s]+`, Kind: types.KindString},
	"scheme":                 {Name: "scheme", Pattern: `https?`, Kind: types.KindString},
	"gzip_ratio":             {Name: "gzip_ratio", Pattern: `[^\s]+`, Kind: types.KindString},
	"connection":             {Name: "connection", Pattern: `\d+`, Kind: types.KindInteger},
	"connection_requests":    {Name: "connection_requests", Pattern: `\d+`, Kind: types.KindInteger},
	"pipe":                   {Name: "pipe", Pattern: `[p.]`, Kind: types.KindString},
	"upstream_addr":          {Name: "upstream_addr", Pattern: `[^\s]+`, Kind: types.KindString},
	"upstream_status":        {Name: "upstream_status", Pattern: `[^\s]+`, Kind: types.KindString},
	"upstream_response_time": {Name: "upstream_response_time", Pattern: `[^\s]+`, Kind: types.KindString},
}

// Lookup returns the spec for a variable name. Unknown names get a
// permissive non-greedy fallback of kind raw; Lookup never fails.
func Lookup(name string) VariableSpec {
	if spec, ok := registry[name]; ok {
		return spec
	}
	return VariableSpec{Name: name, Pattern: fallbackPattern, Kind: types.KindRaw}
}

// IsKnown reports whether name is a registered variable.
func IsKnown(name string) bool {
	_, ok := registry[name]
	return ok
}

// KnownNames returns the sorted names of all registered variables.
func KnownNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
