package types

import "testing"

func TestKindSQLType(t *testing.T) {
	if got := KindInteger.SQLType(); got != "INTEGER" {
		t.Errorf("integer SQL type = %q", got)
	}
	for _, k := range []Kind{KindString, KindQuotedString, KindIPAddress, KindTimestamp, KindRaw} {
		if got := k.SQLType(); got != "TEXT" {
			t.Errorf("%s SQL type = %q, want TEXT", k, got)
		}
	}
}

func TestIsDerivedField(t *testing.T) {
	for _, name := range DerivedFields() {
		if !IsDerivedField(name) {
			t.Errorf("IsDerivedField(%q) = false", name)
		}
	}
	if IsDerivedField("status") {
		t.Error("status is not a derived field")
	}
	if IsDerivedField("") {
		t.Error("empty string is not a derived field")
	}
}
