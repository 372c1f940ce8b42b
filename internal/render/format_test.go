// format_test.go covers the filter predicate and JSON pretty-printing policy.
package render

import "testing"

func TestFormatGrepIsPurePredicate(t *testing.T) {
	f := Formatter{Grep: "ERROR"}
	if _, ok := f.Format("INFO all good"); ok {
		t.Fatalf("line without filter substring must be dropped")
	}
	got, ok := f.Format("ERROR boom")
	if !ok || got != "ERROR boom" {
		t.Fatalf("line with filter substring must be emitted verbatim, got %q ok=%v", got, ok)
	}
}

func TestFormatGrepAppliesBeforeJSONTransform(t *testing.T) {
	f := Formatter{Grep: "ERROR", PrettyJSON: true}
	if _, ok := f.Format(`{"level":"info","msg":"fine"}`); ok {
		t.Fatalf("JSON mode must not change inclusion")
	}
	got, ok := f.Format(`{"level":"ERROR","msg":"boom"}`)
	if !ok {
		t.Fatalf("matching JSON line must be emitted")
	}
	if got != "[ERROR] no-ts: boom" {
		t.Fatalf("unexpected pretty output %q", got)
	}
}

func TestFormatPrettyJSONStandardFields(t *testing.T) {
	f := Formatter{PrettyJSON: true}
	got, ok := f.Format(`{"timestamp":"2025-07-28T12:00:00Z","message":"Started up","level":"info"}`)
	if !ok || got != "[info] 2025-07-28T12:00:00Z: Started up" {
		t.Fatalf("unexpected output %q ok=%v", got, ok)
	}
}

func TestFormatPrettyJSONAltFields(t *testing.T) {
	f := Formatter{PrettyJSON: true}
	got, ok := f.Format(`{"ts":"2025-07-28T12:01:00Z","msg":"Service healthy","lvl":"debug"}`)
	if !ok || got != "[debug] 2025-07-28T12:01:00Z: Service healthy" {
		t.Fatalf("unexpected output %q ok=%v", got, ok)
	}
}

func TestFormatPrettyJSONLogAndTimeFields(t *testing.T) {
	f := Formatter{PrettyJSON: true}
	got, ok := f.Format(`{"log":"Request received","time":"2025-07-28T12:02:00Z"}`)
	if !ok || got != "[INFO] 2025-07-28T12:02:00Z: Request received" {
		t.Fatalf("unexpected output %q ok=%v", got, ok)
	}
}

func TestFormatPrettyJSONMissingFields(t *testing.T) {
	f := Formatter{PrettyJSON: true}
	got, ok := f.Format(`{"foo":"bar"}`)
	if !ok || got != "[INFO] no-ts: no-msg" {
		t.Fatalf("unexpected output %q ok=%v", got, ok)
	}
}

func TestFormatNonJSONPassesThroughUnchanged(t *testing.T) {
	f := Formatter{PrettyJSON: true}
	for _, line := range []string{
		"this is not json",
		"{broken json",
		"42",
		`["an","array"]`,
		"",
	} {
		got, ok := f.Format(line)
		if !ok || got != line {
			t.Fatalf("expected passthrough for %q, got %q ok=%v", line, got, ok)
		}
	}
}

func TestFormatNoPolicyIsIdentity(t *testing.T) {
	f := Formatter{}
	got, ok := f.Format(`{"msg":"untouched"}`)
	if !ok || got != `{"msg":"untouched"}` {
		t.Fatalf("expected identity without policy, got %q ok=%v", got, ok)
	}
}
