package gemini

import (
	"testing"

	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
)

func TestExtractJSON(t *testing.T) {
	got, ok := ExtractJSON("```json\n{\"a\":{\"b\":1}}\n```")
	if !ok || got != `{"a":{"b":1}}` {
		t.Fatalf("unexpected extraction %q ok=%v", got, ok)
	}
	if _, ok := ExtractJSON("no json here"); ok {
		t.Fatalf("expected no match")
	}
	if _, ok := ExtractJSON("} backwards {"); ok {
		t.Fatalf("expected no match for reversed braces")
	}
}

func TestDecodeJSONMalformedIsUpstream(t *testing.T) {
	var out map[string]any
	err := DecodeJSON("{not json}", &out)
	if !pkgerrors.IsCode(err, pkgerrors.CodeUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if err := DecodeJSON(`reply {"risk":"נמוך"}`, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["risk"] != "נמוך" {
		t.Fatalf("unexpected value %v", out)
	}
}

func TestSplitDataURL(t *testing.T) {
	mime, data := SplitDataURL("data:image/png;base64,QUJD")
	if mime != "image/png" || data != "QUJD" {
		t.Fatalf("unexpected split %s %s", mime, data)
	}
	mime, data = SplitDataURL("QUJD")
	if mime != "image/jpeg" || data != "QUJD" {
		t.Fatalf("raw base64 should pass through, got %s %s", mime, data)
	}
}
