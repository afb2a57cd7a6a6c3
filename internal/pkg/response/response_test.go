package response

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeEnvelopeWithMeta(t *testing.T) {
	rr := httptest.NewRecorder()
	WithMeta(rr, []map[string]string{{"id": "a"}, {"id": "b"}}, Meta{Total: 5, Page: 1, Limit: 2, Pages: 3, HasNext: true})

	resp, err := Decode(rr.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Meta == nil || resp.Meta.Pages != 3 || !resp.Meta.HasNext {
		t.Fatalf("unexpected envelope: %+v", resp)
	}

	var items []map[string]string
	if err := resp.Into(&items); err != nil {
		t.Fatalf("into: %v", err)
	}
	if len(items) != 2 || items[1]["id"] != "b" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestDecodeErrorEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorWithDetails(rr, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Validation failed", map[string]string{"email": "required"})

	resp, err := Decode(rr.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success || resp.Error == nil || resp.Error.Details["email"] != "required" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestDecodeBareBody(t *testing.T) {
	resp, err := Decode(strings.NewReader(`{"secure_url":"https://cdn/x.jpg"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var out struct {
		SecureURL string `json:"secure_url"`
	}
	if err := resp.Into(&out); err != nil {
		t.Fatalf("into: %v", err)
	}
	if out.SecureURL != "https://cdn/x.jpg" {
		t.Fatalf("unexpected data: %+v", out)
	}
}

func TestDecodeEmptyBody(t *testing.T) {
	resp, err := Decode(strings.NewReader("  "))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Fatal("expected empty body to be a success")
	}
	var v map[string]any
	if err := resp.Into(&v); err != nil || v != nil {
		t.Fatalf("expected no-op decode, got %v %v", v, err)
	}
}
