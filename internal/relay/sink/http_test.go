package sink

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testRequest() *MintRequest {
	return &MintRequest{
		SourceTransactionHash: "0xfeed",
		Recipient:             "0xcccccccccccccccccccccccccccccccccccccccc",
		Token:                 "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		Amount:                "1000000000000000000",
		DestinationChainID:    "0x89",
	}
}

func TestHTTPSinkSubmit(t *testing.T) {
	var received MintRequest
	var gotUA, gotID string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotID = r.Header.Get("X-Relay-Request-ID")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewHTTPSink(server.URL, 5*time.Second)
	if err := s.Submit(context.Background(), testRequest()); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if received.Amount != "1000000000000000000" {
		t.Errorf("amount delivered as %q, want decimal string", received.Amount)
	}
	if received.SourceTransactionHash != "0xfeed" {
		t.Errorf("sourceTransactionHash = %q", received.SourceTransactionHash)
	}
	if gotUA != userAgent {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotID == "" {
		t.Error("missing X-Relay-Request-ID header")
	}
}

func TestHTTPSinkNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "mint rejected", http.StatusBadGateway)
	}))
	defer server.Close()

	s := NewHTTPSink(server.URL, 5*time.Second)
	if err := s.Submit(context.Background(), testRequest()); err == nil {
		t.Fatal("Submit should fail on non-2xx status")
	}
}

func TestHTTPSinkTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	s := NewHTTPSink(server.URL, time.Second)
	if err := s.Submit(context.Background(), testRequest()); err == nil {
		t.Fatal("Submit should fail on transport error")
	}
}
