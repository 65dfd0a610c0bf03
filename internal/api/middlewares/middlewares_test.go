package middlewares_test

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	mw "github.com/5w1tchy/bookshelf/internal/api/middlewares"
)

var quiet = log.New(io.Discard)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestBodySizeLimit_AcceptsSmallBodies(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("received: " + string(body)))
	})

	req := httptest.NewRequest("POST", "/test", bytes.NewReader([]byte("small body")))
	rec := httptest.NewRecorder()
	mw.BodySizeLimit(1024)(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}

func TestBodySizeLimit_RejectsLargeBodies(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, "body too large", http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	for _, method := range []string{"POST", "PUT"} {
		req := httptest.NewRequest(method, "/test", bytes.NewReader(bytes.Repeat([]byte("a"), 2048)))
		rec := httptest.NewRecorder()
		mw.BodySizeLimit(1024)(handler).ServeHTTP(rec, req)

		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("%s: expected 413, got %d", method, rec.Code)
		}
	}
}

func TestBodySizeLimit_OnlyAppliesToMutatingMethods(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			t.Errorf("GET body should not be limited: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/test", strings.NewReader("should not matter"))
	rec := httptest.NewRecorder()
	mw.BodySizeLimit(4)(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for GET, got %d", rec.Code)
	}
}

func TestRecovery(t *testing.T) {
	panicHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	rec := httptest.NewRecorder()
	mw.RequestID(mw.Recovery(quiet)(panicHandler)).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "Internal Server Error\n" {
		t.Errorf("Expected error message, got: %s", body)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID header")
	}
}

func TestRecoveryDoesNotInterceptNormalRequests(t *testing.T) {
	normalHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	})

	req := httptest.NewRequest("GET", "/test", nil)
	rec := httptest.NewRecorder()
	mw.Recovery(quiet)(normalHandler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "success" {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"generates", "", false},
		{"keeps valid", "custom-request-id", true},
		{"rejects invalid", "invalid@#$%id", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := mw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = mw.GetRequestID(r)
			}))
			req := httptest.NewRequest("GET", "/test", nil)
			if tt.incoming != "" {
				req.Header.Set("X-Request-ID", tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			rid := rec.Header().Get("X-Request-ID")
			if rid == "" || rid != seen {
				t.Fatalf("response id %q, context id %q", rid, seen)
			}
			if (rid == tt.incoming) != tt.keep {
				t.Fatalf("keep = %v, got %q for incoming %q", tt.keep, rid, tt.incoming)
			}
		})
	}
}

func TestResponseTime(t *testing.T) {
	for _, h := range []http.HandlerFunc{
		ok,
		func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("test response")) },
		func(w http.ResponseWriter, r *http.Request) {},
	} {
		rec := httptest.NewRecorder()
		mw.ResponseTime(h).ServeHTTP(rec, httptest.NewRequest("GET", "/test", nil))
		if rec.Header().Get("X-Response-Time") == "" {
			t.Error("Expected X-Response-Time header")
		}
	}
}

func TestAccessLog_RecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	h := mw.AccessLog(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/brew", nil))

	out := buf.String()
	if !strings.Contains(out, "GET /brew") || !strings.Contains(out, "418") {
		t.Fatalf("log line = %q", out)
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	mw.SecurityHeaders(false)(http.HandlerFunc(ok)).ServeHTTP(rec, httptest.NewRequest("GET", "/test", nil))

	tests := []struct {
		header   string
		expected string
	}{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "DENY"},
		{"Referrer-Policy", "same-origin"},
		{"Content-Security-Policy", "default-src 'self'; form-action 'self'; frame-ancestors 'none'; base-uri 'none'"},
	}
	for _, tt := range tests {
		if got := rec.Header().Get(tt.header); got != tt.expected {
			t.Errorf("Header %s: expected %q, got %q", tt.header, tt.expected, got)
		}
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}
	if rec.Header().Get("Cross-Origin-Opener-Policy") != "" {
		t.Error("COOP is opt-in")
	}
}

func TestSecurityHeaders_HSTS_OverHTTPS(t *testing.T) {
	rec := httptest.NewRecorder()
	mw.SecurityHeaders(true)(http.HandlerFunc(ok)).ServeHTTP(rec, httptest.NewRequest("GET", "https://example.com/test", nil))

	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Error("Expected HSTS over TLS")
	}
	if rec.Header().Get("Cross-Origin-Opener-Policy") != "same-origin" {
		t.Error("Expected COOP in strict mode")
	}
}

func TestHPP_CollapsesDuplicatesKeepsKeys(t *testing.T) {
	var got url.Values
	h := mw.HPP(mw.DefaultHPPOptions())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/?title=a&title=b&anything=1", nil))

	if got.Get("anything") != "1" {
		t.Fatal("empty whitelist must keep every key")
	}
	if v := got["title"]; len(v) != 1 || v[0] != "a" {
		t.Fatalf("title = %v, want [a]", v)
	}
}

func TestHPP_WhitelistDropsOthers(t *testing.T) {
	var got url.Values
	opts := mw.DefaultHPPOptions()
	opts.Whitelist = []string{"page"}
	h := mw.HPP(opts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/?page=2&evil=1", nil))

	if got.Get("evil") != "" || got.Get("page") != "2" {
		t.Fatalf("query = %v", got)
	}
}

func TestHPP_Body(t *testing.T) {
	var got url.Values
	h := mw.HPP(mw.DefaultHPPOptions())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.PostForm
	}))
	req := httptest.NewRequest("POST", "/create", strings.NewReader("title=x&title=y&is_wonder=true"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if v := got["title"]; len(v) != 1 || v[0] != "x" {
		t.Fatalf("title = %v", v)
	}
	if got.Get("is_wonder") != "true" {
		t.Fatalf("form = %v", got)
	}
}

func TestCompression(t *testing.T) {
	h := mw.Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello hello hello"))
	}))
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatal("expected gzip encoding")
	}
	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(zr)
	if string(body) != "hello hello hello" {
		t.Fatalf("body = %q", body)
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	tag := func(name string) mw.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := mw.Chain(http.HandlerFunc(ok), tag("a"), tag("b"), tag("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if strings.Join(order, ",") != "a,b,c" {
		t.Fatalf("order = %v", order)
	}
}

func TestUserIDContext(t *testing.T) {
	ctx := mw.WithUserID(t.Context(), "u-1")
	if id, ok := mw.UserIDFrom(ctx); !ok || id != "u-1" {
		t.Fatalf("got %q %v", id, ok)
	}
	if _, ok := mw.UserIDFrom(t.Context()); ok {
		t.Fatal("empty context has no user")
	}
}
