package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/framecheck/framecheck/internal/application/service"
	"github.com/framecheck/framecheck/internal/domain/model"
	"github.com/framecheck/framecheck/internal/infrastructure/filestore"
)

func newFileServer(t *testing.T) (*httptest.Server, *url.URL) {
	t.Helper()
	store, err := filestore.New(newWebroot(t), "quotes.txt")
	if err != nil {
		t.Fatal(err)
	}
	log := newTestLogger()
	files := service.NewFileService(store, log, model.DefaultBufferSize)

	srv := httptest.NewServer(NewFileHandler(files, log))
	t.Cleanup(srv.Close)
	return srv, mustParseURL(t, srv.URL+"/")
}

func TestScenarioCatalog(t *testing.T) {
	_, target := newFileServer(t)
	verifier := service.NewVerifyService(NewProber(testProbeConfig(), newTestLogger()), nil, newTestLogger())

	for _, scenario := range service.DefaultScenarios() {
		scenario := scenario
		t.Run(scenario.Name, func(t *testing.T) {
			t.Parallel()
			result := verifier.Check(context.Background(), target, scenario)

			if scenario.KnownInvalid {
				if result.Outcome != model.OutcomeExpectedFailure {
					t.Errorf("Outcome = %s, want xfail", result.Outcome)
				}
				return
			}
			if result.Outcome != model.OutcomePass {
				t.Fatalf("Outcome = %s: %s", result.Outcome, result.Error)
			}
		})
	}
}

func TestScenarioFraming(t *testing.T) {
	_, target := newFileServer(t)
	p := NewProber(testProbeConfig(), newTestLogger())
	scenarios := service.DefaultScenarios()

	tests := []struct {
		name      string
		chunked   bool
		header    string
		value     string
		connClose bool
	}{
		{"http10-withlen", false, "Content-Length", strconv.Itoa(200 * len(twainParagraph)), true},
		{"http10-keepalive-withlen", false, "Connection", "keep-alive", false},
		{"http11-close-withlen", false, "Content-Length", strconv.Itoa(200 * len(twainParagraph)), true},
		{"http11-close-identity", false, "Content-Length", "", true},
		{"http10-keepalive-nolen", false, "Content-Length", "", true},
		{"http11-nolen", true, "Transfer-Encoding", "chunked", false},
		{"http11-close-nolen", true, "Transfer-Encoding", "chunked", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario, ok := service.FindScenario(scenarios, tt.name)
			if !ok {
				t.Fatalf("scenario %s not in catalog", tt.name)
			}
			raw := scenario.Bytes(target.Host)

			var c *model.WireClassification
			var err error
			if tt.chunked {
				c, err = p.AssertChunked(context.Background(), raw, target)
			} else {
				c, err = p.AssertNotChunked(context.Background(), raw, target)
			}
			if err != nil {
				t.Fatalf("assertion failed: %v", err)
			}

			if got := c.Header(tt.header); got != tt.value {
				t.Errorf("%s = %q, want %q", tt.header, got, tt.value)
			}
			if got := c.Header("Connection") == "close"; got != tt.connClose {
				t.Errorf("Connection: close present = %v, want %v (headers %v)", got, tt.connClose, c.HeaderBlock)
			}
		})
	}
}

func TestProbeIsIdempotent(t *testing.T) {
	_, target := newFileServer(t)
	verifier := service.NewVerifyService(NewProber(testProbeConfig(), newTestLogger()), nil, newTestLogger())

	var summaries []*model.RunSummary
	ok, err := verifier.Watch(context.Background(), target, service.DefaultScenarios(), 2, 0, func(s *model.RunSummary) {
		summaries = append(summaries, s)
	})
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if !ok {
		t.Errorf("Watch() ok = false, summaries %+v %+v", summaries[0], summaries[len(summaries)-1])
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}
	if summaries[0].Passed != summaries[1].Passed || summaries[1].ExpectedFailures != 1 {
		t.Errorf("summaries differ: %+v vs %+v", summaries[0], summaries[1])
	}
}

func TestFileHandlerNotFound(t *testing.T) {
	srv, _ := newFileServer(t)

	for _, path := range []string{"/", "/withlen/absent.txt", "/nolen/", "/twain.txt"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, resp.StatusCode)
		}
		if len(body) != 0 {
			t.Errorf("GET %s body = %q, want empty", path, body)
		}
	}
}

func TestFileHandlerMethodNotAllowed(t *testing.T) {
	srv, _ := newFileServer(t)

	resp, err := http.Post(srv.URL+"/withlen/twain.txt", "text/plain", strings.NewReader("x"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestFileHandlerContent(t *testing.T) {
	srv, _ := newFileServer(t)
	expected := strings.Repeat(twainParagraph, 200)

	for _, prefix := range []string{"/withlen/", "/nolen/", "/identity/"} {
		resp, err := http.Get(srv.URL + prefix + "twain.txt")
		if err != nil {
			t.Fatal(err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("%s: read error %v", prefix, err)
		}
		if string(body) != expected {
			t.Errorf("%s: body length %d, want %d", prefix, len(body), len(expected))
		}
		if ct := resp.Header.Get("Content-Type"); ct != "text/plain" {
			t.Errorf("%s: Content-Type = %q", prefix, ct)
		}
	}
}

type brokenStore struct{}

func (brokenStore) Resolve(requestPath string) (*model.ResourceRef, error) {
	return &model.ResourceRef{Path: requestPath, Name: requestPath, KnownLength: 100000, ContentType: "text/plain"}, nil
}

func (brokenStore) Open(ref *model.ResourceRef) (io.ReadCloser, error) {
	return io.NopCloser(io.MultiReader(strings.NewReader(strings.Repeat("x", 1000)), errReader{})), nil
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) {
	return 0, errors.New("disk went away")
}

func TestStreamingFailureDropsConnection(t *testing.T) {
	log := newTestLogger()
	files := service.NewFileService(brokenStore{}, log, 256)
	srv := httptest.NewServer(NewFileHandler(files, log))
	defer srv.Close()

	tests := []struct {
		prefix string
		// headerSent is set when the header is flushed before the body, so
		// the failure can only show up as a truncated body
		headerSent bool
	}{
		{"/withlen/", false},
		{"/nolen/", true},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.prefix + "big.txt")
			if err != nil {
				if tt.headerSent {
					t.Fatalf("GET error = %v, want a response with a truncated body", err)
				}
				return
			}
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Errorf("status = %d, want 200", resp.StatusCode)
			}
			if err == nil {
				t.Errorf("read a complete %d byte body from a failed stream", len(body))
			}
			if len(body) >= 100000 {
				t.Errorf("body length = %d, want it cut short", len(body))
			}
		})
	}
}

func TestServerServeAndShutdown(t *testing.T) {
	store, err := filestore.New(newWebroot(t), "quotes.txt")
	if err != nil {
		t.Fatal(err)
	}
	log := newTestLogger()
	cfg := model.NewConfig().Server
	cfg.ListenAddress = "127.0.0.1:0"
	cfg.MaxConnections = 4

	srv := NewServer(cfg, NewFileHandler(service.NewFileService(store, log, cfg.BufferSize), log), log)
	addr, err := srv.Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	target := mustParseURL(t, "http://"+addr.String()+"/")
	p := NewProber(testProbeConfig(), log)
	raw := []byte("GET /nolen/twain.txt HTTP/1.1\r\nHost: " + target.Host + "\r\nConnection: close\r\n\r\n")
	if _, err := p.AssertChunked(context.Background(), raw, target); err != nil {
		t.Errorf("AssertChunked() error = %v", err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}
