package transport

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/framecheck/framecheck/internal/domain/model"
	"github.com/framecheck/framecheck/internal/infrastructure/logger"
)

const twainParagraph = "It is curious that physical courage should be so common in the world, " +
	"and moral courage so rare. Courage is resistance to fear, mastery of fear, not absence of fear.\n"

func newTestLogger() *logger.Logger {
	return logger.NewLogger(io.Discard, "debug")
}

// newWebroot writes a base directory holding the marker file and a
// twain.txt large enough to span several copy buffers
func newWebroot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"quotes.txt": "Get your facts first, then you can distort them as you please.\n",
		"twain.txt":  strings.Repeat(twainParagraph, 200),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func testProbeConfig() model.ProbeConfig {
	return model.ProbeConfig{
		Timeout:          500 * time.Millisecond,
		DialTimeout:      2 * time.Second,
		MaxResponseBytes: 1 << 20,
	}
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}
