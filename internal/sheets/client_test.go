package sheets

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_EmptyPathYieldsDisabledClient(t *testing.T) {
	c, err := New(context.Background(), "", testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Enabled() {
		t.Error("client with no credentials must be disabled")
	}
}

func TestAppend_DisabledIsNoop(t *testing.T) {
	c, _ := New(context.Background(), "", testLogger())
	if err := c.Append(context.Background(), "sid", "Issues", []string{"a", "b"}); err != nil {
		t.Errorf("disabled append must not fail: %v", err)
	}
}

func TestTestConnection_DisabledFails(t *testing.T) {
	c, _ := New(context.Background(), "", testLogger())
	if _, err := c.TestConnection(context.Background(), "sid"); err == nil {
		t.Error("disabled client cannot verify a connection")
	}
}
