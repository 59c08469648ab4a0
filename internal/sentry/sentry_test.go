package sentry

import "testing"

func TestInitializeDisabledWithoutToken(t *testing.T) {
	t.Parallel()

	if err := Initialize(Config{}); err != nil {
		t.Errorf("Initialize with empty token should be a no-op, got %v", err)
	}
}

func TestInitializeRequiresHost(t *testing.T) {
	t.Parallel()

	err := Initialize(Config{
		Token: "token",
		Host:  "",
	})
	if err == nil {
		t.Error("Initialize should fail when token is set but host is empty")
	}
}

func TestCaptureErrorNilIsNoop(t *testing.T) {
	t.Parallel()

	// Must not panic with a nil error or an uninitialized hub.
	CaptureError(nil)
}
