package chrome_test

import (
	"context"
	"errors"
	"testing"

	"github.com/projdesk/projdesk/pkg/chrome"
)

func TestOpenRequiresURL(t *testing.T) {
	t.Parallel()

	_, err := chrome.Open(context.Background(), chrome.Config{})
	if !errors.Is(err, chrome.ErrURLMustBeSet) {
		t.Fatalf("expected `chrome.ErrURLMustBeSet`, got: %v", err)
	}
}

func TestAllocatorOptions(t *testing.T) {
	t.Setenv("PROJDESK_CHROME_NO_SANDBOX", "")

	base := len(chrome.AllocatorOptions(chrome.Config{URL: "http://localhost:8080/"}))

	got := len(chrome.AllocatorOptions(chrome.Config{URL: "http://localhost:8080/", NoSandbox: true}))
	if got != base+1 {
		t.Fatalf("expected no-sandbox to add one option, got: %v (base %v)", got, base)
	}
}
