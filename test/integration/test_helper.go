package integration

import (
	"os"
	"testing"
	"time"
)

// BaseURL points the suite at a running API instance.
var BaseURL = "http://localhost:8080"

func TestMain(m *testing.M) {
	if url := os.Getenv("PAD_API_URL"); url != "" {
		BaseURL = url
	}

	// Give the service a moment to come up when the suite starts with it.
	time.Sleep(5 * time.Second)

	os.Exit(m.Run())
}
