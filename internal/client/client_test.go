package client

import (
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	c := New("", "alice")
	if c.baseURL != "http://localhost:8484" {
		t.Errorf("baseURL = %q", c.baseURL)
	}
	if c.httpClient.Timeout != 10*time.Minute {
		t.Errorf("timeout = %v, want 10m", c.httpClient.Timeout)
	}
	if c.token != "" {
		t.Errorf("token = %q, want empty", c.token)
	}
}

func TestNewOptions(t *testing.T) {
	c := New("http://mailbrief.internal:9001/", "alice",
		WithTimeout(30*time.Second),
		WithToken("hunter2"),
	)
	if c.baseURL != "http://mailbrief.internal:9001" {
		t.Errorf("baseURL = %q, want trailing slash trimmed", c.baseURL)
	}
	if c.httpClient.Timeout != 30*time.Second {
		t.Errorf("timeout = %v", c.httpClient.Timeout)
	}
	if c.token != "hunter2" {
		t.Errorf("token = %q", c.token)
	}

	// Zero duration keeps the default rather than disabling the timeout.
	c = New("", "alice", WithTimeout(0))
	if c.httpClient.Timeout != 10*time.Minute {
		t.Errorf("timeout after WithTimeout(0) = %v, want 10m", c.httpClient.Timeout)
	}
}
