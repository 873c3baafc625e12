package s3

import "testing"

func TestNewClient(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatalf("expected error for empty endpoint")
	}
	if _, err := NewClient(Config{Endpoint: "localhost:9000"}); err == nil {
		t.Fatalf("expected error for missing credentials")
	}

	client, err := NewClient(Config{Endpoint: "http://localhost:9000", AccessKey: "minio", SecretKey: "minio123"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if got := client.EndpointURL().Host; got != "localhost:9000" {
		t.Fatalf("unexpected endpoint: got %q want %q", got, "localhost:9000")
	}
}
