package pubsub

import (
	"context"
	"testing"

	"github.com/angelmondragon/packfinderz-offers/pkg/config"
)

func TestResourceName(t *testing.T) {
	cases := []struct {
		project, kind, name, want string
	}{
		{"proj", "topics", "priced-orders", "projects/proj/topics/priced-orders"},
		{"proj", "topics", " projects/other/topics/t ", "projects/other/topics/t"},
		{"", "topics", "priced-orders", ""},
		{"proj", "topics", "  ", ""},
		{"proj", "subscriptions", "projects/proj/topics/t", "projects/proj/subscriptions/projects/proj/topics/t"},
	}
	for _, tc := range cases {
		if got := resourceName(tc.project, tc.kind, tc.name); got != tc.want {
			t.Fatalf("resourceName(%q,%q,%q)=%q want %q", tc.project, tc.kind, tc.name, got, tc.want)
		}
	}
}

func TestTopicNamesSkipsBlank(t *testing.T) {
	names := topicNames(config.PubSubConfig{OrdersTopic: " priced-orders ", OffersTopic: ""})
	if len(names) != 1 || names[0] != "priced-orders" {
		t.Fatalf("unexpected topics %v", names)
	}
}

func TestNewClientRequiresProject(t *testing.T) {
	if _, err := NewClient(context.Background(), config.GCPConfig{}, config.PubSubConfig{}, nil); err != errProjectIDRequired {
		t.Fatalf("expected project id error, got %v", err)
	}
}

func TestNilClientHelpers(t *testing.T) {
	var c *Client
	if c.Publisher("priced-orders") != nil {
		t.Fatal("nil client should not build publishers")
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error on nil client")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close should be a no-op, got %v", err)
	}
}
