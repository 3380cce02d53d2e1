package chat_test

import (
	"testing"

	"github.com/tetrlabs/professor-server/chat"
)

func TestIsNoMaterialsFallback(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{"I couldn't find relevant materials for this topic.", true},
		{"No relevant materials found, but generally speaking...", true},
		{"It looks like this content hasn't been uploaded yet.", true},
		{"Osmosis is the movement of water across a membrane.", false},
		{"", false},
	}

	for _, test := range tests {
		if got := chat.IsNoMaterialsFallback(test.content); got != test.want {
			t.Errorf("IsNoMaterialsFallback(%q) = %v; want %v", test.content, got, test.want)
		}
	}
}
