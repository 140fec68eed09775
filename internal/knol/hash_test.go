package knol

import (
	"testing"
)

func TestKey(t *testing.T) {
	if got := Key("What Is HTMX?"); got != "what is htmx?" {
		t.Errorf("Expected key to be 'what is htmx?', but got '%s'", got)
	}
}

func TestHash(t *testing.T) {
	t.Run("hash is deterministic", func(t *testing.T) {
		if Hash("test") != Hash("test") {
			t.Error("Expected hashes for identical keys to be the same")
		}
	})

	t.Run("normalization produces same hash", func(t *testing.T) {
		if Hash(Key("What Is Go?")) != Hash(Key("what is go?")) {
			t.Error("Expected hashes to be the same after normalization, but they were different.")
		}
	})

	t.Run("different keys have different hashes", func(t *testing.T) {
		if Hash("card 1") == Hash("card 2") {
			t.Error("Expected hashes for different keys to be different")
		}
	})
}
