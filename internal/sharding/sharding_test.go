package sharding

import (
	"strings"
	"testing"
)

func TestGetShardIDIsStable(t *testing.T) {
	a := GetShardID("processo-123")
	b := GetShardID("processo-123")
	if a != b {
		t.Fatalf("shard id not deterministic: %d vs %d", a, b)
	}
	if a < 0 || a >= ShardCount {
		t.Fatalf("shard id out of range: %d", a)
	}
}

func TestGetSubject(t *testing.T) {
	subject := GetSubject("abc")
	if !strings.HasPrefix(subject, "processo.evento.") {
		t.Fatalf("unexpected subject prefix: %q", subject)
	}
	if !strings.HasSuffix(subject, ".abc") {
		t.Fatalf("subject should end with the process id: %q", subject)
	}
}
