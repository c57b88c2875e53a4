package note

import (
	"testing"
)

func TestFingerprint(t *testing.T) {
	if got := Fingerprint(nil); got != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Fatalf("empty fingerprint mismatch: %s", got)
	}
	if got := Fingerprint([]byte("abc")); got != "900150983cd24fb0d6963f7d28e17f72" {
		t.Fatalf("abc fingerprint mismatch: %s", got)
	}
}

func TestNewFileID(t *testing.T) {
	id := NewFileID()
	if len(id) != 33 {
		t.Fatalf("file id %q has length %d, want 33", id, len(id))
	}
	if id[0] != 'F' {
		t.Fatalf("file id %q must start with F", id)
	}
	for i := 1; i <= 17; i++ {
		if id[i] < '0' || id[i] > '9' {
			t.Fatalf("file id %q: byte %d is not a digit", id, i)
		}
	}
	for i := 18; i < len(id); i++ {
		c := id[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			t.Fatalf("file id %q: byte %d is not alphanumeric", id, i)
		}
	}
}

func TestNewPageID(t *testing.T) {
	id := NewPageID()
	if len(id) != 33 || id[0] != 'P' {
		t.Fatalf("unexpected page id %q", id)
	}
	if id == NewPageID() {
		t.Fatal("two generated page ids collided")
	}
}

func TestEncodeStyleListEntry(t *testing.T) {
	if got := EncodeStyleListEntry("user_pdf_doc_1"); got != "dXNlcl9wZGZfZG9jXzE=" {
		t.Fatalf("unexpected encoding %q", got)
	}
}
