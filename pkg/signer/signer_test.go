package signer

import "testing"

func TestSignVerify(t *testing.T) {
	tt := []struct {
		name    string
		keyID   string
		segName string
		content []byte
	}{
		{"basic", "key-a", "ndn:/fs/a.txt/v1/seg0", []byte("hello world")},
		{"empty content", "key-a", "ndn:/fs/empty.txt/v1/seg0", nil},
		{"different key id", "key-b", "ndn:/fs/a.txt/v1/seg0", []byte("hello world")},
	}

	master := []byte("test-master-key-material")

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			s := New(master, tc.keyID)
			sig := s.Sign(tc.segName, tc.content)
			if len(sig) == 0 {
				t.Fatalf("Sign(%q, %v) returned empty signature", tc.segName, tc.content)
			}
			if !s.Verify(tc.segName, tc.content, sig) {
				t.Errorf("Verify(%q, %v, sig) = false, want true", tc.segName, tc.content)
			}
		})
	}
}

func TestVerifyRejectsTamperedInput(t *testing.T) {
	master := []byte("test-master-key-material")
	s := New(master, "key-a")

	name := "ndn:/fs/a.txt/v1/seg0"
	content := []byte("original content")
	sig := s.Sign(name, content)

	if s.Verify(name, []byte("tampered content"), sig) {
		t.Error("Verify accepted a signature over different content")
	}
	if s.Verify("ndn:/fs/a.txt/v2/seg0", content, sig) {
		t.Error("Verify accepted a signature over a different segment name")
	}

	other := New(master, "key-b")
	if other.Verify(name, content, sig) {
		t.Error("Verify accepted a signature produced under a different key identifier")
	}
}
