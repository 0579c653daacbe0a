package segname

import "testing"

func TestName(t *testing.T) {
	tt := []struct {
		name         string
		globalPrefix string
		path         string
		version      int
		segment      int
		want         string
	}{
		{
			name:         "simple path",
			globalPrefix: "ndn:/localhost/ndnfs",
			path:         "/a.txt",
			version:      7,
			segment:      0,
			want:         "ndn:/localhost/ndnfs/a.txt/v7/seg0",
		},
		{
			name:         "nested path",
			globalPrefix: "ndn:/localhost/ndnfs",
			path:         "/dir/sub/file.bin",
			version:      12345,
			segment:      3,
			want:         "ndn:/localhost/ndnfs/dir/sub/file.bin/v12345/seg3",
		},
		{
			name:         "trailing slash on prefix is trimmed",
			globalPrefix: "ndn:/localhost/ndnfs/",
			path:         "/a.txt",
			version:      1,
			segment:      0,
			want:         "ndn:/localhost/ndnfs/a.txt/v1/seg0",
		},
		{
			name:         "component needing escape",
			globalPrefix: "ndn:/localhost/ndnfs",
			path:         "/my file.txt",
			version:      1,
			segment:      0,
			want:         "ndn:/localhost/ndnfs/my%20file.txt/v1/seg0",
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got := Name(tc.globalPrefix, tc.path, tc.version, tc.segment)
			if got != tc.want {
				t.Errorf("Name(%q, %q, %d, %d) = %q, want %q",
					tc.globalPrefix, tc.path, tc.version, tc.segment, got, tc.want)
			}
		})
	}
}

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	tt := []string{"a.txt", "my file.txt", "weird%name", "unicode-日本語"}

	for _, component := range tt {
		escaped := EscapeComponent(component)
		got, err := UnescapeComponent(escaped)
		if err != nil {
			t.Fatalf("UnescapeComponent(%q) error: %v", escaped, err)
		}
		if got != component {
			t.Errorf("round trip %q -> %q -> %q, want %q", component, escaped, got, component)
		}
	}
}
