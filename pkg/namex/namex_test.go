package namex

import "testing"

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"essay final.pdf":       "essay_final.pdf",
		"../../etc/passwd":      "passwd",
		"a\x00b\tc.pdf":         "ab_c.pdf",
		"  ":                    "upload",
		"":                      "upload",
		"...":                   "upload",
		"report:v2\\draft.docx": "reportv2draft.docx",
	}
	for in, want := range cases {
		if got := SanitizeFilename(in); got != want {
			t.Fatalf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
