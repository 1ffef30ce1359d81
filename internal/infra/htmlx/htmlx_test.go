package htmlx

import "testing"

func TestPlainText(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"  plain text  ", "plain text"},
		{"a < b and c > d", "a < b and c > d"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{"<p>First</p><p>Second</p>", "First\nSecond"},
		{"line<br>next<br/>last", "line\nnext\nlast"},
		{"<b>bold</b> move<script>alert(1)</script>", "bold move"},
	}
	for _, tc := range cases {
		if got := PlainText(tc.in); got != tc.want {
			t.Fatalf("PlainText(%q)=%q 期望 %q", tc.in, got, tc.want)
		}
	}
}
