package lifecycle

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestKeywords(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"Black Phone", "black case"}, []string{"black", "phone", "case"}},
		{[]string{"Wallet, brown; leather!"}, []string{"wallet", "brown", "leather"}},
		{[]string{"ŽOGA", "žoga"}, []string{"žoga"}},
		{[]string{"Room B2-14"}, []string{"room", "b2", "14"}},
		{[]string{"ｆｕｌｌｗｉｄｔｈ"}, []string{"fullwidth"}},
		{[]string{"", "  "}, nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, Keywords(tt.in...)); diff != "" {
			t.Errorf("Keywords(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}
