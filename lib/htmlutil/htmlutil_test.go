package htmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestGetText(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(
		`<html><body><h3>Sony <b>a7 IV</b> Mirrorless Camera</h3></body></html>`,
	))
	require.NoError(t, err)
	require.Equal(t, "Sony a7 IV Mirrorless Camera", GetText(doc))
}

func TestCleanText(t *testing.T) {
	cases := []struct {
		input  string
		expect string
	}{
		{"  Canon EOS R5  ", "Canon EOS R5"},
		{"Canon\n\tEOS   R5", "Canon EOS R5"},
		{"FUJIFILM X100VI​", "FUJIFILM X100VI"},
		{"", ""},
	}
	for _, test := range cases {
		require.Equal(t, test.expect, CleanText(test.input))
	}
}
