package htmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestGetText(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(`<p>Troubled <b>Grammar</b></p>`))
	require.NoError(t, err)
	require.Equal(t, "Troubled Grammar", NormalizeText(GetText(doc)))
}

func TestNormalizeText(t *testing.T) {
	testcases := []struct {
		input    string
		expected string
	}{
		{"  Troubled   Grammar \n", "Troubled Grammar"},
		{"\tてしまう ", "てしまう"},
		{"already clean", "already clean"},
		{"", ""},
	}
	for _, tc := range testcases {
		require.Equal(t, tc.expected, NormalizeText(tc.input))
	}
}
