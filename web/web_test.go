package web

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataNames(t *testing.T) {
	assert.ElementsMatch(t, []string{"labels", "releases"}, DataNames())
}

func TestStatic(t *testing.T) {
	for _, name := range []string{"site.css", "slider.js"} {
		_, err := fs.Stat(Static(), name)
		require.NoError(t, err, name)
	}
}
