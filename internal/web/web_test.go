package web_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vim-audiosync/internal/web"
)

func TestTemplates(t *testing.T) {
	tmpl, err := web.Templates()
	require.NoError(t, err)

	for _, name := range []string{"index.html", "login.html", "signup.html", "profile.html", "head"} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestStatic(t *testing.T) {
	f, err := web.Static().Open("app.js")
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Contains(t, string(data), "/paypal/mark-paid/")
	// hasPaid starts true whenever gating is off.
	assert.Contains(t, string(data), "hasPaid: !paymentRequired")

	_, err = web.Static().Open("missing.js")
	assert.Error(t, err)
}
