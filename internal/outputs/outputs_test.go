package outputs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAssignsSequentialIDs(t *testing.T) {
	r := New([]Output{{Name: "alsa"}, {Name: "httpd"}})
	got := r.List()
	assert.EqualValues(t, 0, got[0].ID)
	assert.EqualValues(t, 1, got[1].ID)
}

func TestEnableDisableToggle(t *testing.T) {
	r := New([]Output{{Name: "alsa", Enabled: false}})
	assert.True(t, r.Enable(0))
	assert.True(t, r.List()[0].Enabled)

	assert.True(t, r.Disable(0))
	assert.False(t, r.List()[0].Enabled)

	assert.True(t, r.Toggle(0))
	assert.True(t, r.List()[0].Enabled)

	assert.False(t, r.Enable(99))
}

func TestSetAttribute(t *testing.T) {
	r := New([]Output{{Name: "alsa"}})
	assert.True(t, r.SetAttribute(0, "allowed_formats", "44100:16:2"))
	assert.Equal(t, "44100:16:2", r.List()[0].Attrs["allowed_formats"])
	assert.False(t, r.SetAttribute(42, "x", "y"))
}
