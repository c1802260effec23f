package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLuna(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"4539578763621486", true},
		{"4111111111111111", true},
		{"4111111111111112", false},
		{"abc", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLuna(tt.in))
		})
	}
}

func TestMasking(t *testing.T) {
	assert.Equal(t, "4111111111111111", DigitsOnly("4111 1111-1111 1111"))
	assert.Equal(t, "****1111", MaskNumber("4111111111111111"))
	assert.Equal(t, "****12", MaskNumber("12"))
	assert.Equal(t, "", MaskNumber(" "))
	assert.Equal(t, "as***@okbank", MaskHandle("asha.k@okbank"))
	assert.Equal(t, "a***@okbank", MaskHandle("a@okbank"))
	assert.Equal(t, "****6789", MaskHandle("123456789"))
}

func TestIdentifiers(t *testing.T) {
	assert.True(t, IsUPIID("asha@okbank"))
	assert.False(t, IsUPIID("asha"))
	assert.False(t, IsUPIID("@okbank"))
	assert.False(t, IsUPIID("a@b@c"))

	assert.True(t, IsIFSC("HDFC0001234"))
	assert.True(t, IsIFSC("SBIN0ABC123"))
	assert.False(t, IsIFSC("HDFC1001234"))
	assert.False(t, IsIFSC("hdfc0001234"))
	assert.False(t, IsIFSC("HDFC000123"))
}
