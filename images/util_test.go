package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gocv.io/x/gocv"
)

func TestComputeMatChecksum(t *testing.T) {
	a := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC3)
	defer a.Close()
	b := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC3)
	defer b.Close()

	assert.Equal(t, ComputeMatChecksum(a), ComputeMatChecksum(b),
		"identical mats must checksum identically")

	b.SetUCharAt(5, 5, 42)
	assert.NotEqual(t, ComputeMatChecksum(a), ComputeMatChecksum(b),
		"a single changed byte must change the checksum")
}

func TestComputeMatChecksumEmpty(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	assert.Equal(t, "empty", ComputeMatChecksum(empty))
}
