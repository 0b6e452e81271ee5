package glbackend

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestPtrOrNil(t *testing.T) {
	assert.Nil(t, ptrOrNil([]float32(nil)))
	assert.Nil(t, ptrOrNil([]uint32{}))

	verts := []float32{1, 2, 3}
	assert.Equal(t, unsafe.Pointer(&verts[0]), ptrOrNil(verts))
	idx := []uint32{0, 3, 1}
	assert.Equal(t, unsafe.Pointer(&idx[0]), ptrOrNil(idx))
}

func TestCstr(t *testing.T) {
	assert.Equal(t, "void main(){}\x00", cstr("void main(){}"))
	assert.Equal(t, "x\x00", cstr("x\x00"))
}
