package ecs

import "unsafe"

// column is the packed byte buffer for one component kind within one
// archetype. The invariant len(data) == rows*elemSize holds at all times;
// the row count itself lives with the archetype's entity list.
type column struct {
	data     []byte
	elemSize int
}

// cell returns the byte window for one row.
func (c *column) cell(row int) []byte {
	off := row * c.elemSize
	return c.data[off : off+c.elemSize]
}

// extend grows the column by one zeroed element.
func (c *column) extend() {
	newLen := len(c.data) + c.elemSize
	if cap(c.data) >= newLen {
		tail := c.data[len(c.data):newLen]
		for i := range tail {
			tail[i] = 0
		}
		c.data = c.data[:newLen]
		return
	}
	newCap := max(2*cap(c.data), newLen)
	grown := make([]byte, newLen, newCap)
	copy(grown, c.data)
	c.data = grown
}

// swapRemove copies the last row over the given row and truncates. The
// caller is responsible for the matching entity-list swap.
func (c *column) swapRemove(row, rows int) {
	last := rows - 1
	if row != last {
		copy(c.cell(row), c.cell(last))
	}
	c.data = c.data[:last*c.elemSize]
}

// setCell overwrites one row's payload from raw memory.
func (c *column) setCell(row int, src unsafe.Pointer) {
	if c.elemSize == 0 || src == nil {
		return
	}
	copy(c.cell(row), unsafe.Slice((*byte)(src), c.elemSize))
}

// cellPointer returns the address of one row's payload.
func (c *column) cellPointer(row int) unsafe.Pointer {
	return unsafe.Pointer(&c.data[row*c.elemSize])
}
