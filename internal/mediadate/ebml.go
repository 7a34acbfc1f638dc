package mediadate

import (
	"bufio"
	"io"
)

// ebmlReader walks a Matroska file sequentially. Reads go through a
// bufio.Reader; large skips seek the underlying file instead of draining it,
// which matters because Tags frequently trail gigabytes of Cluster data.
type ebmlReader struct {
	r   *bufio.Reader
	rs  io.ReadSeeker
	pos int64
	tmp []byte
}

func newEBMLReader(rs io.ReadSeeker) *ebmlReader {
	// Mostly skipping; avoid read-ahead into cluster payloads.
	return newEBMLReaderWithBufSize(rs, 64*1024)
}

func newEBMLReaderWithBufSize(rs io.ReadSeeker, bufSize int) *ebmlReader {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	return &ebmlReader{
		rs: rs,
		r:  bufio.NewReaderSize(rs, bufSize),
	}
}

func (er *ebmlReader) readByte() (byte, error) {
	b, err := er.r.ReadByte()
	if err != nil {
		return 0, err
	}
	er.pos++
	return b, nil
}

func (er *ebmlReader) readN(n int64) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	var buf []byte
	if n <= 4096 {
		need := int(n)
		if cap(er.tmp) < need {
			er.tmp = make([]byte, need)
		}
		buf = er.tmp[:need]
	} else {
		buf = make([]byte, n)
	}
	if _, err := io.ReadFull(er.r, buf); err != nil {
		return nil, err
	}
	er.pos += n
	return buf, nil
}

func (er *ebmlReader) skip(n int64) error {
	if n <= 0 {
		return nil
	}
	if er.rs != nil {
		// Never read bytes just to drop them: consume what's already buffered, seek the rest.
		if buffered := er.r.Buffered(); buffered > 0 {
			toDiscard := int64(buffered)
			if toDiscard > n {
				toDiscard = n
			}
			discarded, err := er.r.Discard(int(toDiscard))
			er.pos += int64(discarded)
			n -= int64(discarded)
			if err != nil && err != bufio.ErrBufferFull {
				return err
			}
			if n <= 0 {
				return nil
			}
		}
		if _, err := er.rs.Seek(er.pos+n, io.SeekStart); err == nil {
			er.pos += n
			er.r.Reset(er.rs)
			return nil
		}
	}
	for n > 0 {
		chunk := n
		if chunk > int64(int(^uint(0)>>1)) {
			chunk = int64(int(^uint(0) >> 1))
		}
		discarded, err := er.r.Discard(int(chunk))
		er.pos += int64(discarded)
		n -= int64(discarded)
		if err != nil {
			if err == bufio.ErrBufferFull {
				continue
			}
			return err
		}
	}
	return nil
}

func (er *ebmlReader) readVintID() (uint64, int, error) {
	first, length, err := er.readVintHeader()
	if err != nil {
		return 0, 0, err
	}
	value := uint64(first)
	value, err = er.readVintTail(value, length)
	return value, length, err
}

func (er *ebmlReader) readVintSize() (uint64, int, error) {
	first, length, err := er.readVintHeader()
	if err != nil {
		return 0, 0, err
	}
	mask := byte(0xFF >> length)
	value := uint64(first & mask)
	value, err = er.readVintTail(value, length)
	if err != nil {
		return 0, 0, err
	}
	if value == (uint64(1)<<(uint(length*7)))-1 {
		return unknownVintSize, length, nil
	}
	return value, length, nil
}

func (er *ebmlReader) readVintHeader() (byte, int, error) {
	first, err := er.readByte()
	if err != nil {
		return 0, 0, err
	}
	length := vintLength(first)
	if length == 0 {
		return 0, 0, io.ErrUnexpectedEOF
	}
	return first, length, nil
}

func (er *ebmlReader) readVintTail(value uint64, length int) (uint64, error) {
	for i := 1; i < length; i++ {
		b, err := er.readByte()
		if err != nil {
			return 0, err
		}
		value = (value << 8) | uint64(b)
	}
	return value, nil
}

// readMatroskaElementHeader reads the next element's ID and size within an
// enclosing element of the given size starting at start. An unknown-size
// element is treated as extending to the end of its parent.
func readMatroskaElementHeader(er *ebmlReader, size int64, start int64) (uint64, uint64, error) {
	id, _, err := er.readVintID()
	if err != nil {
		return 0, 0, err
	}
	elemSize, _, err := er.readVintSize()
	if err != nil {
		return 0, 0, err
	}
	if elemSize == unknownVintSize {
		elemSize = uint64(size - (er.pos - start))
	}
	remaining := size - (er.pos - start)
	if remaining < 0 {
		return 0, 0, io.ErrUnexpectedEOF
	}
	if elemSize > uint64(remaining) {
		return 0, 0, io.ErrUnexpectedEOF
	}
	return id, elemSize, nil
}
