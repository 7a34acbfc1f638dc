package mediadate

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	mkvIDEBML      = 0x1A45DFA3
	mkvIDSegment   = 0x18538067
	mkvIDInfo      = 0x1549A966
	mkvIDDateUTC   = 0x4461
	mkvIDTags      = 0x1254C367
	mkvIDTag       = 0x7373
	mkvIDSimpleTag = 0x67C8
	mkvIDTagName   = 0x45A3
	mkvIDTagString = 0x4487
	mkvIDTagBinary = 0x4485
	mkvIDCluster   = 0x1F43B675
)

// DateUTC counts nanoseconds from the Matroska epoch, 2001-01-01T00:00:00 UTC.
const matroskaEpochOffset = 978307200

// QuickTime-compatible muxers (and tools converting their output) store the
// capture time in this tag rather than in Segment Info.
const quicktimeCreationTag = "com.apple.quicktime.creationdate"

// Info and Tags payloads are read whole; anything claiming more than this is
// treated as malformed rather than buffered.
const maxMetadataElementSize = 16 << 20

type matroskaTag struct {
	name   string
	value  string
	binary bool
}

// matroskaCreationDate extracts the creation date of a Matroska file. A
// com.apple.quicktime.creationdate tag wins over the Segment Info DateUTC;
// only the first tag with that name is considered, and if its value is binary
// or not a parseable date the Info date is used instead.
func matroskaCreationDate(rs io.ReadSeeker, size int64) (time.Time, error) {
	er := newEBMLReader(rs)
	sawHeader := false
	for er.pos < size {
		id, elemSize, err := readMatroskaElementHeader(er, size, 0)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse matroska: %w", err)
		}
		if !sawHeader {
			if id != mkvIDEBML {
				return time.Time{}, errors.New("parse matroska: not an EBML document")
			}
			sawHeader = true
		}
		if id == mkvIDSegment {
			return matroskaSegmentDate(er, int64(elemSize))
		}
		if err := er.skip(int64(elemSize)); err != nil {
			return time.Time{}, fmt.Errorf("parse matroska: %w", err)
		}
	}
	return time.Time{}, errors.New("parse matroska: no segment element")
}

func matroskaSegmentDate(er *ebmlReader, size int64) (time.Time, error) {
	start := er.pos
	var infoDate time.Time
	var hasInfoDate bool
	var qtTag matroskaTag
	var hasQTTag bool
	for er.pos-start < size {
		id, elemSize, err := readMatroskaElementHeader(er, size, start)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse matroska: %w", err)
		}
		switch id {
		case mkvIDInfo:
			payload, err := readMetaPayload(er, elemSize)
			if err != nil {
				return time.Time{}, err
			}
			if date, ok := parseMatroskaInfoDate(payload); ok {
				infoDate = date
				hasInfoDate = true
			}
		case mkvIDTags:
			payload, err := readMetaPayload(er, elemSize)
			if err != nil {
				return time.Time{}, err
			}
			for _, tag := range parseMatroskaTags(payload) {
				if !hasQTTag && strings.EqualFold(tag.name, quicktimeCreationTag) {
					qtTag = tag
					hasQTTag = true
				}
			}
		default:
			// Clusters dominate the file and Tags usually trail them, so
			// everything else is seek-skipped.
			if err := er.skip(int64(elemSize)); err != nil {
				return time.Time{}, fmt.Errorf("parse matroska: %w", err)
			}
		}
		if hasQTTag && hasInfoDate {
			break
		}
	}
	if hasQTTag && !qtTag.binary {
		if date, err := parseISO8601(qtTag.value); err == nil {
			return date, nil
		}
	}
	if hasInfoDate {
		return infoDate, nil
	}
	return time.Time{}, ErrNoCreationDate
}

func readMetaPayload(er *ebmlReader, size uint64) ([]byte, error) {
	if size > maxMetadataElementSize {
		return nil, fmt.Errorf("parse matroska: metadata element too large (%d bytes)", size)
	}
	payload, err := er.readN(int64(size))
	if err != nil {
		return nil, fmt.Errorf("parse matroska: %w", err)
	}
	return payload, nil
}

func parseMatroskaInfoDate(buf []byte) (time.Time, bool) {
	var date time.Time
	var hasDate bool
	pos := 0
	for pos < len(buf) {
		id, idLen, ok := readVintID(buf, pos)
		if !ok {
			break
		}
		size, sizeLen, ok := readVintSize(buf, pos+idLen)
		if !ok {
			break
		}
		dataStart := pos + idLen + sizeLen
		dataEnd := dataStart + int(size)
		if size == unknownVintSize || dataEnd > len(buf) {
			dataEnd = len(buf)
		}
		if id == mkvIDDateUTC {
			if ns, ok := readSigned(buf[dataStart:dataEnd]); ok {
				// time.Unix normalizes the nanoseconds, so this is exact
				// for dates before the Matroska epoch too.
				date = time.Unix(matroskaEpochOffset, ns).UTC()
				hasDate = true
			}
		}
		pos = dataEnd
	}
	return date, hasDate
}

func parseMatroskaTags(buf []byte) []matroskaTag {
	var tags []matroskaTag
	pos := 0
	for pos < len(buf) {
		id, idLen, ok := readVintID(buf, pos)
		if !ok {
			break
		}
		size, sizeLen, ok := readVintSize(buf, pos+idLen)
		if !ok {
			break
		}
		dataStart := pos + idLen + sizeLen
		dataEnd := dataStart + int(size)
		if size == unknownVintSize || dataEnd > len(buf) {
			dataEnd = len(buf)
		}
		if id == mkvIDTag {
			tags = append(tags, parseMatroskaTagSimpleTags(buf[dataStart:dataEnd])...)
		}
		pos = dataEnd
	}
	return tags
}

func parseMatroskaTagSimpleTags(buf []byte) []matroskaTag {
	var tags []matroskaTag
	pos := 0
	for pos < len(buf) {
		id, idLen, ok := readVintID(buf, pos)
		if !ok {
			break
		}
		size, sizeLen, ok := readVintSize(buf, pos+idLen)
		if !ok {
			break
		}
		dataStart := pos + idLen + sizeLen
		dataEnd := dataStart + int(size)
		if size == unknownVintSize || dataEnd > len(buf) {
			dataEnd = len(buf)
		}
		if id == mkvIDSimpleTag {
			if tag, ok := parseMatroskaSimpleTag(buf[dataStart:dataEnd]); ok {
				tags = append(tags, tag)
			}
		}
		pos = dataEnd
	}
	return tags
}

func parseMatroskaSimpleTag(buf []byte) (matroskaTag, bool) {
	var tag matroskaTag
	var hasString bool
	pos := 0
	for pos < len(buf) {
		id, idLen, ok := readVintID(buf, pos)
		if !ok {
			break
		}
		size, sizeLen, ok := readVintSize(buf, pos+idLen)
		if !ok {
			break
		}
		dataStart := pos + idLen + sizeLen
		dataEnd := dataStart + int(size)
		if size == unknownVintSize || dataEnd > len(buf) {
			dataEnd = len(buf)
		}
		payload := buf[dataStart:dataEnd]
		switch id {
		case mkvIDTagName:
			tag.name = string(payload)
		case mkvIDTagString:
			tag.value = string(payload)
			hasString = true
		case mkvIDTagBinary:
			tag.binary = true
		}
		pos = dataEnd
	}
	if hasString {
		tag.binary = false
	}
	return tag, tag.name != ""
}

// parseISO8601 accepts RFC 3339 timestamps plus the colon-less zone offset
// variant (e.g. +0000), with optional fractional seconds. A zone designator
// is required.
func parseISO8601(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999Z0700"} {
		if date, err := time.Parse(layout, value); err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO 8601 date: %q", value)
}

const unknownVintSize = ^uint64(0)

func readVintID(buf []byte, pos int) (uint64, int, bool) {
	if pos >= len(buf) {
		return 0, 0, false
	}
	first := buf[pos]
	length := vintLength(first)
	if length == 0 || pos+length > len(buf) {
		return 0, 0, false
	}
	var value uint64
	for i := 0; i < length; i++ {
		value = (value << 8) | uint64(buf[pos+i])
	}
	return value, length, true
}

func readVintSize(buf []byte, pos int) (uint64, int, bool) {
	if pos >= len(buf) {
		return 0, 0, false
	}
	first := buf[pos]
	length := vintLength(first)
	if length == 0 || pos+length > len(buf) {
		return 0, 0, false
	}
	mask := byte(0xFF >> length)
	value := uint64(first & mask)
	for i := 1; i < length; i++ {
		value = (value << 8) | uint64(buf[pos+i])
	}
	if value == (uint64(1)<<(uint(length*7)))-1 {
		return unknownVintSize, length, true
	}
	return value, length, true
}

func vintLength(first byte) int {
	for i := 0; i < 8; i++ {
		if first&(1<<(7-uint(i))) != 0 {
			return i + 1
		}
	}
	return 0
}

func readSigned(buf []byte) (int64, bool) {
	if len(buf) == 0 || len(buf) > 8 {
		return 0, false
	}
	var value int64
	for _, b := range buf {
		value = (value << 8) | int64(b)
	}
	if buf[0]&0x80 != 0 {
		value -= 1 << (uint(len(buf)) * 8)
	}
	return value, true
}
