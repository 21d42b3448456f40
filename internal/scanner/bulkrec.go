package scanner

import (
	"encoding/binary"
	"strings"
)

// Decoder for the variable-length records getattrlistbulk writes into its
// scratch buffer. Kept free of build tags so the byte-level contract stays
// testable everywhere; the record layout is native byte order, and every
// supported darwin target is little-endian.
//
// Record layout, driven from the record start:
//
//	u32  entry_length            distance to the next record
//	5x32 returned attribute_set  { common, vol, dir, file, fork }
//	[u32 error]                  if ATTR_CMN_ERROR set in returned common
//	attrreference { i32 off, u32 len }  if ATTR_CMN_NAME set; name bytes live
//	                             at (position of this field + off)
//	u32  obj_type                if ATTR_CMN_OBJTYPE set
//	[u64 data_length]            files only, if ATTR_FILE_DATALENGTH returned

// Attribute bits from <sys/attr.h>, mirrored here so the parser builds on
// every platform.
const (
	attrBitMapCount      = 5
	attrCmnReturnedAttrs = 0x80000000
	attrCmnName          = 0x00000001
	attrCmnObjType       = 0x00000008
	attrCmnError         = 0x20000000
	attrFileDataLength   = 0x00000200

	// vnode object types; directories are VDIR.
	objTypeDir = 2
)

const attributeSetSize = 20 // 5 x u32, always consumed whole

// bulkEntry is one decoded directory entry.
type bulkEntry struct {
	name  string
	size  int64
	isDir bool
}

// parseBulkBuffer decodes count records from buf. Records that carry a
// nonzero error attribute are skipped silently; malformed records are skipped
// and tallied in bad. A zero entry_length or one overflowing the buffer ends
// iteration.
func parseBulkBuffer(buf []byte, count int) (entries []bulkEntry, bad uint64) {
	offset := 0
	for i := 0; i < count; i++ {
		if offset+4 > len(buf) {
			break
		}
		entryLength := int(binary.LittleEndian.Uint32(buf[offset:]))
		if entryLength == 0 || offset+entryLength > len(buf) {
			break
		}

		entry, ok, malformed := parseBulkRecord(buf[offset : offset+entryLength])
		if ok {
			entries = append(entries, entry)
		} else if malformed {
			bad++
		}

		offset += entryLength
	}
	return entries, bad
}

// parseBulkRecord decodes a single record. ok is false when the record holds
// no usable entry; malformed distinguishes decoding failures from benign
// skips (per-entry errors, "." and "..").
func parseBulkRecord(rec []byte) (entry bulkEntry, ok, malformed bool) {
	if len(rec) < 4+attributeSetSize {
		return bulkEntry{}, false, true
	}

	pos := 4 // past entry_length

	// The returned attribute_set_t is always 20 bytes, regardless of which
	// bits were requested.
	retCommon := binary.LittleEndian.Uint32(rec[pos:])
	retFile := binary.LittleEndian.Uint32(rec[pos+12:])
	pos += attributeSetSize

	if retCommon&attrCmnError != 0 {
		if pos+4 > len(rec) {
			return bulkEntry{}, false, true
		}
		errno := binary.LittleEndian.Uint32(rec[pos:])
		pos += 4
		if errno != 0 {
			return bulkEntry{}, false, false
		}
	}

	if retCommon&attrCmnName == 0 || pos+8 > len(rec) {
		return bulkEntry{}, false, true
	}
	// attrreference_t: the data offset is relative to the position of the
	// reference field itself, not the record start.
	nameOff := int(int32(binary.LittleEndian.Uint32(rec[pos:])))
	nameStart := pos + nameOff
	pos += 8

	if nameStart < 0 || nameStart >= len(rec) {
		return bulkEntry{}, false, true
	}
	name := cstringLossy(rec[nameStart:])
	if name == "" || name == "." || name == ".." {
		return bulkEntry{}, false, false
	}

	if retCommon&attrCmnObjType == 0 || pos+4 > len(rec) {
		return bulkEntry{}, false, true
	}
	objType := binary.LittleEndian.Uint32(rec[pos:])
	pos += 4

	isDir := objType == objTypeDir

	// Data length is only present for non-directories, and only when the
	// file attribute came back; absent means size 0.
	var size int64
	if !isDir && retFile&attrFileDataLength != 0 {
		if pos+8 > len(rec) {
			return bulkEntry{}, false, true
		}
		size = int64(binary.LittleEndian.Uint64(rec[pos:]))
	}

	return bulkEntry{name: name, size: size, isDir: isDir}, true, false
}

// cstringLossy reads a NUL-terminated byte string, replacing invalid UTF-8
// sequences rather than rejecting the entry.
func cstringLossy(b []byte) string {
	end := len(b)
	for i, c := range b {
		if c == 0 {
			end = i
			break
		}
	}
	return strings.ToValidUTF8(string(b[:end]), "�")
}
