package tarball

import (
	"bytes"
	"fmt"
	"os"
	"os/user"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/maddsua/minitar"
)

// BlockSize is the only unit of archive I/O granularity.
const BlockSize = 512

type Block [BlockSize]byte

var zeroBlock Block

const (
	magicUstar  = "ustar\x00"
	versionTar  = "00"
	TypeRegular = '0'
)

// ustar header field layout. Offsets are cumulative, the last field ends at
// byte 500; the rest of the block is padding.
type headerField struct {
	off, len int
}

func fieldAfter(prev headerField, size int) headerField {
	return headerField{prev.off + prev.len, size}
}

var (
	fieldName     = headerField{0, 100}
	fieldMode     = fieldAfter(fieldName, 8)
	fieldUid      = fieldAfter(fieldMode, 8)
	fieldGid      = fieldAfter(fieldUid, 8)
	fieldSize     = fieldAfter(fieldGid, 12)
	fieldMtime    = fieldAfter(fieldSize, 12)
	fieldChksum   = fieldAfter(fieldMtime, 8)
	fieldTypeflag = fieldAfter(fieldChksum, 1)
	fieldLinkname = fieldAfter(fieldTypeflag, 100)
	fieldMagic    = fieldAfter(fieldLinkname, 6)
	fieldVersion  = fieldAfter(fieldMagic, 2)
	fieldUname    = fieldAfter(fieldVersion, 32)
	fieldGname    = fieldAfter(fieldUname, 32)
	fieldDevmajor = fieldAfter(fieldGname, 8)
	fieldDevminor = fieldAfter(fieldDevmajor, 8)
	fieldPrefix   = fieldAfter(fieldDevminor, 155)
)

type Header struct {
	Name     string
	Prefix   string
	Mode     int64
	Uid      int
	Gid      int
	Uname    string
	Gname    string
	Size     int64
	Modified time.Time
	Typeflag byte
}

// Path joins the prefix and name fields back into the full member path.
func (header *Header) Path() string {
	if header.Prefix != "" {
		return header.Prefix + "/" + header.Name
	}
	return header.Name
}

// FileHeader builds a ustar header from the metadata of the file at name.
func FileHeader(name string) (*Header, error) {

	stat, err := os.Stat(name)
	if err != nil {
		return nil, &minitar.MetadataError{Path: name, Err: err}
	}

	if !stat.Mode().IsRegular() {
		return nil, &minitar.MetadataError{Path: name, Err: fmt.Errorf("not a regular file")}
	}

	prefix, base, err := splitName(name)
	if err != nil {
		return nil, err
	}

	header := Header{
		Name:     base,
		Prefix:   prefix,
		Mode:     int64(stat.Mode().Perm()),
		Size:     stat.Size(),
		Modified: stat.ModTime(),
		Typeflag: TypeRegular,
	}

	sys, ok := stat.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, &minitar.MetadataError{Path: name, Err: fmt.Errorf("no ownership info")}
	}

	header.Uid = int(sys.Uid)
	header.Gid = int(sys.Gid)

	owner, err := user.LookupId(strconv.Itoa(header.Uid))
	if err != nil {
		return nil, &minitar.IdentityLookupError{Path: name, Kind: "user", ID: header.Uid}
	}
	header.Uname = owner.Username

	group, err := user.LookupGroupId(strconv.Itoa(header.Gid))
	if err != nil {
		return nil, &minitar.IdentityLookupError{Path: name, Kind: "group", ID: header.Gid}
	}
	header.Gname = group.Name

	return &header, nil
}

// splitName fits a member path into the 100-byte name field, spilling the
// leading directories into the 155-byte prefix field when it doesn't fit.
func splitName(name string) (prefix, base string, err error) {

	if len(name) <= fieldName.len {
		return "", name, nil
	}

	if len(name) > fieldPrefix.len+1+fieldName.len {
		return "", "", &minitar.NameError{Name: name}
	}

	// The slash itself is stored in neither field
	cut := strings.LastIndex(name[:fieldPrefix.len+1], "/")
	if cut <= 0 || len(name)-cut-1 > fieldName.len {
		return "", "", &minitar.NameError{Name: name}
	}

	return name[:cut], name[cut+1:], nil
}

// Encode produces the on-disk 512-byte header record.
func (header *Header) Encode() *Block {

	var block Block

	putString(&block, fieldName, header.Name)
	putOctal(&block, fieldMode, header.Mode)
	putOctal(&block, fieldUid, int64(header.Uid))
	putOctal(&block, fieldGid, int64(header.Gid))
	putOctal(&block, fieldSize, header.Size)
	putOctal(&block, fieldMtime, header.Modified.Unix())
	block[fieldTypeflag.off] = header.Typeflag
	copy(block[fieldMagic.off:], magicUstar)
	copy(block[fieldVersion.off:], versionTar)
	putString(&block, fieldUname, header.Uname)
	putString(&block, fieldGname, header.Gname)
	putOctal(&block, fieldDevmajor, 0)
	putOctal(&block, fieldDevminor, 0)
	putString(&block, fieldPrefix, header.Prefix)

	putOctal(&block, fieldChksum, Checksum(&block))

	return &block
}

// DecodeHeader parses a header record and verifies its checksum.
func DecodeHeader(block *Block) (*Header, error) {

	header := Header{
		Name:     getString(block, fieldName),
		Prefix:   getString(block, fieldPrefix),
		Uname:    getString(block, fieldUname),
		Gname:    getString(block, fieldGname),
		Typeflag: block[fieldTypeflag.off],
	}

	stored, err := getOctal(block, fieldChksum)
	if err != nil {
		return nil, &minitar.ArchiveError{Stage: "parse header checksum", Err: err}
	}

	if sum := Checksum(block); sum != stored {
		return nil, &minitar.ChecksumError{Name: header.Path(), Want: stored, Have: sum}
	}

	if header.Mode, err = getOctal(block, fieldMode); err != nil {
		return nil, &minitar.ArchiveError{Stage: "parse header mode", Err: err}
	}

	if header.Size, err = getOctal(block, fieldSize); err != nil {
		return nil, &minitar.ArchiveError{Stage: "parse header size", Err: err}
	}

	uid, err := getOctal(block, fieldUid)
	if err != nil {
		return nil, &minitar.ArchiveError{Stage: "parse header uid", Err: err}
	}
	header.Uid = int(uid)

	gid, err := getOctal(block, fieldGid)
	if err != nil {
		return nil, &minitar.ArchiveError{Stage: "parse header gid", Err: err}
	}
	header.Gid = int(gid)

	mtime, err := getOctal(block, fieldMtime)
	if err != nil {
		return nil, &minitar.ArchiveError{Stage: "parse header mtime", Err: err}
	}
	header.Modified = time.Unix(mtime, 0)

	return &header, nil
}

// IsEndMarker reports whether the block is all zeroes.
func IsEndMarker(block *Block) bool {
	return *block == zeroBlock
}

// Checksum is the unsigned byte sum of the record with the checksum field
// itself counted as eight ascii spaces.
func Checksum(block *Block) int64 {

	var sum int64

	for idx, val := range block {
		if idx >= fieldChksum.off && idx < fieldChksum.off+fieldChksum.len {
			sum += ' '
		} else {
			sum += int64(val)
		}
	}

	return sum
}

// putOctal writes a zero-padded octal ascii number followed by a NUL,
// the same way the reference tools format numeric fields.
func putOctal(block *Block, field headerField, val int64) {
	copy(block[field.off:], fmt.Sprintf("%0*o", field.len-1, val))
}

func getOctal(block *Block, field headerField) (int64, error) {

	raw := strings.Trim(getString(block, field), " ")
	if raw == "" {
		return 0, nil
	}

	return strconv.ParseInt(raw, 8, 64)
}

func putString(block *Block, field headerField, val string) {
	if len(val) > field.len {
		val = val[:field.len]
	}
	copy(block[field.off:], val)
}

func getString(block *Block, field headerField) string {
	raw := block[field.off : field.off+field.len]
	if cut := bytes.IndexByte(raw, 0); cut >= 0 {
		raw = raw[:cut]
	}
	return string(raw)
}
