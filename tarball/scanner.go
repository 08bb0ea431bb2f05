package tarball

import (
	"io"
)

// Entry locates one member inside an archive without materializing its content.
type Entry struct {
	Name          string
	Prefix        string
	Size          int64
	ContentOffset int64 // first content block, in blocks from archive start
}

// Path joins the prefix and name fields back into the full member path.
func (entry *Entry) Path() string {
	if entry.Prefix != "" {
		return entry.Prefix + "/" + entry.Name
	}
	return entry.Name
}

type scanState int

const (
	stateScanning = scanState(iota)
	stateDone
	stateFailed
)

// Scanner walks an archive entry by entry. It is a one-shot forward pass:
// once Next returns io.EOF or an error the scanner stays in that state.
type Scanner struct {
	reader *BlockReader
	state  scanState
	err    error
}

func OpenScanner(name string) (*Scanner, error) {

	reader, err := OpenBlockReader(name)
	if err != nil {
		return nil, err
	}

	return &Scanner{reader: reader}, nil
}

func (scanner *Scanner) fail(err error) (*Entry, error) {
	scanner.state = stateFailed
	scanner.err = err
	return nil, err
}

// Next returns the next entry, or io.EOF once the end marker (or a clean
// end of file at a header boundary) is reached.
//
// A single zero block does not terminate the scan: the block after it is
// peeked, and if it isn't a second zero block the position is rewound so
// the peeked block gets decoded as a header on the next pass.
func (scanner *Scanner) Next() (*Entry, error) {

	switch scanner.state {
	case stateDone:
		return nil, io.EOF
	case stateFailed:
		return nil, scanner.err
	}

	for {

		block, err := scanner.reader.ReadBlock()
		if err == io.EOF {
			// Archive ends exactly at a header boundary. Technically
			// malformed (no end marker), but tolerated.
			scanner.state = stateDone
			return nil, io.EOF
		} else if err != nil {
			return scanner.fail(err)
		}

		if IsEndMarker(block) {

			peek, err := scanner.reader.ReadBlock()
			if err == io.EOF {
				scanner.state = stateDone
				return nil, io.EOF
			} else if err != nil {
				return scanner.fail(err)
			}

			if IsEndMarker(peek) {
				scanner.state = stateDone
				return nil, io.EOF
			}

			// False end marker. Step back over the peeked block and
			// let the loop decode it as a header.
			if err := scanner.reader.SeekBlocks(-1, io.SeekCurrent); err != nil {
				return scanner.fail(err)
			}

			continue
		}

		header, err := DecodeHeader(block)
		if err != nil {
			return scanner.fail(err)
		}

		entry := Entry{
			Name:          header.Name,
			Prefix:        header.Prefix,
			Size:          header.Size,
			ContentOffset: scanner.reader.Offset(),
		}

		skip := (header.Size + BlockSize - 1) / BlockSize
		if err := scanner.reader.SeekBlocks(skip, io.SeekCurrent); err != nil {
			return scanner.fail(err)
		}

		return &entry, nil
	}
}

func (scanner *Scanner) Close() error {
	return scanner.reader.Close()
}
