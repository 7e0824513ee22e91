package storage

import (
	"bufio"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
	"os"
	"sync"
	"time"

	"contactdb/pkg/common"
)

// [CRC32 4B] [Timestamp 8B] [Op 1B] [PayloadLen 4B] [Payload NB]

const (
	HeaderSize = 4 + 8 + 1 + 4 // 17 Bytes

	OpAdd byte = 0x01 // payload: encoded contact
	OpDel byte = 0x02 // payload: delete key

	// MaxPayloadSize bounds one entry; a larger length field means corruption.
	MaxPayloadSize = common.MaxContactSize
)

var (
	ErrCorruptEntry  = errors.New("journal: corrupted entry")
	ErrEntryTooLarge = errors.New("journal: entry too large")
)

// Entry is one logged mutation.
type Entry struct {
	Op        byte
	Timestamp time.Time
	Contact   common.Contact // OpAdd
	Key       string         // OpDel
}

// Journal is an append-only log of successful mutations since the last snapshot.
type Journal struct {
	file *os.File
	mu   sync.Mutex
	buf  *bufio.Writer
}

func OpenJournal(path string) (*Journal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &Journal{
		file: f,
		buf:  bufio.NewWriter(f),
	}, nil
}

func (j *Journal) AppendAdd(c common.Contact) error {
	payload, err := common.EncodeContact(c)
	if err != nil {
		return err
	}
	return j.append(OpAdd, payload)
}

func (j *Journal) AppendDelete(key string) error {
	return j.append(OpDel, []byte(key))
}

func (j *Journal) append(op byte, payload []byte) error {
	if len(payload) > MaxPayloadSize {
		return ErrEntryTooLarge
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	header := make([]byte, HeaderSize)
	ts := uint64(time.Now().UnixNano())

	binary.LittleEndian.PutUint64(header[4:12], ts)
	header[12] = op
	binary.LittleEndian.PutUint32(header[13:17], uint32(len(payload)))

	checksum := crc32.NewIEEE()
	checksum.Write(header[4:])
	checksum.Write(payload)
	binary.LittleEndian.PutUint32(header[0:4], checksum.Sum32())

	if _, err := j.buf.Write(header); err != nil {
		return err
	}
	if _, err := j.buf.Write(payload); err != nil {
		return err
	}

	return j.buf.Flush()
}

func (j *Journal) Sync() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.buf.Flush(); err != nil {
		return err
	}
	return j.file.Sync()
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.buf.Flush(); err != nil {
		j.file.Close()
		return err
	}
	return j.file.Close()
}

// Truncate empties the journal, typically right after a snapshot.
func (j *Journal) Truncate() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.buf.Flush(); err != nil {
		return err
	}
	path := j.file.Name()
	if err := j.file.Close(); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	j.file = f
	j.buf = bufio.NewWriter(f)
	return j.file.Sync()
}

func (j *Journal) Size() (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.buf.Flush(); err != nil {
		return 0, err
	}
	st, err := j.file.Stat()
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}

type JournalIterator struct {
	reader *bufio.Reader
	file   *os.File
}

func (j *Journal) NewIterator() (*JournalIterator, error) {
	if err := j.Sync(); err != nil {
		return nil, err
	}
	f, err := os.Open(j.file.Name())
	if err != nil {
		return nil, err
	}
	return &JournalIterator{
		file:   f,
		reader: bufio.NewReader(f),
	}, nil
}

// Next returns io.EOF at a clean end and ErrCorruptEntry for a torn or
// damaged entry.
func (it *JournalIterator) Next() (Entry, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(it.reader, header); err != nil {
		if err == io.ErrUnexpectedEOF {
			return Entry{}, ErrCorruptEntry
		}
		return Entry{}, err
	}

	storedCRC := binary.LittleEndian.Uint32(header[0:4])
	ts := int64(binary.LittleEndian.Uint64(header[4:12]))
	op := header[12]
	size := binary.LittleEndian.Uint32(header[13:17])
	if size > MaxPayloadSize {
		return Entry{}, ErrCorruptEntry
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(it.reader, payload); err != nil {
		return Entry{}, ErrCorruptEntry
	}

	checksum := crc32.NewIEEE()
	checksum.Write(header[4:])
	checksum.Write(payload)
	if checksum.Sum32() != storedCRC {
		return Entry{}, ErrCorruptEntry
	}

	e := Entry{Op: op, Timestamp: time.Unix(0, ts)}
	switch op {
	case OpAdd:
		c, err := common.DecodeContact(payload)
		if err != nil {
			return Entry{}, ErrCorruptEntry
		}
		e.Contact = c
	case OpDel:
		e.Key = string(payload)
	default:
		return Entry{}, ErrCorruptEntry
	}
	return e, nil
}

func (it *JournalIterator) Close() {
	it.file.Close()
}
