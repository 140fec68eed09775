package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/conorfennell/knoldeck/internal/domain"
)

// CSVStore persists one deck as a CSV file with a Header row. Data row i
// (0-based) is line i+2 of the file.
type CSVStore struct {
	path string
}

// OpenCSV returns a store for the deck file at path. The file is not read
// until Load.
func OpenCSV(path string) *CSVStore {
	return &CSVStore{path: path}
}

// CreateCSV writes a new deck file holding recs. It fails if path exists.
func CreateCSV(path string, recs []domain.Record) (_ *CSVStore, err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create deck %s: %w", path, err)
	}
	defer closeInto(f, &err)

	rows := make([][]string, 0, len(recs)+1)
	rows = append(rows, Header)
	for _, rec := range recs {
		rows = append(rows, EncodeRecord(rec))
	}
	if err := csv.NewWriter(f).WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write deck %s: %w", path, err)
	}
	return &CSVStore{path: path}, nil
}

// Path returns the deck file path.
func (s *CSVStore) Path() string { return s.path }

// Load reads every data row. Any unreadable file, bad header or malformed
// row fails the whole load with a *domain.LoadError.
func (s *CSVStore) Load() ([]domain.Record, error) {
	rows, err := s.readRows()
	if err != nil {
		return nil, &domain.LoadError{Source: s.path, Row: -1, Err: err}
	}

	recs := make([]domain.Record, 0, len(rows))
	for i, row := range rows {
		rec, err := DecodeRecord(row)
		if err != nil {
			return nil, &domain.LoadError{Source: s.path, Row: i, Err: err}
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// AppendRow writes rec after the last row without touching earlier rows.
func (s *CSVStore) AppendRow(rec domain.Record) (err error) {
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return fmt.Errorf("failed to open deck %s: %w", s.path, err)
	}
	defer closeInto(f, &err)

	w := csv.NewWriter(f)
	if err := w.Write(EncodeRecord(rec)); err != nil {
		return fmt.Errorf("failed to append to deck %s: %w", s.path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to append to deck %s: %w", s.path, err)
	}
	return nil
}

// RewriteRow replaces data row index with rec and rewrites the whole file.
// The new contents go to a temporary file that is renamed over the deck.
func (s *CSVStore) RewriteRow(index int, rec domain.Record) error {
	rows, err := s.readRows()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(rows) {
		return fmt.Errorf("row %d out of range for deck %s with %d rows", index, s.path, len(rows))
	}
	rows[index] = EncodeRecord(rec)
	return s.writeRows(rows)
}

func (s *CSVStore) readRows() (_ [][]string, err error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open deck: %w", err)
	}
	defer closeInto(f, &err)

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(Header)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if !IsHeader(header) {
		return nil, fmt.Errorf("unexpected header %v", header)
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return rows, nil
}

func (s *CSVStore) writeRows(rows [][]string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".deck-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", s.path, err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rerr := os.Remove(tmp.Name()); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			err = errors.Join(err, fmt.Errorf("failed to remove temp file: %w", rerr))
		}
	}()

	if err := s.writeTemp(tmp, rows); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file for %s: %w", s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace deck %s: %w", s.path, err)
	}
	return nil
}

// writeTemp fills tmp with the header and rows, keeping the deck's file mode.
func (s *CSVStore) writeTemp(tmp *os.File, rows [][]string) error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("failed to stat deck %s: %w", s.path, err)
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to set mode on temp file for %s: %w", s.path, err)
	}

	w := csv.NewWriter(tmp)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("failed to write header of deck %s: %w", s.path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write deck %s: %w", s.path, err)
	}
	return nil
}

func closeInto(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}
