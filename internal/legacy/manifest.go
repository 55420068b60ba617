package legacy

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// TokenColumn is the manifest header whose cells hold the tokens.
const TokenColumn = "Token"

// FetchTokenManifest downloads the zipped spreadsheet, extracts it into a
// fresh temporary directory and returns the tokens in row order. The
// directory is removed before returning.
func (c *Client) FetchTokenManifest(ctx context.Context) ([]string, error) {
	if c.endpoint == "" {
		return nil, endpointMissing()
	}

	dir, err := os.MkdirTemp(c.tempDir, "indeng-manifest-*")
	if err != nil {
		return nil, errors.Wrap(err, "creating manifest directory")
	}
	defer os.RemoveAll(dir)

	archive := filepath.Join(dir, c.manifestName+".zip")
	err = c.get(ctx, c.endpoint, func(body io.Reader) error {
		return writeFile(archive, body)
	})
	if err != nil {
		return nil, err
	}

	sheet, err := extract(archive, c.manifestName, dir)
	if err != nil {
		return nil, err
	}

	return ReadTokens(sheet)
}

func writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating manifest archive")
	}

	if _, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "downloading manifest archive")
	}

	return errors.Wrap(f.Close(), "writing manifest archive")
}

// extract copies the entry named name out of archive into dir. Entry paths
// are reduced to their base name so nothing is written outside dir.
func extract(archive, name, dir string) (string, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return "", errors.Wrap(err, "opening manifest archive")
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || filepath.Base(f.Name) != name {
			continue
		}

		src, err := f.Open()
		if err != nil {
			return "", errors.Wrapf(err, "opening %s in manifest archive", f.Name)
		}

		dst := filepath.Join(dir, name)
		err = writeFile(dst, src)
		_ = src.Close()
		if err != nil {
			return "", err
		}
		return dst, nil
	}

	return "", errors.Errorf("manifest archive has no %s", name)
}

// ReadTokens returns the non-blank cells of the Token column of the first
// sheet, in row order.
func ReadTokens(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening manifest spreadsheet")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("manifest spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(err, "reading manifest rows")
	}
	if len(rows) == 0 {
		return nil, errors.Errorf("manifest spreadsheet has no %s column", TokenColumn)
	}

	col := -1
	for i, cell := range rows[0] {
		if strings.TrimSpace(cell) == TokenColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, errors.Errorf("manifest spreadsheet has no %s column", TokenColumn)
	}

	tokens := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		if token := strings.TrimSpace(row[col]); token != "" {
			tokens = append(tokens, token)
		}
	}

	return tokens, nil
}
