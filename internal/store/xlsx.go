package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/luishacm/poc-youtube-data-livestream/internal/snapshot"
)

const DefaultSheet = "Sheet1"

// legacyColumns maps header names written by older collectors onto current ones.
var legacyColumns = map[string]string{
	"thumbnail__maxres_url": "thumbnail_maxres_url",
}

// XLSXStore keeps the table as a single-sheet workbook with a header row.
type XLSXStore struct {
	Path  string
	Sheet string
}

// NewXLSXStore takes a base name; ".xlsx" is appended when missing.
func NewXLSXStore(base string) *XLSXStore {
	path := base
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		path += ".xlsx"
	}
	return &XLSXStore{Path: path, Sheet: DefaultSheet}
}

// Init writes a header-only workbook when the file does not exist yet.
func (s *XLSXStore) Init(ctx context.Context) error {
	if _, err := os.Stat(s.Path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return persistErr("stat "+s.Path, err)
	}
	return s.Save(ctx, nil)
}

func (s *XLSXStore) Load(ctx context.Context) (snapshot.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, persistErr("open "+s.Path, err)
	}
	defer func() { _ = f.Close() }()

	sheet := s.sheetName()
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, persistErr("read sheet "+sheet, err)
	}
	if len(rows) == 0 {
		return snapshot.Table{}, nil
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		name = strings.TrimSpace(name)
		if alias, ok := legacyColumns[name]; ok {
			name = alias
		}
		col[name] = i
	}
	if _, ok := col["current_date"]; !ok {
		return nil, persistErr("read "+s.Path, errors.New("header has no current_date column"))
	}

	out := make(snapshot.Table, 0, len(rows)-1)
	for n, cells := range rows[1:] {
		if blank(cells) {
			continue
		}
		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(cells) {
				return ""
			}
			return cells[i]
		}
		opt := func(name string) *string {
			return decodeOpt(get(name))
		}

		ts, err := parseCurrentDate(get("current_date"))
		if err != nil {
			return nil, persistErr(fmt.Sprintf("row %d current_date", n+2), err)
		}
		out = append(out, snapshot.Row{
			ChannelTitle:           opt("channel_title"),
			LivestreamTitle:        opt("livestream_title"),
			LiveID:                 opt("live_id"),
			CreatedAt:              opt("created_at"),
			CurrentDate:            ts,
			ConcurrentViewersCount: opt("concurrent_viewers_count"),
			LikeCount:              opt("like_count"),
			ViewCount:              opt("view_count"),
			TopicCategories:        decodeText(get("topic_categories")),
			ThumbnailMaxresURL:     opt("thumbnail_maxres_url"),
			Description:            opt("description"),
		})
	}
	return out, nil
}

// Save writes the whole table to a temp file next to Path and renames it over Path.
func (s *XLSXStore) Save(ctx context.Context, tbl snapshot.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := s.sheetName()
	if sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
			return persistErr("rename sheet", err)
		}
	}

	header := make([]interface{}, len(snapshot.Columns))
	for i, c := range snapshot.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return persistErr("write header", err)
	}

	for i, r := range tbl {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return persistErr("cell name", err)
		}
		values := []interface{}{
			encodeOpt(r.ChannelTitle),
			encodeOpt(r.LivestreamTitle),
			encodeOpt(r.LiveID),
			encodeOpt(r.CreatedAt),
			formatCurrentDate(r.CurrentDate),
			encodeOpt(r.ConcurrentViewersCount),
			encodeOpt(r.LikeCount),
			encodeOpt(r.ViewCount),
			encodeText(r.TopicCategories),
			encodeOpt(r.ThumbnailMaxresURL),
			encodeOpt(r.Description),
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return persistErr(fmt.Sprintf("write row %d", i+2), err)
		}
	}

	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, ".livesnap-*.xlsx")
	if err != nil {
		return persistErr("create temp file", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := f.Write(tmp); err != nil {
		_ = tmp.Close()
		cleanup()
		return persistErr("write workbook", err)
	}
	if err := tmp.Chmod(s.fileMode()); err != nil {
		_ = tmp.Close()
		cleanup()
		return persistErr("chmod workbook", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return persistErr("sync workbook", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return persistErr("close workbook", err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		cleanup()
		return persistErr("replace "+s.Path, err)
	}
	return nil
}

func (s *XLSXStore) sheetName() string {
	if s.Sheet == "" {
		return DefaultSheet
	}
	return s.Sheet
}

// fileMode keeps the mode of the workbook being replaced. CreateTemp opens
// files 0600, which would otherwise leak onto the target.
func (s *XLSXStore) fileMode() os.FileMode {
	if fi, err := os.Stat(s.Path); err == nil {
		return fi.Mode().Perm()
	}
	return 0o644
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
