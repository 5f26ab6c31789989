package materials

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"ecoblock-backend/internal/domain"
	"ecoblock-backend/internal/pkg/metrics"

	"github.com/xuri/excelize/v2"
)

// ExportColumns is the fixed header and column order of every export.
var ExportColumns = []string{
	"id", "material", "quantity", "source", "carbon_savings",
	"project_location", "used_in_project", "date_added", "actual_usage",
}

const xlsxSheet = "Materials"

func csvRecord(m domain.Material) []string {
	usage := ""
	if m.ActualUsage != nil {
		usage = strconv.Itoa(*m.ActualUsage)
	}
	return []string{
		strconv.FormatInt(m.ID, 10),
		m.Material,
		strconv.Itoa(m.Quantity),
		m.Source,
		strconv.FormatFloat(m.CarbonSavings, 'f', -1, 64),
		m.ProjectLocation,
		m.UsedInProject,
		m.DateAdded,
		usage,
	}
}

// ExportCSV streams every record to w as RFC 4180 CSV, one store page at a time.
// Fields holding commas, quotes or newlines are quoted with embedded quotes doubled.
// A write error (e.g. the client went away) stops the scan.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return err
	}
	rows := 0
	err := s.Store.ScanAll(ctx, s.PageSize, func(m domain.Material) error {
		if err := cw.Write(csvRecord(m)); err != nil {
			return err
		}
		rows++
		if rows%pageFlushEvery(s.PageSize) == 0 {
			cw.Flush()
			return cw.Error()
		}
		return nil
	})
	metrics.ExportedRows.WithLabelValues("csv").Add(float64(rows))
	if err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func pageFlushEvery(pageSize int) int {
	if pageSize <= 0 {
		return 100
	}
	return pageSize
}

// ExportXLSX writes every record to w as a single-sheet workbook. Rows go through excelize's
// stream writer, which spills to disk instead of holding the sheet in memory.
func (s *Service) ExportXLSX(ctx context.Context, w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(xlsxSheet)
	if err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	header := make([]interface{}, len(ExportColumns))
	for i, c := range ExportColumns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: bold}); err != nil {
		return err
	}

	row := 2
	err = s.Store.ScanAll(ctx, s.PageSize, func(m domain.Material) error {
		var usage interface{} = ""
		if m.ActualUsage != nil {
			usage = *m.ActualUsage
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, []interface{}{
			m.ID, m.Material, m.Quantity, m.Source, m.CarbonSavings,
			m.ProjectLocation, m.UsedInProject, m.DateAdded, usage,
		}); err != nil {
			return err
		}
		row++
		return nil
	})
	metrics.ExportedRows.WithLabelValues("xlsx").Add(float64(row - 2))
	if err != nil {
		return err
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}
