// Package ztest computes a running z-score over the number of set bits in
// each sample of a capture and exports it as an Excel workbook.
package ztest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/bits"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Thiagojm/rdrand_go/naming"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName = "Zscore"

	// Header of the first column, depending on the kind of capture file.
	SamplesHeader = "samples"
	TimeHeader    = "time"

	onesColumnName = "ones"
)

// Row is one sample: its label, the number of ones it contained, and the
// running statistics filled in by Calculate.
type Row struct {
	Category       string
	Ones           int
	CumulativeMean float64
	ZScore         float64
}

// ReadBinFile reads a raw .bin capture and returns one row per sample,
// labelled by sample number. Each sample occupies ceil(blockBits/8) bytes. A
// truncated final sample is dropped.
func ReadBinFile(filePath string, blockBits int) ([]Row, error) {
	if blockBits <= 0 {
		return nil, errors.New("block size must be positive")
	}
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	rows := make([]Row, 0, 1024)
	buf := make([]byte, (blockBits+7)/8)
	for block := 1; ; block++ {
		if _, err := io.ReadFull(reader, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return rows, nil
			}
			return nil, fmt.Errorf("reading %s: %w", filepath.Base(filePath), err)
		}
		count := 0
		for _, b := range buf {
			count += bits.OnesCount8(b)
		}
		rows = append(rows, Row{Category: strconv.Itoa(block), Ones: count})
	}
}

// ReadCSVFile reads a .csv capture with lines of the form "timestamp,ones"
// and no header. Rows are labelled with the timestamp as HH:MM:SS.
func ReadCSVFile(filePath string) ([]Row, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(filePath), err)
	}
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		if len(rec) < 2 {
			continue
		}
		onesStr := strings.TrimSpace(rec[1])
		ones, err := strconv.Atoi(onesStr)
		if err != nil {
			return nil, fmt.Errorf("invalid ones value %q: %w", onesStr, err)
		}
		rows = append(rows, Row{Category: FormatTimeLabel(strings.TrimSpace(rec[0])), Ones: ones})
	}
	return rows, nil
}

var timeLayouts = []string{
	"20060102T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"15:04:05",
	"15:04",
}

// FormatTimeLabel parses s in one of the known timestamp layouts and returns
// it as HH:MM:SS. Unparseable input is returned unchanged.
func FormatTimeLabel(s string) string {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04:05")
		}
	}
	return s
}

// Calculate fills in the cumulative mean of ones and its z-score against a
// fair source:
//
//	expected mean   = 0.5 * blockBits
//	expected stddev = sqrt(0.25 * blockBits)
//	z_i = (mean_i - expected mean) / (expected stddev / sqrt(i+1))
func Calculate(rows []Row, blockBits int) []Row {
	expectedMean := 0.5 * float64(blockBits)
	expectedStdDev := math.Sqrt(float64(blockBits) * 0.25)
	if expectedStdDev == 0 {
		return rows
	}
	sum := 0
	for i := range rows {
		sum += rows[i].Ones
		n := float64(i + 1)
		cumMean := float64(sum) / n
		rows[i].CumulativeMean = cumMean
		rows[i].ZScore = (cumMean - expectedMean) / (expectedStdDev / math.Sqrt(n))
	}
	return rows
}

// WorkbookPath returns the .xlsx path written next to a capture file.
func WorkbookPath(filePath string) string {
	return strings.TrimSuffix(filePath, filepath.Ext(filePath)) + ".xlsx"
}

// WriteWorkbook writes rows to WorkbookPath(filePath), with a line chart of
// the z-score next to the data.
func WriteWorkbook(rows []Row, filePath string, blockBits int, intervalSec int, firstHeader string) error {
	if len(rows) == 0 {
		return errors.New("no data to write")
	}
	f := excelize.NewFile()
	defer f.Close()

	if defaultSheet := f.GetSheetName(0); defaultSheet != SheetName {
		if err := f.SetSheetName(defaultSheet, SheetName); err != nil {
			return err
		}
	}

	for cell, header := range map[string]string{
		"A1": firstHeader,
		"B1": onesColumnName,
		"C1": "cumulative_mean",
		"D1": "z_test",
	} {
		if err := f.SetCellStr(SheetName, cell, header); err != nil {
			return err
		}
	}

	for i, r := range rows {
		rowIdx := i + 2
		if err := f.SetSheetRow(SheetName, fmt.Sprintf("A%d", rowIdx), &[]interface{}{
			r.Category, r.Ones, round6(r.CumulativeMean), round6(r.ZScore),
		}); err != nil {
			return err
		}
	}

	endRow := len(rows) + 1
	chart := &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{
			{
				Name:       fmt.Sprintf("%s!$D$1", SheetName),
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", SheetName, endRow),
				Values:     fmt.Sprintf("%s!$D$2:$D$%d", SheetName, endRow),
			},
		},
		Title:  []excelize.RichTextRun{{Text: filepath.Base(filePath)}},
		Legend: excelize.ChartLegend{Position: "none"},
		XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: fmt.Sprintf("Number of Samples - one sample every %d second(s)", intervalSec)}}},
		YAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: fmt.Sprintf("Z-score - Sample Size = %d bits", blockBits)}}, MajorGridLines: true},
	}
	if err := f.AddChart(SheetName, "F2", chart); err != nil {
		return err
	}

	return f.SaveAs(WorkbookPath(filePath))
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// Convert reads a capture named by the naming package, computes its z-score
// series and writes the workbook. It returns the workbook path.
func Convert(filePath string) (string, error) {
	info, err := naming.ParseName(filePath)
	if err != nil {
		return "", err
	}

	var rows []Row
	var firstHeader string
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".bin":
		rows, err = ReadBinFile(filePath, info.Bits)
		firstHeader = SamplesHeader
	case ".csv":
		rows, err = ReadCSVFile(filePath)
		firstHeader = TimeHeader
	default:
		return "", fmt.Errorf("unsupported file type: %q", filepath.Ext(filePath))
	}
	if err != nil {
		return "", err
	}

	rows = Calculate(rows, info.Bits)
	if err := WriteWorkbook(rows, filePath, info.Bits, info.IntervalSeconds, firstHeader); err != nil {
		return "", err
	}
	return WorkbookPath(filePath), nil
}
