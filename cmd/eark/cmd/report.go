package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/srerickson/eark/validation"
)

const reportDateLayout = "2006-01-02"

// reportName returns the name of the n-th report for the package on date.
func reportName(pkgName string, date time.Time, n int, f validation.Format) string {
	return fmt.Sprintf("%s_validation-report_%s_%d%s", pkgName, date.Format(reportDateLayout), n, f.Ext())
}

// createReport creates a new report file for the package in dir. Existing
// reports are not overwritten: the counter in the name is incremented until
// an unused name is found.
func createReport(dir, pkgName string, date time.Time, f validation.Format) (*os.File, error) {
	for n := 1; ; n++ {
		name := filepath.Join(dir, reportName(pkgName, date, n, f))
		file, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("creating report: %w", err)
		}
		return file, nil
	}
}

// writeReport writes the report for the package to a new file in dir and
// returns the file's name.
func writeReport(dir, pkgName string, date time.Time, f validation.Format, r *validation.Report) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	file, err := createReport(dir, pkgName, date, f)
	if err != nil {
		return "", err
	}
	if err := r.Write(file, f); err != nil {
		file.Close()
		return "", fmt.Errorf("writing report: %w", err)
	}
	return file.Name(), file.Close()
}
