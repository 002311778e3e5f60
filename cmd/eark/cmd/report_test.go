package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/srerickson/eark/validation"
)

func TestReportName(t *testing.T) {
	is := is.New(t)
	date := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	is.Equal(reportName("sip-1.zip", date, 1, validation.JSON), "sip-1.zip_validation-report_2023-06-01_1.json")
	is.Equal(reportName("sip-1", date, 12, validation.YAML), "sip-1_validation-report_2023-06-01_12.yaml")
}

func TestWriteReport(t *testing.T) {
	is := is.New(t)
	dir := filepath.Join(t.TempDir(), "reports")
	date := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	report := validation.NewReport()
	report.Add(validation.NewCode("CSIP0", "CSIPv2.0.4", validation.Must, "package is well-formed"), validation.Pass())
	first, err := writeReport(dir, "sip-1.zip", date, validation.JSON, report)
	is.NoErr(err)
	second, err := writeReport(dir, "sip-1.zip", date, validation.JSON, report)
	is.NoErr(err)
	is.Equal(filepath.Base(first), "sip-1.zip_validation-report_2023-06-01_1.json")
	is.Equal(filepath.Base(second), "sip-1.zip_validation-report_2023-06-01_2.json") // existing report isn't overwritten
	data, err := os.ReadFile(first)
	is.NoErr(err)
	is.True(strings.Contains(string(data), `"CSIP0"`))
}

func TestSummaryLine(t *testing.T) {
	is := is.New(t)
	report := validation.NewReport()
	report.Add(validation.NewCode("CSIP1", "CSIPv2.0.4", validation.Must, "test"), validation.Fail("bad"))
	line := summaryLine(&input{path: "sip-1.zip", report: report, reportFile: "out.json"})
	is.True(strings.Contains(line, "INVALID"))
	is.True(strings.Contains(line, "errors: 1"))
	is.True(strings.Contains(line, "report: out.json"))
}

func TestReadConfig(t *testing.T) {
	is := is.New(t)
	name := filepath.Join(t.TempDir(), "eark.yaml")
	cfg, err := readConfig(name)
	is.NoErr(err)
	is.Equal(cfg.Format, "json")
	is.Equal(cfg.Concurrency, 1)
	conf := `report_dir: /tmp/reports
format: yaml
concurrency: 4
repos:
  archive:
    driver: s3
    bucket: packages
    region: us-east-1
`
	is.NoErr(os.WriteFile(name, []byte(conf), 0644))
	cfg, err = readConfig(name)
	is.NoErr(err)
	is.Equal(cfg.ReportDir, "/tmp/reports")
	is.Equal(cfg.Format, "yaml")
	is.Equal(cfg.Concurrency, 4)
	repo := cfg.Repo("archive", false)
	is.True(repo != nil)
	is.Equal(repo.Driver, s3Driver)
	is.Equal(*repo.Bucket, "packages")
	is.Equal(cfg.Repo("missing", false), nil)
}

func TestOpenFileBucket(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	is.NoErr(os.MkdirAll(filepath.Join(dir, "pkg", "metadata"), 0755))
	is.NoErr(os.WriteFile(filepath.Join(dir, "pkg", "METS.xml"), []byte("<mets/>"), 0644))
	is.NoErr(os.WriteFile(filepath.Join(dir, "pkg", "metadata", "dc.xml"), []byte("<dc/>"), 0644))
	conf, err := readConfig(filepath.Join(dir, "missing.yaml"))
	is.NoErr(err)
	conf.Repos["local"] = &RepoConfig{Driver: fileDriver, Path: dir}
	fsys, err := conf.NewFS(context.Background(), "local")
	is.NoErr(err)
	defer fsys.Close()
	entries, err := fsys.ReadDir(context.Background(), "pkg")
	is.NoErr(err)
	is.Equal(len(entries), 2)
	info, err := fsys.Stat(context.Background(), "pkg/metadata")
	is.NoErr(err)
	is.True(info.IsDir())
	_, err = conf.NewFS(context.Background(), "none")
	is.True(err != nil)
}

func TestProgress(t *testing.T) {
	is := is.New(t)
	var out strings.Builder
	prog := NewProgress(&out, "sip-1.zip ")
	err := prog.Start(func() error {
		prog.ModuleStarted("CSIP METS root", "CSIP1")
		prog.ModuleStarted("CSIP METS root", "CSIP2")
		return nil
	})
	is.NoErr(err)
	is.True(strings.HasPrefix(out.String(), "sip-1.zip "))
	is.True(strings.Contains(out.String(), "2 rules"))
	is.True(strings.Contains(out.String(), "done"))
}
