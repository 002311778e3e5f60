package validation_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/go-test/deep"
	"github.com/matryer/is"
	"github.com/srerickson/eark/validation"
)

var (
	mustCode   = validation.NewCode("CSIP1", "CSIPv2.0.4", validation.Must, "mets/@OBJID")
	shouldCode = validation.NewCode("CSIP17", "CSIPv2.0.4", validation.Should, "mets/dmdSec")
	mayCode    = validation.NewCode("CSIP45", "CSIPv2.0.4", validation.May, "mets/amdSec/rightsMD")
)

func TestFirstFailureWins(t *testing.T) {
	is := is.New(t)
	r := validation.NewReport()
	r.Add(mustCode, validation.Fail("first"))
	r.Add(mustCode, validation.Skip("skipped later"))
	r.Add(mustCode, validation.Pass())
	r.Add(mustCode, validation.Fail("second"))
	e, ok := r.Get("CSIP1")
	is.True(ok)
	is.True(!e.Valid)
	is.True(!e.Skipped)
	is.Equal(e.Message, "first")
	is.Equal(e.Issues, []string{"second"})
}

func TestMergeOrder(t *testing.T) {
	is := is.New(t)
	r := validation.NewReport()
	// valid replaces skipped
	r.Add(shouldCode, validation.Skip("not yet"))
	r.Add(shouldCode, validation.Pass())
	e, _ := r.Get(shouldCode.ID)
	is.True(e.Valid && !e.Skipped)
	// skipped doesn't replace valid
	r.Add(shouldCode, validation.Skip("again"))
	e, _ = r.Get(shouldCode.ID)
	is.True(!e.Skipped)
	// invalid replaces valid
	r.Add(shouldCode, validation.Fail("bad"))
	e, _ = r.Get(shouldCode.ID)
	is.True(!e.Valid)
	is.Equal(e.Message, "bad")
}

func TestCounts(t *testing.T) {
	is := is.New(t)
	r := validation.NewReport()
	r.Add(mustCode, validation.Fail("missing"))
	r.Add(shouldCode, validation.Fail("missing"))
	r.Add(mayCode, validation.Fail("missing"))
	r.Add(validation.Code{ID: "CSIP2", Level: validation.Must}, validation.Pass())
	r.Add(validation.Code{ID: "CSIP3", Level: validation.Must}, validation.Skip("gate"))
	diff := deep.Equal(r.Counts(), validation.Counts{
		Errors:    1,
		Warnings:  1,
		Notes:     1,
		Successes: 1,
		Skipped:   1,
	})
	is.True(diff == nil)
	is.True(!r.Valid())
	is.Equal(len(r.Failures()), 3)
}

func TestReportMerge(t *testing.T) {
	is := is.New(t)
	a := validation.NewReport()
	a.Add(mustCode, validation.Fail("from a"))
	b := validation.NewReport()
	b.SetPackageType("SIP")
	b.Add(mustCode, validation.Pass())
	b.Add(shouldCode, validation.Pass())
	a.Merge(b)
	is.Equal(a.Len(), 2)
	is.Equal(a.PackageType(), "SIP")
	e, _ := a.Get(mustCode.ID)
	is.True(!e.Valid)
	ids := []string{}
	for _, e := range a.Entries() {
		ids = append(ids, e.ID)
	}
	is.Equal(ids, []string{"CSIP1", "CSIP17"})
}

func TestConcurrentAdd(t *testing.T) {
	is := is.New(t)
	r := validation.NewReport()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i == 7 {
				r.Add(mustCode, validation.Fail("boom"))
				return
			}
			r.Add(mustCode, validation.Pass())
		}(i)
	}
	wg.Wait()
	e, _ := r.Get(mustCode.ID)
	is.True(!e.Valid)
	is.Equal(e.Message, "boom")
}

func TestWriteJSON(t *testing.T) {
	is := is.New(t)
	r := validation.NewReport()
	r.SetPackageType("AIP")
	r.Add(shouldCode, validation.Pass())
	r.Add(mustCode, validation.Fail("mets/@OBJID is missing in %s", "METS.xml"))
	buf := &bytes.Buffer{}
	is.NoErr(r.Write(buf, validation.JSON))
	// results keep report order
	is.True(strings.Index(buf.String(), `"CSIP17"`) < strings.Index(buf.String(), `"CSIP1"`))
	var out struct {
		PackageType string                      `json:"package_type"`
		Valid       bool                        `json:"valid"`
		Errors      int                         `json:"errors"`
		Successes   int                         `json:"successes"`
		Results     map[string]validation.Entry `json:"results"`
	}
	is.NoErr(json.Unmarshal(buf.Bytes(), &out))
	is.Equal(out.PackageType, "AIP")
	is.True(!out.Valid)
	is.Equal(out.Errors, 1)
	is.Equal(out.Successes, 1)
	is.Equal(out.Results["CSIP1"].Message, "mets/@OBJID is missing in METS.xml")
	is.Equal(out.Results["CSIP1"].Specification, "CSIPv2.0.4")
}

func TestWriteYAML(t *testing.T) {
	is := is.New(t)
	r := validation.NewReport()
	r.SetPackageType("SIP")
	r.Add(mustCode, validation.Pass())
	buf := &bytes.Buffer{}
	is.NoErr(r.Write(buf, validation.YAML))
	out := buf.String()
	is.True(strings.Contains(out, "package_type: SIP"))
	is.True(strings.Contains(out, "CSIP1:"))
	is.True(strings.Contains(out, "valid: true"))
}

func TestParseFormat(t *testing.T) {
	is := is.New(t)
	f, err := validation.ParseFormat("YAML")
	is.NoErr(err)
	is.Equal(f, validation.YAML)
	is.Equal(f.Ext(), ".yaml")
	f, err = validation.ParseFormat("")
	is.NoErr(err)
	is.Equal(f, validation.JSON)
	_, err = validation.ParseFormat("xml")
	is.True(err != nil)
}
