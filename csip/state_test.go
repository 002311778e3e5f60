package csip_test

import (
	"sync"
	"testing"

	"github.com/matryer/is"
	"github.com/srerickson/eark/backend"
	"github.com/srerickson/eark/csip"
	"github.com/srerickson/eark/validation"
)

func TestIDRegistry(t *testing.T) {
	is := is.New(t)
	reg := csip.NewIDRegistry()
	is.True(!reg.Register("a"))
	is.True(reg.Register("a")) // duplicate
	is.True(reg.Register("a")) // reported again
	is.True(!reg.Register("b"))
	is.True(reg.Contains("a"))
	is.True(!reg.Contains("c"))
	is.Equal(reg.Len(), 2)
}

func TestIDRegistryConcurrent(t *testing.T) {
	is := is.New(t)
	reg := csip.NewIDRegistry()
	var wg sync.WaitGroup
	dups := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dups <- reg.Register("id")
		}()
	}
	wg.Wait()
	close(dups)
	var firsts int
	for dup := range dups {
		if !dup {
			firsts++
		}
	}
	is.Equal(firsts, 1)
}

func TestEmit(t *testing.T) {
	is := is.New(t)
	o := validation.Outcome{
		Message: "mets/@OBJID is missing in " + csip.Here,
		Issues:  []string{"also in " + csip.Here},
	}
	root := csip.NewState(nil, backend.Manifest{Root: true, Name: "pkg"}, nil, nil, nil, nil)
	rep := csip.NewState(nil, backend.Manifest{Name: "rep1"}, nil, nil, nil, nil)
	is.Equal(root.Emit(o).Message, "mets/@OBJID is missing in root METS.xml")
	is.Equal(rep.Emit(o).Message, "mets/@OBJID is missing in representation rep1 METS.xml")
	is.Equal(rep.Emit(o).Issues, []string{"also in representation rep1 METS.xml"})
	// the outcome isn't modified
	is.Equal(o.Issues[0], "also in "+csip.Here)
}

func TestIsDateTime(t *testing.T) {
	is := is.New(t)
	for _, val := range []string{
		"2023-06-01T12:00:00Z",
		"2023-06-01T12:00:00.123+02:00",
		"2023-06-01T12:00:00",
	} {
		is.True(csip.IsDateTime(val)) // valid date time
	}
	for _, val := range []string{"", "2023-06-01", "yesterday", "2023-13-01T12:00:00Z"} {
		is.True(!csip.IsDateTime(val)) // invalid date time
	}
}
