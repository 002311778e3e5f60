package vocabulary_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/srerickson/eark/vocabulary"
)

func TestDefault(t *testing.T) {
	is := is.New(t)
	v := vocabulary.Default()
	is.True(v == vocabulary.Default()) // loaded once
	is.True(v.ContentCategories.Contains("Mixed"))
	is.True(v.ContentCategories.Contains("OTHER"))
	is.True(v.OAISPackageTypes.Contains("SIP"))
	is.True(v.OAISPackageTypes.Contains("AIP"))
	is.True(!v.OAISPackageTypes.Contains("sip"))
	is.True(v.Statuses.Contains("CURRENT"))
	is.True(v.Statuses.Contains("SUPERSEDED"))
	is.True(v.ChecksumTypes.Contains("SHA-256"))
	is.True(v.MDTypes.Contains("PREMIS:EVENT"))
	is.True(v.NoteTypes.Contains("SOFTWARE VERSION"))
	is.True(v.RecordStatuses.Contains("NEW"))
	is.True(v.AltRecordIDTypes.Contains("SUBMISSIONAGREEMENT"))
}

func TestMediaTypes(t *testing.T) {
	is := is.New(t)
	v := vocabulary.Default()
	is.True(v.IsMediaType("text/xml"))
	is.True(v.IsMediaType("Application/PDF"))
	is.True(v.IsMediaType("text/plain; charset=utf-8"))
	is.True(!v.IsMediaType("text/nonsense"))
	is.True(!v.IsMediaType("text"))
	for _, registered := range []string{
		"application/marc",
		"image/heic",
		"audio/vnd.wave",
		"application/vnd.ms-access",
		"application/vnd.oasis.opendocument.text",
		"model/gltf+json",
		"font/woff2",
	} {
		is.True(v.IsMediaType(registered)) // registered type
	}
	is.True(!v.IsMediaType(""))
}

func TestFileGrpUse(t *testing.T) {
	is := is.New(t)
	v := vocabulary.Default()
	is.True(v.IsFileGrpUse("Documentation"))
	is.True(v.IsFileGrpUse("Representations/rep1"))
	is.True(!v.IsFileGrpUse("Representations/"))
	is.True(!v.IsFileGrpUse("documentation"))
}

func TestLoad(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, vocabulary.VocabulariesFile), []byte("status:\n  - ACTIVE\n"), 0644)
	is.NoErr(err)
	v, err := vocabulary.Load(dir)
	is.NoErr(err)
	is.True(v.Statuses.Contains("ACTIVE"))
	is.True(!v.Statuses.Contains("CURRENT"))
	// media types fall back to the built-in list
	is.True(v.IsMediaType("text/xml"))
}
