package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/srerickson/eark/internal/testpkg"
	"github.com/srerickson/eark/logging"
)

func TestValidateLogsFailures(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	pkg := testpkg.Package{
		ID:             "sip-1",
		Type:           "SIP",
		RightsChecksum: strings.Repeat("0", 64),
	}
	name := filepath.Join(dir, "sip-1.zip")
	is.NoErr(testpkg.WriteZip(name, pkg.Files()))

	var logs, out bytes.Buffer
	defaultLog, defaultVerbose := log, rootFlags.verbose
	log, rootFlags.verbose = logging.New(&logs), 1
	logging.SetVerbosity(1)
	t.Cleanup(func() {
		log, rootFlags.verbose = defaultLog, defaultVerbose
		logging.SetVerbosity(0)
	})

	conf := &Config{ReportDir: filepath.Join(dir, "reports"), Format: "json", Concurrency: 1}
	err := runValidate(context.Background(), conf, []string{name}, &out)
	is.True(errors.Is(err, errInvalid))
	is.True(strings.Contains(logs.String(), "CSIP56")) // failed rule is logged
	is.True(strings.Contains(out.String(), "INVALID"))
}
