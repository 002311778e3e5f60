// Package eark validates E-ARK Information Packages (SIP, AIP and the common
// CSIP profile they share). The top-level package provides storage
// primitives and package layout constants. The csip, sip and aip packages
// provide the rules; the validator package drives them.
package eark

import (
	"errors"
	"fmt"
	"io/fs"
)

const (
	// package version
	Version = "0.1.0"

	// LevelDebug is the logr verbosity used for debug messages.
	LevelDebug = 1

	METSFile           = "METS.xml"
	MetadataDir        = "metadata"
	DescriptiveDir     = "descriptive"
	PreservationDir    = "preservation"
	OtherDir           = "other"
	RepresentationsDir = "representations"
	DataDir            = "data"
	SchemasDir         = "schemas"
	DocumentationDir   = "documentation"
)

var (
	ErrNotFound    = fmt.Errorf("not found: %w", fs.ErrNotExist)
	ErrUnsupported = errors.New("unsupported information package")
	ErrNoPackageID = errors.New("package identifier (mets/@OBJID) is required to resolve references")
)

// PackageType identifies the E-ARK extension profile a package claims.
type PackageType string

const (
	CSIP PackageType = "CSIP"
	SIP  PackageType = "SIP"
	AIP  PackageType = "AIP"
)

// String implements fmt.Stringer for PackageType
func (t PackageType) String() string { return string(t) }
