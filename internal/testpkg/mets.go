package testpkg

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
)

const (
	// Created is the timestamp used for all dates in generated manifests.
	Created = "2023-06-01T12:00:00Z"

	SIPProfile  = "https://earksip.dilcis.eu/profile/E-ARK-SIP.xml"
	CSIPProfile = "https://earkcsip.dilcis.eu/profile/E-ARK-CSIP.xml"

	DescriptivePath   = "metadata/descriptive/dc.xml"
	PreservationPath  = "metadata/preservation/premis.xml"
	RightsPath        = "metadata/other/rights.xml"
	DocumentationPath = "documentation/readme.txt"
	SchemaPath        = "schemas/mets.xsd"
	DataPath          = "data/file.txt"
)

// Package describes a generated information package with valid
// manifests: sizes, checksums and references all match the generated
// files.
type Package struct {
	// ID is the package identifier and the name of the root folder.
	ID string
	// Type is the OAIS package type declared in the manifests.
	Type string
	// Representations are the names of the representation folders.
	Representations []string
	// NoAmdSec omits the amdSec from all manifests, along with the
	// preservation and rights metadata files.
	NoAmdSec bool
	// RightsChecksum, if set, is declared as the checksum of the rights
	// metadata file instead of its actual checksum.
	RightsChecksum string
	// CorruptRepresentations are representations whose manifests are not
	// well-formed.
	CorruptRepresentations []string
}

// Sum returns the hex-encoded SHA-256 digest of data
func Sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Files returns the package's files, under the root folder.
func (p Package) Files() Files {
	files := Files{
		DescriptivePath:   []byte("<dc><title>" + p.ID + "</title></dc>\n"),
		DocumentationPath: []byte("documentation for " + p.ID + "\n"),
		SchemaPath:        []byte("<schema/>\n"),
	}
	if !p.NoAmdSec {
		files[PreservationPath] = []byte("<premis><object>" + p.ID + "</object></premis>\n")
		files[RightsPath] = []byte("<rights>" + p.ID + " may be used for tests</rights>\n")
	}
	for _, rep := range p.Representations {
		dir := path.Join("representations", rep)
		repFiles := Files{
			DataPath: []byte("content of " + rep + "\n"),
		}
		if !p.NoAmdSec {
			repFiles[PreservationPath] = []byte("<premis><object>" + rep + "</object></premis>\n")
		}
		repFiles["METS.xml"] = p.repMETS(rep, repFiles)
		for _, corrupt := range p.CorruptRepresentations {
			if corrupt == rep {
				repFiles["METS.xml"] = Corrupt(repFiles["METS.xml"])
			}
		}
		for name, data := range repFiles {
			files[path.Join(dir, name)] = data
		}
	}
	files["METS.xml"] = p.rootMETS(files)
	return files.Prefix(p.ID)
}

type metsWriter struct {
	bytes.Buffer
}

func (w *metsWriter) printf(format string, args ...any) {
	fmt.Fprintf(&w.Buffer, format, args...)
}

func (w *metsWriter) open(objID, label, profile, pkgType string) {
	w.printf(`<?xml version="1.0" encoding="UTF-8"?>
<mets xmlns="http://www.loc.gov/METS/" xmlns:xlink="http://www.w3.org/1999/xlink" xmlns:csip="https://DILCIS.eu/XML/METS/CSIPExtensionMETS" xmlns:sip="https://DILCIS.eu/XML/METS/SIPExtensionMETS" OBJID="%s" LABEL="%s" TYPE="Datasets" csip:CONTENTINFORMATIONTYPE="MIXED" PROFILE="%s">
  <metsHdr CREATEDATE="%s" LASTMODDATE="%s" RECORDSTATUS="NEW" csip:OAISPACKAGETYPE="%s">
    <agent ROLE="CREATOR" TYPE="OTHER" OTHERTYPE="SOFTWARE">
      <name>eark</name>
      <note csip:NOTETYPE="SOFTWARE VERSION">0.1.0</note>
    </agent>
    <agent ROLE="ARCHIVIST" TYPE="ORGANIZATION">
      <name>Test Archive</name>
      <note csip:NOTETYPE="IDENTIFICATIONCODE">TA-1</note>
    </agent>
    <altRecordID TYPE="SUBMISSIONAGREEMENT">SA-1</altRecordID>
    <altRecordID TYPE="PREVIOUSSUBMISSIONAGREEMENT">SA-0</altRecordID>
    <altRecordID TYPE="REFERENCECODE">REF-1</altRecordID>
    <altRecordID TYPE="PREVIOUSREFERENCECODE">REF-0</altRecordID>
  </metsHdr>
`, objID, label, profile, Created, Created, pkgType)
}

func (w *metsWriter) mdRef(href string, data []byte, mdType, mimeType, checksum string) {
	if checksum == "" {
		checksum = Sum(data)
	}
	w.printf(`      <mdRef LOCTYPE="URL" xlink:type="simple" xlink:href="%s" MDTYPE="%s" MIMETYPE="%s" SIZE="%d" CREATED="%s" CHECKSUM="%s" CHECKSUMTYPE="SHA-256"/>
`, href, mdType, mimeType, len(data), Created, checksum)
}

func (w *metsWriter) file(id, href string, data []byte, mimeType, admID, dmdID string) {
	w.printf(`      <file ID="%s" MIMETYPE="%s" SIZE="%d" CREATED="%s" CHECKSUM="%s" CHECKSUMTYPE="SHA-256" OWNERID="%s"`,
		id, mimeType, len(data), Created, Sum(data), href)
	if admID != "" {
		w.printf(` ADMID="%s"`, admID)
	}
	if dmdID != "" {
		w.printf(` DMDID="%s"`, dmdID)
	}
	w.printf(`>
        <FLocat LOCTYPE="URL" xlink:type="simple" xlink:href="%s"/>
      </file>
`, href)
}

func (p Package) rootMETS(files Files) []byte {
	w := &metsWriter{}
	w.open(p.ID, "Test package "+p.ID, SIPProfile, p.Type)
	w.printf("  <dmdSec ID=\"root-dmd\" CREATED=\"%s\" STATUS=\"CURRENT\">\n", Created)
	w.mdRef(DescriptivePath, files[DescriptivePath], "DC", "text/xml", "")
	w.printf("  </dmdSec>\n")
	admID := ""
	if !p.NoAmdSec {
		admID = "root-digiprov"
		w.printf("  <amdSec ID=\"root-amd\">\n")
		w.printf("    <digiprovMD ID=\"root-digiprov\" STATUS=\"CURRENT\">\n")
		w.mdRef(PreservationPath, files[PreservationPath], "PREMIS", "text/xml", "")
		w.printf("    </digiprovMD>\n")
		w.printf("    <rightsMD ID=\"root-rights\" STATUS=\"CURRENT\">\n")
		w.mdRef(RightsPath, files[RightsPath], "PREMIS:RIGHTS", "text/xml", p.RightsChecksum)
		w.printf("    </rightsMD>\n")
		w.printf("  </amdSec>\n")
	}
	w.printf("  <fileSec ID=\"root-filesec\">\n")
	group := func(id, use, fileID, href string) {
		w.printf("    <fileGrp ID=\"%s\" USE=\"%s\"", id, use)
		if admID != "" {
			w.printf(" ADMID=\"%s\"", admID)
		}
		w.printf(">\n")
		w.file(fileID, href, files[href], "text/plain", admID, "root-dmd")
		w.printf("    </fileGrp>\n")
	}
	group("root-grp-docs", "Documentation", "root-file-docs", DocumentationPath)
	group("root-grp-schemas", "Schemas", "root-file-schemas", SchemaPath)
	for _, rep := range p.Representations {
		group("root-grp-"+rep, "Representations/"+rep, "root-file-"+rep, path.Join("representations", rep, "METS.xml"))
	}
	w.printf("  </fileSec>\n")
	w.printf("  <structMap ID=\"root-structmap\" TYPE=\"PHYSICAL\" LABEL=\"CSIP\">\n")
	w.printf("    <div ID=\"root-div\" LABEL=\"%s\">\n", p.ID)
	amdRefs := ""
	if !p.NoAmdSec {
		amdRefs = ` ADMID="root-digiprov root-rights"`
	}
	w.printf("      <div ID=\"root-div-metadata\" LABEL=\"Metadata\"%s DMDID=\"root-dmd\"/>\n", amdRefs)
	w.printf("      <div ID=\"root-div-docs\" LABEL=\"Documentation\"><fptr FILEID=\"root-grp-docs\"/></div>\n")
	w.printf("      <div ID=\"root-div-schemas\" LABEL=\"Schemas\"><fptr FILEID=\"root-grp-schemas\"/></div>\n")
	for _, rep := range p.Representations {
		w.printf(`      <div ID="root-div-%s" LABEL="Representations/%s">
        <fptr FILEID="root-grp-%s"/>
        <mptr LOCTYPE="URL" xlink:type="simple" xlink:href="representations/%s/METS.xml" xlink:title="root-grp-%s"/>
      </div>
`, rep, rep, rep, rep, rep)
	}
	w.printf("    </div>\n  </structMap>\n</mets>\n")
	return w.Bytes()
}

func (p Package) repMETS(rep string, files Files) []byte {
	w := &metsWriter{}
	objID := p.ID + "-" + rep
	w.open(objID, "Representation "+rep, CSIPProfile, p.Type)
	admID := ""
	if !p.NoAmdSec {
		admID = rep + "-digiprov"
		w.printf("  <amdSec ID=\"%s-amd\">\n", rep)
		w.printf("    <digiprovMD ID=\"%s\" STATUS=\"CURRENT\">\n", admID)
		w.mdRef(PreservationPath, files[PreservationPath], "PREMIS", "text/xml", "")
		w.printf("    </digiprovMD>\n  </amdSec>\n")
	}
	w.printf("  <fileSec ID=\"%s-filesec\">\n", rep)
	w.printf("    <fileGrp ID=\"%s-grp-data\" USE=\"Data\"", rep)
	if admID != "" {
		w.printf(" ADMID=\"%s\"", admID)
	}
	w.printf(">\n")
	w.file(rep+"-file-data", DataPath, files[DataPath], "text/plain", admID, "")
	w.printf("    </fileGrp>\n  </fileSec>\n")
	w.printf("  <structMap ID=\"%s-structmap\" TYPE=\"PHYSICAL\" LABEL=\"CSIP\">\n", rep)
	w.printf("    <div ID=\"%s-div\" LABEL=\"%s\">\n", rep, objID)
	if admID != "" {
		w.printf("      <div ID=\"%s-div-metadata\" LABEL=\"Metadata\" ADMID=\"%s\"/>\n", rep, admID)
	}
	w.printf("      <div ID=\"%s-div-data\" LABEL=\"Data\"><fptr FILEID=\"%s-grp-data\"/></div>\n", rep, rep)
	w.printf("    </div>\n  </structMap>\n</mets>\n")
	return w.Bytes()
}

// Corrupt returns a truncated copy of a manifest that is not well-formed.
func Corrupt(manifest []byte) []byte {
	s := string(manifest)
	if i := strings.Index(s, "<fileSec"); i > 0 {
		s = s[:i] + "<fileSec>\n  <fileGrp\n"
	}
	return []byte(s)
}
