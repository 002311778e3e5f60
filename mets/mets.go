// Package mets binds the parts of a METS document that E-ARK rules inspect.
// It is not a schema binding: values are kept as they appear in the
// document (sizes and dates are strings) so that rules can report malformed
// values instead of failing to parse.
package mets

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	NS      = "http://www.loc.gov/METS/"
	XLinkNS = "http://www.w3.org/1999/xlink"
	CSIPNS  = "https://DILCIS.eu/XML/METS/CSIPExtensionMETS"
	SIPNS   = "https://DILCIS.eu/XML/METS/SIPExtensionMETS"
)

// Mets is the document root.
type Mets struct {
	XMLName                     xml.Name    `xml:"mets"`
	ID                          string      `xml:"ID,attr"`
	OBJID                       string      `xml:"OBJID,attr"`
	Label                       string      `xml:"LABEL,attr"`
	Type                        string      `xml:"TYPE,attr"`
	Profile                     string      `xml:"PROFILE,attr"`
	OtherType                   string      `xml:"https://DILCIS.eu/XML/METS/CSIPExtensionMETS OTHERTYPE,attr"`
	ContentInformationType      string      `xml:"https://DILCIS.eu/XML/METS/CSIPExtensionMETS CONTENTINFORMATIONTYPE,attr"`
	OtherContentInformationType string      `xml:"https://DILCIS.eu/XML/METS/CSIPExtensionMETS OTHERCONTENTINFORMATIONTYPE,attr"`
	Hdr                         *MetsHdr    `xml:"metsHdr"`
	DmdSecs                     []MdSec     `xml:"dmdSec"`
	AmdSecs                     []AmdSec    `xml:"amdSec"`
	FileSec                     *FileSec    `xml:"fileSec"`
	StructMaps                  []StructMap `xml:"structMap"`
}

// MetsHdr is mets/metsHdr
type MetsHdr struct {
	ID              string        `xml:"ID,attr"`
	CreateDate      string        `xml:"CREATEDATE,attr"`
	LastModDate     string        `xml:"LASTMODDATE,attr"`
	RecordStatus    string        `xml:"RECORDSTATUS,attr"`
	OAISPackageType string        `xml:"https://DILCIS.eu/XML/METS/CSIPExtensionMETS OAISPACKAGETYPE,attr"`
	Agents          []Agent       `xml:"agent"`
	AltRecordIDs    []AltRecordID `xml:"altRecordID"`
}

type Agent struct {
	ID        string `xml:"ID,attr"`
	Role      string `xml:"ROLE,attr"`
	OtherRole string `xml:"OTHERROLE,attr"`
	Type      string `xml:"TYPE,attr"`
	OtherType string `xml:"OTHERTYPE,attr"`
	Name      string `xml:"name"`
	Notes     []Note `xml:"note"`
}

type Note struct {
	Type  string `xml:"https://DILCIS.eu/XML/METS/CSIPExtensionMETS NOTETYPE,attr"`
	Value string `xml:",chardata"`
}

type AltRecordID struct {
	Type  string `xml:"TYPE,attr"`
	Value string `xml:",chardata"`
}

// MdSec is a metadata section: dmdSec, digiprovMD, rightsMD, techMD or
// sourceMD.
type MdSec struct {
	ID      string  `xml:"ID,attr"`
	Created string  `xml:"CREATED,attr"`
	Status  string  `xml:"STATUS,attr"`
	MdRefs  []MdRef `xml:"mdRef"`
}

// MdRef references an external metadata file. The xlink:type attribute is
// not bound; use MineAttribute.
type MdRef struct {
	ID           string `xml:"ID,attr"`
	LocType      string `xml:"LOCTYPE,attr"`
	Href         string `xml:"http://www.w3.org/1999/xlink href,attr"`
	MDType       string `xml:"MDTYPE,attr"`
	OtherMDType  string `xml:"OTHERMDTYPE,attr"`
	MIMEType     string `xml:"MIMETYPE,attr"`
	Size         string `xml:"SIZE,attr"`
	Created      string `xml:"CREATED,attr"`
	Checksum     string `xml:"CHECKSUM,attr"`
	ChecksumType string `xml:"CHECKSUMTYPE,attr"`
}

type AmdSec struct {
	ID          string  `xml:"ID,attr"`
	TechMDs     []MdSec `xml:"techMD"`
	RightsMDs   []MdSec `xml:"rightsMD"`
	SourceMDs   []MdSec `xml:"sourceMD"`
	DigiprovMDs []MdSec `xml:"digiprovMD"`
}

type FileSec struct {
	ID       string    `xml:"ID,attr"`
	FileGrps []FileGrp `xml:"fileGrp"`
}

type FileGrp struct {
	ID                          string    `xml:"ID,attr"`
	Use                         string    `xml:"USE,attr"`
	AdmID                       string    `xml:"ADMID,attr"`
	ContentInformationType      string    `xml:"https://DILCIS.eu/XML/METS/CSIPExtensionMETS CONTENTINFORMATIONTYPE,attr"`
	OtherContentInformationType string    `xml:"https://DILCIS.eu/XML/METS/CSIPExtensionMETS OTHERCONTENTINFORMATIONTYPE,attr"`
	Files                       []File    `xml:"file"`
	FileGrps                    []FileGrp `xml:"fileGrp"`
}

type File struct {
	ID           string   `xml:"ID,attr"`
	MIMEType     string   `xml:"MIMETYPE,attr"`
	Size         string   `xml:"SIZE,attr"`
	Created      string   `xml:"CREATED,attr"`
	Checksum     string   `xml:"CHECKSUM,attr"`
	ChecksumType string   `xml:"CHECKSUMTYPE,attr"`
	OwnerID      string   `xml:"OWNERID,attr"`
	AdmID        string   `xml:"ADMID,attr"`
	DmdID        string   `xml:"DMDID,attr"`
	FLocats      []FLocat `xml:"FLocat"`
}

// FLocat is file/FLocat. The xlink:type attribute is not bound; use
// MineAttribute.
type FLocat struct {
	ID      string `xml:"ID,attr"`
	LocType string `xml:"LOCTYPE,attr"`
	Href    string `xml:"http://www.w3.org/1999/xlink href,attr"`
}

type StructMap struct {
	ID    string `xml:"ID,attr"`
	Type  string `xml:"TYPE,attr"`
	Label string `xml:"LABEL,attr"`
	Divs  []Div  `xml:"div"`
}

type Div struct {
	ID    string `xml:"ID,attr"`
	Label string `xml:"LABEL,attr"`
	AdmID string `xml:"ADMID,attr"`
	DmdID string `xml:"DMDID,attr"`
	Fptrs []Fptr `xml:"fptr"`
	Mptrs []Mptr `xml:"mptr"`
	Divs  []Div  `xml:"div"`
}

type Fptr struct {
	ID     string `xml:"ID,attr"`
	FileID string `xml:"FILEID,attr"`
}

type Mptr struct {
	ID      string `xml:"ID,attr"`
	LocType string `xml:"LOCTYPE,attr"`
	Href    string `xml:"http://www.w3.org/1999/xlink href,attr"`
	Title   string `xml:"http://www.w3.org/1999/xlink title,attr"`
}

// DigiprovMDs returns all amdSec/digiprovMD sections.
func (m *Mets) DigiprovMDs() []MdSec {
	var secs []MdSec
	for _, amd := range m.AmdSecs {
		secs = append(secs, amd.DigiprovMDs...)
	}
	return secs
}

// RightsMDs returns all amdSec/rightsMD sections.
func (m *Mets) RightsMDs() []MdSec {
	var secs []MdSec
	for _, amd := range m.AmdSecs {
		secs = append(secs, amd.RightsMDs...)
	}
	return secs
}

// FileGrps returns all file groups, including nested ones, in document
// order.
func (m *Mets) FileGrps() []FileGrp {
	if m.FileSec == nil {
		return nil
	}
	var grps []FileGrp
	var walk func([]FileGrp)
	walk = func(gs []FileGrp) {
		for _, g := range gs {
			grps = append(grps, g)
			walk(g.FileGrps)
		}
	}
	walk(m.FileSec.FileGrps)
	return grps
}

// PackageType returns the OAIS package type declared in the header.
func (m *Mets) PackageType() string {
	if m.Hdr == nil {
		return ""
	}
	return m.Hdr.OAISPackageType
}

// IDs splits an IDREFS attribute value.
func IDs(refs string) []string {
	return strings.Fields(refs)
}

// ParseError is returned by Decode for documents that are not well-formed
// or can't be bound.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Err)
	}
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// Decode reads a METS document from r.
func Decode(r io.Reader) (*Mets, error) {
	dec := newDecoder(r)
	m := &Mets{}
	if err := dec.Decode(m); err != nil {
		line, col := dec.InputPos()
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
			line, col = 0, 0
		}
		return nil, &ParseError{Line: line, Column: col, Err: err}
	}
	return m, nil
}

func newDecoder(r io.Reader) *xml.Decoder {
	br := bufio.NewReader(r)
	bom, _ := br.Peek(3)
	wide := false
	switch {
	case bytes.HasPrefix(bom, utf8BOM):
		br.Discard(len(utf8BOM))
	case bytes.HasPrefix(bom, []byte{0xFE, 0xFF}), bytes.HasPrefix(bom, []byte{0xFF, 0xFE}):
		wide = true
	}
	var in io.Reader = br
	if wide {
		in = transform.NewReader(br, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder())
	}
	dec := xml.NewDecoder(in)
	dec.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		if wide && strings.HasPrefix(strings.ToLower(label), "utf-16") {
			// already transcoded
			return input, nil
		}
		return charsetReader(label, input)
	}
	return dec
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// charsetReader transcodes documents in any encoding with a WHATWG label
// (ISO-8859-1, windows-1252, Shift_JIS, ...) to UTF-8.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "utf-8", "utf8", "us-ascii", "ascii":
		return input, nil
	}
	r, err := charset.NewReaderLabel(label, input)
	if err != nil {
		return nil, fmt.Errorf("unsupported document encoding: %q", label)
	}
	return r, nil
}
