package csip

import (
	"github.com/srerickson/eark/validation"
)

const (
	// Specification is the label of the rules in this package.
	Specification = "CSIPv2.0.4"

	specURL = "https://earkcsip.dilcis.eu/"
)

func mustCode(id, desc string) validation.Code   { return newCode(id, validation.Must, desc) }
func shouldCode(id, desc string) validation.Code { return newCode(id, validation.Should, desc) }
func mayCode(id, desc string) validation.Code    { return newCode(id, validation.May, desc) }

func newCode(id string, level validation.Level, desc string) validation.Code {
	c := validation.NewCode(id, Specification, level, desc)
	c.URL = specURL + "#" + id
	return c
}

var (
	// CSIP0 records package-level structural failures and unparsable
	// manifests.
	CSIP0 = mustCode("CSIP0", "The package structure is valid and every METS file is well-formed")

	// package structure
	CSIPSTR1  = mustCode("CSIPSTR1", "Any Information Package MUST be included within a single physical root folder")
	CSIPSTR2  = shouldCode("CSIPSTR2", "The Information Package root folder SHOULD be named with the ID or name of the Information Package")
	CSIPSTR3  = mayCode("CSIPSTR3", "The Information Package root folder MAY be compressed")
	CSIPSTR4  = mustCode("CSIPSTR4", "The Information Package root folder MUST include a file named METS.xml")
	CSIPSTR5  = shouldCode("CSIPSTR5", "The Information Package root folder SHOULD include a folder named metadata")
	CSIPSTR6  = shouldCode("CSIPSTR6", "The metadata folder SHOULD include a folder named descriptive")
	CSIPSTR7  = shouldCode("CSIPSTR7", "The metadata folder SHOULD include a folder named preservation")
	CSIPSTR8  = mayCode("CSIPSTR8", "The metadata folder MAY include a folder named other")
	CSIPSTR9  = shouldCode("CSIPSTR9", "The Information Package root folder SHOULD include a folder named representations")
	CSIPSTR10 = shouldCode("CSIPSTR10", "The representations folder SHOULD include a sub-folder for each individual representation")
	CSIPSTR11 = shouldCode("CSIPSTR11", "The representation folder SHOULD include a sub-folder named data")
	CSIPSTR12 = shouldCode("CSIPSTR12", "The representation folder SHOULD include a metadata file named METS.xml")
	CSIPSTR13 = shouldCode("CSIPSTR13", "The representation folder SHOULD include a sub-folder named metadata")
	CSIPSTR14 = mayCode("CSIPSTR14", "The Information Package root folder MAY include a folder named schemas")
	CSIPSTR15 = mayCode("CSIPSTR15", "The Information Package root folder MAY include a folder named documentation")
	CSIPSTR16 = mayCode("CSIPSTR16", "Representation folders MAY include folders named schemas and documentation")

	// mets root element
	CSIP1 = mustCode("CSIP1", "mets/@OBJID: the package identifier is mandatory")
	CSIP2 = mustCode("CSIP2", "mets/@TYPE: the content category is mandatory and from the vocabulary")
	CSIP3 = mustCode("CSIP3", "mets/@csip:OTHERTYPE is mandatory when mets/@TYPE is OTHER")
	CSIP4 = shouldCode("CSIP4", "mets/@csip:CONTENTINFORMATIONTYPE SHOULD be present and from the vocabulary")
	CSIP5 = mustCode("CSIP5", "mets/@csip:OTHERCONTENTINFORMATIONTYPE is mandatory when the content information type is OTHER")
	CSIP6 = mustCode("CSIP6", "mets/@PROFILE: the profile URL is mandatory")

	// metsHdr
	CSIP117 = mustCode("CSIP117", "mets/metsHdr: the METS header is mandatory")
	CSIP7   = mustCode("CSIP7", "mets/metsHdr/@CREATEDATE is mandatory and a valid date and time")
	CSIP8   = shouldCode("CSIP8", "mets/metsHdr/@LASTMODDATE SHOULD be present and a valid date and time")
	CSIP9   = mustCode("CSIP9", "mets/metsHdr/@csip:OAISPACKAGETYPE is mandatory and from the vocabulary")
	CSIP10  = mustCode("CSIP10", "mets/metsHdr/agent: at least one agent, describing the software that created the package, is mandatory")
	CSIP11  = mustCode("CSIP11", "mets/metsHdr/agent/@ROLE is CREATOR")
	CSIP12  = mustCode("CSIP12", "mets/metsHdr/agent/@TYPE is OTHER")
	CSIP13  = mustCode("CSIP13", "mets/metsHdr/agent/@OTHERTYPE is SOFTWARE")
	CSIP14  = mustCode("CSIP14", "mets/metsHdr/agent/name is mandatory")
	CSIP15  = mustCode("CSIP15", "mets/metsHdr/agent/note with the software version is mandatory")
	CSIP16  = mustCode("CSIP16", "mets/metsHdr/agent/note/@csip:NOTETYPE is SOFTWARE VERSION")

	// dmdSec
	CSIP17 = shouldCode("CSIP17", "mets/dmdSec SHOULD be present")
	CSIP18 = mustCode("CSIP18", "mets/dmdSec/@ID is mandatory and unique in the package")
	CSIP19 = mustCode("CSIP19", "mets/dmdSec/@CREATED is mandatory and a valid date and time")
	CSIP20 = shouldCode("CSIP20", "mets/dmdSec/@STATUS SHOULD be CURRENT or SUPERSEDED")
	CSIP21 = shouldCode("CSIP21", "mets/dmdSec/mdRef SHOULD reference the descriptive metadata")
	CSIP22 = mustCode("CSIP22", "mets/dmdSec/mdRef/@LOCTYPE is URL")
	CSIP23 = mustCode("CSIP23", "mets/dmdSec/mdRef/@xlink:type is simple")
	CSIP24 = mustCode("CSIP24", "mets/dmdSec/mdRef/@xlink:href references an existing file")
	CSIP25 = mustCode("CSIP25", "mets/dmdSec/mdRef/@MDTYPE is mandatory and from the vocabulary")
	CSIP26 = mustCode("CSIP26", "mets/dmdSec/mdRef/@MIMETYPE is a registered IANA media type")
	CSIP27 = mustCode("CSIP27", "mets/dmdSec/mdRef/@SIZE is the size of the referenced file in bytes")
	CSIP28 = mustCode("CSIP28", "mets/dmdSec/mdRef/@CREATED is mandatory and a valid date and time")
	CSIP29 = mustCode("CSIP29", "mets/dmdSec/mdRef/@CHECKSUM matches the referenced file")
	CSIP30 = mustCode("CSIP30", "mets/dmdSec/mdRef/@CHECKSUMTYPE is mandatory and from the METS enumeration")

	// amdSec
	CSIP31 = shouldCode("CSIP31", "Files in the metadata folders SHOULD be referenced from the METS file")
	CSIP32 = shouldCode("CSIP32", "mets/amdSec/digiprovMD SHOULD be present")
	CSIP33 = mustCode("CSIP33", "mets/amdSec/digiprovMD/@ID is mandatory and unique in the package")
	CSIP34 = shouldCode("CSIP34", "mets/amdSec/digiprovMD/@STATUS SHOULD be CURRENT or SUPERSEDED")
	CSIP35 = shouldCode("CSIP35", "mets/amdSec/digiprovMD/mdRef SHOULD reference the provenance metadata")
	CSIP36 = mustCode("CSIP36", "mets/amdSec/digiprovMD/mdRef/@LOCTYPE is URL")
	CSIP37 = mustCode("CSIP37", "mets/amdSec/digiprovMD/mdRef/@xlink:type is simple")
	CSIP38 = mustCode("CSIP38", "mets/amdSec/digiprovMD/mdRef/@xlink:href references an existing file")
	CSIP39 = mustCode("CSIP39", "mets/amdSec/digiprovMD/mdRef/@MDTYPE is mandatory and from the vocabulary")
	CSIP40 = mustCode("CSIP40", "mets/amdSec/digiprovMD/mdRef/@MIMETYPE is a registered IANA media type")
	CSIP41 = mustCode("CSIP41", "mets/amdSec/digiprovMD/mdRef/@SIZE is the size of the referenced file in bytes")
	CSIP42 = mustCode("CSIP42", "mets/amdSec/digiprovMD/mdRef/@CREATED is mandatory and a valid date and time")
	CSIP43 = mustCode("CSIP43", "mets/amdSec/digiprovMD/mdRef/@CHECKSUM matches the referenced file")
	CSIP44 = mustCode("CSIP44", "mets/amdSec/digiprovMD/mdRef/@CHECKSUMTYPE is mandatory and from the METS enumeration")
	CSIP45 = mayCode("CSIP45", "mets/amdSec/rightsMD MAY be present")
	CSIP46 = mustCode("CSIP46", "mets/amdSec/rightsMD/@ID is mandatory and unique in the package")
	CSIP47 = shouldCode("CSIP47", "mets/amdSec/rightsMD/@STATUS SHOULD be CURRENT or SUPERSEDED")
	CSIP48 = shouldCode("CSIP48", "mets/amdSec/rightsMD/mdRef SHOULD reference the rights metadata")
	CSIP49 = mustCode("CSIP49", "mets/amdSec/rightsMD/mdRef/@LOCTYPE is URL")
	CSIP50 = mustCode("CSIP50", "mets/amdSec/rightsMD/mdRef/@xlink:type is simple")
	CSIP51 = mustCode("CSIP51", "mets/amdSec/rightsMD/mdRef/@xlink:href references an existing file")
	CSIP52 = mustCode("CSIP52", "mets/amdSec/rightsMD/mdRef/@MDTYPE is mandatory and from the vocabulary")
	CSIP53 = mustCode("CSIP53", "mets/amdSec/rightsMD/mdRef/@MIMETYPE is a registered IANA media type")
	CSIP54 = mustCode("CSIP54", "mets/amdSec/rightsMD/mdRef/@SIZE is the size of the referenced file in bytes")
	CSIP55 = mustCode("CSIP55", "mets/amdSec/rightsMD/mdRef/@CREATED is mandatory and a valid date and time")
	CSIP56 = mustCode("CSIP56", "mets/amdSec/rightsMD/mdRef/@CHECKSUM matches the referenced file")
	CSIP57 = mustCode("CSIP57", "mets/amdSec/rightsMD/mdRef/@CHECKSUMTYPE is mandatory and from the METS enumeration")

	// fileSec
	CSIP58  = shouldCode("CSIP58", "mets/fileSec SHOULD be present")
	CSIP59  = mustCode("CSIP59", "mets/fileSec/@ID is mandatory and unique in the package")
	CSIP60  = shouldCode("CSIP60", "mets/fileSec/fileGrp with USE Documentation SHOULD be present when the package has documentation")
	CSIP113 = shouldCode("CSIP113", "mets/fileSec/fileGrp with USE Schemas SHOULD be present when the package has schemas")
	CSIP114 = shouldCode("CSIP114", "mets/fileSec/fileGrp with USE Representations SHOULD be present for each representation")
	CSIP61  = mayCode("CSIP61", "mets/fileSec/fileGrp/@ADMID MAY reference administrative metadata sections")
	CSIP62  = mustCode("CSIP62", "mets/fileSec/fileGrp/@USE is mandatory and from the vocabulary")
	CSIP63  = shouldCode("CSIP63", "mets/fileSec/fileGrp/@csip:CONTENTINFORMATIONTYPE SHOULD be from the vocabulary")
	CSIP64  = mustCode("CSIP64", "mets/fileSec/fileGrp/@csip:OTHERCONTENTINFORMATIONTYPE is mandatory when the content information type is OTHER")
	CSIP65  = mustCode("CSIP65", "mets/fileSec/fileGrp/@ID is mandatory and unique in the package")
	CSIP66  = mustCode("CSIP66", "mets/fileSec/fileGrp/file: every file group lists at least one file")
	CSIP67  = mustCode("CSIP67", "mets/fileSec/fileGrp/file/@ID is mandatory and unique in the package")
	CSIP68  = mustCode("CSIP68", "mets/fileSec/fileGrp/file/@MIMETYPE is a registered IANA media type")
	CSIP69  = mustCode("CSIP69", "mets/fileSec/fileGrp/file/@SIZE is the size of the file in bytes")
	CSIP70  = mustCode("CSIP70", "mets/fileSec/fileGrp/file/@CREATED is mandatory and a valid date and time")
	CSIP71  = mustCode("CSIP71", "mets/fileSec/fileGrp/file/@CHECKSUM matches the file")
	CSIP72  = mustCode("CSIP72", "mets/fileSec/fileGrp/file/@CHECKSUMTYPE is mandatory and from the METS enumeration")
	CSIP73  = mayCode("CSIP73", "mets/fileSec/fileGrp/file/@OWNERID MAY be present and not empty")
	CSIP74  = shouldCode("CSIP74", "mets/fileSec/fileGrp/file/@ADMID SHOULD reference administrative metadata sections")
	CSIP75  = shouldCode("CSIP75", "mets/fileSec/fileGrp/file/@DMDID SHOULD reference descriptive metadata sections")
	CSIP76  = mustCode("CSIP76", "mets/fileSec/fileGrp/file/FLocat: every file has exactly one location")
	CSIP77  = mustCode("CSIP77", "mets/fileSec/fileGrp/file/FLocat/@LOCTYPE is URL")
	CSIP78  = mustCode("CSIP78", "mets/fileSec/fileGrp/file/FLocat/@xlink:type is simple")
	CSIP79  = mustCode("CSIP79", "mets/fileSec/fileGrp/file/FLocat/@xlink:href references an existing file")

	// structMap
	CSIP80  = mustCode("CSIP80", "mets/structMap is mandatory")
	CSIP81  = mustCode("CSIP81", "mets/structMap with @TYPE PHYSICAL is present")
	CSIP82  = mustCode("CSIP82", "mets/structMap with @TYPE PHYSICAL and @LABEL CSIP is present")
	CSIP83  = shouldCode("CSIP83", "mets/structMap/@ID SHOULD be unique in the package")
	CSIP84  = mustCode("CSIP84", "mets/structMap/div: the CSIP structural map has a single top level division")
	CSIP85  = mustCode("CSIP85", "mets/structMap/div/@ID is mandatory and unique in the package")
	CSIP86  = mustCode("CSIP86", "mets/structMap/div/@LABEL is the package identifier (mets/@OBJID)")
	CSIP88  = shouldCode("CSIP88", "mets/structMap/div/div with @LABEL Metadata SHOULD be present")
	CSIP89  = mustCode("CSIP89", "mets/structMap/div/div[@LABEL='Metadata']/@ID is mandatory and unique in the package")
	CSIP90  = mustCode("CSIP90", "mets/structMap/div/div[@LABEL='Metadata'] appears once")
	CSIP91  = shouldCode("CSIP91", "mets/structMap/div/div[@LABEL='Metadata']/@ADMID SHOULD reference every administrative metadata section")
	CSIP92  = shouldCode("CSIP92", "mets/structMap/div/div[@LABEL='Metadata']/@DMDID SHOULD reference every descriptive metadata section")
	CSIP93  = shouldCode("CSIP93", "mets/structMap/div/div with @LABEL Documentation SHOULD be present when there is a Documentation file group")
	CSIP94  = mustCode("CSIP94", "mets/structMap/div/div[@LABEL='Documentation']/@ID is mandatory and unique in the package")
	CSIP95  = mustCode("CSIP95", "mets/structMap/div/div[@LABEL='Documentation'] appears once")
	CSIP96  = mustCode("CSIP96", "mets/structMap/div/div[@LABEL='Documentation']/fptr is present")
	CSIP97  = mustCode("CSIP97", "mets/structMap/div/div[@LABEL='Documentation']/fptr/@FILEID references the Documentation file group")
	CSIP98  = shouldCode("CSIP98", "mets/structMap/div/div with @LABEL Schemas SHOULD be present when there is a Schemas file group")
	CSIP99  = mustCode("CSIP99", "mets/structMap/div/div[@LABEL='Schemas']/@ID is mandatory and unique in the package")
	CSIP100 = mustCode("CSIP100", "mets/structMap/div/div[@LABEL='Schemas'] appears once")
	CSIP101 = mustCode("CSIP101", "mets/structMap/div/div[@LABEL='Schemas']/fptr is present")
	CSIP102 = mustCode("CSIP102", "mets/structMap/div/div[@LABEL='Schemas']/fptr/@FILEID references the Schemas file group")
	CSIP103 = shouldCode("CSIP103", "mets/structMap/div/div SHOULD be present for each representation")
	CSIP104 = mustCode("CSIP104", "mets/structMap/div/div[@LABEL='Representations/*']/@ID is mandatory and unique in the package")
	CSIP105 = mustCode("CSIP105", "mets/structMap/div/div/@LABEL of a representation division names a representation folder")
	CSIP106 = mustCode("CSIP106", "mets/structMap/div/div[@LABEL='Representations/*']/fptr/@FILEID references a file group")
	CSIP108 = mustCode("CSIP108", "mets/structMap/div/div[@LABEL='Representations/*']/mptr references the representation METS file")
	CSIP109 = mustCode("CSIP109", "mets/structMap/div/div/mptr/@xlink:title is mandatory")
	CSIP110 = mustCode("CSIP110", "mets/structMap/div/div/mptr/@LOCTYPE is URL")
	CSIP111 = mustCode("CSIP111", "mets/structMap/div/div/mptr/@xlink:type is simple")
	CSIP112 = mustCode("CSIP112", "mets/structMap/div/div/mptr/@xlink:href references an existing METS file")
)
