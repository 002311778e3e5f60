// Package vocabulary loads the controlled vocabularies checked by rules:
// CSIP/SIP value lists and the IANA media type registry. Vocabularies are
// loaded once and are read-only afterwards.
package vocabulary

import (
	"bufio"
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
)

const (
	VocabulariesFile = "vocabularies.yaml"
	MediaTypesFile   = "mediatypes.txt"

	// RepresentationsUsePrefix is the fileGrp/@USE prefix for groups
	// describing a single representation.
	RepresentationsUsePrefix = "Representations/"
)

var (
	//go:embed vocabularies.yaml
	vocabData []byte
	//go:embed mediatypes.txt
	mediaTypeData []byte

	defaultOnce  sync.Once
	defaultVocab *Vocabularies
	defaultErr   error
)

// Set is an immutable set of vocabulary values.
type Set map[string]struct{}

// NewSet returns a Set with vals.
func NewSet(vals ...string) Set {
	s := make(Set, len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// Contains returns true if v is in the set.
func (s Set) Contains(v string) bool {
	_, ok := s[v]
	return ok
}

// Vocabularies is the collection of controlled vocabularies.
type Vocabularies struct {
	ContentCategories       Set
	ContentInformationTypes Set
	OAISPackageTypes        Set
	Statuses                Set
	FileGrpUses             Set
	NoteTypes               Set
	MDTypes                 Set
	ChecksumTypes           Set
	LocTypes                Set
	AgentRoles              Set
	AgentTypes              Set
	RecordStatuses          Set
	AltRecordIDTypes        Set
	MediaTypes              Set
}

// vocabFile is the yaml layout of vocabularies.yaml
type vocabFile struct {
	ContentCategory        []string `yaml:"content_category"`
	ContentInformationType []string `yaml:"content_information_type"`
	OAISPackageType        []string `yaml:"oais_package_type"`
	Status                 []string `yaml:"status"`
	FileGrpUse             []string `yaml:"file_grp_use"`
	NoteType               []string `yaml:"note_type"`
	MDType                 []string `yaml:"mdtype"`
	ChecksumType           []string `yaml:"checksum_type"`
	LocType                []string `yaml:"loctype"`
	AgentRole              []string `yaml:"agent_role"`
	AgentType              []string `yaml:"agent_type"`
	RecordStatus           []string `yaml:"record_status"`
	AltRecordIDType        []string `yaml:"alt_record_id_type"`
}

// Default returns the built-in vocabularies. They are parsed on first use.
func Default() *Vocabularies {
	defaultOnce.Do(func() {
		defaultVocab, defaultErr = Parse(bytes.NewReader(vocabData), bytes.NewReader(mediaTypeData))
	})
	if defaultErr != nil {
		// embedded files are covered by tests
		panic(fmt.Errorf("parsing built-in vocabularies: %w", defaultErr))
	}
	return defaultVocab
}

// Load reads vocabularies.yaml and mediatypes.txt from dir. A file missing
// from dir is replaced by the built-in version.
func Load(dir string) (*Vocabularies, error) {
	vocab, err := readOr(filepath.Join(dir, VocabulariesFile), vocabData)
	if err != nil {
		return nil, err
	}
	media, err := readOr(filepath.Join(dir, MediaTypesFile), mediaTypeData)
	if err != nil {
		return nil, err
	}
	return Parse(bytes.NewReader(vocab), bytes.NewReader(media))
}

func readOr(name string, fallback []byte) ([]byte, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fallback, nil
		}
		return nil, fmt.Errorf("reading vocabulary file: %w", err)
	}
	return data, nil
}

// Parse reads vocabularies from yaml in vocab and a media type list (one
// type per line, '#' comments) in media.
func Parse(vocab io.Reader, media io.Reader) (*Vocabularies, error) {
	var file vocabFile
	if err := yaml.NewDecoder(vocab).Decode(&file); err != nil {
		return nil, fmt.Errorf("decoding vocabularies: %w", err)
	}
	mediaTypes, err := parseMediaTypes(media)
	if err != nil {
		return nil, err
	}
	return &Vocabularies{
		ContentCategories:       NewSet(file.ContentCategory...),
		ContentInformationTypes: NewSet(file.ContentInformationType...),
		OAISPackageTypes:        NewSet(file.OAISPackageType...),
		Statuses:                NewSet(file.Status...),
		FileGrpUses:             NewSet(file.FileGrpUse...),
		NoteTypes:               NewSet(file.NoteType...),
		MDTypes:                 NewSet(file.MDType...),
		ChecksumTypes:           NewSet(file.ChecksumType...),
		LocTypes:                NewSet(file.LocType...),
		AgentRoles:              NewSet(file.AgentRole...),
		AgentTypes:              NewSet(file.AgentType...),
		RecordStatuses:          NewSet(file.RecordStatus...),
		AltRecordIDTypes:        NewSet(file.AltRecordIDType...),
		MediaTypes:              mediaTypes,
	}, nil
}

func parseMediaTypes(r io.Reader) (Set, error) {
	set := Set{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set[strings.ToLower(line)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading media types: %w", err)
	}
	return set, nil
}

// IsMediaType returns true if val is a registered media type. Parameters
// (e.g., "; charset=utf-8") are ignored and the comparison is
// case-insensitive.
func (v *Vocabularies) IsMediaType(val string) bool {
	base, _, _ := strings.Cut(val, ";")
	return v.MediaTypes.Contains(strings.ToLower(strings.TrimSpace(base)))
}

// IsFileGrpUse returns true if use is a fileGrp/@USE value from the
// vocabulary or names a representation ("Representations/<name>").
func (v *Vocabularies) IsFileGrpUse(use string) bool {
	if v.FileGrpUses.Contains(use) {
		return true
	}
	name := strings.TrimPrefix(use, RepresentationsUsePrefix)
	return name != use && name != ""
}
