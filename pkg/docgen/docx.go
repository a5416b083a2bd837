package docgen

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	docxml "github.com/benjaminschreck/go-docgen/pkg/docgen/xml"
)

const (
	documentPart      = "word/document.xml"
	documentRelsPart  = "word/_rels/document.xml.rels"
	contentTypesPart  = "[Content_Types].xml"
	stylesPart        = "word/styles.xml"
	packageRelsPart   = "_rels/.rels"
	corePropsPart     = "docProps/core.xml"
	appPropsPart      = "docProps/app.xml"
	relationshipsNS   = "http://schemas.openxmlformats.org/package/2006/relationships"
	contentTypesNS    = "http://schemas.openxmlformats.org/package/2006/content-types"
	imageRelationType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	stylesRelType     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
)

var headerFooterPattern = regexp.MustCompile(`^word/(header|footer)\d+\.xml$`)

// Relationship represents a relationship in the DOCX package
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// Relationships represents the collection of relationships
type Relationships struct {
	XMLName      xml.Name       `xml:"Relationships"`
	Namespace    string         `xml:"xmlns,attr"`
	Relationship []Relationship `xml:"Relationship"`
}

// ContentTypes represents [Content_Types].xml
type ContentTypes struct {
	XMLName   xml.Name              `xml:"Types"`
	Namespace string                `xml:"xmlns,attr"`
	Defaults  []ContentTypeDefault  `xml:"Default"`
	Overrides []ContentTypeOverride `xml:"Override"`
}

// ContentTypeDefault maps a file extension to a content type
type ContentTypeDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// ContentTypeOverride maps a part name to a content type
type ContentTypeOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// Package is an in-memory DOCX package. The main document, header and
// footer parts are parsed on first access and written back by Bytes; every
// other part is copied through unchanged.
type Package struct {
	order []string
	parts map[string][]byte

	document      *docxml.Document
	headerFooters map[string]*docxml.HeaderFooter
	rels          *Relationships
	contentTypes  *ContentTypes
	mediaCount    int
}

// OpenPackage reads a DOCX package
func OpenPackage(r io.ReaderAt, size int64) (*Package, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read zip file: %w", err)
	}

	pkg := &Package{parts: make(map[string][]byte)}
	for _, file := range zipReader.File {
		content, err := readZipFile(file)
		if err != nil {
			return nil, err
		}
		pkg.setPart(file.Name, content)
		if strings.HasPrefix(file.Name, "word/media/") {
			pkg.mediaCount++
		}
	}

	// Check if this is a valid DOCX file by looking for required parts
	if _, ok := pkg.parts[documentPart]; !ok {
		return nil, fmt.Errorf("not a valid DOCX file: missing %s", documentPart)
	}

	return pkg, nil
}

// OpenPackageBytes reads a DOCX package held in memory
func OpenPackageBytes(data []byte) (*Package, error) {
	return OpenPackage(bytes.NewReader(data), int64(len(data)))
}

// OpenPackageFile reads a DOCX package from path
func OpenPackageFile(path string) (*Package, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return OpenPackageBytes(content)
}

func readZipFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", file.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file.Name, err)
	}
	return content, nil
}

func (p *Package) setPart(name string, content []byte) {
	if _, ok := p.parts[name]; !ok {
		p.order = append(p.order, name)
	}
	p.parts[name] = content
}

// Part returns the raw content of a part
func (p *Package) Part(name string) ([]byte, bool) {
	content, ok := p.parts[name]
	return content, ok
}

// ListParts returns the part names in package order
func (p *Package) ListParts() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Document returns the parsed main document
func (p *Package) Document() (*docxml.Document, error) {
	if p.document != nil {
		return p.document, nil
	}
	content, ok := p.parts[documentPart]
	if !ok {
		return nil, fmt.Errorf("%s not found", documentPart)
	}
	doc, err := docxml.ParseDocument(bytes.NewReader(content))
	if err != nil {
		return nil, NewDocumentError("parse", documentPart, err)
	}
	p.document = doc
	return doc, nil
}

// SetDocument replaces the main document
func (p *Package) SetDocument(doc *docxml.Document) {
	p.document = doc
}

// HeaderFooters returns the parsed header and footer parts keyed by part
// name
func (p *Package) HeaderFooters() (map[string]*docxml.HeaderFooter, error) {
	if p.headerFooters != nil {
		return p.headerFooters, nil
	}
	parts := make(map[string]*docxml.HeaderFooter)
	for _, name := range p.order {
		if !headerFooterPattern.MatchString(name) {
			continue
		}
		part, err := docxml.ParseHeaderFooter(bytes.NewReader(p.parts[name]))
		if err != nil {
			return nil, NewDocumentError("parse", name, err)
		}
		parts[name] = part
	}
	p.headerFooters = parts
	return parts, nil
}

// Relationships returns the main document relationships
func (p *Package) Relationships() (*Relationships, error) {
	if p.rels != nil {
		return p.rels, nil
	}
	rels := &Relationships{Namespace: relationshipsNS}
	if content, ok := p.parts[documentRelsPart]; ok {
		if err := xml.Unmarshal(content, rels); err != nil {
			return nil, fmt.Errorf("failed to parse relationships: %w", err)
		}
		rels.Namespace = relationshipsNS
	}
	p.rels = rels
	return rels, nil
}

func (p *Package) loadContentTypes() (*ContentTypes, error) {
	if p.contentTypes != nil {
		return p.contentTypes, nil
	}
	ct := &ContentTypes{Namespace: contentTypesNS}
	if content, ok := p.parts[contentTypesPart]; ok {
		if err := xml.Unmarshal(content, ct); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", contentTypesPart, err)
		}
		ct.Namespace = contentTypesNS
	}
	p.contentTypes = ct
	return ct, nil
}

// AddImage stores a PNG image under word/media, relates it to the main
// document and returns the relationship id
func (p *Package) AddImage(data []byte) (string, error) {
	rels, err := p.Relationships()
	if err != nil {
		return "", err
	}
	ct, err := p.loadContentTypes()
	if err != nil {
		return "", err
	}

	var name string
	for {
		p.mediaCount++
		name = fmt.Sprintf("media/image%d.png", p.mediaCount)
		if _, taken := p.parts["word/"+name]; !taken {
			break
		}
	}
	p.setPart("word/"+name, data)

	id := addImageRelationship(rels, name)
	ct.ensureDefault("png", "image/png")
	return id, nil
}

func (ct *ContentTypes) ensureDefault(ext, contentType string) {
	for _, def := range ct.Defaults {
		if strings.EqualFold(def.Extension, ext) {
			return
		}
	}
	ct.Defaults = append(ct.Defaults, ContentTypeDefault{Extension: ext, ContentType: contentType})
}

// addImageRelationship adds a new image relationship and returns its ID
func addImageRelationship(rels *Relationships, target string) string {
	newID := getNextRelationshipID(rels)

	rels.Relationship = append(rels.Relationship, Relationship{
		ID:     newID,
		Type:   imageRelationType,
		Target: target,
	})
	return newID
}

// getNextRelationshipID generates the next available relationship ID
func getNextRelationshipID(rels *Relationships) string {
	maxID := 0

	for _, rel := range rels.Relationship {
		if strings.HasPrefix(rel.ID, "rId") {
			if id, err := strconv.Atoi(rel.ID[3:]); err == nil && id > maxID {
				maxID = id
			}
		}
	}

	return fmt.Sprintf("rId%d", maxID+1)
}

// flush serializes the parsed parts back into the part map
func (p *Package) flush() error {
	if p.document != nil {
		content, err := docxml.MarshalDocument(p.document)
		if err != nil {
			return NewDocumentError("marshal", documentPart, err)
		}
		p.setPart(documentPart, content)
	}

	names := make([]string, 0, len(p.headerFooters))
	for name := range p.headerFooters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		content, err := docxml.MarshalHeaderFooter(p.headerFooters[name])
		if err != nil {
			return NewDocumentError("marshal", name, err)
		}
		p.setPart(name, content)
	}

	if p.rels != nil {
		content, err := marshalPackageXML(p.rels)
		if err != nil {
			return NewDocumentError("marshal", documentRelsPart, err)
		}
		p.setPart(documentRelsPart, content)
	}

	if p.contentTypes != nil {
		content, err := marshalPackageXML(p.contentTypes)
		if err != nil {
			return NewDocumentError("marshal", contentTypesPart, err)
		}
		p.setPart(contentTypesPart, content)
	}
	return nil
}

// marshalPackageXML writes compact XML with the standalone prolog Word
// requires
func marshalPackageXML(v any) ([]byte, error) {
	output, err := xml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append([]byte(docxml.Header), output...), nil
}

// WriteTo writes the package as a zip archive
func (p *Package) WriteTo(w io.Writer) (int64, error) {
	data, err := p.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Bytes returns the package as a zip archive
func (p *Package) Bytes() ([]byte, error) {
	if err := p.flush(); err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	for _, name := range p.order {
		fw, err := w.Create(name)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", name, err)
		}
		if _, err := fw.Write(p.parts[name]); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zip writer: %w", err)
	}
	return buf.Bytes(), nil
}

// NewPackage creates a minimal DOCX package with an empty document and the
// styles the agreement builder uses
func NewPackage(title string, created time.Time) *Package {
	pkg := &Package{parts: make(map[string][]byte)}

	pkg.setPart(contentTypesPart, []byte(docxml.Header+`<Types xmlns="`+contentTypesNS+`">`+
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`+
		`<Default Extension="xml" ContentType="application/xml"/>`+
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>`+
		`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>`+
		`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`+
		`<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>`+
		`</Types>`))

	pkg.setPart(packageRelsPart, []byte(docxml.Header+`<Relationships xmlns="`+relationshipsNS+`">`+
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>`+
		`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>`+
		`<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties" Target="docProps/app.xml"/>`+
		`</Relationships>`))

	stamp := created.UTC().Format(time.RFC3339)
	var escTitle bytes.Buffer
	_ = xml.EscapeText(&escTitle, []byte(title))
	pkg.setPart(corePropsPart, []byte(docxml.Header+
		`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" `+
		`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" `+
		`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`+
		`<dc:title>`+escTitle.String()+`</dc:title>`+
		`<dc:creator>go-docgen</dc:creator>`+
		`<dcterms:created xsi:type="dcterms:W3CDTF">`+stamp+`</dcterms:created>`+
		`<dcterms:modified xsi:type="dcterms:W3CDTF">`+stamp+`</dcterms:modified>`+
		`</cp:coreProperties>`))

	pkg.setPart(appPropsPart, []byte(docxml.Header+
		`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">`+
		`<Application>go-docgen</Application></Properties>`))

	pkg.setPart(stylesPart, []byte(defaultStylesXML))
	pkg.setPart(documentPart, nil)

	pkg.rels = &Relationships{
		Namespace:    relationshipsNS,
		Relationship: []Relationship{{ID: "rId1", Type: stylesRelType, Target: "styles.xml"}},
	}
	pkg.setPart(documentRelsPart, nil)

	pkg.document = docxml.NewDocument()
	return pkg
}

const defaultStylesXML = docxml.Header + `<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
	`<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Calibri" w:hAnsi="Calibri" w:cs="Calibri"/><w:sz w:val="20"/><w:szCs w:val="20"/></w:rPr></w:rPrDefault>` +
	`<w:pPrDefault><w:pPr><w:spacing w:after="160" w:line="288" w:lineRule="auto"/></w:pPr></w:pPrDefault></w:docDefaults>` +
	`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/>` +
	`<w:pPr><w:spacing w:after="240"/><w:jc w:val="center"/></w:pPr><w:rPr><w:b/><w:sz w:val="36"/><w:szCs w:val="36"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/>` +
	`<w:pPr><w:keepNext/><w:spacing w:before="240" w:after="120"/><w:outlineLvl w:val="1"/></w:pPr><w:rPr><w:b/><w:sz w:val="26"/><w:szCs w:val="26"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Footer"><w:name w:val="footer"/><w:basedOn w:val="Normal"/><w:pPr><w:jc w:val="center"/></w:pPr><w:rPr><w:sz w:val="16"/><w:szCs w:val="16"/></w:rPr></w:style>` +
	`<w:style w:type="table" w:default="1" w:styleId="TableNormal"><w:name w:val="Normal Table"/><w:tblPr><w:tblCellMar><w:left w:w="108" w:type="dxa"/><w:right w:w="108" w:type="dxa"/></w:tblCellMar></w:tblPr></w:style>` +
	`<w:style w:type="table" w:styleId="TableGrid"><w:name w:val="Table Grid"/><w:basedOn w:val="TableNormal"/></w:style>` +
	`</w:styles>`
