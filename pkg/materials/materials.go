// Package materials turns a submitted book material description and the
// files uploaded alongside it into the stored material tree.
package materials

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/kusalwijekoon97/ml-be/pkg/errcodes"
	"github.com/kusalwijekoon97/ml-be/pkg/models"
)

// Input is the "material" object of a book submission.
type Input struct {
	CompleteMaterials []CompleteMaterialInput `json:"completeMaterials" validate:"dive"`
	Chapters          []ChapterInput          `json:"chapters" validate:"dive"`
}

// CompleteMaterialInput declares a format. Its file, if any, is uploaded
// under material.completeMaterials[i].source.
type CompleteMaterialInput struct {
	FormatType    string  `json:"formatType" validate:"required,oneof=PDF EPUB TEXT MP3"`
	Publisher     string  `json:"publisher" mod:"trim"`
	PublishedDate *string `json:"publishedDate" validate:"omitempty,date"`
	TotalDuration *string `json:"totalDuration"`
	Source        *string `json:"source"`
}

// ChapterInput declares a chapter. At most one of the chapter_source_* fields
// may be non-null; it names the format the chapter belongs to, and the file
// is uploaded under material.chapters[j].chapter_source_<format>. A chapter
// without one belongs to no format and is left out of the tree.
type ChapterInput struct {
	ChapterNumber int     `json:"chapterNumber" validate:"min=0"`
	ChapterName   string  `json:"chapterName" mod:"trim"`
	SourcePDF     *string `json:"chapter_source_pdf"`
	SourceEPUB    *string `json:"chapter_source_epub"`
	SourceText    *string `json:"chapter_source_text"`
	SourceMP3     *string `json:"chapter_source_mp3"`
	Voice         *string `json:"chapter_voice"`
	Duration      *string `json:"duration"`
}

// Upload is a file that has already been stored for a slot.
type Upload struct {
	Key string
	URL string
}

var slotRE = regexp.MustCompile(`^material\.(?:completeMaterials\[(\d+)\]\.source|chapters\[(\d+)\]\.chapter_source_(pdf|epub|text|mp3))$`)

// formatFields maps each supported format to the suffix of its chapter
// source field.
var formatFields = map[string]string{
	models.FormatPDF:  "pdf",
	models.FormatEPUB: "epub",
	models.FormatTEXT: "text",
	models.FormatMP3:  "mp3",
}

// IsSlot reports whether a form field name uses the material slot grammar.
func IsSlot(tag string) bool {
	return slotRE.MatchString(tag)
}

// CompleteSlot is the slot of the i-th complete material.
func CompleteSlot(i int) string {
	return fmt.Sprintf("material.completeMaterials[%d].source", i)
}

// ChapterSlot is the slot of the j-th chapter's source in the given format.
func ChapterSlot(j int, format string) string {
	return fmt.Sprintf("material.chapters[%d].chapter_source_%s", j, formatFields[format])
}

// MaterialType returns the material a format belongs to.
func MaterialType(format string) string {
	if format == models.FormatMP3 {
		return models.MaterialTypeAudioBook
	}
	return models.MaterialTypeEBook
}

// Plan is a validated material input together with the slots it declares.
type Plan struct {
	input          Input
	chapterFormats []string
	slots          map[string]bool
}

// NewPlan validates the structure of a material submission and the tags of
// the files that came with it. It must be called before anything is
// uploaded.
func NewPlan(input Input, tags []string) (*Plan, error) {
	p := &Plan{
		input:          input,
		chapterFormats: make([]string, len(input.Chapters)),
		slots:          map[string]bool{},
	}

	seen := map[string]bool{}
	for i, cm := range input.CompleteMaterials {
		if _, ok := formatFields[cm.FormatType]; !ok {
			return nil, errcodes.FieldValidationError(fmt.Sprintf("material.completeMaterials[%d].formatType", i), fmt.Sprintf("%q is not a supported format", cm.FormatType))
		}
		if seen[cm.FormatType] {
			return nil, errcodes.FieldValidationError(fmt.Sprintf("material.completeMaterials[%d].formatType", i), fmt.Sprintf("format %s is declared more than once", cm.FormatType))
		}
		seen[cm.FormatType] = true
		p.slots[CompleteSlot(i)] = true
	}

	for j, ch := range input.Chapters {
		declared := []string{}
		for _, f := range []struct {
			format string
			value  *string
		}{
			{models.FormatPDF, ch.SourcePDF},
			{models.FormatEPUB, ch.SourceEPUB},
			{models.FormatTEXT, ch.SourceText},
			{models.FormatMP3, ch.SourceMP3},
		} {
			if f.value != nil {
				declared = append(declared, f.format)
			}
		}
		if len(declared) == 0 {
			continue
		}
		if len(declared) > 1 {
			return nil, errcodes.FieldValidationError(fmt.Sprintf("material.chapters[%d]", j), "a chapter can declare at most one of chapter_source_pdf, chapter_source_epub, chapter_source_text and chapter_source_mp3")
		}
		p.chapterFormats[j] = declared[0]
		p.slots[ChapterSlot(j, declared[0])] = true
	}

	for _, tag := range tags {
		if !p.slots[tag] {
			return nil, errcodes.FieldValidationError(tag, fmt.Sprintf("file %q does not match a declared material source", tag))
		}
	}

	return p, nil
}

// Slots returns the declared slots in a stable order.
func (p *Plan) Slots() []string {
	slots := make([]string, 0, len(p.slots))
	for slot := range p.slots {
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool {
		return slotLess(slots[i], slots[j])
	})
	return slots
}

func slotLess(a, b string) bool {
	ma, mb := slotRE.FindStringSubmatch(a), slotRE.FindStringSubmatch(b)
	ca, cb := ma[1] != "", mb[1] != ""
	if ca != cb {
		return ca
	}
	ia, ib := slotIndex(ma), slotIndex(mb)
	if ia != ib {
		return ia < ib
	}
	return a < b
}

func slotIndex(m []string) int {
	raw := m[1]
	if raw == "" {
		raw = m[2]
	}
	i, _ := strconv.Atoi(raw)
	return i
}

// Resolve builds the material tree. Every slot without an upload resolves to
// a null source. The E_BOOK material comes before the AUDIO_BOOK one and
// either is omitted when it has no formats.
func (p *Plan) Resolve(uploads map[string]Upload) models.MaterialList {
	formats := map[string]*models.Format{}
	order := []string{}
	totalDuration := map[string]*string{}

	formatFor := func(formatType string) *models.Format {
		f, ok := formats[formatType]
		if !ok {
			f = &models.Format{FormatType: formatType, Chapters: []*models.Chapter{}}
			formats[formatType] = f
			order = append(order, formatType)
		}
		return f
	}

	for i, cm := range p.input.CompleteMaterials {
		f := formatFor(cm.FormatType)
		f.Publisher = cm.Publisher
		f.PublishedDate = cm.PublishedDate
		if cm.FormatType == models.FormatMP3 && cm.TotalDuration != nil {
			totalDuration[models.MaterialTypeAudioBook] = cm.TotalDuration
		}
		if up, ok := uploads[CompleteSlot(i)]; ok {
			source := stored(up)
			if cm.FormatType == models.FormatMP3 {
				source.Duration = cm.TotalDuration
			}
			f.CompleteSource = source
		}
	}

	for j, ch := range p.input.Chapters {
		format := p.chapterFormats[j]
		// No source field means no format to attach to.
		if format == "" {
			continue
		}
		source := &models.Source{Duration: ch.Duration}
		if up, ok := uploads[ChapterSlot(j, format)]; ok {
			source = stored(up)
			source.Duration = ch.Duration
		}
		if format == models.FormatMP3 {
			source.Voice = ch.Voice
		}
		f := formatFor(format)
		f.Chapters = append(f.Chapters, &models.Chapter{
			ChapterNumber: ch.ChapterNumber,
			ChapterName:   ch.ChapterName,
			Source:        []*models.Source{source},
		})
	}

	list := models.MaterialList{}
	for _, materialType := range []string{models.MaterialTypeEBook, models.MaterialTypeAudioBook} {
		material := &models.Material{Type: materialType, TotalDuration: totalDuration[materialType], Formats: []*models.Format{}}
		for _, formatType := range order {
			if MaterialType(formatType) == materialType {
				material.Formats = append(material.Formats, formats[formatType])
			}
		}
		if len(material.Formats) > 0 {
			list = append(list, material)
		}
	}
	return list
}

func stored(up Upload) *models.Source {
	key, url := up.Key, up.URL
	return &models.Source{URL: &url, Key: &key}
}
