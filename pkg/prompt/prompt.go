// Package prompt builds backend prompts from plain-text templates.
//
// Templates carry {{KEY}} placeholders that are replaced by literal string
// substitution. There is no templating engine on purpose: prompt text
// frequently contains braces, pipes and markdown that a real engine would
// try to interpret. Unrecognized placeholders pass through verbatim.
//
// A template set is selected by category family (course prompts differ
// structurally from the common set) and by model family: "gpt-4.1" resolves
// to gpt-4.txt, "llama3.2:8b" to llama3.txt, and a model without its own
// file falls back to the engine's default template.
package prompt

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

//go:embed templates
var builtin embed.FS

// Placeholder keys recognized across the template sets.
const (
	KeyTopic             = "TOPIC"
	KeyQuantity          = "QUANTITY"
	KeyCategory          = "CATEGORY"
	KeyExpertiseLevel    = "EXPERTISE_LEVEL"
	KeyContextNote       = "CONTEXT_NOTE"
	KeyChapterTitle      = "CHAPTER_TITLE"
	KeyChapterShortTitle = "CHAPTER_SHORT_TITLE"
	KeyChapterIndex      = "CHAPTER_INDEX"
	KeyTipTitle          = "TIP_TITLE"
	KeyTipIndex          = "TIP_INDEX"
)

// Render performs literal find-and-replace of every {{KEY}} present in
// vars. Placeholders without a matching key are left untouched.
func Render(template string, vars map[string]string) string {
	for key, value := range vars {
		template = strings.ReplaceAll(template, "{{"+key+"}}", value)
	}
	return template
}

// Options selects the template set for one Builder.
type Options struct {
	Model    string // resolves the model-family file, e.g. llama3.2:8b -> llama3.txt
	Fallback string // engine default family, e.g. "openai" or "llama"
	Category string // "Course" selects the course set, anything else the common set
	Dir      string // optional directory overriding the embedded templates
	Logger   *logrus.Logger
}

// Builder holds the resolved titles and content templates for one run.
type Builder struct {
	titles  string
	content string
}

// NewBuilder resolves and loads the titles and content templates. A
// template that cannot be found under either the model family or the
// fallback family is fatal.
func NewBuilder(opts Options) (*Builder, error) {
	fsys, err := templateFS(opts.Dir)
	if err != nil {
		return nil, err
	}

	subdir := "common"
	if strings.EqualFold(opts.Category, "Course") {
		subdir = "course"
	}

	titles, err := loadTemplate(fsys, subdir, "titles", opts)
	if err != nil {
		return nil, err
	}
	content, err := loadTemplate(fsys, subdir, "content", opts)
	if err != nil {
		return nil, err
	}

	return &Builder{titles: titles, content: content}, nil
}

// TitleVars parameterizes the title-phase prompt.
type TitleVars struct {
	Topic          string
	Quantity       int
	Category       string
	ExpertiseLevel string
	ContextNote    string
}

// Titles renders the title-phase prompt.
func (b *Builder) Titles(v TitleVars) string {
	return Render(b.titles, map[string]string{
		KeyTopic:          v.Topic,
		KeyQuantity:       fmt.Sprintf("%d", v.Quantity),
		KeyCategory:       v.Category,
		KeyExpertiseLevel: v.ExpertiseLevel,
		KeyContextNote:    v.ContextNote,
	})
}

// ContentVars parameterizes the per-section detail prompt.
type ContentVars struct {
	Topic             string
	ChapterTitle      string
	ChapterShortTitle string
	ChapterIndex      int
	Quantity          int
	Category          string
	ExpertiseLevel    string
	ContextNote       string
}

// Content renders the detail prompt for one section.
func (b *Builder) Content(v ContentVars) string {
	return Render(b.content, map[string]string{
		KeyTopic:             v.Topic,
		KeyChapterTitle:      v.ChapterTitle,
		KeyChapterShortTitle: v.ChapterShortTitle,
		KeyChapterIndex:      fmt.Sprintf("%d", v.ChapterIndex),
		KeyQuantity:          fmt.Sprintf("%d", v.Quantity),
		KeyCategory:          v.Category,
		KeyExpertiseLevel:    v.ExpertiseLevel,
		KeyContextNote:       v.ContextNote,
		KeyTipTitle:          v.ChapterTitle,
		KeyTipIndex:          fmt.Sprintf("%d", v.ChapterIndex),
	})
}

func templateFS(dir string) (fs.FS, error) {
	if dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("prompts directory %s: %w", dir, err)
		}
		return os.DirFS(dir), nil
	}
	return fs.Sub(builtin, "templates")
}

// ModelFamily reduces a model name to its template family: everything
// before the first tag separator or version dot, lowercased.
func ModelFamily(model string) string {
	base := strings.SplitN(model, ":", 2)[0]
	base = strings.SplitN(base, ".", 2)[0]
	return strings.ToLower(base)
}

// WriteBuiltin copies the embedded template tree into dir, so users can
// customize the copies and point prompts_dir at them.
func WriteBuiltin(dir string) error {
	sub, err := fs.Sub(builtin, "templates")
	if err != nil {
		return err
	}
	return fs.WalkDir(sub, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		dest := filepath.Join(dir, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(dest, 0755)
		}
		data, err := fs.ReadFile(sub, p)
		if err != nil {
			return err
		}
		return os.WriteFile(dest, data, 0644)
	})
}

func loadTemplate(fsys fs.FS, subdir, kind string, opts Options) (string, error) {
	family := ModelFamily(opts.Model)
	primary := path.Join(subdir, kind, family+".txt")

	data, err := fs.ReadFile(fsys, primary)
	if err == nil {
		return string(data), nil
	}

	fallback := path.Join(subdir, kind, opts.Fallback+".txt")
	if opts.Logger != nil {
		opts.Logger.Warnf("no %s template for model family %q, falling back to %s", kind, family, fallback)
	}
	data, err = fs.ReadFile(fsys, fallback)
	if err != nil {
		return "", fmt.Errorf("failed to load %s template %s: %w", kind, fallback, err)
	}
	return string(data), nil
}
