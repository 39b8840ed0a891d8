// Package discovery is the file-discovery collaborator named in §6: it walks
// a project tree honoring .gitignore and user include/exclude globs, and
// yields a stream of (relative_path, language, content_fingerprint) tuples
// for the indexing pipeline to consume.
package discovery

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/codestatik/statik/internal/model"
)

// Candidate is one discovered file, ready to be handed to the extraction
// pipeline.
type Candidate struct {
	RelPath     string
	Language    model.Language
	Fingerprint model.Fingerprint
}

// Options configures a Walker (mirrors the CLI's --include/--exclude/--lang
// flags in §6).
type Options struct {
	Root     string
	Include  []string
	Exclude  []string
	Language string // empty means all supported languages
}

// Walker discovers candidate files under a project root.
type Walker struct {
	root          string
	includeGlobs  []string
	excludeGlobs  []string
	langFilter    model.Language
	ignorePatterns []ignorePattern
}

type ignorePattern struct {
	glob   string
	negate bool
}

// NewWalker builds a Walker, loading .gitignore patterns from the
// .gitignore at root only; .gitignore files in subdirectories are not read.
func NewWalker(opts Options) (*Walker, error) {
	w := &Walker{
		root:         opts.Root,
		includeGlobs: opts.Include,
		excludeGlobs: opts.Exclude,
	}
	if opts.Language != "" {
		switch strings.ToLower(opts.Language) {
		case "ts", "tsjs", "typescript", "javascript", "js":
			w.langFilter = model.LanguageTSJS
		case "java":
			w.langFilter = model.LanguageJava
		case "rust", "rs":
			w.langFilter = model.LanguageRust
		default:
			return nil, fmt.Errorf("discovery: unknown --lang %q", opts.Language)
		}
	}

	patterns, err := loadGitignore(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("discovery: load .gitignore: %w", err)
	}
	w.ignorePatterns = patterns
	return w, nil
}

// loadGitignore reads the root .gitignore (if present) and converts each
// line into a doublestar glob pattern anchored at root.
func loadGitignore(root string) ([]ignorePattern, error) {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var patterns []ignorePattern
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		negate := strings.HasPrefix(line, "!")
		if negate {
			line = line[1:]
		}
		pattern := line
		if !strings.Contains(pattern, "/") {
			pattern = "**/" + pattern
		}
		pattern = strings.TrimPrefix(pattern, "/")
		if strings.HasSuffix(pattern, "/") {
			pattern += "**"
		}
		patterns = append(patterns, ignorePattern{glob: pattern, negate: negate})
	}
	return patterns, scanner.Err()
}

func (w *Walker) ignored(relPath string) bool {
	ignored := false
	for _, p := range w.ignorePatterns {
		matched, _ := doublestar.Match(p.glob, relPath)
		if !matched {
			matched, _ = doublestar.Match(p.glob, relPath+"/")
		}
		if matched {
			ignored = !p.negate
		}
	}
	return ignored
}

func (w *Walker) included(relPath string) bool {
	if len(w.includeGlobs) == 0 {
		return true
	}
	for _, g := range w.includeGlobs {
		if matched, _ := doublestar.Match(g, relPath); matched {
			return true
		}
	}
	return false
}

func (w *Walker) excluded(relPath string) bool {
	for _, g := range w.excludeGlobs {
		if matched, _ := doublestar.Match(g, relPath); matched {
			return true
		}
	}
	return false
}

// Walk yields every candidate file under root that passes .gitignore,
// include/exclude globs, and the language filter.
func (w *Walker) Walk() ([]Candidate, error) {
	var out []Candidate

	err := filepath.WalkDir(w.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if rel == ".git" || rel == ".statik" || w.ignored(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if w.ignored(rel) || w.excluded(rel) || !w.included(rel) {
			return nil
		}

		lang := model.LanguageForExt(filepath.Ext(rel))
		if lang == model.LanguageUnknown {
			return nil
		}
		if w.langFilter != model.LanguageUnknown && lang != w.langFilter {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		out = append(out, Candidate{
			RelPath:  rel,
			Language: lang,
			Fingerprint: model.Fingerprint{
				ModTime: info.ModTime().UnixNano(),
				Size:    info.Size(),
				// Hash is computed lazily by the caller once content is
				// read, since discovery never reads file contents (§5:
				// file I/O belongs to the indexing worker, not discovery).
			},
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovery: walk %s: %w", w.root, err)
	}
	return out, nil
}
