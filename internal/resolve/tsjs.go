package resolve

import (
	"strings"

	"github.com/codestatik/statik/internal/model"
)

// TSJSResolver implements the TypeScript/JavaScript resolution algorithm of
// §4.2, grounded on the teacher's JSResolver: relative imports resolve
// against the importing file's directory, bare specifiers are checked
// against tsconfig baseUrl/paths before falling back to "external" (the
// in-index equivalent of the teacher's node_modules probe, since resolvers
// never read the filesystem directly here).
type TSJSResolver struct{}

func NewTSJSResolver() *TSJSResolver { return &TSJSResolver{} }

func (r *TSJSResolver) Language() model.Language { return model.LanguageTSJS }

func (r *TSJSResolver) Resolve(from model.File, imp model.Import, idx *Index) []model.Resolution {
	return []model.Resolution{r.resolveOne(from, imp, idx)}
}

func (r *TSJSResolver) resolveOne(from model.File, imp model.Import, idx *Index) model.Resolution {
	if imp.IsDynamic && imp.Specifier == "" {
		return model.Unresolved(model.UnresolvedReasonDynamicPath)
	}
	specifier := imp.Specifier
	if specifier == "" {
		return model.Unresolved(model.UnresolvedReasonUnsupportedSyntax)
	}

	switch {
	case strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../"):
		return r.resolveRelative(dirOf(from.Path), specifier, idx)
	case strings.HasPrefix(specifier, "/"):
		return r.resolveFromRoot(strings.TrimPrefix(specifier, "/"), idx)
	case isBuiltinNodeModule(specifier):
		return model.External(specifier)
	default:
		if res, ok := r.resolvePathsMapping(specifier, idx); ok {
			return res
		}
		if idx.BaseURL != "" {
			if res, matched := r.tryResolveFile(joinRel(idx.BaseURL, specifier), idx); matched {
				return res
			}
			if res, matched := r.tryResolveDirectory(joinRel(idx.BaseURL, specifier), idx); matched {
				return res
			}
		}
		// Bare specifier with no paths/baseUrl match: §4.2 step 3 says stop
		// here, no node_modules probing — it's external by definition.
		return model.External(firstSegment(specifier))
	}
}

// firstSegment returns the package name portion of a bare specifier: the
// first path segment, or the first two for a scoped package ("@scope/name").
func firstSegment(specifier string) string {
	parts := strings.SplitN(specifier, "/", 3)
	if strings.HasPrefix(specifier, "@") && len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}

func (r *TSJSResolver) resolveRelative(fromDir, specifier string, idx *Index) model.Resolution {
	target := joinRel(fromDir, specifier)
	if res, ok := r.tryResolveFile(target, idx); ok {
		return res
	}
	if res, ok := r.tryResolveDirectory(target, idx); ok {
		return res
	}
	return model.Unresolved(model.UnresolvedReasonFileNotFound)
}

func (r *TSJSResolver) resolveFromRoot(rel string, idx *Index) model.Resolution {
	if res, ok := r.tryResolveFile(rel, idx); ok {
		return res
	}
	if res, ok := r.tryResolveDirectory(rel, idx); ok {
		return res
	}
	return model.Unresolved(model.UnresolvedReasonFileNotFound)
}

// resolvePathsMapping checks tsconfig-style "paths" entries (e.g.
// "@app/*": ["src/app/*"]); a match with more than one candidate target
// resolving to an existing file yields ResolvedWithCaveat(AmbiguousIndex).
func (r *TSJSResolver) resolvePathsMapping(specifier string, idx *Index) (model.Resolution, bool) {
	if len(idx.Paths) == 0 {
		return model.Resolution{}, false
	}
	var matches []model.FileID
	for pattern, targets := range idx.Paths {
		prefix, hasStar := strings.CutSuffix(pattern, "*")
		if hasStar {
			if !strings.HasPrefix(specifier, prefix) {
				continue
			}
			suffix := strings.TrimPrefix(specifier, prefix)
			for _, t := range targets {
				targetPrefix, _ := strings.CutSuffix(t, "*")
				candidate := targetPrefix + suffix
				if res, ok := r.tryResolveFile(candidate, idx); ok && res.IsResolved() {
					matches = append(matches, res.FileID)
				}
			}
		} else if pattern == specifier {
			for _, t := range targets {
				if res, ok := r.tryResolveFile(t, idx); ok && res.IsResolved() {
					matches = append(matches, res.FileID)
				}
			}
		}
	}
	switch len(matches) {
	case 0:
		return model.Resolution{}, false
	case 1:
		return model.Resolved(matches[0]), true
	default:
		return model.ResolvedWithCaveat(matches[0], model.CaveatAmbiguousIndex), true
	}
}

func (r *TSJSResolver) tryResolveFile(base string, idx *Index) (model.Resolution, bool) {
	for _, ext := range tsExtensions {
		if id, ok := idx.lookup(base + ext); ok {
			return model.Resolved(id), true
		}
	}
	return model.Resolution{}, false
}

func (r *TSJSResolver) tryResolveDirectory(dir string, idx *Index) (model.Resolution, bool) {
	for _, idxFile := range tsIndexFiles {
		if id, ok := idx.lookup(joinRel(dir, idxFile)); ok {
			return model.Resolved(id), true
		}
	}
	return model.Resolution{}, false
}

func isBuiltinNodeModule(specifier string) bool {
	name, _, _ := strings.Cut(specifier, "/")
	name = strings.TrimPrefix(name, "node:")
	switch name {
	case "assert", "buffer", "child_process", "cluster", "crypto", "dgram",
		"dns", "domain", "events", "fs", "http", "https", "net", "os",
		"path", "punycode", "querystring", "readline", "repl", "stream",
		"string_decoder", "tls", "tty", "url", "util", "vm", "zlib",
		"constants", "module", "process", "timers", "console":
		return true
	default:
		return false
	}
}
