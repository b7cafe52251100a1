package materials

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/inference-sim/pumas-go/internal/errcat"
)

// MDFParser is the interface spec §1 scopes out of the core module: parsing
// the hierarchical materials description file into a Registry. pumas-go
// ships ReferenceMDFParser (and the OpenMDF path wrapper), a minimal
// reference implementation used by the pumas build and convert commands; a
// production deployment may supply a fuller XML parser behind the same
// signature.
type MDFParser interface {
	// Parse reads an MDF document from r into registry. When dry is true
	// (spec §6's "first pass ... dry (no numeric tables)"), per-material
	// stopping-power files are not opened or validated — only the element
	// and composition graph is built.
	Parse(r io.Reader, registry *Registry, dry bool) error
}

// mdfOpenTag matches an opening or self-closing tag with its attributes
// captured as repeated name="value" pairs (split out by mdfAttr);
// mdfCloseTag matches a closing tag. Comments are tolerated by removing
// every mdfComment match before tokenizing.
var (
	mdfOpenTag  = regexp.MustCompile(`<([a-zA-Z_-]+)((?:\s+[a-zA-Z_-]+\s*=\s*"[^"]*")*)\s*/?>`)
	mdfCloseTag = regexp.MustCompile(`</([a-zA-Z_-]+)\s*>`)
	mdfAttr     = regexp.MustCompile(`([a-zA-Z_-]+)\s*=\s*"([^"]*)"`)
	mdfComment  = regexp.MustCompile(`(?s)<!--.*?-->`)
)

// ReferenceMDFParser is the bundled MDFParser implementation: a small
// recursive-descent-by-regex reader for the three-level pumas/element/
// base-material/composite-material grammar of spec §6. Attribute order is
// immaterial; comments are stripped before tokenizing. It never opens the
// stopping-power files, whatever dry says: it only records each base
// material's file name.
type ReferenceMDFParser struct{}

func (ReferenceMDFParser) Parse(r io.Reader, registry *Registry, dry bool) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errcat.Wrap(errcat.IO, "ReferenceMDFParser.Parse", err)
	}
	text := mdfComment.ReplaceAllString(string(data), "")

	tokens := tokenizeMDF(text)
	if len(tokens) == 0 || tokens[0].name != "pumas" || !tokens[0].open {
		return errcat.New(errcat.Format, "ReferenceMDFParser.Parse", "missing root <pumas> tag")
	}

	var currentBase *BaseMaterial
	var currentComposite *CompositeMaterial
	for _, tok := range tokens[1:] {
		switch {
		case tok.name == "pumas" && !tok.open:
			return nil
		case !tok.open && (tok.name == "element" || tok.name == "component"):
			// closing half of a self-closing leaf tag; nothing to do
		case tok.name == "element":
			z, err := strconv.Atoi(tok.attrs["Z"])
			if err != nil {
				return errcat.Wrap(errcat.Format, "ReferenceMDFParser.Parse", fmt.Errorf("element %q: bad Z: %w", tok.attrs["name"], err))
			}
			a, err := strconv.ParseFloat(tok.attrs["A"], 64)
			if err != nil {
				return errcat.Wrap(errcat.Format, "ReferenceMDFParser.Parse", fmt.Errorf("element %q: bad A: %w", tok.attrs["name"], err))
			}
			iEV, err := strconv.ParseFloat(tok.attrs["I"], 64)
			if err != nil {
				return errcat.Wrap(errcat.Format, "ReferenceMDFParser.Parse", fmt.Errorf("element %q: bad I: %w", tok.attrs["name"], err))
			}
			registry.AddElement(AtomicElement{Name: tok.attrs["name"], Z: z, A: a, I: iEV * 1e-9})
		case tok.name == "material" && tok.open && tok.attrs["kind"] != "composite":
			density, err := strconv.ParseFloat(tok.attrs["density"], 64)
			if err != nil {
				return errcat.Wrap(errcat.Format, "ReferenceMDFParser.Parse", fmt.Errorf("material %q: bad density: %w", tok.attrs["name"], err))
			}
			file := tok.attrs["file"]
			if file == "" {
				file = snakeCase(tok.attrs["name"]) + ".txt"
			}
			var iOverride float64
			if s, ok := tok.attrs["I"]; ok && s != "" {
				v, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return errcat.Wrap(errcat.Format, "ReferenceMDFParser.Parse", fmt.Errorf("material %q: bad I override: %w", tok.attrs["name"], err))
				}
				iOverride = v * 1e-9
			}
			currentBase = &BaseMaterial{
				Name:         tok.attrs["name"],
				Density:      density * 1000, // g/cm^3 -> kg/m^3
				IOverride:    iOverride,
				StoppingFile: file,
			}
		case tok.name == "material" && !tok.open && currentBase != nil:
			if _, err := registry.AddBase(*currentBase); err != nil {
				return err
			}
			currentBase = nil
		case tok.name == "material" && tok.open && tok.attrs["kind"] == "composite":
			currentComposite = &CompositeMaterial{Name: tok.attrs["name"]}
		case tok.name == "material" && !tok.open && currentComposite != nil:
			if _, err := registry.AddComposite(*currentComposite); err != nil {
				return err
			}
			currentComposite = nil
		case tok.name == "component":
			frac, err := strconv.ParseFloat(tok.attrs["fraction"], 64)
			if err != nil {
				return errcat.Wrap(errcat.Format, "ReferenceMDFParser.Parse", fmt.Errorf("component %q: bad fraction: %w", tok.attrs["name"], err))
			}
			switch {
			case currentBase != nil:
				el, ok := registry.ElementByName(tok.attrs["name"])
				if !ok {
					return errcat.New(errcat.Format, "ReferenceMDFParser.Parse", "material %q references unknown element %q", currentBase.Name, tok.attrs["name"])
				}
				currentBase.Components = append(currentBase.Components, MaterialComponent{ElementIndex: el.Index, Fraction: frac})
			case currentComposite != nil:
				baseIdx := -1
				for i, b := range registry.Base {
					if b.Name == tok.attrs["name"] {
						baseIdx = i
						break
					}
				}
				if baseIdx < 0 {
					return errcat.New(errcat.Format, "ReferenceMDFParser.Parse", "composite %q references unknown base material %q", currentComposite.Name, tok.attrs["name"])
				}
				currentComposite.Components = append(currentComposite.Components, struct {
					BaseIndex int
					Fraction  float64
				}{BaseIndex: baseIdx, Fraction: frac})
			default:
				return errcat.New(errcat.Format, "ReferenceMDFParser.Parse", "<component> outside any material")
			}
		default:
			return errcat.New(errcat.Format, "ReferenceMDFParser.Parse", "unexpected tag <%s>", tok.name)
		}
	}
	return errcat.New(errcat.Format, "ReferenceMDFParser.Parse", "unexpected EOF: missing </pumas>")
}

type mdfToken struct {
	name  string
	open  bool
	attrs map[string]string
}

func tokenizeMDF(text string) []mdfToken {
	var tokens []mdfToken
	pos := 0
	for pos < len(text) {
		openLoc := mdfOpenTag.FindStringSubmatchIndex(text[pos:])
		closeLoc := mdfCloseTag.FindStringSubmatchIndex(text[pos:])
		switch {
		case openLoc == nil && closeLoc == nil:
			return tokens
		case closeLoc == nil || (openLoc != nil && openLoc[0] <= closeLoc[0]):
			m := mdfOpenTag.FindStringSubmatch(text[pos:])
			attrs := map[string]string{}
			for _, kv := range mdfAttr.FindAllStringSubmatch(m[2], -1) {
				attrs[kv[1]] = kv[2]
			}
			selfClosing := strings.HasSuffix(strings.TrimSpace(m[0]), "/>")
			tokens = append(tokens, mdfToken{name: m[1], open: true, attrs: attrs})
			if selfClosing {
				tokens = append(tokens, mdfToken{name: m[1], open: false})
			}
			pos += openLoc[1]
		default:
			m := mdfCloseTag.FindStringSubmatch(text[pos:])
			tokens = append(tokens, mdfToken{name: m[1], open: false})
			pos += closeLoc[1]
		}
	}
	return tokens
}

// snakeCase converts a material name into its default stopping-power file
// stem, per spec §6: "the default path is the snake-cased material name".
func snakeCase(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == ' ' || r == '-':
			b.WriteByte('_')
		case r >= 'A' && r <= 'Z':
			b.WriteByte(byte(r - 'A' + 'a'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// OpenMDF is a convenience wrapper around ReferenceMDFParser for callers
// that have a path rather than an io.Reader.
func OpenMDF(path string, registry *Registry, dry bool) error {
	f, err := os.Open(path)
	if err != nil {
		return errcat.Wrap(errcat.IO, "OpenMDF", err)
	}
	defer f.Close()
	return ReferenceMDFParser{}.Parse(bufio.NewReader(f), registry, dry)
}
