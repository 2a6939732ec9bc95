// Package overrides loads the texture-to-material-name override table.
//
// The table is read from a Java-style .properties file (ISO-8859-1) or from a
// flat YAML map when the file extension is .yaml or .yml.
package overrides

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/wurmonline/womconverter/pkg/encoding"
)

// Override file errors.
var (
	ErrMalformedEscape = errors.New("malformed \\uxxxx escape")
)

// Table maps texture file names to forced material names.
// A nil *Table is empty.
type Table struct {
	entries map[string]string
}

// New returns a table holding a copy of entries.
func New(entries map[string]string) *Table {
	t := &Table{entries: make(map[string]string, len(entries))}
	for k, v := range entries {
		t.entries[k] = v
	}
	return t
}

// Lookup returns the material name forced for texture.
func (t *Table) Lookup(texture string) (string, bool) {
	if t == nil {
		return "", false
	}
	name, ok := t.entries[texture]
	return name, ok
}

// Len returns the number of overrides.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Textures returns the texture names with an override, sorted.
func (t *Table) Textures() []string {
	if t == nil {
		return nil
	}
	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Load reads an override file, choosing the format by extension.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening override file")
	}
	defer f.Close()

	var t *Table
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		t, err = ParseYAML(f)
	default:
		t, err = ParseProperties(f)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return t, nil
}

// ParseYAML reads a flat YAML mapping of texture name to material name.
func ParseYAML(r io.Reader) (*Table, error) {
	entries := make(map[string]string)
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decoding YAML overrides")
	}
	return &Table{entries: entries}, nil
}

// ParseProperties reads a .properties file encoded as ISO-8859-1.
func ParseProperties(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading properties")
	}

	t := &Table{entries: make(map[string]string)}
	scanner := bufio.NewScanner(strings.NewReader(encoding.Latin1ToUTF8(data)))

	var logical strings.Builder
	continuing := false
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimLeft(scanner.Text(), " \t\f")

		if !continuing {
			if line == "" || line[0] == '#' || line[0] == '!' {
				continue
			}
			logical.Reset()
		}

		// An odd number of trailing backslashes continues the line.
		trailing := len(line) - len(strings.TrimRight(line, "\\"))
		continuing = trailing%2 == 1
		if continuing {
			line = line[:len(line)-1]
		}
		logical.WriteString(line)

		if continuing {
			continue
		}
		if err := t.add(logical.String()); err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNum)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scanning properties")
	}
	if continuing {
		if err := t.add(logical.String()); err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNum)
		}
	}
	return t, nil
}

func (t *Table) add(line string) error {
	key, value := splitKeyValue(line)
	k, err := unescape(key)
	if err != nil {
		return err
	}
	v, err := unescape(value)
	if err != nil {
		return err
	}
	t.entries[k] = v
	return nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\f'
}

// splitKeyValue splits at the first unescaped '=', ':' or whitespace.
func splitKeyValue(line string) (string, string) {
	i := 0
	escaped := false
	for ; i < len(line); i++ {
		c := line[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == '=' || c == ':' || isSpace(c) {
			break
		}
	}
	key := line[:i]

	rest := strings.TrimLeft(line[i:], " \t\f")
	if rest != "" && (rest[0] == '=' || rest[0] == ':') {
		rest = rest[1:]
	}
	return key, strings.TrimLeft(rest, " \t\f")
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, "\\") {
		return s, nil
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 'f':
			b.WriteByte('\f')
		case 'u':
			if i+5 > len(s) {
				return "", errors.Wrapf(ErrMalformedEscape, "%q", s[i-1:])
			}
			code, err := strconv.ParseUint(s[i+1:i+5], 16, 16)
			if err != nil {
				return "", errors.Wrapf(ErrMalformedEscape, "%q", s[i-1:i+5])
			}
			b.WriteRune(rune(code))
			i += 4
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String(), nil
}
